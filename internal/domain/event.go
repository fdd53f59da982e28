package domain

// EventType enumerates lifecycle events emitted while a run is in progress.
type EventType string

const (
	EventOverall       EventType = "overall"
	EventRuleStarted   EventType = "rule_started"
	EventRuleStatus    EventType = "rule_status"
	EventRuleProgress  EventType = "rule_progress"
	EventToolCall      EventType = "tool_call"
	EventToolResult    EventType = "tool_result"
	EventRuleCompleted EventType = "rule_completed"
	EventRuleFailed    EventType = "rule_failed"
	EventDone          EventType = "done"
)

type Event struct {
	Type   EventType      `json:"type"`
	RuleID string         `json:"rule_id,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}
