package live

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/auditdesk/audit-assistant/internal/domain"
)

// tracker maps tool activity onto per-rule lifecycle events so the live run
// reports progress the same way the built-in engine does.
type tracker struct {
	catalog       domain.Catalog
	emit          func(domain.Event)
	total         int
	completed     int
	totalFindings int
	startedAt     map[string]time.Time // rule id -> start
	finished      map[string]bool
}

func newTracker(catalog domain.Catalog, total int, emit func(domain.Event)) *tracker {
	return &tracker{
		catalog:   catalog,
		emit:      emit,
		total:     total,
		startedAt: map[string]time.Time{},
		finished:  map[string]bool{},
	}
}

func (t *tracker) ruleFor(tool string) (domain.Rule, bool) {
	return t.catalog.ByTool(tool)
}

func (t *tracker) startRule(tool string) {
	rule, ok := t.ruleFor(tool)
	if !ok {
		return
	}
	if _, started := t.startedAt[rule.ID]; started {
		return
	}
	t.startedAt[rule.ID] = time.Now()
	t.emit(domain.Event{Type: domain.EventRuleStarted, RuleID: rule.ID, Data: map[string]any{
		"title": rule.Title, "tag": rule.Tag,
	}})
	t.emit(domain.Event{Type: domain.EventRuleStatus, RuleID: rule.ID, Data: map[string]any{
		"text": "LLM: invoking " + tool,
	}})
}

func (t *tracker) toolCall(tool string) {
	var ruleID string
	if rule, ok := t.ruleFor(tool); ok {
		ruleID = rule.ID
	}
	t.emit(domain.Event{Type: domain.EventToolCall, RuleID: ruleID, Data: map[string]any{
		"name": tool, "args": map[string]any{},
	}})
}

func (t *tracker) toolResult(tool, result string, ok bool) {
	count := findingCount(result)
	summary := "done"
	if count > 0 {
		summary = strconv.Itoa(count) + " findings"
	}
	if !ok {
		summary = "failed"
	}

	rule, isCheck := t.ruleFor(tool)
	var ruleID string
	if isCheck {
		ruleID = rule.ID
	}
	t.emit(domain.Event{Type: domain.EventToolResult, RuleID: ruleID, Data: map[string]any{
		"name": tool, "ok": ok, "summary": summary, "ms": 0,
	}})

	if !isCheck || t.finished[rule.ID] || !ok {
		return
	}
	t.finished[rule.ID] = true
	t.completed++
	t.totalFindings += count

	started, has := t.startedAt[rule.ID]
	var ms int64
	if has {
		ms = time.Since(started).Milliseconds()
	}
	t.emit(domain.Event{Type: domain.EventRuleCompleted, RuleID: rule.ID, Data: map[string]any{
		"findings": count, "ms": ms,
	}})
	t.overall()
}

func (t *tracker) overall() {
	t.emit(domain.Event{Type: domain.EventOverall, Data: map[string]any{
		"completed": t.completed, "total": t.total, "findings": t.totalFindings,
	}})
}

func (t *tracker) status(text string) {
	t.emit(domain.Event{Type: domain.EventRuleStatus, Data: map[string]any{"text": text}})
}

func (t *tracker) done(rep *domain.Report) {
	t.emit(domain.Event{Type: domain.EventDone, Data: map[string]any{"report": rep}})
}

// findingCount pulls "count" out of a Finding JSON; non-finding tool results
// yield zero.
func findingCount(result string) int {
	var payload struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal([]byte(result), &payload); err != nil {
		return 0
	}
	return payload.Count
}
