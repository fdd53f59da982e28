package domain

type Metrics struct {
	RulesTotal int `json:"rules_total"`
	Findings   int `json:"findings"`
	Critical   int `json:"critical"`
	High       int `json:"high"`
	Medium     int `json:"medium"`
}

type ActionItem struct {
	Title string `json:"title"`
	Owner string `json:"owner"`
	Due   string `json:"due"`
}

// Report is the final artifact of an audit run.
type Report struct {
	GeneratedAt string       `json:"generated_at"` // ISO-8601, second precision
	Summary     string       `json:"summary"`
	Metrics     Metrics      `json:"metrics"`
	ActionItems []ActionItem `json:"action_items"`
	Findings    []Finding    `json:"findings"`
}
