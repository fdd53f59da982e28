package domain

// Kanban column keys for the case board, in display order.
const (
	CaseStatusNew        = "new"
	CaseStatusInProgress = "in_progress"
	CaseStatusReview     = "review"
	CaseStatusResolved   = "resolved"
	CaseStatusSuspicious = "suspicious"
	CaseStatusCompliance = "compliance"
)

type BoardColumn struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

func BoardColumns() []BoardColumn {
	return []BoardColumn{
		{Key: CaseStatusNew, Title: "New Leads"},
		{Key: CaseStatusInProgress, Title: "In Progress"},
		{Key: CaseStatusReview, Title: "Pending Review"},
		{Key: CaseStatusResolved, Title: "Resolved"},
		{Key: CaseStatusSuspicious, Title: "Suspicious Fraud"},
		{Key: CaseStatusCompliance, Title: "Compliance Issue"},
	}
}

func ValidCaseStatus(s string) bool {
	for _, c := range BoardColumns() {
		if c.Key == s {
			return true
		}
	}
	return false
}

// Case is a follow-up lead seeded from a report finding.
type Case struct {
	ID     string `json:"id"`
	RunID  string `json:"run_id"`
	Title  string `json:"title"`
	Amount string `json:"amount"`
	Risk   string `json:"risk"`   // critical | high | medium | low
	Status string `json:"status"` // board column key
	Badge  string `json:"badge"`
}
