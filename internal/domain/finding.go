package domain

// Severity levels assigned to rules and findings.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

type Finding struct {
	Test      string   `json:"test"`
	Severity  string   `json:"severity"`
	Count     int      `json:"count"`
	SampleIDs []string `json:"sample_ids"`
	Notes     string   `json:"notes,omitempty"`
}
