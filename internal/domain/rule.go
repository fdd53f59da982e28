package domain

// Tool names the auditor agent can invoke. The four check tools are also
// bound to catalog rules so UI progress can be attributed per rule.
const (
	ToolLoadCSV                   = "load_csv"
	ToolSameUserPostApprove       = "je_same_user_post_approve"
	ToolDuplicateInvoices         = "p2p_duplicate_invoices"
	ToolFictitiousVendors         = "fictitious_vendors"
	ToolTerminatedUsersWithAccess = "terminated_users_with_access"
	ToolCompileReport             = "compile_report"
)

type Rule struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Tag      string `json:"tag" yaml:"tag"`
	Severity string `json:"severity" yaml:"severity"`
	// Tool is the agent tool implementing this rule; empty for rules that
	// only exist in the simulated pass.
	Tool string `json:"tool,omitempty" yaml:"tool,omitempty"`
}

type Catalog []Rule

// DefaultCatalog mirrors the built-in rule set shown during a run.
func DefaultCatalog() Catalog {
	return Catalog{
		{ID: "UAR-001", Title: "Terminated User Access Testing", Tag: "Fraud", Severity: SeverityCritical, Tool: ToolTerminatedUsersWithAccess},
		{ID: "UAR-002", Title: "Segregation of Duties", Tag: "Fraud", Severity: SeverityHigh, Tool: ToolSameUserPostApprove},
		{ID: "ACC-010", Title: "Excessive Privilege Escalations", Tag: "Access", Severity: SeverityHigh},
		{ID: "PRV-004", Title: "Stale Admin Accounts", Tag: "Access", Severity: SeverityMedium},
		{ID: "LOG-021", Title: "Suspicious Login Bursts", Tag: "Security", Severity: SeverityMedium},
		{ID: "CFG-002", Title: "Weak MFA Enrollment", Tag: "Config", Severity: SeverityMedium},
		{ID: "TXN-101", Title: "Unusual High-Value Transfers", Tag: "Fraud", Severity: SeverityHigh, Tool: ToolDuplicateInvoices},
		{ID: "AUD-007", Title: "Missing Evidence Attachments", Tag: "Audit", Severity: SeverityMedium, Tool: ToolFictitiousVendors},
	}
}

func (c Catalog) ByID(id string) (Rule, bool) {
	for _, r := range c {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

func (c Catalog) ByTool(tool string) (Rule, bool) {
	if tool == "" {
		return Rule{}, false
	}
	for _, r := range c {
		if r.Tool == tool {
			return r, true
		}
	}
	return Rule{}, false
}

// Checked returns the subset of rules backed by a concrete check tool.
// Live runs execute exactly these.
func (c Catalog) Checked() Catalog {
	var out Catalog
	for _, r := range c {
		if r.Tool != "" {
			out = append(out, r)
		}
	}
	return out
}
