// Package checks implements the built-in audit tests. Each check is a pure
// function over loaded tables and yields a Finding with up to ten sample ids.
package checks

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/auditdesk/audit-assistant/internal/domain"
)

const sampleLimit = 10

// JEColumns names the journal-entry columns a check reads.
type JEColumns struct {
	ID         string
	PostedBy   string
	ApprovedBy string
}

func (c JEColumns) withDefaults() JEColumns {
	if c.ID == "" {
		c.ID = "je_id"
	}
	if c.PostedBy == "" {
		c.PostedBy = "posted_by"
	}
	if c.ApprovedBy == "" {
		c.ApprovedBy = "approved_by"
	}
	return c
}

// SameUserPostApprove flags journal entries where the same user both posted
// and approved the entry.
func SameUserPostApprove(jes *domain.Table, cols JEColumns) (domain.Finding, error) {
	cols = cols.withDefaults()
	if err := jes.RequireColumns(cols.ID, cols.PostedBy, cols.ApprovedBy); err != nil {
		return domain.Finding{}, err
	}

	count := 0
	var sample []string
	for _, row := range jes.Rows {
		poster := strings.ToLower(strings.TrimSpace(row[cols.PostedBy]))
		approver := strings.ToLower(strings.TrimSpace(row[cols.ApprovedBy]))
		if poster == "" || poster != approver {
			continue
		}
		count++
		if len(sample) < sampleLimit {
			sample = append(sample, row[cols.ID])
		}
	}

	return domain.Finding{
		Test:      "JE same user posted & approved",
		Severity:  domain.SeverityHigh,
		Count:     count,
		SampleIDs: sample,
	}, nil
}

type InvoiceColumns struct {
	Vendor  string
	Invoice string
	Amount  string
}

func (c InvoiceColumns) withDefaults() InvoiceColumns {
	if c.Vendor == "" {
		c.Vendor = "vendor_id"
	}
	if c.Invoice == "" {
		c.Invoice = "invoice_no"
	}
	if c.Amount == "" {
		c.Amount = "amount"
	}
	return c
}

// DuplicateInvoices detects groups of invoices with identical
// (vendor, invoice number, amount). Count is the number of duplicate groups;
// samples are the invoice numbers involved. Amounts compare numerically, so
// "100.50" and "100.5" collide.
func DuplicateInvoices(invoices *domain.Table, cols InvoiceColumns) (domain.Finding, error) {
	cols = cols.withDefaults()
	if err := invoices.RequireColumns(cols.Vendor, cols.Invoice, cols.Amount); err != nil {
		return domain.Finding{}, err
	}

	type group struct {
		n        int
		invoices []string
	}
	groups := make(map[string]*group)
	var order []string

	for _, row := range invoices.Rows {
		amt := strings.TrimSpace(row[cols.Amount])
		if d, err := decimal.NewFromString(amt); err == nil {
			amt = d.String()
		}
		key := row[cols.Vendor] + "\x00" + row[cols.Invoice] + "\x00" + amt
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
			order = append(order, key)
		}
		g.n++
		g.invoices = append(g.invoices, row[cols.Invoice])
	}

	count := 0
	var sample []string
	seen := make(map[string]bool)
	for _, key := range order {
		g := groups[key]
		if g.n <= 1 {
			continue
		}
		count++
		for _, inv := range g.invoices {
			if seen[inv] || len(sample) >= sampleLimit {
				continue
			}
			seen[inv] = true
			sample = append(sample, inv)
		}
	}

	return domain.Finding{
		Test:      "P2P duplicate invoices",
		Severity:  domain.SeverityHigh,
		Count:     count,
		SampleIDs: sample,
	}, nil
}

type VendorMatchColumns struct {
	VendorAddr   string
	EmployeeAddr string
	VendorID     string
}

func (c VendorMatchColumns) withDefaults() VendorMatchColumns {
	if c.VendorAddr == "" {
		c.VendorAddr = "address"
	}
	if c.EmployeeAddr == "" {
		c.EmployeeAddr = "address"
	}
	if c.VendorID == "" {
		c.VendorID = "vendor_id"
	}
	return c
}

// FictitiousVendors reports vendors whose normalized address matches an
// employee address. Count is the number of (vendor, employee) pairs.
func FictitiousVendors(vendors, employees *domain.Table, cols VendorMatchColumns) (domain.Finding, error) {
	cols = cols.withDefaults()
	if err := vendors.RequireColumns(cols.VendorAddr, cols.VendorID); err != nil {
		return domain.Finding{}, err
	}
	if err := employees.RequireColumns(cols.EmployeeAddr); err != nil {
		return domain.Finding{}, err
	}

	byAddr := make(map[string]int)
	for _, row := range employees.Rows {
		addr := normalizeAddr(row[cols.EmployeeAddr])
		if addr != "" {
			byAddr[addr]++
		}
	}

	count := 0
	var sample []string
	for _, row := range vendors.Rows {
		n := byAddr[normalizeAddr(row[cols.VendorAddr])]
		if n == 0 {
			continue
		}
		count += n
		if len(sample) < sampleLimit {
			sample = append(sample, row[cols.VendorID])
		}
	}

	return domain.Finding{
		Test:      "Fictitious vendor (address match)",
		Severity:  domain.SeverityMedium,
		Count:     count,
		SampleIDs: sample,
	}, nil
}

type AccessColumns struct {
	UserID     string
	Status     string
	ActiveFlag string
}

func (c AccessColumns) withDefaults() AccessColumns {
	if c.UserID == "" {
		c.UserID = "user_id"
	}
	if c.Status == "" {
		c.Status = "employment_status"
	}
	if c.ActiveFlag == "" {
		c.ActiveFlag = "active"
	}
	return c
}

// TerminatedUsersWithAccess finds terminated employees that still hold an
// active entry in the access table.
func TerminatedUsersWithAccess(access, employees *domain.Table, cols AccessColumns) (domain.Finding, error) {
	cols = cols.withDefaults()
	if err := access.RequireColumns(cols.UserID, cols.ActiveFlag); err != nil {
		return domain.Finding{}, err
	}
	if err := employees.RequireColumns(cols.UserID, cols.Status); err != nil {
		return domain.Finding{}, err
	}

	terminated := make(map[string]bool)
	for _, row := range employees.Rows {
		if strings.ToLower(strings.TrimSpace(row[cols.Status])) == "terminated" {
			terminated[row[cols.UserID]] = true
		}
	}

	count := 0
	var sample []string
	for _, row := range access.Rows {
		if !terminated[row[cols.UserID]] || !truthy(row[cols.ActiveFlag]) {
			continue
		}
		count++
		if len(sample) < sampleLimit {
			sample = append(sample, row[cols.UserID])
		}
	}

	return domain.Finding{
		Test:      "Terminated users with access",
		Severity:  domain.SeverityCritical,
		Count:     count,
		SampleIDs: sample,
	}, nil
}

func normalizeAddr(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y":
		return true
	}
	return false
}
