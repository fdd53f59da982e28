package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditdesk/audit-assistant/internal/domain"
)

func table(name string, columns []string, rows ...domain.Row) *domain.Table {
	return &domain.Table{Name: name, Columns: columns, Rows: rows}
}

func TestSameUserPostApprove(t *testing.T) {
	jes := table("jes", []string{"je_id", "posted_by", "approved_by"},
		domain.Row{"je_id": "JE-1", "posted_by": "alice", "approved_by": "bob"},
		domain.Row{"je_id": "JE-2", "posted_by": "Carol", "approved_by": "carol"},
		domain.Row{"je_id": "JE-3", "posted_by": "dave ", "approved_by": "DAVE"},
		domain.Row{"je_id": "JE-4", "posted_by": "", "approved_by": ""},
	)

	f, err := SameUserPostApprove(jes, JEColumns{})
	require.NoError(t, err)

	assert.Equal(t, "JE same user posted & approved", f.Test)
	assert.Equal(t, domain.SeverityHigh, f.Severity)
	assert.Equal(t, 2, f.Count)
	assert.Equal(t, []string{"JE-2", "JE-3"}, f.SampleIDs)
}

func TestSameUserPostApproveMissingColumn(t *testing.T) {
	jes := table("jes", []string{"je_id", "posted_by"})

	_, err := SameUserPostApprove(jes, JEColumns{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "approved_by")
}

func TestDuplicateInvoices(t *testing.T) {
	invoices := table("invoices", []string{"vendor_id", "invoice_no", "amount"},
		domain.Row{"vendor_id": "V1", "invoice_no": "INV-100", "amount": "250.50"},
		domain.Row{"vendor_id": "V1", "invoice_no": "INV-100", "amount": "250.5"}, // same amount, different spelling
		domain.Row{"vendor_id": "V1", "invoice_no": "INV-101", "amount": "250.50"},
		domain.Row{"vendor_id": "V2", "invoice_no": "INV-200", "amount": "80"},
		domain.Row{"vendor_id": "V2", "invoice_no": "INV-200", "amount": "80"},
		domain.Row{"vendor_id": "V2", "invoice_no": "INV-200", "amount": "90"},
	)

	f, err := DuplicateInvoices(invoices, InvoiceColumns{})
	require.NoError(t, err)

	assert.Equal(t, 2, f.Count)
	assert.Equal(t, []string{"INV-100", "INV-200"}, f.SampleIDs)
}

func TestDuplicateInvoicesNone(t *testing.T) {
	invoices := table("invoices", []string{"vendor_id", "invoice_no", "amount"},
		domain.Row{"vendor_id": "V1", "invoice_no": "INV-100", "amount": "10"},
		domain.Row{"vendor_id": "V1", "invoice_no": "INV-101", "amount": "10"},
	)

	f, err := DuplicateInvoices(invoices, InvoiceColumns{})
	require.NoError(t, err)
	assert.Zero(t, f.Count)
	assert.Empty(t, f.SampleIDs)
}

func TestFictitiousVendors(t *testing.T) {
	vendors := table("vendors", []string{"vendor_id", "address"},
		domain.Row{"vendor_id": "V1", "address": "12 Elm St"},
		domain.Row{"vendor_id": "V2", "address": "  12 ELM ST  "},
		domain.Row{"vendor_id": "V3", "address": "99 Oak Ave"},
	)
	employees := table("employees", []string{"emp_id", "address"},
		domain.Row{"emp_id": "E1", "address": "12 elm st"},
		domain.Row{"emp_id": "E2", "address": "500 Pine Rd"},
	)

	f, err := FictitiousVendors(vendors, employees, VendorMatchColumns{})
	require.NoError(t, err)

	assert.Equal(t, 2, f.Count)
	assert.Equal(t, []string{"V1", "V2"}, f.SampleIDs)
	assert.Equal(t, domain.SeverityMedium, f.Severity)
}

func TestTerminatedUsersWithAccess(t *testing.T) {
	employees := table("employees", []string{"user_id", "employment_status"},
		domain.Row{"user_id": "U1", "employment_status": "Terminated"},
		domain.Row{"user_id": "U2", "employment_status": "active"},
		domain.Row{"user_id": "U3", "employment_status": "terminated"},
	)
	access := table("user_access", []string{"user_id", "active"},
		domain.Row{"user_id": "U1", "active": "true"},
		domain.Row{"user_id": "U2", "active": "true"},
		domain.Row{"user_id": "U3", "active": "false"},
		domain.Row{"user_id": "U1", "active": "1"},
	)

	f, err := TerminatedUsersWithAccess(access, employees, AccessColumns{})
	require.NoError(t, err)

	assert.Equal(t, 2, f.Count)
	assert.Equal(t, []string{"U1", "U1"}, f.SampleIDs)
	assert.Equal(t, domain.SeverityCritical, f.Severity)
}

func TestSampleIDsCapped(t *testing.T) {
	rows := make([]domain.Row, 0, 25)
	for i := 0; i < 25; i++ {
		rows = append(rows, domain.Row{
			"je_id":       "JE-" + string(rune('A'+i%26)),
			"posted_by":   "alice",
			"approved_by": "alice",
		})
	}
	jes := table("jes", []string{"je_id", "posted_by", "approved_by"}, rows...)

	f, err := SameUserPostApprove(jes, JEColumns{})
	require.NoError(t, err)
	assert.Equal(t, 25, f.Count)
	assert.Len(t, f.SampleIDs, 10)
}
