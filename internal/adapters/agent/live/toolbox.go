package live

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/auditdesk/audit-assistant/internal/checks"
	"github.com/auditdesk/audit-assistant/internal/domain"
	"github.com/auditdesk/audit-assistant/internal/ports"
	"github.com/auditdesk/audit-assistant/internal/report"
)

// toolbox executes the agent's tool calls against the run's datasets.
type toolbox struct {
	loader ports.TableLoader
	files  map[string]string // table name -> uploaded path
	tables domain.Tables
	report *domain.Report
}

func (tb *toolbox) dispatch(ctx context.Context, name, args string) (string, error) {
	switch name {
	case domain.ToolLoadCSV:
		return tb.loadCSV(ctx, args)
	case domain.ToolSameUserPostApprove:
		return tb.sameUserPostApprove(args)
	case domain.ToolDuplicateInvoices:
		return tb.duplicateInvoices(args)
	case domain.ToolFictitiousVendors:
		return tb.fictitiousVendors(args)
	case domain.ToolTerminatedUsersWithAccess:
		return tb.terminatedUsersWithAccess(args)
	case domain.ToolCompileReport:
		return tb.compileReport(args)
	}
	return "", fmt.Errorf("unknown tool %q", name)
}

func (tb *toolbox) loadCSV(ctx context.Context, args string) (string, error) {
	var in struct {
		Name string `json:"name"`
		Path string `json:"path"`
	}
	if err := json.Unmarshal([]byte(args), &in); err != nil {
		return "", fmt.Errorf("load_csv args: %w", err)
	}
	// Only the uploaded files may be read, regardless of what the model asks for.
	path, ok := tb.files[in.Name]
	if !ok {
		return "", fmt.Errorf("no uploaded file for table %q", in.Name)
	}
	t, err := tb.loader.Load(ctx, in.Name, path)
	if err != nil {
		return "", err
	}
	tb.tables[in.Name] = t
	return fmt.Sprintf("Loaded %s with %d rows.", in.Name, t.Len()), nil
}

func (tb *toolbox) sameUserPostApprove(args string) (string, error) {
	var in struct {
		Table      string `json:"table"`
		IDCol      string `json:"id_col"`
		PostedBy   string `json:"posted_by_col"`
		ApprovedBy string `json:"approved_by_col"`
	}
	if err := json.Unmarshal([]byte(args), &in); err != nil {
		return "", err
	}
	t, err := tb.tables.Require(defaultStr(in.Table, "jes"))
	if err != nil {
		return "", err
	}
	f, err := checks.SameUserPostApprove(t, checks.JEColumns{ID: in.IDCol, PostedBy: in.PostedBy, ApprovedBy: in.ApprovedBy})
	if err != nil {
		return "", err
	}
	return marshalFinding(f)
}

func (tb *toolbox) duplicateInvoices(args string) (string, error) {
	var in struct {
		Table   string `json:"table"`
		Vendor  string `json:"vendor_col"`
		Invoice string `json:"inv_col"`
		Amount  string `json:"amt_col"`
	}
	if err := json.Unmarshal([]byte(args), &in); err != nil {
		return "", err
	}
	t, err := tb.tables.Require(defaultStr(in.Table, "invoices"))
	if err != nil {
		return "", err
	}
	f, err := checks.DuplicateInvoices(t, checks.InvoiceColumns{Vendor: in.Vendor, Invoice: in.Invoice, Amount: in.Amount})
	if err != nil {
		return "", err
	}
	return marshalFinding(f)
}

func (tb *toolbox) fictitiousVendors(args string) (string, error) {
	var in struct {
		VendorTable string `json:"vendor_table"`
		EmpTable    string `json:"emp_table"`
		VendorAddr  string `json:"v_addr"`
		EmpAddr     string `json:"e_addr"`
		VendorID    string `json:"v_id"`
	}
	if err := json.Unmarshal([]byte(args), &in); err != nil {
		return "", err
	}
	vendors, err := tb.tables.Require(defaultStr(in.VendorTable, "vendors"))
	if err != nil {
		return "", err
	}
	employees, err := tb.tables.Require(defaultStr(in.EmpTable, "employees"))
	if err != nil {
		return "", err
	}
	f, err := checks.FictitiousVendors(vendors, employees, checks.VendorMatchColumns{
		VendorAddr: in.VendorAddr, EmployeeAddr: in.EmpAddr, VendorID: in.VendorID,
	})
	if err != nil {
		return "", err
	}
	return marshalFinding(f)
}

func (tb *toolbox) terminatedUsersWithAccess(args string) (string, error) {
	var in struct {
		AccessTable string `json:"ua_table"`
		UsersTable  string `json:"users_table"`
		UserID      string `json:"user_id"`
		StatusCol   string `json:"status_col"`
		ActiveFlag  string `json:"active_flag"`
	}
	if err := json.Unmarshal([]byte(args), &in); err != nil {
		return "", err
	}
	access, err := tb.tables.Require(defaultStr(in.AccessTable, "user_access"))
	if err != nil {
		return "", err
	}
	employees, err := tb.tables.Require(defaultStr(in.UsersTable, "employees"))
	if err != nil {
		return "", err
	}
	f, err := checks.TerminatedUsersWithAccess(access, employees, checks.AccessColumns{
		UserID: in.UserID, Status: in.StatusCol, ActiveFlag: in.ActiveFlag,
	})
	if err != nil {
		return "", err
	}
	return marshalFinding(f)
}

func (tb *toolbox) compileReport(args string) (string, error) {
	var in struct {
		FindingsJSON []string `json:"findings_json"`
	}
	if err := json.Unmarshal([]byte(args), &in); err != nil {
		return "", fmt.Errorf("compile_report args: %w", err)
	}

	findings := make([]domain.Finding, 0, len(in.FindingsJSON))
	for _, raw := range in.FindingsJSON {
		var f domain.Finding
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			return "", fmt.Errorf("compile_report: invalid finding %q: %w", preview(raw), err)
		}
		findings = append(findings, f)
	}

	tb.report = report.Build(findings, time.Now())
	out, err := json.Marshal(struct {
		Findings []domain.Finding `json:"findings"`
		Summary  string           `json:"summary"`
	}{Findings: findings, Summary: tb.report.Summary})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// reportFromFinal salvages a report from the model's last message when it
// skipped compile_report but still produced AuditReport JSON.
func reportFromFinal(content string) (*domain.Report, error) {
	var payload struct {
		Findings []domain.Finding `json:"findings"`
		Summary  string           `json:"summary"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("final output is not AuditReport JSON: %w", err)
	}
	if len(payload.Findings) == 0 {
		return nil, fmt.Errorf("final output has no findings")
	}
	return report.Build(payload.Findings, time.Now()), nil
}

func marshalFinding(f domain.Finding) (string, error) {
	if f.SampleIDs == nil {
		f.SampleIDs = []string{}
	}
	out, err := json.Marshal(f)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func defaultStr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func toolDefinitions() []openai.Tool {
	fn := func(name, desc string, params string) openai.Tool {
		return openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        name,
				Description: desc,
				Parameters:  json.RawMessage(params),
			},
		}
	}

	return []openai.Tool{
		fn(domain.ToolLoadCSV, "Load a CSV into memory for later tests.", `{
			"type": "object",
			"properties": {
				"name": {"type": "string", "description": "Logical table name."},
				"path": {"type": "string", "description": "Path of an uploaded CSV."}
			},
			"required": ["name", "path"]
		}`),
		fn(domain.ToolSameUserPostApprove, "Flag JEs where poster == approver.", `{
			"type": "object",
			"properties": {
				"table": {"type": "string"},
				"id_col": {"type": "string"},
				"posted_by_col": {"type": "string"},
				"approved_by_col": {"type": "string"}
			}
		}`),
		fn(domain.ToolDuplicateInvoices, "Duplicate invoices: same vendor + invoice_no + amount.", `{
			"type": "object",
			"properties": {
				"table": {"type": "string"},
				"vendor_col": {"type": "string"},
				"inv_col": {"type": "string"},
				"amt_col": {"type": "string"}
			}
		}`),
		fn(domain.ToolFictitiousVendors, "Vendor address matches an employee address.", `{
			"type": "object",
			"properties": {
				"vendor_table": {"type": "string"},
				"emp_table": {"type": "string"},
				"v_addr": {"type": "string"},
				"e_addr": {"type": "string"},
				"v_id": {"type": "string"}
			}
		}`),
		fn(domain.ToolTerminatedUsersWithAccess, "Terminated employees who still have active access.", `{
			"type": "object",
			"properties": {
				"ua_table": {"type": "string"},
				"users_table": {"type": "string"},
				"user_id": {"type": "string"},
				"status_col": {"type": "string"},
				"active_flag": {"type": "string"}
			}
		}`),
		fn(domain.ToolCompileReport, "Combine tool outputs (JSON strings) into a single AuditReport JSON.", `{
			"type": "object",
			"properties": {
				"findings_json": {"type": "array", "items": {"type": "string"}}
			},
			"required": ["findings_json"]
		}`),
	}
}
