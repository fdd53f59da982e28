package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditdesk/audit-assistant/internal/domain"
)

func sampleFindings() []domain.Finding {
	return []domain.Finding{
		{Test: "Terminated users with access", Severity: domain.SeverityCritical, Count: 3},
		{Test: "JE same user posted & approved", Severity: domain.SeverityHigh, Count: 5},
		{Test: "P2P duplicate invoices", Severity: domain.SeverityHigh, Count: 0},
		{Test: "Fictitious vendor (address match)", Severity: domain.SeverityMedium, Count: 2},
	}
}

func TestBuild(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	r := Build(sampleFindings(), now)

	assert.Equal(t, "2026-03-14T09:30:00", r.GeneratedAt)
	assert.Equal(t, "4 tests run, 10 total flags.", r.Summary)
	assert.Equal(t, domain.Metrics{RulesTotal: 4, Findings: 10, Critical: 3, High: 5, Medium: 2}, r.Metrics)

	// Zero-count findings get no action item.
	require.Len(t, r.ActionItems, 3)
	assert.Equal(t, "Review Terminated users with access (3 findings)", r.ActionItems[0].Title)
	assert.Equal(t, "You", r.ActionItems[0].Owner)
	assert.Equal(t, "Today", r.ActionItems[0].Due)
}

func TestWriteActionItemsCSV(t *testing.T) {
	r := Build(sampleFindings(), time.Now())

	var buf bytes.Buffer
	require.NoError(t, WriteActionItemsCSV(&buf, r))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "title,owner,due", lines[0])
	assert.Contains(t, lines[1], "Terminated users with access")
}

func TestWriteJSON(t *testing.T) {
	r := Build(sampleFindings(), time.Now())

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, r))
	assert.Contains(t, buf.String(), `"rules_total": 4`)
}

func TestSeedCases(t *testing.T) {
	r := Build(sampleFindings(), time.Now())

	cases := SeedCases("run-1", r)
	require.Len(t, cases, 6) // 2 per flagged finding, 3 flagged

	for _, c := range cases {
		assert.Equal(t, "run-1", c.RunID)
		assert.True(t, domain.ValidCaseStatus(c.Status), c.Status)
		assert.NotEmpty(t, c.Amount)
	}
	assert.Equal(t, "High Risk", cases[0].Badge)
	assert.Equal(t, domain.SeverityCritical, cases[0].Risk)
	assert.Equal(t, domain.CaseStatusNew, cases[0].Status)
	assert.Equal(t, domain.CaseStatusInProgress, cases[1].Status)

	// Deterministic for the same report.
	again := SeedCases("run-1", r)
	assert.Equal(t, cases, again)
}

func TestSeedCasesCap(t *testing.T) {
	findings := make([]domain.Finding, 6)
	for i := range findings {
		findings[i] = domain.Finding{Test: "Dup", Severity: domain.SeverityHigh, Count: 5}
	}
	cases := SeedCases("run-2", Build(findings, time.Now()))
	assert.Len(t, cases, 8)
}
