package report

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/auditdesk/audit-assistant/internal/domain"
)

const (
	maxSeededCases   = 8
	casesPerFinding  = 2
	caseAmountSuffix = "K"
)

var caseAmounts = []int64{45, 80, 120, 250, 350}

// SeedCases derives board cases from report findings: up to two cases per
// finding with flags, eight in total, spread across the leftmost columns.
// Amounts are picked from a fixed seed so the board is stable per report.
func SeedCases(runID string, r *domain.Report) []domain.Case {
	rnd := rand.New(rand.NewSource(42))
	columns := domain.BoardColumns()

	var cases []domain.Case
	for i, f := range r.Findings {
		if f.Count <= 0 {
			continue
		}
		n := casesPerFinding
		if f.Count < n {
			n = f.Count
		}
		for j := 0; j < n; j++ {
			amount := decimal.NewFromInt(caseAmounts[rnd.Intn(len(caseAmounts))])
			col := columns[min(j, len(columns)-1)].Key
			cases = append(cases, domain.Case{
				ID:     fmt.Sprintf("%s-%03d-%d", casePrefix(f.Test), i, j),
				RunID:  runID,
				Title:  f.Test,
				Amount: fmt.Sprintf("₹%s%s", amount.StringFixed(0), caseAmountSuffix),
				Risk:   strings.ToLower(f.Severity),
				Status: col,
				Badge:  badgeFor(f.Severity),
			})
			if len(cases) >= maxSeededCases {
				return cases
			}
		}
	}
	return cases
}

func badgeFor(severity string) string {
	switch strings.ToLower(severity) {
	case domain.SeverityHigh, domain.SeverityCritical:
		return "High Risk"
	}
	return "Medium Risk"
}

func casePrefix(test string) string {
	letters := make([]rune, 0, 3)
	for _, r := range strings.ToUpper(test) {
		if r >= 'A' && r <= 'Z' {
			letters = append(letters, r)
		}
		if len(letters) == 3 {
			break
		}
	}
	if len(letters) == 0 {
		return "FND"
	}
	return string(letters)
}
