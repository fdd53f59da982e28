// Package report assembles the final audit report and its exports from a set
// of findings.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/auditdesk/audit-assistant/internal/domain"
)

// Build rolls findings up into a report: summary line, severity metrics and
// one action item per finding with flags.
func Build(findings []domain.Finding, now time.Time) *domain.Report {
	total := 0
	for _, f := range findings {
		total += f.Count
	}

	sev := func(level string) int {
		n := 0
		for _, f := range findings {
			if strings.EqualFold(f.Severity, level) {
				n += f.Count
			}
		}
		return n
	}

	var items []domain.ActionItem
	for _, f := range findings {
		if f.Count <= 0 {
			continue
		}
		items = append(items, domain.ActionItem{
			Title: fmt.Sprintf("Review %s (%d findings)", f.Test, f.Count),
			Owner: "You",
			Due:   "Today",
		})
	}

	return &domain.Report{
		GeneratedAt: now.Format("2006-01-02T15:04:05"),
		Summary:     fmt.Sprintf("%d tests run, %d total flags.", len(findings), total),
		Metrics: domain.Metrics{
			RulesTotal: len(findings),
			Findings:   total,
			Critical:   sev(domain.SeverityCritical),
			High:       sev(domain.SeverityHigh),
			Medium:     sev(domain.SeverityMedium),
		},
		ActionItems: items,
		Findings:    findings,
	}
}

// WriteJSON writes the indented report JSON.
func WriteJSON(w io.Writer, r *domain.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteActionItemsCSV writes the action items as title,owner,due rows.
func WriteActionItemsCSV(w io.Writer, r *domain.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"title", "owner", "due"}); err != nil {
		return err
	}
	for _, it := range r.ActionItems {
		if err := cw.Write([]string{it.Title, it.Owner, it.Due}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
