// Package dummy is the built-in audit engine used when no AI credential is
// configured. It walks the full rule catalog, emits the same lifecycle events
// a live run would, and synthesizes finding counts from a seeded RNG.
package dummy

import (
	"context"
	"math/rand"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/auditdesk/audit-assistant/internal/adapters/csvtable"
	"github.com/auditdesk/audit-assistant/internal/domain"
	"github.com/auditdesk/audit-assistant/internal/ports"
	"github.com/auditdesk/audit-assistant/internal/report"
)

type Agent struct {
	log       zerolog.Logger
	stepDelay time.Duration
	seed      int64
}

type Option func(*Agent)

// WithStepDelay overrides the pacing between emitted steps. Zero makes runs
// instant, which tests rely on.
func WithStepDelay(d time.Duration) Option {
	return func(a *Agent) { a.stepDelay = d }
}

// WithSeed fixes the RNG so synthesized counts are reproducible.
func WithSeed(seed int64) Option {
	return func(a *Agent) { a.seed = seed }
}

func New(log zerolog.Logger, opts ...Option) *Agent {
	a := &Agent{
		log:       log,
		stepDelay: 150 * time.Millisecond,
		seed:      time.Now().UnixNano(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *Agent) Run(ctx context.Context, req ports.RunRequest, emit ports.EmitFunc) (*domain.Report, error) {
	// Validate uploads up front for early feedback; the simulation does not
	// read them further.
	if _, err := csvtable.MapFiles(req.Files); err != nil {
		return nil, err
	}

	catalog := req.Catalog
	if len(catalog) == 0 {
		catalog = domain.DefaultCatalog()
	}

	rng := rand.New(rand.NewSource(a.seed))
	total := len(catalog)
	completed := 0
	totalFindings := 0

	emit(overall(0, total, 0))

	var findings []domain.Finding
	for _, rule := range catalog {
		start := time.Now()
		a.log.Debug().Str("rule", rule.ID).Msg("simulating rule")

		emit(domain.Event{Type: domain.EventRuleStarted, RuleID: rule.ID, Data: map[string]any{
			"title": rule.Title, "tag": rule.Tag,
		}})
		emit(status(rule.ID, "Initializing datasets"))
		if err := a.pause(ctx); err != nil {
			return nil, err
		}

		emit(domain.Event{Type: domain.EventToolCall, RuleID: rule.ID, Data: map[string]any{
			"name": "load_dataset", "args": map[string]any{"source": "uploaded csvs"},
		}})
		if err := a.pause(ctx); err != nil {
			return nil, err
		}
		rows := 500 + rng.Intn(4501)
		emit(domain.Event{Type: domain.EventToolResult, RuleID: rule.ID, Data: map[string]any{
			"name": "load_dataset", "ok": true, "summary": strconv.Itoa(rows) + " rows", "ms": 200,
		}})

		emit(status(rule.ID, "Scoring anomalies"))
		emit(domain.Event{Type: domain.EventToolCall, RuleID: rule.ID, Data: map[string]any{
			"name": "score_findings", "args": map[string]any{"top_k": 50},
		}})
		if err := a.pause(ctx); err != nil {
			return nil, err
		}
		kept := int(float64(rows) * (0.01 + rng.Float64()*0.04))
		emit(domain.Event{Type: domain.EventToolResult, RuleID: rule.ID, Data: map[string]any{
			"name": "score_findings", "ok": true, "summary": strconv.Itoa(kept) + " retained", "ms": 250,
		}})

		count := int(float64(kept) * (0.05 + rng.Float64()*0.35))
		findings = append(findings, domain.Finding{
			Test:      rule.Title,
			Severity:  rule.Severity,
			Count:     count,
			SampleIDs: []string{},
		})

		completed++
		totalFindings += count
		emit(domain.Event{Type: domain.EventRuleCompleted, RuleID: rule.ID, Data: map[string]any{
			"findings": count, "ms": time.Since(start).Milliseconds(),
		}})
		emit(overall(completed, total, totalFindings))
		if err := a.pause(ctx); err != nil {
			return nil, err
		}
	}

	rep := report.Build(findings, time.Now())
	emit(domain.Event{Type: domain.EventDone, Data: map[string]any{"report": rep}})
	return rep, nil
}

func (a *Agent) pause(ctx context.Context) error {
	if a.stepDelay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(a.stepDelay):
		return nil
	}
}

func overall(completed, total, findings int) domain.Event {
	return domain.Event{Type: domain.EventOverall, Data: map[string]any{
		"completed": completed, "total": total, "findings": findings,
	}}
}

func status(ruleID, text string) domain.Event {
	return domain.Event{Type: domain.EventRuleStatus, RuleID: ruleID, Data: map[string]any{"text": text}}
}
