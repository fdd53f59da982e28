package ports

import (
	"context"

	"github.com/auditdesk/audit-assistant/internal/domain"
)

// EmitFunc forwards a lifecycle event to whoever is watching the run.
// Implementations must never block for long; emitting must not fail a run.
type EmitFunc func(domain.Event)

type RunRequest struct {
	// Files are paths to the uploaded CSVs for this run.
	Files []string
	// Catalog is the rule set to execute and attribute events against.
	Catalog domain.Catalog
}

// Agent executes an audit pass over the uploaded datasets, emitting lifecycle
// events as it goes, and returns the final report.
type Agent interface {
	Run(ctx context.Context, req RunRequest, emit EmitFunc) (*domain.Report, error)
}
