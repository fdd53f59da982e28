package ports

import (
	"context"
	"errors"

	"github.com/auditdesk/audit-assistant/internal/domain"
)

// ErrNotFound is returned by stores for missing runs, cases or uploads.
var ErrNotFound = errors.New("not found")

type UploadStore interface {
	SaveUpload(ctx context.Context, u domain.Upload) error
	ListUploads(ctx context.Context) ([]domain.Upload, error)
	ClearUploads(ctx context.Context) error
}

type RunStore interface {
	CreateRun(ctx context.Context, r domain.Run) error
	GetRun(ctx context.Context, id string) (*domain.Run, error)
	// FinishRun records the terminal status, the report (may be nil on
	// failure) and an error message, if any.
	FinishRun(ctx context.Context, id, status string, report *domain.Report, errMsg string) error
}

type CaseStore interface {
	SaveCases(ctx context.Context, cases []domain.Case) error
	ListCases(ctx context.Context, runID string) ([]domain.Case, error)
	MoveCase(ctx context.Context, caseID, status string) error
}
