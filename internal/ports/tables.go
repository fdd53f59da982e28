package ports

import (
	"context"

	"github.com/auditdesk/audit-assistant/internal/domain"
)

type TableLoader interface {
	// Load reads one CSV file into a named table.
	Load(ctx context.Context, name, path string) (*domain.Table, error)
	// LoadAll validates the filenames and loads every table.
	LoadAll(ctx context.Context, paths []string) (domain.Tables, error)
}
