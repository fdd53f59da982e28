// Package csvtable loads uploaded CSV files into in-memory tables.
package csvtable

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/auditdesk/audit-assistant/internal/domain"
)

// ExpectedFiles maps accepted upload filenames to the logical table names the
// agent tools operate on.
var ExpectedFiles = map[string]string{
	"journal_entries.csv": "jes",
	"invoices.csv":        "invoices",
	"vendors.csv":         "vendors",
	"employees.csv":       "employees",
	"user_access.csv":     "user_access",
}

// AllowedNames returns the accepted upload filenames, sorted.
func AllowedNames() []string {
	names := make([]string, 0, len(ExpectedFiles))
	for n := range ExpectedFiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// MapFiles validates filenames against ExpectedFiles and returns a
// table-name -> path mapping. Later duplicates of the same filename win.
func MapFiles(paths []string) (map[string]string, error) {
	out := make(map[string]string, len(paths))
	for _, p := range paths {
		name := filepath.Base(p)
		table, ok := ExpectedFiles[name]
		if !ok {
			return nil, fmt.Errorf("unsupported file %q, allowed: %v", name, AllowedNames())
		}
		out[table] = p
	}
	return out, nil
}

type Loader struct{}

func NewLoader() *Loader { return &Loader{} }

// Load reads a single CSV into a table. The first record is the header.
func (l *Loader) Load(ctx context.Context, name, path string) (*domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parse %s: empty file", path)
	}

	header := records[0]
	t := &domain.Table{Name: name, Columns: header}
	for _, rec := range records[1:] {
		row := make(domain.Row, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// LoadAll validates the given paths and loads every table concurrently.
func (l *Loader) LoadAll(ctx context.Context, paths []string) (domain.Tables, error) {
	byTable, err := MapFiles(paths)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	tables := make(domain.Tables, len(byTable))

	g, gctx := errgroup.WithContext(ctx)
	for name, path := range byTable {
		g.Go(func() error {
			t, err := l.Load(gctx, name, path)
			if err != nil {
				return err
			}
			mu.Lock()
			tables[name] = t
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}
