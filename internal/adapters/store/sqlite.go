// Package store persists uploads, runs and board cases in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/auditdesk/audit-assistant/internal/domain"
	"github.com/auditdesk/audit-assistant/internal/ports"
)

// ErrNotFound aliases the port-level sentinel so callers can errors.Is
// against either package.
var ErrNotFound = ports.ErrNotFound

type SQLiteStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and runs migrations.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// modernc's driver is not safe for concurrent writers on one connection pool
	// beyond what SQLite serializes itself; keep a single connection.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS uploads (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		path TEXT NOT NULL,
		size INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		finished_at TEXT NOT NULL DEFAULT '',
		report JSON,
		error TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS cases (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		title TEXT NOT NULL,
		amount TEXT NOT NULL,
		risk TEXT NOT NULL,
		status TEXT NOT NULL,
		badge TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_cases_run ON cases(run_id);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

// ----- uploads -----

// SaveUpload records an upload. Re-uploading a filename replaces the prior
// record, matching the overwrite on disk.
func (s *SQLiteStore) SaveUpload(ctx context.Context, u domain.Upload) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO uploads (id, name, path, size, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET id = excluded.id, path = excluded.path,
		 size = excluded.size, created_at = excluded.created_at`,
		u.ID, u.Name, u.Path, u.Size, u.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListUploads(ctx context.Context) ([]domain.Upload, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, path, size, created_at FROM uploads ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Upload
	for rows.Next() {
		var u domain.Upload
		var created string
		if err := rows.Scan(&u.ID, &u.Name, &u.Path, &u.Size, &created); err != nil {
			return nil, err
		}
		u.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ClearUploads(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM uploads`)
	return err
}

// ----- runs -----

func (s *SQLiteStore) CreateRun(ctx context.Context, r domain.Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, mode, status, created_at) VALUES (?, ?, ?, ?)`,
		r.ID, r.Mode, r.Status, r.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, mode, status, created_at, finished_at, report, error FROM runs WHERE id = ?`, id)

	var r domain.Run
	var created, finished string
	var reportJSON sql.NullString
	if err := row.Scan(&r.ID, &r.Mode, &r.Status, &created, &finished, &reportJSON, &r.Error); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	if finished != "" {
		r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
	}
	if reportJSON.Valid && reportJSON.String != "" {
		var rep domain.Report
		if err := json.Unmarshal([]byte(reportJSON.String), &rep); err != nil {
			return nil, fmt.Errorf("decode report for run %s: %w", id, err)
		}
		r.Report = &rep
	}
	return &r, nil
}

func (s *SQLiteStore) FinishRun(ctx context.Context, id, status string, report *domain.Report, errMsg string) error {
	var reportJSON any
	if report != nil {
		data, err := json.Marshal(report)
		if err != nil {
			return err
		}
		reportJSON = string(data)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, report = ?, error = ? WHERE id = ?`,
		status, time.Now().UTC().Format(time.RFC3339Nano), reportJSON, errMsg, id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ----- cases -----

func (s *SQLiteStore) SaveCases(ctx context.Context, cases []domain.Case) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, c := range cases {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO cases (id, run_id, title, amount, risk, status, badge) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.RunID, c.Title, c.Amount, c.Risk, c.Status, c.Badge,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert case %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) ListCases(ctx context.Context, runID string) ([]domain.Case, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, title, amount, risk, status, badge FROM cases WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Case
	for rows.Next() {
		var c domain.Case
		if err := rows.Scan(&c.ID, &c.RunID, &c.Title, &c.Amount, &c.Risk, &c.Status, &c.Badge); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) MoveCase(ctx context.Context, caseID, status string) error {
	if !domain.ValidCaseStatus(status) {
		return fmt.Errorf("invalid case status %q", status)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE cases SET status = ? WHERE id = ?`, status, caseID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
