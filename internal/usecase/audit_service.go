package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/auditdesk/audit-assistant/internal/domain"
	"github.com/auditdesk/audit-assistant/internal/ports"
	"github.com/auditdesk/audit-assistant/internal/report"
)

var (
	ErrNoUploads   = errors.New("no files uploaded; upload datasets first")
	ErrRunNotFound = errors.New("run not found")
	ErrNoReport    = errors.New("run has no report yet")
)

type Store interface {
	ports.UploadStore
	ports.RunStore
	ports.CaseStore
}

// AuditService orchestrates audit runs: it picks the configured agent, fans
// lifecycle events out to subscribers and persists the outcome.
type AuditService struct {
	agent ports.Agent
	store Store
	mode  string
	cat   domain.Catalog
	log   zerolog.Logger

	mu     sync.Mutex
	hubs   map[string]*hub
	cancel map[string]context.CancelFunc

	runSem chan struct{} // limit concurrent runs
}

func NewAuditService(agent ports.Agent, store Store, mode string, catalog domain.Catalog, log zerolog.Logger) *AuditService {
	return &AuditService{
		agent:  agent,
		store:  store,
		mode:   mode,
		cat:    catalog,
		log:    log,
		hubs:   map[string]*hub{},
		cancel: map[string]context.CancelFunc{},
		runSem: make(chan struct{}, 2),
	}
}

// StartRun creates a run over the currently uploaded files and executes the
// agent in the background. The returned run is already persisted as running.
func (s *AuditService) StartRun(ctx context.Context) (*domain.Run, error) {
	uploads, err := s.store.ListUploads(ctx)
	if err != nil {
		return nil, err
	}
	if len(uploads) == 0 {
		return nil, ErrNoUploads
	}
	files := make([]string, 0, len(uploads))
	for _, u := range uploads {
		files = append(files, u.Path)
	}

	run := domain.Run{
		ID:        uuid.NewString(),
		Mode:      s.mode,
		Status:    domain.RunStatusRunning,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateRun(ctx, run); err != nil {
		return nil, err
	}

	h := newHub()
	runCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.hubs[run.ID] = h
	s.cancel[run.ID] = cancel
	s.mu.Unlock()

	go s.execute(runCtx, run.ID, files, h)

	s.log.Info().Str("run_id", run.ID).Str("mode", run.Mode).Int("files", len(files)).Msg("run started")
	return &run, nil
}

func (s *AuditService) execute(ctx context.Context, runID string, files []string, h *hub) {
	s.runSem <- struct{}{}
	defer func() { <-s.runSem }()
	defer func() {
		s.mu.Lock()
		delete(s.cancel, runID)
		s.mu.Unlock()
	}()

	rep, err := s.agent.Run(ctx, ports.RunRequest{Files: files, Catalog: s.cat}, h.publish)
	if err != nil {
		s.log.Error().Err(err).Str("run_id", runID).Msg("run failed")
		h.publish(domain.Event{Type: domain.EventRuleFailed, Data: map[string]any{"error": err.Error()}})
		h.publish(domain.Event{Type: domain.EventDone})
		if serr := s.store.FinishRun(context.Background(), runID, domain.RunStatusFailed, nil, err.Error()); serr != nil {
			s.log.Error().Err(serr).Str("run_id", runID).Msg("failed to persist run failure")
		}
		return
	}

	bg := context.Background()
	if err := s.store.FinishRun(bg, runID, domain.RunStatusDone, rep, ""); err != nil {
		s.log.Error().Err(err).Str("run_id", runID).Msg("failed to persist report")
	}
	if err := s.store.SaveCases(bg, report.SeedCases(runID, rep)); err != nil {
		s.log.Error().Err(err).Str("run_id", runID).Msg("failed to seed cases")
	}
	s.log.Info().Str("run_id", runID).Int("findings", rep.Metrics.Findings).Msg("run complete")
}

// Subscribe attaches to a run's event stream; history is replayed first.
func (s *AuditService) Subscribe(runID string) (<-chan domain.Event, func(), error) {
	s.mu.Lock()
	h, ok := s.hubs[runID]
	s.mu.Unlock()
	if !ok {
		return nil, nil, ErrRunNotFound
	}
	ch, cancel := h.subscribe()
	return ch, cancel, nil
}

// CancelRun stops an in-flight run. Completed runs are unaffected.
func (s *AuditService) CancelRun(runID string) bool {
	s.mu.Lock()
	cancel, ok := s.cancel[runID]
	s.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

func (s *AuditService) Run(ctx context.Context, runID string) (*domain.Run, error) {
	return s.store.GetRun(ctx, runID)
}

// Report returns the finished report for a run.
func (s *AuditService) Report(ctx context.Context, runID string) (*domain.Report, error) {
	run, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.Report == nil {
		return nil, fmt.Errorf("%w (status %s)", ErrNoReport, run.Status)
	}
	return run.Report, nil
}

func (s *AuditService) Cases(ctx context.Context, runID string) ([]domain.Case, error) {
	return s.store.ListCases(ctx, runID)
}

func (s *AuditService) MoveCase(ctx context.Context, caseID, status string) error {
	return s.store.MoveCase(ctx, caseID, status)
}

// AddUpload records an uploaded file for the next run.
func (s *AuditService) AddUpload(ctx context.Context, name, path string, size int64) (*domain.Upload, error) {
	u := domain.Upload{
		ID:        uuid.NewString(),
		Name:      name,
		Path:      path,
		Size:      size,
		CreatedAt: time.Now(),
	}
	if err := s.store.SaveUpload(ctx, u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *AuditService) Uploads(ctx context.Context) ([]domain.Upload, error) {
	return s.store.ListUploads(ctx)
}

func (s *AuditService) ClearUploads(ctx context.Context) error {
	return s.store.ClearUploads(ctx)
}
