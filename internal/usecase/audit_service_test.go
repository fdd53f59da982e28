package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditdesk/audit-assistant/internal/adapters/store"
	"github.com/auditdesk/audit-assistant/internal/domain"
	"github.com/auditdesk/audit-assistant/internal/ports"
)

type fakeAgent struct {
	report *domain.Report
	err    error
}

func (f *fakeAgent) Run(ctx context.Context, req ports.RunRequest, emit ports.EmitFunc) (*domain.Report, error) {
	emit(domain.Event{Type: domain.EventOverall, Data: map[string]any{"completed": 0, "total": 1, "findings": 0}})
	if f.err != nil {
		return nil, f.err
	}
	emit(domain.Event{Type: domain.EventDone, Data: map[string]any{"report": f.report}})
	return f.report, nil
}

func testService(t *testing.T, agent ports.Agent) *AuditService {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return NewAuditService(agent, st, domain.ModeDummy, domain.DefaultCatalog(), zerolog.Nop())
}

func addUpload(t *testing.T, s *AuditService) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "invoices.csv")
	require.NoError(t, os.WriteFile(path, []byte("vendor_id,invoice_no,amount\n"), 0o644))
	_, err := s.AddUpload(context.Background(), "invoices.csv", path, 30)
	require.NoError(t, err)
}

func drain(t *testing.T, ch <-chan domain.Event) []domain.Event {
	t.Helper()
	var events []domain.Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatal("timed out waiting for run events")
		}
	}
}

func TestStartRunRequiresUploads(t *testing.T) {
	s := testService(t, &fakeAgent{})
	_, err := s.StartRun(context.Background())
	require.ErrorIs(t, err, ErrNoUploads)
}

func TestStartRunHappyPath(t *testing.T) {
	rep := &domain.Report{
		Summary:  "1 tests run, 4 total flags.",
		Metrics:  domain.Metrics{RulesTotal: 1, Findings: 4, High: 4},
		Findings: []domain.Finding{{Test: "Dup invoices", Severity: domain.SeverityHigh, Count: 4}},
	}
	s := testService(t, &fakeAgent{report: rep})
	addUpload(t, s)

	run, err := s.StartRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusRunning, run.Status)
	assert.Equal(t, domain.ModeDummy, run.Mode)

	ch, cancel, err := s.Subscribe(run.ID)
	require.NoError(t, err)
	defer cancel()

	events := drain(t, ch)
	require.NotEmpty(t, events)
	assert.Equal(t, domain.EventDone, events[len(events)-1].Type)

	// Report and cases persisted.
	require.Eventually(t, func() bool {
		got, err := s.Run(context.Background(), run.ID)
		return err == nil && got.Status == domain.RunStatusDone
	}, 5*time.Second, 10*time.Millisecond)

	got, err := s.Report(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Metrics.Findings)

	cases, err := s.Cases(context.Background(), run.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, cases)
}

func TestStartRunAgentFailure(t *testing.T) {
	s := testService(t, &fakeAgent{err: errors.New("model exploded")})
	addUpload(t, s)

	run, err := s.StartRun(context.Background())
	require.NoError(t, err)

	ch, cancel, err := s.Subscribe(run.ID)
	require.NoError(t, err)
	defer cancel()

	events := drain(t, ch)
	require.NotEmpty(t, events)
	var failed bool
	for _, ev := range events {
		if ev.Type == domain.EventRuleFailed {
			failed = true
			assert.Contains(t, ev.Data["error"], "model exploded")
		}
	}
	assert.True(t, failed)
	assert.Equal(t, domain.EventDone, events[len(events)-1].Type)

	require.Eventually(t, func() bool {
		got, err := s.Run(context.Background(), run.ID)
		return err == nil && got.Status == domain.RunStatusFailed
	}, 5*time.Second, 10*time.Millisecond)

	_, err = s.Report(context.Background(), run.ID)
	require.ErrorIs(t, err, ErrNoReport)
}

func TestSubscribeUnknownRun(t *testing.T) {
	s := testService(t, &fakeAgent{})
	_, _, err := s.Subscribe("nope")
	require.ErrorIs(t, err, ErrRunNotFound)
}

func TestLateSubscriberGetsHistory(t *testing.T) {
	rep := &domain.Report{Summary: "ok", Findings: []domain.Finding{{Test: "T", Severity: "high", Count: 1}}}
	s := testService(t, &fakeAgent{report: rep})
	addUpload(t, s)

	run, err := s.StartRun(context.Background())
	require.NoError(t, err)

	// Let the run finish before subscribing.
	require.Eventually(t, func() bool {
		got, err := s.Run(context.Background(), run.ID)
		return err == nil && got.Status == domain.RunStatusDone
	}, 5*time.Second, 10*time.Millisecond)

	ch, cancel, err := s.Subscribe(run.ID)
	require.NoError(t, err)
	defer cancel()

	events := drain(t, ch)
	require.NotEmpty(t, events)
	assert.Equal(t, domain.EventOverall, events[0].Type)
	assert.Equal(t, domain.EventDone, events[len(events)-1].Type)
}

func TestUploadsRoundTrip(t *testing.T) {
	s := testService(t, &fakeAgent{})
	addUpload(t, s)

	ups, err := s.Uploads(context.Background())
	require.NoError(t, err)
	require.Len(t, ups, 1)
	assert.Equal(t, "invoices.csv", ups[0].Name)

	require.NoError(t, s.ClearUploads(context.Background()))
	ups, err = s.Uploads(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ups)
}
