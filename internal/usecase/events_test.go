package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditdesk/audit-assistant/internal/domain"
)

func TestHubReplayAndClose(t *testing.T) {
	h := newHub()

	h.publish(domain.Event{Type: domain.EventOverall})
	h.publish(domain.Event{Type: domain.EventRuleStarted, RuleID: "UAR-001"})

	ch, cancel := h.subscribe()
	defer cancel()

	ev := <-ch
	assert.Equal(t, domain.EventOverall, ev.Type)
	ev = <-ch
	assert.Equal(t, "UAR-001", ev.RuleID)

	h.publish(domain.Event{Type: domain.EventDone})
	ev, ok := <-ch
	require.True(t, ok)
	assert.Equal(t, domain.EventDone, ev.Type)

	_, ok = <-ch
	assert.False(t, ok, "channel closes after done")

	// Publishing after done is a no-op; a fresh subscriber still sees history.
	h.publish(domain.Event{Type: domain.EventRuleStatus})
	ch2, cancel2 := h.subscribe()
	defer cancel2()
	var got []domain.Event
	for ev := range ch2 {
		got = append(got, ev)
	}
	require.Len(t, got, 3)
	assert.Equal(t, domain.EventDone, got[2].Type)
}

func TestHubUnsubscribe(t *testing.T) {
	h := newHub()
	ch, cancel := h.subscribe()
	cancel()
	_, ok := <-ch
	assert.False(t, ok)

	// cancel twice is safe
	cancel()
	h.publish(domain.Event{Type: domain.EventOverall})
}
