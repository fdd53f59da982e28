package usecase

import (
	"sync"

	"github.com/auditdesk/audit-assistant/internal/domain"
)

const subscriberBuffer = 256

// hub fans one run's events out to any number of subscribers. Events are kept
// in order; late subscribers get the history replayed into their channel
// before new events. A slow subscriber that fills its buffer loses events
// rather than stalling the run.
type hub struct {
	mu      sync.Mutex
	history []domain.Event
	subs    map[chan domain.Event]struct{}
	closed  bool
}

func newHub() *hub {
	return &hub{subs: map[chan domain.Event]struct{}{}}
}

func (h *hub) publish(ev domain.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.history = append(h.history, ev)
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	if ev.Type == domain.EventDone {
		h.closeLocked()
	}
}

func (h *hub) subscribe() (<-chan domain.Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	size := subscriberBuffer
	if n := len(h.history) + subscriberBuffer; n > size {
		size = n
	}
	ch := make(chan domain.Event, size)
	for _, ev := range h.history {
		ch <- ev
	}
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	h.subs[ch] = struct{}{}
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

func (h *hub) closeLocked() {
	h.closed = true
	for ch := range h.subs {
		close(ch)
	}
	h.subs = map[chan domain.Event]struct{}{}
}
