package broadcast

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/FerryF19999/chatinterface/internal/metrics"
)

// sessionBuffer is the per-session event backlog. A session that falls this
// far behind is dropped; it re-syncs via the init event on reconnect.
const sessionBuffer = 64

// Session is one connected push observer. Events arrive on C in emission
// order. When the hub drops a session, C is closed.
type Session struct {
	C chan Event

	hub  *Hub
	once sync.Once
}

// Close detaches the session from the hub. Safe to call more than once.
func (s *Session) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
	})
}

// Hub implements Broadcaster over in-process push sessions. Each HTTP event
// stream subscribes once and receives every subsequent event; events emitted
// while an observer is disconnected are lost to it.
type Hub struct {
	mu       sync.Mutex
	sessions map[*Session]struct{}
	logger   zerolog.Logger
}

// NewHub creates a hub with no sessions.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		sessions: make(map[*Session]struct{}),
		logger:   logger,
	}
}

// Subscribe attaches a new session. The caller must Close it when done.
func (h *Hub) Subscribe() *Session {
	s := &Session{C: make(chan Event, sessionBuffer)}
	s.hub = h

	h.mu.Lock()
	h.sessions[s] = struct{}{}
	n := len(h.sessions)
	h.mu.Unlock()

	metrics.PushSessions.Set(float64(n))
	return s
}

func (h *Hub) remove(s *Session) {
	h.mu.Lock()
	if _, ok := h.sessions[s]; ok {
		delete(h.sessions, s)
		close(s.C)
	}
	n := len(h.sessions)
	h.mu.Unlock()

	metrics.PushSessions.Set(float64(n))
}

// Emit delivers the event to every session without blocking. A session whose
// buffer is full is dropped rather than waited on.
func (h *Hub) Emit(event string, payload any) {
	e := Event{Name: event, Data: payload}

	h.mu.Lock()
	var stale []*Session
	for s := range h.sessions {
		select {
		case s.C <- e:
		default:
			stale = append(stale, s)
		}
	}
	for _, s := range stale {
		delete(h.sessions, s)
		close(s.C)
	}
	n := len(h.sessions)
	h.mu.Unlock()

	if len(stale) > 0 {
		h.logger.Warn().
			Int("dropped", len(stale)).
			Str("event", event).
			Msg("dropped slow push sessions")
	}
	metrics.PushSessions.Set(float64(n))
	metrics.EventsEmitted.WithLabelValues(event).Inc()
}

// Len returns the number of attached sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}
