package dispatch

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/drivesight/console/internal/connection"
)

// Handler consumes one dispatched envelope.
type Handler func(ev connection.EventEnvelope)

// Token identifies a registered handler for Unsubscribe.
type Token struct {
	kind connection.EventKind
	id   uuid.UUID
}

// Kind returns the event kind the token was issued for.
func (t Token) Kind() connection.EventKind { return t.kind }

// entry pairs a handler with its identity; the slice order is the
// dispatch order.
type entry struct {
	id uuid.UUID
	fn Handler
}

// Mux is the event multiplexer. It satisfies connection.Dispatcher.
type Mux struct {
	logger *slog.Logger

	mu       sync.RWMutex
	handlers map[connection.EventKind][]entry

	dispatches atomic.Int64
	failures   atomic.Int64
}

// Stats holds multiplexer counters.
type Stats struct {
	Dispatches      int64
	HandlerFailures int64
}

// NewMux creates an empty multiplexer.
func NewMux(logger *slog.Logger) *Mux {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mux{
		logger:   logger,
		handlers: make(map[connection.EventKind][]entry),
	}
}

// Subscribe registers a handler for the given kind and returns a token
// usable by Unsubscribe. Handlers for a kind run in registration order.
func (m *Mux) Subscribe(kind connection.EventKind, fn Handler) Token {
	tok := Token{kind: kind, id: uuid.New()}

	m.mu.Lock()
	m.handlers[kind] = append(m.handlers[kind], entry{id: tok.id, fn: fn})
	m.mu.Unlock()

	return tok
}

// Unsubscribe removes a previously registered handler. Unknown tokens
// are a no-op.
func (m *Mux) Unsubscribe(tok Token) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.handlers[tok.kind]
	for i, e := range entries {
		if e.id == tok.id {
			m.handlers[tok.kind] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}

// Dispatch invokes every handler registered for the envelope's kind,
// in registration order, synchronously from the caller's execution
// context. Handler panics are isolated per handler.
func (m *Mux) Dispatch(ev connection.EventEnvelope) {
	m.mu.RLock()
	entries := m.handlers[ev.Kind]
	snapshot := make([]entry, len(entries))
	copy(snapshot, entries)
	m.mu.RUnlock()

	m.dispatches.Add(1)

	for _, e := range snapshot {
		m.invoke(e, ev)
	}
}

// invoke runs one handler with panic isolation.
func (m *Mux) invoke(e entry, ev connection.EventEnvelope) {
	defer func() {
		if r := recover(); r != nil {
			m.failures.Add(1)
			m.logger.Error("event handler panicked",
				"kind", ev.Kind,
				"handler", e.id,
				"panic", r,
			)
		}
	}()

	e.fn(ev)
}

// Stats returns current counters.
func (m *Mux) Stats() Stats {
	return Stats{
		Dispatches:      m.dispatches.Load(),
		HandlerFailures: m.failures.Load(),
	}
}
