package connection

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/drivesight/console/internal/model"
)

// Manager owns the single push-channel connection. It reconnects with
// a fixed delay up to a bounded attempt count, re-announces every
// registered subscription on each successful (re)connect, and decodes
// inbound frames into EventEnvelopes for the Dispatcher.
type Manager struct {
	cfg    ManagerConfig
	sink   Dispatcher
	logger *slog.Logger

	// newClient is a constructor seam so tests can inject a fake client.
	newClient func() Client

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	state   State
	client  Client
	subs    []string // append-only for the session
	running bool     // a connect loop is active

	reconnects    atomic.Int64
	framesDecoded atomic.Int64
	decodeErrors  atomic.Int64
}

// NewManager creates a new Connection Manager. Subscriptions announced
// via Announce before Start are issued on the first connect.
func NewManager(cfg ManagerConfig, sink Dispatcher, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		cfg:    cfg,
		sink:   sink,
		logger: logger,
		state:  StateDisconnected,
	}
	m.newClient = func() Client {
		return NewClient(ClientConfig{
			URL:          cfg.WSURL,
			APIKey:       cfg.APIKey,
			PingTimeout:  cfg.PingTimeout,
			WriteTimeout: cfg.WriteTimeout,
			BufferSize:   cfg.BufferSize,
		}, logger.With("component", "ws_client"))
	}
	return m
}

// Start begins the connection lifecycle and triggers the first connect.
func (m *Manager) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.Connect()
	return nil
}

// Stop shuts the manager down and closes the transport.
func (m *Manager) Stop(ctx context.Context) error {
	m.logger.Info("stopping connection manager")

	if m.cancel != nil {
		m.cancel()
	}

	m.mu.Lock()
	if m.client != nil {
		m.client.Close()
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		m.logger.Warn("shutdown timeout, forcing close")
	}

	m.mu.Lock()
	m.state = StateDisconnected
	m.running = false
	m.mu.Unlock()

	m.logger.Info("connection manager stopped")
	return nil
}

// Connect opens the transport if it is not already open or opening.
// It is idempotent and returns immediately; connection progress is
// observable through State and ConnectionChange events. After the
// retry budget is exhausted the manager stays Disconnected until
// Connect is called again.
func (m *Manager) Connect() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.state = StateConnecting
	m.mu.Unlock()

	m.wg.Add(1)
	go m.run()
}

// Announce registers a topic to (re-)announce to the server on every
// successful connect. The subscription set is append-only for the
// session. If currently connected the topic is announced immediately.
func (m *Manager) Announce(topic string) {
	m.mu.Lock()
	if slices.Contains(m.subs, topic) {
		m.mu.Unlock()
		return
	}
	m.subs = append(m.subs, topic)
	cl := m.client
	connected := m.state == StateConnected
	m.mu.Unlock()

	if connected && cl != nil {
		m.announce(cl, topic)
	}
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Stats returns current statistics.
func (m *Manager) Stats() ManagerStats {
	m.mu.Lock()
	state := m.state
	subs := len(m.subs)
	m.mu.Unlock()

	return ManagerStats{
		State:         state,
		Subscriptions: subs,
		Reconnects:    m.reconnects.Load(),
		FramesDecoded: m.framesDecoded.Load(),
		DecodeErrors:  m.decodeErrors.Load(),
	}
}

// run is the connect/read/reconnect loop. It exits when the context is
// cancelled or the consecutive-failure budget is exhausted.
func (m *Manager) run() {
	defer m.wg.Done()

	failures := 0
	for {
		if m.ctx.Err() != nil {
			m.settle(StateDisconnected)
			return
		}

		cl := m.newClient()
		if err := cl.Connect(m.ctx); err != nil {
			failures++
			m.logger.Warn("connect failed",
				"attempt", failures,
				"max_attempts", m.cfg.MaxReconnectAttempts,
				"error", err,
			)

			if failures >= m.cfg.MaxReconnectAttempts {
				m.logger.Error("reconnect budget exhausted, staying disconnected",
					"attempts", failures,
				)
				m.settle(StateDisconnected)
				return
			}

			select {
			case <-m.ctx.Done():
				m.settle(StateDisconnected)
				return
			case <-time.After(m.cfg.ReconnectDelay):
			}
			continue
		}

		failures = 0
		m.mu.Lock()
		m.client = cl
		m.state = StateConnected
		subs := slices.Clone(m.subs)
		m.mu.Unlock()
		m.reconnects.Add(1)

		m.logger.Info("push channel connected", "subscriptions", len(subs))

		// Subscriptions are not assumed to survive a reconnect
		// server-side: announce the full set every time.
		for _, topic := range subs {
			m.announce(cl, topic)
		}

		m.dispatchConnectionChange(true)

		err := m.readFrames(cl)
		cl.Close()

		if m.ctx.Err() != nil {
			m.settle(StateDisconnected)
			return
		}

		m.logger.Warn("push channel dropped", "error", err)

		// Application state (alert/heatmap/stats views) is retained
		// across the disconnect; only the indicator changes.
		m.mu.Lock()
		m.state = StateConnecting
		m.mu.Unlock()
		m.dispatchConnectionChange(false)

		select {
		case <-m.ctx.Done():
			m.settle(StateDisconnected)
			return
		case <-time.After(m.cfg.ReconnectDelay):
		}
	}
}

// settle marks the connect loop as finished in the given state.
func (m *Manager) settle(s State) {
	m.mu.Lock()
	m.state = s
	m.running = false
	m.mu.Unlock()
}

// readFrames consumes the client until the connection errors or the
// context is cancelled.
func (m *Manager) readFrames(cl Client) error {
	for {
		select {
		case <-m.ctx.Done():
			return m.ctx.Err()

		case err := <-cl.Errors():
			return err

		case msg, ok := <-cl.Messages():
			if !ok {
				return ErrNotConnected
			}
			m.handleFrame(msg)
		}
	}
}

// handleFrame decodes one raw frame and dispatches the envelope. A
// malformed frame is logged and dropped; it never tears down the
// connection or the dispatch loop.
func (m *Manager) handleFrame(msg TimestampedMessage) {
	env, err := m.decodeFrame(msg)
	if err != nil {
		m.decodeErrors.Add(1)
		m.logger.Warn("dropping malformed frame", "error", err)
		return
	}
	if env == nil {
		return // control or unknown frame
	}

	m.framesDecoded.Add(1)
	m.sink.Dispatch(*env)
}

// decodeFrame parses the wire frame into a typed envelope. Control
// frames and unknown event kinds return (nil, nil).
func (m *Manager) decodeFrame(msg TimestampedMessage) (*EventEnvelope, error) {
	var f frame
	if err := json.Unmarshal(msg.Data, &f); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	env := &EventEnvelope{
		Kind:       EventKind(f.Event),
		ReceivedAt: msg.ReceivedAt,
	}

	switch EventKind(f.Event) {
	case EventNewIncident:
		var p NewIncidentPayload
		if err := json.Unmarshal(f.Data, &p); err != nil {
			return nil, fmt.Errorf("decode new_incident: %w", err)
		}
		env.NewIncident = &p

	case EventAlertUpdate:
		// Opaque trigger: no payload, consumer re-pulls the snapshot.

	case EventHeatmapUpdate:
		var p HeatmapUpdatePayload
		if err := json.Unmarshal(f.Data, &p); err != nil {
			return nil, fmt.Errorf("decode heatmap_update: %w", err)
		}
		env.Heatmap = &p

	case EventStatsUpdate:
		var s model.Stats
		if err := json.Unmarshal(f.Data, &s); err != nil {
			return nil, fmt.Errorf("decode stats_update: %w", err)
		}
		env.Stats = &s

	default:
		m.logger.Debug("skipping frame", "event", f.Event)
		return nil, nil
	}

	return env, nil
}

// announce sends one subscription frame. Failures are logged only; the
// topic is retried on the next reconnect.
func (m *Manager) announce(cl Client, topic string) {
	data, _ := json.Marshal(frame{Event: topic})
	if err := cl.Send(data); err != nil {
		m.logger.Warn("failed to announce subscription",
			"topic", topic,
			"error", err,
		)
		return
	}
	m.logger.Debug("subscription announced", "topic", topic)
}

// dispatchConnectionChange emits a locally synthesized envelope.
func (m *Manager) dispatchConnectionChange(connected bool) {
	m.sink.Dispatch(EventEnvelope{
		Kind:       EventConnectionChange,
		ReceivedAt: time.Now(),
		Connection: &ConnectionChangePayload{Connected: connected},
	})
}
