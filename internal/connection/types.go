package connection

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/drivesight/console/internal/model"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// State is the externally observable connection state. It is owned
// exclusively by the Manager and changes only on transport-level
// connect/disconnect events.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	}
	return "unknown"
}

// EventKind identifies a push event type.
type EventKind string

const (
	EventNewIncident      EventKind = "new_incident"
	EventAlertUpdate      EventKind = "alert_update"
	EventHeatmapUpdate    EventKind = "heatmap_update"
	EventStatsUpdate      EventKind = "stats_update"
	EventConnectionChange EventKind = "connection_change" // synthesized locally, never server-sent
)

// Subscription topics announced to the server on every connect.
const (
	TopicAlerts  = "subscribe_alerts"
	TopicHeatmap = "subscribe_heatmap"
)

// NewIncidentPayload carries a freshly detected incident and, when the
// detection also raised an alert, that alert.
type NewIncidentPayload struct {
	Incident model.Incident `json:"incident"`
	Alert    *model.Alert   `json:"alert,omitempty"`
}

// HeatmapUpdatePayload carries a complete recomputed heat surface. It
// is a replacement, not a diff.
type HeatmapUpdatePayload struct {
	Heatmap     []model.HeatPoint `json:"heatmap"`
	GeneratedAt time.Time         `json:"generated_at,omitzero"`
}

// ConnectionChangePayload reports a transport state transition.
type ConnectionChangePayload struct {
	Connected bool `json:"connected"`
}

// EventEnvelope is a decoded push event. Exactly one payload field is
// set, matching Kind. AlertUpdate events carry no payload: they are an
// opaque trigger to re-pull the alert snapshot.
type EventEnvelope struct {
	Kind       EventKind
	ReceivedAt time.Time

	NewIncident *NewIncidentPayload
	Heatmap     *HeatmapUpdatePayload
	Stats       *model.Stats
	Connection  *ConnectionChangePayload
}

// Dispatcher receives decoded envelopes from the Manager. The event
// multiplexer implements it.
type Dispatcher interface {
	Dispatch(ev EventEnvelope)
}

// frame is the wire format of the push channel: one JSON object per
// event, tagged by event name.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// TimestampedMessage wraps raw message data with receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw message bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL          string        // WebSocket URL (e.g., ws://host:5000/socket)
	APIKey       string        // Bearer token (empty = no auth)
	PingTimeout  time.Duration // Max time without ping before considering connection stale
	WriteTimeout time.Duration // Write deadline for sends
	BufferSize   int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   1000,
	}
}

// ManagerConfig configures the Connection Manager.
type ManagerConfig struct {
	WSURL                string        // WebSocket URL
	APIKey               string        // Bearer token (empty = no auth)
	ReconnectDelay       time.Duration // Fixed wait between reconnect attempts
	MaxReconnectAttempts int           // Consecutive failures before giving up
	PingTimeout          time.Duration // Passed through to the client
	WriteTimeout         time.Duration // Passed through to the client
	BufferSize           int           // Client message buffer size
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		ReconnectDelay:       3 * time.Second,
		MaxReconnectAttempts: 10,
		PingTimeout:          60 * time.Second,
		WriteTimeout:         5 * time.Second,
		BufferSize:           1000,
	}
}

// ManagerStats provides statistics about the connection manager.
type ManagerStats struct {
	State         State
	Subscriptions int
	Reconnects    int64
	FramesDecoded int64
	DecodeErrors  int64
}
