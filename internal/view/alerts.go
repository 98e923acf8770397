package view

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/drivesight/console/internal/model"
)

// AlertsView holds the bounded alert feed: newest first, capped at a
// fixed size. Full pull snapshots replace the feed; pushed alerts are
// prepended and the tail trimmed.
type AlertsView struct {
	logger   *slog.Logger
	renderer AlertRenderer
	cap      int

	mu      sync.Mutex
	issued  uint64
	stale   int64
	alerts  []model.Alert
	updated time.Time
}

// NewAlertsView creates an alert feed capped at capacity entries.
func NewAlertsView(capacity int, renderer AlertRenderer, logger *slog.Logger) *AlertsView {
	if logger == nil {
		logger = slog.Default()
	}
	return &AlertsView{
		logger:   logger.With("view", "alerts"),
		renderer: renderer,
		cap:      capacity,
	}
}

// Begin issues a pull sequence number. Call it before the request is
// sent, so a response raced by a later pull is recognized as stale.
func (v *AlertsView) Begin() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.issued++
	return v.issued
}

// ApplyFull replaces the feed with a pull snapshot. The snapshot is
// normalized, sorted newest-first, and trimmed to capacity. Returns
// false without touching state if seq is no longer the latest pull.
func (v *AlertsView) ApplyFull(seq uint64, alerts []model.Alert) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.issued {
		v.stale++
		v.logger.Debug("stale alert snapshot discarded", "seq", seq, "latest", v.issued)
		return false
	}

	next := make([]model.Alert, len(alerts))
	for i, a := range alerts {
		next[i] = normalizeAlert(a)
	}
	sort.SliceStable(next, func(i, j int) bool {
		return next[i].CreatedAt.After(next[j].CreatedAt)
	})
	if len(next) > v.cap {
		next = next[:v.cap]
	}
	v.alerts = next
	v.updated = time.Now()
	v.renderer.RenderAlerts(v.snapshotLocked())
	return true
}

// ApplyDelta prepends a pushed alert and trims the oldest entry past
// capacity. The alert is flashed to the renderer before the redraw.
func (v *AlertsView) ApplyDelta(alert model.Alert) {
	v.mu.Lock()
	defer v.mu.Unlock()

	a := normalizeAlert(alert)
	v.alerts = append([]model.Alert{a}, v.alerts...)
	if len(v.alerts) > v.cap {
		v.alerts = v.alerts[:v.cap]
	}
	v.updated = time.Now()
	v.renderer.FlashAlert(a)
	v.renderer.RenderAlerts(v.snapshotLocked())
}

// Fail reports a pull failure. Existing state is kept; the renderer is
// told only if seq is still the latest pull.
func (v *AlertsView) Fail(seq uint64, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.issued {
		v.stale++
		return
	}
	v.logger.Warn("alert refresh failed", "error", err)
	v.renderer.RenderAlertsError(err)
}

// Alerts returns a copy of the current feed, newest first.
func (v *AlertsView) Alerts() []model.Alert {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

// UpdatedAt reports when the feed last changed.
func (v *AlertsView) UpdatedAt() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.updated
}

// StaleDiscards reports how many pull responses arrived too late to
// be applied.
func (v *AlertsView) StaleDiscards() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stale
}

func (v *AlertsView) snapshotLocked() []model.Alert {
	out := make([]model.Alert, len(v.alerts))
	copy(out, v.alerts)
	return out
}

// normalizeAlert fills fields the backend may omit so rendering never
// has to branch on absent data.
func normalizeAlert(a model.Alert) model.Alert {
	if a.AlertType == "" {
		a.AlertType = model.SeverityLow
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	return a
}
