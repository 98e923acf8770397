package view

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/drivesight/console/internal/model"
)

// IncidentsView holds the incident working set shown on the map:
// newest first, bounded by the pull limit. Pull snapshots replace the
// set; a pushed incident is prepended and placed on the map without a
// full redraw.
type IncidentsView struct {
	logger   *slog.Logger
	renderer IncidentRenderer
	limit    int

	mu        sync.Mutex
	issued    uint64
	stale     int64
	incidents []model.Incident
	updated   time.Time
}

// NewIncidentsView creates an incident view bounded at limit entries.
func NewIncidentsView(limit int, renderer IncidentRenderer, logger *slog.Logger) *IncidentsView {
	if logger == nil {
		logger = slog.Default()
	}
	return &IncidentsView{
		logger:   logger.With("view", "incidents"),
		renderer: renderer,
		limit:    limit,
	}
}

// Begin issues a pull sequence number.
func (v *IncidentsView) Begin() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.issued++
	return v.issued
}

// ApplyFull replaces the working set with a pull snapshot, sorted
// newest-first and trimmed to the limit. Returns false without
// touching state if seq is no longer the latest pull.
func (v *IncidentsView) ApplyFull(seq uint64, incidents []model.Incident) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.issued {
		v.stale++
		v.logger.Debug("stale incident snapshot discarded", "seq", seq, "latest", v.issued)
		return false
	}

	next := make([]model.Incident, len(incidents))
	copy(next, incidents)
	sort.SliceStable(next, func(i, j int) bool {
		return next[i].CreatedAt.After(next[j].CreatedAt)
	})
	if len(next) > v.limit {
		next = next[:v.limit]
	}
	v.incidents = next
	v.updated = time.Now()
	v.renderer.RenderIncidents(v.snapshotLocked())
	return true
}

// ApplyDelta prepends a pushed incident, trims past the limit, and
// places a marker for it.
func (v *IncidentsView) ApplyDelta(incident model.Incident) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.incidents = append([]model.Incident{incident}, v.incidents...)
	if len(v.incidents) > v.limit {
		v.incidents = v.incidents[:v.limit]
	}
	v.updated = time.Now()
	v.renderer.PlaceIncident(incident)
}

// Fail reports a pull failure. The working set is kept; the renderer
// is told only if seq is still the latest pull.
func (v *IncidentsView) Fail(seq uint64, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.issued {
		v.stale++
		return
	}
	v.logger.Warn("incident refresh failed", "error", err)
	v.renderer.RenderIncidentsError(err)
}

// Incidents returns a copy of the working set, newest first.
func (v *IncidentsView) Incidents() []model.Incident {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

// UpdatedAt reports when the working set last changed.
func (v *IncidentsView) UpdatedAt() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.updated
}

// StaleDiscards reports discarded pull responses.
func (v *IncidentsView) StaleDiscards() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stale
}

func (v *IncidentsView) snapshotLocked() []model.Incident {
	out := make([]model.Incident, len(v.incidents))
	copy(out, v.incidents)
	return out
}
