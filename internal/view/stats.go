package view

import (
	"log/slog"
	"sync"
	"time"

	"github.com/drivesight/console/internal/model"
)

// StatsView holds the dashboard summary counters. Every producer
// overwrites the whole record; there is no field-level merging, so a
// partial record clears the fields it omits.
type StatsView struct {
	logger   *slog.Logger
	renderer StatsRenderer

	mu      sync.Mutex
	issued  uint64
	stale   int64
	stats   model.Stats
	updated time.Time
}

// NewStatsView creates an empty stats view.
func NewStatsView(renderer StatsRenderer, logger *slog.Logger) *StatsView {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsView{
		logger:   logger.With("view", "stats"),
		renderer: renderer,
	}
}

// Begin issues a pull sequence number.
func (v *StatsView) Begin() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.issued++
	return v.issued
}

// ApplyFull overwrites the record with a pull snapshot. Returns false
// without touching state if seq is no longer the latest pull.
func (v *StatsView) ApplyFull(seq uint64, stats model.Stats) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.issued {
		v.stale++
		v.logger.Debug("stale stats snapshot discarded", "seq", seq, "latest", v.issued)
		return false
	}
	v.overwriteLocked(stats)
	return true
}

// ApplyDelta overwrites the record with a pushed update.
func (v *StatsView) ApplyDelta(stats model.Stats) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.overwriteLocked(stats)
}

// Fail reports a pull failure. The current record is kept; the
// renderer is told only if seq is still the latest pull.
func (v *StatsView) Fail(seq uint64, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.issued {
		v.stale++
		return
	}
	v.logger.Warn("stats refresh failed", "error", err)
	v.renderer.RenderStatsError(err)
}

// Stats returns the current record.
func (v *StatsView) Stats() model.Stats {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stats
}

// UpdatedAt reports when the record was last overwritten.
func (v *StatsView) UpdatedAt() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.updated
}

// StaleDiscards reports discarded pull responses.
func (v *StatsView) StaleDiscards() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stale
}

func (v *StatsView) overwriteLocked(stats model.Stats) {
	v.stats = stats
	v.updated = time.Now()
	v.renderer.RenderStats(stats)
}
