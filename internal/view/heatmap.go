package view

import (
	"log/slog"
	"sync"
	"time"

	"github.com/drivesight/console/internal/model"
)

// HeatmapView holds the incident density point set. Both producers
// replace it wholesale: a pull snapshot and a pushed heatmap_update
// carry the complete regenerated set, never a diff.
type HeatmapView struct {
	logger   *slog.Logger
	renderer HeatmapRenderer

	mu      sync.Mutex
	issued  uint64
	stale   int64
	points  []model.HeatPoint
	updated time.Time
}

// NewHeatmapView creates an empty heat map view.
func NewHeatmapView(renderer HeatmapRenderer, logger *slog.Logger) *HeatmapView {
	if logger == nil {
		logger = slog.Default()
	}
	return &HeatmapView{
		logger:   logger.With("view", "heatmap"),
		renderer: renderer,
	}
}

// Begin issues a pull sequence number.
func (v *HeatmapView) Begin() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.issued++
	return v.issued
}

// ApplyFull replaces the point set with a pull snapshot. Returns false
// without touching state if seq is no longer the latest pull.
func (v *HeatmapView) ApplyFull(seq uint64, points []model.HeatPoint) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.issued {
		v.stale++
		v.logger.Debug("stale heatmap snapshot discarded", "seq", seq, "latest", v.issued)
		return false
	}
	v.replaceLocked(points)
	return true
}

// ApplyDelta replaces the point set with a pushed regeneration.
func (v *HeatmapView) ApplyDelta(points []model.HeatPoint) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.replaceLocked(points)
}

// Fail reports a pull failure. Existing points are kept; the renderer
// is told only if seq is still the latest pull.
func (v *HeatmapView) Fail(seq uint64, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.issued {
		v.stale++
		return
	}
	v.logger.Warn("heatmap refresh failed", "error", err)
	v.renderer.RenderHeatmapError(err)
}

// Points returns a copy of the current point set.
func (v *HeatmapView) Points() []model.HeatPoint {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]model.HeatPoint, len(v.points))
	copy(out, v.points)
	return out
}

// UpdatedAt reports when the point set was last replaced.
func (v *HeatmapView) UpdatedAt() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.updated
}

// StaleDiscards reports discarded pull responses.
func (v *HeatmapView) StaleDiscards() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stale
}

func (v *HeatmapView) replaceLocked(points []model.HeatPoint) {
	next := make([]model.HeatPoint, len(points))
	for i, p := range points {
		next[i] = normalizeHeatPoint(p)
	}
	v.points = next
	v.updated = time.Now()

	out := make([]model.HeatPoint, len(next))
	copy(out, next)
	v.renderer.RenderHeatmap(out)
}

// normalizeHeatPoint clamps intensity into [0, 1] and substitutes a
// severity for points the backend leaves unclassified.
func normalizeHeatPoint(p model.HeatPoint) model.HeatPoint {
	if p.Intensity < 0 {
		p.Intensity = 0
	}
	if p.Intensity > 1 {
		p.Intensity = 1
	}
	if p.Severity == "" {
		p.Severity = model.SeverityLow
	}
	return p
}
