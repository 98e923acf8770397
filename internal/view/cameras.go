package view

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/drivesight/console/internal/model"
)

// CameraRoster holds the camera list. The roster is loaded once at
// startup and never pushed; only the name filter changes afterwards.
type CameraRoster struct {
	logger   *slog.Logger
	renderer CameraRenderer

	mu      sync.Mutex
	cameras []model.Camera
	filter  string
	loaded  bool
}

// NewCameraRoster creates an empty roster.
func NewCameraRoster(renderer CameraRenderer, logger *slog.Logger) *CameraRoster {
	if logger == nil {
		logger = slog.Default()
	}
	return &CameraRoster{
		logger:   logger.With("view", "cameras"),
		renderer: renderer,
	}
}

// Load installs the roster and renders it through the current filter.
func (r *CameraRoster) Load(cameras []model.Camera) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cameras = make([]model.Camera, len(cameras))
	copy(r.cameras, cameras)
	r.loaded = true
	r.renderer.RenderCameras(r.filteredLocked())
}

// Loaded reports whether the roster has been installed.
func (r *CameraRoster) Loaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded
}

// SetFilter narrows the rendered roster to cameras whose name or route
// contains query, case-insensitively. An empty query shows everything.
func (r *CameraRoster) SetFilter(query string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filter = strings.TrimSpace(query)
	r.renderer.RenderCameras(r.filteredLocked())
}

// Cameras returns a copy of the roster as currently filtered.
func (r *CameraRoster) Cameras() []model.Camera {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filteredLocked()
}

// Get looks a camera up by ID, ignoring the filter.
func (r *CameraRoster) Get(id int64) (model.Camera, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cameras {
		if c.ID == id {
			return c, true
		}
	}
	return model.Camera{}, false
}

func (r *CameraRoster) filteredLocked() []model.Camera {
	if r.filter == "" {
		out := make([]model.Camera, len(r.cameras))
		copy(out, r.cameras)
		return out
	}
	q := strings.ToLower(r.filter)
	out := make([]model.Camera, 0, len(r.cameras))
	for _, c := range r.cameras {
		if strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Route), q) {
			out = append(out, c)
		}
	}
	return out
}
