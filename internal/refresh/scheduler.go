package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/drivesight/console/internal/api"
	"github.com/drivesight/console/internal/config"
	"github.com/drivesight/console/internal/model"
	"github.com/drivesight/console/internal/view"
)

// Backend is the pull surface the scheduler needs. *api.Client
// satisfies it.
type Backend interface {
	GetAlerts(ctx context.Context, opts api.GetAlertsOptions) (*api.AlertsResponse, error)
	GetIncidents(ctx context.Context, opts api.GetIncidentsOptions) (*api.IncidentsResponse, error)
	GetHeatmap(ctx context.Context, hours int) (*api.HeatmapResponse, error)
	GetStats(ctx context.Context) (*model.Stats, error)
	GetCameras(ctx context.Context, opts api.GetCamerasOptions) (*api.CamerasResponse, error)
	GetCamera(ctx context.Context, cameraID int64) (*api.CameraDetailResponse, error)
}

// Views bundles the per-domain reconciliation targets.
type Views struct {
	Alerts    *view.AlertsView
	Incidents *view.IncidentsView
	Heatmap   *view.HeatmapView
	Stats     *view.StatsView
	Cameras   *view.CameraRoster
}

// Scheduler re-pulls domain snapshots on a timer and on demand.
type Scheduler struct {
	logger   *slog.Logger
	backend  Backend
	views    Views
	interval time.Duration
	limit    int

	mu     sync.Mutex
	window int // lookback hours for incidents and heatmap

	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler from the refresh config section.
func NewScheduler(backend Backend, views Views, cfg config.RefreshConfig, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		logger:   logger.With("component", "refresh"),
		backend:  backend,
		views:    views,
		interval: cfg.Interval,
		limit:    cfg.IncidentLimit,
		window:   cfg.WindowHours,
	}
}

// Start loads the camera roster, runs an initial full refresh, and
// begins the periodic cycle.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("refresh: scheduler already started")
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.logger.Info("refresh scheduler starting",
		"interval", s.interval,
		"window_hours", s.Window())

	s.loadCameras()
	s.RefreshAll()

	s.wg.Add(1)
	go s.run()
	return nil
}

// Stop halts the periodic cycle and waits for in-flight pulls, or for
// ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Info("refresh scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("refresh: stop: %w", ctx.Err())
	}
}

// Window reports the current lookback window in hours.
func (s *Scheduler) Window() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window
}

// SetWindow changes the lookback window and immediately re-pulls the
// window-scoped domains. A snapshot from the previous window that is
// still in flight arrives with a superseded sequence and is discarded
// by its view.
func (s *Scheduler) SetWindow(hours int) {
	if hours <= 0 {
		return
	}
	s.mu.Lock()
	changed := hours != s.window
	s.window = hours
	running := s.running
	s.mu.Unlock()

	if !changed || !running {
		return
	}
	s.logger.Info("lookback window changed", "hours", hours)

	incidentsSeq := s.views.Incidents.Begin()
	heatmapSeq := s.views.Heatmap.Begin()
	s.spawn(func() error { return s.pullIncidents(incidentsSeq, hours) })
	s.spawn(func() error { return s.pullHeatmap(heatmapSeq, hours) })
}

// RefreshAll re-pulls every domain snapshot in one cycle. Sequence
// numbers are issued before any request leaves, so the issue order
// matches the order refreshes were requested in. Each domain pulls
// independently; a failure in one is reported to its own view only.
func (s *Scheduler) RefreshAll() {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if !running {
		return
	}

	alertsSeq := s.views.Alerts.Begin()
	incidentsSeq := s.views.Incidents.Begin()
	heatmapSeq := s.views.Heatmap.Begin()
	statsSeq := s.views.Stats.Begin()
	hours := s.Window()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		var g errgroup.Group
		g.Go(func() error { return s.pullAlerts(alertsSeq) })
		g.Go(func() error { return s.pullIncidents(incidentsSeq, hours) })
		g.Go(func() error { return s.pullHeatmap(heatmapSeq, hours) })
		g.Go(func() error { return s.pullStats(statsSeq) })
		if err := g.Wait(); err != nil {
			s.logger.Debug("refresh cycle incomplete", "error", err)
		}
	}()
}

// RefreshAlerts re-pulls only the alert snapshot. The push channel
// calls this when it signals that alert state changed without saying
// how.
func (s *Scheduler) RefreshAlerts() {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if !running {
		return
	}
	seq := s.views.Alerts.Begin()
	s.spawn(func() error { return s.pullAlerts(seq) })
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if !s.views.Cameras.Loaded() {
				s.loadCameras()
			}
			s.RefreshAll()
		}
	}
}

func (s *Scheduler) pullAlerts(seq uint64) error {
	resp, err := s.backend.GetAlerts(s.ctx, api.GetAlertsOptions{ActiveOnly: true})
	if err != nil {
		s.views.Alerts.Fail(seq, err)
		return fmt.Errorf("alerts: %w", err)
	}
	s.views.Alerts.ApplyFull(seq, resp.Alerts)
	return nil
}

func (s *Scheduler) pullIncidents(seq uint64, hours int) error {
	resp, err := s.backend.GetIncidents(s.ctx, api.GetIncidentsOptions{
		Hours: hours,
		Limit: s.limit,
	})
	if err != nil {
		s.views.Incidents.Fail(seq, err)
		return fmt.Errorf("incidents: %w", err)
	}
	s.views.Incidents.ApplyFull(seq, resp.Incidents)
	return nil
}

func (s *Scheduler) pullHeatmap(seq uint64, hours int) error {
	resp, err := s.backend.GetHeatmap(s.ctx, hours)
	if err != nil {
		s.views.Heatmap.Fail(seq, err)
		return fmt.Errorf("heatmap: %w", err)
	}
	s.views.Heatmap.ApplyFull(seq, resp.Heatmap)
	return nil
}

func (s *Scheduler) pullStats(seq uint64) error {
	stats, err := s.backend.GetStats(s.ctx)
	if err != nil {
		s.views.Stats.Fail(seq, err)
		return fmt.Errorf("stats: %w", err)
	}
	s.views.Stats.ApplyFull(seq, *stats)
	return nil
}

// CameraDetail pulls one camera with its recent incidents. Detail is
// fetched on demand and never cached; it bypasses the view layer.
func (s *Scheduler) CameraDetail(ctx context.Context, id int64) (*api.CameraDetailResponse, error) {
	resp, err := s.backend.GetCamera(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("camera detail: %w", err)
	}
	return resp, nil
}

// loadCameras pulls the roster once. On failure the periodic cycle
// retries until the roster loads.
func (s *Scheduler) loadCameras() {
	resp, err := s.backend.GetCameras(s.ctx, api.GetCamerasOptions{})
	if err != nil {
		s.logger.Warn("camera roster load failed", "error", err)
		return
	}
	s.views.Cameras.Load(resp.Cameras)
	s.logger.Info("camera roster loaded", "cameras", len(resp.Cameras))
}

func (s *Scheduler) spawn(pull func() error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := pull(); err != nil {
			s.logger.Debug("refresh failed", "error", err)
		}
	}()
}
