package refresh

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/drivesight/console/internal/api"
	"github.com/drivesight/console/internal/config"
	"github.com/drivesight/console/internal/model"
	"github.com/drivesight/console/internal/view"
)

// fakeBackend serves scripted snapshots and counts calls. A gate can
// hold a specific incident pull open to model a slow response.
type fakeBackend struct {
	mu            sync.Mutex
	alertCalls    int
	incidentCalls int
	heatmapCalls  int
	statsCalls    int
	cameraCalls   int

	alerts          []model.Alert
	incidentsByHour map[int][]model.Incident
	incidentGates   map[int]chan struct{}
	heatmap         []model.HeatPoint
	stats           model.Stats
	statsErr        error
	cameras         []model.Camera
}

func (f *fakeBackend) GetAlerts(ctx context.Context, opts api.GetAlertsOptions) (*api.AlertsResponse, error) {
	f.mu.Lock()
	f.alertCalls++
	alerts := f.alerts
	f.mu.Unlock()
	return &api.AlertsResponse{Alerts: alerts, Total: len(alerts)}, nil
}

func (f *fakeBackend) GetIncidents(ctx context.Context, opts api.GetIncidentsOptions) (*api.IncidentsResponse, error) {
	f.mu.Lock()
	f.incidentCalls++
	gate := f.incidentGates[opts.Hours]
	incidents := f.incidentsByHour[opts.Hours]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &api.IncidentsResponse{Incidents: incidents, Total: len(incidents)}, nil
}

func (f *fakeBackend) GetHeatmap(ctx context.Context, hours int) (*api.HeatmapResponse, error) {
	f.mu.Lock()
	f.heatmapCalls++
	points := f.heatmap
	f.mu.Unlock()
	return &api.HeatmapResponse{Heatmap: points, Hours: hours}, nil
}

func (f *fakeBackend) GetStats(ctx context.Context) (*model.Stats, error) {
	f.mu.Lock()
	f.statsCalls++
	stats := f.stats
	err := f.statsErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (f *fakeBackend) GetCameras(ctx context.Context, opts api.GetCamerasOptions) (*api.CamerasResponse, error) {
	f.mu.Lock()
	f.cameraCalls++
	cameras := f.cameras
	f.mu.Unlock()
	return &api.CamerasResponse{Cameras: cameras, Total: len(cameras)}, nil
}

func (f *fakeBackend) GetCamera(ctx context.Context, cameraID int64) (*api.CameraDetailResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.cameras {
		if c.ID == cameraID {
			return &api.CameraDetailResponse{Camera: c}, nil
		}
	}
	return nil, errors.New("camera not found")
}

func (f *fakeBackend) calls() (alerts, incidents, heatmap, stats int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alertCalls, f.incidentCalls, f.heatmapCalls, f.statsCalls
}

// Render sinks. The view package is exercised by its own tests; here
// they only absorb calls and count errors.

type nopAlertRenderer struct{ errs countingErrs }

func (r *nopAlertRenderer) RenderAlerts([]model.Alert)  {}
func (r *nopAlertRenderer) FlashAlert(model.Alert)      {}
func (r *nopAlertRenderer) RenderAlertsError(err error) { r.errs.add() }

type nopHeatmapRenderer struct{ errs countingErrs }

func (r *nopHeatmapRenderer) RenderHeatmap([]model.HeatPoint) {}
func (r *nopHeatmapRenderer) RenderHeatmapError(err error)    { r.errs.add() }

type nopStatsRenderer struct{ errs countingErrs }

func (r *nopStatsRenderer) RenderStats(model.Stats)    {}
func (r *nopStatsRenderer) RenderStatsError(err error) { r.errs.add() }

type nopIncidentRenderer struct{ errs countingErrs }

func (r *nopIncidentRenderer) RenderIncidents([]model.Incident) {}
func (r *nopIncidentRenderer) PlaceIncident(model.Incident)     {}
func (r *nopIncidentRenderer) RenderIncidentsError(err error)   { r.errs.add() }

type nopCameraRenderer struct{}

func (nopCameraRenderer) RenderCameras([]model.Camera) {}

type countingErrs struct {
	mu sync.Mutex
	n  int
}

func (c *countingErrs) add() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *countingErrs) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func newTestViews() Views {
	return Views{
		Alerts:    view.NewAlertsView(30, &nopAlertRenderer{}, nil),
		Incidents: view.NewIncidentsView(200, &nopIncidentRenderer{}, nil),
		Heatmap:   view.NewHeatmapView(&nopHeatmapRenderer{}, nil),
		Stats:     view.NewStatsView(&nopStatsRenderer{}, nil),
		Cameras:   view.NewCameraRoster(nopCameraRenderer{}, nil),
	}
}

func testCfg(interval time.Duration) config.RefreshConfig {
	return config.RefreshConfig{
		Interval:      interval,
		WindowHours:   24,
		IncidentLimit: 200,
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func stopScheduler(t *testing.T, s *Scheduler) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestScheduler_StartPopulatesAllViews(t *testing.T) {
	backend := &fakeBackend{
		alerts: []model.Alert{{ID: 1, AlertType: model.SeverityCritical, CreatedAt: time.Now()}},
		incidentsByHour: map[int][]model.Incident{
			24: {{ID: 10, CreatedAt: time.Now()}},
		},
		heatmap: []model.HeatPoint{{Lat: 34, Lng: -118, Intensity: 0.5}},
		stats:   model.Stats{IncidentsToday: 7},
		cameras: []model.Camera{{ID: 1, Name: "I-5 at Euclid Ave"}},
	}
	views := newTestViews()
	s := NewScheduler(backend, views, testCfg(time.Hour), nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer stopScheduler(t, s)

	waitFor(t, time.Second, func() bool {
		return len(views.Alerts.Alerts()) == 1 &&
			len(views.Incidents.Incidents()) == 1 &&
			len(views.Heatmap.Points()) == 1 &&
			views.Stats.Stats().IncidentsToday == 7 &&
			views.Cameras.Loaded()
	})
}

func TestScheduler_SetWindowDiscardsSupersededPull(t *testing.T) {
	gate := make(chan struct{})
	backend := &fakeBackend{
		incidentsByHour: map[int][]model.Incident{
			24: {{ID: 1, CreatedAt: time.Now()}, {ID: 2, CreatedAt: time.Now()}},
			6:  {{ID: 2, CreatedAt: time.Now()}},
		},
		incidentGates: map[int]chan struct{}{24: gate},
	}
	views := newTestViews()
	s := NewScheduler(backend, views, testCfg(time.Hour), nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer stopScheduler(t, s)

	// The initial 24h pull is held open; the operator narrows the
	// window before it returns.
	s.SetWindow(6)
	waitFor(t, time.Second, func() bool {
		got := views.Incidents.Incidents()
		return len(got) == 1 && got[0].ID == 2
	})

	// The wide snapshot finally arrives. It is superseded and must
	// not reintroduce the out-of-window incident.
	close(gate)
	waitFor(t, time.Second, func() bool {
		return views.Incidents.StaleDiscards() >= 1
	})
	if got := views.Incidents.Incidents(); len(got) != 1 || got[0].ID != 2 {
		t.Errorf("Incidents() = %v, want only the 6h snapshot", got)
	}
	if s.Window() != 6 {
		t.Errorf("Window() = %d, want 6", s.Window())
	}
}

func TestScheduler_DomainFailureIsIsolated(t *testing.T) {
	statsSink := &nopStatsRenderer{}
	views := newTestViews()
	views.Stats = view.NewStatsView(statsSink, nil)

	backend := &fakeBackend{
		alerts:   []model.Alert{{ID: 1, CreatedAt: time.Now()}},
		heatmap:  []model.HeatPoint{{Lat: 1, Lng: 2, Intensity: 0.1}},
		statsErr: errors.New("stats endpoint down"),
	}
	s := NewScheduler(backend, views, testCfg(time.Hour), nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer stopScheduler(t, s)

	waitFor(t, time.Second, func() bool {
		return len(views.Alerts.Alerts()) == 1 &&
			len(views.Heatmap.Points()) == 1 &&
			statsSink.errs.count() >= 1
	})
	if got := views.Stats.Stats(); got.IncidentsToday != 0 {
		t.Errorf("Stats() = %+v, want zero record kept through failure", got)
	}
}

func TestScheduler_RefreshAlertsPullsOnlyAlerts(t *testing.T) {
	backend := &fakeBackend{alerts: []model.Alert{{ID: 1, CreatedAt: time.Now()}}}
	views := newTestViews()
	s := NewScheduler(backend, views, testCfg(time.Hour), nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer stopScheduler(t, s)

	waitFor(t, time.Second, func() bool {
		a, i, h, st := backend.calls()
		return a == 1 && i == 1 && h == 1 && st == 1
	})

	s.RefreshAlerts()
	waitFor(t, time.Second, func() bool {
		a, _, _, _ := backend.calls()
		return a == 2
	})
	_, i, h, st := backend.calls()
	if i != 1 || h != 1 || st != 1 {
		t.Errorf("other domains pulled: incidents=%d heatmap=%d stats=%d, want 1 each", i, h, st)
	}
}

func TestScheduler_PeriodicCycle(t *testing.T) {
	backend := &fakeBackend{}
	views := newTestViews()
	s := NewScheduler(backend, views, testCfg(20*time.Millisecond), nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer stopScheduler(t, s)

	waitFor(t, 2*time.Second, func() bool {
		a, _, _, _ := backend.calls()
		return a >= 3
	})
}

func TestScheduler_CameraDetail(t *testing.T) {
	backend := &fakeBackend{
		cameras: []model.Camera{{ID: 4, Name: "US-101 at Vermont"}},
	}
	s := NewScheduler(backend, newTestViews(), testCfg(time.Hour), nil)

	detail, err := s.CameraDetail(context.Background(), 4)
	if err != nil {
		t.Fatalf("CameraDetail(4) error = %v", err)
	}
	if detail.Camera.Name != "US-101 at Vermont" {
		t.Errorf("Camera.Name = %q", detail.Camera.Name)
	}

	if _, err := s.CameraDetail(context.Background(), 99); err == nil {
		t.Error("CameraDetail(99) error = nil, want error")
	}
}

func TestScheduler_RefreshBeforeStartIsNoop(t *testing.T) {
	backend := &fakeBackend{}
	s := NewScheduler(backend, newTestViews(), testCfg(time.Hour), nil)

	s.RefreshAll()
	s.RefreshAlerts()
	s.SetWindow(6)

	if a, i, h, st := backend.calls(); a+i+h+st != 0 {
		t.Errorf("backend was called before Start: %d %d %d %d", a, i, h, st)
	}
}
