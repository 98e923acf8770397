package view

import (
	"sync"

	"github.com/drivesight/console/internal/model"
)

// recordingAlertRenderer captures every render call for assertions.
type recordingAlertRenderer struct {
	mu      sync.Mutex
	renders [][]model.Alert
	flashes []model.Alert
	errs    []error
}

func (r *recordingAlertRenderer) RenderAlerts(alerts []model.Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders = append(r.renders, alerts)
}

func (r *recordingAlertRenderer) FlashAlert(a model.Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flashes = append(r.flashes, a)
}

func (r *recordingAlertRenderer) RenderAlertsError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recordingAlertRenderer) lastRender() []model.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.renders) == 0 {
		return nil
	}
	return r.renders[len(r.renders)-1]
}

type recordingHeatmapRenderer struct {
	mu      sync.Mutex
	renders [][]model.HeatPoint
	errs    []error
}

func (r *recordingHeatmapRenderer) RenderHeatmap(points []model.HeatPoint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders = append(r.renders, points)
}

func (r *recordingHeatmapRenderer) RenderHeatmapError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

type recordingStatsRenderer struct {
	mu      sync.Mutex
	renders []model.Stats
	errs    []error
}

func (r *recordingStatsRenderer) RenderStats(s model.Stats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders = append(r.renders, s)
}

func (r *recordingStatsRenderer) RenderStatsError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

type recordingIncidentRenderer struct {
	mu      sync.Mutex
	renders [][]model.Incident
	placed  []model.Incident
	errs    []error
}

func (r *recordingIncidentRenderer) RenderIncidents(incidents []model.Incident) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders = append(r.renders, incidents)
}

func (r *recordingIncidentRenderer) PlaceIncident(i model.Incident) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.placed = append(r.placed, i)
}

func (r *recordingIncidentRenderer) RenderIncidentsError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

type recordingCameraRenderer struct {
	mu      sync.Mutex
	renders [][]model.Camera
}

func (r *recordingCameraRenderer) RenderCameras(cameras []model.Camera) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders = append(r.renders, cameras)
}

func (r *recordingCameraRenderer) lastRender() []model.Camera {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.renders) == 0 {
		return nil
	}
	return r.renders[len(r.renders)-1]
}
