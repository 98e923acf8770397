package main

import (
	"log/slog"

	"github.com/drivesight/console/internal/model"
)

// logRenderer is the render sink for the headless binary: it logs a
// summary of every draw a real surface would make. It satisfies all of
// the view renderer interfaces.
type logRenderer struct {
	logger *slog.Logger
}

func newLogRenderer(logger *slog.Logger) *logRenderer {
	return &logRenderer{logger: logger.With("component", "render")}
}

func (r *logRenderer) RenderAlerts(alerts []model.Alert) {
	r.logger.Info("alert feed", "count", len(alerts))
}

func (r *logRenderer) FlashAlert(a model.Alert) {
	r.logger.Info("new alert",
		"id", a.ID,
		"type", a.AlertType,
		"title", a.Title,
		"notified_chp", a.NotifiedCHP,
	)
}

func (r *logRenderer) RenderAlertsError(err error) {
	r.logger.Warn("alert feed unavailable, retrying", "error", err)
}

func (r *logRenderer) RenderHeatmap(points []model.HeatPoint) {
	r.logger.Info("heatmap", "points", len(points))
}

func (r *logRenderer) RenderHeatmapError(err error) {
	r.logger.Warn("heatmap unavailable, retrying", "error", err)
}

func (r *logRenderer) RenderStats(s model.Stats) {
	r.logger.Info("stats",
		"cameras_active", s.CamerasActive,
		"incidents_today", s.IncidentsToday,
		"active_alerts", s.ActiveAlerts,
	)
}

func (r *logRenderer) RenderStatsError(err error) {
	r.logger.Warn("stats unavailable, retrying", "error", err)
}

func (r *logRenderer) RenderIncidents(incidents []model.Incident) {
	r.logger.Info("incident map", "count", len(incidents))
}

func (r *logRenderer) PlaceIncident(i model.Incident) {
	r.logger.Info("incident placed",
		"id", i.ID,
		"type", i.IncidentType,
		"severity", i.Severity,
		"camera", i.CameraName,
	)
}

func (r *logRenderer) RenderIncidentsError(err error) {
	r.logger.Warn("incident map unavailable, retrying", "error", err)
}

func (r *logRenderer) RenderCameras(cameras []model.Camera) {
	r.logger.Info("camera roster", "count", len(cameras))
}
