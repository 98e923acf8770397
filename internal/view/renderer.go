package view

import "github.com/drivesight/console/internal/model"

// AlertRenderer receives the alert feed state. RenderAlerts gets the
// full bounded list newest-first after every change; FlashAlert fires
// once per pushed alert so the surface can highlight the arrival.
type AlertRenderer interface {
	RenderAlerts(alerts []model.Alert)
	FlashAlert(alert model.Alert)
	RenderAlertsError(err error)
}

// HeatmapRenderer receives the full heat map point set after every
// replacement.
type HeatmapRenderer interface {
	RenderHeatmap(points []model.HeatPoint)
	RenderHeatmapError(err error)
}

// StatsRenderer receives the complete stats record after every
// overwrite.
type StatsRenderer interface {
	RenderStats(stats model.Stats)
	RenderStatsError(err error)
}

// IncidentRenderer receives the incident working set. PlaceIncident
// fires once per pushed incident so the map can drop a marker without
// a full redraw.
type IncidentRenderer interface {
	RenderIncidents(incidents []model.Incident)
	PlaceIncident(incident model.Incident)
	RenderIncidentsError(err error)
}

// CameraRenderer receives the camera roster whenever the roster loads
// or the name filter changes.
type CameraRenderer interface {
	RenderCameras(cameras []model.Camera)
}
