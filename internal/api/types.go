package api

import (
	"time"

	"github.com/drivesight/console/internal/model"
)

// AlertsResponse from GET /alerts
type AlertsResponse struct {
	Alerts []model.Alert `json:"alerts"`
	Total  int           `json:"total"`
}

// IncidentsResponse from GET /incidents
type IncidentsResponse struct {
	Incidents []model.Incident `json:"incidents"`
	Total     int              `json:"total"`
	Since     time.Time        `json:"since"`
}

// HeatmapResponse from GET /heatmap
type HeatmapResponse struct {
	Heatmap     []model.HeatPoint `json:"heatmap"`
	Hours       int               `json:"hours"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// CamerasResponse from GET /cameras
type CamerasResponse struct {
	Cameras []model.Camera `json:"cameras"`
	Total   int            `json:"total"`
}

// CameraDetailResponse from GET /cameras/{id}
type CameraDetailResponse struct {
	Camera          model.Camera     `json:"camera"`
	RecentIncidents []model.Incident `json:"recent_incidents"`
}

// AcknowledgeResponse from POST /incidents/{id}/acknowledge
type AcknowledgeResponse struct {
	Status     string `json:"status"`
	IncidentID int64  `json:"incident_id"`
}
