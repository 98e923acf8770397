package model

import "time"

// Severity levels, highest first.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityModerate = "moderate"
	SeverityLow      = "low"
)

// Incident types produced by the detection pipeline.
const (
	IncidentSwerving       = "swerving"
	IncidentSpeedVariance  = "speed_variance"
	IncidentWrongWay       = "wrong_way"
	IncidentStoppedVehicle = "stopped_vehicle"
	IncidentAggressive     = "aggressive"
)

// SeverityRank returns a numeric rank for sorting and aggregation.
// Unknown severities rank below low.
func SeverityRank(severity string) int {
	switch severity {
	case SeverityCritical:
		return 4
	case SeverityWarning:
		return 3
	case SeverityModerate:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// Alert is an active alert dispatched to the console.
type Alert struct {
	ID          int64      `json:"id"`
	IncidentID  int64      `json:"incident_id"`
	AlertType   string     `json:"alert_type"` // critical or warning
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	IsActive    bool       `json:"is_active"`
	NotifiedCHP bool       `json:"notified_chp"`
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// Incident is a detected driving incident.
type Incident struct {
	ID           int64          `json:"id"`
	CameraID     int64          `json:"camera_id"`
	CameraName   string         `json:"camera_name,omitempty"`
	IncidentType string         `json:"incident_type"`
	Severity     string         `json:"severity"`
	Confidence   float64        `json:"confidence"`
	Latitude     float64        `json:"latitude"`
	Longitude    float64        `json:"longitude"`
	Description  string         `json:"description,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
	FrameURL     string         `json:"frame_url,omitempty"`
	Acknowledged bool           `json:"acknowledged"`
	CreatedAt    time.Time      `json:"created_at"`
}

// HeatPoint is one weighted cell of the aggregated incident heat map.
// Intensity is already an aggregate in [0,1]; heat maps are always
// replaced wholesale, never merged point by point.
type HeatPoint struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Intensity float64 `json:"intensity"`
	Severity  string  `json:"severity,omitempty"`
	Count     int     `json:"count,omitempty"`
}

// DailyCount is one entry of the seven-day incident trend series.
type DailyCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// Stats is the dashboard statistics record. It is always overwritten
// as a whole so the console never shows a torn mix of old and new counters.
type Stats struct {
	CamerasActive  int            `json:"cameras_active"`
	IncidentsToday int            `json:"incidents_today"`
	ActiveAlerts   int            `json:"active_alerts"`
	AvgConfidence  float64        `json:"avg_confidence"`
	SeverityCounts map[string]int `json:"severity_counts"`
	TypeCounts     map[string]int `json:"type_counts"`
	DailyTrend     []DailyCount   `json:"daily_trend"`
	Timestamp      time.Time      `json:"timestamp,omitzero"`
}

// Camera is a monitored Caltrans highway camera.
type Camera struct {
	ID         int64      `json:"id"`
	CaltransID string     `json:"caltrans_id"`
	Name       string     `json:"name"`
	District   string     `json:"district,omitempty"`
	Route      string     `json:"route,omitempty"`
	Direction  string     `json:"direction,omitempty"`
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	ImageURL   string     `json:"image_url,omitempty"`
	StreamURL  string     `json:"stream_url,omitempty"`
	IsActive   bool       `json:"is_active"`
	LastPolled *time.Time `json:"last_polled,omitempty"`
}
