// Coverage and alert rows with greptime tags
package telemetry

import (
	"os"
	"time"

	"heimdall/internal/alert"
	"heimdall/internal/coverage"
)

// CoverageRow is one recomputed perimeter coverage snapshot.
type CoverageRow struct {
	SiteID            string     `json:"site_id"`            // TAG
	TotalPoints       int        `json:"total_points"`       // FIELD
	CoveredPoints     int        `json:"covered_points"`     // FIELD
	RedundantPoints   int        `json:"redundant_points"`   // FIELD
	VulnerablePoints  int        `json:"vulnerable_points"`  // FIELD
	BlindSpots        int        `json:"blind_spots"`        // FIELD
	CoveragePercent   float64    `json:"coverage_percent"`   // FIELD
	RedundancyPercent float64    `json:"redundancy_percent"` // FIELD
	Status            string     `json:"status"`             // FIELD
	ActiveCameras     int        `json:"active_cameras"`     // FIELD
	TotalCameras      int        `json:"total_cameras"`      // FIELD
	Points            []PointRow `json:"points,omitempty"`   // not persisted to GreptimeDB
	Timestamp         time.Time  `json:"ts"`                 // TIME INDEX
}

// PointRow is the coverage of a single perimeter checkpoint.
type PointRow struct {
	Index   int      `json:"index"`
	Lat     float64  `json:"lat"`
	Lon     float64  `json:"lon"`
	Cameras []string `json:"cameras"`
	State   string   `json:"state"`
}

// NewCoverageRow flattens a coverage report for the writers.
func NewCoverageRow(siteID string, r coverage.Report, activeCameras, totalCameras int, ts time.Time) CoverageRow {
	row := CoverageRow{
		SiteID:            siteID,
		TotalPoints:       r.TotalPoints,
		CoveredPoints:     r.CoveredPoints,
		RedundantPoints:   r.RedundantPoints,
		VulnerablePoints:  r.VulnerablePoints,
		BlindSpots:        r.BlindSpots,
		CoveragePercent:   r.CoveragePercent,
		RedundancyPercent: r.RedundancyPercent,
		Status:            string(r.Status),
		ActiveCameras:     activeCameras,
		TotalCameras:      totalCameras,
		Timestamp:         ts,
	}
	for _, pc := range r.Points {
		row.Points = append(row.Points, PointRow{
			Index:   pc.Index,
			Lat:     pc.Point.Lat,
			Lon:     pc.Point.Lon,
			Cameras: append([]string{}, pc.Cameras...),
			State:   string(pc.State),
		})
	}
	return row
}

// CoverageTableName holds the table name used when writing coverage rows to
// GreptimeDB. It defaults to "perimeter_coverage" and can be overridden via
// the COVERAGE_TABLE environment variable.
var CoverageTableName = func() string {
	if env := os.Getenv("COVERAGE_TABLE"); env != "" {
		return env
	}
	return "perimeter_coverage"
}()

func (CoverageRow) TableName() string {
	return CoverageTableName
}

// AlertRow is a drone alert change as forwarded to the writers.
type AlertRow struct {
	SiteID          string    `json:"site_id"`          // TAG
	AlertID         string    `json:"alert_id"`         // TAG
	CameraID        string    `json:"camera_id"`        // TAG
	Lat             float64   `json:"lat"`              // FIELD
	Lon             float64   `json:"lon"`              // FIELD
	Alt             float64   `json:"alt"`              // FIELD
	Confidence      float64   `json:"confidence"`       // FIELD
	SpeedKmh        float64   `json:"speed_kmh"`        // FIELD
	HeadingDeg      float64   `json:"heading_deg"`      // FIELD
	DroneType       string    `json:"drone_type"`       // FIELD
	ThreatLevel     string    `json:"threat_level"`     // FIELD
	Status          string    `json:"status"`           // FIELD
	InsidePerimeter bool      `json:"inside_perimeter"` // FIELD
	Notes           string    `json:"notes,omitempty"`  // FIELD
	DetectedAt      time.Time `json:"detected_at"`      // FIELD
	Timestamp       time.Time `json:"ts"`               // TIME INDEX
}

// NewAlertRow flattens an alert for the writers.
func NewAlertRow(siteID string, a alert.Alert, inside bool, ts time.Time) AlertRow {
	return AlertRow{
		SiteID:          siteID,
		AlertID:         a.ID,
		CameraID:        a.CameraID,
		Lat:             a.Latitude,
		Lon:             a.Longitude,
		Alt:             a.Altitude,
		Confidence:      a.Confidence,
		SpeedKmh:        a.Speed,
		HeadingDeg:      a.Heading,
		DroneType:       string(a.DroneType),
		ThreatLevel:     string(a.ThreatLevel),
		Status:          string(a.Status),
		InsidePerimeter: inside,
		Notes:           a.Notes,
		DetectedAt:      a.DetectedAt,
		Timestamp:       ts,
	}
}

// AlertTableName holds the table name for alert rows, overridable via the
// ALERT_TABLE environment variable.
var AlertTableName = func() string {
	if env := os.Getenv("ALERT_TABLE"); env != "" {
		return env
	}
	return "drone_alerts"
}()

func (AlertRow) TableName() string {
	return AlertTableName
}
