// Package alert models drone intrusion alerts: the record, its lifecycle,
// trajectory projection and an in-memory feed store.
package alert

import (
	"errors"
	"time"

	"heimdall/internal/geo"
)

var (
	ErrNotFound          = errors.New("drone alert not found")
	ErrInvalidTransition = errors.New("invalid alert status transition")
)

// ThreatLevel grades how dangerous a detected drone is.
type ThreatLevel string

const (
	ThreatLow      ThreatLevel = "Low"
	ThreatMedium   ThreatLevel = "Medium"
	ThreatHigh     ThreatLevel = "High"
	ThreatCritical ThreatLevel = "Critical"
)

// ThreatLevels lists threat levels from least to most severe.
var ThreatLevels = []ThreatLevel{ThreatLow, ThreatMedium, ThreatHigh, ThreatCritical}

// DroneType is the classified airframe.
type DroneType string

const (
	DroneUnknown    DroneType = "Unknown"
	DroneCommercial DroneType = "Commercial"
	DroneMilitary   DroneType = "Military"
	DroneRacing     DroneType = "Racing"
)

// Status is the tracking state of an alert.
type Status string

const (
	StatusActive      Status = "active"
	StatusTracking    Status = "tracking"
	StatusLost        Status = "lost"
	StatusNeutralized Status = "neutralized"
)

// TrajectoryPoint is one projected position of the drone.
type TrajectoryPoint struct {
	Lat           float64 `json:"lat" yaml:"lat" validate:"gte=-90,lte=90"`
	Lng           float64 `json:"lng" yaml:"lng" validate:"gte=-180,lte=180"`
	EstimatedTime string  `json:"estimatedTime" yaml:"estimated_time"`
	Confidence    float64 `json:"confidence" yaml:"confidence" validate:"gte=0,lte=100"`
}

// Alert is a single drone detection raised by a camera.
type Alert struct {
	ID                  string            `json:"id"`
	DetectedAt          time.Time         `json:"detectedAt"`
	CameraID            string            `json:"cameraId"`
	Latitude            float64           `json:"latitude"`
	Longitude           float64           `json:"longitude"`
	Altitude            float64           `json:"altitude"`
	Confidence          float64           `json:"confidence"`
	Speed               float64           `json:"speed"`
	Heading             float64           `json:"heading"`
	DroneType           DroneType         `json:"droneType"`
	ThreatLevel         ThreatLevel       `json:"threatLevel"`
	Status              Status            `json:"status"`
	EstimatedTrajectory []TrajectoryPoint `json:"estimatedTrajectory"`
	Notes               string            `json:"notes,omitempty"`
}

// Position returns the detected drone location.
func (a Alert) Position() geo.Point {
	return geo.Point{Lat: a.Latitude, Lon: a.Longitude}
}

// InsidePerimeter reports whether the drone was detected inside p.
func InsidePerimeter(a Alert, p *geo.Perimeter) bool {
	if p == nil {
		return false
	}
	return p.Contains(a.Position())
}
