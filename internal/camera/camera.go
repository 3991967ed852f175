// Package camera holds the camera registry: the record type, input
// validation and the memory and PostgreSQL stores.
package camera

import (
	"errors"
	"math"
	"time"

	"heimdall/internal/coverage"
	"heimdall/internal/geo"
)

var (
	// ErrNotFound is returned when no camera matches the requested id.
	ErrNotFound = errors.New("camera not found")
	// ErrDuplicateCameraID is returned when a cameraId is already registered.
	ErrDuplicateCameraID = errors.New("camera ID already exists")
)

// Status is the operational state of a camera.
type Status string

const (
	StatusActive      Status = "active"
	StatusMaintenance Status = "maintenance"
	StatusOffline     Status = "offline"
)

// Statuses lists every camera status.
var Statuses = []Status{StatusActive, StatusMaintenance, StatusOffline}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusMaintenance, StatusOffline:
		return true
	}
	return false
}

// Type is the sensor package fitted to a camera.
type Type string

const (
	TypeStandard       Type = "Standard Surveillance"
	TypeThermal        Type = "Thermal Imaging"
	TypeNightVision    Type = "Night Vision"
	TypeHighResolution Type = "High Resolution"
)

// Types lists every camera type.
var Types = []Type{TypeStandard, TypeThermal, TypeNightVision, TypeHighResolution}

// Valid reports whether t is a known camera type.
func (t Type) Valid() bool {
	for _, v := range Types {
		if t == v {
			return true
		}
	}
	return false
}

// Camera is a registered surveillance camera. Heading is measured clockwise
// from north in degrees.
type Camera struct {
	ID            int64      `json:"id"`
	CameraID      string     `json:"cameraId"`
	Latitude      float64    `json:"latitude"`
	Longitude     float64    `json:"longitude"`
	Altitude      float64    `json:"altitude"`
	Range         float64    `json:"range"`
	FOV           float64    `json:"fov"`
	Heading       float64    `json:"heading"`
	Pitch         float64    `json:"pitch"`
	Roll          float64    `json:"roll"`
	Status        Status     `json:"status"`
	CameraType    Type       `json:"cameraType"`
	FeedURL       string     `json:"feedUrl,omitempty"`
	FeedUsername  string     `json:"feedUsername,omitempty"`
	FeedPassword  string     `json:"feedPassword,omitempty"`
	LastDetection *time.Time `json:"lastDetection"`
}

// Position returns the camera location.
func (c Camera) Position() geo.Point {
	return geo.Point{Lat: c.Latitude, Lon: c.Longitude}
}

// Operational reports whether the camera contributes coverage.
func (c Camera) Operational() bool { return c.Status == StatusActive }

// Sensor converts the record into the geometry used by the coverage engine.
func (c Camera) Sensor() coverage.Sensor {
	return coverage.Sensor{
		ID:             c.CameraID,
		Position:       c.Position(),
		RangeMeters:    c.Range,
		FOVDegrees:     c.FOV,
		HeadingDegrees: c.Heading,
		Operational:    c.Operational(),
	}
}

// Sensors converts a camera list for coverage analysis.
func Sensors(cams []Camera) []coverage.Sensor {
	out := make([]coverage.Sensor, len(cams))
	for i, c := range cams {
		out[i] = c.Sensor()
	}
	return out
}

// CountByStatus tallies cameras per status.
func CountByStatus(cams []Camera) map[Status]int {
	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for _, c := range cams {
		counts[c.Status]++
	}
	return counts
}

// ToMicrodegrees converts decimal degrees to the integer storage form.
func ToMicrodegrees(deg float64) int64 {
	return int64(math.Round(deg * 1e6))
}

// FromMicrodegrees converts stored microdegrees back to decimal degrees.
func FromMicrodegrees(v int64) float64 {
	return float64(v) / 1e6
}

// quantize rounds deg to storage precision so every registry returns the
// same coordinates for the same input.
func quantize(deg float64) float64 {
	return FromMicrodegrees(ToMicrodegrees(deg))
}
