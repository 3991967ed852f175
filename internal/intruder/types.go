package intruder

import (
	"heimdall/internal/alert"
	"heimdall/internal/geo"
)

// Drone is one simulated intruder.
type Drone struct {
	ID       string
	Type     alert.DroneType
	Position geo.Point
	Altitude float64
	Speed    float64 // km/h
	Heading  float64
	// AlertID is the open alert raised for this drone, if any.
	AlertID  string
}

// Sighting is a drone seen by a camera.
type Sighting struct {
	Drone      *Drone
	CameraID   string
	Distance   float64
	Confidence float64
}

// ThreatFor grades a drone type.
func ThreatFor(t alert.DroneType) alert.ThreatLevel {
	switch t {
	case alert.DroneMilitary:
		return alert.ThreatCritical
	case alert.DroneUnknown:
		return alert.ThreatHigh
	case alert.DroneCommercial:
		return alert.ThreatMedium
	}
	return alert.ThreatLow
}
