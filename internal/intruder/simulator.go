package intruder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"heimdall/internal/alert"
	"heimdall/internal/camera"
	"heimdall/internal/logging"
)

// Summary counts the alert changes made by one step.
type Summary struct {
	Raised    int
	Contacted int
	Lost      int
	Respawned int
}

// Simulator turns engine sightings into drone alerts.
type Simulator struct {
	engine   *Engine
	cameras  camera.Registry
	alerts   *alert.Store
	interval time.Duration
}

// DefaultInterval is used when NewSimulator gets a non-positive interval.
const DefaultInterval = 5 * time.Second

// NewSimulator returns a Simulator stepping engine every interval.
func NewSimulator(engine *Engine, cameras camera.Registry, alerts *alert.Store, interval time.Duration) *Simulator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Simulator{engine: engine, cameras: cameras, alerts: alerts, interval: interval}
}

// Step moves the drones once and updates their alerts: a new sighting
// raises an alert, a repeat sighting moves it to tracking, a drone out of
// view is lost. Drones whose alert was neutralized are replaced.
func (s *Simulator) Step(ctx context.Context) (Summary, error) {
	var sum Summary
	cams, err := s.cameras.List(ctx)
	if err != nil {
		return sum, fmt.Errorf("list cameras: %w", err)
	}
	s.engine.Step(s.interval)
	sightings := s.engine.Detect(camera.Sensors(cams))

	for i, d := range s.engine.Drones {
		sighting, seen := sightings[d.ID]
		if d.AlertID == "" {
			if seen {
				if err := s.raise(sighting); err != nil {
					return sum, err
				}
				sum.Raised++
			}
			continue
		}

		a, err := s.alerts.Get(d.AlertID)
		if errors.Is(err, alert.ErrNotFound) || (err == nil && a.Status == alert.StatusNeutralized) {
			s.engine.Replace(i)
			sum.Respawned++
			continue
		}
		if err != nil {
			return sum, err
		}

		var ev alert.Event
		switch {
		case seen && a.Status == alert.StatusActive:
			ev = alert.EventContact
		case seen && a.Status == alert.StatusLost:
			ev = alert.EventReacquire
		case !seen && (a.Status == alert.StatusActive || a.Status == alert.StatusTracking):
			ev = alert.EventLose
		default:
			continue
		}
		if _, err := s.alerts.Update(a.ID, alert.Update{Event: &ev}); err != nil {
			return sum, err
		}
		if ev == alert.EventLose {
			sum.Lost++
		} else {
			sum.Contacted++
		}
	}
	return sum, nil
}

func (s *Simulator) raise(sg Sighting) error {
	d := sg.Drone
	a, err := s.alerts.Create(alert.Input{
		CameraID:    sg.CameraID,
		Latitude:    d.Position.Lat,
		Longitude:   d.Position.Lon,
		Altitude:    d.Altitude,
		Confidence:  sg.Confidence,
		Speed:       d.Speed,
		Heading:     d.Heading,
		DroneType:   d.Type,
		ThreatLevel: ThreatFor(d.Type),
		Notes:       "Simulated intruder",
	})
	if err != nil {
		return fmt.Errorf("raise alert: %w", err)
	}
	d.AlertID = a.ID
	return nil
}

// Run steps the simulation every interval until ctx is done.
func (s *Simulator) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sum, err := s.Step(ctx)
			if err != nil {
				log.Error("intruder step failed", "err", err)
				continue
			}
			if sum != (Summary{}) {
				log.Debug("intruder step", "raised", sum.Raised, "contacted", sum.Contacted, "lost", sum.Lost, "respawned", sum.Respawned)
			}
		}
	}
}
