// Package intruder flies simulated drones around a site and raises alerts
// for the ones the camera network can see.
package intruder

import (
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"heimdall/internal/alert"
	"heimdall/internal/coverage"
	"heimdall/internal/geo"
)

// maxTurnDegrees bounds the random heading change per step.
const maxTurnDegrees = 15

type speedRange struct{ min, max float64 }

var speeds = map[alert.DroneType]speedRange{
	alert.DroneUnknown:    {20, 70},
	alert.DroneCommercial: {20, 50},
	alert.DroneMilitary:   {60, 100},
	alert.DroneRacing:     {80, 120},
}

// Engine maintains and updates simulated drones inside a circular region.
type Engine struct {
	center  geo.Point
	radiusM float64
	rand    *rand.Rand
	Drones  []*Drone
}

// NewEngine creates an engine with count drones spread over the region.
func NewEngine(count int, center geo.Point, radiusM float64, r *rand.Rand) *Engine {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	e := &Engine{center: center, radiusM: radiusM, rand: r}
	for i := 0; i < count; i++ {
		e.Drones = append(e.Drones, e.spawn())
	}
	return e
}

func (e *Engine) randomType() alert.DroneType {
	types := []alert.DroneType{alert.DroneUnknown, alert.DroneCommercial, alert.DroneMilitary, alert.DroneRacing}
	return types[e.rand.Intn(len(types))]
}

func (e *Engine) between(lo, hi float64) float64 {
	return lo + e.rand.Float64()*(hi-lo)
}

// spawn places a drone on the edge of the region heading roughly inwards.
func (e *Engine) spawn() *Drone {
	typ := e.randomType()
	sr := speeds[typ]
	pos := geo.Destination(e.center, e.between(0, 360), e.radiusM*e.between(0.8, 1))
	return &Drone{
		ID:       uuid.New().String(),
		Type:     typ,
		Position: pos,
		Altitude: math.Round(e.between(30, 150)),
		Speed:    math.Round(e.between(sr.min, sr.max)),
		Heading:  geo.NormalizeDegrees(geo.BearingDegrees(pos, e.center) + e.between(-45, 45)),
	}
}

// Step advances every drone by dt along its heading. Drones that leave the
// region turn back towards its center.
func (e *Engine) Step(dt time.Duration) {
	for _, d := range e.Drones {
		meters := d.Speed / 3.6 * dt.Seconds()
		if meters > 0 {
			d.Position = geo.Destination(d.Position, d.Heading, meters)
		}
		if geo.DistanceMeters(e.center, d.Position) > e.radiusM {
			d.Heading = geo.BearingDegrees(d.Position, e.center)
			continue
		}
		d.Heading = geo.NormalizeDegrees(d.Heading + e.between(-maxTurnDegrees, maxTurnDegrees))
	}
}

// Replace swaps drone i for a freshly spawned one.
func (e *Engine) Replace(i int) {
	e.Drones[i] = e.spawn()
}

// Detect returns, for every drone covered by an operational sensor, the
// sighting from the closest such sensor.
func (e *Engine) Detect(sensors []coverage.Sensor) map[string]Sighting {
	out := make(map[string]Sighting)
	for _, d := range e.Drones {
		for _, s := range sensors {
			if !coverage.Covers(d.Position, s) {
				continue
			}
			dist := geo.DistanceMeters(s.Position, d.Position)
			if prev, ok := out[d.ID]; ok && prev.Distance <= dist {
				continue
			}
			out[d.ID] = Sighting{
				Drone:      d,
				CameraID:   s.ID,
				Distance:   dist,
				Confidence: confidenceAt(dist, s.RangeMeters),
			}
		}
	}
	return out
}

// confidenceAt falls linearly from 99 at the camera to 60 at full range.
func confidenceAt(dist, rangeM float64) float64 {
	if rangeM <= 0 {
		return 60
	}
	return math.Round(99 - 39*math.Min(dist/rangeM, 1))
}
