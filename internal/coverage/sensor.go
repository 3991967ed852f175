// Package coverage decides which perimeter checkpoints are watched by which
// cameras and grades the network as a whole.
package coverage

import (
	"math"

	"heimdall/internal/geo"
)

// Sensor is the geometric view of a camera used by the coverage engine.
type Sensor struct {
	ID             string    `json:"id"`
	Position       geo.Point `json:"position"`
	RangeMeters    float64   `json:"range"`
	FOVDegrees     float64   `json:"fov"`
	HeadingDegrees float64   `json:"heading"`
	// Operational is true only for cameras in the active state.
	Operational bool `json:"operational"`
}

// usable reports whether every numeric field of s is finite and the position
// is a real coordinate.
func (s Sensor) usable() bool {
	for _, v := range []float64{s.RangeMeters, s.FOVDegrees, s.HeadingDegrees} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return s.Position.Valid()
}

// AngleDifference returns the shortest angular distance between two compass
// directions, in [0,180].
func AngleDifference(a, b float64) float64 {
	diff := math.Mod(math.Abs(a-b), 360)
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}

// Covers reports whether point lies inside the detection wedge of s.
// Non-operational sensors never cover anything. A point at the sensor's own
// position is always covered since its bearing is undefined.
func Covers(point geo.Point, s Sensor) bool {
	if !s.Operational {
		return false
	}
	if !s.usable() || !point.Valid() {
		return false
	}
	d := geo.DistanceMeters(s.Position, point)
	if d > s.RangeMeters {
		return false
	}
	if d == 0 {
		return true
	}
	bearing := geo.BearingDegrees(s.Position, point)
	return AngleDifference(bearing, s.HeadingDegrees) <= s.FOVDegrees/2
}
