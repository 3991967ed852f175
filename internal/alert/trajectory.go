package alert

import (
	"math"
	"strconv"
	"time"

	"heimdall/internal/geo"
)

// DefaultHorizon is the projection schedule used when an alert arrives
// without a trajectory.
var DefaultHorizon = []time.Duration{0, 30 * time.Second, time.Minute, 90 * time.Second}

// ConfidenceDecayPerStep is subtracted from the detection confidence for each
// projected step.
const ConfidenceDecayPerStep = 6.0

// ProjectTrajectory dead-reckons the drone along its heading at constant
// speed for each offset in horizon.
func ProjectTrajectory(origin geo.Point, headingDeg, speedKmh, confidence float64, horizon []time.Duration) []TrajectoryPoint {
	mps := speedKmh / 3.6
	out := make([]TrajectoryPoint, 0, len(horizon))
	for i, d := range horizon {
		p := geo.Destination(origin, headingDeg, mps*d.Seconds())
		conf := math.Max(0, confidence-float64(i)*ConfidenceDecayPerStep)
		out = append(out, TrajectoryPoint{
			Lat:           roundMicro(p.Lat),
			Lng:           roundMicro(p.Lon),
			EstimatedTime: FormatOffset(d),
			Confidence:    conf,
		})
	}
	return out
}

// FormatOffset renders a projection offset the way operators read it:
// "Now", "+30s", "+1m", "+1.5m".
func FormatOffset(d time.Duration) string {
	switch {
	case d <= 0:
		return "Now"
	case d < time.Minute:
		return "+" + strconv.Itoa(int(d/time.Second)) + "s"
	}
	return "+" + strconv.FormatFloat(d.Minutes(), 'f', -1, 64) + "m"
}

func roundMicro(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
