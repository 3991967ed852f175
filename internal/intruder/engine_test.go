package intruder

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"heimdall/internal/alert"
	"heimdall/internal/coverage"
	"heimdall/internal/geo"
)

var center = geo.Point{Lat: 60.7395, Lon: 24.7725}

func TestNewEngineSpawnsInsideRegion(t *testing.T) {
	eng := NewEngine(20, center, 1500, rand.New(rand.NewSource(1)))
	if len(eng.Drones) != 20 {
		t.Fatalf("expected 20 drones, got %d", len(eng.Drones))
	}
	for _, d := range eng.Drones {
		if dist := geo.DistanceMeters(center, d.Position); dist > 1500.5 {
			t.Fatalf("drone spawned %.1fm from center", dist)
		}
		sr := speeds[d.Type]
		if d.Speed < sr.min || d.Speed > sr.max {
			t.Fatalf("%s speed %.0f outside [%.0f,%.0f]", d.Type, d.Speed, sr.min, sr.max)
		}
		if d.ID == "" {
			t.Fatalf("drone without id")
		}
	}
}

func TestEngineStepMovesAlongHeading(t *testing.T) {
	start := center
	eng := &Engine{
		center:  center,
		radiusM: 5000,
		rand:    rand.New(rand.NewSource(1)),
		Drones:  []*Drone{{ID: "d", Position: start, Speed: 36, Heading: 90}},
	}
	eng.Step(10 * time.Second)
	d := eng.Drones[0]
	if got := geo.DistanceMeters(start, d.Position); math.Abs(got-100) > 0.5 {
		t.Fatalf("moved %.2fm, want 100m", got)
	}
	if got := geo.BearingDegrees(start, d.Position); math.Abs(got-90) > 0.1 {
		t.Fatalf("moved along %.2f, want 90", got)
	}
	if coverage.AngleDifference(d.Heading, 90) > maxTurnDegrees {
		t.Fatalf("heading jittered to %.1f", d.Heading)
	}
}

func TestEngineStepTurnsBack(t *testing.T) {
	outside := geo.Destination(center, 0, 2000)
	eng := &Engine{
		center:  center,
		radiusM: 1000,
		rand:    rand.New(rand.NewSource(1)),
		Drones:  []*Drone{{ID: "d", Position: outside, Speed: 0, Heading: 0}},
	}
	eng.Step(time.Second)
	if got := eng.Drones[0].Heading; coverage.AngleDifference(got, 180) > 0.1 {
		t.Fatalf("heading = %.2f, want back towards center", got)
	}
}

func TestDetectPicksClosestCamera(t *testing.T) {
	target := geo.Destination(center, 0, 300)
	eng := &Engine{Drones: []*Drone{{ID: "d", Position: target}, {ID: "far", Position: geo.Destination(center, 180, 3000)}}}
	sensors := []coverage.Sensor{
		{ID: "wide", Position: center, RangeMeters: 1000, FOVDegrees: 180, HeadingDegrees: 0, Operational: true},
		{ID: "near", Position: geo.Destination(center, 0, 200), RangeMeters: 500, FOVDegrees: 360, HeadingDegrees: 0, Operational: true},
		{ID: "off", Position: target, RangeMeters: 500, FOVDegrees: 90, HeadingDegrees: 0, Operational: false},
	}
	got := eng.Detect(sensors)
	if len(got) != 1 {
		t.Fatalf("expected 1 sighting, got %d", len(got))
	}
	s := got["d"]
	if s.CameraID != "near" || math.Abs(s.Distance-100) > 0.5 {
		t.Fatalf("sighting = %+v", s)
	}
	if s.Confidence < 60 || s.Confidence > 99 {
		t.Fatalf("confidence = %.0f", s.Confidence)
	}
}

func TestThreatFor(t *testing.T) {
	cases := map[alert.DroneType]alert.ThreatLevel{
		alert.DroneMilitary:   alert.ThreatCritical,
		alert.DroneUnknown:    alert.ThreatHigh,
		alert.DroneCommercial: alert.ThreatMedium,
		alert.DroneRacing:     alert.ThreatLow,
	}
	for typ, want := range cases {
		if got := ThreatFor(typ); got != want {
			t.Errorf("ThreatFor(%s) = %s, want %s", typ, got, want)
		}
	}
}
