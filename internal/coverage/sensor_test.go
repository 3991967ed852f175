package coverage

import (
	"math"
	"testing"

	"heimdall/internal/geo"
)

func TestAngleDifference(t *testing.T) {
	cases := []struct {
		a, b, want float64
	}{
		{10, 350, 20},
		{350, 10, 20},
		{0, 180, 180},
		{90, 45, 45},
		{5, 350, 15},
		{0, 0, 0},
		{359, 0, 1},
	}
	for _, tc := range cases {
		if got := AngleDifference(tc.a, tc.b); math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("AngleDifference(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestCoversInactiveNeverCounts(t *testing.T) {
	origin := geo.Point{Lat: 60.7395, Lon: 24.7729}
	s := sensor("C2", origin.Lat, origin.Lon, 2000, 180, 0, false)
	for deg := 0.0; deg < 360; deg += 15 {
		for _, dist := range []float64{0, 10, 500, 1999} {
			p := geo.Destination(origin, deg, dist)
			if Covers(p, s) {
				t.Fatalf("inactive sensor covered %v", p)
			}
		}
	}
}

func TestCoversBeyondRange(t *testing.T) {
	origin := geo.Point{Lat: 60.7395, Lon: 24.7729}
	s := sensor("C1", origin.Lat, origin.Lon, 500, 180, 0, true)
	for deg := 0.0; deg < 360; deg += 30 {
		p := geo.Destination(origin, deg, 501)
		if Covers(p, s) {
			t.Fatalf("point at %v° beyond range was covered", deg)
		}
	}
	if !Covers(geo.Destination(origin, 0, 499), s) {
		t.Fatalf("point inside range straight ahead not covered")
	}
}

func TestCoversSamePosition(t *testing.T) {
	s := sensor("N1", 60.7520, 24.7729, 800, 30, 180, true)
	if !Covers(s.Position, s) {
		t.Fatalf("point at sensor position must be covered")
	}
}

func TestCoversWraparound(t *testing.T) {
	origin := geo.Point{Lat: 0, Lon: 0}
	s := sensor("wrap", 0, 0, 1000, 40, 350, true)
	p := geo.Destination(origin, 5, 100)
	if b := geo.BearingDegrees(origin, p); math.Abs(b-5) > 1e-6 {
		t.Fatalf("bearing = %v, want 5", b)
	}
	if !Covers(p, s) {
		t.Fatalf("heading 350 with fov 40 must cover bearing 5")
	}
	if Covers(geo.Destination(origin, 15, 100), s) {
		t.Fatalf("bearing 15 is 25° off heading and must not be covered")
	}
}

func TestCoversFOVBoundaryInclusive(t *testing.T) {
	// Due east along the equator is exactly 90°.
	p := geo.Point{Lat: 0, Lon: 0.001}
	if !Covers(p, sensor("edge", 0, 0, 1000, 180, 0, true)) {
		t.Fatalf("angle difference equal to half the fov must be covered")
	}
	if !Covers(p, sensor("edge45", 0, 0, 1000, 90, 45, true)) {
		t.Fatalf("angle difference 45 with fov 90 must be covered")
	}
	if Covers(p, sensor("narrow", 0, 0, 1000, 179.9, 0, true)) {
		t.Fatalf("angle difference beyond half the fov must not be covered")
	}
}

func TestCoversRejectsNonFinite(t *testing.T) {
	s := sensor("nan", math.NaN(), 24.77, 800, 90, 0, true)
	if Covers(geo.Point{Lat: 60.74, Lon: 24.77}, s) {
		t.Fatalf("sensor with NaN latitude must not cover")
	}
	good := sensor("ok", 60.74, 24.77, 800, 90, 0, true)
	if Covers(geo.Point{Lat: math.Inf(1), Lon: 24.77}, good) {
		t.Fatalf("infinite point must not be covered")
	}
	inf := sensor("inf", 60.74, 24.77, math.Inf(1), 90, 0, true)
	if Covers(geo.Point{Lat: 60.745, Lon: 24.77}, inf) {
		t.Fatalf("sensor with infinite range must be ignored")
	}
}
