package geo

import (
	"errors"
	"fmt"

	"github.com/golang/geo/s2"
)

// ErrTooFewPoints is returned when a perimeter has fewer than three usable vertices.
var ErrTooFewPoints = errors.New("perimeter needs at least 3 valid points")

// Perimeter is an ordered boundary polygon. Vertex order defines adjacency.
type Perimeter struct {
	points []Point
	loop   *s2.Loop
}

// NewPerimeter builds a perimeter from an ordered vertex list. Invalid
// coordinates and consecutive duplicates are dropped before the loop is built.
func NewPerimeter(points []Point) (*Perimeter, error) {
	cleaned := make([]Point, 0, len(points))
	for _, p := range points {
		if !p.Valid() {
			continue
		}
		if n := len(cleaned); n > 0 && cleaned[n-1] == p {
			continue
		}
		cleaned = append(cleaned, p)
	}
	if n := len(cleaned); n > 1 && cleaned[0] == cleaned[n-1] {
		cleaned = cleaned[:n-1]
	}
	if len(cleaned) < 3 {
		return nil, ErrTooFewPoints
	}

	vertices := make([]s2.Point, len(cleaned))
	for i, p := range cleaned {
		vertices[i] = s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lon))
	}
	loop := s2.LoopFromPoints(vertices)
	// Vertex order from operators is arbitrary; keep the smaller region as interior.
	loop.Normalize()
	if err := loop.Validate(); err != nil {
		return nil, fmt.Errorf("invalid perimeter polygon: %w", err)
	}
	return &Perimeter{points: cleaned, loop: loop}, nil
}

// Points returns a copy of the perimeter vertices in order.
func (p *Perimeter) Points() []Point {
	out := make([]Point, len(p.points))
	copy(out, p.points)
	return out
}

// Len returns the number of vertices.
func (p *Perimeter) Len() int { return len(p.points) }

// Contains reports whether pt lies inside the perimeter polygon.
func (p *Perimeter) Contains(pt Point) bool {
	if !pt.Valid() {
		return false
	}
	return p.loop.ContainsPoint(s2.PointFromLatLng(s2.LatLngFromDegrees(pt.Lat, pt.Lon)))
}

// LengthMeters returns the length of the closed boundary ring.
func (p *Perimeter) LengthMeters() float64 {
	var total float64
	for i := range p.points {
		total += DistanceMeters(p.points[i], p.points[(i+1)%len(p.points)])
	}
	return total
}

// AreaSquareMeters returns the enclosed area on the reference sphere.
func (p *Perimeter) AreaSquareMeters() float64 {
	return p.loop.Area() * EarthRadiusMeters * EarthRadiusMeters
}

// Centroid returns the area-weighted centre of the polygon.
func (p *Perimeter) Centroid() Point {
	ll := s2.LatLngFromPoint(p.loop.Centroid())
	return Point{Lat: ll.Lat.Degrees(), Lon: ll.Lng.Degrees()}
}
