// Package geo provides the spherical-earth primitives used by the coverage
// engine: great-circle distance, initial bearing and forward projection.
package geo

import "math"

// EarthRadiusMeters is the mean earth radius used by every calculation here.
const EarthRadiusMeters = 6371000.0

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Valid reports whether p has finite coordinates inside the WGS84 ranges.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || math.IsNaN(p.Lon) || math.IsInf(p.Lon, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }
func toDeg(rad float64) float64 { return rad * 180 / math.Pi }

// DistanceMeters returns the haversine great-circle distance between a and b.
func DistanceMeters(a, b Point) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMeters * c
}

// BearingDegrees returns the initial compass bearing from one point to
// another, clockwise from north, normalized into [0,360).
//
// When from and to are the same point both arctangent terms are zero and the
// bearing is reported as 0.
func BearingDegrees(from, to Point) float64 {
	lat1 := toRad(from.Lat)
	lat2 := toRad(to.Lat)
	dLon := toRad(to.Lon - from.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	if y == 0 && x == 0 {
		return 0
	}
	return NormalizeDegrees(toDeg(math.Atan2(y, x)))
}

// NormalizeDegrees maps any finite angle into [0,360).
func NormalizeDegrees(deg float64) float64 {
	n := math.Mod(deg, 360)
	if n < 0 {
		n += 360
	}
	if n >= 360 {
		n -= 360
	}
	return n
}

// Destination projects a point the given distance along an initial bearing.
func Destination(p Point, bearingDeg, meters float64) Point {
	delta := meters / EarthRadiusMeters
	theta := toRad(bearingDeg)
	lat1 := toRad(p.Lat)
	lon1 := toRad(p.Lon)

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(delta) + math.Cos(lat1)*math.Sin(delta)*math.Cos(theta))
	lon2 := lon1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(lat1),
		math.Cos(delta)-math.Sin(lat1)*math.Sin(lat2),
	)
	lon := math.Mod(toDeg(lon2)+540, 360) - 180
	return Point{Lat: toDeg(lat2), Lon: lon}
}
