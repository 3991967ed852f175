package coverage

import "heimdall/internal/geo"

var riihimakiPerimeter = []geo.Point{
	{Lat: 60.7420, Lon: 24.7650},
	{Lat: 60.7450, Lon: 24.7800},
	{Lat: 60.7380, Lon: 24.7850},
	{Lat: 60.7350, Lon: 24.7750},
	{Lat: 60.7320, Lon: 24.7650},
	{Lat: 60.7350, Lon: 24.7550},
	{Lat: 60.7400, Lon: 24.7500},
}

func sensor(id string, lat, lon, rng, fov, heading float64, active bool) Sensor {
	return Sensor{
		ID:             id,
		Position:       geo.Point{Lat: lat, Lon: lon},
		RangeMeters:    rng,
		FOVDegrees:     fov,
		HeadingDegrees: heading,
		Operational:    active,
	}
}

// defaultDeployment mirrors config/deployment.yaml: twelve cameras, three of
// them in maintenance or offline.
func defaultDeployment() []Sensor {
	return []Sensor{
		sensor("HEIMDALL-N1", 60.7520, 24.7729, 800, 90, 180, true),
		sensor("HEIMDALL-N2", 60.7495, 24.7850, 650, 75, 225, true),
		sensor("HEIMDALL-E1", 60.7395, 24.7920, 750, 80, 270, true),
		sensor("HEIMDALL-E2", 60.7320, 24.7880, 900, 95, 315, true),
		sensor("HEIMDALL-S1", 60.7250, 24.7729, 600, 85, 0, true),
		sensor("HEIMDALL-S2", 60.7280, 24.7580, 720, 70, 45, false),
		sensor("HEIMDALL-W1", 60.7395, 24.7520, 850, 100, 90, true),
		sensor("HEIMDALL-W2", 60.7460, 24.7600, 680, 88, 135, true),
		sensor("HEIMDALL-C1", 60.7395, 24.7729, 1000, 120, 0, true),
		sensor("HEIMDALL-C2", 60.7395, 24.7729, 950, 110, 180, false),
		sensor("HEIMDALL-M1", 60.7350, 24.7680, 500, 60, 270, true),
		sensor("HEIMDALL-B1", 60.7440, 24.7780, 1200, 140, 225, false),
	}
}
