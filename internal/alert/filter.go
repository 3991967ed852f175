package alert

import "strings"

// FilterAll disables a facet.
const FilterAll = "all"

// Filter selects alerts for the history view.
type Filter struct {
	Search string
	Status string
	Threat string
}

// Match reports whether a passes every facet of f. Search is a
// case-insensitive substring match over camera id, drone type and notes.
func (f Filter) Match(a Alert) bool {
	if f.Status != "" && f.Status != FilterAll && string(a.Status) != f.Status {
		return false
	}
	if f.Threat != "" && f.Threat != FilterAll && string(a.ThreatLevel) != f.Threat {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(a.CameraID), q) ||
		strings.Contains(strings.ToLower(string(a.DroneType)), q) ||
		strings.Contains(strings.ToLower(a.Notes), q)
}

// Apply returns the alerts matching f, preserving order.
func Apply(alerts []Alert, f Filter) []Alert {
	out := make([]Alert, 0, len(alerts))
	for _, a := range alerts {
		if f.Match(a) {
			out = append(out, a)
		}
	}
	return out
}
