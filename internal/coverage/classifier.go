package coverage

// Status is the network-wide coverage verdict.
type Status string

const (
	// StatusUnclassified marks a report whose perimeter is too small to analyze.
	StatusUnclassified Status = "unclassified"
	StatusOptimal      Status = "optimal"
	StatusGood         Status = "good"
	StatusAcceptable   Status = "acceptable"
	StatusCritical     Status = "critical"
)

// Statuses lists every classified status from best to worst.
var Statuses = []Status{StatusOptimal, StatusGood, StatusAcceptable, StatusCritical}

// Classification thresholds, in percent. They are evaluated in order and the
// first matching rule wins.
const (
	OptimalCoveragePercent    = 100.0
	OptimalRedundancyPercent  = 80.0
	GoodCoveragePercent       = 90.0
	GoodRedundancyPercent     = 60.0
	AcceptableCoveragePercent = 75.0
)

// Classify maps coverage and redundancy percentages to a Status.
func Classify(coveragePercent, redundancyPercent float64) Status {
	switch {
	case coveragePercent >= OptimalCoveragePercent && redundancyPercent >= OptimalRedundancyPercent:
		return StatusOptimal
	case coveragePercent >= GoodCoveragePercent && redundancyPercent >= GoodRedundancyPercent:
		return StatusGood
	case coveragePercent >= AcceptableCoveragePercent:
		return StatusAcceptable
	default:
		return StatusCritical
	}
}

// Classified reports whether s carries a verdict.
func (s Status) Classified() bool {
	switch s {
	case StatusOptimal, StatusGood, StatusAcceptable, StatusCritical:
		return true
	}
	return false
}
