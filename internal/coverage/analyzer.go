package coverage

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"heimdall/internal/geo"
)

// MinPerimeterPoints is the smallest perimeter that can be analyzed.
const MinPerimeterPoints = 3

// ErrInvalidWorkers is returned by AnalyzeConcurrent for a worker count below one.
var ErrInvalidWorkers = errors.New("coverage: workers must be at least 1")

// PointState is the redundancy level of a single checkpoint.
type PointState string

const (
	PointBlind      PointState = "blind"
	PointVulnerable PointState = "vulnerable"
	PointRedundant  PointState = "redundant"
)

// PointCoverage records which sensors see one perimeter checkpoint.
type PointCoverage struct {
	// Index is the position of the checkpoint in the caller's perimeter.
	Index   int        `json:"index"`
	Point   geo.Point  `json:"point"`
	Cameras []string   `json:"cameras"`
	State   PointState `json:"state"`
}

// Report is the aggregate coverage of a perimeter.
type Report struct {
	TotalPoints       int             `json:"totalPoints"`
	CoveredPoints     int             `json:"coveredPoints"`
	RedundantPoints   int             `json:"redundantPoints"`
	VulnerablePoints  int             `json:"vulnerablePoints"`
	BlindSpots        int             `json:"blindSpots"`
	CoveragePercent   float64         `json:"coveragePercent"`
	RedundancyPercent float64         `json:"redundancyPercent"`
	Status            Status          `json:"status"`
	Points            []PointCoverage `json:"points,omitempty"`
	SkippedPoints     int             `json:"skippedPoints,omitempty"`
	SkippedCameras    int             `json:"skippedCameras,omitempty"`
}

type indexedPoint struct {
	index int
	point geo.Point
}

// Analyze evaluates every perimeter checkpoint against every sensor.
// Checkpoints and sensors with non-finite coordinates are left out. A perimeter
// with fewer than MinPerimeterPoints usable checkpoints yields zero counts and
// StatusUnclassified.
func Analyze(perimeter []geo.Point, sensors []Sensor) Report {
	pts, sensorsOK, r := prepare(perimeter, sensors)
	if len(pts) < MinPerimeterPoints {
		return r
	}
	r.Points = make([]PointCoverage, len(pts))
	for i, p := range pts {
		r.Points[i] = evaluate(p, sensorsOK)
	}
	r.tally()
	return r
}

// AnalyzeConcurrent computes the same report as Analyze, spreading checkpoints
// over a bounded pool of goroutines.
func AnalyzeConcurrent(ctx context.Context, perimeter []geo.Point, sensors []Sensor, workers int) (Report, error) {
	if workers < 1 {
		return Report{}, ErrInvalidWorkers
	}
	pts, sensorsOK, r := prepare(perimeter, sensors)
	if len(pts) < MinPerimeterPoints {
		return r, nil
	}
	r.Points = make([]PointCoverage, len(pts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range pts {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r.Points[i] = evaluate(p, sensorsOK)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	r.tally()
	return r, nil
}

func prepare(perimeter []geo.Point, sensors []Sensor) ([]indexedPoint, []Sensor, Report) {
	r := Report{Status: StatusUnclassified}
	pts := make([]indexedPoint, 0, len(perimeter))
	for i, p := range perimeter {
		if !p.Valid() {
			r.SkippedPoints++
			continue
		}
		pts = append(pts, indexedPoint{index: i, point: p})
	}
	ok := make([]Sensor, 0, len(sensors))
	for _, s := range sensors {
		if !s.usable() {
			r.SkippedCameras++
			continue
		}
		ok = append(ok, s)
	}
	return pts, ok, r
}

func evaluate(p indexedPoint, sensors []Sensor) PointCoverage {
	pc := PointCoverage{Index: p.index, Point: p.point, Cameras: []string{}}
	for _, s := range sensors {
		if Covers(p.point, s) {
			pc.Cameras = append(pc.Cameras, s.ID)
		}
	}
	switch len(pc.Cameras) {
	case 0:
		pc.State = PointBlind
	case 1:
		pc.State = PointVulnerable
	default:
		pc.State = PointRedundant
	}
	return pc
}

func (r *Report) tally() {
	r.TotalPoints = len(r.Points)
	for _, pc := range r.Points {
		switch pc.State {
		case PointVulnerable:
			r.CoveredPoints++
			r.VulnerablePoints++
		case PointRedundant:
			r.CoveredPoints++
			r.RedundantPoints++
		}
	}
	r.BlindSpots = r.TotalPoints - r.CoveredPoints
	r.CoveragePercent = float64(r.CoveredPoints) / float64(r.TotalPoints) * 100
	r.RedundancyPercent = float64(r.RedundantPoints) / float64(r.TotalPoints) * 100
	r.Status = Classify(r.CoveragePercent, r.RedundancyPercent)
}
