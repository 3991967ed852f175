// Package metrics exposes perimeter coverage and alert activity as
// Prometheus metrics. The Collector doubles as a coverage and alert writer
// for the monitor.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"heimdall/internal/coverage"
	"heimdall/internal/telemetry"
)

// Point states exported on the heimdall_perimeter_points_by_state gauge.
const (
	StateCovered    = "covered"
	StateRedundant  = "redundant"
	StateVulnerable = "vulnerable"
	StateBlind      = "blind"
)

// statusLabels are the label values of heimdall_coverage_status.
var statusLabels = append([]coverage.Status{coverage.StatusUnclassified}, coverage.Statuses...)

// Collector bundles the coverage gauges and alert counters.
type Collector struct {
	gatherer prometheus.Gatherer

	PerimeterPoints   prometheus.Gauge
	PointsByState     *prometheus.GaugeVec
	CoveragePercent   prometheus.Gauge
	RedundancyPercent prometheus.Gauge
	Status            *prometheus.GaugeVec
	Cameras           *prometheus.GaugeVec
	Refreshes         prometheus.Counter
	Alerts            *prometheus.CounterVec
	Intrusions        prometheus.Counter
}

// NewCollector registers the metrics against reg, defaulting to the global
// Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	points, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "heimdall_perimeter_points",
		Help: "Number of analyzed perimeter checkpoints.",
	}), "heimdall_perimeter_points")
	if err != nil {
		return nil, err
	}
	byState, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "heimdall_perimeter_points_by_state",
		Help: "Perimeter checkpoints by coverage state (covered, redundant, vulnerable, blind).",
	}, []string{"state"}), "heimdall_perimeter_points_by_state")
	if err != nil {
		return nil, err
	}
	coveragePct, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "heimdall_coverage_percent",
		Help: "Share of checkpoints seen by at least one active camera.",
	}), "heimdall_coverage_percent")
	if err != nil {
		return nil, err
	}
	redundancyPct, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "heimdall_redundancy_percent",
		Help: "Share of checkpoints seen by two or more active cameras.",
	}), "heimdall_redundancy_percent")
	if err != nil {
		return nil, err
	}
	status, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "heimdall_coverage_status",
		Help: "Current coverage classification; the active status is 1, all others 0.",
	}, []string{"status"}), "heimdall_coverage_status")
	if err != nil {
		return nil, err
	}
	cameras, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "heimdall_cameras",
		Help: "Registered cameras by operational state (active, inactive).",
	}, []string{"state"}), "heimdall_cameras")
	if err != nil {
		return nil, err
	}
	refreshes, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "heimdall_coverage_refreshes_total",
		Help: "Total number of coverage recomputes.",
	}), "heimdall_coverage_refreshes_total")
	if err != nil {
		return nil, err
	}
	alerts, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "heimdall_drone_alerts_total",
		Help: "Total number of forwarded drone alert changes, labeled by threat level.",
	}, []string{"threat_level"}), "heimdall_drone_alerts_total")
	if err != nil {
		return nil, err
	}
	intrusions, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "heimdall_perimeter_intrusions_total",
		Help: "Total number of forwarded alerts located inside the perimeter.",
	}), "heimdall_perimeter_intrusions_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:          gatherer,
		PerimeterPoints:   points,
		PointsByState:     byState,
		CoveragePercent:   coveragePct,
		RedundancyPercent: redundancyPct,
		Status:            status,
		Cameras:           cameras,
		Refreshes:         refreshes,
		Alerts:            alerts,
		Intrusions:        intrusions,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// WriteCoverage updates the coverage gauges from a snapshot.
func (c *Collector) WriteCoverage(row telemetry.CoverageRow) error {
	if c == nil {
		return nil
	}
	c.PerimeterPoints.Set(float64(row.TotalPoints))
	c.PointsByState.WithLabelValues(StateCovered).Set(float64(row.CoveredPoints))
	c.PointsByState.WithLabelValues(StateRedundant).Set(float64(row.RedundantPoints))
	c.PointsByState.WithLabelValues(StateVulnerable).Set(float64(row.VulnerablePoints))
	c.PointsByState.WithLabelValues(StateBlind).Set(float64(row.BlindSpots))
	c.CoveragePercent.Set(row.CoveragePercent)
	c.RedundancyPercent.Set(row.RedundancyPercent)
	for _, s := range statusLabels {
		v := 0.0
		if string(s) == row.Status {
			v = 1
		}
		c.Status.WithLabelValues(string(s)).Set(v)
	}
	c.Cameras.WithLabelValues("active").Set(float64(row.ActiveCameras))
	c.Cameras.WithLabelValues("inactive").Set(float64(row.TotalCameras - row.ActiveCameras))
	c.Refreshes.Inc()
	return nil
}

// WriteAlert counts a forwarded alert change.
func (c *Collector) WriteAlert(row telemetry.AlertRow) error {
	if c == nil {
		return nil
	}
	c.Alerts.WithLabelValues(row.ThreatLevel).Inc()
	if row.InsidePerimeter {
		c.Intrusions.Inc()
	}
	return nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
