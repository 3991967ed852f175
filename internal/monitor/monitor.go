// Coverage monitor recomputing perimeter coverage and forwarding alerts
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"heimdall/internal/alert"
	"heimdall/internal/camera"
	"heimdall/internal/coverage"
	"heimdall/internal/geo"
	"heimdall/internal/logging"
	"heimdall/internal/telemetry"
)

// DefaultTickInterval is used when Config leaves TickInterval unset.
const DefaultTickInterval = 5 * time.Second

// ErrInvalidPerimeter is returned by SetPerimeter for out-of-range points.
var ErrInvalidPerimeter = errors.New("monitor: perimeter point out of range")

// CoverageWriter receives every recomputed coverage snapshot.
type CoverageWriter interface {
	WriteCoverage(telemetry.CoverageRow) error
}

// AlertWriter receives alert changes picked up from the store.
type AlertWriter interface {
	WriteAlert(telemetry.AlertRow) error
}

// Optional: alert writers may support batch mode
type batchAlertWriter interface {
	WriteAlerts([]telemetry.AlertRow) error
}

// Snapshot is the latest coverage state of the site.
type Snapshot struct {
	SiteID        string          `json:"siteId"`
	Report        coverage.Report `json:"report"`
	ActiveCameras int             `json:"activeCameras"`
	TotalCameras  int             `json:"totalCameras"`
	ComputedAt    time.Time       `json:"computedAt"`
}

// Row flattens the snapshot for the writers.
func (s Snapshot) Row() telemetry.CoverageRow {
	return telemetry.NewCoverageRow(s.SiteID, s.Report, s.ActiveCameras, s.TotalCameras, s.ComputedAt)
}

// Config wires a Monitor.
type Config struct {
	SiteID         string
	Cameras        camera.Registry
	Alerts         *alert.Store
	Perimeter      []geo.Point
	Workers        int
	TickInterval   time.Duration
	CoverageWriter CoverageWriter
	AlertWriter    AlertWriter
}

// Monitor owns the perimeter and recomputes coverage from the camera
// registry on demand and on every tick.
type Monitor struct {
	siteID         string
	cameras        camera.Registry
	alerts         *alert.Store
	workers        int
	tickInterval   time.Duration
	coverageWriter CoverageWriter
	alertWriter    AlertWriter
	now            func() time.Time

	mu        sync.Mutex
	perimeter []geo.Point
	polygon   *geo.Perimeter
	latest    Snapshot
	computed  bool
	alertRev  uint64
	subs      map[chan Snapshot]struct{}

	// refreshMu serializes recomputes so snapshots are published in order.
	refreshMu sync.Mutex
}

// New returns a Monitor. Points of the initial perimeter that are out of
// range are dropped.
func New(cfg Config) *Monitor {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	tick := cfg.TickInterval
	if tick <= 0 {
		tick = DefaultTickInterval
	}
	m := &Monitor{
		siteID:         cfg.SiteID,
		cameras:        cfg.Cameras,
		alerts:         cfg.Alerts,
		workers:        workers,
		tickInterval:   tick,
		coverageWriter: cfg.CoverageWriter,
		alertWriter:    cfg.AlertWriter,
		now:            time.Now,
		subs:           make(map[chan Snapshot]struct{}),
	}
	var valid []geo.Point
	for _, p := range cfg.Perimeter {
		if p.Valid() {
			valid = append(valid, p)
		}
	}
	m.setPerimeterLocked(valid)
	return m
}

// SiteID returns the monitored site identifier.
func (m *Monitor) SiteID() string { return m.siteID }

// Perimeter returns a copy of the current checkpoint list.
func (m *Monitor) Perimeter() []geo.Point {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]geo.Point{}, m.perimeter...)
}

// Polygon returns the perimeter polygon, or nil while the perimeter has
// fewer than three distinct points.
func (m *Monitor) Polygon() *geo.Perimeter {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.polygon
}

// SetPerimeter replaces the monitored perimeter. Every point must be in
// range; fewer than three points are accepted and analyze as unclassified.
func (m *Monitor) SetPerimeter(points []geo.Point) error {
	for i, p := range points {
		if !p.Valid() {
			return fmt.Errorf("%w: point %d", ErrInvalidPerimeter, i)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setPerimeterLocked(append([]geo.Point{}, points...))
	return nil
}

func (m *Monitor) setPerimeterLocked(points []geo.Point) {
	m.perimeter = points
	poly, err := geo.NewPerimeter(points)
	if err != nil {
		poly = nil
	}
	m.polygon = poly
}

// Latest returns the last computed snapshot and whether one exists.
func (m *Monitor) Latest() (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest, m.computed
}

// Subscribe returns a channel receiving every new snapshot, starting with
// the latest one if any. Slow subscribers only see the most recent
// snapshot. The returned func unsubscribes and closes the channel.
func (m *Monitor) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	m.mu.Lock()
	m.subs[ch] = struct{}{}
	if m.computed {
		ch <- m.latest
	}
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, ch)
			m.mu.Unlock()
			close(ch)
		})
	}
}

// Refresh recomputes coverage of the whole perimeter from the current
// camera list, publishes the snapshot to subscribers and writes it.
func (m *Monitor) Refresh(ctx context.Context) (Snapshot, error) {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	cams, err := m.cameras.List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list cameras: %w", err)
	}
	perimeter := m.Perimeter()
	report, err := coverage.AnalyzeConcurrent(ctx, perimeter, camera.Sensors(cams), m.workers)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		SiteID:        m.siteID,
		Report:        report,
		ActiveCameras: camera.CountByStatus(cams)[camera.StatusActive],
		TotalCameras:  len(cams),
		ComputedAt:    m.now().UTC(),
	}
	m.publish(snap)

	if m.coverageWriter != nil {
		if err := m.coverageWriter.WriteCoverage(snap.Row()); err != nil {
			logging.FromContext(ctx).Error("coverage write failed", "site", m.siteID, "err", err)
		}
	}
	return snap, nil
}

func (m *Monitor) publish(snap Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = snap
	m.computed = true
	for ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

// ForwardAlerts writes every alert created or updated since the previous
// call and returns how many rows were forwarded.
func (m *Monitor) ForwardAlerts(ctx context.Context) (int, error) {
	if m.alerts == nil {
		return 0, nil
	}
	m.mu.Lock()
	since := m.alertRev
	poly := m.polygon
	m.mu.Unlock()

	changed, rev := m.alerts.Changes(since)
	if len(changed) == 0 {
		m.setAlertRev(rev)
		return 0, nil
	}
	ts := m.now().UTC()
	rows := make([]telemetry.AlertRow, 0, len(changed))
	for _, a := range changed {
		rows = append(rows, telemetry.NewAlertRow(m.siteID, a, alert.InsidePerimeter(a, poly), ts))
	}
	if m.alertWriter != nil {
		if err := writeAlerts(m.alertWriter, rows); err != nil {
			return 0, err
		}
	}
	m.setAlertRev(rev)
	logging.FromContext(ctx).Debug("forwarded alerts", "count", len(rows), "revision", rev)
	return len(rows), nil
}

func (m *Monitor) setAlertRev(rev uint64) {
	m.mu.Lock()
	m.alertRev = rev
	m.mu.Unlock()
}

func writeAlerts(w AlertWriter, rows []telemetry.AlertRow) error {
	if bw, ok := w.(batchAlertWriter); ok {
		return bw.WriteAlerts(rows)
	}
	for _, r := range rows {
		if err := w.WriteAlert(r); err != nil {
			return err
		}
	}
	return nil
}

// Run refreshes coverage and forwards alerts immediately and then on every
// tick until the context is done.
func (m *Monitor) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting coverage monitor", "site", m.siteID, "tick_interval", m.tickInterval, "workers", m.workers)
	ticker := time.NewTicker(m.tickInterval)
	defer ticker.Stop()

	m.tick(ctx)
	for {
		select {
		case <-ticker.C:
			m.tick(ctx)
		case <-ctx.Done():
			log.Info("stopping coverage monitor")
			return
		}
	}
}

func (m *Monitor) tick(ctx context.Context) {
	log := logging.FromContext(ctx)
	snap, err := m.Refresh(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Error("coverage refresh failed", "err", err)
		}
		return
	}
	log.Debug("coverage refreshed",
		"status", snap.Report.Status,
		"coverage_percent", snap.Report.CoveragePercent,
		"blind_spots", snap.Report.BlindSpots,
	)
	if _, err := m.ForwardAlerts(ctx); err != nil {
		log.Error("alert forward failed", "err", err)
	}
}
