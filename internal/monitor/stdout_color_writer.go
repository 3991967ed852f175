// ColorStdoutWriter prints human-friendly, colorized coverage to STDOUT.
package monitor

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"heimdall/internal/alert"
	"heimdall/internal/coverage"
	"heimdall/internal/geo"
	"heimdall/internal/telemetry"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

// statusColors maps coverage classifications to terminal colors.
var statusColors = map[string]string{
	string(coverage.StatusOptimal):      colorGreen,
	string(coverage.StatusGood):         colorCyan,
	string(coverage.StatusAcceptable):   colorYellow,
	string(coverage.StatusCritical):     colorRed,
	string(coverage.StatusUnclassified): colorGray,
}

var threatColors = map[string]string{
	string(alert.ThreatLow):      colorGreen,
	string(alert.ThreatMedium):   colorYellow,
	string(alert.ThreatHigh):     colorMagenta,
	string(alert.ThreatCritical): colorRed,
}

var pointColors = map[string]string{
	string(coverage.PointBlind):      colorRed,
	string(coverage.PointVulnerable): colorYellow,
	string(coverage.PointRedundant):  colorGreen,
}

// ColorStdoutWriter prints coverage rows and alerts using ANSI colors. The
// site overview is printed once, before the first row.
type ColorStdoutWriter struct {
	name      string
	perimeter []geo.Point
	out       io.Writer
	once      sync.Once
	mu        sync.Mutex
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(name string, perimeter []geo.Point) *ColorStdoutWriter {
	return &ColorStdoutWriter{name: name, perimeter: perimeter, out: os.Stdout}
}

func colorFor(palette map[string]string, key string) string {
	if c, ok := palette[key]; ok {
		return c
	}
	return colorGray
}

func (w *ColorStdoutWriter) printOverview() {
	if len(w.perimeter) == 0 && w.name == "" {
		return
	}
	fmt.Fprintf(w.out, "%sSite:%s %s\n", colorBlue, colorReset, w.name)
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "POINT\tLAT\tLON")
	for i, p := range w.perimeter {
		fmt.Fprintf(tw, "P%d\t%.5f\t%.5f\n", i+1, p.Lat, p.Lon)
	}
	tw.Flush()
	fmt.Fprintln(w.out)
}

// WriteCoverage prints a one-line summary followed by the blind and
// vulnerable checkpoints.
func (w *ColorStdoutWriter) WriteCoverage(row telemetry.CoverageRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.once.Do(w.printOverview)

	sc := colorFor(statusColors, row.Status)
	fmt.Fprintf(w.out, "%s[%s]%s %ssite=%s%s %sstatus=%s%s %scoverage=%.1f%%%s %sredundancy=%.1f%%%s %scameras=%d/%d%s %sblind=%d%s\n",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		colorBlue, row.SiteID, colorReset,
		sc, strings.ToUpper(row.Status), colorReset,
		colorCyan, row.CoveragePercent, colorReset,
		colorMagenta, row.RedundancyPercent, colorReset,
		colorGreen, row.ActiveCameras, row.TotalCameras, colorReset,
		colorRed, row.BlindSpots, colorReset,
	)
	for _, p := range row.Points {
		if p.State == string(coverage.PointRedundant) {
			continue
		}
		cams := "-"
		if len(p.Cameras) > 0 {
			cams = strings.Join(p.Cameras, ",")
		}
		fmt.Fprintf(w.out, "    %sP%d %s%s (%.5f, %.5f) cameras=%s\n",
			colorFor(pointColors, p.State), p.Index+1, p.State, colorReset, p.Lat, p.Lon, cams)
	}
	return nil
}

// WriteAlert prints an alert change.
func (w *ColorStdoutWriter) WriteAlert(row telemetry.AlertRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	intrusion := ""
	if row.InsidePerimeter {
		intrusion = fmt.Sprintf(" %sINSIDE PERIMETER%s", colorRed, colorReset)
	}
	fmt.Fprintf(w.out, "%s[%s]%s %sALERT%s %scamera=%s%s %sthreat=%s%s %sstatus=%s%s %slat=%.5f%s %slon=%.5f%s %salt=%.0f%s %sspd=%.0f%s%s\n",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		colorRed, colorReset,
		colorBlue, row.CameraID, colorReset,
		colorFor(threatColors, row.ThreatLevel), row.ThreatLevel, colorReset,
		colorCyan, row.Status, colorReset,
		colorGreen, row.Lat, colorReset,
		colorYellow, row.Lon, colorReset,
		colorMagenta, row.Alt, colorReset,
		colorYellow, row.SpeedKmh, colorReset,
		intrusion,
	)
	return nil
}

// WriteAlerts prints multiple alert changes.
func (w *ColorStdoutWriter) WriteAlerts(rows []telemetry.AlertRow) error {
	for _, r := range rows {
		_ = w.WriteAlert(r)
	}
	return nil
}
