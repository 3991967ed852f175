package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"
	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"

	"heimdall/internal/telemetry"
)

// DefaultGreptimePort is the GreptimeDB gRPC port used when the endpoint
// carries none.
const DefaultGreptimePort = 4001

// writeTimeout bounds a single ingest call.
const writeTimeout = 10 * time.Second

// greptimeClient is the part of the ingester client the writer needs.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes coverage and alert rows to GreptimeDB via the
// ingester client. Tables are created by GreptimeDB on first write.
type GreptimeDBWriter struct {
	client        greptimeClient
	coverageTable string
	alertTable    string
}

// NewGreptimeDBWriter connects to endpoint ("host" or "host:port").
func NewGreptimeDBWriter(endpoint, database string) (*GreptimeDBWriter, error) {
	host, port, err := splitEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("greptimedb client: %w", err)
	}
	return &GreptimeDBWriter{
		client:        client,
		coverageTable: telemetry.CoverageTableName,
		alertTable:    telemetry.AlertTableName,
	}, nil
}

func splitEndpoint(endpoint string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		// no port present
		return endpoint, DefaultGreptimePort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid greptimedb port %q: %w", portStr, err)
	}
	return host, port, nil
}

// WriteCoverage inserts a coverage row. Per-point detail is stored as a
// JSON string in the points column.
func (w *GreptimeDBWriter) WriteCoverage(row telemetry.CoverageRow) error {
	tbl, err := table.New(w.coverageTable)
	if err != nil {
		return err
	}
	columns := []struct {
		name string
		tag  bool
		typ  types.ColumnType
	}{
		{"site_id", true, types.STRING},
		{"total_points", false, types.INT64},
		{"covered_points", false, types.INT64},
		{"redundant_points", false, types.INT64},
		{"vulnerable_points", false, types.INT64},
		{"blind_spots", false, types.INT64},
		{"coverage_percent", false, types.FLOAT64},
		{"redundancy_percent", false, types.FLOAT64},
		{"status", false, types.STRING},
		{"active_cameras", false, types.INT64},
		{"total_cameras", false, types.INT64},
		{"points", false, types.STRING},
	}
	for _, c := range columns {
		if c.tag {
			err = tbl.AddTagColumn(c.name, c.typ)
		} else {
			err = tbl.AddFieldColumn(c.name, c.typ)
		}
		if err != nil {
			return err
		}
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}

	points, err := json.Marshal(row.Points)
	if err != nil {
		return err
	}
	if err := tbl.AddRow(
		row.SiteID,
		int64(row.TotalPoints),
		int64(row.CoveredPoints),
		int64(row.RedundantPoints),
		int64(row.VulnerablePoints),
		int64(row.BlindSpots),
		row.CoveragePercent,
		row.RedundancyPercent,
		row.Status,
		int64(row.ActiveCameras),
		int64(row.TotalCameras),
		string(points),
		row.Timestamp,
	); err != nil {
		return err
	}
	return w.write(tbl, w.coverageTable, 1)
}

// WriteAlert inserts a single alert row.
func (w *GreptimeDBWriter) WriteAlert(row telemetry.AlertRow) error {
	return w.WriteAlerts([]telemetry.AlertRow{row})
}

// WriteAlerts inserts multiple alert rows in one request.
func (w *GreptimeDBWriter) WriteAlerts(rows []telemetry.AlertRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.alertTable)
	if err != nil {
		return err
	}
	for _, name := range []string{"site_id", "alert_id", "camera_id"} {
		if err := tbl.AddTagColumn(name, types.STRING); err != nil {
			return err
		}
	}
	fields := []struct {
		name string
		typ  types.ColumnType
	}{
		{"lat", types.FLOAT64},
		{"lon", types.FLOAT64},
		{"alt", types.FLOAT64},
		{"confidence", types.FLOAT64},
		{"speed_kmh", types.FLOAT64},
		{"heading_deg", types.FLOAT64},
		{"drone_type", types.STRING},
		{"threat_level", types.STRING},
		{"status", types.STRING},
		{"inside_perimeter", types.BOOLEAN},
		{"notes", types.STRING},
		{"detected_at", types.TIMESTAMP_MILLISECOND},
	}
	for _, f := range fields {
		if err := tbl.AddFieldColumn(f.name, f.typ); err != nil {
			return err
		}
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}

	for _, r := range rows {
		if err := tbl.AddRow(
			r.SiteID, r.AlertID, r.CameraID,
			r.Lat, r.Lon, r.Alt,
			r.Confidence, r.SpeedKmh, r.HeadingDeg,
			r.DroneType, r.ThreatLevel, r.Status,
			r.InsidePerimeter, r.Notes, r.DetectedAt,
			r.Timestamp,
		); err != nil {
			return err
		}
	}
	return w.write(tbl, w.alertTable, len(rows))
}

func (w *GreptimeDBWriter) write(tbl *table.Table, name string, n int) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if _, err := w.client.Write(ctx, tbl); err != nil {
		slog.Error("greptimedb write failed", "table", name, "err", err)
		return err
	}
	slog.Debug("greptimedb write", "table", name, "rows", n)
	return nil
}
