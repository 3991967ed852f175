package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"

	"heimdall/internal/telemetry"
)

type mockGreptimeClient struct {
	table *table.Table
	calls int
	err   error
}

func (m *mockGreptimeClient) Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error) {
	m.calls++
	if len(tables) > 0 {
		m.table = tables[0]
	}
	return &gpb.GreptimeResponse{}, m.err
}

func TestGreptimeWriterCoverage(t *testing.T) {
	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, coverageTable: "perimeter_coverage"}

	if err := w.WriteCoverage(sampleCoverage()); err != nil {
		t.Fatalf("WriteCoverage: %v", err)
	}
	if m.table == nil {
		t.Fatalf("expected table to be captured")
	}
	rows := m.table.GetRows()
	if len(rows.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows.Rows))
	}
	if rows.Schema[0].ColumnName != "site_id" || rows.Schema[0].SemanticType != gpb.SemanticType_TAG {
		t.Fatalf("first column = %+v, want site_id tag", rows.Schema[0])
	}
	if last := rows.Schema[len(rows.Schema)-1]; last.SemanticType != gpb.SemanticType_TIMESTAMP {
		t.Fatalf("last column = %+v, want time index", last)
	}

	vals := rows.Rows[0].Values
	if got := vals[0].GetStringValue(); got != "site-1" {
		t.Fatalf("site_id = %s, want site-1", got)
	}
	if got := vals[5].GetI64Value(); got != 1 {
		t.Fatalf("blind_spots = %d, want 1", got)
	}
	if got := vals[6].GetF64Value(); got != sampleCoverage().CoveragePercent {
		t.Fatalf("coverage_percent = %v", got)
	}
	if got := vals[8].GetStringValue(); got != "critical" {
		t.Fatalf("status = %s, want critical", got)
	}
	var points []telemetry.PointRow
	if err := json.Unmarshal([]byte(vals[11].GetStringValue()), &points); err != nil {
		t.Fatalf("points column is not JSON: %v", err)
	}
	if len(points) != 3 || points[2].State != "blind" {
		t.Fatalf("points = %+v", points)
	}
}

func TestGreptimeWriterAlerts(t *testing.T) {
	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, alertTable: "drone_alerts"}

	ts := time.Unix(10, 0).UTC()
	if err := w.WriteAlerts(nil); err != nil || m.calls != 0 {
		t.Fatalf("empty batch should not write: err=%v calls=%d", err, m.calls)
	}
	if err := w.WriteAlerts([]telemetry.AlertRow{sampleAlert("N1", ts), sampleAlert("E2", ts)}); err != nil {
		t.Fatalf("WriteAlerts: %v", err)
	}
	if m.calls != 1 {
		t.Fatalf("calls = %d, want a single batched write", m.calls)
	}
	rows := m.table.GetRows().Rows
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if got := rows[1].Values[2].GetStringValue(); got != "E2" {
		t.Fatalf("camera_id = %s, want E2", got)
	}
	if got := rows[0].Values[3].GetF64Value(); got != 60.74 {
		t.Fatalf("lat = %v, want 60.74", got)
	}
	if got := rows[0].Values[10].GetStringValue(); got != "High" {
		t.Fatalf("threat_level = %s, want High", got)
	}
	if !rows[0].Values[12].GetBoolValue() {
		t.Fatalf("inside_perimeter should be true")
	}
}

func TestGreptimeWriterPropagatesError(t *testing.T) {
	boom := errors.New("unavailable")
	w := &GreptimeDBWriter{client: &mockGreptimeClient{err: boom}, coverageTable: "c", alertTable: "a"}
	if err := w.WriteCoverage(sampleCoverage()); !errors.Is(err, boom) {
		t.Fatalf("WriteCoverage err = %v", err)
	}
	if err := w.WriteAlert(sampleAlert("N1", epoch)); !errors.Is(err, boom) {
		t.Fatalf("WriteAlert err = %v", err)
	}
}

func TestSplitEndpoint(t *testing.T) {
	cases := []struct {
		in   string
		host string
		port int
		err  bool
	}{
		{"localhost", "localhost", DefaultGreptimePort, false},
		{"greptime:4001", "greptime", 4001, false},
		{"10.0.0.5:5001", "10.0.0.5", 5001, false},
		{"greptime:abc", "", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			host, port, err := splitEndpoint(tc.in)
			if (err != nil) != tc.err {
				t.Fatalf("err = %v, want error %v", err, tc.err)
			}
			if host != tc.host || port != tc.port {
				t.Fatalf("got %s:%d, want %s:%d", host, port, tc.host, tc.port)
			}
		})
	}
}
