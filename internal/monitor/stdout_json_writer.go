package monitor

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"heimdall/internal/telemetry"
)

// JSONStdoutWriter prints coverage snapshots and alerts as JSON lines.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

// WriteCoverage outputs a coverage row in JSON format.
func (w *JSONStdoutWriter) WriteCoverage(row telemetry.CoverageRow) error {
	return w.emit(row)
}

// WriteAlert outputs an alert row in JSON format.
func (w *JSONStdoutWriter) WriteAlert(row telemetry.AlertRow) error {
	return w.emit(row)
}

// WriteAlerts outputs multiple alert rows in JSON format.
func (w *JSONStdoutWriter) WriteAlerts(rows []telemetry.AlertRow) error {
	for _, r := range rows {
		if err := w.emit(r); err != nil {
			return err
		}
	}
	return nil
}

func (w *JSONStdoutWriter) emit(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}
