package monitor

import (
	"heimdall/internal/telemetry"
)

// MultiWriter fan-outs coverage and alert rows to multiple writers.
type MultiWriter struct {
	coverageWriters []CoverageWriter
	alertWriters    []AlertWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(cws []CoverageWriter, aws []AlertWriter) *MultiWriter {
	return &MultiWriter{coverageWriters: cws, alertWriters: aws}
}

// WriteCoverage sends a coverage row to all coverage writers.
func (mw *MultiWriter) WriteCoverage(row telemetry.CoverageRow) error {
	for _, w := range mw.coverageWriters {
		if err := w.WriteCoverage(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteAlert sends an alert row to all alert writers.
func (mw *MultiWriter) WriteAlert(row telemetry.AlertRow) error {
	for _, w := range mw.alertWriters {
		if err := w.WriteAlert(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteAlerts sends multiple alert rows to all alert writers, using batch if supported.
func (mw *MultiWriter) WriteAlerts(rows []telemetry.AlertRow) error {
	for _, w := range mw.alertWriters {
		if err := writeAlerts(w, rows); err != nil {
			return err
		}
	}
	return nil
}
