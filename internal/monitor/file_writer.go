package monitor

import (
	"encoding/json"
	"os"
	"sync"

	"heimdall/internal/telemetry"
)

// FileWriter writes coverage and alert rows to JSONL files.
type FileWriter struct {
	mu           sync.Mutex
	coverageFile *os.File
	alertFile    *os.File
	coverageEnc  *json.Encoder
	alertEnc     *json.Encoder
}

// NewFileWriter creates a FileWriter. alertPath may be empty to skip the
// alert log.
func NewFileWriter(coveragePath, alertPath string) (*FileWriter, error) {
	cf, err := os.Create(coveragePath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{coverageFile: cf, coverageEnc: json.NewEncoder(cf)}
	if alertPath != "" {
		af, err := os.Create(alertPath)
		if err != nil {
			cf.Close()
			return nil, err
		}
		fw.alertFile = af
		fw.alertEnc = json.NewEncoder(af)
	}
	return fw, nil
}

// WriteCoverage logs a single coverage row.
func (f *FileWriter) WriteCoverage(row telemetry.CoverageRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.coverageEnc.Encode(row)
}

// WriteAlert logs a single alert row, if enabled.
func (f *FileWriter) WriteAlert(row telemetry.AlertRow) error {
	if f.alertEnc == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alertEnc.Encode(row)
}

// WriteAlerts logs multiple alert rows.
func (f *FileWriter) WriteAlerts(rows []telemetry.AlertRow) error {
	for _, r := range rows {
		if err := f.WriteAlert(r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	if f.coverageFile != nil {
		if e := f.coverageFile.Close(); e != nil {
			err = e
		}
	}
	if f.alertFile != nil {
		if e := f.alertFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
