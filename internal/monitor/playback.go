package monitor

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"heimdall/internal/telemetry"
)

// ReplayAlerts replays alert rows from r to writer. A speed >0 accelerates playback.
// If speed <= 0, no artificial delay is inserted.
func ReplayAlerts(r io.Reader, writer AlertWriter, speed float64) (int, error) {
	return replayAlerts(r, writer, speed, time.Sleep)
}

func replayAlerts(r io.Reader, writer AlertWriter, speed float64, sleep func(time.Duration)) (int, error) {
	dec := json.NewDecoder(r)
	var prev time.Time
	n := 0
	for {
		var row telemetry.AlertRow
		if err := dec.Decode(&row); err != nil {
			if err == io.EOF {
				return n, nil
			}
			return n, err
		}
		if !prev.IsZero() && speed > 0 {
			diff := row.Timestamp.Sub(prev)
			if speed != 1 {
				diff = time.Duration(float64(diff) / speed)
			}
			if diff > 0 {
				sleep(diff)
			}
		}
		if err := writer.WriteAlert(row); err != nil {
			return n, err
		}
		n++
		prev = row.Timestamp
	}
}

// ReplayAlertsFile opens a JSONL alert log and replays its rows.
func ReplayAlertsFile(path string, writer AlertWriter, speed float64) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return ReplayAlerts(f, writer, speed)
}
