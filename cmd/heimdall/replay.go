package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"heimdall/internal/monitor"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
	replaySite      string
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay an alert log file",
	Long:  "replay feeds alert rows from a JSONL log file back into GreptimeDB or STDOUT.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		if replaySpeed <= 0 {
			return fmt.Errorf("speed must be positive")
		}
		_, aw, cleanup, err := newWriters(writerOptions{
			printOnly: replayPrintOnly,
			siteID:    envOr("SITE_ID", replaySite),
		})
		if err != nil {
			return err
		}
		defer cleanup()
		n, err := monitor.ReplayAlertsFile(replayInput, aw, replaySpeed)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "replayed %d alerts\n", n)
		return nil
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to alert log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print alerts to STDOUT instead of writing to DB")
	replayCmd.Flags().StringVar(&replaySite, "site", "replay", "Site name shown by terminal writers")
	replayCmd.MarkFlagRequired("input")
}
