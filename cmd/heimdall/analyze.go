package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"heimdall/internal/camera"
	"heimdall/internal/coverage"
)

var (
	analyzeJSON      bool
	analyzeAllActive bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Print a one-shot coverage report",
	Long:  "analyze computes perimeter coverage for the deployment cameras and prints the report.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadDeployment()
		if err != nil {
			return err
		}
		ctx := context.Background()
		reg := camera.NewMemoryRegistry()
		cams, err := camera.Seed(ctx, reg, cfg.Cameras)
		if err != nil {
			return err
		}
		if analyzeAllActive {
			for i := range cams {
				cams[i].Status = camera.StatusActive
			}
		}
		report, err := coverage.AnalyzeConcurrent(ctx, cfg.Perimeter, camera.Sensors(cams), cfg.Monitor.Workers)
		if err != nil {
			return err
		}
		if analyzeJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		return printReport(cmd.OutOrStdout(), cfg.SiteID, report)
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the report as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeAllActive, "all-active", false, "Treat every camera as active")
}

func printReport(out io.Writer, site string, r coverage.Report) error {
	fmt.Fprintf(out, "Site: %s\n", site)
	fmt.Fprintf(out, "Status: %s  coverage %.1f%%  redundancy %.1f%%\n", strings.ToUpper(string(r.Status)), r.CoveragePercent, r.RedundancyPercent)
	fmt.Fprintf(out, "Points: %d total, %d covered, %d redundant, %d vulnerable, %d blind\n\n",
		r.TotalPoints, r.CoveredPoints, r.RedundantPoints, r.VulnerablePoints, r.BlindSpots)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "POINT\tLAT\tLON\tSTATE\tCAMERAS")
	for _, p := range r.Points {
		cams := "-"
		if len(p.Cameras) > 0 {
			cams = strings.Join(p.Cameras, ", ")
		}
		fmt.Fprintf(tw, "P%d\t%.5f\t%.5f\t%s\t%s\n", p.Index+1, p.Point.Lat, p.Point.Lon, p.State, cams)
	}
	return tw.Flush()
}
