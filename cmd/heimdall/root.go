package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"heimdall/internal/config"
)

var (
	configPath string
	schemaPath string
)

var rootCmd = &cobra.Command{
	Use:   "heimdall",
	Short: "Perimeter camera coverage service",
	Long:  "Heimdall tracks surveillance camera coverage of a site perimeter and the drone alerts raised by its cameras.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/deployment.yaml", "Path to deployment configuration YAML")
	rootCmd.PersistentFlags().StringVar(&schemaPath, "schema", "schemas/deployment.cue", "Path to CUE schema file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(dashboardCmd)
}

// loadDeployment loads the deployment file and applies SITE_ID and
// TICK_INTERVAL overrides.
func loadDeployment() (*config.Deployment, error) {
	cfg, err := config.Load(configPath, schemaPath)
	if err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *config.Deployment) error {
	if site := os.Getenv("SITE_ID"); site != "" {
		cfg.SiteID = site
	}
	if envTick := os.Getenv("TICK_INTERVAL"); envTick != "" {
		d, err := time.ParseDuration(envTick)
		if err != nil {
			return fmt.Errorf("invalid TICK_INTERVAL: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid TICK_INTERVAL: must be positive")
		}
		cfg.Monitor.TickInterval = d
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
