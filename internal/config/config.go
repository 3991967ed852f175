// YAML deployment loader with CUE validation integration
package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"heimdall/internal/alert"
	"heimdall/internal/camera"
	"heimdall/internal/geo"
)

// DefaultTickInterval is used when the deployment does not set one.
const DefaultTickInterval = 5 * time.Second

// Monitor tunes the coverage recompute loop.
type Monitor struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	Workers      int           `yaml:"workers"`
}

// Deployment is the root configuration: the monitored site, its perimeter
// polygon, the seed camera fleet and sample alerts.
type Deployment struct {
	SiteID    string         `yaml:"site_id"`
	Name      string         `yaml:"name"`
	Perimeter []geo.Point    `yaml:"perimeter"`
	Cameras   []camera.Input `yaml:"cameras"`
	Alerts    []alert.Input  `yaml:"alerts"`
	Monitor   Monitor        `yaml:"monitor"`
}

// Load loads YAML config and validates it against a CUE schema
func Load(configPath, cueSchemaPath string) (*Deployment, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read YAML config: %w", err)
	}
	schema, err := os.ReadFile(cueSchemaPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read CUE schema: %w", err)
	}
	cfg, err := Parse(data, schema)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}

	slog.Info("loaded deployment",
		"site", cfg.SiteID,
		"perimeter_points", len(cfg.Perimeter),
		"cameras", len(cfg.Cameras),
		"alerts", len(cfg.Alerts),
	)
	return cfg, nil
}

// Parse validates raw YAML against the CUE schema and decodes it.
func Parse(data, schema []byte) (*Deployment, error) {
	if err := Validate(data, schema); err != nil {
		return nil, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var cfg Deployment
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("cannot decode YAML config: %w", err)
	}
	if cfg.Monitor.TickInterval <= 0 {
		cfg.Monitor.TickInterval = DefaultTickInterval
	}
	if cfg.Monitor.Workers <= 0 {
		cfg.Monitor.Workers = 1
	}
	return &cfg, nil
}
