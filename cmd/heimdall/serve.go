package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"heimdall/internal/alert"
	"heimdall/internal/api"
	"heimdall/internal/camera"
	"heimdall/internal/config"
	"heimdall/internal/geo"
	"heimdall/internal/intruder"
	"heimdall/internal/logging"
	"heimdall/internal/metrics"
	"heimdall/internal/monitor"
)

var (
	servePrintOnly bool
	serveTUI       bool
	serveMemory    bool
	serveTick      time.Duration
	serveLogFile   string
	serveAddr      string
	serveWorkers   int
	serveDrones    int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the coverage monitor and HTTP API",
	Long: "serve loads the deployment, keeps perimeter coverage up to date and exposes the camera registry, " +
		"drone alerts and coverage over HTTP and websocket.",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.NewFromEnv()
		slog.SetDefault(log)

		cfg, err := loadDeployment()
		if err != nil {
			return err
		}
		if err := applyServeFlags(cmd, cfg); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		ctx = logging.NewContext(ctx, log)

		registry, closeRegistry, err := openRegistry(ctx, cfg, serveMemory)
		if err != nil {
			return err
		}
		defer closeRegistry()

		store, err := seedAlerts(cfg)
		if err != nil {
			return err
		}

		collector, err := metrics.NewCollector(prometheus.DefaultRegisterer)
		if err != nil {
			return err
		}
		cw, aw, cleanup, err := newWriters(writerOptions{
			printOnly: servePrintOnly,
			tui:       serveTUI,
			logFile:   serveLogFile,
			siteID:    cfg.SiteID,
			perimeter: cfg.Perimeter,
		})
		if err != nil {
			return err
		}
		defer cleanup()
		mw := monitor.NewMultiWriter(
			[]monitor.CoverageWriter{collector, cw},
			[]monitor.AlertWriter{collector, aw},
		)

		mon := monitor.New(monitor.Config{
			SiteID:         cfg.SiteID,
			Cameras:        registry,
			Alerts:         store,
			Perimeter:      cfg.Perimeter,
			Workers:        cfg.Monitor.Workers,
			TickInterval:   cfg.Monitor.TickInterval,
			CoverageWriter: mw,
			AlertWriter:    mw,
		})
		srv := api.NewServer(api.Config{
			Monitor: mon,
			Cameras: registry,
			Alerts:  store,
			Metrics: collector.Handler(),
			Workers: cfg.Monitor.Workers,
			Logger:  log,
		})

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			mon.Run(gctx)
			return nil
		})
		if serveDrones > 0 {
			sim, err := newIntruderSimulator(cfg, registry, store, serveDrones)
			if err != nil {
				return err
			}
			g.Go(func() error {
				sim.Run(gctx)
				return nil
			})
		}
		g.Go(func() error {
			return srv.Start(gctx, envOr("HTTP_ADDR", serveAddr))
		})
		err = g.Wait()
		log.Info("heimdall stopped", "site", cfg.SiteID)
		return err
	},
}

func init() {
	serveCmd.Flags().BoolVar(&servePrintOnly, "print-only", false, "Print coverage to STDOUT instead of writing to DB")
	serveCmd.Flags().BoolVar(&serveTUI, "tui", false, "Show coverage in an interactive terminal UI")
	serveCmd.Flags().BoolVar(&serveMemory, "memory", false, "Keep cameras in memory even when DATABASE_URL is set")
	serveCmd.Flags().DurationVar(&serveTick, "tick", monitor.DefaultTickInterval, "Coverage recompute interval (e.g. 500ms, 5s)")
	serveCmd.Flags().StringVar(&serveLogFile, "log-file", "", "Path to export coverage/alert logs (JSONL)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "HTTP listen address")
	serveCmd.Flags().IntVar(&serveWorkers, "workers", 1, "Coverage analysis workers")
	serveCmd.Flags().IntVar(&serveDrones, "drones", 0, "Number of simulated intruder drones")
}

// newIntruderSimulator flies drones over a region centred on the perimeter
// and reaching half again past its farthest checkpoint.
func newIntruderSimulator(cfg *config.Deployment, reg camera.Registry, store *alert.Store, count int) (*intruder.Simulator, error) {
	poly, err := geo.NewPerimeter(cfg.Perimeter)
	if err != nil {
		return nil, fmt.Errorf("drone simulation needs a perimeter: %w", err)
	}
	center := poly.Centroid()
	radius := 0.0
	for _, p := range poly.Points() {
		radius = max(radius, geo.DistanceMeters(center, p))
	}
	eng := intruder.NewEngine(count, center, radius*1.5, nil)
	return intruder.NewSimulator(eng, reg, store, cfg.Monitor.TickInterval), nil
}

// applyServeFlags copies explicitly set --tick and --workers over the
// deployment settings.
func applyServeFlags(cmd *cobra.Command, cfg *config.Deployment) error {
	if cmd.Flags().Changed("tick") {
		if serveTick <= 0 {
			return fmt.Errorf("invalid --tick: must be positive")
		}
		cfg.Monitor.TickInterval = serveTick
	}
	if cmd.Flags().Changed("workers") {
		if serveWorkers < 1 {
			return fmt.Errorf("invalid --workers: must be at least 1")
		}
		cfg.Monitor.Workers = serveWorkers
	}
	return nil
}

// openRegistry returns the PostgreSQL registry when DATABASE_URL is set,
// seeding it from the deployment when empty, or a seeded memory registry.
func openRegistry(ctx context.Context, cfg *config.Deployment, memory bool) (camera.Registry, func(), error) {
	dsn := os.Getenv("DATABASE_URL")
	if memory || dsn == "" {
		reg := camera.NewMemoryRegistry()
		if _, err := camera.Seed(ctx, reg, cfg.Cameras); err != nil {
			return nil, nil, err
		}
		logging.FromContext(ctx).Info("using in-memory camera registry", "cameras", len(cfg.Cameras))
		return reg, func() {}, nil
	}

	db, err := camera.OpenPostgres(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	reg := camera.NewPostgresRegistry(db)
	if err := reg.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	existing, err := reg.List(ctx)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	if len(existing) == 0 {
		if _, err := camera.Seed(ctx, reg, cfg.Cameras); err != nil {
			db.Close()
			return nil, nil, err
		}
		logging.FromContext(ctx).Info("seeded camera registry", "cameras", len(cfg.Cameras))
	}
	return reg, func() { db.Close() }, nil
}

func seedAlerts(cfg *config.Deployment) (*alert.Store, error) {
	store := alert.NewStore()
	for i, in := range cfg.Alerts {
		if _, err := store.Create(in); err != nil {
			return nil, fmt.Errorf("alert %d: %w", i, err)
		}
	}
	return store, nil
}
