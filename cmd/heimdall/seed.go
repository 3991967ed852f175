package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"heimdall/internal/camera"
)

var (
	seedDSN   string
	seedReset bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the deployment cameras into PostgreSQL",
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn := envOr("DATABASE_URL", seedDSN)
		if dsn == "" {
			return fmt.Errorf("DATABASE_URL or --dsn required")
		}
		cfg, err := loadDeployment()
		if err != nil {
			return err
		}
		ctx := context.Background()
		db, err := camera.OpenPostgres(ctx, dsn)
		if err != nil {
			return err
		}
		defer db.Close()

		reg := camera.NewPostgresRegistry(db)
		if err := reg.EnsureSchema(ctx); err != nil {
			return err
		}
		if seedReset {
			if err := reg.Reset(ctx); err != nil {
				return err
			}
		}
		cams, err := camera.Seed(ctx, reg, cfg.Cameras)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d cameras for %s\n", len(cams), cfg.SiteID)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedDSN, "dsn", "", "PostgreSQL connection string (DATABASE_URL takes precedence)")
	seedCmd.Flags().BoolVar(&seedReset, "reset", false, "Delete existing cameras before seeding")
}
