package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/spec-kit/timeclock/internal/config"
	"github.com/spec-kit/timeclock/internal/observability"
	"github.com/spec-kit/timeclock/internal/persistence"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	for _, sub := range []struct {
		use, short string
		direction  persistence.MigrationDirection
	}{
		{"up", "Apply all pending migrations", persistence.MigrateUp},
		{"down", "Roll back the latest migration", persistence.MigrateDown},
		{"status", "Print applied and pending migrations", persistence.MigrateStatus},
	} {
		direction := sub.direction
		migrateCmd.AddCommand(&cobra.Command{
			Use:   sub.use,
			Short: sub.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(cmd.Context(), direction)
			},
		})
	}
}

func runMigrate(ctx context.Context, direction persistence.MigrationDirection) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("POSTGRES_DSN is required for migrations")
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer pg.Close()

	return persistence.Migrate(ctx, pg.PoolHandle(), logger, direction)
}
