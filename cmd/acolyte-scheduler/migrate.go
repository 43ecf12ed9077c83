package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rbarroso/acolyte-scheduler/internal/config"
	"github.com/rbarroso/acolyte-scheduler/internal/database"
	"github.com/rbarroso/acolyte-scheduler/internal/logging"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}

			log, err := logging.New(cfg.Environment)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Sync() //nolint:errcheck

			pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
			if err != nil {
				return fmt.Errorf("database: %w", err)
			}
			defer pool.Close()

			if err := database.Migrate(ctx, pool); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info("migrations applied")
			return nil
		},
	}
}
