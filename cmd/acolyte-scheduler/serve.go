package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rbarroso/acolyte-scheduler/internal/config"
	"github.com/rbarroso/acolyte-scheduler/internal/database"
	"github.com/rbarroso/acolyte-scheduler/internal/handler"
	"github.com/rbarroso/acolyte-scheduler/internal/logging"
	"github.com/rbarroso/acolyte-scheduler/internal/service"
	"github.com/rbarroso/acolyte-scheduler/internal/store"
	"github.com/rbarroso/acolyte-scheduler/internal/store/memory"
	"github.com/rbarroso/acolyte-scheduler/internal/store/postgres"
)

func serveCmd() *cobra.Command {
	var inMemory bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(inMemory)
		},
	}
	cmd.Flags().BoolVar(&inMemory, "in-memory", false,
		"run against a volatile in-memory store instead of PostgreSQL (development only)")
	return cmd
}

func runServe(inMemory bool) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logging.New(cfg.Environment)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	zone, err := cfg.Location()
	if err != nil {
		return err
	}

	var (
		directoryStore store.Directory
		catalogStore   store.Catalog
		ledgerStore    store.Ledger
	)
	if inMemory {
		log.Warn("running with the in-memory store: all data is lost on shutdown")
		mem := memory.New()
		directoryStore, catalogStore, ledgerStore = mem, mem, mem
	} else {
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required (or pass --in-memory)")
		}
		pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer pool.Close()

		if err := database.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("connected to postgres, schema up to date")

		directoryStore = postgres.NewDirectory(pool)
		catalogStore = postgres.NewCatalog(pool)
		ledgerStore = postgres.NewLedger(pool)
	}

	directory := service.NewDirectory(directoryStore)
	catalog := service.NewCatalog(catalogStore, zone)
	ledger := service.NewLedger(ledgerStore, log)
	scoring := service.NewScoring(ledgerStore, zone)

	if cfg.AdminPasswordHash == "" {
		log.Warn("ADMIN_PASSWORD_HASH is empty: admin routes are UNPROTECTED; " +
			"run `acolyte-scheduler hash-password` and set the hash")
	}

	h := handler.New(directory, catalog, ledger, scoring, log)
	router := h.Router(handler.AdminGuard(cfg.AdminPasswordHash, log))

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", cfg.ListenAddr),
			zap.String("timezone", cfg.Timezone),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}
