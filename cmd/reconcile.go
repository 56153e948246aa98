package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/DTMaciejM/pracosfera-main/internal/application"
	"github.com/DTMaciejM/pracosfera-main/internal/config"
	"github.com/DTMaciejM/pracosfera-main/internal/lifecycle"
	"github.com/DTMaciejM/pracosfera-main/internal/persistence/sqlite"
)

// newReconcileCmd runs a single reconciliation pass and exits. Useful for
// cron style deployments and for forcing a catch-up after downtime.
func newReconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Run one reservation lifecycle reconciliation pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			pool, err := sqlite.Open(cfg.SQLiteDSN)
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}
			defer pool.Close()

			if err := pool.Migrate(ctx); err != nil {
				return fmt.Errorf("apply migrations: %w", err)
			}

			engine := lifecycle.NewEngine(cfg.VerificationStep)
			engine.VerificationTTL = cfg.VerificationTTL
			service := application.NewReconcileService(
				sqlite.NewReservationRepository(pool), engine, time.Now, logger)

			summary, err := service.Run(ctx)
			if err != nil {
				return err
			}

			logger.Info("reconcile pass finished",
				"proposed", summary.Proposed,
				"applied", summary.Applied,
				"conflicts", summary.Conflicts,
				"skipped", summary.Skipped)
			return nil
		},
	}
}
