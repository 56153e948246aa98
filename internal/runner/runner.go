// Package runner drives the periodic reservation reconciliation loop.
package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/DTMaciejM/pracosfera-main/internal/application"
)

// Reconciler is the slice of the reconcile service the runner needs.
type Reconciler interface {
	Run(ctx context.Context) (application.ReconcileSummary, error)
}

// Runner invokes the reconciler on a fixed interval until the context is
// cancelled. A pass that fails is logged and the loop keeps going.
type Runner struct {
	reconciler Reconciler
	interval   time.Duration
	logger     *slog.Logger
}

// New builds a Runner. interval falls back to five minutes when not positive.
func New(reconciler Reconciler, interval time.Duration, logger *slog.Logger) *Runner {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{reconciler: reconciler, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled. The first pass fires immediately so a
// restart catches up without waiting a full interval.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	summary, err := r.reconciler.Run(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "reconcile pass failed", "error", err)
		return
	}
	if summary.Proposed > 0 || summary.Skipped > 0 {
		r.logger.InfoContext(ctx, "reconcile pass completed",
			"proposed", summary.Proposed,
			"applied", summary.Applied,
			"conflicts", summary.Conflicts,
			"skipped", summary.Skipped)
	}
}
