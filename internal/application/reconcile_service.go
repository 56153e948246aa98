package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/DTMaciejM/pracosfera-main/internal/lifecycle"
	"github.com/DTMaciejM/pracosfera-main/internal/persistence"
)

// ReconcileStore is the slice of the reservation repository the reconciler
// needs: reading candidate batches and applying grouped conditional writes.
type ReconcileStore interface {
	ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error)
	UpdateStatusBulk(ctx context.Context, ids []string, from []lifecycle.Status, to lifecycle.Status) (int64, error)
}

// ReconcileSummary reports what one reconciliation pass did.
type ReconcileSummary struct {
	// Proposed is how many transitions the engine computed.
	Proposed int
	// Applied is how many rows the conditional writes actually changed.
	Applied int64
	// Conflicts counts transitions that lost to a concurrent writer. They
	// are not retried; the next cycle re-evaluates the fresh state.
	Conflicts int64
	// Skipped counts records with malformed times.
	Skipped int
}

// ReconcileService fetches due reservations, runs the pure lifecycle engine
// and persists the proposed transitions with conditional bulk updates.
type ReconcileService struct {
	store  ReconcileStore
	engine lifecycle.Engine
	now    func() time.Time
	logger *slog.Logger
}

// NewReconcileService wires dependencies for periodic reconciliation.
func NewReconcileService(store ReconcileStore, engine lifecycle.Engine, now func() time.Time, logger *slog.Logger) *ReconcileService {
	if now == nil {
		now = time.Now
	}
	return &ReconcileService{
		store:  store,
		engine: engine,
		now:    now,
		logger: defaultLogger(logger),
	}
}

// Run executes one reconciliation pass. Malformed records are logged and
// skipped without aborting the batch; lost conditional writes are benign.
func (s *ReconcileService) Run(ctx context.Context) (ReconcileSummary, error) {
	now := s.now()
	logger := serviceLogger(ctx, s.logger, "ReconcileService", "Run")

	batch, err := s.fetchCandidates(ctx, now)
	if err != nil {
		logger.ErrorContext(ctx, "failed to fetch reconcile candidates", "error", err)
		return ReconcileSummary{}, err
	}

	result := s.engine.Reconcile(now, batch)

	var summary ReconcileSummary
	summary.Skipped = len(result.Skipped)
	for _, skipped := range result.Skipped {
		logger.ErrorContext(ctx, "skipping reservation with malformed times",
			"reservation_id", skipped.ID, "error", skipped.Err)
	}

	groups := []struct {
		name        string
		transitions []lifecycle.Transition
		from        []lifecycle.Status
	}{
		{"expired", result.Expired, []lifecycle.Status{
			lifecycle.StatusUnassigned, lifecycle.StatusAssigned, lifecycle.StatusInProgress}},
		{"started", result.Started, []lifecycle.Status{lifecycle.StatusAssigned}},
		{"awaiting_verification", result.AwaitingVerification, []lifecycle.Status{
			lifecycle.StatusAssigned, lifecycle.StatusInProgress}},
		{"ended_unassigned", result.EndedUnassigned, []lifecycle.Status{
			lifecycle.StatusAssigned, lifecycle.StatusInProgress}},
		{"verification_elapsed", result.VerificationElapsed, []lifecycle.Status{
			lifecycle.StatusPendingVerification}},
	}

	for _, g := range groups {
		if len(g.transitions) == 0 {
			continue
		}
		summary.Proposed += len(g.transitions)

		ids := make([]string, len(g.transitions))
		for i, tr := range g.transitions {
			ids[i] = tr.ID
		}
		// Every transition within a category shares the same target state.
		to := g.transitions[0].To

		applied, err := s.store.UpdateStatusBulk(ctx, ids, g.from, to)
		if err != nil {
			logger.ErrorContext(ctx, "failed to apply transitions",
				"category", g.name, "error", err)
			return summary, err
		}
		summary.Applied += applied
		if conflicts := int64(len(ids)) - applied; conflicts > 0 {
			// Another client advanced those records first.
			summary.Conflicts += conflicts
			logger.InfoContext(ctx, "transitions already applied elsewhere",
				"category", g.name, "count", conflicts)
		}
	}

	if summary.Proposed > 0 {
		logger.InfoContext(ctx, "reconcile pass finished",
			"proposed", summary.Proposed,
			"applied", summary.Applied,
			"conflicts", summary.Conflicts,
			"skipped", summary.Skipped)
	}
	return summary, nil
}

// fetchCandidates pulls the three disjoint sets the engine evaluates:
// stale past-date records, today's active records and pending verifications.
func (s *ReconcileService) fetchCandidates(ctx context.Context, now time.Time) ([]lifecycle.Reservation, error) {
	today := now.Format(lifecycle.DateFormat)
	yesterday := now.AddDate(0, 0, -1).Format(lifecycle.DateFormat)

	stale, err := s.store.ListReservations(ctx, persistence.ReservationFilter{
		Statuses: []lifecycle.Status{
			lifecycle.StatusUnassigned, lifecycle.StatusAssigned, lifecycle.StatusInProgress},
		DateTo: yesterday,
	})
	if err != nil {
		return nil, err
	}

	active, err := s.store.ListReservations(ctx, persistence.ReservationFilter{
		Statuses: []lifecycle.Status{lifecycle.StatusAssigned, lifecycle.StatusInProgress},
		DateFrom: today,
		DateTo:   today,
	})
	if err != nil {
		return nil, err
	}

	pending, err := s.store.ListReservations(ctx, persistence.ReservationFilter{
		Statuses: []lifecycle.Status{lifecycle.StatusPendingVerification},
	})
	if err != nil {
		return nil, err
	}

	batch := make([]lifecycle.Reservation, 0, len(stale)+len(active)+len(pending))
	for _, set := range [][]persistence.Reservation{stale, active, pending} {
		for _, r := range set {
			batch = append(batch, engineRecord(r))
		}
	}
	return batch, nil
}

func engineRecord(r persistence.Reservation) lifecycle.Reservation {
	record := lifecycle.Reservation{
		ID:        r.ID,
		Date:      r.Date,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Status:    r.Status,
		UpdatedAt: r.UpdatedAt,
	}
	if r.WorkerID != nil {
		record.WorkerID = *r.WorkerID
	}
	return record
}
