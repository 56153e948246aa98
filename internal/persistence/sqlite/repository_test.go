package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DTMaciejM/pracosfera-main/internal/lifecycle"
	"github.com/DTMaciejM/pracosfera-main/internal/persistence"
	"github.com/DTMaciejM/pracosfera-main/internal/shift"
)

func openTestPool(t *testing.T) *ConnectionPool {
	t.Helper()
	pool, err := Open("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	if err := pool.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pool
}

func seedUser(t *testing.T, pool *ConnectionPool, id string, role persistence.Role) {
	t.Helper()
	repo := NewUserRepository(pool)
	err := repo.CreateUser(context.Background(), persistence.User{
		ID:           id,
		Email:        id + "@example.com",
		DisplayName:  id,
		Role:         role,
		PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func seedReservation(t *testing.T, pool *ConnectionPool, id, date string, status lifecycle.Status, workerID *string) {
	t.Helper()
	repo := NewReservationRepository(pool)
	err := repo.CreateReservation(context.Background(), persistence.Reservation{
		ID:           id,
		Number:       "RES-" + id,
		FranchiseeID: "fr-1",
		WorkerID:     workerID,
		Date:         date,
		StartTime:    "10:00",
		EndTime:      "14:00",
		Status:       status,
	})
	if err != nil {
		t.Fatalf("seed reservation %s: %v", id, err)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	pool := openTestPool(t)
	if err := pool.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestReservationRepository_RoundTrip(t *testing.T) {
	pool := openTestPool(t)
	seedUser(t, pool, "fr-1", persistence.RoleFranchisee)
	seedUser(t, pool, "w-1", persistence.RoleWorker)

	repo := NewReservationRepository(pool)
	ctx := context.Background()

	worker := "w-1"
	seedReservation(t, pool, "r-1", "2025-06-11", lifecycle.StatusAssigned, &worker)

	got, err := repo.GetReservation(ctx, "r-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != lifecycle.StatusAssigned || got.WorkerID == nil || *got.WorkerID != "w-1" {
		t.Fatalf("unexpected record %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatal("timestamps should be populated on create")
	}

	if _, err := repo.GetReservation(ctx, "missing"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReservationRepository_ListFilters(t *testing.T) {
	pool := openTestPool(t)
	seedUser(t, pool, "fr-1", persistence.RoleFranchisee)
	seedUser(t, pool, "w-1", persistence.RoleWorker)
	worker := "w-1"

	seedReservation(t, pool, "r-1", "2025-06-10", lifecycle.StatusUnassigned, nil)
	seedReservation(t, pool, "r-2", "2025-06-11", lifecycle.StatusAssigned, &worker)
	seedReservation(t, pool, "r-3", "2025-06-12", lifecycle.StatusCompleted, &worker)

	repo := NewReservationRepository(pool)
	ctx := context.Background()

	byStatus, err := repo.ListReservations(ctx, persistence.ReservationFilter{
		Statuses: []lifecycle.Status{lifecycle.StatusUnassigned, lifecycle.StatusAssigned},
	})
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(byStatus) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(byStatus))
	}

	byWorker, err := repo.ListReservations(ctx, persistence.ReservationFilter{WorkerID: "w-1"})
	if err != nil {
		t.Fatalf("list by worker: %v", err)
	}
	if len(byWorker) != 2 {
		t.Fatalf("expected 2 rows for worker, got %d", len(byWorker))
	}

	byRange, err := repo.ListReservations(ctx, persistence.ReservationFilter{
		DateFrom: "2025-06-11", DateTo: "2025-06-11",
	})
	if err != nil {
		t.Fatalf("list by range: %v", err)
	}
	if len(byRange) != 1 || byRange[0].ID != "r-2" {
		t.Fatalf("expected only r-2, got %+v", byRange)
	}
}

func TestReservationRepository_ConditionalStatusUpdate(t *testing.T) {
	pool := openTestPool(t)
	seedUser(t, pool, "fr-1", persistence.RoleFranchisee)
	seedUser(t, pool, "w-1", persistence.RoleWorker)
	worker := "w-1"
	seedReservation(t, pool, "r-1", "2025-06-11", lifecycle.StatusAssigned, &worker)

	repo := NewReservationRepository(pool)
	ctx := context.Background()

	ok, err := repo.UpdateStatus(ctx, "r-1",
		[]lifecycle.Status{lifecycle.StatusAssigned}, lifecycle.StatusInProgress)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !ok {
		t.Fatal("expected the first update to apply")
	}

	// A losing racer sees a no-op, not an error.
	ok, err = repo.UpdateStatus(ctx, "r-1",
		[]lifecycle.Status{lifecycle.StatusAssigned}, lifecycle.StatusInProgress)
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if ok {
		t.Fatal("expected a no-op once the record left the expected state")
	}
}

func TestReservationRepository_UpdateStatusBulk(t *testing.T) {
	pool := openTestPool(t)
	seedUser(t, pool, "fr-1", persistence.RoleFranchisee)
	for i := 1; i <= 3; i++ {
		seedReservation(t, pool, fmt.Sprintf("r-%d", i), "2025-06-10", lifecycle.StatusUnassigned, nil)
	}

	repo := NewReservationRepository(pool)
	n, err := repo.UpdateStatusBulk(context.Background(),
		[]string{"r-1", "r-2", "r-3"},
		[]lifecycle.Status{lifecycle.StatusUnassigned, lifecycle.StatusAssigned, lifecycle.StatusInProgress},
		lifecycle.StatusCompleted)
	if err != nil {
		t.Fatalf("bulk update: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 rows affected, got %d", n)
	}
}

func TestReservationRepository_AssignWorker(t *testing.T) {
	pool := openTestPool(t)
	seedUser(t, pool, "fr-1", persistence.RoleFranchisee)
	seedUser(t, pool, "w-1", persistence.RoleWorker)
	seedReservation(t, pool, "r-1", "2025-06-11", lifecycle.StatusUnassigned, nil)

	repo := NewReservationRepository(pool)
	ctx := context.Background()

	ok, err := repo.AssignWorker(ctx, "r-1", "w-1")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if !ok {
		t.Fatal("expected assignment to apply")
	}

	ok, err = repo.AssignWorker(ctx, "r-1", "w-1")
	if err != nil {
		t.Fatalf("second assign: %v", err)
	}
	if ok {
		t.Fatal("an already assigned reservation must not be re-assigned")
	}

	got, err := repo.GetReservation(ctx, "r-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != lifecycle.StatusAssigned || got.WorkerID == nil || *got.WorkerID != "w-1" {
		t.Fatalf("unexpected record after assignment %+v", got)
	}
}

func TestShiftRepository_UpsertAndQuery(t *testing.T) {
	pool := openTestPool(t)
	seedUser(t, pool, "w-1", persistence.RoleWorker)
	seedUser(t, pool, "w-2", persistence.RoleWorker)

	repo := NewShiftRepository(pool)
	ctx := context.Background()

	err := repo.UpsertWorkerShift(ctx, persistence.WorkerShift{
		ID: "s-1", WorkerID: "w-1", Date: "2025-06-11", Type: shift.TypeZ2,
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// Re-configuring the same day switches to custom hours.
	err = repo.UpsertWorkerShift(ctx, persistence.WorkerShift{
		ID: "s-ignored", WorkerID: "w-1", Date: "2025-06-11", Type: shift.TypeCustom,
		CustomHours: &shift.Hours{Start: "22:00", End: "06:00"},
	})
	if err != nil {
		t.Fatalf("upsert custom: %v", err)
	}

	got, err := repo.GetWorkerShift(ctx, "w-1", "2025-06-11")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != "s-1" {
		t.Fatalf("upsert must keep the original row id, got %s", got.ID)
	}
	if got.Type != shift.TypeCustom || got.CustomHours == nil || got.CustomHours.Start != "22:00" {
		t.Fatalf("unexpected shift %+v", got)
	}

	err = repo.UpsertWorkerShift(ctx, persistence.WorkerShift{
		ID: "s-2", WorkerID: "w-2", Date: "2025-06-11", Type: shift.TypeOff,
	})
	if err != nil {
		t.Fatalf("upsert second worker: %v", err)
	}

	forDate, err := repo.ListShiftsForDate(ctx, "2025-06-11")
	if err != nil {
		t.Fatalf("list for date: %v", err)
	}
	if len(forDate) != 2 {
		t.Fatalf("expected 2 shifts on the date, got %d", len(forDate))
	}

	if _, err := repo.GetWorkerShift(ctx, "w-1", "2025-06-12"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_EmailUniqueness(t *testing.T) {
	pool := openTestPool(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	base := persistence.User{
		ID: "u-1", Email: "Admin@Example.com", DisplayName: "Admin",
		Role: persistence.RoleAdmin, PasswordHash: "x",
	}
	if err := repo.CreateUser(ctx, base); err != nil {
		t.Fatalf("create: %v", err)
	}

	dup := base
	dup.ID = "u-2"
	dup.Email = "admin@example.com"
	if err := repo.CreateUser(ctx, dup); !errors.Is(err, persistence.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	got, err := repo.GetUserByEmail(ctx, "ADMIN@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != "u-1" {
		t.Fatalf("unexpected user %+v", got)
	}
}

func TestSessionRepository_Lifecycle(t *testing.T) {
	pool := openTestPool(t)
	seedUser(t, pool, "u-1", persistence.RoleAdmin)

	repo := NewSessionRepository(pool)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	err := repo.CreateSession(ctx, persistence.Session{
		ID: "sess-1", UserID: "u-1", Token: "tok-1", ExpiresAt: now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetSession(ctx, "tok-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserID != "u-1" || got.RevokedAt != nil {
		t.Fatalf("unexpected session %+v", got)
	}

	if err := repo.RevokeSession(ctx, "tok-1", now); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	got, err = repo.GetSession(ctx, "tok-1")
	if err != nil {
		t.Fatalf("get after revoke: %v", err)
	}
	if got.RevokedAt == nil {
		t.Fatal("expected revoked session")
	}

	if err := repo.DeleteExpiredSessions(ctx, now.Add(2*time.Hour)); err != nil {
		t.Fatalf("prune: %v", err)
	}
	if _, err := repo.GetSession(ctx, "tok-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected pruned session, got %v", err)
	}
}
