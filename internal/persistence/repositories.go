package persistence

import (
	"context"
	"time"

	"github.com/DTMaciejM/pracosfera-main/internal/lifecycle"
)

// ReservationFilter narrows reservation queries.
type ReservationFilter struct {
	Statuses     []lifecycle.Status
	FranchiseeID string
	WorkerID     string
	// Civil date bounds, inclusive. Empty strings leave the bound open.
	DateFrom string
	DateTo   string
}

// ReservationRepository stores reservations. Status mutations go through the
// conditional UpdateStatus variants so concurrent reconcilers cannot clobber
// a record that already left the expected state: the write is a no-op when
// the stored status no longer matches, and the caller learns that from the
// affected count.
type ReservationRepository interface {
	CreateReservation(ctx context.Context, reservation Reservation) error
	GetReservation(ctx context.Context, id string) (Reservation, error)
	ListReservations(ctx context.Context, filter ReservationFilter) ([]Reservation, error)
	UpdateReservation(ctx context.Context, reservation Reservation) error

	// UpdateStatus moves one reservation from any of the expected states to
	// the target state. It reports whether a row was updated.
	UpdateStatus(ctx context.Context, id string, from []lifecycle.Status, to lifecycle.Status) (bool, error)
	// UpdateStatusBulk applies one conditional status change to many
	// reservations and returns how many rows actually changed.
	UpdateStatusBulk(ctx context.Context, ids []string, from []lifecycle.Status, to lifecycle.Status) (int64, error)
	// AssignWorker atomically attaches a worker to an unassigned
	// reservation, moving it to assigned. It reports whether the
	// reservation was still unassigned.
	AssignWorker(ctx context.Context, id, workerID string) (bool, error)
}

// ShiftRepository stores worker shift rosters and custom hours.
type ShiftRepository interface {
	// UpsertWorkerShift replaces the shift configured for the
	// (worker, date) pair, including its custom hours.
	UpsertWorkerShift(ctx context.Context, s WorkerShift) error
	GetWorkerShift(ctx context.Context, workerID, date string) (WorkerShift, error)
	ListWorkerShifts(ctx context.Context, workerID, dateFrom, dateTo string) ([]WorkerShift, error)
	// ListShiftsForDate returns every worker's shift on a date; used to
	// find workers to notify about new reservations.
	ListShiftsForDate(ctx context.Context, date string) ([]WorkerShift, error)
	DeleteWorkerShift(ctx context.Context, workerID, date string) error
}

// UserRepository exposes CRUD operations for accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context, role Role) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) error
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
