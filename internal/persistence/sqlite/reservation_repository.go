package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/DTMaciejM/pracosfera-main/internal/lifecycle"
	"github.com/DTMaciejM/pracosfera-main/internal/persistence"
)

// ReservationRepository implements persistence.ReservationRepository using SQLite.
type ReservationRepository struct {
	pool *ConnectionPool
}

// NewReservationRepository creates a new SQLite reservation repository.
func NewReservationRepository(pool *ConnectionPool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

const reservationColumns = `id, number, franchisee_id, worker_id, date, start_time, end_time, status, created_at, updated_at`

// CreateReservation inserts a new reservation.
func (r *ReservationRepository) CreateReservation(ctx context.Context, reservation persistence.Reservation) error {
	if reservation.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if reservation.CreatedAt.IsZero() {
		reservation.CreatedAt = now
	}
	reservation.UpdatedAt = now

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO reservations (`+reservationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reservation.ID,
		reservation.Number,
		reservation.FranchiseeID,
		nullString(reservation.WorkerID),
		reservation.Date,
		reservation.StartTime,
		reservation.EndTime,
		string(reservation.Status),
		formatTime(reservation.CreatedAt),
		formatTime(reservation.UpdatedAt),
	)
	return mapError(err)
}

// GetReservation retrieves a reservation by ID.
func (r *ReservationRepository) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	row := r.pool.db.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
	return scanReservation(row)
}

// ListReservations returns reservations matching the filter, ordered by
// date then start time.
func (r *ReservationRepository) ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE 1=1`
	args := make([]any, 0, 8)

	if len(filter.Statuses) > 0 {
		query += ` AND status IN (` + placeholders(len(filter.Statuses)) + `)`
		for _, s := range filter.Statuses {
			args = append(args, string(s))
		}
	}
	if filter.FranchiseeID != "" {
		query += ` AND franchisee_id = ?`
		args = append(args, filter.FranchiseeID)
	}
	if filter.WorkerID != "" {
		query += ` AND worker_id = ?`
		args = append(args, filter.WorkerID)
	}
	if filter.DateFrom != "" {
		query += ` AND date >= ?`
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		query += ` AND date <= ?`
		args = append(args, filter.DateTo)
	}
	query += ` ORDER BY date, start_time, id`

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []persistence.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// UpdateReservation rewrites the editable fields of a reservation. Status is
// deliberately excluded; status changes go through the conditional updates.
func (r *ReservationRepository) UpdateReservation(ctx context.Context, reservation persistence.Reservation) error {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE reservations
		SET date = ?, start_time = ?, end_time = ?, worker_id = ?, updated_at = ?
		WHERE id = ?`,
		reservation.Date,
		reservation.StartTime,
		reservation.EndTime,
		nullString(reservation.WorkerID),
		formatTime(time.Now().UTC()),
		reservation.ID,
	)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// UpdateStatus conditionally moves one reservation to the target status.
// The WHERE clause on the current status makes the write a no-op when
// another client already advanced the record.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, id string, from []lifecycle.Status, to lifecycle.Status) (bool, error) {
	n, err := r.UpdateStatusBulk(ctx, []string{id}, from, to)
	return n > 0, err
}

// UpdateStatusBulk applies one conditional status change to many rows.
func (r *ReservationRepository) UpdateStatusBulk(ctx context.Context, ids []string, from []lifecycle.Status, to lifecycle.Status) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if len(from) == 0 {
		return 0, fmt.Errorf("sqlite: conditional status update requires expected states")
	}

	query := `UPDATE reservations SET status = ?, updated_at = ?
		WHERE id IN (` + placeholders(len(ids)) + `)
		AND status IN (` + placeholders(len(from)) + `)`
	args := make([]any, 0, len(ids)+len(from)+2)
	args = append(args, string(to), formatTime(time.Now().UTC()))
	for _, id := range ids {
		args = append(args, id)
	}
	for _, s := range from {
		args = append(args, string(s))
	}

	result, err := r.pool.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(err)
	}
	return result.RowsAffected()
}

// AssignWorker attaches a worker to a still-unassigned reservation.
func (r *ReservationRepository) AssignWorker(ctx context.Context, id, workerID string) (bool, error) {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE reservations SET worker_id = ?, status = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		workerID,
		string(lifecycle.StatusAssigned),
		formatTime(time.Now().UTC()),
		id,
		string(lifecycle.StatusUnassigned),
	)
	if err != nil {
		return false, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (persistence.Reservation, error) {
	var (
		res       persistence.Reservation
		workerID  sql.NullString
		status    string
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&res.ID,
		&res.Number,
		&res.FranchiseeID,
		&workerID,
		&res.Date,
		&res.StartTime,
		&res.EndTime,
		&status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Reservation{}, mapError(err)
	}

	res.WorkerID = fromNullString(workerID)

	parsed, ok := lifecycle.ParseStatus(status)
	if !ok {
		return persistence.Reservation{}, fmt.Errorf("sqlite: reservation %s has unknown status %q", res.ID, status)
	}
	res.Status = parsed

	if res.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Reservation{}, fmt.Errorf("sqlite: reservation %s created_at: %w", res.ID, err)
	}
	if res.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Reservation{}, fmt.Errorf("sqlite: reservation %s updated_at: %w", res.ID, err)
	}
	return res, nil
}
