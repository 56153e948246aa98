package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/DTMaciejM/pracosfera-main/internal/persistence"
	"github.com/DTMaciejM/pracosfera-main/internal/shift"
)

// ShiftRepository implements persistence.ShiftRepository using SQLite.
type ShiftRepository struct {
	pool *ConnectionPool
}

// NewShiftRepository creates a new SQLite shift repository.
func NewShiftRepository(pool *ConnectionPool) *ShiftRepository {
	return &ShiftRepository{pool: pool}
}

// UpsertWorkerShift replaces the shift for the (worker, date) pair together
// with its custom hours.
func (r *ShiftRepository) UpsertWorkerShift(ctx context.Context, s persistence.WorkerShift) error {
	if s.ID == "" || s.WorkerID == "" || s.Date == "" {
		return persistence.ErrConstraintViolation
	}

	now := formatTime(time.Now().UTC())
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		// The (worker, date) pair is unique, so an existing row keeps its
		// id and only changes type.
		var existingID string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM worker_shifts WHERE worker_id = ? AND shift_date = ?`,
			s.WorkerID, s.Date).Scan(&existingID)
		switch {
		case err == sql.ErrNoRows:
			existingID = s.ID
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO worker_shifts (id, worker_id, shift_date, shift_type, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?)`,
				existingID, s.WorkerID, s.Date, string(s.Type), now, now); err != nil {
				return mapError(err)
			}
		case err != nil:
			return mapError(err)
		default:
			if _, err := tx.ExecContext(ctx,
				`UPDATE worker_shifts SET shift_type = ?, updated_at = ? WHERE id = ?`,
				string(s.Type), now, existingID); err != nil {
				return mapError(err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM custom_shift_hours WHERE worker_shift_id = ?`, existingID); err != nil {
			return mapError(err)
		}
		if s.Type == shift.TypeCustom && s.CustomHours != nil {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO custom_shift_hours (worker_shift_id, start_time, end_time)
				VALUES (?, ?, ?)`,
				existingID, s.CustomHours.Start, s.CustomHours.End); err != nil {
				return mapError(err)
			}
		}
		return nil
	})
}

const workerShiftSelect = `
	SELECT ws.id, ws.worker_id, ws.shift_date, ws.shift_type,
	       ch.start_time, ch.end_time, ws.created_at, ws.updated_at
	FROM worker_shifts ws
	LEFT JOIN custom_shift_hours ch ON ch.worker_shift_id = ws.id`

// GetWorkerShift retrieves the shift configured for a worker on a date.
func (r *ShiftRepository) GetWorkerShift(ctx context.Context, workerID, date string) (persistence.WorkerShift, error) {
	row := r.pool.db.QueryRowContext(ctx,
		workerShiftSelect+` WHERE ws.worker_id = ? AND ws.shift_date = ?`, workerID, date)
	return scanWorkerShift(row)
}

// ListWorkerShifts returns one worker's shifts within the inclusive date range.
func (r *ShiftRepository) ListWorkerShifts(ctx context.Context, workerID, dateFrom, dateTo string) ([]persistence.WorkerShift, error) {
	query := workerShiftSelect + ` WHERE ws.worker_id = ?`
	args := []any{workerID}
	if dateFrom != "" {
		query += ` AND ws.shift_date >= ?`
		args = append(args, dateFrom)
	}
	if dateTo != "" {
		query += ` AND ws.shift_date <= ?`
		args = append(args, dateTo)
	}
	query += ` ORDER BY ws.shift_date`
	return r.queryShifts(ctx, query, args...)
}

// ListShiftsForDate returns every worker's shift on one date.
func (r *ShiftRepository) ListShiftsForDate(ctx context.Context, date string) ([]persistence.WorkerShift, error) {
	return r.queryShifts(ctx,
		workerShiftSelect+` WHERE ws.shift_date = ? ORDER BY ws.worker_id`, date)
}

// DeleteWorkerShift removes the shift for the (worker, date) pair.
func (r *ShiftRepository) DeleteWorkerShift(ctx context.Context, workerID, date string) error {
	result, err := r.pool.db.ExecContext(ctx,
		`DELETE FROM worker_shifts WHERE worker_id = ? AND shift_date = ?`, workerID, date)
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

func (r *ShiftRepository) queryShifts(ctx context.Context, query string, args ...any) ([]persistence.WorkerShift, error) {
	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []persistence.WorkerShift
	for rows.Next() {
		s, err := scanWorkerShift(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanWorkerShift(row rowScanner) (persistence.WorkerShift, error) {
	var (
		s           persistence.WorkerShift
		shiftType   string
		customStart sql.NullString
		customEnd   sql.NullString
		createdAt   string
		updatedAt   string
	)
	err := row.Scan(&s.ID, &s.WorkerID, &s.Date, &shiftType, &customStart, &customEnd, &createdAt, &updatedAt)
	if err != nil {
		return persistence.WorkerShift{}, mapError(err)
	}

	s.Type = shift.Type(shiftType)
	if customStart.Valid && customEnd.Valid {
		s.CustomHours = &shift.Hours{Start: customStart.String, End: customEnd.String}
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.WorkerShift{}, err
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.WorkerShift{}, err
	}
	return s, nil
}
