package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/DTMaciejM/pracosfera-main/internal/lifecycle"
	"github.com/DTMaciejM/pracosfera-main/internal/persistence"
	"github.com/DTMaciejM/pracosfera-main/internal/shift"
)

// ShiftStore captures the persistence interactions for shift rosters.
type ShiftStore interface {
	UpsertWorkerShift(ctx context.Context, s persistence.WorkerShift) error
	GetWorkerShift(ctx context.Context, workerID, date string) (persistence.WorkerShift, error)
	ListWorkerShifts(ctx context.Context, workerID, dateFrom, dateTo string) ([]persistence.WorkerShift, error)
	DeleteWorkerShift(ctx context.Context, workerID, date string) error
}

// ShiftService manages worker shift configuration. Rosters are set by the
// admin; workers and the offer filter only read them.
type ShiftService struct {
	shifts      ShiftStore
	workers     WorkerDirectory
	idGenerator func() string
	logger      *slog.Logger
}

// NewShiftService wires dependencies for shift roster operations.
func NewShiftService(shifts ShiftStore, workers WorkerDirectory, idGenerator func() string, logger *slog.Logger) *ShiftService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &ShiftService{
		shifts:      shifts,
		workers:     workers,
		idGenerator: idGenerator,
		logger:      defaultLogger(logger),
	}
}

// SetWorkerShift configures a worker's shift for one calendar date,
// replacing any previous configuration for that day.
func (s *ShiftService) SetWorkerShift(ctx context.Context, params SetWorkerShiftParams) error {
	if !params.Principal.IsAdmin() {
		return ErrUnauthorized
	}

	vErr := &ValidationError{}
	if _, err := time.ParseInLocation(lifecycle.DateFormat, params.Date, time.Local); err != nil {
		vErr.add("date", "date must be formatted as YYYY-MM-DD")
	}
	if !params.Type.Valid() {
		vErr.add("shift_type", "unknown shift type")
	}
	if params.Type == shift.TypeCustom {
		if params.CustomHours == nil {
			vErr.add("custom_hours", "custom shifts require explicit hours")
		} else {
			if _, err := shift.ParseClock(params.CustomHours.Start); err != nil {
				vErr.add("custom_hours", "custom hours must be formatted as HH:MM")
			} else if _, err := shift.ParseClock(params.CustomHours.End); err != nil {
				vErr.add("custom_hours", "custom hours must be formatted as HH:MM")
			}
		}
	}
	if vErr.HasErrors() {
		return vErr
	}

	worker, err := s.workers.GetUser(ctx, params.WorkerID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			vErr.add("worker_id", "unknown worker")
			return vErr
		}
		return err
	}
	if worker.Role != persistence.RoleWorker {
		vErr.add("worker_id", "user is not a worker")
		return vErr
	}

	record := persistence.WorkerShift{
		ID:       s.idGenerator(),
		WorkerID: params.WorkerID,
		Date:     params.Date,
		Type:     params.Type,
	}
	if params.Type == shift.TypeCustom {
		record.CustomHours = params.CustomHours
	}
	if err := s.shifts.UpsertWorkerShift(ctx, record); err != nil {
		return err
	}

	serviceLogger(ctx, s.logger, "ShiftService", "SetWorkerShift").InfoContext(ctx,
		"worker shift configured",
		"worker_id", params.WorkerID, "date", params.Date, "shift_type", params.Type)
	return nil
}

// GetWorkerShift returns the shift configured for a worker on a date.
func (s *ShiftService) GetWorkerShift(ctx context.Context, principal Principal, workerID, date string) (WorkerShift, error) {
	if !principal.IsAdmin() && principal.UserID != workerID {
		return WorkerShift{}, ErrUnauthorized
	}
	record, err := s.shifts.GetWorkerShift(ctx, workerID, date)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return WorkerShift{}, ErrNotFound
		}
		return WorkerShift{}, err
	}
	return shiftView(record), nil
}

// ListWorkerShifts returns a worker's roster within the inclusive range.
func (s *ShiftService) ListWorkerShifts(ctx context.Context, principal Principal, workerID, dateFrom, dateTo string) ([]WorkerShift, error) {
	if !principal.IsAdmin() && principal.UserID != workerID {
		return nil, ErrUnauthorized
	}
	records, err := s.shifts.ListWorkerShifts(ctx, workerID, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}
	out := make([]WorkerShift, 0, len(records))
	for _, r := range records {
		out = append(out, shiftView(r))
	}
	return out, nil
}

// DeleteWorkerShift removes a configured day from the roster.
func (s *ShiftService) DeleteWorkerShift(ctx context.Context, principal Principal, workerID, date string) error {
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}
	if err := s.shifts.DeleteWorkerShift(ctx, workerID, date); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func shiftView(r persistence.WorkerShift) WorkerShift {
	return WorkerShift{
		WorkerID:    r.WorkerID,
		Date:        r.Date,
		Type:        r.Type,
		CustomHours: r.CustomHours,
	}
}
