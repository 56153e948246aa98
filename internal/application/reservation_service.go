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

// Reservation creation rules enforced at the service boundary.
const (
	// MinLeadTime is the required notice between creation and the booked day.
	MinLeadTime = 48 * time.Hour
	// MinDuration and MaxDuration bound a single reservation.
	MinDuration = 2.0
	MaxDuration = 8.0
)

// ReservationStore captures the persistence interactions needed by the service.
type ReservationStore interface {
	CreateReservation(ctx context.Context, reservation persistence.Reservation) error
	GetReservation(ctx context.Context, id string) (persistence.Reservation, error)
	ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error)
	UpdateStatus(ctx context.Context, id string, from []lifecycle.Status, to lifecycle.Status) (bool, error)
	AssignWorker(ctx context.Context, id, workerID string) (bool, error)
}

// ShiftReader exposes the shift lookups needed for offer filtering.
type ShiftReader interface {
	GetWorkerShift(ctx context.Context, workerID, date string) (persistence.WorkerShift, error)
}

// WorkerDirectory verifies worker references on assignment.
type WorkerDirectory interface {
	GetUser(ctx context.Context, id string) (persistence.User, error)
}

// ReservationNotifier is told about newly created reservations so matching
// workers can be informed. Delivery is best effort.
type ReservationNotifier interface {
	ReservationCreated(ctx context.Context, reservation Reservation)
}

// ReservationService orchestrates validation, offers and persistence for
// reservation operations.
type ReservationService struct {
	reservations    ReservationStore
	shifts          ShiftReader
	workers         WorkerDirectory
	notifier        ReservationNotifier
	idGenerator     func() string
	numberGenerator func() string
	now             func() time.Time
	logger          *slog.Logger
}

// NewReservationService wires dependencies for reservation operations.
// notifier may be nil.
func NewReservationService(reservations ReservationStore, shifts ShiftReader, workers WorkerDirectory, notifier ReservationNotifier, idGenerator, numberGenerator func() string, now func() time.Time, logger *slog.Logger) *ReservationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if numberGenerator == nil {
		numberGenerator = idGenerator
	}
	if now == nil {
		now = time.Now
	}
	return &ReservationService{
		reservations:    reservations,
		shifts:          shifts,
		workers:         workers,
		notifier:        notifier,
		idGenerator:     idGenerator,
		numberGenerator: numberGenerator,
		now:             now,
		logger:          defaultLogger(logger),
	}
}

func (s *ReservationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReservationService", operation, attrs...)
}

// CreateReservation validates the request and persists a new unassigned
// reservation owned by the franchisee.
func (s *ReservationService) CreateReservation(ctx context.Context, params CreateReservationParams) (Reservation, error) {
	principal := params.Principal
	franchiseeID := params.FranchiseeID
	if franchiseeID == "" {
		franchiseeID = principal.UserID
	}
	if franchiseeID != principal.UserID && !principal.IsAdmin() {
		return Reservation{}, ErrUnauthorized
	}
	if principal.Role != persistence.RoleFranchisee && !principal.IsAdmin() {
		return Reservation{}, ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "CreateReservation", "franchisee_id", franchiseeID)

	if vErr := s.validateInput(params.Input); vErr.HasErrors() {
		return Reservation{}, vErr
	}

	record := persistence.Reservation{
		ID:           s.idGenerator(),
		Number:       s.numberGenerator(),
		FranchiseeID: franchiseeID,
		Date:         params.Input.Date,
		StartTime:    params.Input.StartTime,
		EndTime:      params.Input.EndTime,
		Status:       lifecycle.StatusUnassigned,
	}
	if err := s.reservations.CreateReservation(ctx, record); err != nil {
		logger.ErrorContext(ctx, "failed to create reservation", "error", err)
		return Reservation{}, err
	}

	created, err := s.reservations.GetReservation(ctx, record.ID)
	if err != nil {
		return Reservation{}, err
	}
	view := reservationView(created)

	if s.notifier != nil {
		s.notifier.ReservationCreated(ctx, view)
	}

	logger.InfoContext(ctx, "reservation created", "reservation_id", view.ID, "date", view.Date)
	return view, nil
}

func (s *ReservationService) validateInput(input ReservationInput) *ValidationError {
	vErr := &ValidationError{}

	if _, err := time.ParseInLocation(lifecycle.DateFormat, input.Date, time.Local); err != nil {
		vErr.add("date", "date must be formatted as YYYY-MM-DD")
	}

	start, startErr := shift.ParseClock(input.StartTime)
	if startErr != nil {
		vErr.add("start_time", "start time must be formatted as HH:MM")
	}
	end, endErr := shift.ParseClock(input.EndTime)
	if endErr != nil {
		vErr.add("end_time", "end time must be formatted as HH:MM")
	}
	if vErr.HasErrors() {
		return vErr
	}

	// Two calendar days of notice, compared on civil dates.
	if minDate := s.now().Add(MinLeadTime).Format(lifecycle.DateFormat); input.Date < minDate {
		vErr.add("date", "reservations require 48 hours notice")
	}
	if start >= end {
		vErr.add("time", "start time must be before end time")
		return vErr
	}
	switch hours := end - start; {
	case hours < MinDuration:
		vErr.add("hours", "reservations must last at least 2 hours")
	case hours > MaxDuration:
		vErr.add("hours", "reservations must not exceed 8 hours")
	}
	return vErr
}

// GetReservation returns a single reservation visible to the principal.
func (s *ReservationService) GetReservation(ctx context.Context, principal Principal, id string) (Reservation, error) {
	record, err := s.reservations.GetReservation(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Reservation{}, ErrNotFound
		}
		return Reservation{}, err
	}
	if !s.visibleTo(principal, record) {
		return Reservation{}, ErrNotFound
	}
	return reservationView(record), nil
}

func (s *ReservationService) visibleTo(principal Principal, r persistence.Reservation) bool {
	switch principal.Role {
	case persistence.RoleAdmin:
		return true
	case persistence.RoleFranchisee:
		return r.FranchiseeID == principal.UserID
	case persistence.RoleWorker:
		if r.Status == lifecycle.StatusUnassigned {
			return true
		}
		return r.WorkerID != nil && *r.WorkerID == principal.UserID
	}
	return false
}

// ListReservations returns reservations scoped to the principal's role.
func (s *ReservationService) ListReservations(ctx context.Context, params ListReservationsParams) ([]Reservation, error) {
	filter := persistence.ReservationFilter{
		Statuses: params.Statuses,
		DateFrom: params.DateFrom,
		DateTo:   params.DateTo,
	}
	switch params.Principal.Role {
	case persistence.RoleAdmin:
	case persistence.RoleFranchisee:
		filter.FranchiseeID = params.Principal.UserID
	case persistence.RoleWorker:
		filter.WorkerID = params.Principal.UserID
	default:
		return nil, ErrUnauthorized
	}

	records, err := s.reservations.ListReservations(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]Reservation, 0, len(records))
	for _, r := range records {
		out = append(out, reservationView(r))
	}
	return out, nil
}

// OpenForWorker returns the unassigned reservations whose interval fits the
// worker's configured shift on the reservation date. Workers without a
// resolvable shift that day simply see no offers.
func (s *ReservationService) OpenForWorker(ctx context.Context, principal Principal) ([]Reservation, error) {
	if principal.Role != persistence.RoleWorker {
		return nil, ErrUnauthorized
	}

	open, err := s.reservations.ListReservations(ctx, persistence.ReservationFilter{
		Statuses: []lifecycle.Status{lifecycle.StatusUnassigned},
		DateFrom: s.now().Format(lifecycle.DateFormat),
	})
	if err != nil {
		return nil, err
	}

	logger := s.loggerWith(ctx, "OpenForWorker", "worker_id", principal.UserID)

	windows := make(map[string]*shift.Window)
	out := make([]Reservation, 0, len(open))
	for _, r := range open {
		window, ok := windows[r.Date]
		if !ok {
			window = s.resolveWindow(ctx, principal.UserID, r.Date)
			windows[r.Date] = window
		}
		if window == nil {
			continue
		}
		fits, err := shift.FitsReservation(*window, r.StartTime, r.EndTime)
		if err != nil {
			logger.ErrorContext(ctx, "skipping reservation with malformed times",
				"reservation_id", r.ID, "error", err)
			continue
		}
		if fits {
			out = append(out, reservationView(r))
		}
	}
	return out, nil
}

// resolveWindow returns nil when the worker has no usable window that day.
func (s *ReservationService) resolveWindow(ctx context.Context, workerID, date string) *shift.Window {
	ws, err := s.shifts.GetWorkerShift(ctx, workerID, date)
	if err != nil {
		return nil
	}
	window, ok := shift.ResolveWindow(ws.Type, ws.CustomHours)
	if !ok {
		return nil
	}
	return &window
}

// IsOfferedToWorker reports whether an open reservation should be offered
// given the worker's shift configuration for that date.
func IsOfferedToWorker(r Reservation, shiftType shift.Type, custom *shift.Hours) (bool, error) {
	if r.Status != lifecycle.StatusUnassigned {
		return false, nil
	}
	window, ok := shift.ResolveWindow(shiftType, custom)
	if !ok {
		return false, nil
	}
	return shift.FitsReservation(window, r.StartTime, r.EndTime)
}

// AcceptReservation lets a worker claim an open reservation that fits their
// shift. Losing the claim race surfaces as ErrConflict.
func (s *ReservationService) AcceptReservation(ctx context.Context, principal Principal, id string) (Reservation, error) {
	if principal.Role != persistence.RoleWorker {
		return Reservation{}, ErrUnauthorized
	}

	record, err := s.reservations.GetReservation(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Reservation{}, ErrNotFound
		}
		return Reservation{}, err
	}
	if record.Status != lifecycle.StatusUnassigned {
		return Reservation{}, ErrConflict
	}

	window := s.resolveWindow(ctx, principal.UserID, record.Date)
	if window == nil {
		vErr := &ValidationError{}
		vErr.add("shift", "no shift configured for the reservation date")
		return Reservation{}, vErr
	}
	fits, err := shift.FitsReservation(*window, record.StartTime, record.EndTime)
	if err != nil {
		return Reservation{}, err
	}
	if !fits {
		vErr := &ValidationError{}
		vErr.add("shift", "reservation does not fit the configured shift")
		return Reservation{}, vErr
	}

	return s.assign(ctx, record.ID, principal.UserID)
}

// AssignWorker attaches a worker to an open reservation on behalf of the
// owning franchisee or an admin.
func (s *ReservationService) AssignWorker(ctx context.Context, principal Principal, id, workerID string) (Reservation, error) {
	record, err := s.reservations.GetReservation(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Reservation{}, ErrNotFound
		}
		return Reservation{}, err
	}
	if !principal.IsAdmin() && record.FranchiseeID != principal.UserID {
		return Reservation{}, ErrUnauthorized
	}

	worker, err := s.workers.GetUser(ctx, workerID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			vErr := &ValidationError{}
			vErr.add("worker_id", "unknown worker")
			return Reservation{}, vErr
		}
		return Reservation{}, err
	}
	if worker.Role != persistence.RoleWorker {
		vErr := &ValidationError{}
		vErr.add("worker_id", "user is not a worker")
		return Reservation{}, vErr
	}

	return s.assign(ctx, id, workerID)
}

func (s *ReservationService) assign(ctx context.Context, id, workerID string) (Reservation, error) {
	ok, err := s.reservations.AssignWorker(ctx, id, workerID)
	if err != nil {
		return Reservation{}, err
	}
	if !ok {
		return Reservation{}, ErrConflict
	}

	s.loggerWith(ctx, "AssignWorker").InfoContext(ctx, "reservation assigned",
		"reservation_id", id, "worker_id", workerID)

	record, err := s.reservations.GetReservation(ctx, id)
	if err != nil {
		return Reservation{}, err
	}
	return reservationView(record), nil
}

// CancelReservation moves a non-terminal reservation to cancelled.
func (s *ReservationService) CancelReservation(ctx context.Context, principal Principal, id string) error {
	record, err := s.reservations.GetReservation(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !principal.IsAdmin() && record.FranchiseeID != principal.UserID {
		return ErrUnauthorized
	}
	if record.Status.Terminal() {
		return ErrConflict
	}

	ok, err := s.reservations.UpdateStatus(ctx, id, []lifecycle.Status{
		lifecycle.StatusUnassigned,
		lifecycle.StatusAssigned,
		lifecycle.StatusInProgress,
		lifecycle.StatusPendingVerification,
	}, lifecycle.StatusCancelled)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}

	s.loggerWith(ctx, "CancelReservation").InfoContext(ctx, "reservation cancelled",
		"reservation_id", id)
	return nil
}
