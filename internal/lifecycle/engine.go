// Package lifecycle computes time-driven reservation status transitions.
//
// The engine is a pure function of the wall-clock instant and a batch of
// reservation records: it proposes transitions and never mutates state
// itself. Callers persist the proposed transitions with conditional writes
// so that concurrent reconcilers cannot double-apply them.
package lifecycle

import (
	"time"

	"github.com/DTMaciejM/pracosfera-main/internal/shift"
)

// DateFormat is the civil-date layout used by reservation records. Dates
// carry no timezone and compare lexically.
const DateFormat = "2006-01-02"

// DefaultVerificationTTL is how long a reservation stays in
// pending_verification before auto-resolving to completed.
const DefaultVerificationTTL = 24 * time.Hour

// Reservation is the read-model slice of a reservation the engine needs.
type Reservation struct {
	ID        string
	Date      string // civil date, YYYY-MM-DD
	StartTime string // HH:MM or HH:MM:SS
	EndTime   string // HH:MM or HH:MM:SS, exclusive
	Status    Status
	WorkerID  string // empty when no worker is assigned
	UpdatedAt time.Time
}

// Transition proposes moving one reservation between states.
type Transition struct {
	ID   string
	From Status
	To   Status
}

// SkippedRecord reports a reservation the engine could not evaluate.
// The rest of the batch is unaffected.
type SkippedRecord struct {
	ID  string
	Err error
}

// Result groups proposed transitions by trigger so callers can apply each
// category with one bulk conditional update. Correctness does not depend on
// the grouping; it only batches writes.
type Result struct {
	// Expired holds past-date reservations forced to completed.
	Expired []Transition
	// Started holds assigned reservations whose window is running now.
	Started []Transition
	// AwaitingVerification holds worked reservations whose window ended.
	AwaitingVerification []Transition
	// EndedUnassigned holds ended reservations that never had a worker.
	EndedUnassigned []Transition
	// VerificationElapsed holds verifications older than the grace period.
	VerificationElapsed []Transition
	// Skipped holds records with unparseable times, for the caller to log.
	Skipped []SkippedRecord
}

// Empty reports whether the result proposes no transitions.
func (r Result) Empty() bool {
	return len(r.Expired) == 0 &&
		len(r.Started) == 0 &&
		len(r.AwaitingVerification) == 0 &&
		len(r.EndedUnassigned) == 0 &&
		len(r.VerificationElapsed) == 0
}

// Transitions flattens the result into evaluation order.
func (r Result) Transitions() []Transition {
	out := make([]Transition, 0,
		len(r.Expired)+len(r.Started)+len(r.AwaitingVerification)+
			len(r.EndedUnassigned)+len(r.VerificationElapsed))
	out = append(out, r.Expired...)
	out = append(out, r.Started...)
	out = append(out, r.AwaitingVerification...)
	out = append(out, r.EndedUnassigned...)
	out = append(out, r.VerificationElapsed...)
	return out
}

// Engine evaluates the reservation state machine. The zero value disables
// the verification step and uses the default grace period; NewEngine applies
// the usual defaults.
type Engine struct {
	// VerificationStep routes worked reservations through
	// pending_verification instead of completing them immediately.
	VerificationStep bool
	// VerificationTTL bounds the pending_verification grace period.
	VerificationTTL time.Duration
}

// NewEngine returns an engine with the verification step toggled and the
// default 24 hour grace period.
func NewEngine(verificationStep bool) Engine {
	return Engine{VerificationStep: verificationStep, VerificationTTL: DefaultVerificationTTL}
}

// Reconcile computes every transition due at the given instant. It is a pure
// function: re-running it over the already-transitioned batch yields an
// empty result, and a quiet batch never produces an error. Records whose
// clock strings cannot be parsed are reported in Skipped and do not abort
// the rest of the batch.
func (e Engine) Reconcile(now time.Time, batch []Reservation) Result {
	ttl := e.VerificationTTL
	if ttl <= 0 {
		ttl = DefaultVerificationTTL
	}

	today := now.Format(DateFormat)
	nowClock := float64(now.Hour()) + float64(now.Minute())/60

	var res Result
	for _, r := range batch {
		switch r.Status {
		case StatusUnassigned, StatusAssigned, StatusInProgress:
		case StatusPendingVerification:
			if now.Sub(r.UpdatedAt) >= ttl {
				res.VerificationElapsed = append(res.VerificationElapsed, Transition{
					ID: r.ID, From: r.Status, To: StatusCompleted,
				})
			}
			continue
		default:
			// Terminal or unknown; nothing to do.
			continue
		}

		// Stale data from missed reconcile windows self-heals first: any
		// reservation dated strictly before today completes regardless of
		// clock times.
		if r.Date < today {
			res.Expired = append(res.Expired, Transition{
				ID: r.ID, From: r.Status, To: StatusCompleted,
			})
			continue
		}
		if r.Date != today || r.Status == StatusUnassigned {
			continue
		}

		start, err := shift.ParseClock(r.StartTime)
		if err != nil {
			res.Skipped = append(res.Skipped, SkippedRecord{ID: r.ID, Err: err})
			continue
		}
		end, err := shift.ParseClock(r.EndTime)
		if err != nil {
			res.Skipped = append(res.Skipped, SkippedRecord{ID: r.ID, Err: err})
			continue
		}

		// Membership in the active window is checked before the end-time
		// threshold, so one pass can never both start and end a record.
		switch {
		case nowClock >= start && nowClock < end:
			if r.Status == StatusAssigned && r.WorkerID != "" {
				res.Started = append(res.Started, Transition{
					ID: r.ID, From: r.Status, To: StatusInProgress,
				})
			}
		case nowClock >= end:
			if r.WorkerID == "" {
				res.EndedUnassigned = append(res.EndedUnassigned, Transition{
					ID: r.ID, From: r.Status, To: StatusCompleted,
				})
				continue
			}
			to := StatusCompleted
			if e.VerificationStep {
				to = StatusPendingVerification
			}
			res.AwaitingVerification = append(res.AwaitingVerification, Transition{
				ID: r.ID, From: r.Status, To: to,
			})
		}
	}
	return res
}

// Hours derives the reservation duration in decimal hours from its clock
// strings. Stored duration values are never trusted; two historical call
// sites disagreed on them.
func Hours(startTime, endTime string) (float64, error) {
	start, err := shift.ParseClock(startTime)
	if err != nil {
		return 0, err
	}
	end, err := shift.ParseClock(endTime)
	if err != nil {
		return 0, err
	}
	return end - start, nil
}
