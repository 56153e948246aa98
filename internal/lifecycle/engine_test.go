package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/DTMaciejM/pracosfera-main/internal/shift"
)

func clockAt(t *testing.T, date, hhmm string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", date+" "+hhmm, time.Local)
	if err != nil {
		t.Fatalf("bad test clock %s %s: %v", date, hhmm, err)
	}
	return ts
}

func applyTransitions(batch []Reservation, result Result, appliedAt time.Time) []Reservation {
	byID := make(map[string]Transition)
	for _, tr := range result.Transitions() {
		byID[tr.ID] = tr
	}
	out := make([]Reservation, len(batch))
	copy(out, batch)
	for i := range out {
		if tr, ok := byID[out[i].ID]; ok {
			out[i].Status = tr.To
			out[i].UpdatedAt = appliedAt
		}
	}
	return out
}

func TestEngine_Reconcile_PastDateForcesCompletion(t *testing.T) {
	t.Parallel()

	now := clockAt(t, "2025-06-11", "09:00")
	batch := []Reservation{
		{ID: "r-1", Date: "2025-06-10", StartTime: "10:00", EndTime: "14:00", Status: StatusUnassigned},
		{ID: "r-2", Date: "2025-06-09", StartTime: "10:00", EndTime: "14:00", Status: StatusAssigned, WorkerID: "w-1"},
		{ID: "r-3", Date: "2025-06-10", StartTime: "10:00", EndTime: "14:00", Status: StatusInProgress, WorkerID: "w-1"},
		// Terminal states are left alone even when the date is past.
		{ID: "r-4", Date: "2025-06-10", StartTime: "10:00", EndTime: "14:00", Status: StatusCancelled},
		{ID: "r-5", Date: "2025-06-10", StartTime: "10:00", EndTime: "14:00", Status: StatusCompleted},
	}

	res := NewEngine(true).Reconcile(now, batch)

	if len(res.Expired) != 3 {
		t.Fatalf("expected 3 expired transitions, got %d", len(res.Expired))
	}
	for _, tr := range res.Expired {
		if tr.To != StatusCompleted {
			t.Fatalf("expired transition must target completed, got %s", tr.To)
		}
	}
	if len(res.Started)+len(res.AwaitingVerification)+len(res.EndedUnassigned) != 0 {
		t.Fatal("past-date records must not trigger same-day transitions")
	}
}

func TestEngine_Reconcile_SameDayWindow(t *testing.T) {
	t.Parallel()

	base := Reservation{
		ID:        "r-1",
		Date:      "2025-06-11",
		StartTime: "14:00",
		EndTime:   "18:00",
		Status:    StatusAssigned,
		WorkerID:  "w-1",
	}
	engine := NewEngine(true)

	t.Run("assigned inside window starts", func(t *testing.T) {
		t.Parallel()
		res := engine.Reconcile(clockAt(t, "2025-06-11", "15:30"), []Reservation{base})
		if len(res.Started) != 1 || res.Started[0].To != StatusInProgress {
			t.Fatalf("expected start transition, got %+v", res)
		}
	})

	t.Run("window boundaries", func(t *testing.T) {
		t.Parallel()
		res := engine.Reconcile(clockAt(t, "2025-06-11", "14:00"), []Reservation{base})
		if len(res.Started) != 1 {
			t.Fatal("start time is inclusive")
		}
		res = engine.Reconcile(clockAt(t, "2025-06-11", "18:00"), []Reservation{base})
		if len(res.Started) != 0 {
			t.Fatal("end time is exclusive")
		}
		if len(res.AwaitingVerification) != 1 {
			t.Fatal("reaching the end time ends the reservation")
		}
	})

	t.Run("before the window nothing happens", func(t *testing.T) {
		t.Parallel()
		res := engine.Reconcile(clockAt(t, "2025-06-11", "13:59"), []Reservation{base})
		if !res.Empty() {
			t.Fatalf("expected quiet result, got %+v", res)
		}
	})

	t.Run("ended with worker awaits verification", func(t *testing.T) {
		t.Parallel()
		res := engine.Reconcile(clockAt(t, "2025-06-11", "18:01"), []Reservation{base})
		if len(res.AwaitingVerification) != 1 || res.AwaitingVerification[0].To != StatusPendingVerification {
			t.Fatalf("expected pending_verification transition, got %+v", res)
		}
	})

	t.Run("ended with worker completes when verification is disabled", func(t *testing.T) {
		t.Parallel()
		res := NewEngine(false).Reconcile(clockAt(t, "2025-06-11", "18:01"), []Reservation{base})
		if len(res.AwaitingVerification) != 1 || res.AwaitingVerification[0].To != StatusCompleted {
			t.Fatalf("expected direct completion, got %+v", res)
		}
	})

	t.Run("ended without worker completes", func(t *testing.T) {
		t.Parallel()
		r := base
		r.WorkerID = ""
		r.Status = StatusInProgress
		res := engine.Reconcile(clockAt(t, "2025-06-11", "18:01"), []Reservation{r})
		if len(res.EndedUnassigned) != 1 || res.EndedUnassigned[0].To != StatusCompleted {
			t.Fatalf("expected completion, got %+v", res)
		}
	})

	t.Run("in progress inside window stays put", func(t *testing.T) {
		t.Parallel()
		r := base
		r.Status = StatusInProgress
		res := engine.Reconcile(clockAt(t, "2025-06-11", "15:30"), []Reservation{r})
		if !res.Empty() {
			t.Fatalf("expected quiet result, got %+v", res)
		}
	})

	t.Run("unassigned same-day is untouched", func(t *testing.T) {
		t.Parallel()
		r := base
		r.Status = StatusUnassigned
		r.WorkerID = ""
		res := engine.Reconcile(clockAt(t, "2025-06-11", "19:00"), []Reservation{r})
		if !res.Empty() {
			t.Fatalf("unassigned reservations only expire by date, got %+v", res)
		}
	})

	t.Run("future date is untouched", func(t *testing.T) {
		t.Parallel()
		r := base
		r.Date = "2025-06-12"
		res := engine.Reconcile(clockAt(t, "2025-06-11", "19:00"), []Reservation{r})
		if !res.Empty() {
			t.Fatalf("future reservations must not transition, got %+v", res)
		}
	})
}

func TestEngine_Reconcile_VerificationTimeout(t *testing.T) {
	t.Parallel()

	now := clockAt(t, "2025-06-11", "12:00")
	engine := NewEngine(true)

	pending := func(updatedAt time.Time) Reservation {
		return Reservation{
			ID:        "r-1",
			Date:      "2025-06-10",
			StartTime: "10:00",
			EndTime:   "14:00",
			Status:    StatusPendingVerification,
			WorkerID:  "w-1",
			UpdatedAt: updatedAt,
		}
	}

	t.Run("elapsed grace period completes", func(t *testing.T) {
		t.Parallel()
		res := engine.Reconcile(now, []Reservation{pending(now.Add(-24 * time.Hour))})
		if len(res.VerificationElapsed) != 1 || res.VerificationElapsed[0].To != StatusCompleted {
			t.Fatalf("expected completion after 24h, got %+v", res)
		}
	})

	t.Run("within grace period stays pending", func(t *testing.T) {
		t.Parallel()
		res := engine.Reconcile(now, []Reservation{pending(now.Add(-23 * time.Hour))})
		if !res.Empty() {
			t.Fatalf("expected quiet result, got %+v", res)
		}
	})

	t.Run("custom grace period", func(t *testing.T) {
		t.Parallel()
		short := Engine{VerificationStep: true, VerificationTTL: time.Hour}
		res := short.Reconcile(now, []Reservation{pending(now.Add(-90 * time.Minute))})
		if len(res.VerificationElapsed) != 1 {
			t.Fatalf("expected completion after custom TTL, got %+v", res)
		}
	})
}

func TestEngine_Reconcile_FixedPoint(t *testing.T) {
	t.Parallel()

	now := clockAt(t, "2025-06-11", "18:30")
	batch := []Reservation{
		{ID: "r-1", Date: "2025-06-10", StartTime: "08:00", EndTime: "12:00", Status: StatusUnassigned},
		{ID: "r-2", Date: "2025-06-11", StartTime: "18:00", EndTime: "22:00", Status: StatusAssigned, WorkerID: "w-1"},
		{ID: "r-3", Date: "2025-06-11", StartTime: "10:00", EndTime: "14:00", Status: StatusInProgress, WorkerID: "w-2"},
		{ID: "r-4", Date: "2025-06-11", StartTime: "10:00", EndTime: "14:00", Status: StatusInProgress},
		{ID: "r-5", Date: "2025-06-10", StartTime: "10:00", EndTime: "14:00", Status: StatusPendingVerification, WorkerID: "w-3", UpdatedAt: now.Add(-25 * time.Hour)},
	}
	engine := NewEngine(true)

	first := engine.Reconcile(now, batch)
	if first.Empty() {
		t.Fatal("expected transitions on the first pass")
	}

	second := engine.Reconcile(now, applyTransitions(batch, first, now))
	if !second.Empty() {
		t.Fatalf("expected a fixed point after applying transitions, got %+v", second.Transitions())
	}
}

func TestEngine_Reconcile_MalformedRecordIsolation(t *testing.T) {
	t.Parallel()

	now := clockAt(t, "2025-06-11", "15:00")
	batch := []Reservation{
		{ID: "bad", Date: "2025-06-11", StartTime: "25:00", EndTime: "14:00", Status: StatusAssigned, WorkerID: "w-1"},
		{ID: "good", Date: "2025-06-11", StartTime: "14:00", EndTime: "18:00", Status: StatusAssigned, WorkerID: "w-2"},
	}

	res := NewEngine(true).Reconcile(now, batch)

	if len(res.Skipped) != 1 || res.Skipped[0].ID != "bad" {
		t.Fatalf("expected exactly the malformed record skipped, got %+v", res.Skipped)
	}
	if !errors.Is(res.Skipped[0].Err, shift.ErrInvalidTime) {
		t.Fatalf("skip reason should be the time format error, got %v", res.Skipped[0].Err)
	}
	if len(res.Started) != 1 || res.Started[0].ID != "good" {
		t.Fatalf("well-formed records must still transition, got %+v", res)
	}
}

func TestHours(t *testing.T) {
	t.Parallel()

	got, err := Hours("09:30", "14:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 4.5 {
		t.Fatalf("Hours = %v, want 4.5", got)
	}

	if _, err := Hours("nine", "14:00"); !errors.Is(err, shift.ErrInvalidTime) {
		t.Fatalf("expected ErrInvalidTime, got %v", err)
	}
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	for _, s := range Statuses() {
		if got, ok := ParseStatus(string(s)); !ok || got != s {
			t.Fatalf("ParseStatus(%q) failed", s)
		}
	}
	if _, ok := ParseStatus("archived"); ok {
		t.Fatal("unknown status strings must not parse")
	}
}
