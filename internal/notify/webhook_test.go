package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DTMaciejM/pracosfera-main/internal/application"
	"github.com/DTMaciejM/pracosfera-main/internal/lifecycle"
	"github.com/DTMaciejM/pracosfera-main/internal/persistence"
	"github.com/DTMaciejM/pracosfera-main/internal/shift"
)

type shiftListerStub struct {
	shifts []persistence.WorkerShift
}

func (s *shiftListerStub) ListShiftsForDate(ctx context.Context, date string) ([]persistence.WorkerShift, error) {
	return s.shifts, nil
}

type userReaderStub struct {
	users map[string]persistence.User
}

func (s *userReaderStub) GetUser(ctx context.Context, id string) (persistence.User, error) {
	u, ok := s.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return u, nil
}

func TestWebhookNotifier_ReservationCreated(t *testing.T) {
	t.Parallel()

	received := make(chan webhookPayload, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload webhookPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		received <- payload
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	shifts := &shiftListerStub{shifts: []persistence.WorkerShift{
		{WorkerID: "w-fit", Date: "2025-06-14", Type: shift.TypeZ2},
		{WorkerID: "w-early", Date: "2025-06-14", Type: shift.TypeZ1},
		{WorkerID: "w-off", Date: "2025-06-14", Type: shift.TypeOff},
	}}
	users := &userReaderStub{users: map[string]persistence.User{
		"w-fit":   {ID: "w-fit", Role: persistence.RoleWorker, Phone: "+48111222333"},
		"w-early": {ID: "w-early", Role: persistence.RoleWorker, Phone: "+48444555666"},
	}}

	notifier := NewWebhookNotifier(server.URL, shifts, users, server.Client(), nil)
	notifier.ReservationCreated(context.Background(), application.Reservation{
		ID: "r-1", Number: "RES-0001", FranchiseeID: "fr-1",
		Date: "2025-06-14", StartTime: "11:00", EndTime: "15:00",
		Hours: 4, Status: lifecycle.StatusUnassigned,
	})

	select {
	case payload := <-received:
		if payload.Event != "reservation_created" {
			t.Fatalf("unexpected event %q", payload.Event)
		}
		if payload.Data.ReservationNumber != "RES-0001" {
			t.Fatalf("unexpected reservation number %q", payload.Data.ReservationNumber)
		}
		if len(payload.Data.AvailableWorkerPhones) != 1 || payload.Data.AvailableWorkerPhones[0] != "+48111222333" {
			t.Fatalf("expected only the fitting worker's phone, got %v", payload.Data.AvailableWorkerPhones)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was not delivered")
	}
}

func TestWebhookNotifier_NoURLIsNoop(t *testing.T) {
	t.Parallel()

	notifier := NewWebhookNotifier("", &shiftListerStub{}, &userReaderStub{}, nil, nil)
	// Must not panic or spawn anything.
	notifier.ReservationCreated(context.Background(), application.Reservation{ID: "r-1"})
}
