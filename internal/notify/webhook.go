// Package notify delivers reservation events to an external automation
// webhook. Delivery is best effort; failures are logged, never surfaced to
// the caller.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/DTMaciejM/pracosfera-main/internal/application"
	"github.com/DTMaciejM/pracosfera-main/internal/persistence"
	"github.com/DTMaciejM/pracosfera-main/internal/shift"
)

// ShiftLister returns the configured shifts for a date across all workers.
type ShiftLister interface {
	ListShiftsForDate(ctx context.Context, date string) ([]persistence.WorkerShift, error)
}

// UserReader resolves worker records for phone numbers.
type UserReader interface {
	GetUser(ctx context.Context, id string) (persistence.User, error)
}

// WebhookNotifier posts reservation_created events, including the phone
// numbers of workers whose shift fits the new reservation.
type WebhookNotifier struct {
	url     string
	shifts  ShiftLister
	users   UserReader
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewWebhookNotifier builds a notifier posting to url. client may be nil.
func NewWebhookNotifier(url string, shifts ShiftLister, users UserReader, client *http.Client, logger *slog.Logger) *WebhookNotifier {
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookNotifier{
		url:     url,
		shifts:  shifts,
		users:   users,
		client:  client,
		timeout: 10 * time.Second,
		logger:  logger,
		now:     time.Now,
	}
}

type webhookPayload struct {
	Event     string          `json:"event"`
	Data      reservationData `json:"data"`
	Timestamp string          `json:"timestamp"`
}

type reservationData struct {
	ID                    string   `json:"id"`
	ReservationNumber     string   `json:"reservation_number"`
	Date                  string   `json:"date"`
	StartTime             string   `json:"start_time"`
	EndTime               string   `json:"end_time"`
	Hours                 float64  `json:"hours"`
	Status                string   `json:"status"`
	WorkerID              string   `json:"worker_id,omitempty"`
	FranchiseeID          string   `json:"franchisee_id"`
	CreatedAt             string   `json:"created_at"`
	AvailableWorkerPhones []string `json:"available_worker_phones"`
}

// ReservationCreated collects fitting worker phones and posts the event in
// the background so reservation creation is never blocked on delivery.
func (n *WebhookNotifier) ReservationCreated(ctx context.Context, r application.Reservation) {
	if n == nil || n.url == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
		defer cancel()

		phones := n.availableWorkerPhones(ctx, r)
		payload := webhookPayload{
			Event: "reservation_created",
			Data: reservationData{
				ID:                    r.ID,
				ReservationNumber:     r.Number,
				Date:                  r.Date,
				StartTime:             r.StartTime,
				EndTime:               r.EndTime,
				Hours:                 r.Hours,
				Status:                string(r.Status),
				WorkerID:              r.WorkerID,
				FranchiseeID:          r.FranchiseeID,
				CreatedAt:             r.CreatedAt.UTC().Format(time.RFC3339),
				AvailableWorkerPhones: phones,
			},
			Timestamp: n.now().UTC().Format(time.RFC3339),
		}

		if err := n.post(ctx, payload); err != nil {
			n.logger.ErrorContext(ctx, "failed to deliver reservation webhook",
				"reservation_id", r.ID, "error", err)
			return
		}
		n.logger.InfoContext(ctx, "reservation webhook delivered",
			"reservation_id", r.ID, "matched_workers", len(phones))
	}()
}

// availableWorkerPhones finds workers whose shift on the reservation date
// contains the reservation interval. Lookup failures degrade to an empty
// list rather than blocking the event.
func (n *WebhookNotifier) availableWorkerPhones(ctx context.Context, r application.Reservation) []string {
	shifts, err := n.shifts.ListShiftsForDate(ctx, r.Date)
	if err != nil {
		n.logger.ErrorContext(ctx, "failed to list shifts for webhook matching",
			"date", r.Date, "error", err)
		return []string{}
	}

	phones := make([]string, 0, len(shifts))
	for _, ws := range shifts {
		window, ok := shift.ResolveWindow(ws.Type, ws.CustomHours)
		if !ok {
			continue
		}
		fits, err := shift.FitsReservation(window, r.StartTime, r.EndTime)
		if err != nil || !fits {
			continue
		}

		worker, err := n.users.GetUser(ctx, ws.WorkerID)
		if err != nil {
			if !errors.Is(err, persistence.ErrNotFound) {
				n.logger.ErrorContext(ctx, "failed to resolve worker for webhook",
					"worker_id", ws.WorkerID, "error", err)
			}
			continue
		}
		if worker.Role != persistence.RoleWorker || worker.Phone == "" {
			continue
		}
		phones = append(phones, worker.Phone)
	}
	return phones
}

func (n *WebhookNotifier) post(ctx context.Context, payload webhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notify: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: post event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notify: webhook responded with status %d", resp.StatusCode)
	}
	return nil
}
