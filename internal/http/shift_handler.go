package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/DTMaciejM/pracosfera-main/internal/application"
	"github.com/DTMaciejM/pracosfera-main/internal/shift"
)

type shiftService interface {
	SetWorkerShift(ctx context.Context, params application.SetWorkerShiftParams) error
	GetWorkerShift(ctx context.Context, principal application.Principal, workerID, date string) (application.WorkerShift, error)
	ListWorkerShifts(ctx context.Context, principal application.Principal, workerID, dateFrom, dateTo string) ([]application.WorkerShift, error)
	DeleteWorkerShift(ctx context.Context, principal application.Principal, workerID, date string) error
}

type ShiftHandler struct {
	service   shiftService
	responder responder
	logger    *slog.Logger
}

func NewShiftHandler(service shiftService, logger *slog.Logger) *ShiftHandler {
	base := defaultLogger(logger)
	return &ShiftHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ShiftHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ShiftHandler", operation, attrs...)
}

func (h *ShiftHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	workerID, ok := WorkerIDFromContext(r.Context())
	if !ok || strings.TrimSpace(workerID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWorkerID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := r.URL.Query()

	shifts, err := h.service.ListWorkerShifts(r.Context(), principal, workerID,
		strings.TrimSpace(query.Get("from")), strings.TrimSpace(query.Get("to")))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listShiftsResponse{
		Shifts: toShiftDTOs(shifts),
	})
}

func (h *ShiftHandler) Put(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	workerID, ok := WorkerIDFromContext(r.Context())
	if !ok || strings.TrimSpace(workerID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWorkerID)
		return
	}

	var req shiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Put", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode shift request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	params := application.SetWorkerShiftParams{
		Principal: principal,
		WorkerID:  workerID,
		Date:      strings.TrimSpace(req.Date),
		Type:      shift.Type(strings.TrimSpace(req.Type)),
	}
	if req.CustomHours != nil {
		params.CustomHours = &shift.Hours{
			Start: strings.TrimSpace(req.CustomHours.Start),
			End:   strings.TrimSpace(req.CustomHours.End),
		}
	}

	if err := h.service.SetWorkerShift(r.Context(), params); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Put", "worker_id", workerID, "date", params.Date).InfoContext(r.Context(), "worker shift configured")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ShiftHandler) Delete(w http.ResponseWriter, r *http.Request, date string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	workerID, ok := WorkerIDFromContext(r.Context())
	if !ok || strings.TrimSpace(workerID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWorkerID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	if err := h.service.DeleteWorkerShift(r.Context(), principal, workerID, date); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type shiftRequest struct {
	Date        string           `json:"date"`
	Type        string           `json:"type"`
	CustomHours *customHoursBody `json:"custom_hours,omitempty"`
}

type customHoursBody struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type shiftDTO struct {
	WorkerID    string           `json:"worker_id"`
	Date        string           `json:"date"`
	Type        string           `json:"type"`
	CustomHours *customHoursBody `json:"custom_hours,omitempty"`
}

type listShiftsResponse struct {
	Shifts []shiftDTO `json:"shifts"`
}

func toShiftDTOs(shifts []application.WorkerShift) []shiftDTO {
	out := make([]shiftDTO, 0, len(shifts))
	for _, s := range shifts {
		dto := shiftDTO{
			WorkerID: s.WorkerID,
			Date:     s.Date,
			Type:     string(s.Type),
		}
		if s.CustomHours != nil {
			dto.CustomHours = &customHoursBody{Start: s.CustomHours.Start, End: s.CustomHours.End}
		}
		out = append(out, dto)
	}
	return out
}
