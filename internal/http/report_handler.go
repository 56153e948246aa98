package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/DTMaciejM/pracosfera-main/internal/application"
	"github.com/DTMaciejM/pracosfera-main/internal/report"
)

type reportService interface {
	ListReservations(ctx context.Context, params application.ListReservationsParams) ([]application.Reservation, error)
}

// ReportHandler produces administrative spreadsheet exports.
type ReportHandler struct {
	service   reportService
	responder responder
	logger    *slog.Logger
}

func NewReportHandler(service reportService, logger *slog.Logger) *ReportHandler {
	base := defaultLogger(logger)
	return &ReportHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ReportHandler) Reservations(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok || !principal.IsAdmin() {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}

	params, err := buildListParams(r.URL.Query(), principal)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	reservations, err := h.service.ListReservations(r.Context(), params)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="rezerwacje.xlsx"`)
	if err := report.WriteReservationsXLSX(w, reservations); err != nil {
		handlerLogger(r.Context(), h.logger, "ReportHandler", "Reservations").ErrorContext(r.Context(),
			"failed to render reservations export", "error", err)
	}
}
