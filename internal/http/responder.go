package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/DTMaciejM/pracosfera-main/internal/application"
	"github.com/DTMaciejM/pracosfera-main/internal/logging"
)

var (
	errBadRequestBody      = errors.New("Nieprawidłowy format żądania.")
	errInvalidReservation  = errors.New("Nieprawidłowy identyfikator rezerwacji.")
	errInvalidWorkerID     = errors.New("Nieprawidłowy identyfikator pracownika.")
	errInvalidUserID       = errors.New("Nieprawidłowy identyfikator użytkownika.")
	errMissingSessionToken = errors.New("Podaj token uwierzytelniający")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "Brak uprawnień do wykonania tej operacji.",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "Nie znaleziono zasobu."})
	case errors.Is(err, application.ErrConflict):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "RESERVATION_CONFLICT",
			Message:   "Żądanie koliduje z bieżącym stanem rezerwacji.",
		})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "Zasób o podanych danych już istnieje."})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			details := localizeValidationErrors(vErr)
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "Dane wejściowe zawierają błędy.",
				Errors:  details,
			})
			return
		}

		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "error", err,
			"error_kind", application.ErrorKind(err))
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "Wystąpił błąd wewnętrzny serwera."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Nieprawidłowa treść żądania."
	case http.StatusUnauthorized:
		return "Wymagane uwierzytelnienie."
	case http.StatusForbidden:
		return "Brak uprawnień do wykonania tej operacji."
	case http.StatusNotFound:
		return "Nie znaleziono zasobu."
	case http.StatusConflict:
		return "Żądanie koliduje z bieżącym stanem zasobu."
	case http.StatusUnprocessableEntity:
		return "Dane wejściowe zawierają błędy."
	default:
		return "Wystąpił błąd wewnętrzny serwera."
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "date must be formatted as YYYY-MM-DD":
		return "Data musi mieć format RRRR-MM-DD."
	case "reservations require 48 hours notice":
		return "Rezerwację można złożyć najpóźniej 48 godzin przed terminem."
	case "start time must be formatted as HH:MM":
		return "Godzina rozpoczęcia musi mieć format GG:MM."
	case "end time must be formatted as HH:MM":
		return "Godzina zakończenia musi mieć format GG:MM."
	case "start time must be before end time":
		return "Godzina rozpoczęcia musi być wcześniejsza niż zakończenia."
	case "reservations must last at least 2 hours":
		return "Rezerwacja musi trwać co najmniej 2 godziny."
	case "reservations must not exceed 8 hours":
		return "Rezerwacja nie może trwać dłużej niż 8 godzin."
	case "no shift configured for the reservation date":
		return "Brak zmiany skonfigurowanej na dzień rezerwacji."
	case "reservation does not fit the configured shift":
		return "Rezerwacja nie mieści się w skonfigurowanej zmianie."
	case "unknown worker":
		return "Nie znaleziono pracownika o podanym identyfikatorze."
	case "user is not a worker":
		return "Wskazany użytkownik nie jest pracownikiem."
	case "unknown shift type":
		return "Nieznany typ zmiany."
	case "custom shifts require explicit hours":
		return "Zmiana niestandardowa wymaga podania godzin."
	case "custom hours must be formatted as HH:MM":
		return "Godziny zmiany muszą mieć format GG:MM."
	case "invalid email address":
		return "Nieprawidłowy adres e-mail."
	case "display name is required":
		return "Nazwa wyświetlana jest wymagana."
	case "unknown role":
		return "Nieznana rola użytkownika."
	case "password must be at least 8 characters":
		return "Hasło musi mieć co najmniej 8 znaków."
	case "franchisees require an MPK number":
		return "Franczyzobiorca musi mieć numer MPK."
	default:
		return message
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
