package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/flowdash/flowdash/internal/adapter/http/dto"
	"github.com/flowdash/flowdash/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrClosingNotFound),
		errors.Is(err, domain.ErrGoalNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrSameAccount),
		errors.Is(err, domain.ErrUnknownAccount),
		errors.Is(err, domain.ErrInvalidPaymentMethod),
		errors.Is(err, domain.ErrCardBrandRequired),
		errors.Is(err, domain.ErrInvalidInstallments),
		errors.Is(err, domain.ErrInvalidBusinessDate),
		errors.Is(err, domain.ErrInvalidAccountName),
		errors.Is(err, domain.ErrInvalidAccountKind),
		errors.Is(err, domain.ErrJustificationEmpty),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrPasswordTooWeak):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrDayClosed),
		errors.Is(err, domain.ErrAlreadyClosed),
		errors.Is(err, domain.ErrOutOfOrderClosing),
		errors.Is(err, domain.ErrAlreadyReversed),
		errors.Is(err, domain.ErrNotReversible),
		errors.Is(err, domain.ErrClosingFinalized),
		errors.Is(err, domain.ErrClosingNotPending),
		errors.Is(err, domain.ErrToleranceExceeded),
		errors.Is(err, domain.ErrCorrectionMismatch),
		errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict

	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrFloorViolated),
		errors.Is(err, domain.ErrAccountInactive),
		errors.Is(err, domain.ErrNoMatchingFeeRule):
		return http.StatusUnprocessableEntity

	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken),
		errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrInsufficientRole):
		return http.StatusForbidden

	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseDateQuery parses a date query parameter. Accepts a plain calendar
// date or a full RFC 3339 timestamp; the zero time signals absence.
func parseDateQuery(r *http.Request, key string) (time.Time, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return time.Time{}, nil
	}

	if t, err := time.Parse(time.DateOnly, val); err == nil {
		return t, nil
	}

	return time.Parse(time.RFC3339, val)
}
