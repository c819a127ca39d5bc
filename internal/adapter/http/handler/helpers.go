// Package handler contains the HTTP handlers of the API surface.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/hazim/reckon/internal/adapter/http/dto"
	"github.com/hazim/reckon/internal/domain"
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
	var (
		parseErr      *domain.ParseError
		resolutionErr *domain.ResolutionError
		validationErr *domain.ValidationError
	)

	switch {
	case errors.Is(err, domain.ErrBalanceNotFound),
		errors.Is(err, domain.ErrEntryNotFound),
		errors.Is(err, domain.ErrBatchNotFound),
		errors.Is(err, domain.ErrAdjustmentNotFound),
		errors.Is(err, domain.ErrOwnerNotFound),
		errors.Is(err, domain.ErrCategoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAdjustmentNotPending),
		errors.Is(err, domain.ErrReconcileRunning),
		errors.Is(err, domain.ErrBalanceExists):
		return http.StatusConflict
	case errors.As(err, &parseErr),
		errors.As(err, &resolutionErr),
		errors.As(err, &validationErr),
		errors.Is(err, domain.ErrNoValidLines):
		return http.StatusUnprocessableEntity
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
