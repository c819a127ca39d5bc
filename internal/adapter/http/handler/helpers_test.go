package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hazim/reckon/internal/domain"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"batch not found", domain.ErrBatchNotFound, http.StatusNotFound},
		{"owner not found", domain.ErrOwnerNotFound, http.StatusNotFound},
		{"adjustment not pending", domain.ErrAdjustmentNotPending, http.StatusConflict},
		{"reconcile running", domain.ErrReconcileRunning, http.StatusConflict},
		{"parse error", &domain.ParseError{Lines: []domain.LineError{{Line: 1, Message: "bad"}}}, http.StatusUnprocessableEntity},
		{"resolution error", &domain.ResolutionError{Identity: "nobody"}, http.StatusUnprocessableEntity},
		{"validation error", &domain.ValidationError{Field: "amount", Reason: "zero"}, http.StatusUnprocessableEntity},
		{"no valid lines", domain.ErrNoValidLines, http.StatusUnprocessableEntity},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/runs?limit=5&bad=x", nil)

	if got := parseIntQuery(req, "limit", 20); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	if got := parseIntQuery(req, "bad", 20); got != 20 {
		t.Fatalf("expected default 20, got %d", got)
	}
	if got := parseIntQuery(req, "missing", 20); got != 20 {
		t.Fatalf("expected default 20, got %d", got)
	}
}
