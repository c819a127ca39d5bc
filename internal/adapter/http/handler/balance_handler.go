package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hazim/reckon/internal/adapter/http/dto"
	"github.com/hazim/reckon/internal/domain"
)

// BalanceService defines the behavior needed by BalanceHandler.
type BalanceService interface {
	Get(ctx context.Context, id string) (*domain.Balance, error)
	List(ctx context.Context) ([]*domain.Balance, error)
}

// BalanceHandler handles balance HTTP requests. Balances are derived state:
// the API only ever reads them, movement happens through batches,
// adjustments, and corrections.
type BalanceHandler struct {
	balanceUC BalanceService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceUC BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceUC: balanceUC}
}

// Get retrieves a balance by ID.
func (h *BalanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing balance ID", "")
		return
	}

	balance, err := h.balanceUC.Get(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(balance))
}

// List lists all balances ordered by key.
func (h *BalanceHandler) List(w http.ResponseWriter, r *http.Request) {
	balances, err := h.balanceUC.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list balances", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListBalancesResponse{
		Balances: dto.BalancesFromDomain(balances),
		Total:    int64(len(balances)),
	})
}
