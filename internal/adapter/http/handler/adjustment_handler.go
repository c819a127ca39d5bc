package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hazim/reckon/internal/adapter/http/dto"
	"github.com/hazim/reckon/internal/domain"
	"github.com/hazim/reckon/internal/usecase"
)

// AdjustmentService defines the behavior needed by AdjustmentHandler.
type AdjustmentService interface {
	Create(ctx context.Context, input usecase.CreateAdjustmentInput) (*domain.Adjustment, error)
	Approve(ctx context.Context, id string) (*domain.Adjustment, error)
	Reject(ctx context.Context, id string) (*domain.Adjustment, error)
	Get(ctx context.Context, id string) (*domain.Adjustment, error)
	List(ctx context.Context) ([]*domain.Adjustment, error)
}

// AdjustmentHandler handles adjustment HTTP requests.
type AdjustmentHandler struct {
	adjustmentUC AdjustmentService
}

// NewAdjustmentHandler creates a new AdjustmentHandler.
func NewAdjustmentHandler(adjustmentUC AdjustmentService) *AdjustmentHandler {
	return &AdjustmentHandler{adjustmentUC: adjustmentUC}
}

// Create records a pending adjustment.
func (h *AdjustmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	adjustment, err := h.adjustmentUC.Create(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create adjustment", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.AdjustmentFromDomain(adjustment))
}

// Approve approves a pending adjustment and applies its debit.
func (h *AdjustmentHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing adjustment ID", "")
		return
	}

	adjustment, err := h.adjustmentUC.Approve(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to approve adjustment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AdjustmentFromDomain(adjustment))
}

// Reject rejects a pending adjustment.
func (h *AdjustmentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing adjustment ID", "")
		return
	}

	adjustment, err := h.adjustmentUC.Reject(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reject adjustment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AdjustmentFromDomain(adjustment))
}

// Get retrieves an adjustment by ID.
func (h *AdjustmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing adjustment ID", "")
		return
	}

	adjustment, err := h.adjustmentUC.Get(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get adjustment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AdjustmentFromDomain(adjustment))
}

// List lists adjustments, newest first.
func (h *AdjustmentHandler) List(w http.ResponseWriter, r *http.Request) {
	adjustments, err := h.adjustmentUC.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list adjustments", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAdjustmentsResponse{
		Adjustments: dto.AdjustmentsFromDomain(adjustments),
		Total:       int64(len(adjustments)),
	})
}
