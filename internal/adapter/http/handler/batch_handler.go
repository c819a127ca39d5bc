package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hazim/reckon/internal/adapter/http/dto"
	"github.com/hazim/reckon/internal/domain"
	"github.com/hazim/reckon/internal/infrastructure/metrics"
	"github.com/hazim/reckon/internal/usecase"
)

// BatchService defines the behavior needed by BatchHandler.
type BatchService interface {
	Submit(ctx context.Context, input usecase.SubmitBatchInput) (*domain.SettlementBatch, error)
	Update(ctx context.Context, id string, rawText string) (*domain.SettlementBatch, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.SettlementBatch, error)
	List(ctx context.Context) ([]*domain.SettlementBatch, error)
	Entries(ctx context.Context, id string) ([]*domain.Entry, error)
}

// BatchHandler handles settlement batch HTTP requests.
type BatchHandler struct {
	batchUC BatchService
	metrics *metrics.Metrics
}

// NewBatchHandler creates a new BatchHandler. Metrics may be nil.
func NewBatchHandler(batchUC BatchService, m *metrics.Metrics) *BatchHandler {
	return &BatchHandler{batchUC: batchUC, metrics: m}
}

// Submit parses and applies a new settlement batch.
func (h *BatchHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	batch, err := h.batchUC.Submit(r.Context(), req.ToUseCaseInput())
	if err != nil {
		if h.metrics != nil {
			h.metrics.BatchesFailed.Inc()
		}
		writeError(w, mapDomainError(err), "failed to submit batch", err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.BatchesProcessed.Inc()
	}

	writeJSON(w, http.StatusCreated, dto.BatchFromDomain(batch))
}

// Get retrieves a batch by ID.
func (h *BatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing batch ID", "")
		return
	}

	batch, err := h.batchUC.Get(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get batch", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BatchFromDomain(batch))
}

// List lists batches, newest first.
func (h *BatchHandler) List(w http.ResponseWriter, r *http.Request) {
	batches, err := h.batchUC.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list batches", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListBatchesResponse{
		Batches: dto.BatchesFromDomain(batches),
		Total:   int64(len(batches)),
	})
}

// Update replaces a batch's text and regenerates its entries.
func (h *BatchHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing batch ID", "")
		return
	}

	var req dto.UpdateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	batch, err := h.batchUC.Update(r.Context(), id, req.Text)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update batch", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BatchFromDomain(batch))
}

// Delete removes a batch and reverses its entries.
func (h *BatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing batch ID", "")
		return
	}

	if err := h.batchUC.Delete(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to delete batch", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Entries lists the ledger entries derived from a batch, oldest first.
func (h *BatchHandler) Entries(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing batch ID", "")
		return
	}

	entries, err := h.batchUC.Entries(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list batch entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListEntriesResponse{
		Entries: dto.EntriesFromDomain(entries),
		Total:   int64(len(entries)),
	})
}
