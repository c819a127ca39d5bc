package handler

import (
	"context"
	"net/http"

	"github.com/hazim/reckon/internal/adapter/http/dto"
	"github.com/hazim/reckon/internal/domain"
	"github.com/hazim/reckon/internal/infrastructure/metrics"
)

// ReconcileService defines the behavior needed by ReconcileHandler.
type ReconcileService interface {
	Run(ctx context.Context) (*domain.ReconciliationRun, error)
	Running() bool
	History(ctx context.Context, limit int) ([]*domain.ReconciliationRun, error)
}

// ReconcileHandler handles reconciliation HTTP requests.
type ReconcileHandler struct {
	reconcileUC ReconcileService
	metrics     *metrics.Metrics
}

// NewReconcileHandler creates a new ReconcileHandler. Metrics may be nil.
func NewReconcileHandler(reconcileUC ReconcileService, m *metrics.Metrics) *ReconcileHandler {
	return &ReconcileHandler{reconcileUC: reconcileUC, metrics: m}
}

// Run executes a full reset-and-replay rebuild synchronously and returns
// the recorded run. A concurrent rebuild attempt gets 409.
func (h *ReconcileHandler) Run(w http.ResponseWriter, r *http.Request) {
	run, err := h.reconcileUC.Run(r.Context())

	// Failed runs are recorded too; only a rejected start, when another
	// rebuild is already in flight, yields no run at all.
	if run != nil && h.metrics != nil {
		h.metrics.ReconciliationRuns.WithLabelValues(string(run.Status)).Inc()
		h.metrics.ReconciliationDuration.Observe(run.FinishedAt.Sub(run.StartedAt).Seconds())
	}

	if err != nil {
		writeError(w, mapDomainError(err), "reconciliation failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RunFromDomain(run))
}

// Status reports whether a rebuild is in flight.
func (h *ReconcileHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"running": h.reconcileUC.Running()})
}

// History lists recent reconciliation runs, newest first.
func (h *ReconcileHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)

	runs, err := h.reconcileUC.History(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list runs", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListRunsResponse{
		Runs:  dto.RunsFromDomain(runs),
		Total: int64(len(runs)),
	})
}
