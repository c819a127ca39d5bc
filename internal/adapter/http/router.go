// Package http wires the handlers and middleware into the API router.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/hazim/reckon/internal/adapter/http/handler"
	"github.com/hazim/reckon/internal/adapter/http/middleware"
	"github.com/hazim/reckon/internal/infrastructure/metrics"
	"github.com/hazim/reckon/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	BatchHandler      *handler.BatchHandler
	AdjustmentHandler *handler.AdjustmentHandler
	BalanceHandler    *handler.BalanceHandler
	EntryHandler      *handler.EntryHandler
	ReconcileHandler  *handler.ReconcileHandler
	DirectoryHandler  *handler.DirectoryHandler
	HealthHandler     *handler.HealthHandler
	IdempotencyStore  usecase.IdempotencyStore
	IdempotencyTTL    time.Duration
	Logger            zerolog.Logger
	Metrics           *metrics.Metrics
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}
	r.Use(chimiddleware.Recoverer)

	// Health and telemetry endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Settlement batches
		r.Route("/batches", func(r chi.Router) {
			r.Post("/", cfg.BatchHandler.Submit)
			r.Get("/", cfg.BatchHandler.List)
			r.Get("/{id}", cfg.BatchHandler.Get)
			r.Put("/{id}", cfg.BatchHandler.Update)
			r.Delete("/{id}", cfg.BatchHandler.Delete)
			r.Get("/{id}/entries", cfg.BatchHandler.Entries)
		})

		// Adjustments
		r.Route("/adjustments", func(r chi.Router) {
			r.Post("/", cfg.AdjustmentHandler.Create)
			r.Get("/", cfg.AdjustmentHandler.List)
			r.Get("/{id}", cfg.AdjustmentHandler.Get)
			r.Post("/{id}/approve", cfg.AdjustmentHandler.Approve)
			r.Post("/{id}/reject", cfg.AdjustmentHandler.Reject)
		})

		// Balances (read only)
		r.Route("/balances", func(r chi.Router) {
			r.Get("/", cfg.BalanceHandler.List)
			r.Get("/{id}", cfg.BalanceHandler.Get)
		})

		// Ledger entries
		r.Route("/entries", func(r chi.Router) {
			r.Post("/", cfg.EntryHandler.CreateCorrection)
			r.Get("/", cfg.EntryHandler.List)
			r.Get("/{id}", cfg.EntryHandler.Get)
			r.Delete("/{id}", cfg.EntryHandler.Delete)
		})

		// Reconciliation
		r.Route("/reconciliation", func(r chi.Router) {
			r.Post("/run", cfg.ReconcileHandler.Run)
			r.Get("/status", cfg.ReconcileHandler.Status)
			r.Get("/runs", cfg.ReconcileHandler.History)
		})

		// Directory
		r.Get("/owners", cfg.DirectoryHandler.ListOwners)
		r.Get("/categories", cfg.DirectoryHandler.ListCategories)
	})

	return r
}
