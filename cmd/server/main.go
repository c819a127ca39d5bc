package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	feedAdapter "github.com/hazim/reckon/internal/adapter/feed"
	httpAdapter "github.com/hazim/reckon/internal/adapter/http"
	"github.com/hazim/reckon/internal/adapter/http/handler"
	postgresRepo "github.com/hazim/reckon/internal/adapter/repository/postgres"
	redisRepo "github.com/hazim/reckon/internal/adapter/repository/redis"
	"github.com/hazim/reckon/internal/batch"
	"github.com/hazim/reckon/internal/domain"
	"github.com/hazim/reckon/internal/feed"
	"github.com/hazim/reckon/internal/infrastructure/alert"
	"github.com/hazim/reckon/internal/infrastructure/config"
	"github.com/hazim/reckon/internal/infrastructure/logger"
	"github.com/hazim/reckon/internal/infrastructure/metrics"
	"github.com/hazim/reckon/internal/infrastructure/postgres"
	"github.com/hazim/reckon/internal/infrastructure/redis"
	"github.com/hazim/reckon/internal/usecase"
)

// cacheSource adapts the postgres repositories to the full-fetch interface
// the state cache loads from.
type cacheSource struct {
	balances    *postgresRepo.BalanceRepository
	entries     *postgresRepo.EntryRepository
	batches     *postgresRepo.BatchRepository
	adjustments *postgresRepo.AdjustmentRepository
}

func (s *cacheSource) ListBalances(ctx context.Context) ([]*domain.Balance, error) {
	return s.balances.List(ctx)
}

func (s *cacheSource) ListEntries(ctx context.Context) ([]*domain.Entry, error) {
	return s.entries.List(ctx)
}

func (s *cacheSource) ListBatches(ctx context.Context) ([]*domain.SettlementBatch, error) {
	return s.batches.List(ctx)
}

func (s *cacheSource) ListAdjustments(ctx context.Context) ([]*domain.Adjustment, error) {
	return s.adjustments.List(ctx)
}

// cachedBalances serves balance reads from the feed-maintained cache and
// falls back to the store for entities the cache has not seen yet.
type cachedBalances struct {
	cache    *feed.Cache
	fallback *usecase.BalanceUseCase
}

func (c *cachedBalances) Get(ctx context.Context, id string) (*domain.Balance, error) {
	if b, ok := c.cache.Balance(id); ok {
		return b, nil
	}

	return c.fallback.Get(ctx, id)
}

func (c *cachedBalances) List(ctx context.Context) ([]*domain.Balance, error) {
	if balances := c.cache.Balances(); len(balances) > 0 {
		return balances, nil
	}

	return c.fallback.List(ctx)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Store
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Feed transport
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	publisher := feedAdapter.NewPublisher(redisClient, cfg.FeedChannelPrefix, appLogger)

	// Repositories
	retrier := postgresRepo.NewRetrier(appLogger)
	balanceRepo := postgresRepo.NewBalanceRepository(pool, publisher, retrier)
	entryRepo := postgresRepo.NewEntryRepository(pool, publisher, retrier)
	batchRepo := postgresRepo.NewBatchRepository(pool, publisher)
	adjustmentRepo := postgresRepo.NewAdjustmentRepository(pool, publisher)
	ownerRepo := postgresRepo.NewOwnerRepository(pool)
	categoryRepo := postgresRepo.NewCategoryRepository(pool)
	runRepo := postgresRepo.NewReconciliationRunRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	// Change feed: one subscriber, one dispatcher, reducers into the cache.
	tables := []string{domain.TableBalances, domain.TableEntries, domain.TableBatches, domain.TableAdjustments}
	subscriber := feedAdapter.NewSubscriber(redisClient, cfg.FeedChannelPrefix, tables, appLogger, m)
	dispatcher := feed.NewDispatcher(subscriber.Events(), cfg.SuppressionWindow, appLogger, m)

	cache := feed.NewCache(appLogger)
	balanceTracker := dispatcher.Register(domain.TableBalances, cache.ReduceBalance)
	entryTracker := dispatcher.Register(domain.TableEntries, cache.ReduceEntry)
	batchTracker := dispatcher.Register(domain.TableBatches, cache.ReduceBatch)
	adjustmentTracker := dispatcher.Register(domain.TableAdjustments, cache.ReduceAdjustment)

	source := &cacheSource{
		balances:    balanceRepo,
		entries:     entryRepo,
		batches:     batchRepo,
		adjustments: adjustmentRepo,
	}
	if err := cache.Load(ctx, source); err != nil {
		log.Fatal().Err(err).Msg("failed to load state cache")
	}
	defer cache.Close()

	go subscriber.Run(ctx)
	go dispatcher.Run(ctx)

	// Alerting
	alerter := alert.NewRedisAlerter(redisClient, "alerts", alert.NewLogAlerter(appLogger, m), m)

	// Use cases
	parser := batch.NewParser(appLogger)
	normalizer := usecase.NewNormalizer(idGen)
	balanceUC := usecase.NewBalanceUseCase(balanceRepo, idGen, balanceTracker)
	applier := usecase.NewApplierUseCase(balanceUC, balanceRepo, entryRepo, balanceTracker, entryTracker, alerter, idGen)
	batchUC := usecase.NewBatchUseCase(parser, batchRepo, entryRepo, ownerRepo, categoryRepo, applier, normalizer, batchTracker, alerter, idGen)
	adjustmentUC := usecase.NewAdjustmentUseCase(adjustmentRepo, ownerRepo, categoryRepo, applier, normalizer, adjustmentTracker, idGen)
	entryUC := usecase.NewEntryUseCase(entryRepo, ownerRepo, categoryRepo, applier, normalizer)
	reconcileUC := usecase.NewReconcileUseCase(balanceUC, applier, batchUC, normalizer, entryRepo, adjustmentRepo, batchRepo, runRepo, alerter, idGen)

	// Handlers
	batchHandler := handler.NewBatchHandler(batchUC, m)
	adjustmentHandler := handler.NewAdjustmentHandler(adjustmentUC)
	balanceHandler := handler.NewBalanceHandler(&cachedBalances{cache: cache, fallback: balanceUC})
	entryHandler := handler.NewEntryHandler(entryUC)
	reconcileHandler := handler.NewReconcileHandler(reconcileUC, m)
	directoryHandler := handler.NewDirectoryHandler(ownerRepo, categoryRepo)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		BatchHandler:      batchHandler,
		AdjustmentHandler: adjustmentHandler,
		BalanceHandler:    balanceHandler,
		EntryHandler:      entryHandler,
		ReconcileHandler:  reconcileHandler,
		DirectoryHandler:  directoryHandler,
		HealthHandler:     healthHandler,
		IdempotencyStore:  idempotencyStore,
		IdempotencyTTL:    cfg.IdempotencyTTL,
		Logger:            appLogger,
		Metrics:           m,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
