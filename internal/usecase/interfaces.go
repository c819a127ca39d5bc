package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hazim/reckon/internal/domain"
)

// BalanceRepository defines data access for balances.
//
// Create must return domain.ErrBalanceExists when a row with the same
// (owner, category, kind) key already exists, so callers can re-fetch
// after losing a create race.
type BalanceRepository interface {
	Create(ctx context.Context, balance *domain.Balance) error
	GetByID(ctx context.Context, id string) (*domain.Balance, error)
	GetByKey(ctx context.Context, key domain.BalanceKey) (*domain.Balance, error)
	UpdateTotal(ctx context.Context, id string, total decimal.Decimal, updatedAt time.Time) error
	ResetAll(ctx context.Context, updatedAt time.Time) (int, error)
	List(ctx context.Context) ([]*domain.Balance, error)
}

// EntryRepository defines data access for ledger entries.
type EntryRepository interface {
	Create(ctx context.Context, entry *domain.Entry) error
	GetByID(ctx context.Context, id string) (*domain.Entry, error)
	Delete(ctx context.Context, id string) error
	ListByBatch(ctx context.Context, batchID string) ([]*domain.Entry, error)
	List(ctx context.Context) ([]*domain.Entry, error)
}

// BatchRepository defines data access for settlement batches.
type BatchRepository interface {
	Create(ctx context.Context, batch *domain.SettlementBatch) error
	GetByID(ctx context.Context, id string) (*domain.SettlementBatch, error)
	Update(ctx context.Context, batch *domain.SettlementBatch) error
	UpdateStatus(ctx context.Context, id string, status domain.BatchStatus, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
	// ListOldestFirst returns all batches ordered by creation time ascending,
	// the replay order used by reconciliation.
	ListOldestFirst(ctx context.Context) ([]*domain.SettlementBatch, error)
	List(ctx context.Context) ([]*domain.SettlementBatch, error)
}

// AdjustmentRepository defines data access for adjustments.
type AdjustmentRepository interface {
	Create(ctx context.Context, adj *domain.Adjustment) error
	GetByID(ctx context.Context, id string) (*domain.Adjustment, error)
	UpdateStatus(ctx context.Context, id string, status domain.AdjustmentStatus, updatedAt time.Time) error
	// ListApprovedOldestFirst returns approved adjustments ordered by
	// creation time ascending, the replay order used by reconciliation.
	ListApprovedOldestFirst(ctx context.Context) ([]*domain.Adjustment, error)
	List(ctx context.Context) ([]*domain.Adjustment, error)
}

// OwnerRepository defines data access for owners.
type OwnerRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Owner, error)
	// GetByIdentity resolves the short identity derived from an owner's
	// email local part. Must return domain.ErrOwnerNotFound when no owner
	// matches.
	GetByIdentity(ctx context.Context, identity string) (*domain.Owner, error)
	List(ctx context.Context) ([]*domain.Owner, error)
}

// CategoryRepository defines data access for categories.
type CategoryRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
}

// ReconciliationRunRepository records reset-and-replay runs.
type ReconciliationRunRepository interface {
	Create(ctx context.Context, run *domain.ReconciliationRun) error
	List(ctx context.Context, limit int) ([]*domain.ReconciliationRun, error)
}

// Tracker registers an upcoming own write so the change feed consumer can
// suppress its echo.
type Tracker interface {
	Track(entityID string, kind domain.EventType)
}

// Alerter delivers operator notifications for degraded ledger state.
type Alerter interface {
	Alert(ctx context.Context, severity string, message string, fields map[string]string)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
