package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hazim/reckon/internal/domain"
)

// BatchRepository implements usecase.BatchRepository.
type BatchRepository struct {
	pool     *pgxpool.Pool
	notifier ChangeNotifier
}

// NewBatchRepository creates a new BatchRepository.
func NewBatchRepository(pool *pgxpool.Pool, notifier ChangeNotifier) *BatchRepository {
	return &BatchRepository{pool: pool, notifier: notifier}
}

const batchColumns = `id, raw_text, category_id, kind, status, created_at, updated_at`

// Create inserts a new settlement batch.
func (r *BatchRepository) Create(ctx context.Context, batch *domain.SettlementBatch) error {
	query := `
		INSERT INTO settlement_batches (id, raw_text, category_id, kind, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		batch.ID,
		batch.RawText,
		batch.CategoryID,
		string(batch.Kind),
		string(batch.Status),
		timeToPgTimestamptz(batch.CreatedAt),
		timeToPgTimestamptz(batch.UpdatedAt),
	)
	if err != nil {
		return err
	}

	notify(ctx, r.notifier, domain.TableBatches, domain.EventInsert, batch.ID, batch)

	return nil
}

// GetByID retrieves a batch by ID.
func (r *BatchRepository) GetByID(ctx context.Context, id string) (*domain.SettlementBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM settlement_batches WHERE id = $1`

	batch, err := scanBatch(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBatchNotFound
		}

		return nil, err
	}

	return batch, nil
}

// Update replaces a batch's mutable fields.
func (r *BatchRepository) Update(ctx context.Context, batch *domain.SettlementBatch) error {
	query := `
		UPDATE settlement_batches
		SET raw_text = $2, category_id = $3, kind = $4, status = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		batch.ID,
		batch.RawText,
		batch.CategoryID,
		string(batch.Kind),
		string(batch.Status),
		timeToPgTimestamptz(batch.UpdatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrBatchNotFound
	}

	notify(ctx, r.notifier, domain.TableBatches, domain.EventUpdate, batch.ID, batch)

	return nil
}

// UpdateStatus sets a batch's processing status.
func (r *BatchRepository) UpdateStatus(ctx context.Context, id string, status domain.BatchStatus, updatedAt time.Time) error {
	query := `
		UPDATE settlement_batches SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING ` + batchColumns

	batch, err := scanBatch(r.pool.QueryRow(ctx, query, id, string(status), timeToPgTimestamptz(updatedAt)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrBatchNotFound
		}

		return err
	}

	notify(ctx, r.notifier, domain.TableBatches, domain.EventUpdate, id, batch)

	return nil
}

// Delete removes a batch by ID.
func (r *BatchRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM settlement_batches WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrBatchNotFound
	}

	notify(ctx, r.notifier, domain.TableBatches, domain.EventDelete, id, nil)

	return nil
}

// ListOldestFirst returns all batches in replay order.
func (r *BatchRepository) ListOldestFirst(ctx context.Context) ([]*domain.SettlementBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM settlement_batches ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	return scanBatches(rows)
}

// List returns all batches, newest first.
func (r *BatchRepository) List(ctx context.Context) ([]*domain.SettlementBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM settlement_batches ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	return scanBatches(rows)
}

func scanBatch(row pgx.Row) (*domain.SettlementBatch, error) {
	var (
		b         domain.SettlementBatch
		kind      string
		status    string
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(&b.ID, &b.RawText, &b.CategoryID, &kind, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	b.Kind = domain.AccountKind(kind)
	b.Status = domain.BatchStatus(status)
	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}

func scanBatches(rows pgx.Rows) ([]*domain.SettlementBatch, error) {
	defer rows.Close()

	var batches []*domain.SettlementBatch

	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}

		batches = append(batches, b)
	}

	return batches, rows.Err()
}
