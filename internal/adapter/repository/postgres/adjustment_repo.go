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

// AdjustmentRepository implements usecase.AdjustmentRepository.
type AdjustmentRepository struct {
	pool     *pgxpool.Pool
	notifier ChangeNotifier
}

// NewAdjustmentRepository creates a new AdjustmentRepository.
func NewAdjustmentRepository(pool *pgxpool.Pool, notifier ChangeNotifier) *AdjustmentRepository {
	return &AdjustmentRepository{pool: pool, notifier: notifier}
}

const adjustmentColumns = `id, owner_id, category_id, kind, amount, status, created_at, updated_at`

// Create inserts a new adjustment.
func (r *AdjustmentRepository) Create(ctx context.Context, adj *domain.Adjustment) error {
	query := `
		INSERT INTO adjustments (id, owner_id, category_id, kind, amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		adj.ID,
		adj.OwnerID,
		adj.CategoryID,
		string(adj.Kind),
		decimalToNumeric(adj.Amount),
		string(adj.Status),
		timeToPgTimestamptz(adj.CreatedAt),
		timeToPgTimestamptz(adj.UpdatedAt),
	)
	if err != nil {
		return err
	}

	notify(ctx, r.notifier, domain.TableAdjustments, domain.EventInsert, adj.ID, adj)

	return nil
}

// GetByID retrieves an adjustment by ID.
func (r *AdjustmentRepository) GetByID(ctx context.Context, id string) (*domain.Adjustment, error) {
	query := `SELECT ` + adjustmentColumns + ` FROM adjustments WHERE id = $1`

	adj, err := scanAdjustment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAdjustmentNotFound
		}

		return nil, err
	}

	return adj, nil
}

// UpdateStatus moves an adjustment through its approval lifecycle.
func (r *AdjustmentRepository) UpdateStatus(ctx context.Context, id string, status domain.AdjustmentStatus, updatedAt time.Time) error {
	query := `
		UPDATE adjustments SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING ` + adjustmentColumns

	adj, err := scanAdjustment(r.pool.QueryRow(ctx, query, id, string(status), timeToPgTimestamptz(updatedAt)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrAdjustmentNotFound
		}

		return err
	}

	notify(ctx, r.notifier, domain.TableAdjustments, domain.EventUpdate, id, adj)

	return nil
}

// ListApprovedOldestFirst returns approved adjustments in replay order.
func (r *AdjustmentRepository) ListApprovedOldestFirst(ctx context.Context) ([]*domain.Adjustment, error) {
	query := `SELECT ` + adjustmentColumns + ` FROM adjustments WHERE status = $1 ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, string(domain.AdjustmentStatusApproved))
	if err != nil {
		return nil, err
	}

	return scanAdjustments(rows)
}

// List returns all adjustments, newest first.
func (r *AdjustmentRepository) List(ctx context.Context) ([]*domain.Adjustment, error) {
	query := `SELECT ` + adjustmentColumns + ` FROM adjustments ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	return scanAdjustments(rows)
}

func scanAdjustment(row pgx.Row) (*domain.Adjustment, error) {
	var (
		a         domain.Adjustment
		kind      string
		status    string
		amount    pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(&a.ID, &a.OwnerID, &a.CategoryID, &kind, &amount, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	a.Kind = domain.AccountKind(kind)
	a.Status = domain.AdjustmentStatus(status)
	a.Amount = numericToDecimal(amount)
	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return &a, nil
}

func scanAdjustments(rows pgx.Rows) ([]*domain.Adjustment, error) {
	defer rows.Close()

	var adjustments []*domain.Adjustment

	for rows.Next() {
		a, err := scanAdjustment(rows)
		if err != nil {
			return nil, err
		}

		adjustments = append(adjustments, a)
	}

	return adjustments, rows.Err()
}
