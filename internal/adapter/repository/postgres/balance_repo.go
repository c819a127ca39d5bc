package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/hazim/reckon/internal/domain"
)

// BalanceRepository implements usecase.BalanceRepository.
type BalanceRepository struct {
	pool     *pgxpool.Pool
	notifier ChangeNotifier
	retrier  *Retrier
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(pool *pgxpool.Pool, notifier ChangeNotifier, retrier *Retrier) *BalanceRepository {
	return &BalanceRepository{pool: pool, notifier: notifier, retrier: retrier}
}

const balanceColumns = `id, owner_id, category_id, kind, total, created_at, updated_at`

// Create inserts a new balance row. A duplicate (owner, category, kind)
// key maps to domain.ErrBalanceExists.
func (r *BalanceRepository) Create(ctx context.Context, balance *domain.Balance) error {
	query := `
		INSERT INTO balances (id, owner_id, category_id, kind, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		balance.ID,
		balance.OwnerID,
		balance.CategoryID,
		string(balance.Kind),
		decimalToNumeric(balance.Total),
		timeToPgTimestamptz(balance.CreatedAt),
		timeToPgTimestamptz(balance.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrBalanceExists
		}

		return err
	}

	notify(ctx, r.notifier, domain.TableBalances, domain.EventInsert, balance.ID, balance)

	return nil
}

// GetByID retrieves a balance by ID.
func (r *BalanceRepository) GetByID(ctx context.Context, id string) (*domain.Balance, error) {
	query := `SELECT ` + balanceColumns + ` FROM balances WHERE id = $1`

	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// GetByKey retrieves a balance by its (owner, category, kind) key.
func (r *BalanceRepository) GetByKey(ctx context.Context, key domain.BalanceKey) (*domain.Balance, error) {
	query := `SELECT ` + balanceColumns + ` FROM balances WHERE owner_id = $1 AND category_id = $2 AND kind = $3`

	return r.scanOne(r.pool.QueryRow(ctx, query, key.OwnerID, key.CategoryID, string(key.Kind)))
}

// UpdateTotal sets a balance's total.
func (r *BalanceRepository) UpdateTotal(ctx context.Context, id string, total decimal.Decimal, updatedAt time.Time) error {
	query := `
		UPDATE balances SET total = $2, updated_at = $3
		WHERE id = $1
		RETURNING ` + balanceColumns

	var balance *domain.Balance

	err := r.retrier.Retry(ctx, func() error {
		var scanErr error
		balance, scanErr = r.scanOne(r.pool.QueryRow(ctx, query, id, decimalToNumeric(total), timeToPgTimestamptz(updatedAt)))
		return scanErr
	})
	if err != nil {
		return err
	}

	notify(ctx, r.notifier, domain.TableBalances, domain.EventUpdate, id, balance)

	return nil
}

// ResetAll zeroes every balance total and returns the number of rows
// touched.
func (r *BalanceRepository) ResetAll(ctx context.Context, updatedAt time.Time) (int, error) {
	query := `
		UPDATE balances SET total = 0, updated_at = $1
		RETURNING ` + balanceColumns

	var balances []*domain.Balance

	err := r.retrier.Retry(ctx, func() error {
		rows, queryErr := r.pool.Query(ctx, query, timeToPgTimestamptz(updatedAt))
		if queryErr != nil {
			return queryErr
		}

		var scanErr error
		balances, scanErr = scanBalances(rows)
		return scanErr
	})
	if err != nil {
		return 0, err
	}

	for _, b := range balances {
		notify(ctx, r.notifier, domain.TableBalances, domain.EventUpdate, b.ID, b)
	}

	return len(balances), nil
}

// List returns all balances ordered by owner, category, and kind.
func (r *BalanceRepository) List(ctx context.Context) ([]*domain.Balance, error) {
	query := `SELECT ` + balanceColumns + ` FROM balances ORDER BY owner_id, category_id, kind`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	return scanBalances(rows)
}

func (r *BalanceRepository) scanOne(row pgx.Row) (*domain.Balance, error) {
	balance, err := scanBalance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBalanceNotFound
		}

		return nil, err
	}

	return balance, nil
}

func scanBalance(row pgx.Row) (*domain.Balance, error) {
	var (
		b         domain.Balance
		kind      string
		total     pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(&b.ID, &b.OwnerID, &b.CategoryID, &kind, &total, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	b.Kind = domain.AccountKind(kind)
	b.Total = numericToDecimal(total)
	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}

func scanBalances(rows pgx.Rows) ([]*domain.Balance, error) {
	defer rows.Close()

	var balances []*domain.Balance

	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}

		balances = append(balances, b)
	}

	return balances, rows.Err()
}
