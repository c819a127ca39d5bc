package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hazim/reckon/internal/domain"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	pool     *pgxpool.Pool
	notifier ChangeNotifier
	retrier  *Retrier
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool, notifier ChangeNotifier, retrier *Retrier) *EntryRepository {
	return &EntryRepository{pool: pool, notifier: notifier, retrier: retrier}
}

const entryColumns = `id, owner_id, category_id, kind, balance_id, amount, origin, batch_id, created_at`

// Create inserts a new ledger entry.
func (r *EntryRepository) Create(ctx context.Context, entry *domain.Entry) error {
	query := `
		INSERT INTO ledger_entries (id, owner_id, category_id, kind, balance_id, amount, origin, batch_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	err := r.retrier.Retry(ctx, func() error {
		_, execErr := r.pool.Exec(ctx, query,
			entry.ID,
			entry.OwnerID,
			entry.CategoryID,
			string(entry.Kind),
			entry.BalanceID,
			decimalToNumeric(entry.Amount),
			string(entry.Origin),
			entry.BatchID,
			timeToPgTimestamptz(entry.CreatedAt),
		)
		return execErr
	})
	if err != nil {
		return err
	}

	notify(ctx, r.notifier, domain.TableEntries, domain.EventInsert, entry.ID, entry)

	return nil
}

// GetByID retrieves an entry by ID.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE id = $1`

	entry, err := scanEntry(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	return entry, nil
}

// Delete removes an entry by ID.
func (r *EntryRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM ledger_entries WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}

	notify(ctx, r.notifier, domain.TableEntries, domain.EventDelete, id, nil)

	return nil
}

// ListByBatch returns the entries derived from a batch, oldest first.
func (r *EntryRepository) ListByBatch(ctx context.Context, batchID string) ([]*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE batch_id = $1 ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, batchID)
	if err != nil {
		return nil, err
	}

	return scanEntries(rows)
}

// List returns all entries, oldest first.
func (r *EntryRepository) List(ctx context.Context) ([]*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	return scanEntries(rows)
}

func scanEntry(row pgx.Row) (*domain.Entry, error) {
	var (
		e         domain.Entry
		kind      string
		origin    string
		amount    pgtype.Numeric
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(&e.ID, &e.OwnerID, &e.CategoryID, &kind, &e.BalanceID, &amount, &origin, &e.BatchID, &createdAt)
	if err != nil {
		return nil, err
	}

	e.Kind = domain.AccountKind(kind)
	e.Origin = domain.Origin(origin)
	e.Amount = numericToDecimal(amount)
	e.CreatedAt = createdAt.Time

	return &e, nil
}

func scanEntries(rows pgx.Rows) ([]*domain.Entry, error) {
	defer rows.Close()

	var entries []*domain.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}
