package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hazim/reckon/internal/domain"
)

// OwnerRepository implements usecase.OwnerRepository.
type OwnerRepository struct {
	pool *pgxpool.Pool
}

// NewOwnerRepository creates a new OwnerRepository.
func NewOwnerRepository(pool *pgxpool.Pool) *OwnerRepository {
	return &OwnerRepository{pool: pool}
}

const ownerColumns = `id, email, display_name, created_at`

// GetByID retrieves an owner by ID.
func (r *OwnerRepository) GetByID(ctx context.Context, id string) (*domain.Owner, error) {
	query := `SELECT ` + ownerColumns + ` FROM owners WHERE id = $1`

	return scanOwnerRow(r.pool.QueryRow(ctx, query, id))
}

// GetByIdentity resolves the short identity written in batch lines, the
// lowercased local part of the owner's email.
func (r *OwnerRepository) GetByIdentity(ctx context.Context, identity string) (*domain.Owner, error) {
	query := `SELECT ` + ownerColumns + ` FROM owners WHERE lower(split_part(email, '@', 1)) = lower($1)`

	return scanOwnerRow(r.pool.QueryRow(ctx, query, identity))
}

// List returns all owners ordered by display name.
func (r *OwnerRepository) List(ctx context.Context) ([]*domain.Owner, error) {
	query := `SELECT ` + ownerColumns + ` FROM owners ORDER BY display_name, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var owners []*domain.Owner

	for rows.Next() {
		o, err := scanOwner(rows)
		if err != nil {
			return nil, err
		}

		owners = append(owners, o)
	}

	return owners, rows.Err()
}

func scanOwnerRow(row pgx.Row) (*domain.Owner, error) {
	owner, err := scanOwner(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOwnerNotFound
		}

		return nil, err
	}

	return owner, nil
}

func scanOwner(row pgx.Row) (*domain.Owner, error) {
	var (
		o         domain.Owner
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(&o.ID, &o.Email, &o.DisplayName, &createdAt)
	if err != nil {
		return nil, err
	}

	o.CreatedAt = createdAt.Time

	return &o, nil
}

// CategoryRepository implements usecase.CategoryRepository.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// GetByID retrieves a category by ID.
func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	query := `SELECT id, name FROM categories WHERE id = $1`

	var c domain.Category

	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}

		return nil, err
	}

	return &c, nil
}

// List returns all categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	query := `SELECT id, name FROM categories ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.Category

	for rows.Next() {
		var c domain.Category

		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}

		categories = append(categories, &c)
	}

	return categories, rows.Err()
}
