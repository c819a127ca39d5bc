package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hazim/reckon/internal/domain"
)

// ReconciliationRunRepository implements usecase.ReconciliationRunRepository.
type ReconciliationRunRepository struct {
	pool *pgxpool.Pool
}

// NewReconciliationRunRepository creates a new ReconciliationRunRepository.
func NewReconciliationRunRepository(pool *pgxpool.Pool) *ReconciliationRunRepository {
	return &ReconciliationRunRepository{pool: pool}
}

// Create records a finished reconciliation run.
func (r *ReconciliationRunRepository) Create(ctx context.Context, run *domain.ReconciliationRun) error {
	query := `
		INSERT INTO reconciliation_runs (
			id, status, phase, entries_purged, balances_zeroed,
			adjustments_replayed, batches_replayed, error, started_at, finished_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		run.ID,
		string(run.Status),
		string(run.Phase),
		run.EntriesPurged,
		run.BalancesZeroed,
		run.AdjustmentsReplayed,
		run.BatchesReplayed,
		run.Error,
		timeToPgTimestamptz(run.StartedAt),
		timeToPgTimestamptz(run.FinishedAt),
	)

	return err
}

// List returns the most recent runs, newest first.
func (r *ReconciliationRunRepository) List(ctx context.Context, limit int) ([]*domain.ReconciliationRun, error) {
	query := `
		SELECT id, status, phase, entries_purged, balances_zeroed,
		       adjustments_replayed, batches_replayed, error, started_at, finished_at
		FROM reconciliation_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.ReconciliationRun

	for rows.Next() {
		var (
			run        domain.ReconciliationRun
			status     string
			phase      string
			startedAt  pgtype.Timestamptz
			finishedAt pgtype.Timestamptz
		)

		err := rows.Scan(
			&run.ID, &status, &phase, &run.EntriesPurged, &run.BalancesZeroed,
			&run.AdjustmentsReplayed, &run.BatchesReplayed, &run.Error, &startedAt, &finishedAt,
		)
		if err != nil {
			return nil, err
		}

		run.Status = domain.RunStatus(status)
		run.Phase = domain.ReconcilePhase(phase)
		run.StartedAt = startedAt.Time
		run.FinishedAt = finishedAt.Time

		runs = append(runs, &run)
	}

	return runs, rows.Err()
}
