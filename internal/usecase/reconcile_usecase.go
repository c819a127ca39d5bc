package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hazim/reckon/internal/domain"
)

// BatchReplayer re-applies a stored batch during reconciliation.
type BatchReplayer interface {
	Replay(ctx context.Context, b *domain.SettlementBatch) error
}

// ReconcileUseCase rebuilds every balance from first principles: purge all
// entries, zero all balances, then replay approved adjustments and stored
// batches in creation order. The same inputs always produce the same
// totals.
type ReconcileUseCase struct {
	running atomic.Bool

	balances       *BalanceUseCase
	applier        *ApplierUseCase
	replayer       BatchReplayer
	normalizer     *Normalizer
	entryRepo      EntryRepository
	adjustmentRepo AdjustmentRepository
	batchRepo      BatchRepository
	runRepo        ReconciliationRunRepository
	alerter        Alerter
	idGen          IDGenerator
}

// NewReconcileUseCase creates a new ReconcileUseCase.
func NewReconcileUseCase(
	balances *BalanceUseCase,
	applier *ApplierUseCase,
	replayer BatchReplayer,
	normalizer *Normalizer,
	entryRepo EntryRepository,
	adjustmentRepo AdjustmentRepository,
	batchRepo BatchRepository,
	runRepo ReconciliationRunRepository,
	alerter Alerter,
	idGen IDGenerator,
) *ReconcileUseCase {
	return &ReconcileUseCase{
		balances:       balances,
		applier:        applier,
		replayer:       replayer,
		normalizer:     normalizer,
		entryRepo:      entryRepo,
		adjustmentRepo: adjustmentRepo,
		batchRepo:      batchRepo,
		runRepo:        runRepo,
		alerter:        alerter,
		idGen:          idGen,
	}
}

// Running reports whether a reconciliation is in progress.
func (uc *ReconcileUseCase) Running() bool {
	return uc.running.Load()
}

// Run executes a full reset-and-replay. Only one run may be in progress at
// a time; a second call returns domain.ErrReconcileRunning. The run is
// recorded whether it succeeds or fails, and a failure names the phase it
// died in without any automatic retry.
func (uc *ReconcileUseCase) Run(ctx context.Context) (*domain.ReconciliationRun, error) {
	if !uc.running.CompareAndSwap(false, true) {
		return nil, domain.ErrReconcileRunning
	}
	defer uc.running.Store(false)

	run := &domain.ReconciliationRun{
		ID:        uc.idGen.Generate(),
		Status:    domain.RunStatusSucceeded,
		Phase:     domain.PhaseIdle,
		StartedAt: time.Now().UTC(),
	}

	err := uc.execute(ctx, run)

	run.FinishedAt = time.Now().UTC()

	if err != nil {
		run.Status = domain.RunStatusFailed
		run.Error = err.Error()

		uc.alerter.Alert(ctx, "critical", "reconciliation failed", map[string]string{
			"run_id": run.ID,
			"phase":  string(run.Phase),
		})
	}

	if createErr := uc.runRepo.Create(ctx, run); createErr != nil {
		uc.alerter.Alert(ctx, "warning", "failed to record reconciliation run", map[string]string{
			"run_id": run.ID,
		})
	}

	return run, err
}

func (uc *ReconcileUseCase) execute(ctx context.Context, run *domain.ReconciliationRun) error {
	// Phase 1: remove every ledger entry. Balance updates are skipped
	// because the next phase zeroes them wholesale.
	run.Phase = domain.PhasePurgingEntries

	entries, err := uc.entryRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}

	for _, e := range entries {
		err = uc.applier.Remove(ctx, e, true)
		if err != nil {
			return fmt.Errorf("purge entry %s: %w", e.ID, err)
		}

		run.EntriesPurged++
	}

	// Phase 2: zero every balance total.
	run.Phase = domain.PhaseZeroingBalances

	zeroed, err := uc.balances.ResetAll(ctx)
	if err != nil {
		return fmt.Errorf("zero balances: %w", err)
	}

	run.BalancesZeroed = zeroed

	// Phase 3: replay approved adjustments, oldest first.
	run.Phase = domain.PhaseReplayingAdjustments

	adjustments, err := uc.adjustmentRepo.ListApprovedOldestFirst(ctx)
	if err != nil {
		return fmt.Errorf("list approved adjustments: %w", err)
	}

	for _, adj := range adjustments {
		entry := uc.normalizer.FromAdjustment(adj, time.Now().UTC())

		_, err = uc.applier.Apply(ctx, entry)
		if err != nil {
			return fmt.Errorf("replay adjustment %s: %w", adj.ID, err)
		}

		run.AdjustmentsReplayed++
	}

	// Phase 4: replay stored batches, oldest first.
	run.Phase = domain.PhaseReplayingBatches

	batches, err := uc.batchRepo.ListOldestFirst(ctx)
	if err != nil {
		return fmt.Errorf("list batches: %w", err)
	}

	for _, b := range batches {
		err = uc.replayer.Replay(ctx, b)
		if err != nil {
			return fmt.Errorf("replay batch %s: %w", b.ID, err)
		}

		run.BatchesReplayed++
	}

	run.Phase = domain.PhaseIdle

	return nil
}

// History returns the most recent reconciliation runs.
func (uc *ReconcileUseCase) History(ctx context.Context, limit int) ([]*domain.ReconciliationRun, error) {
	if limit <= 0 {
		limit = 20
	}

	if limit > 100 {
		limit = 100
	}

	return uc.runRepo.List(ctx, limit)
}
