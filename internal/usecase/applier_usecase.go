package usecase

import (
	"context"
	"time"

	"github.com/hazim/reckon/internal/domain"
)

// ApplierUseCase applies signed ledger entries to balances. The store is a
// plain request/response API without transactions, so a write that fails
// after an earlier write committed is surfaced as a
// domain.PartialApplicationError and raised to the operator.
type ApplierUseCase struct {
	balances       *BalanceUseCase
	balanceRepo    BalanceRepository
	entryRepo      EntryRepository
	balanceTracker Tracker
	entryTracker   Tracker
	alerter        Alerter
	idGen          IDGenerator
}

// NewApplierUseCase creates a new ApplierUseCase.
func NewApplierUseCase(
	balances *BalanceUseCase,
	balanceRepo BalanceRepository,
	entryRepo EntryRepository,
	balanceTracker Tracker,
	entryTracker Tracker,
	alerter Alerter,
	idGen IDGenerator,
) *ApplierUseCase {
	return &ApplierUseCase{
		balances:       balances,
		balanceRepo:    balanceRepo,
		entryRepo:      entryRepo,
		balanceTracker: balanceTracker,
		entryTracker:   entryTracker,
		alerter:        alerter,
		idGen:          idGen,
	}
}

// Apply adds the entry's amount to its balance, creating the balance row
// when none exists, then persists the entry. Restored entries keep their
// original ID and timestamp; fresh entries get them assigned here.
func (uc *ApplierUseCase) Apply(ctx context.Context, entry *domain.Entry) (*domain.Balance, error) {
	if entry.ID == "" {
		entry.ID = uc.idGen.Generate()
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	balance, err := uc.balances.GetOrCreate(ctx, domain.BalanceKey{
		OwnerID:    entry.OwnerID,
		CategoryID: entry.CategoryID,
		Kind:       entry.Kind,
	})
	if err != nil {
		return nil, err
	}

	entry.BalanceID = balance.ID

	err = entry.Validate()
	if err != nil {
		return nil, err
	}

	newTotal := balance.Total.Add(entry.Amount)

	// Register both own writes before touching the store so the change
	// feed consumer never sees an untracked echo.
	uc.balanceTracker.Track(balance.ID, domain.EventUpdate)
	uc.entryTracker.Track(entry.ID, domain.EventInsert)

	err = uc.balanceRepo.UpdateTotal(ctx, balance.ID, newTotal, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	err = uc.entryRepo.Create(ctx, entry)
	if err != nil {
		// The balance already moved but the entry that explains the move
		// was not written.
		uc.alerter.Alert(ctx, "critical", "entry write failed after balance update", map[string]string{
			"balance_id": balance.ID,
			"entry_id":   entry.ID,
		})

		return nil, &domain.PartialApplicationError{Op: "create entry", BalanceID: balance.ID, Err: err}
	}

	balance.Total = newTotal

	return balance, nil
}

// Remove deletes the entry and reverses its amount on the balance.
// skipBalanceUpdate leaves the balance untouched, used when the caller is
// about to zero all balances anyway.
func (uc *ApplierUseCase) Remove(ctx context.Context, entry *domain.Entry, skipBalanceUpdate bool) error {
	uc.entryTracker.Track(entry.ID, domain.EventDelete)

	if !skipBalanceUpdate {
		uc.balanceTracker.Track(entry.BalanceID, domain.EventUpdate)
	}

	err := uc.entryRepo.Delete(ctx, entry.ID)
	if err != nil {
		return err
	}

	if skipBalanceUpdate {
		return nil
	}

	balance, err := uc.balanceRepo.GetByID(ctx, entry.BalanceID)
	if err == nil {
		err = uc.balanceRepo.UpdateTotal(ctx, balance.ID, balance.Total.Sub(entry.Amount), time.Now().UTC())
	}

	if err != nil {
		// The entry is gone but its amount is still reflected in the
		// balance total.
		uc.alerter.Alert(ctx, "critical", "balance reversal failed after entry delete", map[string]string{
			"balance_id": entry.BalanceID,
			"entry_id":   entry.ID,
		})

		return &domain.PartialApplicationError{Op: "reverse balance", BalanceID: entry.BalanceID, Err: err}
	}

	return nil
}
