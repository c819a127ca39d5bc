package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"

	"github.com/hazim/reckon/internal/domain"
)

// BalanceUseCase handles balance business logic.
type BalanceUseCase struct {
	balanceRepo BalanceRepository
	idGen       IDGenerator
	tracker     Tracker
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(balanceRepo BalanceRepository, idGen IDGenerator, tracker Tracker) *BalanceUseCase {
	return &BalanceUseCase{
		balanceRepo: balanceRepo,
		idGen:       idGen,
		tracker:     tracker,
	}
}

// GetOrCreate returns the balance for the key, creating a zero-total row if
// none exists. A lost create race is resolved by re-fetching the winner's
// row with a short backoff.
func (uc *BalanceUseCase) GetOrCreate(ctx context.Context, key domain.BalanceKey) (*domain.Balance, error) {
	balance, err := uc.balanceRepo.GetByKey(ctx, key)
	if err == nil {
		return balance, nil
	}

	if !errors.Is(err, domain.ErrBalanceNotFound) {
		return nil, err
	}

	if !key.Kind.Valid() {
		return nil, &domain.ValidationError{Field: "kind", Reason: "unknown account kind"}
	}

	now := time.Now().UTC()
	balance = &domain.Balance{
		ID:         uc.idGen.Generate(),
		OwnerID:    key.OwnerID,
		CategoryID: key.CategoryID,
		Kind:       key.Kind,
		Total:      decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	uc.tracker.Track(balance.ID, domain.EventInsert)

	err = uc.balanceRepo.Create(ctx, balance)
	if err == nil {
		return balance, nil
	}

	if !errors.Is(err, domain.ErrBalanceExists) {
		return nil, err
	}

	// Another writer created the row first. Its insert may not be visible
	// immediately, so retry the fetch briefly.
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4), ctx)

	return backoff.RetryWithData(func() (*domain.Balance, error) {
		return uc.balanceRepo.GetByKey(ctx, key)
	}, bo)
}

// Get retrieves a balance by ID.
func (uc *BalanceUseCase) Get(ctx context.Context, id string) (*domain.Balance, error) {
	return uc.balanceRepo.GetByID(ctx, id)
}

// List returns all balances.
func (uc *BalanceUseCase) List(ctx context.Context) ([]*domain.Balance, error) {
	return uc.balanceRepo.List(ctx)
}

// ResetAll zeroes every balance total and returns the number of rows
// touched. Echo suppression is registered per row before the bulk write.
func (uc *BalanceUseCase) ResetAll(ctx context.Context) (int, error) {
	balances, err := uc.balanceRepo.List(ctx)
	if err != nil {
		return 0, err
	}

	for _, b := range balances {
		uc.tracker.Track(b.ID, domain.EventUpdate)
	}

	return uc.balanceRepo.ResetAll(ctx, time.Now().UTC())
}
