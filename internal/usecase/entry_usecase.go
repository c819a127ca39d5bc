package usecase

import (
	"context"
	"time"

	"github.com/hazim/reckon/internal/domain"
)

// EntryUseCase handles ledger entry queries and manual corrections.
type EntryUseCase struct {
	entryRepo    EntryRepository
	ownerRepo    OwnerRepository
	categoryRepo CategoryRepository
	applier      *ApplierUseCase
	normalizer   *Normalizer
}

// NewEntryUseCase creates a new EntryUseCase.
func NewEntryUseCase(
	entryRepo EntryRepository,
	ownerRepo OwnerRepository,
	categoryRepo CategoryRepository,
	applier *ApplierUseCase,
	normalizer *Normalizer,
) *EntryUseCase {
	return &EntryUseCase{
		entryRepo:    entryRepo,
		ownerRepo:    ownerRepo,
		categoryRepo: categoryRepo,
		applier:      applier,
		normalizer:   normalizer,
	}
}

// CreateCorrection applies a manual correction entry carrying the given
// delta verbatim.
func (uc *EntryUseCase) CreateCorrection(ctx context.Context, input CorrectionInput) (*domain.Entry, error) {
	_, err := uc.ownerRepo.GetByID(ctx, input.OwnerID)
	if err != nil {
		return nil, err
	}

	_, err = uc.categoryRepo.GetByID(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}

	entry := uc.normalizer.FromCorrection(input, time.Now().UTC())

	_, err = uc.applier.Apply(ctx, entry)
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// Delete removes an entry and reverses its amount on the balance.
func (uc *EntryUseCase) Delete(ctx context.Context, id string) error {
	entry, err := uc.entryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return uc.applier.Remove(ctx, entry, false)
}

// Get retrieves an entry by ID.
func (uc *EntryUseCase) Get(ctx context.Context, id string) (*domain.Entry, error) {
	return uc.entryRepo.GetByID(ctx, id)
}

// List returns all entries.
func (uc *EntryUseCase) List(ctx context.Context) ([]*domain.Entry, error) {
	return uc.entryRepo.List(ctx)
}
