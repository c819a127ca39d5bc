package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hazim/reckon/internal/domain"
)

// AdjustmentUseCase handles adjustment business logic.
type AdjustmentUseCase struct {
	adjustmentRepo AdjustmentRepository
	ownerRepo      OwnerRepository
	categoryRepo   CategoryRepository
	applier        *ApplierUseCase
	normalizer     *Normalizer
	tracker        Tracker
	idGen          IDGenerator
}

// NewAdjustmentUseCase creates a new AdjustmentUseCase.
func NewAdjustmentUseCase(
	adjustmentRepo AdjustmentRepository,
	ownerRepo OwnerRepository,
	categoryRepo CategoryRepository,
	applier *ApplierUseCase,
	normalizer *Normalizer,
	tracker Tracker,
	idGen IDGenerator,
) *AdjustmentUseCase {
	return &AdjustmentUseCase{
		adjustmentRepo: adjustmentRepo,
		ownerRepo:      ownerRepo,
		categoryRepo:   categoryRepo,
		applier:        applier,
		normalizer:     normalizer,
		tracker:        tracker,
		idGen:          idGen,
	}
}

// CreateAdjustmentInput represents input for creating an adjustment.
type CreateAdjustmentInput struct {
	OwnerID    string
	CategoryID int64
	Kind       domain.AccountKind
	Amount     decimal.Decimal
}

// Create records a pending adjustment. No balance moves until it is
// approved.
func (uc *AdjustmentUseCase) Create(ctx context.Context, input CreateAdjustmentInput) (*domain.Adjustment, error) {
	_, err := uc.ownerRepo.GetByID(ctx, input.OwnerID)
	if err != nil {
		return nil, err
	}

	_, err = uc.categoryRepo.GetByID(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	adj := &domain.Adjustment{
		ID:         uc.idGen.Generate(),
		OwnerID:    input.OwnerID,
		CategoryID: input.CategoryID,
		Kind:       input.Kind,
		Amount:     input.Amount,
		Status:     domain.AdjustmentStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = adj.Validate()
	if err != nil {
		return nil, err
	}

	uc.tracker.Track(adj.ID, domain.EventInsert)

	err = uc.adjustmentRepo.Create(ctx, adj)
	if err != nil {
		return nil, err
	}

	return adj, nil
}

// Approve marks a pending adjustment approved and applies its debit to the
// owner's balance.
func (uc *AdjustmentUseCase) Approve(ctx context.Context, id string) (*domain.Adjustment, error) {
	adj, err := uc.adjustmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if adj.Status != domain.AdjustmentStatusPending {
		return nil, domain.ErrAdjustmentNotPending
	}

	now := time.Now().UTC()

	uc.tracker.Track(adj.ID, domain.EventUpdate)

	err = uc.adjustmentRepo.UpdateStatus(ctx, adj.ID, domain.AdjustmentStatusApproved, now)
	if err != nil {
		return nil, err
	}

	adj.Status = domain.AdjustmentStatusApproved
	adj.UpdatedAt = now

	entry := uc.normalizer.FromAdjustment(adj, now)

	_, err = uc.applier.Apply(ctx, entry)
	if err != nil {
		return adj, err
	}

	return adj, nil
}

// Reject marks a pending adjustment rejected. Rejected adjustments never
// touch balances.
func (uc *AdjustmentUseCase) Reject(ctx context.Context, id string) (*domain.Adjustment, error) {
	adj, err := uc.adjustmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if adj.Status != domain.AdjustmentStatusPending {
		return nil, domain.ErrAdjustmentNotPending
	}

	now := time.Now().UTC()

	uc.tracker.Track(adj.ID, domain.EventUpdate)

	err = uc.adjustmentRepo.UpdateStatus(ctx, adj.ID, domain.AdjustmentStatusRejected, now)
	if err != nil {
		return nil, err
	}

	adj.Status = domain.AdjustmentStatusRejected
	adj.UpdatedAt = now

	return adj, nil
}

// Get retrieves an adjustment by ID.
func (uc *AdjustmentUseCase) Get(ctx context.Context, id string) (*domain.Adjustment, error) {
	return uc.adjustmentRepo.GetByID(ctx, id)
}

// List returns all adjustments.
func (uc *AdjustmentUseCase) List(ctx context.Context) ([]*domain.Adjustment, error) {
	return uc.adjustmentRepo.List(ctx)
}
