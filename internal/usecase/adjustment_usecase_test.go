package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/hazim/reckon/internal/domain"
	"github.com/hazim/reckon/internal/usecase"
	"github.com/hazim/reckon/internal/usecase/mocks"
)

type adjustmentMocks struct {
	adjustmentRepo *mocks.MockAdjustmentRepository
	ownerRepo      *mocks.MockOwnerRepository
	categoryRepo   *mocks.MockCategoryRepository
	balanceRepo    *mocks.MockBalanceRepository
	entryRepo      *mocks.MockEntryRepository
	tracker        *mocks.MockTracker
	alerter        *mocks.MockAlerter
	idGen          *mocks.MockIDGenerator
	uc             *usecase.AdjustmentUseCase
}

func newAdjustmentMocks(ctrl *gomock.Controller) *adjustmentMocks {
	m := &adjustmentMocks{
		adjustmentRepo: mocks.NewMockAdjustmentRepository(ctrl),
		ownerRepo:      mocks.NewMockOwnerRepository(ctrl),
		categoryRepo:   mocks.NewMockCategoryRepository(ctrl),
		balanceRepo:    mocks.NewMockBalanceRepository(ctrl),
		entryRepo:      mocks.NewMockEntryRepository(ctrl),
		tracker:        mocks.NewMockTracker(ctrl),
		alerter:        mocks.NewMockAlerter(ctrl),
		idGen:          mocks.NewMockIDGenerator(ctrl),
	}

	balances := usecase.NewBalanceUseCase(m.balanceRepo, m.idGen, m.tracker)
	applier := usecase.NewApplierUseCase(balances, m.balanceRepo, m.entryRepo, m.tracker, m.tracker, m.alerter, m.idGen)

	m.uc = usecase.NewAdjustmentUseCase(
		m.adjustmentRepo,
		m.ownerRepo,
		m.categoryRepo,
		applier,
		usecase.NewNormalizer(m.idGen),
		m.tracker,
		m.idGen,
	)

	return m
}

func TestAdjustmentUseCase_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newAdjustmentMocks(ctrl)

	m.ownerRepo.EXPECT().GetByID(gomock.Any(), "o-1").Return(&domain.Owner{ID: "o-1"}, nil)
	m.categoryRepo.EXPECT().GetByID(gomock.Any(), int64(1)).Return(&domain.Category{ID: 1}, nil)
	m.idGen.EXPECT().Generate().Return("adj-1")
	m.tracker.EXPECT().Track("adj-1", domain.EventInsert)
	m.adjustmentRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	adj, err := m.uc.Create(context.Background(), usecase.CreateAdjustmentInput{
		OwnerID:    "o-1",
		CategoryID: 1,
		Kind:       domain.KindPrimary,
		Amount:     decimal.NewFromInt(25),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.AdjustmentStatusPending, adj.Status)
	assert.Equal(t, "adj-1", adj.ID)
}

func TestAdjustmentUseCase_CreateRejectsNonPositiveAmount(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newAdjustmentMocks(ctrl)

	m.ownerRepo.EXPECT().GetByID(gomock.Any(), "o-1").Return(&domain.Owner{ID: "o-1"}, nil)
	m.categoryRepo.EXPECT().GetByID(gomock.Any(), int64(1)).Return(&domain.Category{ID: 1}, nil)
	m.idGen.EXPECT().Generate().Return("adj-1")

	_, err := m.uc.Create(context.Background(), usecase.CreateAdjustmentInput{
		OwnerID:    "o-1",
		CategoryID: 1,
		Kind:       domain.KindPrimary,
		Amount:     decimal.Zero,
	})

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestAdjustmentUseCase_ApproveAppliesDebit(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newAdjustmentMocks(ctrl)

	adj := &domain.Adjustment{
		ID:         "adj-1",
		OwnerID:    "o-1",
		CategoryID: 1,
		Kind:       domain.KindPrimary,
		Amount:     decimal.NewFromInt(3),
		Status:     domain.AdjustmentStatusPending,
	}
	balance := &domain.Balance{
		ID:         "bal-1",
		OwnerID:    "o-1",
		CategoryID: 1,
		Kind:       domain.KindPrimary,
		Total:      decimal.NewFromInt(10),
	}

	m.adjustmentRepo.EXPECT().GetByID(gomock.Any(), "adj-1").Return(adj, nil)
	m.tracker.EXPECT().Track("adj-1", domain.EventUpdate)
	m.adjustmentRepo.EXPECT().UpdateStatus(gomock.Any(), "adj-1", domain.AdjustmentStatusApproved, gomock.Any()).Return(nil)

	m.idGen.EXPECT().Generate().Return("entry-1")
	m.balanceRepo.EXPECT().GetByKey(gomock.Any(), balance.Key()).Return(balance, nil)
	m.tracker.EXPECT().Track("bal-1", domain.EventUpdate)
	m.tracker.EXPECT().Track("entry-1", domain.EventInsert)

	// An approved adjustment of 3 debits the balance: 10 becomes 7.
	m.balanceRepo.EXPECT().
		UpdateTotal(gomock.Any(), "bal-1", gomock.Cond(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(7)) }), gomock.Any()).
		Return(nil)
	m.entryRepo.EXPECT().Create(gomock.Any(), gomock.Cond(func(e *domain.Entry) bool {
		return e.Origin == domain.OriginAdjustment && e.Amount.Equal(decimal.NewFromInt(-3))
	})).Return(nil)

	approved, err := m.uc.Approve(context.Background(), "adj-1")

	require.NoError(t, err)
	assert.Equal(t, domain.AdjustmentStatusApproved, approved.Status)
}

func TestAdjustmentUseCase_ApproveRequiresPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newAdjustmentMocks(ctrl)

	m.adjustmentRepo.EXPECT().GetByID(gomock.Any(), "adj-1").Return(&domain.Adjustment{
		ID:     "adj-1",
		Status: domain.AdjustmentStatusRejected,
	}, nil)

	_, err := m.uc.Approve(context.Background(), "adj-1")

	require.ErrorIs(t, err, domain.ErrAdjustmentNotPending)
}

func TestAdjustmentUseCase_Reject(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newAdjustmentMocks(ctrl)

	m.adjustmentRepo.EXPECT().GetByID(gomock.Any(), "adj-1").Return(&domain.Adjustment{
		ID:        "adj-1",
		Status:    domain.AdjustmentStatusPending,
		CreatedAt: time.Now().UTC(),
	}, nil)
	m.tracker.EXPECT().Track("adj-1", domain.EventUpdate)
	m.adjustmentRepo.EXPECT().UpdateStatus(gomock.Any(), "adj-1", domain.AdjustmentStatusRejected, gomock.Any()).Return(nil)

	rejected, err := m.uc.Reject(context.Background(), "adj-1")

	require.NoError(t, err)
	assert.Equal(t, domain.AdjustmentStatusRejected, rejected.Status)
}
