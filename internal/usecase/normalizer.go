package usecase

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hazim/reckon/internal/batch"
	"github.com/hazim/reckon/internal/domain"
)

// Normalizer converts parsed batch lines, adjustments, and manual
// corrections into signed ledger entries. An entry's amount is the delta
// added to the balance total: positive parsed amounts settle debt, so
// they become negative deltas.
type Normalizer struct {
	idGen IDGenerator
}

// NewNormalizer creates a new Normalizer.
func NewNormalizer(idGen IDGenerator) *Normalizer {
	return &Normalizer{idGen: idGen}
}

// FromBatchLine builds an entry for one parsed settlement line resolved to
// an owner.
func (n *Normalizer) FromBatchLine(line batch.ParsedLine, owner *domain.Owner, b *domain.SettlementBatch, now time.Time) *domain.Entry {
	return &domain.Entry{
		ID:         n.idGen.Generate(),
		OwnerID:    owner.ID,
		CategoryID: b.CategoryID,
		Kind:       b.Kind,
		Amount:     domain.DeltaForParsedAmount(line.Amount),
		Origin:     domain.OriginBatch,
		BatchID:    &b.ID,
		CreatedAt:  now,
	}
}

// FromAdjustment builds an entry for an approved adjustment. Adjustments
// always debit the balance regardless of the sign they were entered with.
func (n *Normalizer) FromAdjustment(adj *domain.Adjustment, now time.Time) *domain.Entry {
	return &domain.Entry{
		ID:         n.idGen.Generate(),
		OwnerID:    adj.OwnerID,
		CategoryID: adj.CategoryID,
		Kind:       adj.Kind,
		Amount:     domain.DeltaForAdjustment(adj.Amount),
		Origin:     domain.OriginAdjustment,
		CreatedAt:  now,
	}
}

// CorrectionInput represents a manual correction entered by an operator.
type CorrectionInput struct {
	OwnerID    string
	CategoryID int64
	Kind       domain.AccountKind
	Amount     decimal.Decimal
}

// FromCorrection builds an entry carrying the correction delta verbatim.
func (n *Normalizer) FromCorrection(input CorrectionInput, now time.Time) *domain.Entry {
	return &domain.Entry{
		ID:         n.idGen.Generate(),
		OwnerID:    input.OwnerID,
		CategoryID: input.CategoryID,
		Kind:       input.Kind,
		Amount:     input.Amount,
		Origin:     domain.OriginCorrection,
		CreatedAt:  now,
	}
}
