package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Origin identifies which kind of source event produced a ledger entry.
type Origin string

const (
	OriginAdjustment Origin = "ADJUSTMENT"
	OriginBatch      Origin = "BATCH"
	OriginCorrection Origin = "CORRECTION"
)

// Entry is one immutable signed movement applied to a balance. Amount is the
// signed delta added to the balance total: negative for a debit (the owner
// owes more), positive for a credit. Entries are never edited; corrections
// are new entries.
type Entry struct {
	ID         string
	OwnerID    string
	CategoryID int64
	Kind       AccountKind
	BalanceID  string
	Amount     decimal.Decimal
	Origin     Origin
	BatchID    *string
	CreatedAt  time.Time
}

// IsDebit reports whether the entry reduces the balance.
func (e *Entry) IsDebit() bool {
	return e.Amount.IsNegative()
}

// Validate checks that the entry carries every required field.
func (e *Entry) Validate() error {
	switch {
	case e.OwnerID == "":
		return &ValidationError{Field: "owner_id", Reason: "required"}
	case e.CategoryID == 0:
		return &ValidationError{Field: "category_id", Reason: "required"}
	case !e.Kind.Valid():
		return &ValidationError{Field: "kind", Reason: "must be primary or secondary"}
	case e.Amount.IsZero():
		return &ValidationError{Field: "amount", Reason: "cannot be zero"}
	case e.Origin != OriginAdjustment && e.Origin != OriginBatch && e.Origin != OriginCorrection:
		return &ValidationError{Field: "origin", Reason: "unknown origin"}
	case e.Origin == OriginBatch && e.BatchID == nil:
		return &ValidationError{Field: "batch_id", Reason: "required for batch entries"}
	}

	return nil
}

// DeltaForParsedAmount converts a parsed batch amount into the signed delta
// applied to a balance. A positive parsed amount means the owner owes the
// operator, a debit, so the delta is the negation.
func DeltaForParsedAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Neg()
}

// DeltaForAdjustment converts an approved adjustment amount into its signed
// delta. An adjustment always represents something the owner paid or
// consumed, so it always debits by the stated magnitude regardless of the
// sign of the raw input.
func DeltaForAdjustment(amount decimal.Decimal) decimal.Decimal {
	return amount.Abs().Neg()
}
