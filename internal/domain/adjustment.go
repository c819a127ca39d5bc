package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AdjustmentStatus string

const (
	AdjustmentStatusPending  AdjustmentStatus = "PENDING"
	AdjustmentStatusApproved AdjustmentStatus = "APPROVED"
	AdjustmentStatusRejected AdjustmentStatus = "REJECTED"
)

// Adjustment is an individually approved obligation against one owner.
// Approval converts it into a single debit entry; until then it has no
// effect on any balance.
type Adjustment struct {
	ID         string
	OwnerID    string
	CategoryID int64
	Kind       AccountKind
	Amount     decimal.Decimal
	Status     AdjustmentStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks the adjustment is fit for approval.
func (a *Adjustment) Validate() error {
	switch {
	case a.Amount.LessThanOrEqual(decimal.Zero):
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	case a.Amount.GreaterThan(MaxAmount):
		return &ValidationError{Field: "amount", Reason: "exceeds maximum"}
	case a.OwnerID == "":
		return &ValidationError{Field: "owner_id", Reason: "required"}
	case a.CategoryID == 0:
		return &ValidationError{Field: "category_id", Reason: "required"}
	case !a.Kind.Valid():
		return &ValidationError{Field: "kind", Reason: "must be primary or secondary"}
	}

	return nil
}
