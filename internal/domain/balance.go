package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind selects one of the two parallel balance types tracked per
// owner and category.
type AccountKind string

const (
	KindPrimary   AccountKind = "primary"
	KindSecondary AccountKind = "secondary"
)

// Valid reports whether k is a known account kind.
func (k AccountKind) Valid() bool {
	return k == KindPrimary || k == KindSecondary
}

// BalanceKey identifies exactly one balance row.
type BalanceKey struct {
	OwnerID    string
	CategoryID int64
	Kind       AccountKind
}

// Balance is a running total for one (owner, category, kind) key. Totals are
// only ever changed by the ledger applier; the stored total equals the sum of
// the signed amounts of all entries sharing the key once no operation is in
// flight.
type Balance struct {
	ID         string
	OwnerID    string
	CategoryID int64
	Kind       AccountKind
	Total      decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Key returns the unique key of the balance.
func (b *Balance) Key() BalanceKey {
	return BalanceKey{OwnerID: b.OwnerID, CategoryID: b.CategoryID, Kind: b.Kind}
}
