package domain

import "github.com/shopspring/decimal"

// Amount bounds shared by the batch parser and adjustment validation.
var (
	// MaxAmount is the largest magnitude a single movement may carry.
	MaxAmount = decimal.NewFromInt(1_000_000_000)
	// MinAmount is the most negative value a parsed amount may carry.
	MinAmount = MaxAmount.Neg()
)

// MaxIdentityLength bounds the identity token of a parsed batch line.
const MaxIdentityLength = 50

// MaxDecimalPlaces bounds the precision of a parsed amount.
const MaxDecimalPlaces = 2
