package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEntry() *Entry {
	batchID := "bat-1"

	return &Entry{
		ID:         "ent-1",
		OwnerID:    "o-1",
		CategoryID: 1,
		Kind:       KindPrimary,
		BalanceID:  "bal-1",
		Amount:     decimal.NewFromInt(-10),
		Origin:     OriginBatch,
		BatchID:    &batchID,
	}
}

func TestEntry_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Entry)
		field  string
	}{
		{"missing owner", func(e *Entry) { e.OwnerID = "" }, "owner_id"},
		{"missing category", func(e *Entry) { e.CategoryID = 0 }, "category_id"},
		{"unknown kind", func(e *Entry) { e.Kind = "tertiary" }, "kind"},
		{"zero amount", func(e *Entry) { e.Amount = decimal.Zero }, "amount"},
		{"unknown origin", func(e *Entry) { e.Origin = "IMPORT" }, "origin"},
		{"batch entry without batch id", func(e *Entry) { e.BatchID = nil }, "batch_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEntry()
			tt.mutate(e)

			err := e.Validate()
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validEntry().Validate())
	})

	t.Run("non-batch origin needs no batch id", func(t *testing.T) {
		e := validEntry()
		e.Origin = OriginCorrection
		e.BatchID = nil

		assert.NoError(t, e.Validate())
	})
}

func TestEntry_IsDebit(t *testing.T) {
	e := validEntry()
	assert.True(t, e.IsDebit())

	e.Amount = decimal.NewFromInt(4)
	assert.False(t, e.IsDebit())
}

func TestDeltaForParsedAmount(t *testing.T) {
	// A positive parsed amount is an obligation, so it debits.
	assert.True(t, DeltaForParsedAmount(decimal.NewFromInt(10)).Equal(decimal.NewFromInt(-10)))
	// A negative parsed amount is a payment, so it credits.
	assert.True(t, DeltaForParsedAmount(decimal.NewFromInt(-4)).Equal(decimal.NewFromInt(4)))
}

func TestDeltaForAdjustment(t *testing.T) {
	// Adjustments debit by magnitude regardless of input sign.
	assert.True(t, DeltaForAdjustment(decimal.NewFromInt(3)).Equal(decimal.NewFromInt(-3)))
	assert.True(t, DeltaForAdjustment(decimal.NewFromInt(-3)).Equal(decimal.NewFromInt(-3)))
}
