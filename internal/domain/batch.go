package domain

import "time"

type BatchStatus string

const (
	BatchStatusPending   BatchStatus = "PENDING"
	BatchStatusProcessed BatchStatus = "PROCESSED"
	BatchStatusFailed    BatchStatus = "FAILED"
)

// SettlementBatch is a bulk text submission that owns zero or more derived
// ledger entries. Deleting or updating a batch deletes and regenerates its
// derived entries.
type SettlementBatch struct {
	ID         string
	RawText    string
	CategoryID int64
	Kind       AccountKind
	Status     BatchStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks the batch has everything needed for processing.
func (b *SettlementBatch) Validate() error {
	switch {
	case b.RawText == "":
		return &ValidationError{Field: "raw_text", Reason: "required"}
	case b.CategoryID == 0:
		return &ValidationError{Field: "category_id", Reason: "required"}
	case !b.Kind.Valid():
		return &ValidationError{Field: "kind", Reason: "must be primary or secondary"}
	}

	return nil
}
