package domain

import "encoding/json"

// EventType is the operation a change-feed notification describes.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Logical table names used by the change feed.
const (
	TableBalances    = "balances"
	TableEntries     = "ledger_entries"
	TableBatches     = "settlement_batches"
	TableAdjustments = "adjustments"
)

// ChangeEvent is one push notification from the store's change feed.
// Delivery is at-least-once with no ordering guarantee relative to the write
// that caused it. For DELETE events only Old is populated.
type ChangeEvent struct {
	Table    string          `json:"table"`
	Type     EventType       `json:"type"`
	EntityID string          `json:"entity_id"`
	New      json.RawMessage `json:"new,omitempty"`
	Old      json.RawMessage `json:"old,omitempty"`
}
