package domain

import (
	"strings"
	"time"
)

// Owner is the person a balance or entry belongs to. Owners are resolved
// externally and never created by this engine.
type Owner struct {
	ID          string
	Email       string
	DisplayName string
	CreatedAt   time.Time
}

// Identity returns the free-text token an owner is matched by in settlement
// batches: the lowercased local part of the email address.
func (o *Owner) Identity() string {
	local, _, _ := strings.Cut(o.Email, "@")
	return strings.ToLower(local)
}

// Category partitions balances and entries into independent ledgers.
// Immutable once referenced by an entry.
type Category struct {
	ID   int64
	Name string
}
