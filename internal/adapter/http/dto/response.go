package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hazim/reckon/internal/domain"
)

// BalanceResponse represents a balance in API responses.
type BalanceResponse struct {
	ID         string          `json:"id"`
	OwnerID    string          `json:"owner_id"`
	CategoryID int64           `json:"category_id"`
	Kind       string          `json:"kind"`
	Total      decimal.Decimal `json:"total"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// BalanceFromDomain converts a domain balance to a response.
func BalanceFromDomain(b *domain.Balance) *BalanceResponse {
	return &BalanceResponse{
		ID:         b.ID,
		OwnerID:    b.OwnerID,
		CategoryID: b.CategoryID,
		Kind:       string(b.Kind),
		Total:      b.Total,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

// BalancesFromDomain converts domain balances to responses.
func BalancesFromDomain(balances []*domain.Balance) []*BalanceResponse {
	result := make([]*BalanceResponse, len(balances))
	for i, b := range balances {
		result[i] = BalanceFromDomain(b)
	}
	return result
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID         string          `json:"id"`
	OwnerID    string          `json:"owner_id"`
	CategoryID int64           `json:"category_id"`
	Kind       string          `json:"kind"`
	BalanceID  string          `json:"balance_id"`
	Amount     decimal.Decimal `json:"amount"`
	Origin     string          `json:"origin"`
	BatchID    *string         `json:"batch_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// EntryFromDomain converts a domain entry to a response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:         e.ID,
		OwnerID:    e.OwnerID,
		CategoryID: e.CategoryID,
		Kind:       string(e.Kind),
		BalanceID:  e.BalanceID,
		Amount:     e.Amount,
		Origin:     string(e.Origin),
		BatchID:    e.BatchID,
		CreatedAt:  e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// BatchResponse represents a settlement batch in API responses.
type BatchResponse struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	CategoryID int64     `json:"category_id"`
	Kind       string    `json:"kind"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BatchFromDomain converts a domain batch to a response.
func BatchFromDomain(b *domain.SettlementBatch) *BatchResponse {
	return &BatchResponse{
		ID:         b.ID,
		Text:       b.RawText,
		CategoryID: b.CategoryID,
		Kind:       string(b.Kind),
		Status:     string(b.Status),
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

// BatchesFromDomain converts domain batches to responses.
func BatchesFromDomain(batches []*domain.SettlementBatch) []*BatchResponse {
	result := make([]*BatchResponse, len(batches))
	for i, b := range batches {
		result[i] = BatchFromDomain(b)
	}
	return result
}

// AdjustmentResponse represents an adjustment in API responses.
type AdjustmentResponse struct {
	ID         string          `json:"id"`
	OwnerID    string          `json:"owner_id"`
	CategoryID int64           `json:"category_id"`
	Kind       string          `json:"kind"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// AdjustmentFromDomain converts a domain adjustment to a response.
func AdjustmentFromDomain(a *domain.Adjustment) *AdjustmentResponse {
	return &AdjustmentResponse{
		ID:         a.ID,
		OwnerID:    a.OwnerID,
		CategoryID: a.CategoryID,
		Kind:       string(a.Kind),
		Amount:     a.Amount,
		Status:     string(a.Status),
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

// AdjustmentsFromDomain converts domain adjustments to responses.
func AdjustmentsFromDomain(adjustments []*domain.Adjustment) []*AdjustmentResponse {
	result := make([]*AdjustmentResponse, len(adjustments))
	for i, a := range adjustments {
		result[i] = AdjustmentFromDomain(a)
	}
	return result
}

// RunResponse represents a reconciliation run in API responses.
type RunResponse struct {
	ID                  string    `json:"id"`
	Status              string    `json:"status"`
	Phase               string    `json:"phase"`
	EntriesPurged       int       `json:"entries_purged"`
	BalancesZeroed      int       `json:"balances_zeroed"`
	AdjustmentsReplayed int       `json:"adjustments_replayed"`
	BatchesReplayed     int       `json:"batches_replayed"`
	Error               string    `json:"error,omitempty"`
	StartedAt           time.Time `json:"started_at"`
	FinishedAt          time.Time `json:"finished_at"`
}

// RunFromDomain converts a domain reconciliation run to a response.
func RunFromDomain(r *domain.ReconciliationRun) *RunResponse {
	return &RunResponse{
		ID:                  r.ID,
		Status:              string(r.Status),
		Phase:               string(r.Phase),
		EntriesPurged:       r.EntriesPurged,
		BalancesZeroed:      r.BalancesZeroed,
		AdjustmentsReplayed: r.AdjustmentsReplayed,
		BatchesReplayed:     r.BatchesReplayed,
		Error:               r.Error,
		StartedAt:           r.StartedAt,
		FinishedAt:          r.FinishedAt,
	}
}

// RunsFromDomain converts domain runs to responses.
func RunsFromDomain(runs []*domain.ReconciliationRun) []*RunResponse {
	result := make([]*RunResponse, len(runs))
	for i, r := range runs {
		result[i] = RunFromDomain(r)
	}
	return result
}

// OwnerResponse represents an owner in API responses.
type OwnerResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Identity    string    `json:"identity"`
	CreatedAt   time.Time `json:"created_at"`
}

// OwnerFromDomain converts a domain owner to a response.
func OwnerFromDomain(o *domain.Owner) *OwnerResponse {
	return &OwnerResponse{
		ID:          o.ID,
		Email:       o.Email,
		DisplayName: o.DisplayName,
		Identity:    o.Identity(),
		CreatedAt:   o.CreatedAt,
	}
}

// OwnersFromDomain converts domain owners to responses.
func OwnersFromDomain(owners []*domain.Owner) []*OwnerResponse {
	result := make([]*OwnerResponse, len(owners))
	for i, o := range owners {
		result[i] = OwnerFromDomain(o)
	}
	return result
}

// CategoryResponse represents a category in API responses.
type CategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CategoriesFromDomain converts domain categories to responses.
func CategoriesFromDomain(categories []*domain.Category) []*CategoryResponse {
	result := make([]*CategoryResponse, len(categories))
	for i, c := range categories {
		result[i] = &CategoryResponse{ID: c.ID, Name: c.Name}
	}
	return result
}

// ListBatchesResponse wraps a batch listing.
type ListBatchesResponse struct {
	Batches []*BatchResponse `json:"batches"`
	Total   int64            `json:"total"`
}

// ListBalancesResponse wraps a balance listing.
type ListBalancesResponse struct {
	Balances []*BalanceResponse `json:"balances"`
	Total    int64              `json:"total"`
}

// ListEntriesResponse wraps an entry listing.
type ListEntriesResponse struct {
	Entries []*EntryResponse `json:"entries"`
	Total   int64            `json:"total"`
}

// ListAdjustmentsResponse wraps an adjustment listing.
type ListAdjustmentsResponse struct {
	Adjustments []*AdjustmentResponse `json:"adjustments"`
	Total       int64                 `json:"total"`
}

// ListRunsResponse wraps a reconciliation run listing.
type ListRunsResponse struct {
	Runs  []*RunResponse `json:"runs"`
	Total int64          `json:"total"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
