// Package dto carries the request and response shapes of the HTTP API.
package dto

import (
	"github.com/shopspring/decimal"

	"github.com/hazim/reckon/internal/domain"
	"github.com/hazim/reckon/internal/usecase"
)

// SubmitBatchRequest represents a request to submit a settlement batch.
type SubmitBatchRequest struct {
	Text       string `json:"text"`
	CategoryID int64  `json:"category_id"`
	Kind       string `json:"kind"`
}

// ToUseCaseInput converts to use case input.
func (r *SubmitBatchRequest) ToUseCaseInput() usecase.SubmitBatchInput {
	return usecase.SubmitBatchInput{
		RawText:    r.Text,
		CategoryID: r.CategoryID,
		Kind:       domain.AccountKind(r.Kind),
	}
}

// UpdateBatchRequest represents a request to replace a batch's text.
type UpdateBatchRequest struct {
	Text string `json:"text"`
}

// CreateAdjustmentRequest represents a request to record a pending
// adjustment.
type CreateAdjustmentRequest struct {
	OwnerID    string          `json:"owner_id"`
	CategoryID int64           `json:"category_id"`
	Kind       string          `json:"kind"`
	Amount     decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAdjustmentRequest) ToUseCaseInput() usecase.CreateAdjustmentInput {
	return usecase.CreateAdjustmentInput{
		OwnerID:    r.OwnerID,
		CategoryID: r.CategoryID,
		Kind:       domain.AccountKind(r.Kind),
		Amount:     r.Amount,
	}
}

// CreateCorrectionRequest represents a request to post a manual correction
// entry. The amount is applied to the balance exactly as given.
type CreateCorrectionRequest struct {
	OwnerID    string          `json:"owner_id"`
	CategoryID int64           `json:"category_id"`
	Kind       string          `json:"kind"`
	Amount     decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateCorrectionRequest) ToUseCaseInput() usecase.CorrectionInput {
	return usecase.CorrectionInput{
		OwnerID:    r.OwnerID,
		CategoryID: r.CategoryID,
		Kind:       domain.AccountKind(r.Kind),
		Amount:     r.Amount,
	}
}
