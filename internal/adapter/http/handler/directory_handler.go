package handler

import (
	"context"
	"net/http"

	"github.com/hazim/reckon/internal/adapter/http/dto"
	"github.com/hazim/reckon/internal/domain"
)

// OwnerLister lists known owners.
type OwnerLister interface {
	List(ctx context.Context) ([]*domain.Owner, error)
}

// CategoryLister lists categories.
type CategoryLister interface {
	List(ctx context.Context) ([]*domain.Category, error)
}

// DirectoryHandler serves the read-only owner and category directory.
type DirectoryHandler struct {
	owners     OwnerLister
	categories CategoryLister
}

// NewDirectoryHandler creates a new DirectoryHandler.
func NewDirectoryHandler(owners OwnerLister, categories CategoryLister) *DirectoryHandler {
	return &DirectoryHandler{owners: owners, categories: categories}
}

// ListOwners lists all known owners.
func (h *DirectoryHandler) ListOwners(w http.ResponseWriter, r *http.Request) {
	owners, err := h.owners.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list owners", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.OwnersFromDomain(owners))
}

// ListCategories lists all categories.
func (h *DirectoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list categories", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CategoriesFromDomain(categories))
}
