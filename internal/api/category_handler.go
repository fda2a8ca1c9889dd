package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medipro-api/internal/domain"
	"medipro-api/internal/store"
)

// CategoryInput defines the input for creating or updating a category.
type CategoryInput struct {
	Name         string     `json:"name" validate:"required,max=255"`
	Slug         string     `json:"slug" validate:"required,max=255"`
	Description  *string    `json:"description" validate:"omitempty"`
	ParentID     *uuid.UUID `json:"parent_id"`
	Icon         *string    `json:"icon" validate:"omitempty,max=255"`
	Image        *string    `json:"image" validate:"omitempty,max=2048"`
	Color        *string    `json:"color" validate:"omitempty,max=32"`
	DisplayOrder int        `json:"display_order" validate:"gte=0"`
	IsActive     *bool      `json:"is_active"`
	IsFeatured   bool       `json:"is_featured"`
}

func (in *CategoryInput) toDomain() *domain.Category {
	isActive := true
	if in.IsActive != nil {
		isActive = *in.IsActive
	}
	return &domain.Category{
		Name:         in.Name,
		Slug:         in.Slug,
		Description:  in.Description,
		ParentID:     in.ParentID,
		Icon:         in.Icon,
		Image:        in.Image,
		Color:        in.Color,
		DisplayOrder: in.DisplayOrder,
		IsActive:     isActive,
		IsFeatured:   in.IsFeatured,
	}
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	created, err := h.categories.CreateCategory(r.Context(), input.toDomain())
	if err != nil {
		switch {
		case errors.Is(err, store.ErrSlugExists):
			respondWithError(w, http.StatusConflict, "Category slug already in use")
		case errors.Is(err, store.ErrNameExists):
			respondWithError(w, http.StatusConflict, "Category name already in use")
		case errors.Is(err, store.ErrParentNotFound):
			respondWithError(w, http.StatusBadRequest, "Parent category does not exist")
		default:
			h.log.WithError(err).Error("CreateCategory: store operation failed")
			respondWithError(w, http.StatusInternalServerError, "Failed to create category")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	params := store.ListCategoriesParams{
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
		IsActive:   parseBoolQuery(r, "is_active"),
		IsFeatured: parseBoolQuery(r, "is_featured"),
	}
	if q := r.URL.Query().Get("q"); q != "" {
		params.SearchQuery = &q
	}
	if raw := r.URL.Query().Get("parent_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid parent_id format")
			return
		}
		params.ParentID = &id
	}

	categories, total, err := h.categories.ListCategories(r.Context(), params)
	if err != nil {
		h.log.WithError(err).Error("ListCategories: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve categories")
		return
	}

	respondWithJSON(w, http.StatusOK, domain.NewPage(categories, total, page, pageSize))
}

// CategoryTree returns the active categories as a nested hierarchy.
func (h *Handler) CategoryTree(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.ListActiveCategories(r.Context())
	if err != nil {
		h.log.WithError(err).Error("CategoryTree: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve category tree")
		return
	}

	respondWithJSON(w, http.StatusOK, store.BuildCategoryTree(categories))
}

// MainCategories returns the active root categories.
func (h *Handler) MainCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.ListMainCategories(r.Context())
	if err != nil {
		h.log.WithError(err).Error("MainCategories: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve categories")
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}

	respondWithJSON(w, http.StatusOK, categories)
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(r, "categoryID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid category ID format")
		return
	}

	category, err := h.categories.GetCategoryByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrCategoryNotFound) {
			respondWithError(w, http.StatusNotFound, "Category not found")
			return
		}
		h.log.WithError(err).Error("GetCategory: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve category")
		return
	}

	respondWithJSON(w, http.StatusOK, category)
}

func (h *Handler) GetCategoryBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	category, err := h.categories.GetCategoryBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, store.ErrCategoryNotFound) {
			respondWithError(w, http.StatusNotFound, "Category not found")
			return
		}
		h.log.WithError(err).Error("GetCategoryBySlug: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve category")
		return
	}

	respondWithJSON(w, http.StatusOK, category)
}

// CheckCategorySlug reports whether a slug is free to use, optionally
// ignoring one category when renaming.
func (h *Handler) CheckCategorySlug(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("slug")
	if slug == "" {
		respondWithError(w, http.StatusBadRequest, "Missing slug parameter")
		return
	}

	var excludeID *uuid.UUID
	if raw := r.URL.Query().Get("exclude_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid exclude_id format")
			return
		}
		excludeID = &id
	}

	available, err := h.categories.IsSlugAvailable(r.Context(), slug, excludeID)
	if err != nil {
		h.log.WithError(err).Error("CheckCategorySlug: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to check slug")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"available": available})
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(r, "categoryID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid category ID format")
		return
	}

	var input CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	category := input.toDomain()
	category.ID = id

	updated, err := h.categories.UpdateCategory(r.Context(), category)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrCategoryNotFound):
			respondWithError(w, http.StatusNotFound, "Category not found")
		case errors.Is(err, store.ErrSelfParent):
			respondWithError(w, http.StatusBadRequest, "Category cannot be its own parent")
		case errors.Is(err, store.ErrParentNotFound):
			respondWithError(w, http.StatusBadRequest, "Parent category does not exist")
		case errors.Is(err, store.ErrSlugExists):
			respondWithError(w, http.StatusConflict, "Category slug already in use")
		case errors.Is(err, store.ErrNameExists):
			respondWithError(w, http.StatusConflict, "Category name already in use")
		default:
			h.log.WithError(err).Error("UpdateCategory: store operation failed")
			respondWithError(w, http.StatusInternalServerError, "Failed to update category")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(r, "categoryID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid category ID format")
		return
	}

	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	if err := h.categories.DeleteCategory(r.Context(), id, force); err != nil {
		switch {
		case errors.Is(err, store.ErrCategoryNotFound):
			respondWithError(w, http.StatusNotFound, "Category not found")
		case errors.Is(err, store.ErrCategoryInUse):
			respondWithError(w, http.StatusBadRequest, "Category still has products or subcategories")
		default:
			h.log.WithError(err).Error("DeleteCategory: store operation failed")
			respondWithError(w, http.StatusInternalServerError, "Failed to delete category")
		}
		return
	}

	respondWithJSON(w, http.StatusNoContent, nil)
}

// ReorderCategoriesInput is the bulk display-order payload.
type ReorderCategoriesInput struct {
	Orders []store.CategoryOrder `json:"orders" validate:"required,min=1,dive"`
}

func (h *Handler) ReorderCategories(w http.ResponseWriter, r *http.Request) {
	var input ReorderCategoriesInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	updated, err := h.categories.ReorderCategories(r.Context(), input.Orders)
	if err != nil {
		h.log.WithError(err).Error("ReorderCategories: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to reorder categories")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int{"updated": updated})
}
