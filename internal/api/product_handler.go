package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medipro-api/internal/domain"
	"medipro-api/internal/store"
)

// ProductInput defines the input for creating or updating a product.
type ProductInput struct {
	Name             string          `json:"name" validate:"required,max=255"`
	Description      string          `json:"description" validate:"required"`
	ShortDescription *string         `json:"short_description" validate:"omitempty,max=500"`
	Price            float64         `json:"price" validate:"required,gt=0"`
	OriginalPrice    *float64        `json:"original_price" validate:"omitempty,gt=0"`
	CategoryID       *uuid.UUID      `json:"category_id"`
	Category         string          `json:"category" validate:"required,max=255"`
	Subcategory      *string         `json:"subcategory" validate:"omitempty,max=255"`
	StockQuantity    int             `json:"stock_quantity" validate:"gte=0"`
	SKU              *string         `json:"sku" validate:"omitempty,max=100"`
	Slug             *string         `json:"slug" validate:"omitempty,max=255"`
	Images           json.RawMessage `json:"images" validate:"omitempty"`
	Thumbnail        *string         `json:"thumbnail" validate:"omitempty,max=2048"`
	Specifications   json.RawMessage `json:"specifications" validate:"omitempty"`
	Features         json.RawMessage `json:"features" validate:"omitempty"`
	IsActive         *bool           `json:"is_active"`
	IsFeatured       bool            `json:"is_featured"`
}

func (in *ProductInput) toDomain() *domain.Product {
	isActive := true
	if in.IsActive != nil {
		isActive = *in.IsActive
	}
	return &domain.Product{
		Name:             in.Name,
		Description:      in.Description,
		ShortDescription: in.ShortDescription,
		Price:            in.Price,
		OriginalPrice:    in.OriginalPrice,
		CategoryID:       in.CategoryID,
		Category:         in.Category,
		Subcategory:      in.Subcategory,
		StockQuantity:    in.StockQuantity,
		SKU:              in.SKU,
		Slug:             in.Slug,
		Images:           in.Images,
		Thumbnail:        in.Thumbnail,
		Specifications:   in.Specifications,
		Features:         in.Features,
		IsActive:         isActive,
		IsFeatured:       in.IsFeatured,
	}
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	created, err := h.products.CreateProduct(r.Context(), input.toDomain())
	if err != nil {
		switch {
		case errors.Is(err, store.ErrProductSKUExists):
			respondWithError(w, http.StatusConflict, "Product SKU already exists")
		case errors.Is(err, store.ErrSlugExists):
			respondWithError(w, http.StatusConflict, "Product slug already in use")
		case errors.Is(err, store.ErrCategoryNotFound):
			respondWithError(w, http.StatusBadRequest, "Invalid category_id: category does not exist")
		default:
			h.log.WithError(err).Error("CreateProduct: store operation failed")
			respondWithError(w, http.StatusInternalServerError, "Failed to create product")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	qParams := r.URL.Query()
	page, pageSize := parsePagination(r)

	params := store.ListProductsParams{
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
		IsActive:   parseBoolQuery(r, "is_active"),
		IsFeatured: parseBoolQuery(r, "is_featured"),
	}

	if q := qParams.Get("q"); q != "" {
		params.SearchQuery = &q
	}
	if c := qParams.Get("category"); c != "" {
		params.Category = &c
	}
	if sc := qParams.Get("subcategory"); sc != "" {
		params.Subcategory = &sc
	}
	if raw := qParams.Get("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid category_id format")
			return
		}
		params.CategoryID = &id
	}
	if raw := qParams.Get("min_price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil || price < 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid min_price format")
			return
		}
		params.MinPrice = &price
	}
	if raw := qParams.Get("max_price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil || price < 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid max_price format")
			return
		}
		params.MaxPrice = &price
	}
	if params.MinPrice != nil && params.MaxPrice != nil && *params.MinPrice > *params.MaxPrice {
		respondWithError(w, http.StatusBadRequest, "min_price cannot exceed max_price")
		return
	}
	if raw := qParams.Get("in_stock"); raw != "" {
		params.InStockOnly, _ = strconv.ParseBool(raw)
	}

	params.SortBy = qParams.Get("sort_by")
	allowedSortFields := map[string]bool{"": true, "name": true, "price": true, "created_at": true}
	if !allowedSortFields[params.SortBy] {
		respondWithError(w, http.StatusBadRequest, "Invalid sort_by field. Allowed: name, price, created_at")
		return
	}
	params.SortOrder = qParams.Get("sort_order")
	if params.SortOrder != "" && !strings.EqualFold(params.SortOrder, "asc") && !strings.EqualFold(params.SortOrder, "desc") {
		respondWithError(w, http.StatusBadRequest, "Invalid sort_order value. Allowed: asc, desc")
		return
	}

	products, total, err := h.products.ListProducts(r.Context(), params)
	if err != nil {
		h.log.WithError(err).Error("ListProducts: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}

	respondWithJSON(w, http.StatusOK, domain.NewPage(products, total, page, pageSize))
}

func (h *Handler) FeaturedProducts(w http.ResponseWriter, r *http.Request) {
	limit := 8
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > 50 {
		limit = 50
	}

	products, err := h.products.ListFeaturedProducts(r.Context(), limit)
	if err != nil {
		h.log.WithError(err).Error("FeaturedProducts: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve featured products")
		return
	}
	if products == nil {
		products = []domain.Product{}
	}

	respondWithJSON(w, http.StatusOK, products)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(r, "productID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	product, err := h.products.GetProductByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.log.WithError(err).Error("GetProduct: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}

	respondWithJSON(w, http.StatusOK, product)
}

func (h *Handler) GetProductBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	product, err := h.products.GetProductBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.log.WithError(err).Error("GetProductBySlug: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}

	respondWithJSON(w, http.StatusOK, product)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(r, "productID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	var input ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	product := input.toDomain()
	product.ID = id

	updated, err := h.products.UpdateProduct(r.Context(), product)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrProductNotFound):
			respondWithError(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, store.ErrProductSKUExists):
			respondWithError(w, http.StatusConflict, "Product SKU already exists")
		case errors.Is(err, store.ErrSlugExists):
			respondWithError(w, http.StatusConflict, "Product slug already in use")
		case errors.Is(err, store.ErrCategoryNotFound):
			respondWithError(w, http.StatusBadRequest, "Invalid category_id: category does not exist")
		default:
			h.log.WithError(err).Error("UpdateProduct: store operation failed")
			respondWithError(w, http.StatusInternalServerError, "Failed to update product")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(r, "productID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	if err := h.products.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.log.WithError(err).Error("DeleteProduct: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}

	respondWithJSON(w, http.StatusNoContent, nil)
}
