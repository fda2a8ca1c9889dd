package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"medipro-api/internal/domain"
	"medipro-api/internal/store"
)

// ReviewInput defines the input for creating or editing a review.
type ReviewInput struct {
	Rating  int     `json:"rating" validate:"required,gte=1,lte=5"`
	Title   *string `json:"title" validate:"omitempty,max=255"`
	Comment *string `json:"comment" validate:"omitempty,max=4000"`
}

func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	productID, ok := parseUUIDParam(r, "productID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	var input ReviewInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	if _, err := h.products.GetProductByID(r.Context(), productID); err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.log.WithError(err).Error("CreateReview: failed to load product")
		respondWithError(w, http.StatusInternalServerError, "Failed to create review")
		return
	}

	verified, err := h.reviews.HasPurchased(r.Context(), user.ID, productID)
	if err != nil {
		h.log.WithError(err).Error("CreateReview: purchase check failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to create review")
		return
	}

	review := &domain.Review{
		UserID:             user.ID,
		ProductID:          productID,
		Rating:             input.Rating,
		Title:              input.Title,
		Comment:            input.Comment,
		IsVerifiedPurchase: verified,
		IsApproved:         true,
	}
	created, err := h.reviews.CreateReview(r.Context(), review)
	if err != nil {
		if errors.Is(err, store.ErrReviewExists) {
			respondWithError(w, http.StatusConflict, "You have already reviewed this product")
			return
		}
		h.log.WithError(err).Error("CreateReview: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to create review")
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// ProductReviewsResponse pairs a review page with the product's
// average rating.
type ProductReviewsResponse struct {
	domain.Page[domain.Review]
	AverageRating float64 `json:"average_rating"`
}

func (h *Handler) ListProductReviews(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseUUIDParam(r, "productID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	page, pageSize := parsePagination(r)
	params := store.ListReviewsParams{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}
	if raw := r.URL.Query().Get("rating"); raw != "" {
		rating, err := strconv.Atoi(raw)
		if err != nil || rating < 1 || rating > 5 {
			respondWithError(w, http.StatusBadRequest, "Invalid rating filter")
			return
		}
		params.Rating = &rating
	}

	reviews, total, avg, err := h.reviews.ListProductReviews(r.Context(), productID, params)
	if err != nil {
		h.log.WithError(err).Error("ListProductReviews: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve reviews")
		return
	}

	respondWithJSON(w, http.StatusOK, ProductReviewsResponse{
		Page:          domain.NewPage(reviews, total, page, pageSize),
		AverageRating: avg,
	})
}

func (h *Handler) ListMyReviews(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	page, pageSize := parsePagination(r)

	reviews, total, err := h.reviews.ListUserReviews(r.Context(), user.ID, store.ListReviewsParams{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		h.log.WithError(err).Error("ListMyReviews: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve reviews")
		return
	}

	respondWithJSON(w, http.StatusOK, domain.NewPage(reviews, total, page, pageSize))
}

func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	reviewID, ok := parseUUIDParam(r, "reviewID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid review ID format")
		return
	}

	var input ReviewInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	review := &domain.Review{
		ID:         reviewID,
		UserID:     user.ID,
		Rating:     input.Rating,
		Title:      input.Title,
		Comment:    input.Comment,
		IsApproved: true,
	}
	updated, err := h.reviews.UpdateReview(r.Context(), review)
	if err != nil {
		if errors.Is(err, store.ErrReviewNotFound) {
			respondWithError(w, http.StatusNotFound, "Review not found")
			return
		}
		h.log.WithError(err).Error("UpdateReview: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to update review")
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	reviewID, ok := parseUUIDParam(r, "reviewID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid review ID format")
		return
	}

	if err := h.reviews.DeleteReview(r.Context(), reviewID, user.ID); err != nil {
		if errors.Is(err, store.ErrReviewNotFound) {
			respondWithError(w, http.StatusNotFound, "Review not found")
			return
		}
		h.log.WithError(err).Error("DeleteReview: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to delete review")
		return
	}

	respondWithJSON(w, http.StatusNoContent, nil)
}
