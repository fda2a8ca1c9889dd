package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"medipro-api/internal/domain"
	"medipro-api/internal/store"
)

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	items, err := h.carts.GetCartItems(r.Context(), user.ID)
	if err != nil {
		h.log.WithError(err).Error("GetCart: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve cart")
		return
	}

	respondWithJSON(w, http.StatusOK, domain.NewCart(items))
}

// AddCartItemInput defines the input for adding a product to the cart.
type AddCartItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var input AddCartItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	item, err := h.carts.AddCartItem(r.Context(), user.ID, input.ProductID, input.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrProductNotFound):
			respondWithError(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, store.ErrProductInactive):
			respondWithError(w, http.StatusConflict, "Product is not available")
		case errors.Is(err, store.ErrInsufficientStock):
			respondWithError(w, http.StatusBadRequest, "Not enough stock available")
		default:
			h.log.WithError(err).Error("AddCartItem: store operation failed")
			respondWithError(w, http.StatusInternalServerError, "Failed to add item to cart")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, item)
}

// UpdateCartItemInput sets the absolute quantity for a cart line.
type UpdateCartItemInput struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	itemID, ok := parseUUIDParam(r, "itemID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid cart item ID format")
		return
	}

	var input UpdateCartItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	item, err := h.carts.UpdateCartItem(r.Context(), itemID, user.ID, input.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrCartItemNotFound):
			respondWithError(w, http.StatusNotFound, "Cart item not found")
		case errors.Is(err, store.ErrInsufficientStock):
			respondWithError(w, http.StatusBadRequest, "Not enough stock available")
		default:
			h.log.WithError(err).Error("UpdateCartItem: store operation failed")
			respondWithError(w, http.StatusInternalServerError, "Failed to update cart item")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, item)
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	itemID, ok := parseUUIDParam(r, "itemID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid cart item ID format")
		return
	}

	if err := h.carts.RemoveCartItem(r.Context(), itemID, user.ID); err != nil {
		if errors.Is(err, store.ErrCartItemNotFound) {
			respondWithError(w, http.StatusNotFound, "Cart item not found")
			return
		}
		h.log.WithError(err).Error("RemoveCartItem: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to remove cart item")
		return
	}

	respondWithJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	if err := h.carts.ClearCart(r.Context(), user.ID); err != nil {
		h.log.WithError(err).Error("ClearCart: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to clear cart")
		return
	}

	respondWithJSON(w, http.StatusNoContent, nil)
}
