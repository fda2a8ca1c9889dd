package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"medipro-api/internal/domain"
	"medipro-api/internal/store"
)

// CheckoutInput defines the customer details required to place an
// order. Line items always come from the caller's cart.
type CheckoutInput struct {
	ShippingAddress json.RawMessage `json:"shipping_address" validate:"required"`
	BillingAddress  json.RawMessage `json:"billing_address" validate:"omitempty"`
	CustomerName    string          `json:"customer_name" validate:"required,max=255"`
	CustomerEmail   string          `json:"customer_email" validate:"required,email"`
	CustomerPhone   string          `json:"customer_phone" validate:"required,max=32"`
	PaymentMethod   *string         `json:"payment_method" validate:"omitempty,max=64"`
	CustomerNotes   *string         `json:"customer_notes" validate:"omitempty,max=2000"`
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var input CheckoutInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	billing := input.BillingAddress
	if len(billing) == 0 {
		billing = input.ShippingAddress
	}
	order, err := h.orders.CreateOrderFromCart(r.Context(), user.ID, store.CreateOrderInput{
		ShippingAddress: input.ShippingAddress,
		BillingAddress:  billing,
		CustomerName:    input.CustomerName,
		CustomerEmail:   input.CustomerEmail,
		CustomerPhone:   input.CustomerPhone,
		PaymentMethod:   input.PaymentMethod,
		CustomerNotes:   input.CustomerNotes,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrCartEmpty):
			respondWithError(w, http.StatusBadRequest, "Cart is empty")
		case errors.Is(err, store.ErrProductInactive):
			respondWithError(w, http.StatusConflict, "A product in the cart is no longer available")
		case errors.Is(err, store.ErrInsufficientStock):
			respondWithError(w, http.StatusBadRequest, "Not enough stock to fulfil the order")
		default:
			h.log.WithError(err).Error("Checkout: store operation failed")
			respondWithError(w, http.StatusInternalServerError, "Failed to place order")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, order)
}

func (h *Handler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	page, pageSize := parsePagination(r)

	params := store.ListOrdersParams{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
		UserID: &user.ID,
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.OrderStatus(raw)
		if !status.Valid() {
			respondWithError(w, http.StatusBadRequest, "Invalid order status filter")
			return
		}
		params.Status = &status
	}

	orders, total, err := h.orders.ListOrders(r.Context(), params)
	if err != nil {
		h.log.WithError(err).Error("ListMyOrders: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}

	respondWithJSON(w, http.StatusOK, domain.NewPage(orders, total, page, pageSize))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	orderID, ok := parseUUIDParam(r, "orderID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	order, err := h.orders.GetOrder(r.Context(), orderID, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrOrderNotFound) {
			respondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		h.log.WithError(err).Error("GetOrder: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve order")
		return
	}

	respondWithJSON(w, http.StatusOK, order)
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	orderID, ok := parseUUIDParam(r, "orderID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	order, err := h.orders.CancelOrder(r.Context(), orderID, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrOrderNotFound):
			respondWithError(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, store.ErrOrderNotCancellable):
			respondWithError(w, http.StatusBadRequest, "Order can no longer be cancelled")
		default:
			h.log.WithError(err).Error("CancelOrder: store operation failed")
			respondWithError(w, http.StatusInternalServerError, "Failed to cancel order")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, order)
}

// --- Admin order handlers ---

func (h *Handler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	params := store.ListOrdersParams{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.OrderStatus(raw)
		if !status.Valid() {
			respondWithError(w, http.StatusBadRequest, "Invalid order status filter")
			return
		}
		params.Status = &status
	}

	orders, total, err := h.orders.ListOrders(r.Context(), params)
	if err != nil {
		h.log.WithError(err).Error("AdminListOrders: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}

	respondWithJSON(w, http.StatusOK, domain.NewPage(orders, total, page, pageSize))
}

func (h *Handler) AdminGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseUUIDParam(r, "orderID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	order, err := h.orders.GetOrderAdmin(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, store.ErrOrderNotFound) {
			respondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		h.log.WithError(err).Error("AdminGetOrder: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve order")
		return
	}

	respondWithJSON(w, http.StatusOK, order)
}

// UpdateOrderStatusInput sets the new lifecycle status for an order.
type UpdateOrderStatusInput struct {
	Status domain.OrderStatus `json:"status" validate:"required"`
}

func (h *Handler) AdminUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseUUIDParam(r, "orderID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	var input UpdateOrderStatusInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if !input.Status.Valid() {
		respondWithError(w, http.StatusBadRequest, "Invalid order status")
		return
	}

	order, err := h.orders.UpdateOrderStatus(r.Context(), orderID, input.Status)
	if err != nil {
		if errors.Is(err, store.ErrOrderNotFound) {
			respondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		h.log.WithError(err).Error("AdminUpdateOrderStatus: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to update order status")
		return
	}

	respondWithJSON(w, http.StatusOK, order)
}
