package handler

import (
	"net/http"

	"threadline/internal/middleware"
	"threadline/internal/model"
	"threadline/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// OrderHandler handles checkout and the customer's own order views. Guest
// and authenticated checkouts share the same service path; the only
// difference is whether a user id is attached.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Place handles POST /api/orders and POST /api/guest-orders. On the guest
// route no token is read, so the order is stored without an owner.
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req model.PlaceOrderRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err, h.logger)
		return
	}

	resp, err := h.service.PlaceOrder(r.Context(), &req, middleware.UserIDFromContext(r.Context()))
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// GetByReference handles GET /api/orders/{reference} and
// GET /api/guest-orders/{reference}. The lookup is scoped to the acting
// identity, so an order that exists but belongs to someone else answers
// the same 404 as one that never existed.
func (h *OrderHandler) GetByReference(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	if reference == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Order reference is required", h.logger)
		return
	}

	order, err := h.service.GetByReference(r.Context(), reference, middleware.UserIDFromContext(r.Context()))
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// ListMine handles GET /api/orders.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == nil {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Authentication required", h.logger)
		return
	}

	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	orders, err := h.service.ListForUser(r.Context(), *userID, limit, offset)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}
