package handler

import (
	"net/http"
	"path/filepath"

	"threadline/internal/model"
	"threadline/internal/service"
	"threadline/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxUploadBytes caps admin image uploads at 10 MiB.
const maxUploadBytes = 10 << 20

// AdminHandler handles the back-office surface: catalogue management,
// order fulfilment, customers, dashboard stats and image uploads.
type AdminHandler struct {
	products service.ProductService
	orders   service.OrderService
	users    service.UserService
	images   storage.ImageStore
	logger   zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(
	products service.ProductService,
	orders service.OrderService,
	users service.UserService,
	images storage.ImageStore,
	logger zerolog.Logger,
) *AdminHandler {
	return &AdminHandler{
		products: products,
		orders:   orders,
		users:    users,
		images:   images,
		logger:   logger.With().Str("handler", "admin").Logger(),
	}
}

func pathID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

// CreateProducts handles POST /api/admin/products.
func (h *AdminHandler) CreateProducts(w http.ResponseWriter, r *http.Request) {
	var req model.BatchCreateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err, h.logger)
		return
	}

	products, err := h.products.CreateBatch(r.Context(), req.Products)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, products)
}

// UpdateProduct handles PUT /api/admin/products/{id}.
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid product ID", h.logger)
		return
	}

	var input model.ProductInput
	if err := decodeBody(r, &input); err != nil {
		respondError(w, err, h.logger)
		return
	}

	product, err := h.products.Update(r.Context(), id, &input)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/admin/products/{id}.
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid product ID", h.logger)
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		respondError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateStock handles PUT /api/admin/products/{id}/stock.
func (h *AdminHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid product ID", h.logger)
		return
	}

	var req model.UpdateStockRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err, h.logger)
		return
	}

	product, err := h.products.UpdateStock(r.Context(), id, &req)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// ListOrders handles GET /api/admin/orders.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	orders, err := h.orders.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// UpdateOrderStatus handles PUT /api/admin/orders/{id}/status.
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid order ID", h.logger)
		return
	}

	var req model.UpdateOrderStatusRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err, h.logger)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// UpdateOrderPayment handles PUT /api/admin/orders/{id}/payment.
func (h *AdminHandler) UpdateOrderPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid order ID", h.logger)
		return
	}

	var req model.UpdatePaymentRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err, h.logger)
		return
	}

	order, err := h.orders.UpdatePayment(r.Context(), id, &req)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// ListCustomers handles GET /api/admin/customers.
func (h *AdminHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	customers, err := h.users.ListCustomers(r.Context(), limit, offset)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, customers)
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.orders.Stats(r.Context())
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// UploadImage handles POST /api/admin/uploads. Accepts a multipart form
// with an "image" part and returns the stored URL.
func (h *AdminHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid multipart form", h.logger)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "An image file is required", h.logger)
		return
	}
	defer file.Close()

	// The client-chosen filename is kept for readability but prefixed
	// with a fresh id so two uploads never overwrite each other.
	name := uuid.New().String() + "-" + filepath.Base(header.Filename)

	contentType := header.Header.Get("Content-Type")
	url, err := h.images.Put(r.Context(), name, contentType, file)
	if err != nil {
		h.logger.Error().Err(err).Str("filename", header.Filename).Msg("image upload failed")
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
