package service

import (
	"context"

	"threadline/internal/model"

	"github.com/google/uuid"
)

// ProductService defines operations for catalogue management.
type ProductService interface {
	// List retrieves products with pagination.
	List(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// CreateBatch validates and inserts a batch of catalogue items.
	CreateBatch(ctx context.Context, inputs []model.ProductInput) ([]model.Product, error)

	// Update replaces a product's fields and variant tree.
	Update(ctx context.Context, id uuid.UUID, input *model.ProductInput) (*model.Product, error)

	// Delete removes a product from the catalogue.
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateStock writes an absolute stock value for one
	// (variant colour, size) counter.
	UpdateStock(ctx context.Context, id uuid.UUID, req *model.UpdateStockRequest) (*model.Product, error)
}

// OrderService defines checkout and order management operations.
type OrderService interface {
	// PlaceOrder validates the cart against catalogue stock, decrements
	// stock, prices the order and persists it, all inside one database
	// transaction. actingUserID nil means a guest checkout.
	PlaceOrder(ctx context.Context, req *model.PlaceOrderRequest, actingUserID *uuid.UUID) (*model.PlaceOrderResponse, error)

	// GetByReference retrieves an order scoped to the acting identity:
	// nil matches only guest orders, non-nil only that user's orders.
	GetByReference(ctx context.Context, reference string, actingUserID *uuid.UUID) (*model.Order, error)

	// ListForUser retrieves a user's own orders, newest first.
	ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, error)

	// List retrieves all orders (admin), newest first.
	List(ctx context.Context, limit, offset int) ([]model.Order, error)

	// UpdateStatus applies an admin fulfilment status transition.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*model.Order, error)

	// UpdatePayment applies an admin payment status update.
	UpdatePayment(ctx context.Context, id uuid.UUID, req *model.UpdatePaymentRequest) (*model.Order, error)

	// Stats aggregates the admin dashboard counters.
	Stats(ctx context.Context) (*model.DashboardStats, error)
}

// CartService defines operations on the persisted per-user cart.
type CartService interface {
	// Get retrieves the user's cart lines.
	Get(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error)

	// Add validates the line against the catalogue and upserts it;
	// adding an existing (productId, size) pair sums quantities.
	Add(ctx context.Context, userID uuid.UUID, req *model.AddCartItemRequest) ([]model.CartItem, error)

	// UpdateQuantity sets the absolute quantity of one line.
	UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, size string, quantity int) ([]model.CartItem, error)

	// Remove deletes one line.
	Remove(ctx context.Context, userID, productID uuid.UUID, size string) ([]model.CartItem, error)

	// Clear deletes all lines.
	Clear(ctx context.Context, userID uuid.UUID) error

	// Merge folds a previously client-local guest cart into the
	// persisted cart, summing quantities per (productId, size) and
	// capping each line at available stock.
	Merge(ctx context.Context, userID uuid.UUID, req *model.MergeCartRequest) ([]model.CartItem, error)
}

// UserService defines account operations.
type UserService interface {
	// Register creates an account and issues a token.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)

	// Login verifies credentials and issues a token.
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)

	// GetByID retrieves an account.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// ListCustomers retrieves customer accounts (admin), newest first.
	ListCustomers(ctx context.Context, limit, offset int) ([]model.User, error)
}
