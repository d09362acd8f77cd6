package repository

import (
	"context"
	"time"

	"threadline/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for catalogue data access.
type ProductRepository interface {
	// List retrieves products with their variants, paginated.
	List(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product with variants. Returns nil when
	// the product does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// Create inserts a product together with its variants and sizes.
	Create(ctx context.Context, product *model.Product) error

	// Update replaces the product row and its entire variant tree.
	Update(ctx context.Context, product *model.Product) error

	// Delete removes a product and, via cascade, its variants and sizes.
	// Returns false when the product does not exist.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// Count returns the total number of products.
	Count(ctx context.Context) (int64, error)

	// GetPricing resolves the authoritative name and price of a product
	// inside the caller's transaction. Returns nil when absent.
	GetPricing(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.ProductPricing, error)

	// FindVariantSize resolves the stock counter for an exact
	// (productID, colour, size) match inside the caller's transaction.
	// Returns nil when no variant or size matches.
	FindVariantSize(ctx context.Context, tx pgx.Tx, productID uuid.UUID, color, size string) (*model.VariantSizeRef, error)

	// DecrementStock atomically runs "stock = stock - quantity" guarded
	// by "stock >= quantity". Returns false when the guard failed.
	DecrementStock(ctx context.Context, tx pgx.Tx, sizeID uuid.UUID, quantity int) (bool, error)

	// ReadStock reads the current stock of a size row inside the
	// caller's transaction.
	ReadStock(ctx context.Context, tx pgx.Tx, sizeID uuid.UUID) (int, error)

	// SetStock writes an absolute stock value for the addressed
	// (productID, colour, size). Returns false when no row matched.
	SetStock(ctx context.Context, productID uuid.UUID, color, size string, newStock int) (bool, error)
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts the order's line snapshots within the
	// provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByReference retrieves an order by its generated reference,
	// scoped to the acting identity: a nil userID matches only guest
	// orders, a non-nil userID matches only that user's orders. Returns
	// nil on both not-found and ownership mismatch.
	GetByReference(ctx context.Context, reference string, userID *uuid.UUID) (*model.Order, error)

	// GetByID retrieves an order by primary key without an ownership
	// filter (admin use). Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListByUser retrieves a user's orders, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, error)

	// List retrieves all orders, newest first (admin use).
	List(ctx context.Context, limit, offset int) ([]model.Order, error)

	// UpdateStatus writes a new fulfilment status. Returns the updated
	// order, or nil when the order does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error)

	// UpdatePayment writes a new payment status plus optional paid-at
	// timestamp and transaction id. Returns nil when the order does not
	// exist.
	UpdatePayment(ctx context.Context, id uuid.UUID, status model.PaymentStatus, transactionID *string, paidAt *time.Time) (*model.Order, error)

	// Stats aggregates the order-derived dashboard counters.
	Stats(ctx context.Context) (*model.OrderStats, error)
}

// CartRepository defines the interface for persisted cart access.
type CartRepository interface {
	// ListByUser retrieves all cart lines for a user.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error)

	// Upsert inserts a cart line, or adds its quantity onto the existing
	// line with the same (userID, productID, size). The resulting
	// quantity is capped at maxQuantity.
	Upsert(ctx context.Context, item *model.CartItem, maxQuantity int) error

	// SetQuantity writes an absolute quantity. Returns false when no
	// such line exists.
	SetQuantity(ctx context.Context, userID, productID uuid.UUID, size string, quantity int) (bool, error)

	// Remove deletes one line. Returns false when no such line exists.
	Remove(ctx context.Context, userID, productID uuid.UUID, size string) (bool, error)

	// Clear deletes all lines for a user.
	Clear(ctx context.Context, userID uuid.UUID) error
}

// UserRepository defines the interface for account data access.
type UserRepository interface {
	// Create inserts a new account. Returns model.ErrEmailTaken when the
	// email is already registered.
	Create(ctx context.Context, user *model.User) error

	// GetByEmail retrieves an account by email. Returns nil when absent.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// GetByID retrieves an account by id. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// List retrieves accounts with the given role, newest first.
	List(ctx context.Context, role model.Role, limit, offset int) ([]model.User, error)

	// Count returns the number of accounts with the given role.
	Count(ctx context.Context, role model.Role) (int64, error)
}
