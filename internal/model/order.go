package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

// PaymentMethod is how the customer chose to pay.
type PaymentMethod string

// PaymentStatus is the state of the payment itself.
type PaymentStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"

	PaymentMethodCOD    PaymentMethod = "cod"
	PaymentMethodKBZPay PaymentMethod = "kbzpay"

	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// ParseOrderStatus maps a status string onto the enumerated set.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(strings.ToLower(strings.TrimSpace(s))) {
	case OrderStatusPending:
		return OrderStatusPending, nil
	case OrderStatusProcessing:
		return OrderStatusProcessing, nil
	case OrderStatusShipped:
		return OrderStatusShipped, nil
	case OrderStatusDelivered:
		return OrderStatusDelivered, nil
	case OrderStatusCancelled:
		return OrderStatusCancelled, nil
	default:
		return "", ErrInvalidStatus
	}
}

// ParsePaymentMethod maps a payment method string onto the enumerated set.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(strings.ToLower(strings.TrimSpace(s))) {
	case PaymentMethodCOD:
		return PaymentMethodCOD, nil
	case PaymentMethodKBZPay:
		return PaymentMethodKBZPay, nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}

// ParsePaymentStatus maps a payment status string onto the enumerated set.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(strings.ToLower(strings.TrimSpace(s))) {
	case PaymentStatusPending:
		return PaymentStatusPending, nil
	case PaymentStatusPaid:
		return PaymentStatusPaid, nil
	case PaymentStatusFailed:
		return PaymentStatusFailed, nil
	default:
		return "", ErrInvalidPaymentStatus
	}
}

// IsTerminal reports whether no further status transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo enforces the forward-only fulfilment chain
// pending -> processing -> shipped -> delivered, with cancelled
// reachable from any non-terminal state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch next {
	case OrderStatusProcessing:
		return s == OrderStatusPending
	case OrderStatusShipped:
		return s == OrderStatusProcessing
	case OrderStatusDelivered:
		return s == OrderStatusShipped
	case OrderStatusCancelled:
		return !s.IsTerminal()
	default:
		return false
	}
}

// ShippingAddress is the destination captured at checkout.
type ShippingAddress struct {
	Name    string `json:"name" db:"ship_name"`
	Phone   string `json:"phone" db:"ship_phone"`
	Email   string `json:"email" db:"ship_email"`
	Address string `json:"address" db:"ship_address"`
	City    string `json:"city" db:"ship_city"`
	Notes   string `json:"notes,omitempty" db:"ship_notes"`
}

// Payment tracks the payment state of an order.
type Payment struct {
	Method        PaymentMethod `json:"method" db:"payment_method"`
	Status        PaymentStatus `json:"status" db:"payment_status"`
	PaidAt        *time.Time    `json:"paidAt,omitempty" db:"paid_at"`
	TransactionID *string       `json:"transactionId,omitempty" db:"transaction_id"`
}

// Order is a placed order. Items are snapshots taken at checkout so the
// order remains stable if the product is later edited or deleted.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	Reference       string          `json:"orderId" db:"reference"`
	UserID          *uuid.UUID      `json:"userId,omitempty" db:"user_id"`
	IsGuestOrder    bool            `json:"isGuestOrder" db:"is_guest"`
	GuestEmail      string          `json:"guestEmail,omitempty" db:"guest_email"`
	Items           []OrderItem     `json:"items"`
	Subtotal        int64           `json:"subtotal" db:"subtotal"`
	ShippingCost    int64           `json:"shippingCost" db:"shipping_cost"`
	Total           int64           `json:"total" db:"total"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Payment         Payment         `json:"payment"`
	Status          OrderStatus     `json:"status" db:"status"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem is a point-in-time snapshot of a cart line.
type OrderItem struct {
	ID        uuid.UUID `json:"-" db:"id"`
	OrderID   uuid.UUID `json:"-" db:"order_id"`
	ProductID uuid.UUID `json:"productId" db:"product_id"`
	ItemName  string    `json:"itemName" db:"item_name"`
	Size      string    `json:"size" db:"size"`
	Color     string    `json:"color" db:"color"`
	Price     int64     `json:"price" db:"price"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Image     string    `json:"image" db:"image"`
}

// CartLineRequest is one line of a checkout submission. Price and itemName
// are client echoes kept for display continuity; the order engine re-prices
// every line from the catalogue.
type CartLineRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
	Quantity  int       `json:"quantity"`
	Price     int64     `json:"price"`
	ItemName  string    `json:"itemName"`
	Image     string    `json:"image"`
}

// BillingDetails is the checkout contact and destination block.
type BillingDetails struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
	Notes   string `json:"notes"`
}

// PlaceOrderRequest is the body of POST /api/orders and /api/guest-orders.
type PlaceOrderRequest struct {
	CartItems      []CartLineRequest `json:"cartItems"`
	BillingDetails BillingDetails    `json:"billingDetails"`
	PaymentMethod  string            `json:"paymentMethod"`
}

// PlaceOrderResponse is returned on successful checkout.
type PlaceOrderResponse struct {
	Reference string `json:"orderId"`
	Order     *Order `json:"order"`
}

// UpdateOrderStatusRequest is the body of the admin status transition call.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// UpdatePaymentRequest is the body of the admin payment update call.
type UpdatePaymentRequest struct {
	Status        string `json:"status"`
	TransactionID string `json:"transactionId"`
}

// OrderStats holds the order-derived dashboard counters.
type OrderStats struct {
	OrderCount    int64
	PendingOrders int64
	PaidRevenue   int64
}

// DashboardStats aggregates the admin dashboard counters.
type DashboardStats struct {
	OrderCount    int64 `json:"orderCount"`
	PendingOrders int64 `json:"pendingOrders"`
	PaidRevenue   int64 `json:"paidRevenue"`
	ProductCount  int64 `json:"productCount"`
	CustomerCount int64 `json:"customerCount"`
}
