package model

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one persisted cart line for an authenticated user. At most
// one line exists per (userId, productId, size); a repeated add increments
// the quantity instead of duplicating the line.
type CartItem struct {
	ID          uuid.UUID `json:"-" db:"id"`
	UserID      uuid.UUID `json:"-" db:"user_id"`
	ProductID   uuid.UUID `json:"productId" db:"product_id"`
	ItemName    string    `json:"itemName" db:"item_name"`
	SubCategory string    `json:"subCategory" db:"sub_category"`
	Size        string    `json:"size" db:"size"`
	Color       string    `json:"color" db:"color"`
	Quantity    int       `json:"quantity" db:"quantity"`
	Price       int64     `json:"price" db:"price"`
	Image       string    `json:"image" db:"image"`
	AddedAt     time.Time `json:"addedAt" db:"added_at"`
}

// AddCartItemRequest is the body of POST /api/cart.
type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
	Quantity  int       `json:"quantity"`
}

// UpdateCartItemRequest sets the absolute quantity of one cart line.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// MergeCartRequest carries a previously client-local guest cart submitted
// at login so it can be folded into the persisted cart.
type MergeCartRequest struct {
	Items []AddCartItemRequest `json:"items"`
}
