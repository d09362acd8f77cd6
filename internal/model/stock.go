package model

import "github.com/google/uuid"

// ProductPricing is the authoritative subset of a product the order engine
// needs to re-price a cart line.
type ProductPricing struct {
	ID       uuid.UUID
	ItemName string
	Price    int64
}

// VariantSizeRef addresses one (variant colour, size) stock counter inside
// the order-placement transaction.
type VariantSizeRef struct {
	SizeID uuid.UUID
	Stock  int
	Image  string // first variant image, snapshotted onto the order line
}
