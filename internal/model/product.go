package model

import (
	"time"

	"github.com/google/uuid"
)

// Product represents one catalogue item in the flattened canonical shape.
// Stock lives on the variant/size level, never on the product itself.
type Product struct {
	ID           uuid.UUID `json:"id" db:"id"`
	BatchName    string    `json:"batchName" db:"batch_name"`
	MainCategory string    `json:"mainCategory" db:"main_category"`
	SubCategory  string    `json:"subCategory" db:"sub_category"`
	Gender       string    `json:"gender" db:"gender"`
	ItemName     string    `json:"itemName" db:"item_name"`
	Description  string    `json:"description" db:"description"`
	Price        int64     `json:"price" db:"price"`
	Variants     []Variant `json:"variants"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Variant is a colour-specific version of a catalogue item.
type Variant struct {
	ID     uuid.UUID   `json:"-" db:"id"`
	Color  string      `json:"color" db:"color"`
	Images []string    `json:"images" db:"images"`
	Sizes  []SizeStock `json:"sizes"`
}

// SizeStock holds the available unit count for one size of a variant.
// Within a variant, size values are unique and stock is never negative.
type SizeStock struct {
	ID    uuid.UUID `json:"-" db:"id"`
	Size  string    `json:"size" db:"size"`
	Stock int       `json:"stock" db:"stock"`
}

// FindVariant returns the variant whose colour matches exactly, or nil.
func (p *Product) FindVariant(color string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].Color == color {
			return &p.Variants[i]
		}
	}
	return nil
}

// FindSize returns the size entry matching exactly, or nil.
func (v *Variant) FindSize(size string) *SizeStock {
	for i := range v.Sizes {
		if v.Sizes[i].Size == size {
			return &v.Sizes[i]
		}
	}
	return nil
}

// ProductInput is the request payload for creating or replacing a product.
type ProductInput struct {
	BatchName    string         `json:"batchName"`
	MainCategory string         `json:"mainCategory"`
	SubCategory  string         `json:"subCategory"`
	Gender       string         `json:"gender"`
	ItemName     string         `json:"itemName"`
	Description  string         `json:"description"`
	Price        int64          `json:"price"`
	Variants     []VariantInput `json:"variants"`
}

// VariantInput is one colour variant within a ProductInput.
type VariantInput struct {
	Color  string           `json:"color"`
	Images []string         `json:"images"`
	Sizes  []SizeStockInput `json:"sizes"`
}

// SizeStockInput is one size entry within a VariantInput.
type SizeStockInput struct {
	Size  string `json:"size"`
	Stock int    `json:"stock"`
}

// BatchCreateRequest adds a batch of catalogue items in one call.
type BatchCreateRequest struct {
	Products []ProductInput `json:"products"`
}

// UpdateStockRequest addresses one (variant colour, size) stock counter.
type UpdateStockRequest struct {
	Color    string `json:"color"`
	Size     string `json:"size"`
	NewStock int    `json:"newStock"`
}
