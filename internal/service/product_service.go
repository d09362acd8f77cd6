package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"threadline/internal/model"
	"threadline/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	repo   repository.ProductRepository
	logger zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		repo:   repo,
		logger: logger.With().Str("service", "product").Logger(),
	}
}

// List retrieves products with pagination.
func (s *productService) List(ctx context.Context, limit, offset int) ([]model.Product, error) {
	limit, offset = clampPage(limit, offset)

	products, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.NewNotFoundError(model.ErrCodeProductNotFound, "Product not found")
	}
	return product, nil
}

// CreateBatch validates and inserts a batch of catalogue items.
func (s *productService) CreateBatch(ctx context.Context, inputs []model.ProductInput) ([]model.Product, error) {
	if len(inputs) == 0 {
		return nil, model.NewValidationError(model.ErrCodeInvalidJSON, "Batch must contain at least one product")
	}

	products := make([]model.Product, 0, len(inputs))
	for i := range inputs {
		product, err := buildProduct(&inputs[i])
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}

	for i := range products {
		if err := s.repo.Create(ctx, &products[i]); err != nil {
			s.logger.Error().Err(err).Str("item_name", products[i].ItemName).Msg("failed to create product")
			return nil, fmt.Errorf("failed to create product: %w", err)
		}
	}

	s.logger.Info().Int("count", len(products)).Msg("products created")
	return products, nil
}

// Update replaces a product's fields and variant tree.
func (s *productService) Update(ctx context.Context, id uuid.UUID, input *model.ProductInput) (*model.Product, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if existing == nil {
		return nil, model.NewNotFoundError(model.ErrCodeProductNotFound, "Product not found")
	}

	product, err := buildProduct(input)
	if err != nil {
		return nil, err
	}
	product.ID = id
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, product); err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to update product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product updated")
	return product, nil
}

// Delete removes a product from the catalogue. Orders keep their line
// snapshots, so past orders are unaffected.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !deleted {
		return model.NewNotFoundError(model.ErrCodeProductNotFound, "Product not found")
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product deleted")
	return nil
}

// UpdateStock writes an absolute stock value for one (variant colour,
// size) counter and returns the refreshed product.
func (s *productService) UpdateStock(ctx context.Context, id uuid.UUID, req *model.UpdateStockRequest) (*model.Product, error) {
	if req.NewStock < 0 {
		return nil, model.ErrNegativeStock
	}

	matched, err := s.repo.SetStock(ctx, id, req.Color, req.Size, req.NewStock)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to set stock")
		return nil, fmt.Errorf("failed to set stock: %w", err)
	}
	if !matched {
		product, getErr := s.repo.GetByID(ctx, id)
		if getErr != nil {
			return nil, fmt.Errorf("failed to set stock: %w", getErr)
		}
		if product == nil {
			return nil, model.NewNotFoundError(model.ErrCodeProductNotFound, "Product not found")
		}
		return nil, model.NewVariantUnavailable(product.ItemName, req.Size, req.Color)
	}

	s.logger.Info().
		Str("product_id", id.String()).
		Str("color", req.Color).
		Str("size", req.Size).
		Int("new_stock", req.NewStock).
		Msg("stock updated")

	return s.repo.GetByID(ctx, id)
}

// buildProduct validates a ProductInput and materialises it with fresh row
// ids. Size values must be unique within each variant and stock counts
// non-negative.
func buildProduct(input *model.ProductInput) (*model.Product, error) {
	if strings.TrimSpace(input.ItemName) == "" {
		return nil, model.NewValidationError(model.ErrCodeInvalidJSON, "Item name is required")
	}
	if input.Price < 0 {
		return nil, model.NewValidationError(model.ErrCodeInvalidJSON,
			fmt.Sprintf("%s: price cannot be negative", input.ItemName))
	}
	if len(input.Variants) == 0 {
		return nil, model.NewValidationError(model.ErrCodeInvalidJSON,
			fmt.Sprintf("%s: at least one variant is required", input.ItemName))
	}

	now := time.Now()
	product := &model.Product{
		ID:           uuid.New(),
		BatchName:    input.BatchName,
		MainCategory: input.MainCategory,
		SubCategory:  input.SubCategory,
		Gender:       input.Gender,
		ItemName:     input.ItemName,
		Description:  input.Description,
		Price:        input.Price,
		Variants:     make([]model.Variant, 0, len(input.Variants)),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	for _, v := range input.Variants {
		if strings.TrimSpace(v.Color) == "" {
			return nil, model.NewValidationError(model.ErrCodeInvalidJSON,
				fmt.Sprintf("%s: variant colour is required", input.ItemName))
		}

		variant := model.Variant{
			ID:     uuid.New(),
			Color:  v.Color,
			Images: v.Images,
			Sizes:  make([]model.SizeStock, 0, len(v.Sizes)),
		}

		seen := make(map[string]bool, len(v.Sizes))
		for _, sz := range v.Sizes {
			if strings.TrimSpace(sz.Size) == "" {
				return nil, model.NewValidationError(model.ErrCodeInvalidJSON,
					fmt.Sprintf("%s / %s: size value is required", input.ItemName, v.Color))
			}
			if seen[sz.Size] {
				return nil, model.NewValidationError(model.ErrCodeInvalidJSON,
					fmt.Sprintf("%s / %s: duplicate size %q", input.ItemName, v.Color, sz.Size))
			}
			seen[sz.Size] = true

			if sz.Stock < 0 {
				return nil, model.ErrNegativeStock
			}
			variant.Sizes = append(variant.Sizes, model.SizeStock{
				ID:    uuid.New(),
				Size:  sz.Size,
				Stock: sz.Stock,
			})
		}

		product.Variants = append(product.Variants, variant)
	}

	return product, nil
}
