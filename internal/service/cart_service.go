package service

import (
	"context"
	"fmt"
	"time"

	"threadline/internal/model"
	"threadline/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, logger zerolog.Logger) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// Get retrieves the user's cart lines.
func (s *cartService) Get(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to get cart")
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return items, nil
}

// Add validates the line against the catalogue and upserts it. Adding a
// (productId, size) pair already in the cart sums the quantities.
func (s *cartService) Add(ctx context.Context, userID uuid.UUID, req *model.AddCartItemRequest) ([]model.CartItem, error) {
	if err := s.addOne(ctx, userID, req); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *cartService) addOne(ctx context.Context, userID uuid.UUID, req *model.AddCartItemRequest) error {
	if req.Quantity < 1 {
		return model.ErrInvalidQuantity
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", req.ProductID.String()).Msg("failed to look up product")
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	if product == nil {
		return model.NewNotFoundError(model.ErrCodeProductNotFound, "Product not found")
	}

	variant := product.FindVariant(req.Color)
	if variant == nil {
		return model.NewVariantUnavailable(product.ItemName, req.Size, req.Color)
	}
	sizeStock := variant.FindSize(req.Size)
	if sizeStock == nil {
		return model.NewVariantUnavailable(product.ItemName, req.Size, req.Color)
	}
	if sizeStock.Stock < 1 {
		return model.NewInsufficientStock(product.ItemName, sizeStock.Stock, req.Quantity)
	}

	var image string
	if len(variant.Images) > 0 {
		image = variant.Images[0]
	}

	quantity := req.Quantity
	if quantity > sizeStock.Stock {
		quantity = sizeStock.Stock
	}

	item := &model.CartItem{
		ID:          uuid.New(),
		UserID:      userID,
		ProductID:   product.ID,
		ItemName:    product.ItemName,
		SubCategory: product.SubCategory,
		Size:        req.Size,
		Color:       req.Color,
		Quantity:    quantity,
		Price:       product.Price,
		Image:       image,
		AddedAt:     time.Now(),
	}

	// The cap also bounds the summed quantity when the line already
	// exists, so a merge can never push a cart past available stock.
	if err := s.cartRepo.Upsert(ctx, item, sizeStock.Stock); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to upsert cart item")
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

// UpdateQuantity sets the absolute quantity of one line.
func (s *cartService) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, size string, quantity int) ([]model.CartItem, error) {
	if quantity < 1 {
		return nil, model.ErrInvalidQuantity
	}

	matched, err := s.cartRepo.SetQuantity(ctx, userID, productID, size, quantity)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to update cart quantity")
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	if !matched {
		return nil, model.ErrCartItemNotFound
	}

	return s.Get(ctx, userID)
}

// Remove deletes one line.
func (s *cartService) Remove(ctx context.Context, userID, productID uuid.UUID, size string) ([]model.CartItem, error) {
	matched, err := s.cartRepo.Remove(ctx, userID, productID, size)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to remove cart item")
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}
	if !matched {
		return nil, model.ErrCartItemNotFound
	}

	return s.Get(ctx, userID)
}

// Clear deletes all lines.
func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Merge folds a guest cart submitted at login into the persisted cart.
// Lines whose product has disappeared from the catalogue or sold out are
// skipped rather than failing the whole merge.
func (s *cartService) Merge(ctx context.Context, userID uuid.UUID, req *model.MergeCartRequest) ([]model.CartItem, error) {
	for i := range req.Items {
		err := s.addOne(ctx, userID, &req.Items[i])
		if err == nil {
			continue
		}
		if de, ok := err.(*model.DomainError); ok {
			s.logger.Warn().
				Str("user_id", userID.String()).
				Str("product_id", req.Items[i].ProductID.String()).
				Str("code", de.Code).
				Msg("skipped unmergeable cart line")
			continue
		}
		return nil, err
	}

	return s.Get(ctx, userID)
}
