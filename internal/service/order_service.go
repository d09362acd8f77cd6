package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"threadline/internal/metrics"
	"threadline/internal/model"
	"threadline/internal/notify"
	"threadline/internal/repository"
	"threadline/internal/shipping"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// referenceAttempts bounds retries when a generated order reference
// collides with an existing one.
const referenceAttempts = 3

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	rates       shipping.Rates
	notifier    notify.Notifier
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	rates shipping.Rates,
	notifier notify.Notifier,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		rates:       rates,
		notifier:    notifier,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// PlaceOrder validates the cart against catalogue stock, decrements stock,
// prices the order and persists it. Validation, decrement and persistence
// all run inside one transaction, so a failure on any line rolls back the
// decrements already applied for earlier lines.
func (s *orderService) PlaceOrder(ctx context.Context, req *model.PlaceOrderRequest, actingUserID *uuid.UUID) (*model.PlaceOrderResponse, error) {
	if err := s.validateCheckout(req); err != nil {
		return nil, err
	}

	method, err := model.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	items := make([]model.OrderItem, 0, len(req.CartItems))
	var subtotal int64

	for _, line := range req.CartItems {
		var pricing *model.ProductPricing
		pricing, err = s.productRepo.GetPricing(ctx, tx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to place order: %w", err)
		}
		if pricing == nil {
			s.logger.Warn().
				Str("product_id", line.ProductID.String()).
				Msg("cart line references a missing product")
			err = model.NewProductNotFound(line.ItemName)
			return nil, err
		}

		var ref *model.VariantSizeRef
		ref, err = s.productRepo.FindVariantSize(ctx, tx, line.ProductID, line.Color, line.Size)
		if err != nil {
			return nil, fmt.Errorf("failed to place order: %w", err)
		}
		if ref == nil {
			err = model.NewVariantUnavailable(pricing.ItemName, line.Size, line.Color)
			return nil, err
		}

		if ref.Stock < line.Quantity {
			err = model.NewInsufficientStock(pricing.ItemName, ref.Stock, line.Quantity)
			return nil, err
		}

		var decremented bool
		decremented, err = s.productRepo.DecrementStock(ctx, tx, ref.SizeID, line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to place order: %w", err)
		}
		if !decremented {
			// Lost a race since the read above; report the current count.
			available, readErr := s.productRepo.ReadStock(ctx, tx, ref.SizeID)
			if readErr != nil {
				available = 0
			}
			err = model.NewInsufficientStock(pricing.ItemName, available, line.Quantity)
			return nil, err
		}

		image := ref.Image
		if image == "" {
			image = line.Image
		}

		// The client-echoed price is a display hint only; the order is
		// always priced from the catalogue row.
		items = append(items, model.OrderItem{
			ID:        uuid.New(),
			ProductID: pricing.ID,
			ItemName:  pricing.ItemName,
			Size:      line.Size,
			Color:     line.Color,
			Price:     pricing.Price,
			Quantity:  line.Quantity,
			Image:     image,
		})
		subtotal += pricing.Price * int64(line.Quantity)
	}

	shippingCost := s.rates.Cost(req.BillingDetails.City)
	now := time.Now()

	order := &model.Order{
		ID:           uuid.New(),
		UserID:       actingUserID,
		IsGuestOrder: actingUserID == nil,
		Subtotal:     subtotal,
		ShippingCost: shippingCost,
		Total:        subtotal + shippingCost,
		ShippingAddress: model.ShippingAddress{
			Name:    req.BillingDetails.Name,
			Phone:   req.BillingDetails.Phone,
			Email:   req.BillingDetails.Email,
			Address: req.BillingDetails.Address,
			City:    req.BillingDetails.City,
			Notes:   req.BillingDetails.Notes,
		},
		Payment: model.Payment{
			Method: method,
			Status: model.PaymentStatusPending,
		},
		Status:    model.OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if order.IsGuestOrder {
		order.GuestEmail = req.BillingDetails.Email
	}

	if err = s.insertWithFreshReference(ctx, tx, order); err != nil {
		return nil, err
	}

	for i := range items {
		items[i].OrderID = order.ID
	}
	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}
	order.Items = items

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("reference", order.Reference).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	metrics.OrdersPlaced.WithLabelValues(string(method), strconv.FormatBool(order.IsGuestOrder)).Inc()

	s.logger.Info().
		Str("reference", order.Reference).
		Int("item_count", len(items)).
		Int64("total", order.Total).
		Bool("guest", order.IsGuestOrder).
		Msg("order placed")

	// Notification failures must never fail the checkout.
	go func(email, reference string, total int64) {
		if notifyErr := s.notifier.OrderPlaced(context.Background(), email, reference, total); notifyErr != nil {
			s.logger.Warn().Err(notifyErr).Str("reference", reference).Msg("order notification failed")
		}
	}(req.BillingDetails.Email, order.Reference, order.Total)

	return &model.PlaceOrderResponse{Reference: order.Reference, Order: order}, nil
}

// insertWithFreshReference inserts the order under a generated reference,
// regenerating on the (unlikely) unique-index collision. Each attempt runs
// in a savepoint so a collision does not poison the outer transaction.
func (s *orderService) insertWithFreshReference(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	for attempt := 0; attempt < referenceAttempts; attempt++ {
		order.Reference = newOrderReference()

		sp, err := tx.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to place order: %w", err)
		}

		err = s.orderRepo.CreateOrder(ctx, sp, order)
		if errors.Is(err, repository.ErrDuplicateReference) {
			if rbErr := sp.Rollback(ctx); rbErr != nil {
				return fmt.Errorf("failed to place order: %w", rbErr)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to place order: %w", err)
		}

		if err := sp.Commit(ctx); err != nil {
			return fmt.Errorf("failed to place order: %w", err)
		}
		return nil
	}

	return fmt.Errorf("failed to place order: reference collided %d times", referenceAttempts)
}

// newOrderReference builds a human-readable order reference: a fixed
// prefix, a millisecond timestamp and a short random suffix. Uniqueness is
// enforced by the index on orders.reference, not by this format.
func newOrderReference() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("TL-%d-%s", time.Now().UnixMilli(), suffix)
}

// validateCheckout short-circuits on the first invalid field, in the same
// order the properties are documented: empty cart, billing email, then
// per-line quantity.
func (s *orderService) validateCheckout(req *model.PlaceOrderRequest) error {
	if req == nil || len(req.CartItems) == 0 {
		return model.ErrEmptyCart
	}

	if strings.TrimSpace(req.BillingDetails.Email) == "" {
		return model.ErrMissingBillingInfo
	}

	for i, line := range req.CartItems {
		if line.ProductID == uuid.Nil {
			return model.NewValidationError(model.ErrCodeProductNotFound,
				fmt.Sprintf("cart line %d: product ID is required", i))
		}
		if line.Quantity < 1 {
			s.logger.Warn().
				Int("line", i).
				Str("product_id", line.ProductID.String()).
				Int("quantity", line.Quantity).
				Msg("invalid cart line quantity")
			return model.ErrInvalidQuantity
		}
	}

	return nil
}

// GetByReference retrieves an order scoped to the acting identity. Reads
// have no side effects; fetching twice returns identical data.
func (s *orderService) GetByReference(ctx context.Context, reference string, actingUserID *uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByReference(ctx, reference, actingUserID)
	if err != nil {
		s.logger.Error().Err(err).Str("reference", reference).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

// ListForUser retrieves a user's own orders, newest first.
func (s *orderService) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, error) {
	limit, offset = clampPage(limit, offset)

	orders, err := s.orderRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// List retrieves all orders (admin), newest first.
func (s *orderService) List(ctx context.Context, limit, offset int) ([]model.Order, error) {
	limit, offset = clampPage(limit, offset)

	orders, err := s.orderRepo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus applies an admin fulfilment status transition after
// checking it against the forward-only chain.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*model.Order, error) {
	next, err := model.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if !order.Status.CanTransitionTo(next) {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("from", string(order.Status)).
			Str("to", string(next)).
			Msg("rejected status transition")
		return nil, model.ErrInvalidStatus
	}

	updated, err := s.orderRepo.UpdateStatus(ctx, id, next)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if updated == nil {
		return nil, model.ErrOrderNotFound
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("from", string(order.Status)).
		Str("to", string(next)).
		Msg("order status updated")

	return updated, nil
}

// UpdatePayment applies an admin payment status update. Marking an order
// paid stamps paidAt and the gateway transaction id.
func (s *orderService) UpdatePayment(ctx context.Context, id uuid.UUID, req *model.UpdatePaymentRequest) (*model.Order, error) {
	status, err := model.ParsePaymentStatus(req.Status)
	if err != nil {
		return nil, err
	}

	var paidAt *time.Time
	var transactionID *string
	if status == model.PaymentStatusPaid {
		now := time.Now()
		paidAt = &now
		if req.TransactionID != "" {
			transactionID = &req.TransactionID
		}
	}

	updated, err := s.orderRepo.UpdatePayment(ctx, id, status, transactionID, paidAt)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update payment")
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}
	if updated == nil {
		return nil, model.ErrOrderNotFound
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("payment_status", string(status)).
		Msg("payment updated")

	return updated, nil
}

// Stats aggregates the admin dashboard counters across the order,
// product and user repositories.
func (s *orderService) Stats(ctx context.Context) (*model.DashboardStats, error) {
	orderStats, err := s.orderRepo.Stats(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get dashboard stats")
		return nil, fmt.Errorf("failed to get dashboard stats: %w", err)
	}

	productCount, err := s.productRepo.Count(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to count products")
		return nil, fmt.Errorf("failed to get dashboard stats: %w", err)
	}

	customerCount, err := s.userRepo.Count(ctx, model.RoleUser)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to count customers")
		return nil, fmt.Errorf("failed to get dashboard stats: %w", err)
	}

	return &model.DashboardStats{
		OrderCount:    orderStats.OrderCount,
		PendingOrders: orderStats.PendingOrders,
		PaidRevenue:   orderStats.PaidRevenue,
		ProductCount:  productCount,
		CustomerCount: customerCount,
	}, nil
}

// clampPage applies the shared pagination bounds.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
