package router

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"threadline/internal/auth"
	"threadline/internal/handler"
	"threadline/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderService is a mock implementation of service.OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, req *model.PlaceOrderRequest, actingUserID *uuid.UUID) (*model.PlaceOrderResponse, error) {
	args := m.Called(ctx, req, actingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PlaceOrderResponse), args.Error(1)
}

func (m *MockOrderService) GetByReference(ctx context.Context, reference string, actingUserID *uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, reference, actingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, limit, offset int) ([]model.Order, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*model.Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) UpdatePayment(ctx context.Context, id uuid.UUID, req *model.UpdatePaymentRequest) (*model.Order, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) Stats(ctx context.Context) (*model.DashboardStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DashboardStats), args.Error(1)
}

func newTestRouter(orders *MockOrderService, manager *auth.Manager) http.Handler {
	logger := zerolog.Nop()
	return New(
		handler.NewAuthHandler(nil, logger),
		handler.NewProductHandler(nil, logger),
		handler.NewCartHandler(nil, logger),
		handler.NewOrderHandler(orders, logger),
		handler.NewAdminHandler(nil, nil, nil, nil, logger),
		manager,
		logger,
	)
}

// The guest checkout surface accepts anonymous requests, but a logged-in
// customer hitting it with a token must still be recognised so the order
// lands on their account.
func TestGuestOrders_BearerTokenResolvesIdentity(t *testing.T) {
	manager := auth.NewManager("test-secret-key-for-router", time.Hour)
	userID := uuid.New()
	token, err := manager.Generate(userID, model.RoleUser)
	require.NoError(t, err)

	orders := new(MockOrderService)
	orders.On("PlaceOrder", mock.Anything, mock.Anything, mock.MatchedBy(func(id *uuid.UUID) bool {
		return id != nil && *id == userID
	})).Return(&model.PlaceOrderResponse{Reference: "TL-1-abc123"}, nil)

	router := newTestRouter(orders, manager)

	req := httptest.NewRequest(http.MethodPost, "/api/guest-orders", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	orders.AssertExpectations(t)
}

func TestGuestOrders_AnonymousStaysGuest(t *testing.T) {
	manager := auth.NewManager("test-secret-key-for-router", time.Hour)

	orders := new(MockOrderService)
	orders.On("GetByReference", mock.Anything, "TL-1-abc123", (*uuid.UUID)(nil)).
		Return(&model.Order{Reference: "TL-1-abc123"}, nil)

	router := newTestRouter(orders, manager)

	req := httptest.NewRequest(http.MethodGet, "/api/guest-orders/TL-1-abc123", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	orders.AssertExpectations(t)
}

func TestGuestOrders_InvalidTokenRejected(t *testing.T) {
	manager := auth.NewManager("test-secret-key-for-router", time.Hour)

	orders := new(MockOrderService)
	router := newTestRouter(orders, manager)

	req := httptest.NewRequest(http.MethodPost, "/api/guest-orders", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	orders.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything, mock.Anything)
}
