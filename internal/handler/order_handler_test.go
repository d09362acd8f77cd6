package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"threadline/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderService is a mock implementation of OrderService.
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

func orderTestRouter(h *OrderHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/guest-orders", h.Place)
	r.Get("/api/guest-orders/{reference}", h.GetByReference)
	return r
}

func TestOrderHandler_Place(t *testing.T) {
	logger := zerolog.Nop()

	placed := &model.PlaceOrderResponse{
		Reference: "TL-1-abc123",
		Order:     &model.Order{ID: uuid.New(), Reference: "TL-1-abc123", Total: 23000},
	}

	tests := []struct {
		name           string
		body           interface{}
		mockReturn     *model.PlaceOrderResponse
		mockError      error
		expectedStatus int
		expectedCode   string
		expectService  bool
	}{
		{
			name:           "Success",
			body:           &model.PlaceOrderRequest{PaymentMethod: "cod"},
			mockReturn:     placed,
			expectedStatus: http.StatusCreated,
			expectService:  true,
		},
		{
			name:           "Empty cart",
			body:           &model.PlaceOrderRequest{},
			mockError:      model.ErrEmptyCart,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeEmptyCart,
			expectService:  true,
		},
		{
			name:           "Insufficient stock",
			body:           &model.PlaceOrderRequest{PaymentMethod: "cod"},
			mockError:      model.NewInsufficientStock("Basic Tee", 1, 3),
			expectedStatus: http.StatusConflict,
			expectedCode:   model.ErrCodeInsufficientStock,
			expectService:  true,
		},
		{
			name:           "Malformed body",
			body:           "{not json",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			h := NewOrderHandler(mockService, logger)

			if tt.expectService {
				mockService.On("PlaceOrder", mock.Anything, mock.AnythingOfType("*model.PlaceOrderRequest"), (*uuid.UUID)(nil)).
					Return(tt.mockReturn, tt.mockError)
			}

			var body bytes.Buffer
			if s, ok := tt.body.(string); ok {
				body.WriteString(s)
			} else {
				require.NoError(t, json.NewEncoder(&body).Encode(tt.body))
			}

			req := httptest.NewRequest(http.MethodPost, "/api/guest-orders", &body)
			rec := httptest.NewRecorder()
			orderTestRouter(h).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedCode != "" {
				var resp model.ErrorResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, tt.expectedCode, resp.Error)
			}

			if tt.expectedStatus == http.StatusCreated {
				var resp model.PlaceOrderResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, "TL-1-abc123", resp.Reference)
			}

			mockService.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_GetByReference(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("Found", func(t *testing.T) {
		mockService := new(MockOrderService)
		h := NewOrderHandler(mockService, logger)

		order := &model.Order{ID: uuid.New(), Reference: "TL-1-abc123"}
		mockService.On("GetByReference", mock.Anything, "TL-1-abc123", (*uuid.UUID)(nil)).Return(order, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/guest-orders/TL-1-abc123", nil)
		rec := httptest.NewRecorder()
		orderTestRouter(h).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var got model.Order
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, "TL-1-abc123", got.Reference)
	})

	t.Run("Not found", func(t *testing.T) {
		mockService := new(MockOrderService)
		h := NewOrderHandler(mockService, logger)

		mockService.On("GetByReference", mock.Anything, "TL-9-zzzzzz", (*uuid.UUID)(nil)).
			Return(nil, model.ErrOrderNotFound)

		req := httptest.NewRequest(http.MethodGet, "/api/guest-orders/TL-9-zzzzzz", nil)
		rec := httptest.NewRecorder()
		orderTestRouter(h).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)

		var resp model.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, model.ErrCodeOrderNotFound, resp.Error)
	})
}
