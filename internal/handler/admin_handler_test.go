package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"threadline/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserService is a mock implementation of UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResponse), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResponse), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) ListCustomers(ctx context.Context, limit, offset int) ([]model.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

// fakeImageStore records the last upload and returns a fixed URL.
type fakeImageStore struct {
	name        string
	contentType string
	bytes       int
}

func (f *fakeImageStore) Put(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	n, err := io.Copy(io.Discard, body)
	if err != nil {
		return "", err
	}
	f.name, f.contentType, f.bytes = name, contentType, int(n)
	return "https://cdn.example.com/" + name, nil
}

func adminTestRouter(h *AdminHandler) http.Handler {
	r := chi.NewRouter()
	r.Put("/api/admin/products/{id}/stock", h.UpdateStock)
	r.Put("/api/admin/orders/{id}/status", h.UpdateOrderStatus)
	r.Get("/api/admin/stats", h.Stats)
	r.Post("/api/admin/uploads", h.UploadImage)
	return r
}

func newAdminHandler(products *MockProductService, orders *MockOrderService, users *MockUserService, images *fakeImageStore) *AdminHandler {
	return NewAdminHandler(products, orders, users, images, zerolog.Nop())
}

func TestAdminHandler_UpdateStock(t *testing.T) {
	mockProducts := new(MockProductService)
	h := newAdminHandler(mockProducts, new(MockOrderService), new(MockUserService), &fakeImageStore{})

	id := uuid.New()
	mockProducts.On("UpdateStock", mock.Anything, id, mock.MatchedBy(func(req *model.UpdateStockRequest) bool {
		return req.Color == "Black" && req.Size == "M" && req.NewStock == 12
	})).Return(&model.Product{ID: id, ItemName: "Basic Tee"}, nil)

	body := bytes.NewBufferString(`{"color": "Black", "size": "M", "newStock": 12}`)
	req := httptest.NewRequest(http.MethodPut, "/api/admin/products/"+id.String()+"/stock", body)
	rec := httptest.NewRecorder()
	adminTestRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockProducts.AssertExpectations(t)
}

func TestAdminHandler_UpdateStock_BadID(t *testing.T) {
	mockProducts := new(MockProductService)
	h := newAdminHandler(mockProducts, new(MockOrderService), new(MockUserService), &fakeImageStore{})

	body := bytes.NewBufferString(`{"color": "Black", "size": "M", "newStock": 12}`)
	req := httptest.NewRequest(http.MethodPut, "/api/admin/products/nope/stock", body)
	rec := httptest.NewRecorder()
	adminTestRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockProducts.AssertNotCalled(t, "UpdateStock")
}

func TestAdminHandler_UpdateOrderStatus_InvalidTransition(t *testing.T) {
	mockOrders := new(MockOrderService)
	h := newAdminHandler(new(MockProductService), mockOrders, new(MockUserService), &fakeImageStore{})

	id := uuid.New()
	mockOrders.On("UpdateStatus", mock.Anything, id, "shipped").Return(nil, model.ErrInvalidStatus)

	body := bytes.NewBufferString(`{"status": "shipped"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/admin/orders/"+id.String()+"/status", body)
	rec := httptest.NewRecorder()
	adminTestRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp model.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, model.ErrCodeInvalidStatus, resp.Error)
}

func TestAdminHandler_Stats(t *testing.T) {
	mockOrders := new(MockOrderService)
	h := newAdminHandler(new(MockProductService), mockOrders, new(MockUserService), &fakeImageStore{})

	mockOrders.On("Stats", mock.Anything).Return(&model.DashboardStats{
		OrderCount:    10,
		PendingOrders: 2,
		PaidRevenue:   123000,
		ProductCount:  5,
		CustomerCount: 7,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	rec := httptest.NewRecorder()
	adminTestRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var stats model.DashboardStats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	assert.Equal(t, int64(123000), stats.PaidRevenue)
}

func TestAdminHandler_UploadImage(t *testing.T) {
	store := &fakeImageStore{}
	h := newAdminHandler(new(MockProductService), new(MockOrderService), new(MockUserService), store)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "tee.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/uploads", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	adminTestRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, strings.HasSuffix(store.name, "-tee.jpg"), "stored name %q should keep the original filename", store.name)
	assert.Equal(t, len("fake image bytes"), store.bytes)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "https://cdn.example.com/"+store.name, resp["url"])
}

// Two uploads with the same filename must land under distinct object
// names instead of the second overwriting the first.
func TestAdminHandler_UploadImage_SameFilenameDoesNotCollide(t *testing.T) {
	store := &fakeImageStore{}
	h := newAdminHandler(new(MockProductService), new(MockOrderService), new(MockUserService), store)

	upload := func() string {
		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		part, err := writer.CreateFormFile("image", "tee.jpg")
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/admin/uploads", &body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		rec := httptest.NewRecorder()
		adminTestRouter(h).ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
		return store.name
	}

	first := upload()
	second := upload()
	assert.NotEqual(t, first, second)
}

func TestAdminHandler_UploadImage_MissingPart(t *testing.T) {
	h := newAdminHandler(new(MockProductService), new(MockOrderService), new(MockUserService), &fakeImageStore{})

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/uploads", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	adminTestRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
