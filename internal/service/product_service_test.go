package service

import (
	"context"
	"testing"

	"threadline/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *model.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *model.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) GetPricing(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.ProductPricing, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductPricing), args.Error(1)
}

func (m *MockProductRepository) FindVariantSize(ctx context.Context, tx pgx.Tx, productID uuid.UUID, color, size string) (*model.VariantSizeRef, error) {
	args := m.Called(ctx, tx, productID, color, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VariantSizeRef), args.Error(1)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, tx pgx.Tx, sizeID uuid.UUID, quantity int) (bool, error) {
	args := m.Called(ctx, tx, sizeID, quantity)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) ReadStock(ctx context.Context, tx pgx.Tx, sizeID uuid.UUID) (int, error) {
	args := m.Called(ctx, tx, sizeID)
	return args.Int(0), args.Error(1)
}

func (m *MockProductRepository) SetStock(ctx context.Context, productID uuid.UUID, color, size string, newStock int) (bool, error) {
	args := m.Called(ctx, productID, color, size, newStock)
	return args.Bool(0), args.Error(1)
}

func teeInput() model.ProductInput {
	return model.ProductInput{
		BatchName:    "SS26 Drop 1",
		MainCategory: "Clothing",
		SubCategory:  "T-Shirts",
		Gender:       "unisex",
		ItemName:     "Basic Tee",
		Price:        10000,
		Variants: []model.VariantInput{
			{
				Color:  "Black",
				Images: []string{"black-front.jpg"},
				Sizes: []model.SizeStockInput{
					{Size: "M", Stock: 5},
					{Size: "L", Stock: 3},
				},
			},
		},
	}
}

func TestProductService_CreateBatch_Success(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockRepo := new(MockProductRepository)
	service := NewProductService(mockRepo, logger)

	mockRepo.On("Create", ctx, mock.AnythingOfType("*model.Product")).Return(nil).Twice()

	products, err := service.CreateBatch(ctx, []model.ProductInput{teeInput(), teeInput()})

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.NotEqual(t, uuid.Nil, products[0].ID)
	assert.NotEqual(t, products[0].ID, products[1].ID)
	require.Len(t, products[0].Variants, 1)
	assert.NotEqual(t, uuid.Nil, products[0].Variants[0].Sizes[0].ID)

	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateBatch_Validation(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockRepo := new(MockProductRepository)
	service := NewProductService(mockRepo, logger)

	tests := []struct {
		name         string
		mutate       func(in *model.ProductInput)
		expectedCode string
	}{
		{
			name:         "Missing item name",
			mutate:       func(in *model.ProductInput) { in.ItemName = "  " },
			expectedCode: model.ErrCodeInvalidJSON,
		},
		{
			name:         "Negative price",
			mutate:       func(in *model.ProductInput) { in.Price = -1 },
			expectedCode: model.ErrCodeInvalidJSON,
		},
		{
			name:         "No variants",
			mutate:       func(in *model.ProductInput) { in.Variants = nil },
			expectedCode: model.ErrCodeInvalidJSON,
		},
		{
			name:         "Missing colour",
			mutate:       func(in *model.ProductInput) { in.Variants[0].Color = "" },
			expectedCode: model.ErrCodeInvalidJSON,
		},
		{
			name: "Duplicate size within variant",
			mutate: func(in *model.ProductInput) {
				in.Variants[0].Sizes = append(in.Variants[0].Sizes, model.SizeStockInput{Size: "M", Stock: 1})
			},
			expectedCode: model.ErrCodeInvalidJSON,
		},
		{
			name: "Negative stock",
			mutate: func(in *model.ProductInput) {
				in.Variants[0].Sizes[0].Stock = -2
			},
			expectedCode: model.ErrCodeNegativeStock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := teeInput()
			tt.mutate(&input)

			products, err := service.CreateBatch(ctx, []model.ProductInput{input})

			require.Error(t, err)
			assert.Nil(t, products)

			var domainErr *model.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.expectedCode, domainErr.Code)
		})
	}

	mockRepo.AssertNotCalled(t, "Create")
}

func TestProductService_CreateBatch_Empty(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockRepo := new(MockProductRepository)
	service := NewProductService(mockRepo, logger)

	products, err := service.CreateBatch(ctx, nil)

	require.Error(t, err)
	assert.Nil(t, products)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestProductService_List_ClampsPagination(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockRepo := new(MockProductRepository)
	service := NewProductService(mockRepo, logger)

	mockRepo.On("List", ctx, 20, 0).Return([]model.Product{}, nil).Once()
	mockRepo.On("List", ctx, 100, 0).Return([]model.Product{}, nil).Once()

	_, err := service.List(ctx, 0, -5)
	require.NoError(t, err)

	_, err = service.List(ctx, 5000, 0)
	require.NoError(t, err)

	mockRepo.AssertExpectations(t)
}

func TestProductService_GetByID_NotFound(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockRepo := new(MockProductRepository)
	service := NewProductService(mockRepo, logger)

	id := uuid.New()
	mockRepo.On("GetByID", ctx, id).Return(nil, nil)

	product, err := service.GetByID(ctx, id)

	require.Error(t, err)
	assert.Nil(t, product)

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeProductNotFound, domainErr.Code)
	assert.Equal(t, 404, domainErr.Status)
}

func TestProductService_Delete(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockRepo := new(MockProductRepository)
	service := NewProductService(mockRepo, logger)

	existing := uuid.New()
	missing := uuid.New()
	mockRepo.On("Delete", ctx, existing).Return(true, nil)
	mockRepo.On("Delete", ctx, missing).Return(false, nil)

	require.NoError(t, service.Delete(ctx, existing))

	err := service.Delete(ctx, missing)
	require.Error(t, err)

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeProductNotFound, domainErr.Code)
}

func TestProductService_UpdateStock(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockRepo := new(MockProductRepository)
	service := NewProductService(mockRepo, logger)

	id := uuid.New()
	refreshed := &model.Product{ID: id, ItemName: "Basic Tee"}

	mockRepo.On("SetStock", ctx, id, "Black", "M", 12).Return(true, nil)
	mockRepo.On("GetByID", ctx, id).Return(refreshed, nil)

	product, err := service.UpdateStock(ctx, id, &model.UpdateStockRequest{Color: "Black", Size: "M", NewStock: 12})

	require.NoError(t, err)
	assert.Equal(t, refreshed, product)
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateStock_Negative(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockRepo := new(MockProductRepository)
	service := NewProductService(mockRepo, logger)

	product, err := service.UpdateStock(ctx, uuid.New(), &model.UpdateStockRequest{Color: "Black", Size: "M", NewStock: -1})

	require.Error(t, err)
	assert.Equal(t, model.ErrNegativeStock, err)
	assert.Nil(t, product)
	mockRepo.AssertNotCalled(t, "SetStock")
}

func TestProductService_UpdateStock_UnknownVariant(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockRepo := new(MockProductRepository)
	service := NewProductService(mockRepo, logger)

	id := uuid.New()
	mockRepo.On("SetStock", ctx, id, "Mauve", "M", 4).Return(false, nil)
	mockRepo.On("GetByID", ctx, id).Return(&model.Product{ID: id, ItemName: "Basic Tee"}, nil)

	product, err := service.UpdateStock(ctx, id, &model.UpdateStockRequest{Color: "Mauve", Size: "M", NewStock: 4})

	require.Error(t, err)
	assert.Nil(t, product)

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeVariantUnavailable, domainErr.Code)
}

func TestProductService_UpdateStock_UnknownProduct(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockRepo := new(MockProductRepository)
	service := NewProductService(mockRepo, logger)

	id := uuid.New()
	mockRepo.On("SetStock", ctx, id, "Black", "M", 4).Return(false, nil)
	mockRepo.On("GetByID", ctx, id).Return(nil, nil)

	product, err := service.UpdateStock(ctx, id, &model.UpdateStockRequest{Color: "Black", Size: "M", NewStock: 4})

	require.Error(t, err)
	assert.Nil(t, product)

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeProductNotFound, domainErr.Code)
}
