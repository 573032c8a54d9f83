package product_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/product"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context, filter product.ListFilter, limit, offset int) ([]product.Product, int, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]product.Product), args.Int(1), args.Error(2)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductRepository) Categories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, p *product.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, p *product.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func TestProductService_ListProducts_Paginates(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := product.NewService(mockRepo)

	mockRepo.On("List", mock.Anything, mock.MatchedBy(func(f product.ListFilter) bool {
		return f.SortBy == product.SortByName && f.Category == "Electronics"
	}), 12, 24).Return([]product.Product{{Name: "A"}}, 25, nil).Once()

	page, err := svc.ListProducts(context.Background(), product.ListFilter{Category: "Electronics", SortBy: "bogus", Page: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, page.CurrentPage)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 25, page.TotalProducts)
	mockRepo.AssertExpectations(t)
}

func TestProductService_ListProducts_EmptyPriceRange(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := product.NewService(mockRepo)

	lo, hi := decimal.NewFromInt(50), decimal.NewFromInt(10)
	page, err := svc.ListProducts(context.Background(), product.ListFilter{MinPrice: &lo, MaxPrice: &hi})
	require.NoError(t, err)
	assert.Empty(t, page.Products)
	mockRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProductService_CreateProduct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		svc := product.NewService(mockRepo)

		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*product.Product")).Return(nil).Once()

		p, err := svc.CreateProduct(context.Background(), &product.Product{Name: "Mug", Price: decimal.NewFromInt(5), Stock: 2})
		require.NoError(t, err)
		assert.Equal(t, "Mug", p.Name)
		mockRepo.AssertExpectations(t)
	})

	t.Run("negative_stock", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		svc := product.NewService(mockRepo)

		_, err := svc.CreateProduct(context.Background(), &product.Product{Name: "Mug", Stock: -1})
		require.ErrorIs(t, err, product.ErrInvalidProduct)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestProductService_UpdateProduct(t *testing.T) {
	id := uuid.Must(uuid.NewV4())
	stored := func() *product.Product {
		op := decimal.RequireFromString("399.99")
		return &product.Product{
			ID: id, Name: "Premium Wireless Headphones", Description: "ANC", Category: "Electronics",
			Image: "h.jpg", Price: decimal.RequireFromString("299.99"), OriginalPrice: &op,
			Stock: 5, Rating: decimal.RequireFromString("4.8"), Reviews: 127,
			Images: []string{"h.jpg"}, Features: []string{"ANC"}, IsNew: true, IsFeatured: true,
		}
	}

	t.Run("partial_update_keeps_other_fields", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		svc := product.NewService(mockRepo)

		var saved *product.Product
		reloaded := stored()
		mockRepo.On("GetByID", mock.Anything, id).Return(stored(), nil).Once()
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*product.Product")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*product.Product) }).
			Return(nil).Once()
		mockRepo.On("GetByID", mock.Anything, id).Return(reloaded, nil).Once()

		stock := 20
		got, err := svc.UpdateProduct(context.Background(), id, product.Patch{Stock: &stock})
		require.NoError(t, err)
		assert.Same(t, reloaded, got)

		require.NotNil(t, saved)
		assert.Equal(t, 20, saved.Stock)
		assert.Equal(t, "Premium Wireless Headphones", saved.Name)
		assert.True(t, saved.Rating.Equal(decimal.RequireFromString("4.8")))
		require.NotNil(t, saved.OriginalPrice)
		assert.True(t, saved.OriginalPrice.Equal(decimal.RequireFromString("399.99")))
		assert.Equal(t, []string{"ANC"}, []string(saved.Features))
		assert.True(t, saved.IsNew)
		assert.True(t, saved.IsFeatured)
		mockRepo.AssertExpectations(t)
	})

	t.Run("merged_result_is_validated", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		svc := product.NewService(mockRepo)

		mockRepo.On("GetByID", mock.Anything, id).Return(stored(), nil).Once()

		rating := decimal.NewFromInt(6)
		_, err := svc.UpdateProduct(context.Background(), id, product.Patch{Rating: &rating})
		require.ErrorIs(t, err, product.ErrInvalidProduct)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("not_found", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		svc := product.NewService(mockRepo)

		mockRepo.On("GetByID", mock.Anything, id).Return(nil, product.ErrNotFound).Once()

		name := "Mug"
		_, err := svc.UpdateProduct(context.Background(), id, product.Patch{Name: &name})
		require.ErrorIs(t, err, product.ErrNotFound)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestProductService_DeleteAndGet(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := product.NewService(mockRepo)
	id := uuid.Must(uuid.NewV4())

	mockRepo.On("Delete", mock.Anything, id).Return(product.ErrNotFound).Once()
	mockRepo.On("GetByID", mock.Anything, id).Return(nil, errors.New("connection reset")).Once()

	require.ErrorIs(t, svc.DeleteProduct(context.Background(), id), product.ErrNotFound)

	_, err := svc.GetProduct(context.Background(), id)
	require.Error(t, err)
	assert.NotErrorIs(t, err, product.ErrNotFound)
	mockRepo.AssertExpectations(t)
}
