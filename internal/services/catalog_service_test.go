package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"ecobazaar/internal/apperrors"
	"ecobazaar/internal/cache"
	"ecobazaar/internal/carbon"
	"ecobazaar/internal/models"
	"ecobazaar/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, id string, qty int) (bool, error) {
	args := m.Called(ctx, id, qty)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) CountBySeller(ctx context.Context, sellerID string) (int64, int64, error) {
	args := m.Called(ctx, sellerID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func newCatalog(repo *MockProductRepository, c cache.Cache) *services.CatalogService {
	return services.NewCatalogService(repo, carbon.NewEngine(carbon.DefaultConfig()), c, time.Minute)
}

func TestCatalogService_CreateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newCatalog(mockRepo, nil)
	seller := models.Identity{UserID: "seller-1", Role: models.RoleSeller}

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Product")).Return(nil).Once()

	product, err := service.CreateProduct(context.Background(), seller, services.NewProductInput{
		Product: models.Product{
			Name:          "Organic Cotton Tee",
			CategoryName:  "Sustainable Fashion",
			Price:         decimal.RequireFromString("499.00"),
			StockQuantity: 20,
			City:          "Jaipur",
			State:         "Rajasthan",
		},
		EcoInputs: carbon.EcoInputs{
			Materials:     []carbon.Input{{Name: "organic cotton", Weight: 0.5}},
			Manufacturing: []carbon.Input{{Name: "Cut & Sew", Weight: 0.2}},
			Packaging:     []carbon.Input{{Name: "Paper Wrap", Weight: 0.1}},
		},
	})
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)

	assert.Equal(t, "seller-1", product.SellerID)
	assert.InDelta(t, 2.15, product.CarbonFootprintPerUnit, 1e-9)
	assert.InDelta(t, 2.85, product.CarbonSavedPerItem, 1e-9)
	assert.True(t, strings.HasPrefix(product.Slug, "organic-cotton-tee-"))
	assert.NotEmpty(t, product.ID)
}

func TestCatalogService_CreateProductRequiresCapability(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newCatalog(mockRepo, nil)

	_, err := service.CreateProduct(context.Background(), models.Identity{UserID: "u-1", Role: models.RoleCustomer}, services.NewProductInput{
		Product: models.Product{Name: "Tee", Price: decimal.NewFromInt(10)},
	})
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCatalogService_FindProductReadsThroughCache(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newCatalog(mockRepo, cache.NewInMemoryCache())
	ctx := context.Background()

	expected := &models.Product{ID: "p-1", Name: "Jute Tote", Slug: "jute-tote", Price: decimal.RequireFromString("12.50")}
	mockRepo.On("GetByID", mock.Anything, "p-1").Return(expected, nil).Once()

	first, err := service.FindProduct(ctx, "p-1")
	require.NoError(t, err)
	second, err := service.FindProduct(ctx, "p-1")
	require.NoError(t, err)

	assert.Equal(t, expected.Name, first.Name)
	assert.Equal(t, expected.Name, second.Name)
	assert.True(t, second.Price.Equal(expected.Price))
	mockRepo.AssertNumberOfCalls(t, "GetByID", 1)
}

func TestCatalogService_FindProductBySlugMiss(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newCatalog(mockRepo, cache.NewInMemoryCache())
	ctx := context.Background()

	mockRepo.On("GetBySlug", mock.Anything, "missing").Return(nil, apperrors.NotFound("product", "missing")).Twice()

	_, err := service.FindProductBySlug(ctx, "missing")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	_, err = service.FindProductBySlug(ctx, "missing")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	mockRepo.AssertExpectations(t)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "bamboo-toothbrush-2-pack", services.Slugify("  Bamboo Toothbrush (2-Pack) "))
	assert.Equal(t, "eco-home-living", services.Slugify("Eco-Home & Living"))
}
