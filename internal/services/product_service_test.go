package services_test

import (
	"testing"

	"insurance/internal/apierrors"
	"insurance/internal/models"
	"insurance/internal/repositories"
	"insurance/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll() ([]models.Product, error) {
	args := m.Called()
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) FindOne(productCode int, location string) (*models.Product, error) {
	args := m.Called(productCode, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(productCode int, location string) ([]models.Product, error) {
	args := m.Called(productCode, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Save(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(productCode int, location string) (int64, error) {
	args := m.Called(productCode, location)
	return args.Get(0).(int64), args.Error(1)
}

// MockEventPublisher is a mock implementation of services.ProductEventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishProductEvent(event string, product *models.Product) error {
	args := m.Called(event, product)
	return args.Error(0)
}

func assertAPIError(t *testing.T, err error, statusCode int, message string) {
	t.Helper()
	var apiErr *apierrors.Error
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, statusCode, apiErr.StatusCode)
	assert.Equal(t, message, apiErr.Message)
}

func TestProductService_Create(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPublisher := new(MockEventPublisher)
	service := services.NewProductService(mockRepo, mockPublisher)

	newProduct := &models.Product{ProductCode: 1000, Location: models.LocationWestMalaysia, Price: 300}

	mockRepo.On("FindOne", 1000, models.LocationWestMalaysia).Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", newProduct).Return(nil).Once()
	mockPublisher.On("PublishProductEvent", "product.created", newProduct).Return(nil).Once()

	created, err := service.Create(newProduct)
	assert.NoError(t, err)
	assert.Equal(t, 300.0, created.Price)
	mockRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestProductService_Create_RoundsPrice(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	newProduct := &models.Product{ProductCode: 1001, Location: models.LocationEastMalaysia, Price: 123.456}

	mockRepo.On("FindOne", 1001, models.LocationEastMalaysia).Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", newProduct).Return(nil).Once()

	created, err := service.Create(newProduct)
	assert.NoError(t, err)
	assert.Equal(t, 123.46, created.Price)
	mockRepo.AssertExpectations(t)
}

func TestProductService_Create_InvalidLocation(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	_, err := service.Create(&models.Product{ProductCode: 1000, Location: "Narnia", Price: 1})
	assertAPIError(t, err, fiber.StatusBadRequest, "Invalid location value provided")

	// The store is never touched for an invalid location
	mockRepo.AssertNotCalled(t, "FindOne", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestProductService_Create_Duplicate(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	existing := &models.Product{ID: "existing-id", ProductCode: 1000, Location: models.LocationWestMalaysia, Price: 300}

	// Duplicate caught by the advisory pre-check
	mockRepo.On("FindOne", 1000, models.LocationWestMalaysia).Return(existing, nil).Once()
	_, err := service.Create(&models.Product{ProductCode: 1000, Location: models.LocationWestMalaysia, Price: 300})
	assertAPIError(t, err, fiber.StatusConflict, "Product with this location and product code already exists")
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)

	// Duplicate caught by the store's unique index after the pre-check misses
	mockRepo.On("FindOne", 1000, models.LocationWestMalaysia).Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.Product")).Return(repositories.ErrDuplicate).Once()
	_, err = service.Create(&models.Product{ProductCode: 1000, Location: models.LocationWestMalaysia, Price: 300})
	assertAPIError(t, err, fiber.StatusConflict, "Product with this location and product code already exists")
	mockRepo.AssertExpectations(t)
}

func TestProductService_FindOne(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	expected := &models.Product{ID: "1", ProductCode: 1000, Location: models.LocationWestMalaysia, Price: 300}

	mockRepo.On("FindOne", 1000, models.LocationWestMalaysia).Return(expected, nil).Once()
	product, err := service.FindOne(1000, models.LocationWestMalaysia)
	assert.NoError(t, err)
	assert.Equal(t, expected, product)

	// Partial criteria are passed through as a partial filter
	mockRepo.On("FindOne", 0, models.LocationEastMalaysia).Return(expected, nil).Once()
	_, err = service.FindOne(0, models.LocationEastMalaysia)
	assert.NoError(t, err)

	mockRepo.On("FindOne", 99, "").Return(nil, repositories.ErrNotFound).Once()
	_, err = service.FindOne(99, "")
	assertAPIError(t, err, fiber.StatusNotFound, "Product not found")

	mockRepo.AssertExpectations(t)
}

func TestProductService_FindOne_NoCriteria(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	_, err := service.FindOne(0, "")
	assertAPIError(t, err, fiber.StatusBadRequest, "No product code and location provided")

	// The store is never queried when no criteria are given
	mockRepo.AssertNotCalled(t, "FindOne", mock.Anything, mock.Anything)
}

func TestProductService_Update(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPublisher := new(MockEventPublisher)
	service := services.NewProductService(mockRepo, mockPublisher)

	stored := &models.Product{ID: "1", ProductCode: 1000, ProductDesc: "Sedan", Location: models.LocationWestMalaysia, Price: 300}
	newPrice := 400.505

	mockRepo.On("FindOne", 1000, models.LocationWestMalaysia).Return(stored, nil).Once()
	mockRepo.On("Save", stored).Return(nil).Once()
	mockPublisher.On("PublishProductEvent", "product.updated", stored).Return(nil).Once()

	updated, err := service.Update(1000, models.LocationWestMalaysia, services.ProductPatch{Price: &newPrice})
	assert.NoError(t, err)
	assert.Equal(t, 400.51, updated.Price)
	assert.Equal(t, "Sedan", updated.ProductDesc)
	mockRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestProductService_Update_MissingIdentity(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	_, err := service.Update(0, models.LocationWestMalaysia, services.ProductPatch{})
	assertAPIError(t, err, fiber.StatusBadRequest, "No product code provided")

	_, err = service.Update(1000, "", services.ProductPatch{})
	assertAPIError(t, err, fiber.StatusBadRequest, "No location provided")

	mockRepo.AssertNotCalled(t, "FindOne", mock.Anything, mock.Anything)
}

// A lookup under a location the product never lived in must not find the
// row stored under the other location.
func TestProductService_Update_WrongLocationNotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	newPrice := 400.0
	mockRepo.On("FindOne", 1000, models.LocationEastMalaysia).Return(nil, repositories.ErrNotFound).Once()

	_, err := service.Update(1000, models.LocationEastMalaysia, services.ProductPatch{Price: &newPrice})
	assertAPIError(t, err, fiber.StatusNotFound, "Product not found")
	mockRepo.AssertNotCalled(t, "Save", mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestProductService_Update_MoveToTakenIdentity(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	stored := &models.Product{ID: "1", ProductCode: 1000, Location: models.LocationWestMalaysia, Price: 300}
	east := models.LocationEastMalaysia

	mockRepo.On("FindOne", 1000, models.LocationWestMalaysia).Return(stored, nil).Once()
	mockRepo.On("Save", stored).Return(repositories.ErrDuplicate).Once()

	_, err := service.Update(1000, models.LocationWestMalaysia, services.ProductPatch{Location: &east})
	assertAPIError(t, err, fiber.StatusConflict, "Product with this location and product code already exists")
	mockRepo.AssertExpectations(t)
}

func TestProductService_Remove(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPublisher := new(MockEventPublisher)
	service := services.NewProductService(mockRepo, mockPublisher)

	west := models.Product{ID: "1", ProductCode: 1000, Location: models.LocationWestMalaysia, Price: 300}
	east := models.Product{ID: "2", ProductCode: 1000, Location: models.LocationEastMalaysia, Price: 450}

	// Scoped delete removes a single row and emits one event
	mockRepo.On("FindAll", 1000, models.LocationWestMalaysia).Return([]models.Product{west}, nil).Once()
	mockRepo.On("Delete", 1000, models.LocationWestMalaysia).Return(int64(1), nil).Once()
	mockPublisher.On("PublishProductEvent", "product.deleted", &west).Return(nil).Once()
	err := service.Remove(1000, models.LocationWestMalaysia)
	assert.NoError(t, err)

	// Code-only delete removes every row sharing the code and emits one
	// event per affected identity
	mockRepo.On("FindAll", 1000, "").Return([]models.Product{west, east}, nil).Once()
	mockRepo.On("Delete", 1000, "").Return(int64(2), nil).Once()
	mockPublisher.On("PublishProductEvent", "product.deleted", &west).Return(nil).Once()
	mockPublisher.On("PublishProductEvent", "product.deleted", &east).Return(nil).Once()
	err = service.Remove(1000, "")
	assert.NoError(t, err)

	mockRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestProductService_Remove_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("Delete", 1000, "").Return(int64(0), nil).Once()
	err := service.Remove(1000, "")
	assertAPIError(t, err, fiber.StatusNotFound, "Product not found")

	err = service.Remove(0, "")
	assertAPIError(t, err, fiber.StatusBadRequest, "No product code provided")

	mockRepo.AssertExpectations(t)
}
