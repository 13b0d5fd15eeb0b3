package repositories

import (
	"sync"

	"insurance/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository,
// used when no database is configured and in tests. It enforces the same
// (productCode, location) uniqueness the database index does.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetAll returns all products.
func (r *MockProductRepository) GetAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	return productList, nil
}

// FindOne returns the first product matching the supplied criteria.
func (r *MockProductRepository) FindOne(productCode int, location string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if productCode != 0 && p.ProductCode != productCode {
			continue
		}
		if location != "" && p.Location != location {
			continue
		}
		product := p
		return &product, nil
	}
	return nil, ErrNotFound
}

// FindAll returns every product matching the supplied criteria.
func (r *MockProductRepository) FindAll(productCode int, location string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var products []models.Product
	for _, p := range r.products {
		if productCode != 0 && p.ProductCode != productCode {
			continue
		}
		if location != "" && p.Location != location {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

// Create adds a new product, rejecting duplicate (productCode, location) pairs.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.products {
		if p.ProductCode == product.ProductCode && p.Location == product.Location {
			return ErrDuplicate
		}
	}

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	r.products[product.ID] = *product
	return nil
}

// Save modifies an existing product.
func (r *MockProductRepository) Save(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return ErrNotFound
	}
	for id, p := range r.products {
		if id != product.ID && p.ProductCode == product.ProductCode && p.Location == product.Location {
			return ErrDuplicate
		}
	}
	r.products[product.ID] = *product
	return nil
}

// Delete removes every product matching the filter.
func (r *MockProductRepository) Delete(productCode int, location string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var affected int64
	for id, p := range r.products {
		if p.ProductCode != productCode {
			continue
		}
		if location != "" && p.Location != location {
			continue
		}
		delete(r.products, id)
		affected++
	}
	return affected, nil
}
