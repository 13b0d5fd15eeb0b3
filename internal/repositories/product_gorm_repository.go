package repositories

import (
	"errors"
	"fmt"

	"insurance/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
// It expects the DB to be opened with TranslateError enabled so that
// duplicate-key violations surface as gorm.ErrDuplicatedKey.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// FindOne retrieves the first product matching the supplied criteria.
// Absent criteria are left out of the filter.
func (r *GORMProductRepository) FindOne(productCode int, location string) (*models.Product, error) {
	filter := map[string]interface{}{}
	if productCode != 0 {
		filter["productCode"] = productCode
	}
	if location != "" {
		filter["location"] = location
	}

	var product models.Product
	if err := r.db.Where(filter).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.Create(product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Save persists all fields of an existing product.
func (r *GORMProductRepository) Save(product *models.Product) error {
	res := r.db.Save(product) // Save updates all fields, including zero values
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to save product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindAll retrieves every product matching the supplied criteria. Absent
// criteria are left out of the filter.
func (r *GORMProductRepository) FindAll(productCode int, location string) ([]models.Product, error) {
	filter := map[string]interface{}{}
	if productCode != 0 {
		filter["productCode"] = productCode
	}
	if location != "" {
		filter["location"] = location
	}

	var products []models.Product
	if err := r.db.Where(filter).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	return products, nil
}

// Delete removes every product matching the filter and reports how many
// rows were affected. An empty location deletes across all locations. The
// delete is unscoped: a removed (productCode, location) identity frees its
// slot in the unique index so the pair can be created again.
func (r *GORMProductRepository) Delete(productCode int, location string) (int64, error) {
	filter := map[string]interface{}{"productCode": productCode}
	if location != "" {
		filter["location"] = location
	}

	res := r.db.Unscoped().Where(filter).Delete(&models.Product{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete product: %w", res.Error)
	}
	return res.RowsAffected, nil
}
