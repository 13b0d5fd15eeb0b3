package repositories

import (
	"errors"

	"insurance/internal/models"
)

// Sentinel errors translated from the underlying store so services do not
// depend on driver error types.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// ProductRepository defines the interface for product data access.
// FindOne and Delete build their filter from the supplied criteria only:
// a zero productCode or empty location is omitted from the filter.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	FindOne(productCode int, location string) (*models.Product, error)
	FindAll(productCode int, location string) ([]models.Product, error)
	Create(product *models.Product) error
	Save(product *models.Product) error
	Delete(productCode int, location string) (int64, error)
}
