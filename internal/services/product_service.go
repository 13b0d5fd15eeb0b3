package services

import (
	"errors"
	"log"
	"math"

	"insurance/internal/apierrors"
	"insurance/internal/models"
	"insurance/internal/repositories"
)

// ProductEventPublisher publishes product lifecycle events after successful
// mutations. A nil publisher disables publication.
type ProductEventPublisher interface {
	PublishProductEvent(event string, product *models.Product) error
}

// ProductPatch carries the optional fields of an update. Nil pointers leave
// the existing value untouched.
type ProductPatch struct {
	ProductDesc *string  `json:"productDesc"`
	Location    *string  `json:"location"`
	Price       *float64 `json:"price"`
}

// ProductService handles validation, uniqueness and CRUD for products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher ProductEventPublisher
}

// NewProductService creates a new ProductService. The publisher may be nil.
func NewProductService(repo repositories.ProductRepository, publisher ProductEventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
	}
}

// roundPrice normalizes a price to two decimal digits at write time.
func roundPrice(price float64) float64 {
	return math.Round(price*100) / 100
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// Create validates and persists a new product. The duplicate pre-check is a
// fast path only; the store's unique index on (productCode, location) is the
// authoritative guard, and its violation maps to the same Conflict.
func (s *ProductService) Create(product *models.Product) (*models.Product, error) {
	if !models.IsValidLocation(product.Location) {
		return nil, apierrors.BadRequest("Invalid location value provided")
	}

	if existing, err := s.repo.FindOne(product.ProductCode, product.Location); err == nil && existing != nil {
		return nil, apierrors.Conflict("Product with this location and product code already exists")
	}

	product.Price = roundPrice(product.Price)
	if err := s.repo.Create(product); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apierrors.Conflict("Product with this location and product code already exists")
		}
		return nil, apierrors.Internal(err.Error())
	}

	s.publish("product.created", product)
	return product, nil
}

// FindOne retrieves a product by whatever criteria were supplied. With no
// criteria at all the store is never queried.
func (s *ProductService) FindOne(productCode int, location string) (*models.Product, error) {
	if productCode == 0 && location == "" {
		return nil, apierrors.BadRequest("No product code and location provided")
	}

	product, err := s.repo.FindOne(productCode, location)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apierrors.NotFound("Product not found")
		}
		return nil, apierrors.Internal(err.Error())
	}
	return product, nil
}

// Update looks up a product by its current identity (productCode,
// currentLocation), merges the patch onto it and persists the result. The
// caller supplies the current location explicitly; the patch may move the
// product to the other location, in which case the unique index decides
// whether the new identity is free.
func (s *ProductService) Update(productCode int, currentLocation string, patch ProductPatch) (*models.Product, error) {
	if productCode == 0 {
		return nil, apierrors.BadRequest("No product code provided")
	}
	if currentLocation == "" {
		return nil, apierrors.BadRequest("No location provided")
	}

	product, err := s.repo.FindOne(productCode, currentLocation)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apierrors.NotFound("Product not found")
		}
		return nil, apierrors.Internal(err.Error())
	}

	if patch.Location != nil {
		if !models.IsValidLocation(*patch.Location) {
			return nil, apierrors.BadRequest("Invalid location value provided")
		}
		product.Location = *patch.Location
	}
	if patch.ProductDesc != nil {
		product.ProductDesc = *patch.ProductDesc
	}
	if patch.Price != nil {
		product.Price = roundPrice(*patch.Price)
	}

	if err := s.repo.Save(product); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, apierrors.Conflict("Product with this location and product code already exists")
		case errors.Is(err, repositories.ErrNotFound):
			return nil, apierrors.NotFound("Product not found")
		default:
			return nil, apierrors.Internal(err.Error())
		}
	}

	s.publish("product.updated", product)
	return product, nil
}

// Remove deletes products by code. An empty location deletes every row
// sharing the code across locations; a supplied location scopes the delete
// to a single (productCode, location) row.
func (s *ProductService) Remove(productCode int, location string) error {
	if productCode == 0 {
		return apierrors.BadRequest("No product code provided")
	}

	// Capture the affected identities first so the bulk case emits one
	// event per row rather than a single synthetic one.
	var matches []models.Product
	if s.publisher != nil {
		var err error
		if matches, err = s.repo.FindAll(productCode, location); err != nil {
			return apierrors.Internal(err.Error())
		}
	}

	affected, err := s.repo.Delete(productCode, location)
	if err != nil {
		return apierrors.Internal(err.Error())
	}
	if affected == 0 {
		return apierrors.NotFound("Product not found")
	}

	for i := range matches {
		s.publish("product.deleted", &matches[i])
	}
	return nil
}

func (s *ProductService) publish(event string, product *models.Product) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishProductEvent(event, product); err != nil {
		log.Printf("Warning: Failed to publish %s event for product %d: %v", event, product.ProductCode, err)
	}
}
