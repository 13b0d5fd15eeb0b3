package handlers

import (
	"fmt"
	"log"
	"strings"

	"insurance/internal/apierrors"
	"insurance/internal/middleware"
	"insurance/internal/models"
	"insurance/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the product routes with the Fiber app. The read
// routes bypass the role gate entirely; the mutating routes sit behind it.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, roleGate fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetAll)
	productRoutes.Get("/get", h.HandleFindOne)
	productRoutes.Post("/create", roleGate, h.HandleCreate)
	productRoutes.Put("/update", roleGate, h.HandleUpdate)
	productRoutes.Delete("/remove", roleGate, h.HandleRemove)
}

// CreateProductRequest represents the request body for product creation.
type CreateProductRequest struct {
	ProductCode int     `json:"productCode" validate:"required,gt=0"`
	ProductDesc string  `json:"productDesc" validate:"omitempty,max=255"`
	Location    string  `json:"location" validate:"required"`
	Price       float64 `json:"price" validate:"required,gt=0"`
}

// UpdateProductRequest represents the patch body for product updates.
type UpdateProductRequest struct {
	ProductDesc *string  `json:"productDesc" validate:"omitempty,max=255"`
	Location    *string  `json:"location"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
}

// requireAdmin re-checks the role attached by the middleware. The middleware
// already rejects non-admin mutations; both gates reject with the same
// message so a misconfigured route cannot slip through.
func requireAdmin(c *fiber.Ctx) error {
	role, _ := c.Locals(middleware.UserRoleKey).(string)
	if role != models.RoleAdmin {
		return apierrors.Unauthorized("Only admin can access this route")
	}
	return nil
}

// validationError flattens validator errors into a single BadRequest message.
func validationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apierrors.BadRequest("Validation failed")
	}
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
	}
	return apierrors.BadRequest("Validation failed: " + strings.Join(messages, "; "))
}

// productResponse renders a product with its price formatted to two decimal
// places. Only create and update responses use this; reads return the record
// as stored.
func productResponse(p *models.Product) fiber.Map {
	return fiber.Map{
		"id":          p.ID,
		"productCode": p.ProductCode,
		"productDesc": p.ProductDesc,
		"location":    p.Location,
		"price":       fmt.Sprintf("%.2f", p.Price),
	}
}

// HandleGetAll retrieves all products.
func (h *ProductHandler) HandleGetAll(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		log.Printf("Error getting all products: %v", err)
		return apierrors.FromError(err)
	}
	return c.JSON(products)
}

// HandleFindOne retrieves a product by product code and/or location.
func (h *ProductHandler) HandleFindOne(c *fiber.Ctx) error {
	productCode := c.QueryInt("productCode")
	location := c.Query("location")

	product, err := h.service.FindOne(productCode, location)
	if err != nil {
		return apierrors.FromError(err)
	}
	return c.JSON(product)
}

// HandleCreate creates a new product.
func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	if err := requireAdmin(c); err != nil {
		return err
	}

	var req CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create product request body: %v", err)
		return apierrors.BadRequest("Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(err)
	}

	product := &models.Product{
		ProductCode: req.ProductCode,
		ProductDesc: req.ProductDesc,
		Location:    req.Location,
		Price:       req.Price,
	}

	created, err := h.service.Create(product)
	if err != nil {
		return apierrors.FromError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(productResponse(created))
}

// HandleUpdate updates a product identified by its current
// (productCode, location) pair, both supplied as query parameters.
func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	if err := requireAdmin(c); err != nil {
		return err
	}

	productCode := c.QueryInt("productCode")
	currentLocation := c.Query("location")

	var req UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing update product request body: %v", err)
		return apierrors.BadRequest("Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(err)
	}

	patch := services.ProductPatch{
		ProductDesc: req.ProductDesc,
		Location:    req.Location,
		Price:       req.Price,
	}

	updated, err := h.service.Update(productCode, currentLocation, patch)
	if err != nil {
		return apierrors.FromError(err)
	}
	return c.JSON(productResponse(updated))
}

// HandleRemove deletes products by product code, optionally scoped to a
// single location.
func (h *ProductHandler) HandleRemove(c *fiber.Ctx) error {
	if err := requireAdmin(c); err != nil {
		return err
	}

	productCode := c.QueryInt("productCode")
	location := c.Query("location")

	if err := h.service.Remove(productCode, location); err != nil {
		return apierrors.FromError(err)
	}
	return c.JSON(fiber.Map{
		"message": "Product removed successfully",
	})
}
