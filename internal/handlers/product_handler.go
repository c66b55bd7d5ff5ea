package handlers

import (
	"log"

	"tanam/internal/models"
	"tanam/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for vendor catalogs.
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

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/vendors/:vendorId/products", h.HandleListVendorProducts)
	router.Get("/products/:id", h.HandleGetProduct)
	router.Post("/products", h.HandleCreateProduct)
}

// HandleListVendorProducts lists a vendor's catalog.
func (h *ProductHandler) HandleListVendorProducts(c *fiber.Ctx) error {
	vendorID := c.Params("vendorId")
	products, err := h.service.ListVendorProducts(vendorID)
	if err != nil {
		log.Printf("Error listing products for vendor %s: %v", vendorID, err)
		return errorJSON(c, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

// HandleGetProduct retrieves a single catalog entry.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	productID := c.Params("id")
	product, err := h.service.GetProductByID(productID)
	if err != nil {
		log.Printf("Error getting product %s: %v", productID, err)
		return errorJSON(c, "Could not retrieve product", err)
	}
	return c.JSON(product)
}

// HandleCreateProduct adds a catalog entry.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(&product); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid product",
			"error":   err.Error(),
		})
	}

	if err := h.service.CreateProduct(&product); err != nil {
		log.Printf("Error creating product: %v", err)
		return errorJSON(c, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}
