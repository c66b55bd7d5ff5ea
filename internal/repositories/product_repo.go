package repositories

import (
	"tanam/internal/models"
)

// ProductRepository defines the interface for vendor-catalog data access.
type ProductRepository interface {
	GetByID(id string) (*models.Product, error)
	ListByVendor(vendorID string) ([]models.Product, error)
	Create(product *models.Product) error
}
