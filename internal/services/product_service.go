package services

import (
	"tanam/internal/models"
	"tanam/internal/repositories"
)

// ProductService handles read/write access to vendor catalogs.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// GetProductByID retrieves a single catalog entry.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// ListVendorProducts retrieves a vendor's catalog.
func (s *ProductService) ListVendorProducts(vendorID string) ([]models.Product, error) {
	return s.repo.ListByVendor(vendorID)
}

// CreateProduct adds a catalog entry.
func (s *ProductService) CreateProduct(product *models.Product) error {
	return s.repo.Create(product)
}
