package repositories

import (
	"tanam/internal/models"
)

// OrderRepository defines the interface for order data access. Update is
// compare-and-set against the previously-read status, like BidRepository.
type OrderRepository interface {
	GetByID(id string) (*models.Order, error)
	GetByOrderNo(orderNo string) (*models.Order, error)
	Create(order *models.Order) error
	Update(order *models.Order, expectedStatus models.OrderStatus) error
}
