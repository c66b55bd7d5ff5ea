package repositories

import (
	"sync"
	"time"

	"tanam/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// GetByID returns an order by its internal ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &order, nil
}

// GetByOrderNo returns an order by its external-facing token.
func (r *MockOrderRepository) GetByOrderNo(orderNo string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.orders {
		if order.OrderNo == orderNo {
			o := order
			return &o, nil
		}
	}
	return nil, ErrNotFound
}

// Create adds a new order.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.Status == "" {
		order.Status = models.OrderCreated
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	return nil
}

// Update writes the order if the stored status still equals expectedStatus.
func (r *MockOrderRepository) Update(order *models.Order, expectedStatus models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[order.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Status != expectedStatus {
		return ErrConflict
	}
	order.CreatedAt = stored.CreatedAt
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	return nil
}
