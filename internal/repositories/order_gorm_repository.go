package repositories

import (
	"errors"
	"fmt"

	"tanam/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// GetByID retrieves a single order by its internal ID.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// GetByOrderNo retrieves a single order by its external-facing token.
func (r *GORMOrderRepository) GetByOrderNo(orderNo string) (*models.Order, error) {
	var order models.Order
	if err := r.db.First(&order, "order_no = ?", orderNo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order by order no %s: %w", orderNo, err)
	}
	return &order, nil
}

// Create inserts a new order.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.Status == "" {
		order.Status = models.OrderCreated
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// Update writes the order's mutable fields guarded by a status precondition.
func (r *GORMOrderRepository) Update(order *models.Order, expectedStatus models.OrderStatus) error {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, expectedStatus).
		Updates(map[string]interface{}{
			"status":           order.Status,
			"tracking_info":    order.TrackingInfo,
			"payment_key":      order.PaymentKey,
			"reconcile_needed": order.ReconcileNeeded,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update order %s: %w", order.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&models.Order{}).Where("id = ?", order.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to update order %s: %w", order.ID, err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}
