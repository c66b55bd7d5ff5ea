package repositories

import (
	"errors"
	"fmt"

	"tanam/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMPaymentRepository is a GORM implementation of PaymentRepository.
type GORMPaymentRepository struct {
	db *gorm.DB
}

// NewGORMPaymentRepository creates a new instance of GORMPaymentRepository.
func NewGORMPaymentRepository(db *gorm.DB) *GORMPaymentRepository {
	return &GORMPaymentRepository{db: db}
}

// GetByOrderNo retrieves the mirrored record for an order token.
func (r *GORMPaymentRepository) GetByOrderNo(orderNo string) (*models.PaymentRecord, error) {
	var record models.PaymentRecord
	if err := r.db.First(&record, "order_no = ?", orderNo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get payment record for order %s: %w", orderNo, err)
	}
	return &record, nil
}

// Upsert writes the mirrored record, replacing any previous one for the
// same payment key.
func (r *GORMPaymentRepository) Upsert(record *models.PaymentRecord) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "payment_key"}},
		UpdateAll: true,
	}).Create(record).Error
	if err != nil {
		return fmt.Errorf("failed to upsert payment record %s: %w", record.PaymentKey, err)
	}
	return nil
}
