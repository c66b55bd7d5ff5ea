package repositories

import (
	"sync"
	"time"

	"tanam/internal/models"
)

// MockPaymentRepository is an in-memory implementation of PaymentRepository.
type MockPaymentRepository struct {
	records map[string]models.PaymentRecord // keyed by order no
	mu      sync.RWMutex
}

// NewMockPaymentRepository creates a new instance of MockPaymentRepository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		records: make(map[string]models.PaymentRecord),
	}
}

// GetByOrderNo returns the mirrored record for an order token.
func (r *MockPaymentRepository) GetByOrderNo(orderNo string) (*models.PaymentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[orderNo]
	if !ok {
		return nil, ErrNotFound
	}
	return &record, nil
}

// Upsert writes the mirrored record, replacing any previous one.
func (r *MockPaymentRepository) Upsert(record *models.PaymentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record.UpdatedAt = time.Now()
	r.records[record.OrderNo] = *record
	return nil
}
