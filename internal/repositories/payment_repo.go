package repositories

import (
	"tanam/internal/models"
)

// PaymentRepository stores the local mirror of the provider's payment
// records. The provider is the source of truth; this mirror is read-mostly
// and refreshed after provider verification calls.
type PaymentRepository interface {
	GetByOrderNo(orderNo string) (*models.PaymentRecord, error)
	Upsert(record *models.PaymentRecord) error
}
