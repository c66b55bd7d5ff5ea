package repositories

import (
	"tanam/internal/models"
)

// BidRepository defines the interface for bid data access. Update is
// compare-and-set: the write carries the status the caller read and is
// rejected with ErrConflict if the stored status has moved since.
type BidRepository interface {
	GetByID(id string) (*models.Bid, error)
	Create(bid *models.Bid) error
	Update(bid *models.Bid, expectedStatus models.BidStatus) error
}
