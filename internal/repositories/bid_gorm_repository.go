package repositories

import (
	"errors"
	"fmt"

	"tanam/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMBidRepository is a GORM implementation of BidRepository.
type GORMBidRepository struct {
	db *gorm.DB
}

// NewGORMBidRepository creates a new instance of GORMBidRepository.
func NewGORMBidRepository(db *gorm.DB) *GORMBidRepository {
	return &GORMBidRepository{db: db}
}

// GetByID retrieves a single bid by its ID.
func (r *GORMBidRepository) GetByID(id string) (*models.Bid, error) {
	var bid models.Bid
	if err := r.db.First(&bid, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get bid by ID %s: %w", id, err)
	}
	return &bid, nil
}

// Create inserts a new bid.
func (r *GORMBidRepository) Create(bid *models.Bid) error {
	if bid.ID == "" {
		bid.ID = uuid.New().String()
	}
	if bid.Status == "" {
		bid.Status = models.BidPending
	}
	if err := r.db.Create(bid).Error; err != nil {
		return fmt.Errorf("failed to create bid: %w", err)
	}
	return nil
}

// Update writes the bid's mutable fields guarded by a status precondition.
// The WHERE clause carries the previously-read status, so a concurrent
// transition makes the write affect zero rows.
func (r *GORMBidRepository) Update(bid *models.Bid, expectedStatus models.BidStatus) error {
	res := r.db.Model(&models.Bid{}).
		Where("id = ? AND status = ?", bid.ID, expectedStatus).
		Updates(map[string]interface{}{
			"price":                bid.Price,
			"vendor_message":       bid.VendorMessage,
			"selected_product_ids": bid.SelectedProductIDs,
			"reference_images":     bid.ReferenceImages,
			"status":               bid.Status,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update bid %s: %w", bid.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		// Distinguish a missing row from a lost race.
		var count int64
		if err := r.db.Model(&models.Bid{}).Where("id = ?", bid.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to update bid %s: %w", bid.ID, err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}
