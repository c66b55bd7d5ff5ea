package repositories

import (
	"sync"
	"time"

	"tanam/internal/models"

	"github.com/google/uuid"
)

// MockBidRepository is an in-memory implementation of BidRepository.
type MockBidRepository struct {
	bids map[string]models.Bid
	mu   sync.RWMutex
}

// NewMockBidRepository creates a new instance of MockBidRepository.
func NewMockBidRepository() *MockBidRepository {
	return &MockBidRepository{
		bids: make(map[string]models.Bid),
	}
}

// GetByID returns a bid by its ID.
func (r *MockBidRepository) GetByID(id string) (*models.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bid, ok := r.bids[id]
	if !ok {
		return nil, ErrNotFound
	}
	// Copy out so callers cannot mutate stored state.
	bid.SelectedProductIDs = append(models.StringList(nil), bid.SelectedProductIDs...)
	bid.ReferenceImages = append(models.StringList(nil), bid.ReferenceImages...)
	return &bid, nil
}

// Create adds a new bid.
func (r *MockBidRepository) Create(bid *models.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if bid.ID == "" {
		bid.ID = uuid.New().String()
	}
	if bid.Status == "" {
		bid.Status = models.BidPending
	}
	bid.CreatedAt = time.Now()
	bid.UpdatedAt = time.Now()
	r.bids[bid.ID] = *bid
	return nil
}

// Update writes the bid if the stored status still equals expectedStatus.
func (r *MockBidRepository) Update(bid *models.Bid, expectedStatus models.BidStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.bids[bid.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Status != expectedStatus {
		return ErrConflict
	}
	bid.CreatedAt = stored.CreatedAt
	bid.UpdatedAt = time.Now()
	r.bids[bid.ID] = *bid
	return nil
}
