package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"tanam/internal/events"
	"tanam/internal/models"
	"tanam/internal/repositories"
)

// BidService owns the bid transition rules. Every mutation is a
// compare-and-set against the status the bid was read with, so concurrent
// writers cannot interleave a transition unnoticed.
type BidService struct {
	bidRepo     repositories.BidRepository
	productRepo repositories.ProductRepository
	convRepo    repositories.ConversationRepository
	dispatcher  *events.Dispatcher
}

// NewBidService creates a new BidService.
func NewBidService(
	bidRepo repositories.BidRepository,
	productRepo repositories.ProductRepository,
	convRepo repositories.ConversationRepository,
	dispatcher *events.Dispatcher,
) *BidService {
	return &BidService{
		bidRepo:     bidRepo,
		productRepo: productRepo,
		convRepo:    convRepo,
		dispatcher:  dispatcher,
	}
}

// GetBidByID retrieves a single bid by its ID.
func (s *BidService) GetBidByID(id string) (*models.Bid, error) {
	return s.bidRepo.GetByID(id)
}

// CreateBid creates a new bid in pending state.
func (s *BidService) CreateBid(bid *models.Bid) error {
	bid.Status = models.BidPending
	return s.bidRepo.Create(bid)
}

// AddProduct puts a catalog product into the bid's selection set. Adding an
// already-selected product is a no-op. The first add on a pending bid moves
// it to reviewing and appends one transcript message; later adds change the
// set silently.
func (s *BidService) AddProduct(bidID, productID string) (*models.Bid, error) {
	bid, err := s.bidRepo.GetByID(bidID)
	if err != nil {
		return nil, err
	}
	if bid.Status.Terminal() {
		return nil, fmt.Errorf("%w: bid %s is %s", ErrInvalidTransition, bidID, bid.Status)
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: product %s not in catalog", ErrValidation, productID)
		}
		return nil, err
	}
	if product.VendorID != bid.VendorID {
		return nil, fmt.Errorf("%w: product %s does not belong to vendor %s", ErrValidation, productID, bid.VendorID)
	}

	if !bid.AddProduct(productID) {
		// Duplicate add: no status change, no message.
		return bid, nil
	}

	prev := bid.Status
	if prev == models.BidPending {
		bid.Status = models.BidReviewing
	}
	if err := s.bidRepo.Update(bid, prev); err != nil {
		return nil, err
	}

	if prev == models.BidPending {
		s.appendBidMessage(bid.ConversationID, models.Message{
			Role:      models.RoleVendor,
			Content:   fmt.Sprintf("%s has been added to your bid.", product.Name),
			BidStatus: models.BidReviewing,
		})
		s.publish(bid.ID, prev, bid.Status)
	}
	return bid, nil
}

// RemoveProduct takes a product out of the selection set. Removing an absent
// product is a no-op. When the set empties on a reviewing bid, the bid
// reverts to pending and one "cleared" system message is appended.
func (s *BidService) RemoveProduct(bidID, productID string) (*models.Bid, error) {
	bid, err := s.bidRepo.GetByID(bidID)
	if err != nil {
		return nil, err
	}
	if bid.Status.Terminal() {
		return nil, fmt.Errorf("%w: bid %s is %s", ErrInvalidTransition, bidID, bid.Status)
	}

	if !bid.RemoveProduct(productID) {
		return bid, nil
	}

	prev := bid.Status
	cleared := len(bid.SelectedProductIDs) == 0 && prev == models.BidReviewing
	if cleared {
		bid.Status = models.BidPending
	}
	if err := s.bidRepo.Update(bid, prev); err != nil {
		return nil, err
	}

	if cleared {
		s.appendBidMessage(bid.ConversationID, models.Message{
			Role:      models.RoleSystem,
			Content:   "All products have been removed from the bid.",
			BidStatus: models.BidPending,
		})
		s.publish(bid.ID, prev, bid.Status)
	}
	return bid, nil
}

// SetPriceAndMessage sets the bid's price, vendor message and reference
// images. The status is not touched.
func (s *BidService) SetPriceAndMessage(bidID string, price int64, message string, images []string) (*models.Bid, error) {
	if price <= 0 {
		return nil, fmt.Errorf("%w: price must be a positive amount", ErrValidation)
	}
	if len(images) > models.MaxReferenceImages {
		return nil, fmt.Errorf("%w: at most %d reference images allowed", ErrValidation, models.MaxReferenceImages)
	}

	bid, err := s.bidRepo.GetByID(bidID)
	if err != nil {
		return nil, err
	}
	if bid.Status.Terminal() {
		return nil, ErrAlreadyFinalized
	}
	if len(bid.SelectedProductIDs) == 0 {
		return nil, fmt.Errorf("%w: no products selected", ErrValidation)
	}

	bid.Price = &price
	bid.VendorMessage = message
	bid.ReferenceImages = append(models.StringList(nil), images...)
	if err := s.bidRepo.Update(bid, bid.Status); err != nil {
		return nil, err
	}
	return bid, nil
}

// Finalize moves a reviewing bid to bidded and appends the detail/completed
// message pair. Under concurrent Finalize calls exactly one caller wins the
// compare-and-set, so exactly one pair is ever written.
func (s *BidService) Finalize(bidID string) (*models.Bid, error) {
	bid, err := s.bidRepo.GetByID(bidID)
	if err != nil {
		return nil, err
	}
	if bid.Status.Terminal() {
		return nil, ErrAlreadyFinalized
	}
	if bid.Price == nil {
		return nil, fmt.Errorf("%w: price not set", ErrValidation)
	}
	if len(bid.SelectedProductIDs) == 0 {
		return nil, fmt.Errorf("%w: no products selected", ErrValidation)
	}

	prev := bid.Status
	bid.Status = models.BidBidded
	if err := s.bidRepo.Update(bid, prev); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			// Lost the race; if another Finalize won, report it as such.
			if current, gerr := s.bidRepo.GetByID(bidID); gerr == nil && current.Status.Terminal() {
				return nil, ErrAlreadyFinalized
			}
		}
		return nil, err
	}

	// The detail message (when present) must precede the completion message;
	// the transcript reader depends on this ordering.
	now := time.Now()
	if bid.VendorMessage != "" {
		s.appendBidMessage(bid.ConversationID, models.Message{
			Role:      models.RoleVendor,
			Content:   bid.VendorMessage,
			Timestamp: now,
			Price:     bid.Price,
			Products:  s.snapshotProducts(bid.SelectedProductIDs),
			Images:    bid.ReferenceImages,
		})
	}
	s.appendBidMessage(bid.ConversationID, models.Message{
		Role:      models.RoleSystem,
		Content:   "The vendor has completed the bid.",
		Timestamp: now.Add(time.Millisecond),
		BidStatus: models.BidCompleted,
	})

	s.publish(bid.ID, prev, bid.Status)
	return bid, nil
}

// MarkCompleted is the external completion hook: order fulfillment marks the
// originating bid completed. Completed is terminal; repeating the call is a
// no-op.
func (s *BidService) MarkCompleted(bidID string) error {
	bid, err := s.bidRepo.GetByID(bidID)
	if err != nil {
		return err
	}
	if bid.Status == models.BidCompleted {
		return nil
	}
	if bid.Status != models.BidBidded {
		return fmt.Errorf("%w: bid %s is %s, not bidded", ErrInvalidTransition, bidID, bid.Status)
	}

	prev := bid.Status
	bid.Status = models.BidCompleted
	if err := s.bidRepo.Update(bid, prev); err != nil {
		return err
	}
	s.publish(bid.ID, prev, bid.Status)
	return nil
}

// snapshotProducts resolves the selection set into point-in-time snapshots.
// A product that fails to resolve keeps its id so the message is still usable.
func (s *BidService) snapshotProducts(ids []string) models.SnapshotList {
	snaps := make(models.SnapshotList, 0, len(ids))
	for _, id := range ids {
		product, err := s.productRepo.GetByID(id)
		if err != nil {
			log.Printf("Failed to snapshot product %s: %v", id, err)
			snaps = append(snaps, models.ProductSnapshot{ProductID: id})
			continue
		}
		snaps = append(snaps, models.ProductSnapshot{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
		})
	}
	return snaps
}

// appendBidMessage writes a transcript message. Append failures are logged
// and never rolled back into the status write.
func (s *BidService) appendBidMessage(conversationID string, msg models.Message) {
	if err := s.convRepo.Append(conversationID, msg); err != nil {
		log.Printf("Warning: failed to append message to conversation %s: %v", conversationID, err)
	}
}

func (s *BidService) publish(bidID string, from, to models.BidStatus) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Publish(events.Event{
		Type:     events.BidStatusChanged,
		EntityID: bidID,
		From:     string(from),
		To:       string(to),
	})
}
