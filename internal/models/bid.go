package models

import "time"

// BidStatus represents the lifecycle state of a vendor bid.
type BidStatus string

const (
	BidPending   BidStatus = "pending"
	BidReviewing BidStatus = "reviewing"
	BidBidded    BidStatus = "bidded"
	BidCompleted BidStatus = "completed"
)

// Terminal reports whether no further vendor-driven transition is allowed.
func (s BidStatus) Terminal() bool {
	return s == BidBidded || s == BidCompleted
}

// Bid represents a vendor's priced proposal against a customer's plant request.
// SelectedProductIDs is a set (insertion order irrelevant); ReferenceImages is
// an ordered list of at most MaxReferenceImages entries.
type Bid struct {
	ID                 string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CustomerID         string     `json:"customer_id" gorm:"type:varchar(36);index"`
	VendorID           string     `json:"vendor_id" gorm:"type:varchar(36);index"`
	PlantID            string     `json:"plant_id" gorm:"type:varchar(36)"`
	ConversationID     string     `json:"conversation_id" gorm:"type:varchar(36)"`
	Price              *int64     `json:"price"`
	VendorMessage      string     `json:"vendor_message" gorm:"type:text"`
	SelectedProductIDs StringList `json:"selected_product_ids" gorm:"type:text"`
	ReferenceImages    StringList `json:"reference_images" gorm:"type:text"`
	Status             BidStatus  `json:"status" gorm:"type:varchar(16);index"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// MaxReferenceImages caps the reference image list on a bid.
const MaxReferenceImages = 5

// HasProduct reports whether productID is already in the selection set.
func (b *Bid) HasProduct(productID string) bool {
	for _, id := range b.SelectedProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// AddProduct inserts productID into the selection set. It reports whether the
// set changed (false means the id was already selected).
func (b *Bid) AddProduct(productID string) bool {
	if b.HasProduct(productID) {
		return false
	}
	b.SelectedProductIDs = append(b.SelectedProductIDs, productID)
	return true
}

// RemoveProduct deletes productID from the selection set. It reports whether
// the set changed (false means the id was not selected).
func (b *Bid) RemoveProduct(productID string) bool {
	for i, id := range b.SelectedProductIDs {
		if id == productID {
			b.SelectedProductIDs = append(b.SelectedProductIDs[:i], b.SelectedProductIDs[i+1:]...)
			return true
		}
	}
	return false
}
