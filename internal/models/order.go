package models

import "time"

// OrderStatus represents the fulfillment state of an order.
type OrderStatus string

const (
	OrderCreated   OrderStatus = "created"
	OrderPaid      OrderStatus = "paid"
	OrderPreparing OrderStatus = "preparing"
	OrderShipping  OrderStatus = "shipping"
	OrderDelivered OrderStatus = "delivered"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// orderForwardPath is the only permitted forward progression; advances must
// target exactly the next element, no skipping.
var orderForwardPath = []OrderStatus{
	OrderCreated,
	OrderPaid,
	OrderPreparing,
	OrderShipping,
	OrderDelivered,
	OrderCompleted,
}

// Next returns the next status on the forward path, or "" if the status is
// terminal or off the path.
func (s OrderStatus) Next() OrderStatus {
	for i, st := range orderForwardPath {
		if st == s && i+1 < len(orderForwardPath) {
			return orderForwardPath[i+1]
		}
	}
	return ""
}

// Terminal reports whether the status admits no further transition.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// Cancellable reports whether an order in this status may still be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s == OrderCreated || s == OrderPaid
}

// BuyerInfo identifies the paying customer on an order.
type BuyerInfo struct {
	Name  string `json:"name" gorm:"column:buyer_name;type:varchar(100)"`
	Phone string `json:"phone" gorm:"column:buyer_phone;type:varchar(32)"`
}

// RecipientInfo identifies the delivery target on an order.
type RecipientInfo struct {
	Name    string `json:"name" gorm:"column:recipient_name;type:varchar(100)"`
	Phone   string `json:"phone" gorm:"column:recipient_phone;type:varchar(32)"`
	Address string `json:"address" gorm:"column:recipient_address;type:text"`
}

// Order represents a purchase transaction moving from creation to completion
// or cancellation. OrderNo is the external-facing token the payment provider
// keys its records by; ID is internal.
type Order struct {
	ID              string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderNo         string        `json:"order_no" gorm:"uniqueIndex;type:varchar(64)"`
	BidID           string        `json:"bid_id,omitempty" gorm:"type:varchar(36);index"`
	VendorID        string        `json:"vendor_id" gorm:"type:varchar(36);index"`
	Buyer           BuyerInfo     `json:"buyer" gorm:"embedded"`
	Recipient       RecipientInfo `json:"recipient" gorm:"embedded"`
	Price           int64         `json:"price"`
	Status          OrderStatus   `json:"status" gorm:"type:varchar(16);index"`
	ConversationID  string        `json:"conversation_id" gorm:"type:varchar(36)"`
	TrackingInfo    string        `json:"tracking_info" gorm:"type:varchar(255)"`
	PaymentKey      string        `json:"payment_key" gorm:"type:varchar(128)"`
	ReconcileNeeded bool          `json:"reconcile_needed"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
