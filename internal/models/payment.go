package models

import (
	"strings"
	"time"
)

// PaymentState is the canonical payment status used inside this service. The
// provider reports multi-variant raw strings ("success", "SUCCESS", "DONE",
// "COMPLETED", ...); they are normalized exactly once, at the payment package
// boundary, and no caller re-interprets raw provider strings.
type PaymentState string

const (
	PaymentReady     PaymentState = "ready"
	PaymentSuccess   PaymentState = "success"
	PaymentCancelled PaymentState = "cancelled"
	PaymentFailed    PaymentState = "failed"
	PaymentUnknown   PaymentState = "unknown"
)

// NormalizePaymentState maps a raw provider status string to the canonical
// enum. Unrecognized strings map to PaymentUnknown, never to PaymentFailed.
func NormalizePaymentState(raw string) PaymentState {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "ready", "in_progress", "waiting_for_deposit", "pending":
		return PaymentReady
	case "success", "done", "completed", "paid", "approved":
		return PaymentSuccess
	case "cancelled", "canceled", "partial_cancelled", "refunded":
		return PaymentCancelled
	case "failed", "aborted", "expired", "declined":
		return PaymentFailed
	default:
		return PaymentUnknown
	}
}

// PaymentRecord is the read-mostly local mirror of the provider's view of a
// payment. The provider owns it; this service only writes it back after a
// verification call.
type PaymentRecord struct {
	PaymentKey string       `json:"payment_key" gorm:"primaryKey;type:varchar(128)"`
	OrderNo    string       `json:"order_no" gorm:"uniqueIndex;type:varchar(64)"`
	State      PaymentState `json:"state" gorm:"type:varchar(16)"`
	Amount     int64        `json:"amount"`
	ApprovedAt *time.Time   `json:"approved_at,omitempty"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// CancelResult reports the outcome of a cancellation attempt. Success is the
// local decision; APICallSuccess is false when the provider's answer was
// ambiguous (timeout or unparseable body) and a follow-up reconcile is owed.
type CancelResult struct {
	Success        bool `json:"success"`
	APICallSuccess bool `json:"api_call_success"`
}
