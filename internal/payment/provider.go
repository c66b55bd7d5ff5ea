package payment

import (
	"context"
	"errors"

	"tanam/internal/models"
)

// ErrPaymentNotFound is returned when the provider has no record for the
// given order token.
var ErrPaymentNotFound = errors.New("payment not found")

// CancelOutcome classifies the provider's answer to a cancellation request.
// A timeout or an unparseable body is Ambiguous, never Rejected: the provider
// may have processed the cancel even though we never saw a usable response.
type CancelOutcome int

const (
	// CancelOK means the provider confirmed the cancellation.
	CancelOK CancelOutcome = iota
	// CancelRejected means the provider explicitly denied the cancellation.
	CancelRejected
	// CancelAmbiguous means the answer was a timeout or malformed; the true
	// outcome is unknown and must be reconciled later.
	CancelAmbiguous
)

// Provider is the external payment-gateway collaborator. It is the source of
// truth for payment success and cancellation. Raw provider status strings are
// normalized into models.PaymentState before records leave this package.
type Provider interface {
	GetPayment(ctx context.Context, orderNo string) (*models.PaymentRecord, error)
	CancelPayment(ctx context.Context, paymentKey, reason string) (CancelOutcome, error)
}
