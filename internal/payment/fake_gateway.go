package payment

import (
	"context"
	"sync"
	"time"

	"tanam/internal/models"
)

// FakeGateway is an in-memory Provider for local runs and tests. Records are
// seeded directly; SetCancelOutcome forces the answer for a payment key so
// timeout and denial paths can be exercised deterministically.
type FakeGateway struct {
	mu       sync.RWMutex
	records  map[string]models.PaymentRecord // keyed by order no
	outcomes map[string]CancelOutcome        // keyed by payment key
}

// NewFakeGateway creates an empty fake provider.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		records:  make(map[string]models.PaymentRecord),
		outcomes: make(map[string]CancelOutcome),
	}
}

// Seed installs a provider-side record for an order token.
func (g *FakeGateway) Seed(record models.PaymentRecord) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.records[record.OrderNo] = record
}

// SetCancelOutcome forces the result of the next CancelPayment for a key.
func (g *FakeGateway) SetCancelOutcome(paymentKey string, outcome CancelOutcome) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.outcomes[paymentKey] = outcome
}

// GetPayment returns the seeded record or ErrPaymentNotFound.
func (g *FakeGateway) GetPayment(_ context.Context, orderNo string) (*models.PaymentRecord, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	record, ok := g.records[orderNo]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	return &record, nil
}

// CancelPayment applies the forced outcome (default CancelOK) and, when the
// cancel lands provider-side, flips the stored record to cancelled. An
// ambiguous answer still cancels the provider record: that is exactly the
// phantom case reconciliation exists for.
func (g *FakeGateway) CancelPayment(_ context.Context, paymentKey, _ string) (CancelOutcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	outcome, ok := g.outcomes[paymentKey]
	if !ok {
		outcome = CancelOK
	}

	if outcome == CancelOK || outcome == CancelAmbiguous {
		for orderNo, record := range g.records {
			if record.PaymentKey == paymentKey {
				record.State = models.PaymentCancelled
				record.UpdatedAt = time.Now()
				g.records[orderNo] = record
			}
		}
	}
	return outcome, nil
}
