package services

import (
	"context"
	"sync"

	"tanam/internal/models"
)

// Reconciler drives payment reconciliation from order-detail views. Each
// (view session, order) pair reconciles at most once, so a page re-render
// cannot amplify provider calls or repeat the created->paid promotion.
type Reconciler struct {
	orders *OrderService

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewReconciler creates a new Reconciler.
func NewReconciler(orders *OrderService) *Reconciler {
	return &Reconciler{
		orders: orders,
		seen:   make(map[string]struct{}),
	}
}

// OnOrderView is invoked when an order detail view opens. The first call per
// (sessionID, orderID) runs a reconcile; later calls just read the order. A
// failed reconcile releases the claim, so the session's next view retries.
func (r *Reconciler) OnOrderView(ctx context.Context, sessionID, orderID string) (*models.Order, error) {
	if !r.claim(sessionID, orderID) {
		return r.orders.GetOrderByID(orderID)
	}
	order, err := r.orders.ReconcileFromPayment(ctx, orderID)
	if err != nil {
		r.release(sessionID, orderID)
		return nil, err
	}
	return order, nil
}

// EndSession releases all reconcile claims held by a view session.
func (r *Reconciler) EndSession(sessionID string) {
	prefix := sessionID + "\x00"
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.seen {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(r.seen, key)
		}
	}
}

// claim marks the pair as reconciled and reports whether this caller was
// first. Claiming before the reconcile runs keeps the guard at-most-once
// even when calls race.
func (r *Reconciler) claim(sessionID, orderID string) bool {
	key := sessionID + "\x00" + orderID
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[key]; ok {
		return false
	}
	r.seen[key] = struct{}{}
	return true
}

func (r *Reconciler) release(sessionID, orderID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.seen, sessionID+"\x00"+orderID)
}
