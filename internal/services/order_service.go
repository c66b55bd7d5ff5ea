package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"tanam/internal/events"
	"tanam/internal/models"
	"tanam/internal/payment"
	"tanam/internal/repositories"
)

// advanceMessages are the fixed per-transition transcript templates. Only
// vendor-driven advances carry one; the created->paid promotion has its own
// message on the reconcile path.
var advanceMessages = map[models.OrderStatus]string{
	models.OrderPreparing: "Your order is being prepared.",
	models.OrderShipping:  "Your order has been shipped.",
	models.OrderDelivered: "Your order has been delivered.",
	models.OrderCompleted: "Your order is complete. Thank you!",
}

// OrderService owns the order transition rules and the reconciliation against
// the payment provider's mirrored records.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	paymentRepo repositories.PaymentRepository
	convRepo    repositories.ConversationRepository
	provider    payment.Provider
	dispatcher  *events.Dispatcher
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	paymentRepo repositories.PaymentRepository,
	convRepo repositories.ConversationRepository,
	provider payment.Provider,
	dispatcher *events.Dispatcher,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		convRepo:    convRepo,
		provider:    provider,
		dispatcher:  dispatcher,
	}
}

// GetOrderByID retrieves a single order by its internal ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// CreateOrder creates a new order in created state.
func (s *OrderService) CreateOrder(order *models.Order) error {
	order.Status = models.OrderCreated
	return s.orderRepo.Create(order)
}

// AdvanceStatus moves an order one step along the forward path. The target
// must be exactly the next state; skips and backward moves are rejected. The
// status write commits regardless of whether the transcript append succeeds.
func (s *OrderService) AdvanceStatus(orderID string, target models.OrderStatus) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.Terminal() {
		return nil, fmt.Errorf("%w: order %s is %s", ErrInvalidTransition, orderID, order.Status)
	}
	if next := order.Status.Next(); target != next {
		return nil, fmt.Errorf("%w: cannot move order %s from %s to %s", ErrInvalidTransition, orderID, order.Status, target)
	}

	prev := order.Status
	order.Status = target
	if err := s.orderRepo.Update(order, prev); err != nil {
		return nil, err
	}

	if content, ok := advanceMessages[target]; ok {
		s.appendOrderMessage(order.ConversationID, content)
	}
	s.publish(order.ID, prev, order.Status)
	return order, nil
}

// CancelPayment cancels an order through the provider. Allowed only from
// created or paid with a successful provider record. An explicit provider
// denial leaves local state untouched; an ambiguous answer (timeout or
// unparseable body) cancels optimistically and flags the order for a later
// reconcile.
func (s *OrderService) CancelPayment(ctx context.Context, orderID, reason string) (models.CancelResult, error) {
	var result models.CancelResult

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return result, err
	}
	if !order.Status.Cancellable() {
		return result, fmt.Errorf("%w: order %s in %s cannot be cancelled", ErrInvalidTransition, orderID, order.Status)
	}

	record, err := s.mirroredPayment(ctx, order.OrderNo)
	if err != nil {
		return result, err
	}
	if record == nil || record.State != models.PaymentSuccess {
		return result, fmt.Errorf("%w: order %s has no successful payment to cancel", ErrInvalidTransition, orderID)
	}

	outcome, err := s.provider.CancelPayment(ctx, record.PaymentKey, reason)
	if err != nil {
		return result, fmt.Errorf("cancel call for order %s failed: %w", orderID, err)
	}

	switch outcome {
	case payment.CancelRejected:
		result.APICallSuccess = true
		return result, fmt.Errorf("%w: provider rejected cancellation of order %s", ErrCancellationFailed, orderID)

	case payment.CancelOK:
		result.Success = true
		result.APICallSuccess = true
		record.State = models.PaymentCancelled
		if err := s.paymentRepo.Upsert(record); err != nil {
			log.Printf("Warning: failed to mirror cancelled payment for order %s: %v", orderID, err)
		}

	case payment.CancelAmbiguous:
		// The provider may have cancelled; take the optimistic local view and
		// schedule a reconcile to settle it.
		log.Printf("Ambiguous cancel response for order %s; cancelling optimistically", orderID)
		result.Success = true
		order.ReconcileNeeded = true
	}

	// The provider has already acted at this point, so a precondition miss
	// on the local write must not drop the cancel. The only legal concurrent
	// move out of a cancellable state is the created->paid promotion;
	// re-read and retry the write from the fresh status.
	prev := order.Status
	for {
		order.Status = models.OrderCancelled
		updateErr := s.orderRepo.Update(order, prev)
		if updateErr == nil {
			break
		}
		if !errors.Is(updateErr, repositories.ErrConflict) {
			return models.CancelResult{}, updateErr
		}
		fresh, err := s.orderRepo.GetByID(orderID)
		if err != nil {
			return models.CancelResult{}, err
		}
		if fresh.Status == models.OrderCancelled {
			// A concurrent writer carried the cancel through already.
			return result, nil
		}
		if !fresh.Status.Cancellable() {
			// The vendor advanced the order mid-cancel. Keep its status, but
			// flag it so a later reconcile surfaces the provider-side cancel.
			fresh.ReconcileNeeded = true
			if err := s.orderRepo.Update(fresh, fresh.Status); err != nil {
				log.Printf("Warning: failed to flag order %s for reconcile: %v", orderID, err)
			}
			log.Printf("Order %s advanced to %s while the provider cancelled payment %s", orderID, fresh.Status, record.PaymentKey)
			return result, nil
		}
		fresh.ReconcileNeeded = fresh.ReconcileNeeded || order.ReconcileNeeded
		order = fresh
		prev = fresh.Status
	}

	s.appendOrderMessage(order.ConversationID, "Your order has been cancelled.")
	s.publish(order.ID, prev, order.Status)
	return result, nil
}

// ReconcileFromPayment aligns the local order status with the provider's
// view. A created order with a successful mirrored payment is promoted to
// paid; an optimistically-cancelled order has its pending reconcile settled.
// The at-most-once-per-view-session guard lives in the Reconciler driver.
func (s *OrderService) ReconcileFromPayment(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	switch {
	case order.Status == models.OrderCreated:
		record, err := s.mirroredPayment(ctx, order.OrderNo)
		if err != nil {
			return nil, err
		}
		if record == nil || record.State != models.PaymentSuccess {
			return order, nil
		}

		prev := order.Status
		order.Status = models.OrderPaid
		order.PaymentKey = record.PaymentKey
		if err := s.orderRepo.Update(order, prev); err != nil {
			if errors.Is(err, repositories.ErrConflict) {
				// Someone else already promoted; report the fresh state.
				return s.orderRepo.GetByID(orderID)
			}
			return nil, err
		}
		s.appendOrderMessage(order.ConversationID, "Payment confirmed. Your order is now paid.")
		s.publish(order.ID, prev, order.Status)

	case order.Status == models.OrderCancelled && order.ReconcileNeeded:
		record, err := s.provider.GetPayment(ctx, order.OrderNo)
		if err != nil {
			if errors.Is(err, payment.ErrPaymentNotFound) {
				return order, nil
			}
			return nil, err
		}
		if err := s.paymentRepo.Upsert(record); err != nil {
			log.Printf("Warning: failed to mirror payment for order %s: %v", orderID, err)
		}
		if record.State == models.PaymentCancelled {
			order.ReconcileNeeded = false
			if err := s.orderRepo.Update(order, order.Status); err != nil {
				return nil, err
			}
		} else {
			log.Printf("Order %s cancelled locally but provider reports %s; keeping reconcile flag", orderID, record.State)
		}
	}

	return order, nil
}

// mirroredPayment returns the local mirror for an order token, fetching and
// storing the provider's record once on a miss.
func (s *OrderService) mirroredPayment(ctx context.Context, orderNo string) (*models.PaymentRecord, error) {
	record, err := s.paymentRepo.GetByOrderNo(orderNo)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	record, err = s.provider.GetPayment(ctx, orderNo)
	if err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := s.paymentRepo.Upsert(record); err != nil {
		log.Printf("Warning: failed to mirror payment for order %s: %v", orderNo, err)
	}
	return record, nil
}

// appendOrderMessage writes a system-authored transcript message.
// Best-effort: a failed append is logged and never rolls back the status
// write that triggered it.
func (s *OrderService) appendOrderMessage(conversationID, content string) {
	if conversationID == "" {
		return
	}
	err := s.convRepo.Append(conversationID, models.Message{
		Role:    models.RoleSystem,
		Content: content,
	})
	if err != nil {
		log.Printf("Warning: failed to append message to conversation %s: %v", conversationID, err)
	}
}

func (s *OrderService) publish(orderID string, from, to models.OrderStatus) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Publish(events.Event{
		Type:     events.OrderStatusChanged,
		EntityID: orderID,
		From:     string(from),
		To:       string(to),
	})
}
