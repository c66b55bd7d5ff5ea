package services_test

import (
	"context"
	"errors"
	"testing"

	"tanam/internal/models"
	"tanam/internal/payment"
	"tanam/internal/repositories"
	"tanam/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of payment.Provider.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) GetPayment(ctx context.Context, orderNo string) (*models.PaymentRecord, error) {
	args := m.Called(ctx, orderNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentRecord), args.Error(1)
}

func (m *MockProvider) CancelPayment(ctx context.Context, paymentKey, reason string) (payment.CancelOutcome, error) {
	args := m.Called(ctx, paymentKey, reason)
	return args.Get(0).(payment.CancelOutcome), args.Error(1)
}

// failingConversationRepo drops appends with an error once armed, standing in
// for a transcript store outage.
type failingConversationRepo struct {
	*repositories.MockConversationRepository
	failAppend bool
}

func (r *failingConversationRepo) Append(conversationID string, msg models.Message) error {
	if r.failAppend {
		return errors.New("conversation store unavailable")
	}
	return r.MockConversationRepository.Append(conversationID, msg)
}

// promotingProvider mutates the order while the cancel call is in flight,
// standing in for a reconcile racing the cancellation.
type promotingProvider struct {
	orders  *repositories.MockOrderRepository
	orderID string
	from    models.OrderStatus
	to      models.OrderStatus
}

func (p *promotingProvider) GetPayment(ctx context.Context, orderNo string) (*models.PaymentRecord, error) {
	return nil, payment.ErrPaymentNotFound
}

func (p *promotingProvider) CancelPayment(ctx context.Context, paymentKey, reason string) (payment.CancelOutcome, error) {
	order, err := p.orders.GetByID(p.orderID)
	if err != nil {
		return payment.CancelAmbiguous, err
	}
	order.Status = p.to
	if err := p.orders.Update(order, p.from); err != nil {
		return payment.CancelAmbiguous, err
	}
	return payment.CancelOK, nil
}

type orderFixture struct {
	orders   *repositories.MockOrderRepository
	payments *repositories.MockPaymentRepository
	convs    *repositories.MockConversationRepository
	gateway  *payment.FakeGateway
	service  *services.OrderService
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{
		orders:   repositories.NewMockOrderRepository(),
		payments: repositories.NewMockPaymentRepository(),
		convs:    repositories.NewMockConversationRepository(),
		gateway:  payment.NewFakeGateway(),
	}
	f.service = services.NewOrderService(f.orders, f.payments, f.convs, f.gateway, nil)
	return f
}

func (f *orderFixture) seedOrder(t *testing.T, id string, status models.OrderStatus) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:             id,
		OrderNo:        "no-" + id,
		VendorID:       "vendor-1",
		Price:          15000,
		Status:         status,
		ConversationID: "conv-" + id,
	}
	assert.NoError(t, f.orders.Create(order))
	return order
}

func (f *orderFixture) seedSuccessfulPayment(t *testing.T, orderNo string) {
	t.Helper()
	record := models.PaymentRecord{
		PaymentKey: "pay-" + orderNo,
		OrderNo:    orderNo,
		State:      models.PaymentSuccess,
		Amount:     15000,
	}
	f.gateway.Seed(record)
	assert.NoError(t, f.payments.Upsert(&record))
}

func (f *orderFixture) messageCount(t *testing.T, conversationID string) int {
	t.Helper()
	conv, err := f.convs.Get(conversationID)
	if errors.Is(err, repositories.ErrNotFound) {
		return 0
	}
	assert.NoError(t, err)
	return len(conv.Messages)
}

func TestOrderService_AdvanceStatus_ForwardPath(t *testing.T) {
	f := newOrderFixture(t)
	f.seedOrder(t, "order-1", models.OrderPaid)

	for _, target := range []models.OrderStatus{
		models.OrderPreparing,
		models.OrderShipping,
		models.OrderDelivered,
		models.OrderCompleted,
	} {
		order, err := f.service.AdvanceStatus("order-1", target)
		assert.NoError(t, err)
		assert.Equal(t, target, order.Status)
	}

	// One system message per advance.
	assert.Equal(t, 4, f.messageCount(t, "conv-order-1"))

	// Completed is terminal.
	_, err := f.service.AdvanceStatus("order-1", models.OrderCompleted)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
}

func TestOrderService_AdvanceStatus_SkipRejected(t *testing.T) {
	f := newOrderFixture(t)
	f.seedOrder(t, "order-1", models.OrderPaid)

	_, err := f.service.AdvanceStatus("order-1", models.OrderDelivered)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	// Backward moves fail too.
	_, err = f.service.AdvanceStatus("order-1", models.OrderCreated)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	order, err := f.orders.GetByID("order-1")
	assert.NoError(t, err)
	assert.Equal(t, models.OrderPaid, order.Status)
	assert.Equal(t, 0, f.messageCount(t, "conv-order-1"))
}

func TestOrderService_CancelPayment_FromPreparingAlwaysFails(t *testing.T) {
	f := newOrderFixture(t)
	f.seedOrder(t, "order-1", models.OrderPreparing)
	f.seedSuccessfulPayment(t, "no-order-1")

	_, err := f.service.CancelPayment(context.Background(), "order-1", "changed my mind")
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	order, _ := f.orders.GetByID("order-1")
	assert.Equal(t, models.OrderPreparing, order.Status)
}

func TestOrderService_CancelPayment_RequiresSuccessfulPayment(t *testing.T) {
	f := newOrderFixture(t)
	f.seedOrder(t, "order-1", models.OrderCreated)

	// No payment record anywhere.
	_, err := f.service.CancelPayment(context.Background(), "order-1", "no stock")
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
}

func TestOrderService_CancelPayment_ProviderConfirms(t *testing.T) {
	f := newOrderFixture(t)
	f.seedOrder(t, "order-1", models.OrderPaid)
	f.seedSuccessfulPayment(t, "no-order-1")

	result, err := f.service.CancelPayment(context.Background(), "order-1", "no stock")
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.APICallSuccess)

	order, _ := f.orders.GetByID("order-1")
	assert.Equal(t, models.OrderCancelled, order.Status)
	assert.False(t, order.ReconcileNeeded)

	record, err := f.payments.GetByOrderNo("no-order-1")
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentCancelled, record.State)
	assert.Equal(t, 1, f.messageCount(t, "conv-order-1"))
}

func TestOrderService_CancelPayment_AmbiguousResponseCancelsOptimistically(t *testing.T) {
	f := newOrderFixture(t)
	f.seedOrder(t, "order-1", models.OrderPaid)
	f.seedSuccessfulPayment(t, "no-order-1")
	f.gateway.SetCancelOutcome("pay-no-order-1", payment.CancelAmbiguous)

	result, err := f.service.CancelPayment(context.Background(), "order-1", "no stock")
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.APICallSuccess)

	order, _ := f.orders.GetByID("order-1")
	assert.Equal(t, models.OrderCancelled, order.Status)
	assert.True(t, order.ReconcileNeeded, "ambiguous cancel must schedule a reconcile")
}

func TestOrderService_CancelPayment_ExplicitDenialLeavesStateUntouched(t *testing.T) {
	f := newOrderFixture(t)
	f.seedOrder(t, "order-1", models.OrderPaid)

	record := models.PaymentRecord{
		PaymentKey: "pay-1",
		OrderNo:    "no-order-1",
		State:      models.PaymentSuccess,
		Amount:     15000,
	}
	assert.NoError(t, f.payments.Upsert(&record))

	provider := new(MockProvider)
	provider.On("CancelPayment", mock.Anything, "pay-1", "no stock").
		Return(payment.CancelRejected, nil).Once()
	service := services.NewOrderService(f.orders, f.payments, f.convs, provider, nil)

	result, err := service.CancelPayment(context.Background(), "order-1", "no stock")
	assert.ErrorIs(t, err, services.ErrCancellationFailed)
	assert.False(t, result.Success)
	provider.AssertExpectations(t)

	order, _ := f.orders.GetByID("order-1")
	assert.Equal(t, models.OrderPaid, order.Status)
	assert.Equal(t, 0, f.messageCount(t, "conv-order-1"))
}

func TestOrderService_CancelPayment_RetriesAfterConcurrentPromotion(t *testing.T) {
	f := newOrderFixture(t)
	f.seedOrder(t, "order-1", models.OrderCreated)
	f.seedSuccessfulPayment(t, "no-order-1")

	// While the provider processes the cancel, a reconcile promotes the
	// order created->paid. The confirmed cancel must still land locally.
	provider := &promotingProvider{
		orders:  f.orders,
		orderID: "order-1",
		from:    models.OrderCreated,
		to:      models.OrderPaid,
	}
	service := services.NewOrderService(f.orders, f.payments, f.convs, provider, nil)

	result, err := service.CancelPayment(context.Background(), "order-1", "no stock")
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.APICallSuccess)

	order, err := f.orders.GetByID("order-1")
	assert.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, order.Status)
	assert.False(t, order.ReconcileNeeded)

	record, err := f.payments.GetByOrderNo("no-order-1")
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentCancelled, record.State)
	assert.Equal(t, 1, f.messageCount(t, "conv-order-1"))
}

func TestOrderService_CancelPayment_ConcurrentAdvanceKeepsReconcileFlag(t *testing.T) {
	f := newOrderFixture(t)
	f.seedOrder(t, "order-1", models.OrderPaid)
	f.seedSuccessfulPayment(t, "no-order-1")

	// The vendor moves the order to preparing while the provider cancels.
	// The local status can no longer be cancelled here, but the confirmed
	// provider-side cancel must stay visible for a later reconcile.
	provider := &promotingProvider{
		orders:  f.orders,
		orderID: "order-1",
		from:    models.OrderPaid,
		to:      models.OrderPreparing,
	}
	service := services.NewOrderService(f.orders, f.payments, f.convs, provider, nil)

	result, err := service.CancelPayment(context.Background(), "order-1", "no stock")
	assert.NoError(t, err)
	assert.True(t, result.APICallSuccess)

	order, err := f.orders.GetByID("order-1")
	assert.NoError(t, err)
	assert.Equal(t, models.OrderPreparing, order.Status)
	assert.True(t, order.ReconcileNeeded)

	record, err := f.payments.GetByOrderNo("no-order-1")
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentCancelled, record.State)
	// No cancellation message: the local order was never cancelled.
	assert.Equal(t, 0, f.messageCount(t, "conv-order-1"))
}

func TestOrderService_AdvanceStatus_StatusCommitsWhenTranscriptAppendFails(t *testing.T) {
	orders := repositories.NewMockOrderRepository()
	payments := repositories.NewMockPaymentRepository()
	convs := &failingConversationRepo{
		MockConversationRepository: repositories.NewMockConversationRepository(),
		failAppend:                 true,
	}
	service := services.NewOrderService(orders, payments, convs, payment.NewFakeGateway(), nil)

	order := &models.Order{
		ID:             "order-1",
		OrderNo:        "no-order-1",
		VendorID:       "vendor-1",
		Status:         models.OrderPaid,
		ConversationID: "conv-order-1",
	}
	assert.NoError(t, orders.Create(order))

	got, err := service.AdvanceStatus("order-1", models.OrderPreparing)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderPreparing, got.Status)

	stored, err := orders.GetByID("order-1")
	assert.NoError(t, err)
	assert.Equal(t, models.OrderPreparing, stored.Status)

	// Nothing landed in the transcript.
	_, err = convs.MockConversationRepository.Get("conv-order-1")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestOrderService_ReconcileFromPayment_PromotesCreatedToPaid(t *testing.T) {
	f := newOrderFixture(t)
	f.seedOrder(t, "100", models.OrderCreated)
	f.seedSuccessfulPayment(t, "no-100")

	order, err := f.service.ReconcileFromPayment(context.Background(), "100")
	assert.NoError(t, err)
	assert.Equal(t, models.OrderPaid, order.Status)
	assert.Equal(t, "pay-no-100", order.PaymentKey)
	assert.Equal(t, 1, f.messageCount(t, "conv-100"))
}

func TestOrderService_ReconcileFromPayment_MirrorMissFetchesProviderOnce(t *testing.T) {
	f := newOrderFixture(t)
	f.seedOrder(t, "100", models.OrderCreated)

	provider := new(MockProvider)
	provider.On("GetPayment", mock.Anything, "no-100").
		Return(&models.PaymentRecord{
			PaymentKey: "pay-1",
			OrderNo:    "no-100",
			State:      models.PaymentSuccess,
			Amount:     15000,
		}, nil).Once()
	service := services.NewOrderService(f.orders, f.payments, f.convs, provider, nil)

	order, err := service.ReconcileFromPayment(context.Background(), "100")
	assert.NoError(t, err)
	assert.Equal(t, models.OrderPaid, order.Status)
	provider.AssertExpectations(t)

	// The provider record is now mirrored locally.
	record, err := f.payments.GetByOrderNo("no-100")
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentSuccess, record.State)
}

func TestOrderService_ReconcileFromPayment_NoRecordIsNoOp(t *testing.T) {
	f := newOrderFixture(t)
	f.seedOrder(t, "100", models.OrderCreated)

	order, err := f.service.ReconcileFromPayment(context.Background(), "100")
	assert.NoError(t, err)
	assert.Equal(t, models.OrderCreated, order.Status)
	assert.Equal(t, 0, f.messageCount(t, "conv-100"))
}

func TestOrderService_ReconcileFromPayment_SettlesAmbiguousCancel(t *testing.T) {
	f := newOrderFixture(t)
	f.seedOrder(t, "order-1", models.OrderPaid)
	f.seedSuccessfulPayment(t, "no-order-1")
	f.gateway.SetCancelOutcome("pay-no-order-1", payment.CancelAmbiguous)

	_, err := f.service.CancelPayment(context.Background(), "order-1", "no stock")
	assert.NoError(t, err)

	// The fake gateway did process the cancel; reconcile settles the flag.
	order, err := f.service.ReconcileFromPayment(context.Background(), "order-1")
	assert.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, order.Status)
	assert.False(t, order.ReconcileNeeded)
}
