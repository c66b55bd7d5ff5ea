package payment_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tanam/internal/models"
	"tanam/internal/payment"

	"github.com/stretchr/testify/assert"
)

func newTestClient(serverURL string, timeout time.Duration) *payment.Client {
	return payment.NewClient(payment.Config{
		BaseURL:   serverURL,
		SecretKey: "test-secret",
		Timeout:   timeout,
	})
}

func TestClient_GetPayment_NormalizesStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"paymentKey":"pay-1","orderId":"no-100","status":"DONE","totalAmount":15000,"approvedAt":"2024-05-01T10:00:00Z"}`))
	}))
	defer server.Close()

	record, err := newTestClient(server.URL, time.Second).GetPayment(context.Background(), "no-100")
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentSuccess, record.State)
	assert.Equal(t, "pay-1", record.PaymentKey)
	assert.Equal(t, int64(15000), record.Amount)
	assert.NotNil(t, record.ApprovedAt)
}

func TestClient_GetPayment_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, time.Second).GetPayment(context.Background(), "no-100")
	assert.ErrorIs(t, err, payment.ErrPaymentNotFound)
}

func TestClient_CancelPayment_Confirmed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"status":"CANCELLED"}`))
	}))
	defer server.Close()

	outcome, err := newTestClient(server.URL, time.Second).CancelPayment(context.Background(), "pay-1", "no stock")
	assert.NoError(t, err)
	assert.Equal(t, payment.CancelOK, outcome)
}

func TestClient_CancelPayment_ExplicitDenial(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"ALREADY_CANCELED","message":"already cancelled"}`))
	}))
	defer server.Close()

	outcome, err := newTestClient(server.URL, time.Second).CancelPayment(context.Background(), "pay-1", "no stock")
	assert.NoError(t, err)
	assert.Equal(t, payment.CancelRejected, outcome)
}

func TestClient_CancelPayment_TimeoutIsAmbiguous(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	outcome, err := newTestClient(server.URL, 50*time.Millisecond).CancelPayment(context.Background(), "pay-1", "no stock")
	assert.NoError(t, err)
	assert.Equal(t, payment.CancelAmbiguous, outcome)
}

func TestClient_CancelPayment_MalformedBodyIsAmbiguous(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<html>gateway error</html>`))
	}))
	defer server.Close()

	outcome, err := newTestClient(server.URL, time.Second).CancelPayment(context.Background(), "pay-1", "no stock")
	assert.NoError(t, err)
	assert.Equal(t, payment.CancelAmbiguous, outcome)
}

func TestFakeGateway_SeedAndCancel(t *testing.T) {
	gateway := payment.NewFakeGateway()
	gateway.Seed(models.PaymentRecord{
		PaymentKey: "pay-1", OrderNo: "no-100", State: models.PaymentSuccess, Amount: 15000,
	})

	record, err := gateway.GetPayment(context.Background(), "no-100")
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentSuccess, record.State)

	outcome, err := gateway.CancelPayment(context.Background(), "pay-1", "no stock")
	assert.NoError(t, err)
	assert.Equal(t, payment.CancelOK, outcome)

	record, err = gateway.GetPayment(context.Background(), "no-100")
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentCancelled, record.State)

	_, err = gateway.GetPayment(context.Background(), "missing")
	assert.ErrorIs(t, err, payment.ErrPaymentNotFound)
}
