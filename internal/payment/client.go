package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"tanam/internal/models"
)

// Config holds payment provider connection details.
type Config struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

// Client is an HTTP implementation of Provider. Every call runs under a
// bounded timeout; network failures and unreadable bodies come back as
// "unknown" outcomes rather than failures.
type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

// NewClient creates a new payment provider client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		secretKey: cfg.SecretKey,
		http:      &http.Client{Timeout: timeout},
	}
}

// paymentResponse is the provider's wire shape for a payment lookup.
type paymentResponse struct {
	PaymentKey string `json:"paymentKey"`
	OrderNo    string `json:"orderId"`
	Status     string `json:"status"`
	Amount     int64  `json:"totalAmount"`
	ApprovedAt string `json:"approvedAt"`
}

// GetPayment fetches the provider's record for an order token. The raw status
// string is normalized here; callers only ever see the canonical enum.
func (c *Client) GetPayment(ctx context.Context, orderNo string) (*models.PaymentRecord, error) {
	url := fmt.Sprintf("%s/v1/payments/orders/%s", c.baseURL, orderNo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build payment lookup request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment lookup for order %s failed: %w", orderNo, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrPaymentNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment lookup for order %s returned status %d", orderNo, resp.StatusCode)
	}

	var body paymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode payment lookup response: %w", err)
	}

	record := &models.PaymentRecord{
		PaymentKey: body.PaymentKey,
		OrderNo:    body.OrderNo,
		State:      models.NormalizePaymentState(body.Status),
		Amount:     body.Amount,
	}
	if body.ApprovedAt != "" {
		if t, err := time.Parse(time.RFC3339, body.ApprovedAt); err == nil {
			record.ApprovedAt = &t
		}
	}
	return record, nil
}

// cancelResponse is the provider's wire shape for a cancellation answer.
type cancelResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CancelPayment asks the provider to cancel a payment. Classification rules:
// transport errors and timeouts are Ambiguous; a 2xx with a readable body is
// OK; a non-2xx with a readable error body is Rejected; anything unparseable
// is Ambiguous.
func (c *Client) CancelPayment(ctx context.Context, paymentKey, reason string) (CancelOutcome, error) {
	url := fmt.Sprintf("%s/v1/payments/%s/cancel", c.baseURL, paymentKey)
	payload, err := json.Marshal(map[string]string{"cancelReason": reason})
	if err != nil {
		return CancelAmbiguous, fmt.Errorf("failed to marshal cancel request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return CancelAmbiguous, fmt.Errorf("failed to build cancel request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Timeout or connection failure: the provider may have cancelled.
		log.Printf("Cancel call for payment %s did not complete: %v", paymentKey, err)
		return CancelAmbiguous, nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("Cancel response body for payment %s unreadable: %v", paymentKey, err)
		return CancelAmbiguous, nil
	}

	var body cancelResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		log.Printf("Cancel response for payment %s unparseable: %v", paymentKey, err)
		return CancelAmbiguous, nil
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return CancelOK, nil
	}
	return CancelRejected, nil
}
