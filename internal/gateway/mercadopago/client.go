// Package mercadopago wraps the Mercado Pago REST API: checkout preference
// creation, payment lookup for webhook notifications, and refunds.
package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"
)

type Client struct {
	accessToken string
	baseURL     string
	httpc       *http.Client
	logger      *log.Logger
}

func New(accessToken, baseURL string, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.mercadopago.com"
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		accessToken: accessToken,
		baseURL:     baseURL,
		httpc:       &http.Client{Timeout: 15 * time.Second},
		logger:      logger,
	}
}

// APIError is a rejection from Mercado Pago itself, as opposed to a transport
// failure. Callers treat it as an upstream (bad gateway) condition.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mercadopago: status %d: %s", e.StatusCode, e.Message)
}

type PreferenceItem struct {
	Title          string
	Quantity       int
	UnitPriceCents int64
}

type CreatePreferenceRequest struct {
	ExternalReference string
	Items             []PreferenceItem
	ShippingCostCents int64
	SuccessURL        string
	FailureURL        string
	PendingURL        string
	NotificationURL   string
}

type Preference struct {
	ID        string
	InitPoint string
}

type preferenceItemWire struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

type preferenceWire struct {
	Items    []preferenceItemWire `json:"items"`
	BackURLs struct {
		Success string `json:"success"`
		Failure string `json:"failure"`
		Pending string `json:"pending"`
	} `json:"back_urls"`
	AutoReturn        string `json:"auto_return,omitempty"`
	NotificationURL   string `json:"notification_url"`
	ExternalReference string `json:"external_reference"`
}

type preferenceResponseWire struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

// CreatePreference registers a hosted-checkout preference. Shipping is
// attached as an extra line item so the buyer pays it in the same charge.
func (c *Client) CreatePreference(ctx context.Context, req CreatePreferenceRequest) (*Preference, error) {
	body := preferenceWire{
		NotificationURL:   req.NotificationURL,
		ExternalReference: req.ExternalReference,
	}
	body.BackURLs.Success = req.SuccessURL
	body.BackURLs.Failure = req.FailureURL
	body.BackURLs.Pending = req.PendingURL
	if req.SuccessURL != "" {
		body.AutoReturn = "approved"
	}

	for _, item := range req.Items {
		body.Items = append(body.Items, preferenceItemWire{
			Title:      item.Title,
			Quantity:   item.Quantity,
			UnitPrice:  centsToUnits(item.UnitPriceCents),
			CurrencyID: "ARS",
		})
	}
	if req.ShippingCostCents > 0 {
		body.Items = append(body.Items, preferenceItemWire{
			Title:      "Envío",
			Quantity:   1,
			UnitPrice:  centsToUnits(req.ShippingCostCents),
			CurrencyID: "ARS",
		})
	}

	var resp preferenceResponseWire
	if err := c.do(ctx, http.MethodPost, "/checkout/preferences", body, &resp); err != nil {
		return nil, err
	}
	c.logger.Printf("mercadopago: preference created id=%s ref=%s", resp.ID, req.ExternalReference)
	return &Preference{ID: resp.ID, InitPoint: resp.InitPoint}, nil
}

// PaymentInfo is the subset of a provider payment the webhook flow needs.
type PaymentInfo struct {
	ID                string
	Status            string
	PaymentMethod     string
	AmountCents       int64
	ExternalReference string
}

type paymentResponseWire struct {
	ID                json.Number `json:"id"`
	Status            string      `json:"status"`
	PaymentMethodID   string      `json:"payment_method_id"`
	TransactionAmount float64     `json:"transaction_amount"`
	ExternalReference string      `json:"external_reference"`
}

// GetPayment fetches the authoritative payment record for a notification.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*PaymentInfo, error) {
	var resp paymentResponseWire
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil, &resp); err != nil {
		return nil, err
	}
	return &PaymentInfo{
		ID:                resp.ID.String(),
		Status:            resp.Status,
		PaymentMethod:     resp.PaymentMethodID,
		AmountCents:       unitsToCents(resp.TransactionAmount),
		ExternalReference: resp.ExternalReference,
	}, nil
}

type RefundResult struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// Refund issues a full refund for a payment.
func (c *Client) Refund(ctx context.Context, paymentID string) (*RefundResult, error) {
	var resp struct {
		ID     json.Number `json:"id"`
		Status string      `json:"status"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/payments/"+paymentID+"/refunds", struct{}{}, &resp); err != nil {
		return nil, err
	}
	id, _ := strconv.ParseInt(resp.ID.String(), 10, 64)
	c.logger.Printf("mercadopago: refund issued payment_id=%s refund_id=%d status=%s", paymentID, id, resp.Status)
	return &RefundResult{ID: id, Status: resp.Status}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("mercadopago: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("mercadopago: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("mercadopago: decode response: %w", err)
	}
	return nil
}

func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return "request rejected"
}

func centsToUnits(cents int64) float64 {
	return float64(cents) / 100
}

func unitsToCents(units float64) int64 {
	return int64(math.Round(units * 100))
}
