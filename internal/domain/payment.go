package domain

import "time"

// Payment records one provider notification. ProviderPaymentID is unique and
// acts as the idempotency key for webhook processing; rows are never updated
// or deleted.
type Payment struct {
	ID                int64     `json:"id"`
	OrderID           int64     `json:"orderId"`
	ProviderPaymentID string    `json:"providerPaymentId"`
	Status            string    `json:"status"`
	PaymentMethod     *string   `json:"paymentMethod,omitempty"`
	AmountCents       int64     `json:"amountCents"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Provider-reported payment statuses the webhook reacts to. Anything else
// leaves the order untouched.
const (
	ProviderStatusApproved  = "approved"
	ProviderStatusRejected  = "rejected"
	ProviderStatusCancelled = "cancelled"
)
