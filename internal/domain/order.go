package domain

import "time"

// OrderStatus moves along pending -> {paid, failed} and paid -> cancelled.
// failed and cancelled are terminal.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderFailed    OrderStatus = "failed"
	OrderCancelled OrderStatus = "cancelled"
)

// Order is one checkout attempt. ExternalReference is the opaque token the
// payment provider echoes back in notifications; it never changes after
// creation.
type Order struct {
	ID                int64       `json:"id"`
	TotalCents        int64       `json:"totalCents"`
	Status            OrderStatus `json:"status"`
	ExternalReference string      `json:"externalReference"`
	CreatedAt         time.Time   `json:"createdAt"`
}

// OrderItem snapshots one purchased product. Title and unit price are
// captured at purchase time; later catalog edits never touch them.
type OrderItem struct {
	ID             int64  `json:"id"`
	OrderID        int64  `json:"orderId"`
	ProductID      string `json:"productId"`
	Title          string `json:"title"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}
