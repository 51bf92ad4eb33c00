package order

import (
	"context"

	"storefront/internal/domain"
)

// CreateOrderInput carries everything inserted atomically at checkout: the
// order row, its item snapshots, and the shipment intent.
type CreateOrderInput struct {
	TotalCents        int64
	ExternalReference string
	Items             []CreateOrderItem
	Shipment          CreateShipmentInput
}

type CreateOrderItem struct {
	ProductID      string
	Title          string
	Quantity       int
	UnitPriceCents int64
}

type CreateShipmentInput struct {
	RateID        string
	ServiceType   domain.ServiceType
	PickupPointID *string
	CostCents     int64
	Destination   domain.ShipmentDestination
	Recipient     domain.ShipmentRecipient
}

type CreatePaymentInput struct {
	OrderID           int64
	ProviderPaymentID string
	Status            string
	PaymentMethod     *string
	AmountCents       int64
}

type Repository interface {
	CreateWithItems(ctx context.Context, in CreateOrderInput) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetByReference(ctx context.Context, externalReference string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error)

	// UpdateStatus transitions an order from one status to another and
	// reports whether a row actually changed. The from-status guard keeps
	// concurrent writers from applying illegal transitions.
	UpdateStatus(ctx context.Context, orderID int64, from, to domain.OrderStatus) (bool, error)

	GetShipmentByOrderID(ctx context.Context, orderID int64) (*domain.Shipment, error)
	MarkShipmentCreated(ctx context.Context, shipmentID int64, carrierShipmentID string) error
	MarkShipmentCancelled(ctx context.Context, shipmentID int64) error

	CreatePayment(ctx context.Context, in CreatePaymentInput) error
	GetPaymentByProviderID(ctx context.Context, providerPaymentID string) (*domain.Payment, error)
	GetPaymentByOrderID(ctx context.Context, orderID int64) (*domain.Payment, error)
}
