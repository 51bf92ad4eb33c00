// Package payment processes provider webhook notifications: it confirms the
// payment against the provider API, records it exactly once, transitions the
// order, and hands approved orders to the carrier.
package payment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"storefront/internal/domain"
	"storefront/internal/gateway/carrier"
	"storefront/internal/gateway/mercadopago"
	"storefront/internal/repository/order"
)

var (
	// ErrIgnored marks notifications that carry nothing actionable: wrong
	// type, already-processed payment, or a payment with no order
	// reference. The webhook endpoint acknowledges them so the provider
	// stops retrying.
	ErrIgnored = errors.New("notification ignored")

	ErrOrderNotFound = errors.New("no order matches the payment reference")
)

type PaymentFetcher interface {
	GetPayment(ctx context.Context, paymentID string) (*mercadopago.PaymentInfo, error)
}

type ShipmentCreator interface {
	CreateShipment(ctx context.Context, req carrier.CreateShipmentRequest) (*carrier.CreateShipmentResult, error)
}

type Store interface {
	GetByReference(ctx context.Context, externalReference string) (*domain.Order, error)
	ListItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
	UpdateStatus(ctx context.Context, orderID int64, from, to domain.OrderStatus) (bool, error)
	GetShipmentByOrderID(ctx context.Context, orderID int64) (*domain.Shipment, error)
	MarkShipmentCreated(ctx context.Context, shipmentID int64, carrierShipmentID string) error
	CreatePayment(ctx context.Context, in order.CreatePaymentInput) error
	GetPaymentByProviderID(ctx context.Context, providerPaymentID string) (*domain.Payment, error)
}

type Service struct {
	provider PaymentFetcher
	carrier  ShipmentCreator
	store    Store
	logger   *log.Logger
}

func New(provider PaymentFetcher, shipper ShipmentCreator, store Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{provider: provider, carrier: shipper, store: store, logger: logger}
}

type Notification struct {
	Type      string
	PaymentID string
}

// Process handles one provider notification. It is safe to call with the
// same notification any number of times: the unique provider payment id
// makes the recording step idempotent, and order transitions are guarded by
// their current status.
func (s *Service) Process(ctx context.Context, n Notification) error {
	if n.Type != "payment" {
		return fmt.Errorf("%w: type %q", ErrIgnored, n.Type)
	}

	if _, err := s.store.GetPaymentByProviderID(ctx, n.PaymentID); err == nil {
		s.logger.Printf("payment: already processed provider_id=%s", n.PaymentID)
		return fmt.Errorf("%w: payment %s already recorded", ErrIgnored, n.PaymentID)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	info, err := s.provider.GetPayment(ctx, n.PaymentID)
	if err != nil {
		return fmt.Errorf("fetch payment %s: %w", n.PaymentID, err)
	}
	if info.ExternalReference == "" {
		s.logger.Printf("payment: no external reference provider_id=%s status=%s", info.ID, info.Status)
		return fmt.Errorf("%w: payment %s has no order reference", ErrIgnored, info.ID)
	}

	o, err := s.store.GetByReference(ctx, info.ExternalReference)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: ref %s", ErrOrderNotFound, info.ExternalReference)
		}
		return err
	}

	method := info.PaymentMethod
	err = s.store.CreatePayment(ctx, order.CreatePaymentInput{
		OrderID:           o.ID,
		ProviderPaymentID: info.ID,
		Status:            info.Status,
		PaymentMethod:     &method,
		AmountCents:       info.AmountCents,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			// A concurrent delivery of the same notification won the
			// insert race and owns the rest of the flow.
			s.logger.Printf("payment: concurrent duplicate provider_id=%s", info.ID)
			return fmt.Errorf("%w: payment %s already recorded", ErrIgnored, info.ID)
		}
		return fmt.Errorf("record payment: %w", err)
	}

	switch info.Status {
	case domain.ProviderStatusApproved:
		return s.handleApproved(ctx, o)
	case domain.ProviderStatusRejected, domain.ProviderStatusCancelled:
		moved, err := s.store.UpdateStatus(ctx, o.ID, domain.OrderPending, domain.OrderFailed)
		if err != nil {
			return err
		}
		if !moved {
			s.logger.Printf("payment: order not pending, skip fail order_id=%d", o.ID)
		}
		return nil
	default:
		// in_process and friends: recorded, order stays pending until a
		// terminal notification arrives.
		s.logger.Printf("payment: non-terminal status provider_id=%s status=%s order_id=%d", info.ID, info.Status, o.ID)
		return nil
	}
}

func (s *Service) handleApproved(ctx context.Context, o *domain.Order) error {
	moved, err := s.store.UpdateStatus(ctx, o.ID, domain.OrderPending, domain.OrderPaid)
	if err != nil {
		return err
	}
	if moved {
		s.logger.Printf("payment: order paid order_id=%d ref=%s", o.ID, o.ExternalReference)
	} else {
		s.logger.Printf("payment: order not pending, skip paid order_id=%d status=%s", o.ID, o.Status)
	}

	// Shipment creation is best effort and keyed to the shipment still being
	// pending, not to the order transition above: a later approved payment
	// retries what a carrier outage left undone. A carrier failure must not
	// fail the webhook, the shipment stays pending for the next attempt.
	if err := s.createShipment(ctx, o); err != nil {
		s.logger.Printf("payment: shipment creation failed order_id=%d error=%v", o.ID, err)
	}
	return nil
}

func (s *Service) createShipment(ctx context.Context, o *domain.Order) error {
	shipment, err := s.store.GetShipmentByOrderID(ctx, o.ID)
	if err != nil {
		return fmt.Errorf("load shipment: %w", err)
	}
	if shipment.Status != domain.ShipmentPending {
		s.logger.Printf("payment: shipment already %s order_id=%d", shipment.Status, o.ID)
		return nil
	}

	items, err := s.store.ListItems(ctx, o.ID)
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}
	units := make([]carrier.Item, 0, len(items))
	for _, it := range items {
		for i := 0; i < it.Quantity; i++ {
			units = append(units, carrier.Item{SKU: it.ProductID})
		}
	}

	res, err := s.carrier.CreateShipment(ctx, carrier.CreateShipmentRequest{
		ExternalID:         o.ExternalReference,
		DeclaredValueCents: o.TotalCents - shipment.CostCents,
		ServiceType:        shipment.ServiceType,
		Destination:        shipment.Destination,
		Recipient:          shipment.Recipient,
		Items:              units,
		PickupPointID:      shipment.PickupPointID,
	})
	if err != nil {
		return err
	}
	if err := s.store.MarkShipmentCreated(ctx, shipment.ID, res.ShipmentID); err != nil {
		return fmt.Errorf("mark shipment created: %w", err)
	}
	s.logger.Printf("payment: shipment created order_id=%d carrier_id=%s", o.ID, res.ShipmentID)
	return nil
}
