// Package order exposes the back-office order views and the shipment
// cancellation flow with its refund compensation.
package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"storefront/internal/domain"
	"storefront/internal/gateway/carrier"
	"storefront/internal/gateway/mercadopago"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrShipmentNotFound   = errors.New("order has no shipment")
	ErrShipmentNotCreated = errors.New("shipment is not in a cancellable state")
)

type Store interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
	UpdateStatus(ctx context.Context, orderID int64, from, to domain.OrderStatus) (bool, error)
	GetShipmentByOrderID(ctx context.Context, orderID int64) (*domain.Shipment, error)
	MarkShipmentCancelled(ctx context.Context, shipmentID int64) error
	GetPaymentByOrderID(ctx context.Context, orderID int64) (*domain.Payment, error)
}

type ShipmentCanceller interface {
	CancelShipment(ctx context.Context, carrierShipmentID string) (*carrier.CancelResult, error)
}

type Refunder interface {
	Refund(ctx context.Context, paymentID string) (*mercadopago.RefundResult, error)
}

type Service struct {
	store    Store
	carrier  ShipmentCanceller
	payments Refunder
	logger   *log.Logger
}

func New(store Store, canceller ShipmentCanceller, refunder Refunder, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{store: store, carrier: canceller, payments: refunder, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	return s.store.List(ctx)
}

// Items returns the line items of an order, checking the order exists first
// so callers can distinguish an unknown order from an empty one.
func (s *Service) Items(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	if _, err := s.store.GetByID(ctx, orderID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return s.store.ListItems(ctx, orderID)
}

// CancelResult reports both halves of a cancellation: the carrier outcome
// and the refund outcome. RefundError is set when the shipment was cancelled
// but the refund could not be issued; the operator retries the refund at the
// provider dashboard.
type CancelResult struct {
	Cancellation *carrier.CancelResult
	Refund       *mercadopago.RefundResult
	RefundError  string
}

// CancelShipment stops a created shipment at the carrier, marks it cancelled,
// refunds the payment, and on refund success moves the order to cancelled.
// The carrier call goes first: if the parcel cannot be stopped there is
// nothing to compensate.
func (s *Service) CancelShipment(ctx context.Context, orderID int64) (*CancelResult, error) {
	o, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	shipment, err := s.store.GetShipmentByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrShipmentNotFound
		}
		return nil, err
	}
	if shipment.Status != domain.ShipmentCreated || shipment.CarrierShipmentID == nil {
		return nil, ErrShipmentNotCreated
	}

	cancellation, err := s.carrier.CancelShipment(ctx, *shipment.CarrierShipmentID)
	if err != nil {
		return nil, fmt.Errorf("cancel at carrier: %w", err)
	}
	if err := s.store.MarkShipmentCancelled(ctx, shipment.ID); err != nil {
		return nil, fmt.Errorf("mark shipment cancelled: %w", err)
	}
	s.logger.Printf("order: shipment cancelled order_id=%d carrier_id=%s", orderID, *shipment.CarrierShipmentID)

	result := &CancelResult{Cancellation: cancellation}
	result.Refund, result.RefundError = s.refund(ctx, o)

	// The order leaves paid only once the money is on its way back. A failed
	// refund keeps it paid so the operator can retry; the cancelled shipment
	// already records how far the flow got.
	if result.RefundError == "" {
		if _, err := s.store.UpdateStatus(ctx, orderID, domain.OrderPaid, domain.OrderCancelled); err != nil {
			return nil, fmt.Errorf("update order status: %w", err)
		}
	}
	return result, nil
}

// refund is best effort: the shipment is already cancelled, so a refund
// failure is reported rather than rolled back.
func (s *Service) refund(ctx context.Context, o *domain.Order) (*mercadopago.RefundResult, string) {
	payment, err := s.store.GetPaymentByOrderID(ctx, o.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Printf("order: no payment to refund order_id=%d", o.ID)
			return nil, "no payment recorded for order"
		}
		s.logger.Printf("order: load payment failed order_id=%d error=%v", o.ID, err)
		return nil, "could not load payment"
	}

	refund, err := s.payments.Refund(ctx, payment.ProviderPaymentID)
	if err != nil {
		s.logger.Printf("order: refund failed order_id=%d payment_id=%s error=%v", o.ID, payment.ProviderPaymentID, err)
		return nil, err.Error()
	}
	s.logger.Printf("order: refund issued order_id=%d payment_id=%s", o.ID, payment.ProviderPaymentID)
	return refund, ""
}
