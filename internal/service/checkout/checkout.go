// Package checkout turns a validated cart plus shipping selection into a
// pending order and a hosted-payment redirect.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"

	"storefront/internal/domain"
	"storefront/internal/gateway/mercadopago"
	"storefront/internal/repository/order"
)

var (
	ErrEmptyCart        = errors.New("cart has no items")
	ErrItemNotFound     = errors.New("cart references unknown product")
	ErrItemUnavailable  = errors.New("product is not available for purchase")
	ErrLimitExceeded    = errors.New("quantity exceeds purchase limit")
	ErrShippingRequired = errors.New("shipping selection is required")
)

type ProductGetter interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type OrderCreator interface {
	CreateWithItems(ctx context.Context, in order.CreateOrderInput) (*domain.Order, error)
}

type PreferenceCreator interface {
	CreatePreference(ctx context.Context, req mercadopago.CreatePreferenceRequest) (*mercadopago.Preference, error)
}

// URLs are the browser return targets and the webhook endpoint handed to the
// payment provider on every preference.
type URLs struct {
	Success      string
	Failure      string
	Pending      string
	Notification string
}

type Service struct {
	products ProductGetter
	orders   OrderCreator
	payments PreferenceCreator
	urls     URLs
	logger   *log.Logger
}

func New(products ProductGetter, orders OrderCreator, payments PreferenceCreator, urls URLs, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		products: products,
		orders:   orders,
		payments: payments,
		urls:     urls,
		logger:   logger,
	}
}

type CartItem struct {
	ProductID string
	Quantity  int
}

type ShippingSelection struct {
	RateID        string
	ServiceType   domain.ServiceType
	PickupPointID *string
	CostCents     int64
	Destination   domain.ShipmentDestination
	Recipient     domain.ShipmentRecipient
}

type Request struct {
	Items    []CartItem
	Shipping ShippingSelection
}

type Result struct {
	OrderID           int64
	ExternalReference string
	PreferenceID      string
	InitPoint         string
}

// Checkout validates the cart against the catalog, creates the pending order
// with its items and shipment in one transaction, and registers the payment
// preference. A provider failure after the commit leaves the pending order in
// place; it expires unpaid.
func (s *Service) Checkout(ctx context.Context, req Request) (*Result, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if err := validateShipping(req.Shipping); err != nil {
		return nil, err
	}

	var totalCents int64
	orderItems := make([]order.CreateOrderItem, 0, len(req.Items))
	prefItems := make([]mercadopago.PreferenceItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product %s", ErrItemNotFound, item.ProductID)
		}
		p, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrItemNotFound, item.ProductID)
			}
			return nil, err
		}
		if p.Status != domain.ProductAvailable {
			return nil, fmt.Errorf("%w: %s", ErrItemUnavailable, p.Name)
		}
		if p.PurchaseLimit > 0 && item.Quantity > p.PurchaseLimit {
			return nil, fmt.Errorf("%w: %s allows at most %d", ErrLimitExceeded, p.Name, p.PurchaseLimit)
		}

		totalCents += p.PriceCents * int64(item.Quantity)
		orderItems = append(orderItems, order.CreateOrderItem{
			ProductID:      p.ID,
			Title:          p.Name,
			Quantity:       item.Quantity,
			UnitPriceCents: p.PriceCents,
		})
		prefItems = append(prefItems, mercadopago.PreferenceItem{
			Title:          p.Name,
			Quantity:       item.Quantity,
			UnitPriceCents: p.PriceCents,
		})
	}
	totalCents += req.Shipping.CostCents

	ref := uuid.NewString()
	o, err := s.orders.CreateWithItems(ctx, order.CreateOrderInput{
		TotalCents:        totalCents,
		ExternalReference: ref,
		Items:             orderItems,
		Shipment: order.CreateShipmentInput{
			RateID:        req.Shipping.RateID,
			ServiceType:   req.Shipping.ServiceType,
			PickupPointID: req.Shipping.PickupPointID,
			CostCents:     req.Shipping.CostCents,
			Destination:   req.Shipping.Destination,
			Recipient:     req.Shipping.Recipient,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	pref, err := s.payments.CreatePreference(ctx, mercadopago.CreatePreferenceRequest{
		ExternalReference: ref,
		Items:             prefItems,
		ShippingCostCents: req.Shipping.CostCents,
		SuccessURL:        s.urls.Success,
		FailureURL:        s.urls.Failure,
		PendingURL:        s.urls.Pending,
		NotificationURL:   s.urls.Notification,
	})
	if err != nil {
		// The order is already committed. It stays pending and expires
		// unpaid if the buyer never retries.
		s.logger.Printf("checkout: preference failed order_id=%d ref=%s error=%v", o.ID, ref, err)
		return nil, fmt.Errorf("create preference: %w", err)
	}

	s.logger.Printf("checkout: order created order_id=%d ref=%s total_cents=%d", o.ID, ref, totalCents)
	return &Result{
		OrderID:           o.ID,
		ExternalReference: ref,
		PreferenceID:      pref.ID,
		InitPoint:         pref.InitPoint,
	}, nil
}

func validateShipping(s ShippingSelection) error {
	if s.RateID == "" || s.CostCents <= 0 {
		return ErrShippingRequired
	}
	switch s.ServiceType {
	case domain.StandardDelivery:
		if s.Destination.Street == "" || s.Destination.StreetNumber == "" {
			return ErrShippingRequired
		}
	case domain.PickupPoint:
		if s.PickupPointID == nil || *s.PickupPointID == "" {
			return ErrShippingRequired
		}
	default:
		return ErrShippingRequired
	}
	if s.Destination.City == "" || s.Destination.State == "" || s.Destination.Zipcode == "" {
		return ErrShippingRequired
	}
	if s.Recipient.Name == "" || s.Recipient.Email == "" {
		return ErrShippingRequired
	}
	return nil
}
