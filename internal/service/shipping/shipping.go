// Package shipping exposes carrier rate quoting to the storefront.
package shipping

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/gateway/carrier"
)

var (
	ErrNoDestination = errors.New("destination is incomplete")
	ErrNoItems       = errors.New("no items to quote")
	ErrItemNotFound  = errors.New("quote references unknown product")
	ErrNoRates       = errors.New("no shipping options for destination")
)

type Quoter interface {
	Quote(ctx context.Context, req carrier.QuoteRequest) ([]carrier.RateOption, error)
}

type ProductGetter interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type Service struct {
	carrier  Quoter
	products ProductGetter
}

func New(q Quoter, products ProductGetter) *Service {
	return &Service{carrier: q, products: products}
}

type QuoteItem struct {
	ProductID string
	Quantity  int
}

type QuoteRequest struct {
	Destination carrier.Destination
	Items       []QuoteItem
}

// Cheapest returns the lowest-priced option for the destination. The
// storefront shows it as the default shipping cost before the buyer picks.
func (s *Service) Cheapest(ctx context.Context, req QuoteRequest) (*carrier.RateOption, error) {
	options, err := s.Options(ctx, req)
	if err != nil {
		return nil, err
	}
	best := options[0]
	for _, opt := range options[1:] {
		if opt.PriceInclTaxCents < best.PriceInclTaxCents {
			best = opt
		}
	}
	return &best, nil
}

// Options returns every shipping alternative the carrier offers. Items are
// resolved against the catalog: the declared value comes from catalog prices,
// never from the request.
func (s *Service) Options(ctx context.Context, req QuoteRequest) ([]carrier.RateOption, error) {
	if req.Destination.Zipcode == "" || req.Destination.City == "" || req.Destination.State == "" {
		return nil, ErrNoDestination
	}
	if len(req.Items) == 0 {
		return nil, ErrNoItems
	}

	var declaredCents int64
	var units []carrier.Item
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product %s", ErrNoItems, item.ProductID)
		}
		p, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrItemNotFound, item.ProductID)
			}
			return nil, err
		}
		declaredCents += p.PriceCents * int64(item.Quantity)
		for i := 0; i < item.Quantity; i++ {
			units = append(units, carrier.Item{SKU: p.ID})
		}
	}

	options, err := s.carrier.Quote(ctx, carrier.QuoteRequest{
		Destination:        req.Destination,
		Items:              units,
		DeclaredValueCents: declaredCents,
	})
	if err != nil {
		return nil, err
	}
	if len(options) == 0 {
		return nil, ErrNoRates
	}
	return options, nil
}
