// Package product exposes the catalog to the storefront and the back office.
package product

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"storefront/internal/domain"
	"storefront/internal/repository/product"
)

var ErrInvalidProduct = errors.New("invalid product")

type Service struct {
	repo product.Repository
}

func New(repo product.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if p.ID == "" {
		return nil, ErrInvalidProduct
	}
	if err := validate(p); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func validate(p domain.Product) error {
	if p.Name == "" || p.PriceCents < 0 || p.PurchaseLimit < 0 {
		return ErrInvalidProduct
	}
	switch p.Status {
	case domain.ProductAvailable, domain.ProductComingSoon, domain.ProductSoldOut:
		return nil
	default:
		return ErrInvalidProduct
	}
}
