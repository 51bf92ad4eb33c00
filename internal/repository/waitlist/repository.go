package waitlist

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	Add(ctx context.Context, name, email, province string) error
	List(ctx context.Context) ([]domain.WaitlistEntry, error)
	Count(ctx context.Context) (int, error)
}
