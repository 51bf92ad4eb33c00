package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type productSeed struct {
	ID            string
	Name          string
	Description   string
	PriceCents    int64
	Image         string
	PurchaseLimit int
	Status        string
}

// Apply inserts basic catalog data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	products := []productSeed{
		{
			ID:            "remera-clasica",
			Name:          "Remera Clásica",
			Description:   "Remera de algodón peinado, corte regular",
			PriceCents:    1850000,
			Image:         "/images/remera-clasica.jpg",
			PurchaseLimit: 5,
			Status:        "available",
		},
		{
			ID:            "buzo-oversize",
			Name:          "Buzo Oversize",
			Description:   "Buzo de frisa invisible con capucha",
			PriceCents:    4200000,
			Image:         "/images/buzo-oversize.jpg",
			PurchaseLimit: 3,
			Status:        "available",
		},
		{
			ID:            "campera-puffer",
			Name:          "Campera Puffer",
			Description:   "Campera inflable liviana, próxima temporada",
			PriceCents:    8900000,
			Image:         "/images/campera-puffer.jpg",
			PurchaseLimit: 2,
			Status:        "coming_soon",
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
	}

	return nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (id, name, description, price_cents, image, purchase_limit, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    image = EXCLUDED.image,
    purchase_limit = EXCLUDED.purchase_limit,
    status = EXCLUDED.status
`
	_, err := pool.Exec(ctx, q, p.ID, p.Name, p.Description, p.PriceCents, p.Image, p.PurchaseLimit, p.Status)
	return err
}
