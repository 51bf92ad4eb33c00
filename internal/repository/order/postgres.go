package order

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"storefront/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const orderColumns = `id, total_cents, status, external_reference, created_at`

func (r *postgresRepo) CreateWithItems(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var o domain.Order
	err = tx.QueryRow(ctx, `
INSERT INTO orders (total_cents, status, external_reference)
VALUES ($1, 'pending', $2)
RETURNING `+orderColumns, in.TotalCents, in.ExternalReference).Scan(
		&o.ID, &o.TotalCents, &o.Status, &o.ExternalReference, &o.CreatedAt,
	)
	if err != nil {
		r.logger.Printf("order repo: insert order ref=%s error=%v", in.ExternalReference, err)
		return nil, err
	}

	for _, item := range in.Items {
		if _, err := tx.Exec(ctx, `
INSERT INTO order_items (order_id, product_id, title, quantity, unit_price_cents)
VALUES ($1, $2, $3, $4, $5)
`, o.ID, item.ProductID, item.Title, item.Quantity, item.UnitPriceCents); err != nil {
			r.logger.Printf("order repo: insert item order_id=%d product=%s error=%v", o.ID, item.ProductID, err)
			return nil, err
		}
	}

	s := in.Shipment
	if _, err := tx.Exec(ctx, `
INSERT INTO shipments (order_id, rate_id, service_type, pickup_point_id, cost_cents,
                       city, state, zipcode, street, street_number, street_extras,
                       recipient_name, recipient_email, recipient_phone, recipient_document, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, 'pending')
`, o.ID, s.RateID, s.ServiceType, s.PickupPointID, s.CostCents,
		s.Destination.City, s.Destination.State, s.Destination.Zipcode,
		s.Destination.Street, s.Destination.StreetNumber, s.Destination.StreetExtras,
		s.Recipient.Name, s.Recipient.Email, s.Recipient.Phone, s.Recipient.Document); err != nil {
		r.logger.Printf("order repo: insert shipment order_id=%d error=%v", o.ID, err)
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	return r.fetchOrder(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *postgresRepo) GetByReference(ctx context.Context, externalReference string) (*domain.Order, error) {
	return r.fetchOrder(ctx, `SELECT `+orderColumns+` FROM orders WHERE external_reference = $1`, externalReference)
}

func (r *postgresRepo) fetchOrder(ctx context.Context, q string, args ...interface{}) (*domain.Order, error) {
	var o domain.Order
	err := r.pool.QueryRow(ctx, q, args...).Scan(&o.ID, &o.TotalCents, &o.Status, &o.ExternalReference, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.TotalCents, &o.Status, &o.ExternalReference, &o.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

func (r *postgresRepo) ListItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	const q = `
SELECT id, order_id, product_id, title, quantity, unit_price_cents
FROM order_items
WHERE order_id = $1
ORDER BY id ASC
`
	rows, err := r.pool.Query(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Title, &it.Quantity, &it.UnitPriceCents); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, orderID int64, from, to domain.OrderStatus) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `
UPDATE orders SET status = $1 WHERE id = $2 AND status = $3
`, to, orderID, from)
	if err != nil {
		r.logger.Printf("order repo: update status order_id=%d %s->%s error=%v", orderID, from, to, err)
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

const shipmentColumns = `id, order_id, rate_id, service_type, pickup_point_id, cost_cents,
       city, state, zipcode, street, street_number, street_extras,
       recipient_name, recipient_email, recipient_phone, recipient_document,
       status, carrier_shipment_id, created_at`

func (r *postgresRepo) GetShipmentByOrderID(ctx context.Context, orderID int64) (*domain.Shipment, error) {
	var s domain.Shipment
	err := r.pool.QueryRow(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE order_id = $1`, orderID).Scan(
		&s.ID, &s.OrderID, &s.RateID, &s.ServiceType, &s.PickupPointID, &s.CostCents,
		&s.Destination.City, &s.Destination.State, &s.Destination.Zipcode,
		&s.Destination.Street, &s.Destination.StreetNumber, &s.Destination.StreetExtras,
		&s.Recipient.Name, &s.Recipient.Email, &s.Recipient.Phone, &s.Recipient.Document,
		&s.Status, &s.CarrierShipmentID, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepo) MarkShipmentCreated(ctx context.Context, shipmentID int64, carrierShipmentID string) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE shipments SET status = 'created', carrier_shipment_id = $1
WHERE id = $2 AND status = 'pending'
`, carrierShipmentID, shipmentID)
	if err != nil {
		r.logger.Printf("order repo: mark shipment created id=%d error=%v", shipmentID, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) MarkShipmentCancelled(ctx context.Context, shipmentID int64) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE shipments SET status = 'cancelled'
WHERE id = $1 AND status = 'created'
`, shipmentID)
	if err != nil {
		r.logger.Printf("order repo: mark shipment cancelled id=%d error=%v", shipmentID, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) CreatePayment(ctx context.Context, in CreatePaymentInput) error {
	const q = `
INSERT INTO payments (order_id, provider_payment_id, status, payment_method, amount_cents)
VALUES ($1, $2, $3, $4, $5)
`
	_, err := r.pool.Exec(ctx, q, in.OrderID, in.ProviderPaymentID, in.Status, in.PaymentMethod, in.AmountCents)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		r.logger.Printf("order repo: insert payment provider_id=%s error=%v", in.ProviderPaymentID, err)
		return err
	}
	return nil
}

const paymentColumns = `id, order_id, provider_payment_id, status, payment_method, amount_cents, created_at`

func (r *postgresRepo) GetPaymentByProviderID(ctx context.Context, providerPaymentID string) (*domain.Payment, error) {
	return r.fetchPayment(ctx, `SELECT `+paymentColumns+` FROM payments WHERE provider_payment_id = $1`, providerPaymentID)
}

func (r *postgresRepo) GetPaymentByOrderID(ctx context.Context, orderID int64) (*domain.Payment, error) {
	return r.fetchPayment(ctx, `SELECT `+paymentColumns+` FROM payments WHERE order_id = $1 ORDER BY created_at DESC LIMIT 1`, orderID)
}

func (r *postgresRepo) fetchPayment(ctx context.Context, q string, args ...interface{}) (*domain.Payment, error) {
	var p domain.Payment
	err := r.pool.QueryRow(ctx, q, args...).Scan(
		&p.ID, &p.OrderID, &p.ProviderPaymentID, &p.Status, &p.PaymentMethod, &p.AmountCents, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
