package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SanathKumar1997/teez/internal/domain/order"
	"github.com/SanathKumar1997/teez/internal/domain/payment"
)

const (
	insertOrderSQL = `INSERT INTO orders
		(id, customer_email, total_amount, items, shipping_address,
		 payment_provider, provider_order_id, provider_payment_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	listOrdersByEmailSQL = `SELECT id, customer_email, total_amount, items, shipping_address,
		payment_provider, provider_order_id, provider_payment_id, created_at
		FROM orders
		WHERE customer_email = $1
		ORDER BY created_at DESC, id`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order and sets its creation time. Items and the
// shipping address are stored as JSONB snapshots.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}
	addressJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshaling shipping address: %w", err)
	}

	var ref payment.Reference
	if o.Payment != nil {
		ref = *o.Payment
	}

	err = r.pool.QueryRow(ctx, insertOrderSQL,
		o.ID, o.CustomerEmail, o.TotalAmount, itemsJSON, addressJSON,
		ref.Provider, ref.OrderID, ref.PaymentID,
	).Scan(&o.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	return nil
}

// ListByEmail returns the orders placed with email, newest first.
func (r *OrderRepository) ListByEmail(ctx context.Context, email string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByEmailSQL, email)
	if err != nil {
		return nil, fmt.Errorf("listing orders for %q: %w", email, err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders for %q: %w", email, err)
	}
	return orders, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o                   order.Order
		itemsJSON, addrJSON []byte
		ref                 payment.Reference
	)
	if err := row.Scan(
		&o.ID, &o.CustomerEmail, &o.TotalAmount, &itemsJSON, &addrJSON,
		&ref.Provider, &ref.OrderID, &ref.PaymentID, &o.CreatedAt,
	); err != nil {
		return o, err
	}

	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return o, fmt.Errorf("unmarshaling items of order %q: %w", o.ID, err)
	}
	if err := json.Unmarshal(addrJSON, &o.ShippingAddress); err != nil {
		return o, fmt.Errorf("unmarshaling address of order %q: %w", o.ID, err)
	}
	if ref.Provider != "" {
		o.Payment = &ref
	}
	return o, nil
}
