package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/storekit/checkout/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Line
// item snapshots are serialized to JSON for storage in a JSONB column.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Save persists a completed order.
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO orders (id, items, total, transaction_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		o.ID, itemsJSON, o.Total, o.TransactionID, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving order %q: %w", o.ID, err)
	}
	return nil
}

// ByID returns the order with the given ID, or order.ErrNotFound.
func (r *OrderRepository) ByID(ctx context.Context, id string) (*order.Order, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, items, total, transaction_id, created_at FROM orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return o, nil
}

// All returns every stored order, oldest first.
func (r *OrderRepository) All(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, items, total, transaction_id, created_at FROM orders ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var out []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading orders: %w", err)
	}
	return out, nil
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var (
		o         order.Order
		itemsJSON []byte
		total     decimal.Decimal
		createdAt time.Time
	)
	if err := row.Scan(&o.ID, &itemsJSON, &total, &o.TransactionID, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshaling order items: %w", err)
	}
	o.Total = total
	o.CreatedAt = createdAt
	return &o, nil
}
