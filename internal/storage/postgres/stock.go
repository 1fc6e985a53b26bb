package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storekit/checkout/internal/domain/inventory"
)

var _ inventory.Service = (*StockRepository)(nil)

// StockRepository implements inventory.Service backed by the stock table.
type StockRepository struct {
	pool *pgxpool.Pool
}

// NewStockRepository returns a StockRepository that uses the given pool.
func NewStockRepository(pool *pgxpool.Pool) *StockRepository {
	return &StockRepository{pool: pool}
}

// Available returns the current stock level for a SKU. SKUs without a stock
// row report zero, matching the in-memory implementation.
func (r *StockRepository) Available(ctx context.Context, sku string) (int, error) {
	var quantity int
	err := r.pool.QueryRow(ctx,
		`SELECT quantity FROM stock WHERE sku = $1`, sku).Scan(&quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("querying stock for %q: %w", sku, err)
	}
	return quantity, nil
}

// Set replaces the stock level for a SKU.
func (r *StockRepository) Set(ctx context.Context, sku string, quantity int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO stock (sku, quantity) VALUES ($1, $2)
		 ON CONFLICT (sku) DO UPDATE SET quantity = EXCLUDED.quantity`,
		sku, quantity)
	if err != nil {
		return fmt.Errorf("setting stock for %q: %w", sku, err)
	}
	return nil
}
