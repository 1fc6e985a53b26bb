package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/storekit/checkout/internal/domain/catalog"
)

// ProductRepository reads and writes the product catalog table.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all products ordered by SKU.
func (r *ProductRepository) List(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT sku, name, price FROM products ORDER BY sku`)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []catalog.Product
	for rows.Next() {
		var (
			sku, name string
			price     decimal.Decimal
		)
		if err := rows.Scan(&sku, &name, &price); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		p, err := catalog.NewProduct(sku, name, price)
		if err != nil {
			return nil, fmt.Errorf("invalid product %q: %w", sku, err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading products: %w", err)
	}
	return products, nil
}

// Upsert inserts a product, overwriting name and price on SKU conflict —
// the same last-write-wins policy the in-memory catalog uses.
func (r *ProductRepository) Upsert(ctx context.Context, p catalog.Product) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO products (sku, name, price) VALUES ($1, $2, $3)
		 ON CONFLICT (sku) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price`,
		p.SKU, p.Name, p.Price)
	if err != nil {
		return fmt.Errorf("upserting product %q: %w", p.SKU, err)
	}
	return nil
}

// LoadCatalog builds an in-memory catalog from the products table.
func (r *ProductRepository) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	products, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	cat := catalog.New()
	for _, p := range products {
		cat.Add(p)
	}
	return cat, nil
}
