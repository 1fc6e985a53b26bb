package catalog

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested SKU does not exist in the catalog.
var ErrNotFound = errors.New("product not found")

// Sentinel errors for product construction.
var (
	ErrEmptySKU      = errors.New("sku is required")
	ErrEmptyName     = errors.New("name is required")
	ErrNegativePrice = errors.New("price must be non-negative")
)

// Product represents a catalog item available for purchase.
// Products are immutable after construction.
type Product struct {
	SKU   string
	Name  string
	Price decimal.Decimal
}

// NewProduct validates the fields and constructs a Product.
func NewProduct(sku, name string, price decimal.Decimal) (Product, error) {
	if sku == "" {
		return Product{}, ErrEmptySKU
	}
	if name == "" {
		return Product{}, ErrEmptyName
	}
	if price.IsNegative() {
		return Product{}, ErrNegativePrice
	}
	return Product{SKU: sku, Name: name, Price: price}, nil
}

// Catalog holds the set of purchasable products keyed by SKU.
type Catalog struct {
	products map[string]Product
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{products: make(map[string]Product)}
}

// Add inserts a product. Adding a product with an existing SKU overwrites
// the previous entry.
func (c *Catalog) Add(p Product) {
	c.products[p.SKU] = p
}

// BySKU returns the product for the given SKU, or ErrNotFound.
func (c *Catalog) BySKU(sku string) (*Product, error) {
	p, ok := c.products[sku]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

// List returns all products in the catalog. Order is unspecified.
func (c *Catalog) List() []Product {
	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	return out
}

// Len reports the number of products in the catalog.
func (c *Catalog) Len() int {
	return len(c.products)
}
