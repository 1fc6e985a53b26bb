package cart

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/storekit/checkout/internal/domain/catalog"
	"github.com/storekit/checkout/internal/domain/inventory"
)

// ErrItemNotFound is returned when removing a SKU that is not in the cart.
var ErrItemNotFound = errors.New("item not in cart")

// InvalidQuantityError indicates an add with a non-positive quantity.
type InvalidQuantityError struct {
	SKU string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for %s", e.SKU)
}

// ProductNotFoundError indicates the requested SKU is absent from the catalog.
type ProductNotFoundError struct {
	SKU string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found in catalog", e.SKU)
}

// Unwrap lets errors.Is match the underlying catalog sentinel.
func (e *ProductNotFoundError) Unwrap() error {
	return catalog.ErrNotFound
}

// InsufficientStockError indicates the requested quantity exceeds available
// inventory.
type InsufficientStockError struct {
	SKU       string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient inventory for %s: requested %d, only %d available",
		e.SKU, e.Requested, e.Available)
}

// LineItem is a cart entry recording one product's quantity and the unit
// price frozen at add-time.
type LineItem struct {
	SKU       string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal returns quantity × unit price for this line.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Cart accumulates validated line items against a catalog and, optionally,
// an inventory service. A cart is owned by a single actor; it is not safe
// for concurrent use.
type Cart struct {
	catalog *catalog.Catalog
	stock   inventory.Service // nil disables stock validation on add
	items   map[string]LineItem
}

// New creates an empty cart backed by the given catalog. stock may be nil,
// in which case adds are not validated against inventory.
func New(cat *catalog.Catalog, stock inventory.Service) *Cart {
	return &Cart{
		catalog: cat,
		stock:   stock,
		items:   make(map[string]LineItem),
	}
}

// AddItem adds quantity units of the given SKU to the cart. Repeated adds of
// the same SKU accumulate; the unit price is captured from the catalog on the
// first add and not re-read afterwards. A failed add leaves the cart
// unchanged.
func (c *Cart) AddItem(ctx context.Context, sku string, quantity int) error {
	if quantity <= 0 {
		return &InvalidQuantityError{SKU: sku}
	}

	p, err := c.catalog.BySKU(sku)
	if err != nil {
		return &ProductNotFoundError{SKU: sku}
	}

	existing, inCart := c.items[sku]

	if c.stock != nil {
		requested := quantity
		if inCart {
			requested += existing.Quantity
		}
		available, err := c.stock.Available(ctx, sku)
		if err != nil {
			return fmt.Errorf("checking inventory for %s: %w", sku, err)
		}
		if requested > available {
			return &InsufficientStockError{SKU: sku, Requested: requested, Available: available}
		}
	}

	if inCart {
		existing.Quantity += quantity
		c.items[sku] = existing
		return nil
	}

	c.items[sku] = LineItem{SKU: sku, Quantity: quantity, UnitPrice: p.Price}
	return nil
}

// RemoveItem deletes the whole line for the given SKU. Partial-quantity
// removal is not supported.
func (c *Cart) RemoveItem(sku string) error {
	if _, ok := c.items[sku]; !ok {
		return ErrItemNotFound
	}
	delete(c.items, sku)
	return nil
}

// Items returns a copy of the current line items keyed by SKU. Mutating the
// returned map does not affect the cart.
func (c *Cart) Items() map[string]LineItem {
	out := make(map[string]LineItem, len(c.items))
	for sku, li := range c.items {
		out[sku] = li
	}
	return out
}

// Total returns the sum of line subtotals, decimal.Zero for an empty cart.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, li := range c.items {
		total = total.Add(li.Subtotal())
	}
	return total
}

// Len reports the number of distinct SKUs in the cart.
func (c *Cart) Len() int {
	return len(c.items)
}
