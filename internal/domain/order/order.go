package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Item is an immutable snapshot of a cart line taken at checkout time.
type Item struct {
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Order represents a completed, paid order. Orders are created only by a
// successful checkout and never mutated afterwards.
type Order struct {
	ID            string
	Items         []Item
	Total         decimal.Decimal
	TransactionID string
	CreatedAt     time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	Save(ctx context.Context, o *Order) error
	ByID(ctx context.Context, id string) (*Order, error)
	All(ctx context.Context) ([]Order, error)
}
