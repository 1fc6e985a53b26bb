// Package checkout orchestrates the full checkout sequence: cart validation,
// discount application, payment, and order persistence.
package checkout

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storekit/checkout/internal/domain/cart"
	"github.com/storekit/checkout/internal/domain/discount"
	"github.com/storekit/checkout/internal/domain/inventory"
	"github.com/storekit/checkout/internal/domain/order"
	"github.com/storekit/checkout/internal/domain/payment"
)

// Failure messages surfaced to callers. Checkout failures are normal business
// outcomes, never errors.
const (
	msgEmptyCart     = "Cart is empty"
	msgTokenRequired = "Payment token is required"
	msgPaymentFailed = "Payment failed"
)

// Result is the single terminal outcome of a checkout. Success implies Total
// and TransactionID are set, and OrderID too when a repository is configured.
// Failure implies ErrorMessage is set and nothing was persisted.
type Result struct {
	Success       bool
	Total         decimal.Decimal
	TransactionID string
	OrderID       string
	ErrorMessage  string
}

// Service drives the checkout sequence. The gateway and inventory service
// are required; the discount engine and order repository are optional.
type Service struct {
	gateway   payment.Gateway
	stock     inventory.Service
	discounts *discount.Engine // nil: raw cart total is charged
	orders    order.Repository // nil: no persistence

	now   func() time.Time
	newID func() string
}

// NewService creates a checkout Service. engine and orders may be nil to
// disable discounts and persistence respectively.
func NewService(
	gateway payment.Gateway,
	stock inventory.Service,
	engine *discount.Engine,
	orders order.Repository,
) *Service {
	return &Service{
		gateway:   gateway,
		stock:     stock,
		discounts: engine,
		orders:    orders,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// Checkout runs the full sequence for the given cart and payment token.
// All validation happens strictly before payment is attempted; a declined
// or failed charge never persists an order. Business failures are returned
// as a failure Result, never as an error.
func (s *Service) Checkout(ctx context.Context, c *cart.Cart, token string) *Result {
	if c.Total().IsZero() {
		return &Result{Success: false, ErrorMessage: msgEmptyCart}
	}

	if token == "" {
		return &Result{Success: false, ErrorMessage: msgTokenRequired}
	}

	// Re-check availability per line against the current inventory state;
	// stock may have changed since the items were added.
	items := sortedItems(c)
	for _, li := range items {
		available, err := s.stock.Available(ctx, li.SKU)
		if err != nil {
			return &Result{
				Success:      false,
				ErrorMessage: fmt.Sprintf("Inventory check failed for %s: %s", li.SKU, err),
			}
		}
		if li.Quantity > available {
			return &Result{
				Success: false,
				ErrorMessage: fmt.Sprintf("Insufficient inventory for %s. Requested %d, only %d available",
					li.SKU, li.Quantity, available),
			}
		}
	}

	total := c.Total()
	if s.discounts != nil {
		total = s.discounts.ApplyAll(c)
	}

	charge, err := s.gateway.Charge(ctx, total, token)
	if err != nil {
		return &Result{Success: false, Total: total, ErrorMessage: err.Error()}
	}
	if !charge.Success {
		msg := charge.Err
		if msg == "" {
			msg = msgPaymentFailed
		}
		return &Result{Success: false, Total: total, ErrorMessage: msg}
	}

	result := &Result{
		Success:       true,
		Total:         total,
		TransactionID: charge.TransactionID,
	}

	if s.orders != nil {
		o := s.buildOrder(items, total, charge.TransactionID)
		if err := s.orders.Save(ctx, o); err != nil {
			// Payment went through but persistence did not; surface the
			// failure rather than pretend the order exists.
			return &Result{
				Success:       false,
				Total:         total,
				TransactionID: charge.TransactionID,
				ErrorMessage:  fmt.Sprintf("Order could not be saved: %s", err),
			}
		}
		result.OrderID = o.ID
	}

	return result
}

// buildOrder snapshots the cart lines into an immutable order.
func (s *Service) buildOrder(items []cart.LineItem, total decimal.Decimal, txID string) *order.Order {
	snapshot := make([]order.Item, len(items))
	for i, li := range items {
		snapshot[i] = order.Item{
			SKU:       li.SKU,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
		}
	}

	return &order.Order{
		ID:            s.newID(),
		Items:         snapshot,
		Total:         total.Round(2),
		TransactionID: txID,
		CreatedAt:     s.now(),
	}
}

// sortedItems returns the cart lines in SKU order for deterministic
// validation messages and order snapshots.
func sortedItems(c *cart.Cart) []cart.LineItem {
	items := c.Items()
	out := make([]cart.LineItem, 0, len(items))
	for _, li := range items {
		out = append(out, li)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out
}
