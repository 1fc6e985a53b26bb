// Package discount implements the ordered promotional rule pipeline applied
// to a cart at checkout time.
package discount

import (
	"github.com/shopspring/decimal"

	"github.com/storekit/checkout/internal/domain/cart"
)

// Rule is a stateless discount policy. Apply receives the cart and the
// running total produced by the previous rule and returns the new total.
// Rules must not mutate the cart.
type Rule interface {
	Apply(c *cart.Cart, runningTotal decimal.Decimal) decimal.Decimal
}

var (
	bulkQtyThreshold    = 10
	bulkFactor          = decimal.RequireFromString("0.9")
	orderTotalThreshold = decimal.NewFromInt(1000)
	orderFactor         = decimal.RequireFromString("0.95")
)

// BulkRule grants 10% off every line whose quantity is at least 10.
//
// The rule recomputes the total from the cart's line items and disregards
// the incoming running total entirely. Placing a BulkRule after another rule
// therefore replaces that rule's result rather than composing with it; this
// replace semantic is load-bearing and pinned by TestEngine_BulkAfterOrderReplaces.
type BulkRule struct{}

// Apply recomputes the cart total with per-line bulk reductions.
func (BulkRule) Apply(c *cart.Cart, _ decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, li := range c.Items() {
		sub := li.Subtotal()
		if li.Quantity >= bulkQtyThreshold {
			sub = sub.Mul(bulkFactor)
		}
		total = total.Add(sub)
	}
	return total
}

// OrderRule grants 5% off the running total when it is at least 1000.
// Unlike BulkRule it transforms the running total rather than replacing it.
type OrderRule struct{}

// Apply returns the running total, reduced by 5% when it meets the threshold.
func (OrderRule) Apply(_ *cart.Cart, runningTotal decimal.Decimal) decimal.Decimal {
	if runningTotal.GreaterThanOrEqual(orderTotalThreshold) {
		return runningTotal.Mul(orderFactor)
	}
	return runningTotal
}

// Engine applies an ordered sequence of rules to a cart. Rules run in the
// order they were added, each consuming the previous rule's output.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine with no rules.
func NewEngine() *Engine {
	return &Engine{}
}

// AddRule appends a rule to the pipeline.
func (e *Engine) AddRule(r Rule) {
	e.rules = append(e.rules, r)
}

// ApplyAll folds the rule pipeline over the cart, starting from the raw cart
// total. With no rules registered it returns the cart total unchanged.
func (e *Engine) ApplyAll(c *cart.Cart) decimal.Decimal {
	total := c.Total()
	for _, r := range e.rules {
		total = r.Apply(c, total)
	}
	return total
}
