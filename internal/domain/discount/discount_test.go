package discount

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storekit/checkout/internal/domain/cart"
	"github.com/storekit/checkout/internal/domain/catalog"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// cartWith builds a cart holding the given sku/price/quantity lines.
func cartWith(t *testing.T, lines ...struct {
	sku, price string
	qty        int
}) *cart.Cart {
	t.Helper()
	cat := catalog.New()
	for _, l := range lines {
		p, err := catalog.NewProduct(l.sku, "product "+l.sku, d(l.price))
		require.NoError(t, err)
		cat.Add(p)
	}
	c := cart.New(cat, nil)
	for _, l := range lines {
		require.NoError(t, c.AddItem(context.Background(), l.sku, l.qty))
	}
	return c
}

type line = struct {
	sku, price string
	qty        int
}

func TestBulkRule_QuantityBoundary(t *testing.T) {
	tests := []struct {
		name string
		qty  int
		want string
	}{
		{name: "quantity 9 gets no reduction", qty: 9, want: "900.00"},
		{name: "quantity 10 gets exactly 10% off", qty: 10, want: "900.00"},
		{name: "quantity 11 gets 10% off", qty: 11, want: "990.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cartWith(t, line{sku: "SKU002", price: "100.00", qty: tt.qty})
			got := BulkRule{}.Apply(c, c.Total())
			assert.True(t, d(tt.want).Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestBulkRule_PerLine(t *testing.T) {
	// Only the qualifying line is reduced: 10×10.00 → 90.00, 2×50.00 → 100.00.
	c := cartWith(t,
		line{sku: "SKU001", price: "10.00", qty: 10},
		line{sku: "SKU003", price: "50.00", qty: 2},
	)

	got := BulkRule{}.Apply(c, c.Total())
	assert.True(t, d("190.00").Equal(got), "got %s", got)
}

func TestOrderRule_TotalBoundary(t *testing.T) {
	tests := []struct {
		name    string
		running string
		want    string
	}{
		{name: "999.99 passes through unchanged", running: "999.99", want: "999.99"},
		{name: "1000.00 gets exactly 5% off", running: "1000.00", want: "950.00"},
		{name: "2000.00 gets 5% off", running: "2000.00", want: "1900.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OrderRule{}.Apply(nil, d(tt.running))
			assert.True(t, d(tt.want).Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestEngine_NoRulesReturnsCartTotal(t *testing.T) {
	c := cartWith(t, line{sku: "SKU001", price: "19.99", qty: 3})

	got := NewEngine().ApplyAll(c)
	assert.True(t, c.Total().Equal(got))
}

func TestEngine_BulkOnly(t *testing.T) {
	// SKU002 at 100.00 × 10 → subtotal 1000.00, bulk-reduced to 900.00.
	c := cartWith(t, line{sku: "SKU002", price: "100.00", qty: 10})

	e := NewEngine()
	e.AddRule(BulkRule{})

	got := e.ApplyAll(c)
	assert.True(t, d("900.00").Equal(got), "got %s", got)
}

func TestEngine_OrderRuleSeesPostBulkTotal(t *testing.T) {
	// Bulk brings 1000.00 down to 900.00; the order rule then sees 900.00,
	// which is below its threshold, so no further 5% applies.
	c := cartWith(t, line{sku: "SKU002", price: "100.00", qty: 10})

	e := NewEngine()
	e.AddRule(BulkRule{})
	e.AddRule(OrderRule{})

	got := e.ApplyAll(c)
	assert.True(t, d("900.00").Equal(got), "got %s", got)
}

func TestEngine_BulkAfterOrderReplaces(t *testing.T) {
	// Regression pin: BulkRule recomputes from line items, so placing it
	// after OrderRule silently discards the order reduction.
	c := cartWith(t, line{sku: "SKU002", price: "100.00", qty: 12})

	e := NewEngine()
	e.AddRule(OrderRule{}) // 1200.00 → 1140.00
	e.AddRule(BulkRule{})  // recomputes: 1200.00 × 0.9 = 1080.00

	got := e.ApplyAll(c)
	assert.True(t, d("1080.00").Equal(got), "got %s", got)
}

func TestEngine_RuleOrderMatters(t *testing.T) {
	c := cartWith(t, line{sku: "SKU002", price: "100.00", qty: 12})

	bulkThenOrder := NewEngine()
	bulkThenOrder.AddRule(BulkRule{})
	bulkThenOrder.AddRule(OrderRule{})

	orderThenBulk := NewEngine()
	orderThenBulk.AddRule(OrderRule{})
	orderThenBulk.AddRule(BulkRule{})

	// 1200 → bulk 1080 → order 1026 vs. 1200 → order 1140 → bulk replaces with 1080.
	assert.True(t, d("1026.00").Equal(bulkThenOrder.ApplyAll(c)))
	assert.True(t, d("1080.00").Equal(orderThenBulk.ApplyAll(c)))
}
