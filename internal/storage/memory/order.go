package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/storekit/checkout/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository is an in-memory order store keyed by order ID.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]order.Order
}

// NewOrderRepository creates an empty repository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]order.Order)}
}

// Save stores a copy of the order. The repository owns its stored orders;
// later mutation of the caller's value does not affect the stored copy.
func (r *OrderRepository) Save(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *o
	stored.Items = make([]order.Item, len(o.Items))
	copy(stored.Items, o.Items)
	r.orders[o.ID] = stored
	return nil
}

// ByID returns the order with the given ID or order.ErrNotFound.
func (r *OrderRepository) ByID(_ context.Context, id string) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return &o, nil
}

// All returns every stored order, sorted by creation time then ID for
// deterministic listings.
func (r *OrderRepository) All(_ context.Context) ([]order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]order.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
