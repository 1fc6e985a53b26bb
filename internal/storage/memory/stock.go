// Package memory provides in-memory storage adapters. They back unit tests
// and serve as the fallback when no database is configured.
package memory

import (
	"context"
	"sync"

	"github.com/storekit/checkout/internal/domain/inventory"
)

var _ inventory.Service = (*Stock)(nil)

// Stock is an in-memory inventory service. Unknown SKUs report zero
// availability.
type Stock struct {
	mu     sync.RWMutex
	levels map[string]int
}

// NewStock creates an empty stock table.
func NewStock() *Stock {
	return &Stock{levels: make(map[string]int)}
}

// Set replaces the stock level for a SKU.
func (s *Stock) Set(sku string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels[sku] = quantity
}

// Available returns the current stock level for a SKU, zero when unknown.
func (s *Stock) Available(_ context.Context, sku string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.levels[sku], nil
}
