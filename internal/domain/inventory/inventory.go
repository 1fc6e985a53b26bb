// Package inventory defines the stock availability port consumed by the cart
// and the checkout service. Concrete implementations live under
// internal/storage.
package inventory

import "context"

// Service reports currently available stock per SKU. Unknown SKUs report
// zero availability. Availability is re-queried on every call; callers must
// not assume any reservation semantics.
type Service interface {
	Available(ctx context.Context, sku string) (int, error)
}
