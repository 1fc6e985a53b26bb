// Package payment defines the payment gateway port consumed by the checkout
// service.
package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// ChargeResult is the gateway's answer to a charge attempt. TransactionID is
// set iff Success; Err carries the gateway-supplied decline reason otherwise.
type ChargeResult struct {
	Success       bool
	TransactionID string
	Err           string
}

// Gateway charges an amount against a payment token. A declined charge is
// reported via ChargeResult, not an error; the error return is reserved for
// transport-level failures.
type Gateway interface {
	Charge(ctx context.Context, amount decimal.Decimal, token string) (*ChargeResult, error)
}
