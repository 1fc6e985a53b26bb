// Package paymentgw provides payment.Gateway implementations: an
// HTTP-backed client for a real gateway and a deterministic fake.
package paymentgw

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/storekit/checkout/internal/domain/payment"
)

var _ payment.Gateway = (*FakeGateway)(nil)

// FakeGateway approves every charge and derives the transaction ID from the
// payment token. Used in tests and when no gateway URL is configured.
type FakeGateway struct{}

// Charge always succeeds with transaction ID "TXN_<token>".
func (FakeGateway) Charge(_ context.Context, _ decimal.Decimal, token string) (*payment.ChargeResult, error) {
	return &payment.ChargeResult{
		Success:       true,
		TransactionID: "TXN_" + token,
	}, nil
}
