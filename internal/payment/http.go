package paymentgw

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/storekit/checkout/internal/domain/payment"
)

var _ payment.Gateway = (*HTTPGateway)(nil)

// HTTPGateway charges payments against a remote gateway over HTTP. The
// request body is {"amount": <number>, "token": <string>}; the response is
// {"success": <bool>, "transaction_id": <string>, "error": <string>}.
type HTTPGateway struct {
	chargeURL string
	client    *http.Client
}

// HTTPGatewayConfig configures the HTTP gateway client.
type HTTPGatewayConfig struct {
	// ChargeURL is the full URL charges are POSTed to.
	ChargeURL string
	// Timeout bounds a single charge call. Defaults to 30s.
	Timeout time.Duration
	// TracerProvider instruments the outbound transport when set.
	TracerProvider trace.TracerProvider
}

// NewHTTPGateway creates an HTTP gateway client with an otel-instrumented
// transport.
func NewHTTPGateway(cfg HTTPGatewayConfig) *HTTPGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	opts := []otelhttp.Option{}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(cfg.TracerProvider))
	}

	return &HTTPGateway{
		chargeURL: cfg.ChargeURL,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport, opts...),
			Timeout:   timeout,
		},
	}
}

// Charge POSTs the charge request and decodes the gateway's verdict. A
// declined charge is a valid ChargeResult; the error return is reserved for
// transport and protocol failures.
func (g *HTTPGateway) Charge(ctx context.Context, amount decimal.Decimal, token string) (*payment.ChargeResult, error) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("amount", func(e *jx.Encoder) { e.RawStr(amount.String()) })
		e.Field("token", func(e *jx.Encoder) { e.Str(token) })
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.chargeURL, bytes.NewReader(e.Bytes()))
	if err != nil {
		return nil, errors.Wrap(err, "build charge request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "charge request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("gateway returned status %d", resp.StatusCode)
	}

	result := &payment.ChargeResult{}
	d := jx.Decode(resp.Body, 512)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "success":
			v, err := d.Bool()
			if err != nil {
				return err
			}
			result.Success = v
		case "transaction_id":
			v, err := d.Str()
			if err != nil {
				return err
			}
			result.TransactionID = v
		case "error":
			v, err := d.Str()
			if err != nil {
				return err
			}
			result.Err = v
		default:
			return d.Skip()
		}
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode charge response")
	}

	return result, nil
}
