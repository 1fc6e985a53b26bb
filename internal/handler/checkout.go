package handler

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/storekit/checkout/internal/domain/cart"
)

// checkoutRequest is the decoded POST /api/checkout body.
type checkoutRequest struct {
	Items []checkoutItem
	Token string
}

type checkoutItem struct {
	SKU      string
	Quantity int
}

// Checkout builds a cart from the request, runs the checkout sequence, and
// returns the terminal result. Business failures (empty cart, declined
// payment, insufficient stock at checkout time) are 200 responses with
// success=false; cart-build failures are 422; malformed bodies are 400.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Checkout")
	defer span.End()

	req, err := decodeCheckoutRequest(r)
	if err != nil {
		h.countCheckout(ctx, "bad_request")
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	c := cart.New(h.catalog, h.stock)
	for _, item := range req.Items {
		if err := c.AddItem(ctx, item.SKU, item.Quantity); err != nil {
			h.countCheckout(ctx, "rejected")
			writeError(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}

	res := h.checkout.Checkout(ctx, c, req.Token)

	outcome := "success"
	if !res.Success {
		outcome = "failed"
	}
	h.countCheckout(ctx, outcome)
	span.SetAttributes(attribute.String("checkout.outcome", outcome))

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("success", func(e *jx.Encoder) { e.Bool(res.Success) })
			e.Field("total", func(e *jx.Encoder) { e.RawStr(res.Total.String()) })
			if res.TransactionID != "" {
				e.Field("transaction_id", func(e *jx.Encoder) { e.Str(res.TransactionID) })
			}
			if res.OrderID != "" {
				e.Field("order_id", func(e *jx.Encoder) { e.Str(res.OrderID) })
			}
			if res.ErrorMessage != "" {
				e.Field("error_message", func(e *jx.Encoder) { e.Str(res.ErrorMessage) })
			}
		})
	})
}

// countCheckout records one checkout attempt with its outcome label.
func (h *Handler) countCheckout(ctx context.Context, outcome string) {
	h.checkouts.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func decodeCheckoutRequest(r *http.Request) (*checkoutRequest, error) {
	var req checkoutRequest

	d := jx.Decode(r.Body, 4096)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				var item checkoutItem
				if err := d.Obj(func(d *jx.Decoder, key string) error {
					switch key {
					case "sku":
						v, err := d.Str()
						if err != nil {
							return err
						}
						item.SKU = v
					case "quantity":
						v, err := d.Int()
						if err != nil {
							return err
						}
						item.Quantity = v
					default:
						return d.Skip()
					}
					return nil
				}); err != nil {
					return err
				}
				req.Items = append(req.Items, item)
				return nil
			})
		case "payment_token":
			v, err := d.Str()
			if err != nil {
				return err
			}
			req.Token = v
		default:
			return d.Skip()
		}
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "invalid request body")
	}

	return &req, nil
}
