package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/storekit/checkout/internal/domain/order"
)

// GetOrder returns a persisted order by ID, 404 when absent.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	o, err := h.orders.ByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "order "+id+" not found")
			return
		}
		zctx.From(r.Context()).Error("get order", zap.String("id", id), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		encodeOrder(e, *o)
	})
}

// ListOrders returns all persisted orders, oldest first.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	all, err := h.orders.All(r.Context())
	if err != nil {
		zctx.From(r.Context()).Error("list orders", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, o := range all {
				encodeOrder(e, o)
			}
		})
	})
}

func encodeOrder(e *jx.Encoder, o order.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, item := range o.Items {
					e.Obj(func(e *jx.Encoder) {
						e.Field("sku", func(e *jx.Encoder) { e.Str(item.SKU) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(item.Quantity) })
						e.Field("unit_price", func(e *jx.Encoder) { e.RawStr(item.UnitPrice.String()) })
					})
				}
			})
		})
		e.Field("total", func(e *jx.Encoder) { e.RawStr(o.Total.String()) })
		e.Field("transaction_id", func(e *jx.Encoder) { e.Str(o.TransactionID) })
		e.Field("created_at", func(e *jx.Encoder) { e.Str(o.CreatedAt.Format(time.RFC3339Nano)) })
	})
}
