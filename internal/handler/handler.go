// Package handler exposes the catalog, checkout, and order API over HTTP.
// Responses are encoded with jx; money values are rendered as JSON numbers.
package handler

import (
	"net/http"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/storekit/checkout/internal/domain/catalog"
	"github.com/storekit/checkout/internal/domain/checkout"
	"github.com/storekit/checkout/internal/domain/inventory"
	"github.com/storekit/checkout/internal/domain/order"
)

// Handler implements the HTTP API, delegating business logic to the injected
// domain collaborators.
type Handler struct {
	catalog  *catalog.Catalog
	stock    inventory.Service
	checkout *checkout.Service
	orders   order.Repository

	tracer    trace.Tracer
	checkouts metric.Int64Counter
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cat *catalog.Catalog,
	stock inventory.Service,
	checkoutSvc *checkout.Service,
	orders order.Repository,
	tp trace.TracerProvider,
	mp metric.MeterProvider,
) (*Handler, error) {
	checkouts, err := mp.Meter("storekit.checkout").Int64Counter("checkout.requests",
		metric.WithDescription("Checkout attempts, labeled by outcome"))
	if err != nil {
		return nil, err
	}

	return &Handler{
		catalog:   cat,
		stock:     stock,
		checkout:  checkoutSvc,
		orders:    orders,
		tracer:    tp.Tracer("storekit.checkout/handler"),
		checkouts: checkouts,
	}, nil
}

// Register mounts all API routes on the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/{sku}", h.GetProduct)
	mux.HandleFunc("POST /api/checkout", h.Checkout)
	mux.HandleFunc("GET /api/orders", h.ListOrders)
	mux.HandleFunc("GET /api/orders/{id}", h.GetOrder)
}
