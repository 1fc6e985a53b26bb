package handler

import (
	"net/http"
	"sort"

	"github.com/go-faster/jx"

	"github.com/storekit/checkout/internal/domain/catalog"
)

// ListProducts returns the full catalog sorted by SKU.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products := h.catalog.List()
	sort.Slice(products, func(i, j int) bool { return products[i].SKU < products[j].SKU })

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, p := range products {
				encodeProduct(e, p)
			}
		})
	})
}

// GetProduct returns a single product by SKU, 404 when unknown.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	sku := r.PathValue("sku")

	p, err := h.catalog.BySKU(sku)
	if err != nil {
		writeError(w, r, http.StatusNotFound, "product "+sku+" not found")
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		encodeProduct(e, *p)
	})
}

func encodeProduct(e *jx.Encoder, p catalog.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("sku", func(e *jx.Encoder) { e.Str(p.SKU) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("price", func(e *jx.Encoder) { e.RawStr(p.Price.String()) })
	})
}
