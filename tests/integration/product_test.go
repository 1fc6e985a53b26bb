//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/products")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != len(seedRows) {
		t.Fatalf("expected %d products, got %d", len(seedRows), len(products))
	}

	// Listing is sorted by SKU.
	for i := 1; i < len(products); i++ {
		if products[i-1].SKU >= products[i].SKU {
			t.Fatalf("products not sorted: %q before %q", products[i-1].SKU, products[i].SKU)
		}
	}
}

func TestGetProduct(t *testing.T) {
	resp := doGet(t, "/api/products/WIDGET")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	p := decodeJSON[productResponse](t, resp)
	if p.SKU != "WIDGET" || p.Name != "Widget" || p.Price != 2.00 {
		t.Fatalf("unexpected product: %+v", p)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/NOPE")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	e := decodeJSON[errorResponse](t, resp)
	if e.Code != http.StatusNotFound {
		t.Fatalf("expected error code 404, got %d", e.Code)
	}
}
