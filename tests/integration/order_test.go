//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestOrderPersistedAfterCheckout(t *testing.T) {
	req := checkoutRequest{
		Items: []checkoutItem{
			{SKU: "WIDGET", Quantity: 2},
			{SKU: "GADGET", Quantity: 1},
		},
		PaymentToken: "tok-persist",
	}
	resp := doPost(t, "/api/checkout", req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	res := decodeJSON[checkoutResponse](t, resp)
	if !res.Success {
		t.Fatalf("checkout failed: %s", res.ErrorMessage)
	}

	// The persisted order is retrievable by ID.
	orderResp := doGet(t, "/api/orders/"+res.OrderID)
	if orderResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", orderResp.StatusCode)
	}

	o := decodeJSON[orderResponse](t, orderResp)
	if o.ID != res.OrderID {
		t.Fatalf("expected order %s, got %s", res.OrderID, o.ID)
	}
	if o.Total != res.Total {
		t.Fatalf("order total %v does not match checkout total %v", o.Total, res.Total)
	}
	if o.TransactionID != res.TransactionID {
		t.Fatalf("transaction id mismatch: %q vs %q", o.TransactionID, res.TransactionID)
	}
	if len(o.Items) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(o.Items))
	}
	// Line items are sorted by SKU.
	if o.Items[0].SKU != "GADGET" || o.Items[1].SKU != "WIDGET" {
		t.Fatalf("unexpected item order: %+v", o.Items)
	}
	if o.CreatedAt.IsZero() {
		t.Fatal("created_at is zero")
	}

	// And it appears in the listing.
	listResp := doGet(t, "/api/orders")
	if listResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", listResp.StatusCode)
	}
	orders := decodeJSON[[]orderResponse](t, listResp)
	found := false
	for _, entry := range orders {
		if entry.ID == res.OrderID {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("order %s missing from listing", res.OrderID)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	resp := doGet(t, "/api/orders/00000000-0000-0000-0000-000000000000")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
