//go:build integration

package integration

import (
	"net/http"
	"regexp"
	"strings"
	"testing"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func TestCheckout_BulkDiscount(t *testing.T) {
	req := checkoutRequest{
		Items:        []checkoutItem{{SKU: "WIDGET", Quantity: 10}},
		PaymentToken: "tok-bulk",
	}
	resp := doPost(t, "/api/checkout", req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	res := decodeJSON[checkoutResponse](t, resp)
	if !res.Success {
		t.Fatalf("expected success, got failure: %s", res.ErrorMessage)
	}
	// 10 x 2.00 = 20.00, 10% off the bulk line.
	if res.Total != 18.00 {
		t.Fatalf("expected total 18.00, got %v", res.Total)
	}
	if res.TransactionID != "TXN_tok-bulk" {
		t.Fatalf("unexpected transaction id %q", res.TransactionID)
	}
	if !uuidPattern.MatchString(res.OrderID) {
		t.Fatalf("order id %q is not a UUID", res.OrderID)
	}
}

func TestCheckout_OrderDiscount(t *testing.T) {
	req := checkoutRequest{
		Items:        []checkoutItem{{SKU: "GADGET", Quantity: 4}},
		PaymentToken: "tok-order",
	}
	resp := doPost(t, "/api/checkout", req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	res := decodeJSON[checkoutResponse](t, resp)
	if !res.Success {
		t.Fatalf("expected success, got failure: %s", res.ErrorMessage)
	}
	// 4 x 250.00 = 1000.00, 5% off the order.
	if res.Total != 950.00 {
		t.Fatalf("expected total 950.00, got %v", res.Total)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	req := checkoutRequest{PaymentToken: "tok-empty"}
	resp := doPost(t, "/api/checkout", req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	res := decodeJSON[checkoutResponse](t, resp)
	if res.Success {
		t.Fatal("expected failure for empty cart")
	}
	if res.ErrorMessage != "Cart is empty" {
		t.Fatalf("unexpected message %q", res.ErrorMessage)
	}
}

func TestCheckout_MissingToken(t *testing.T) {
	req := checkoutRequest{
		Items: []checkoutItem{{SKU: "WIDGET", Quantity: 1}},
	}
	resp := doPost(t, "/api/checkout", req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	res := decodeJSON[checkoutResponse](t, resp)
	if res.Success {
		t.Fatal("expected failure for missing token")
	}
	if res.ErrorMessage != "Payment token is required" {
		t.Fatalf("unexpected message %q", res.ErrorMessage)
	}
}

func TestCheckout_UnknownSKU(t *testing.T) {
	req := checkoutRequest{
		Items:        []checkoutItem{{SKU: "NOPE", Quantity: 1}},
		PaymentToken: "tok-unknown",
	}
	resp := doPost(t, "/api/checkout", req)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestCheckout_InsufficientStock(t *testing.T) {
	req := checkoutRequest{
		Items:        []checkoutItem{{SKU: "SCARCE", Quantity: 3}},
		PaymentToken: "tok-scarce",
	}
	resp := doPost(t, "/api/checkout", req)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	e := decodeJSON[errorResponse](t, resp)
	if !strings.Contains(e.Message, "SCARCE") {
		t.Fatalf("expected message to name the SKU, got %q", e.Message)
	}
}

func TestCheckout_MalformedBody(t *testing.T) {
	resp := doPost(t, "/api/checkout", "not an object")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
