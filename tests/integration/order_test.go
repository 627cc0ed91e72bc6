//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"regexp"
	"testing"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func validCheckout() checkoutRequest {
	addr := addressInput{
		StreetAddress: "1 Main St",
		City:          "Springfield",
		State:         "IL",
		PostalCode:    "62701",
		Country:       "US",
		PhoneNumber:   "+1-555-0100",
	}
	return checkoutRequest{
		ShippingAddress:  addr,
		BillingAddress:   addr,
		DeliveryMethodID: "dm-standard",
	}
}

func TestCheckout_NoAuth(t *testing.T) {
	resp := doPost(t, "/api/orders", validCheckout())
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCheckout_InvalidKey(t *testing.T) {
	resp := doPostWithAuth(t, "/api/orders", validCheckout(), "wrong-key")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCheckout_UnknownDeliveryMethod(t *testing.T) {
	reseed(t)

	req := validCheckout()
	req.DeliveryMethodID = "dm-missing"
	resp := doPostWithAuth(t, "/api/orders", req, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCheckout_UnknownDiscount(t *testing.T) {
	reseed(t)

	req := validCheckout()
	req.DiscountCode = "NOSUCHCODE"
	resp := doPostWithAuth(t, "/api/orders", req, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCheckout_IncompleteAddress(t *testing.T) {
	reseed(t)

	req := validCheckout()
	req.ShippingAddress.City = ""
	resp := doPostWithAuth(t, "/api/orders", req, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// Seeded cart: 1 x 89.99 + 2 x 24.50 = 138.99 subtotal.
func TestCheckout_GrandTotal(t *testing.T) {
	reseed(t)

	resp := doPostWithAuth(t, "/api/orders", validCheckout(), testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body := decodeJSON[errorResponse](t, resp)
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body.Message)
	}

	order := decodeJSON[orderResponse](t, resp)
	if !uuidPattern.MatchString(order.ID) {
		t.Errorf("order ID %q is not a UUID", order.ID)
	}
	if order.Status != "pending" {
		t.Errorf("status: got %q, want pending", order.Status)
	}
	// 138.99 + 10.00 delivery.
	if order.GrandTotal != "148.99" {
		t.Errorf("grand total: got %q, want 148.99", order.GrandTotal)
	}
	if order.Discount != nil {
		t.Errorf("unexpected discount: %+v", order.Discount)
	}
	if len(order.Items) != 2 {
		t.Errorf("items: got %d, want 2", len(order.Items))
	}
}

func TestCheckout_WithDiscount(t *testing.T) {
	reseed(t)

	req := validCheckout()
	req.DeliveryMethodID = "dm-express"
	req.DiscountCode = "SAVE10"
	resp := doPostWithAuth(t, "/api/orders", req, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body := decodeJSON[errorResponse](t, resp)
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body.Message)
	}

	order := decodeJSON[orderResponse](t, resp)
	if order.Discount == nil {
		t.Fatal("expected discount on order")
	}
	if order.Discount.Code != "SAVE10" {
		t.Errorf("discount code: got %q", order.Discount.Code)
	}
	// 10% of (138.99 + 100.00) = 23.90 after rounding.
	if order.Discount.Amount != "23.9" && order.Discount.Amount != "23.90" {
		t.Errorf("discount amount: got %q, want 23.90", order.Discount.Amount)
	}
	if order.GrandTotal != "215.09" {
		t.Errorf("grand total: got %q, want 215.09", order.GrandTotal)
	}
}

func TestCheckout_ConsumesCart(t *testing.T) {
	reseed(t)

	resp := doPostWithAuth(t, "/api/orders", validCheckout(), testAPIKey)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first checkout: expected 201, got %d", resp.StatusCode)
	}

	resp = doPostWithAuth(t, "/api/orders", validCheckout(), testAPIKey)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second checkout: expected 404, got %d", resp.StatusCode)
	}
}

func TestOrderLifecycle(t *testing.T) {
	reseed(t)

	resp := doPostWithAuth(t, "/api/orders", validCheckout(), testAPIKey)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d", resp.StatusCode)
	}
	order := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()

	// Shipping before payment must fail.
	resp = doPostWithAuth(t, "/api/orders/"+order.ID+"/ship", nil, testAPIKey)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("ship before payment: expected 409, got %d", resp.StatusCode)
	}

	// Bind payment: pending -> processing, unpaid -> paid.
	pay := paymentRequest{PaymentMethodID: "pm-card", PaymentMethodCode: "card"}
	resp = doPostWithAuth(t, "/api/orders/"+order.ID+"/payment", pay, testAPIKey)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("payment: expected 200, got %d", resp.StatusCode)
	}
	paid := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()
	if paid.Status != "processing" {
		t.Errorf("status after payment: got %q, want processing", paid.Status)
	}
	if paid.Payment == nil || paid.Payment.Status != "paid" {
		t.Errorf("payment state: got %+v, want paid", paid.Payment)
	}

	// Second payment attempt must fail.
	resp = doPostWithAuth(t, "/api/orders/"+order.ID+"/payment", pay, testAPIKey)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("double payment: expected 409, got %d", resp.StatusCode)
	}

	resp = doPostWithAuth(t, "/api/orders/"+order.ID+"/ship", nil, testAPIKey)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ship: expected 200, got %d", resp.StatusCode)
	}
	shipped := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()
	if shipped.Status != "shipped" {
		t.Errorf("status after ship: got %q, want shipped", shipped.Status)
	}

	resp = doPostWithAuth(t, "/api/orders/"+order.ID+"/deliver", nil, testAPIKey)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("deliver: expected 200, got %d", resp.StatusCode)
	}
	delivered := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()
	if delivered.Status != "delivered" {
		t.Errorf("status after deliver: got %q, want delivered", delivered.Status)
	}

	// Delivered is terminal.
	resp = doPostWithAuth(t, "/api/orders/"+order.ID+"/deliver", nil, testAPIKey)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("deliver again: expected 409, got %d", resp.StatusCode)
	}
}

// A gateway that never received our 200 redelivers the callback. Whatever
// the interleave, exactly one delivery may mark the order paid.
func TestBindPayment_RedeliveredCallback(t *testing.T) {
	reseed(t)

	resp := doPostWithAuth(t, "/api/orders", validCheckout(), testAPIKey)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d", resp.StatusCode)
	}
	order := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()

	payload, err := json.Marshal(paymentRequest{PaymentMethodID: "pm-card", PaymentMethodCode: "card"})
	if err != nil {
		t.Fatalf("marshal payment: %v", err)
	}
	results := make(chan int, 2)
	for i := 0; i < 2; i++ {
		go func() {
			req, err := http.NewRequest(http.MethodPost, baseURL+"/api/orders/"+order.ID+"/payment", bytes.NewReader(payload))
			if err != nil {
				results <- 0
				return
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+testAPIKey)
			resp, err := httpClient.Do(req)
			if err != nil {
				results <- 0
				return
			}
			resp.Body.Close()
			results <- resp.StatusCode
		}()
	}

	var ok, conflict int
	for i := 0; i < 2; i++ {
		switch code := <-results; code {
		case http.StatusOK:
			ok++
		case http.StatusConflict:
			conflict++
		default:
			t.Errorf("unexpected payment status %d", code)
		}
	}
	if ok != 1 || conflict != 1 {
		t.Fatalf("got %d successes and %d conflicts, want exactly one of each", ok, conflict)
	}

	resp = doGetWithAuth(t, "/api/orders/"+order.ID, testAPIKey)
	defer resp.Body.Close()
	got := decodeJSON[orderResponse](t, resp)
	if got.Status != "processing" {
		t.Errorf("status: got %q, want processing", got.Status)
	}
}

func TestGetOrder(t *testing.T) {
	reseed(t)

	resp := doPostWithAuth(t, "/api/orders", validCheckout(), testAPIKey)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d", resp.StatusCode)
	}
	created := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()

	resp = doGetWithAuth(t, "/api/orders/"+created.ID, testAPIKey)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get order: expected 200, got %d", resp.StatusCode)
	}

	got := decodeJSON[orderResponse](t, resp)
	if got.ID != created.ID {
		t.Errorf("order ID: got %q, want %q", got.ID, created.ID)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	resp := doGetWithAuth(t, "/api/orders/00000000-0000-0000-0000-000000000000", testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
