//go:build integration

package integration

import (
	"net/http"
	"regexp"
	"testing"
	"time"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func uniqueEmail(prefix string) string {
	return prefix + "-" + time.Now().Format("150405.000000000") + "@example.com"
}

func TestCreateOrder_AndList(t *testing.T) {
	email := uniqueEmail("buyer")
	req := orderRequest{
		CustomerEmail: email,
		TotalAmount:   119.99,
		Items: []lineItem{
			{ID: 1, Title: "Classic White Essential Tee", Price: 29.99, Size: "M", Color: "White", Quantity: 1},
			{ID: 2, Title: "Urban Street Heavyweight Polo", Price: 45.00, Size: "L", Color: "Black", Quantity: 2},
		},
		ShippingAddress: address{FirstName: "Test", Address: "123 Test St", City: "Test City", Zip: "12345"},
	}

	resp := doPost(t, "/api/orders", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	created := decodeJSON[createOrderResponse](t, resp)
	if !uuidPattern.MatchString(created.ID) {
		t.Errorf("order id %q is not a UUID", created.ID)
	}

	list := doGet(t, "/api/orders/user/"+email)
	defer list.Body.Close()

	if list.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", list.StatusCode)
	}
	orders := decodeJSON[[]orderResponse](t, list)
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}

	o := orders[0]
	if o.ID != created.ID {
		t.Errorf("id: got %q, want %q", o.ID, created.ID)
	}
	if o.TotalAmount != 119.99 {
		t.Errorf("total_amount: got %v, want 119.99", o.TotalAmount)
	}
	if len(o.Items) != 2 || o.Items[0].Price != "29.99" || o.Items[1].Quantity != 2 {
		t.Errorf("items not preserved: %+v", o.Items)
	}
	if o.ShippingAddress.City != "Test City" {
		t.Errorf("city: got %q", o.ShippingAddress.City)
	}
}

func TestListOrders_NewestFirst(t *testing.T) {
	email := uniqueEmail("repeat")
	var ids []string
	for range 2 {
		resp := doPost(t, "/api/orders", orderRequest{
			CustomerEmail: email,
			TotalAmount:   10,
			Items:         []lineItem{{ID: 1, Title: "Tee", Price: 10, Quantity: 1}},
		})
		created := decodeJSON[createOrderResponse](t, resp)
		resp.Body.Close()
		ids = append(ids, created.ID)
	}

	resp := doGet(t, "/api/orders/user/"+email)
	defer resp.Body.Close()

	orders := decodeJSON[[]orderResponse](t, resp)
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].ID != ids[1] || orders[1].ID != ids[0] {
		t.Errorf("expected newest first, got %s then %s", orders[0].ID, orders[1].ID)
	}
}

func TestListOrders_Unknown(t *testing.T) {
	resp := doGet(t, "/api/orders/user/"+uniqueEmail("nobody"))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if orders := decodeJSON[[]orderResponse](t, resp); len(orders) != 0 {
		t.Fatalf("expected no orders, got %d", len(orders))
	}
}

func TestCreateOrder_Invalid(t *testing.T) {
	tests := []struct {
		name string
		req  orderRequest
	}{
		{"no items", orderRequest{CustomerEmail: "a@example.com", Items: []lineItem{}}},
		{"no email", orderRequest{TotalAmount: 1, Items: []lineItem{{ID: 1, Title: "Tee", Price: 1, Quantity: 1}}}},
		{"zero quantity", orderRequest{CustomerEmail: "a@example.com", Items: []lineItem{{ID: 1, Title: "Tee", Price: 1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doPost(t, "/api/orders", tt.req)
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestCreateOrder_WithPayment(t *testing.T) {
	intentResp := doPost(t, "/api/create-payment-intent", map[string]float64{"amount": 10})
	defer intentResp.Body.Close()

	if intentResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", intentResp.StatusCode)
	}
	intent := decodeJSON[paymentIntentResponse](t, intentResp)
	if intent.Amount != 1000 {
		t.Errorf("amount: got %d, want 1000 minor units", intent.Amount)
	}

	resp := doPost(t, "/api/orders", orderRequest{
		CustomerEmail: uniqueEmail("payer"),
		TotalAmount:   10,
		Items:         []lineItem{{ID: 1, Title: "Tee", Price: 10, Quantity: 1}},
		OrderID:       intent.OrderID,
		PaymentID:     "pay_integration",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
}

func TestCreateOrder_IncompletePayment(t *testing.T) {
	resp := doPost(t, "/api/orders", orderRequest{
		CustomerEmail: uniqueEmail("payer"),
		TotalAmount:   10,
		Items:         []lineItem{{ID: 1, Title: "Tee", Price: 10, Quantity: 1}},
		Signature:     "only-a-signature",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", resp.StatusCode)
	}
}
