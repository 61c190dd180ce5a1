//go:build integration

package integration

import (
	"net/http"
	"strconv"
	"testing"
)

func login(t *testing.T, email, password string) authResponse {
	t.Helper()

	resp := doPost(t, "/api/auth/login", map[string]string{"email": email, "password": password})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d", email, resp.StatusCode)
	}
	return decodeJSON[authResponse](t, resp)
}

func TestRegister_Duplicate(t *testing.T) {
	email := uniqueEmail("dup")
	body := map[string]string{"name": "Dup", "email": email, "password": "secret123"}

	first := doPost(t, "/api/auth/register", body)
	defer first.Body.Close()
	if first.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", first.StatusCode)
	}
	if reg := decodeJSON[authResponse](t, first); reg.User.IsAdmin {
		t.Error("regular registration must not grant admin")
	}

	second := doPost(t, "/api/auth/register", body)
	defer second.Body.Close()
	if second.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", second.StatusCode)
	}
	if msg := decodeJSON[errorResponse](t, second).Message; msg != "Email already exists" {
		t.Errorf("message: got %q", msg)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	resp := doPost(t, "/api/auth/login", map[string]string{"email": adminEmail, "password": "wrong-password"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAdmin_RequiresToken(t *testing.T) {
	resp := doJSON(t, http.MethodPatch, "/api/products/1/discount", "", map[string]int{"discount_percentage": 10})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAdmin_ForbiddenForCustomer(t *testing.T) {
	email := uniqueEmail("customer")
	reg := doPost(t, "/api/auth/register", map[string]string{"name": "C", "email": email, "password": "secret123"})
	defer reg.Body.Close()
	token := decodeJSON[authResponse](t, reg).Token

	resp := doJSON(t, http.MethodDelete, "/api/products/1", token, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestAdmin_ProductLifecycle(t *testing.T) {
	session := login(t, adminEmail, adminPassword)
	if !session.User.IsAdmin {
		t.Fatal("seeded admin is not an admin")
	}

	create := doJSON(t, http.MethodPost, "/api/products", session.Token, map[string]any{
		"title":    "Integration Linen Shirt",
		"price":    80,
		"category": "shirts",
	})
	defer create.Body.Close()
	if create.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", create.StatusCode)
	}
	p := decodeJSON[productResponse](t, create)
	path := "/api/products/" + itoa(p.ID)

	// Discounts are computed from the original price and never compound.
	for _, pct := range []int{10, 25} {
		resp := doJSON(t, http.MethodPatch, path+"/discount", session.Token, map[string]int{"discount_percentage": pct})
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("discount %d: expected 200, got %d", pct, resp.StatusCode)
		}
	}

	get := doGet(t, path)
	defer get.Body.Close()
	got := decodeJSON[productResponse](t, get)
	if got.Price != 60 {
		t.Errorf("price: got %v, want 60", got.Price)
	}
	if got.OriginalPrice == nil || *got.OriginalPrice != 80 {
		t.Errorf("original_price: got %v, want 80", got.OriginalPrice)
	}

	del := doJSON(t, http.MethodDelete, path, session.Token, nil)
	del.Body.Close()
	if del.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", del.StatusCode)
	}

	gone := doGet(t, path)
	gone.Body.Close()
	if gone.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", gone.StatusCode)
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
