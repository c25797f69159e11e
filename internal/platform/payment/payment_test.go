package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRESTGateway_CreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "key" || pass != "secret" {
			t.Error("expected basic auth credentials")
		}

		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if body["amount"].(float64) != 50000 {
			t.Errorf("expected amount 50000, got %v", body["amount"])
		}

		json.NewEncoder(w).Encode(Order{
			ID:       "order_abc",
			Amount:   50000,
			Currency: "INR",
			Receipt:  body["receipt"].(string),
			Status:   StatusCreated,
		})
	}))
	defer srv.Close()

	g := NewRESTGateway(srv.URL, "key", "secret")
	order, err := g.CreateOrder(context.Background(), 50000, "INR", "appt-1")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.ID != "order_abc" || order.Receipt != "appt-1" {
		t.Errorf("unexpected order: %+v", order)
	}
}

func TestRESTGateway_FetchOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/order_abc" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Order{ID: "order_abc", Status: StatusPaid})
	}))
	defer srv.Close()

	g := NewRESTGateway(srv.URL, "key", "secret")
	order, err := g.FetchOrder(context.Background(), "order_abc")
	if err != nil {
		t.Fatalf("fetch order: %v", err)
	}
	if order.Status != StatusPaid {
		t.Errorf("expected paid, got %s", order.Status)
	}
}

func TestRESTGateway_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"description":"internal key leaked"}}`, http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewRESTGateway(srv.URL, "key", "secret")
	_, err := g.CreateOrder(context.Background(), 100, "INR", "r1")
	if !errors.Is(err, ErrGateway) {
		t.Fatalf("expected ErrGateway, got %v", err)
	}
}

func TestMockGateway_Lifecycle(t *testing.T) {
	g := NewMockGateway()
	order, err := g.CreateOrder(context.Background(), 30000, "INR", "appt-9")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if order.Status != StatusCreated {
		t.Errorf("expected created, got %s", order.Status)
	}

	g.MarkPaid(order.ID)
	fetched, err := g.FetchOrder(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if fetched.Status != StatusPaid {
		t.Errorf("expected paid, got %s", fetched.Status)
	}
}

func TestMockGateway_UnknownOrder(t *testing.T) {
	g := NewMockGateway()
	if _, err := g.FetchOrder(context.Background(), "order_missing"); !errors.Is(err, ErrGateway) {
		t.Fatalf("expected ErrGateway, got %v", err)
	}
}
