// Package payment integrates with a Razorpay-compatible order API. The
// booking service only sees the Gateway interface; the REST client and the
// test double both implement it.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Order statuses reported by the provider.
const (
	StatusCreated   = "created"
	StatusAttempted = "attempted"
	StatusPaid      = "paid"
)

// Order is a payment order at the provider. Amount is in the smallest
// currency unit (paise for INR).
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Gateway creates and inspects payment orders.
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error)
	FetchOrder(ctx context.Context, orderID string) (*Order, error)
}

// ErrGateway wraps any provider-side failure. Handlers map it to 502 with a
// generic message so provider error bodies never reach clients.
var ErrGateway = errors.New("payment gateway error")

// ---------------------------------------------------------------------------
// REST client
// ---------------------------------------------------------------------------

type restGateway struct {
	baseURL string
	keyID   string
	secret  string
	client  *http.Client
}

// NewRESTGateway returns a Gateway speaking the Razorpay orders API with
// basic auth.
func NewRESTGateway(baseURL, keyID, secret string) Gateway {
	return &restGateway{
		baseURL: baseURL,
		keyID:   keyID,
		secret:  secret,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *restGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.keyID, g.secret)

	return g.do(req)
}

func (g *restGateway) FetchOrder(ctx context.Context, orderID string) (*Order, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/orders/"+orderID, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(g.keyID, g.secret)

	return g.do(req)
}

func (g *restGateway) do(req *http.Request) (*Order, error) {
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused; the body is never surfaced.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: provider returned status %d", ErrGateway, resp.StatusCode)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrGateway, err)
	}
	return &order, nil
}

// ---------------------------------------------------------------------------
// Mock gateway (test double)
// ---------------------------------------------------------------------------

// MockGateway is an in-memory Gateway for tests. MarkPaid simulates the
// provider collecting the payment.
type MockGateway struct {
	mu         sync.Mutex
	orders     map[string]*Order
	seq        int
	ShouldFail bool
}

func NewMockGateway() *MockGateway {
	return &MockGateway{orders: make(map[string]*Order)}
}

func (m *MockGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return nil, fmt.Errorf("%w: mock failure", ErrGateway)
	}
	m.seq++
	o := &Order{
		ID:       fmt.Sprintf("order_%06d", m.seq),
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Status:   StatusCreated,
	}
	m.orders[o.ID] = o
	return &Order{ID: o.ID, Amount: o.Amount, Currency: o.Currency, Receipt: o.Receipt, Status: o.Status}, nil
}

func (m *MockGateway) FetchOrder(_ context.Context, orderID string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return nil, fmt.Errorf("%w: mock failure", ErrGateway)
	}
	o, ok := m.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("%w: order %s not found", ErrGateway, orderID)
	}
	return &Order{ID: o.ID, Amount: o.Amount, Currency: o.Currency, Receipt: o.Receipt, Status: o.Status}, nil
}

// MarkPaid flips an order to paid status.
func (m *MockGateway) MarkPaid(orderID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[orderID]; ok {
		o.Status = StatusPaid
	}
}
