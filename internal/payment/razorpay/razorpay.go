// Package razorpay implements payment.Gateway on top of the Razorpay
// Orders API.
package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/SanathKumar1997/teez/internal/domain/payment"
)

// Name is the provider name recorded on orders.
const Name = "razorpay"

const (
	DefaultBaseURL  = "https://api.razorpay.com"
	DefaultCurrency = "INR"
)

// Config configures the gateway.
type Config struct {
	KeyID     string
	KeySecret string
	Currency  string
	BaseURL   string
	Timeout   time.Duration
}

// Gateway talks to Razorpay.
type Gateway struct {
	cfg    Config
	client *http.Client
	now    func() time.Time
}

var _ payment.Gateway = (*Gateway)(nil)

// New creates a Razorpay gateway. Outgoing requests are traced with the
// given providers.
func New(cfg Config, tp trace.TracerProvider, mp metric.MeterProvider) (*Gateway, error) {
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, errors.New("razorpay key id and secret are required")
	}
	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Gateway{
		cfg: cfg,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithTracerProvider(tp),
				otelhttp.WithMeterProvider(mp),
			),
			Timeout: cfg.Timeout,
		},
		now: time.Now,
	}, nil
}

// Name implements payment.Gateway.
func (g *Gateway) Name() string { return Name }

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateIntent creates a Razorpay order for amount, expressed in major
// currency units.
func (g *Gateway) CreateIntent(ctx context.Context, amount decimal.Decimal) (*payment.Intent, error) {
	if !amount.IsPositive() {
		return nil, g.fail("create order", "amount must be positive", nil)
	}

	body, err := json.Marshal(createOrderRequest{
		Amount:   payment.ToMinorUnits(amount),
		Currency: g.cfg.Currency,
		Receipt:  fmt.Sprintf("receipt_%d", g.now().UnixMilli()),
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshal order request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.cfg.KeyID, g.cfg.KeySecret)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, g.fail("create order", "provider unreachable", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, g.fail("create order", "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		reason := resp.Status
		if json.Unmarshal(data, &e) == nil && e.Error.Description != "" {
			reason = e.Error.Description
		}
		return nil, g.fail("create order", reason, nil)
	}

	var o orderResponse
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, g.fail("create order", "malformed response", err)
	}
	if o.ID == "" {
		return nil, g.fail("create order", "response without order id", nil)
	}

	return &payment.Intent{
		OrderID:  o.ID,
		Amount:   o.Amount,
		Currency: o.Currency,
		KeyID:    g.cfg.KeyID,
	}, nil
}

// Verify checks the checkout signature Razorpay hands to the client:
// hex(HMAC-SHA256(order_id + "|" + payment_id, key_secret)).
func (g *Gateway) Verify(_ context.Context, c payment.Confirmation) (*payment.Reference, error) {
	if c.OrderID == "" || c.PaymentID == "" || c.Signature == "" {
		return nil, g.fail("verify", "incomplete confirmation", nil)
	}

	got, err := hex.DecodeString(c.Signature)
	if err != nil || !hmac.Equal(got, g.sign(c.OrderID, c.PaymentID)) {
		return nil, g.fail("verify", "signature mismatch", nil)
	}

	return &payment.Reference{
		Provider:  Name,
		OrderID:   c.OrderID,
		PaymentID: c.PaymentID,
	}, nil
}

func (g *Gateway) sign(orderID, paymentID string) []byte {
	mac := hmac.New(sha256.New, []byte(g.cfg.KeySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return mac.Sum(nil)
}

// Signature returns the hex signature Razorpay would produce for the pair.
func (g *Gateway) Signature(orderID, paymentID string) string {
	return hex.EncodeToString(g.sign(orderID, paymentID))
}

func (g *Gateway) fail(op, reason string, err error) error {
	return &payment.Error{Provider: Name, Op: op, Reason: reason, Err: err}
}
