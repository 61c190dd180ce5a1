// Package client is a Go client for the storefront HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/SanathKumar1997/teez/internal/domain/order"
)

// DefaultBaseURL is the address of a locally running API server.
const DefaultBaseURL = "http://localhost:8080"

// APIError is a non-2xx response of the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// Product is a catalog entry as served by the API.
type Product struct {
	ID                 int64            `json:"id"`
	Title              string           `json:"title"`
	Price              decimal.Decimal  `json:"price"`
	OriginalPrice      *decimal.Decimal `json:"original_price"`
	DiscountPercentage decimal.Decimal  `json:"discount_percentage"`
	StockQuantity      int              `json:"stock_quantity"`
	Image              string           `json:"image"`
	Category           string           `json:"category"`
	Description        string           `json:"description"`
	Rating             float64          `json:"rating"`
	Reviews            int              `json:"reviews"`
	Colors             []string         `json:"colors"`
	Sizes              []string         `json:"sizes"`
}

// Order is a placed order as served by the API.
type Order struct {
	ID              string           `json:"id"`
	CustomerEmail   string           `json:"customer_email"`
	TotalAmount     decimal.Decimal  `json:"total_amount"`
	Items           []order.LineItem `json:"items"`
	ShippingAddress order.Address    `json:"shipping_address"`
	CreatedAt       time.Time        `json:"created_at"`
}

// OrderRequest places an order. The payment fields carry the provider
// confirmation and may be left empty when the server does not require one.
type OrderRequest struct {
	CustomerEmail   string           `json:"customer_email"`
	TotalAmount     decimal.Decimal  `json:"total_amount"`
	Items           []order.LineItem `json:"items"`
	ShippingAddress order.Address    `json:"shipping_address"`
	PaymentID       string           `json:"payment_id,omitempty"`
	OrderID         string           `json:"order_id,omitempty"`
	Signature       string           `json:"signature,omitempty"`
}

// PaymentIntent is a provider order created for a checkout amount.
type PaymentIntent struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

// User is the account returned on register and login.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// Session is a successful register or login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// Discount is the result of a discount application.
type Discount struct {
	ID                 int64           `json:"id"`
	OriginalPrice      decimal.Decimal `json:"original_price"`
	NewPrice           decimal.Decimal `json:"new_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithToken authenticates requests with a session token.
func WithToken(token string) Option {
	return func(cl *Client) { cl.token = token }
}

// Client calls the storefront API.
type Client struct {
	base  *url.URL
	http  *http.Client
	token string
}

// New creates a Client for the API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("base url %q must be absolute", baseURL)
	}
	c := &Client{
		base: u,
		http: &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Products lists the catalog, optionally filtered by category and title search.
func (c *Client) Products(ctx context.Context, category, search string) ([]Product, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if search != "" {
		q.Set("search", search)
	}
	var out []Product
	if err := c.do(ctx, http.MethodGet, "/api/products", q, nil, &out); err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return out, nil
}

// Product returns a single catalog entry.
func (c *Client) Product(ctx context.Context, id int64) (*Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+strconv.FormatInt(id, 10), nil, nil, &out); err != nil {
		return nil, errors.Wrapf(err, "get product %d", id)
	}
	return &out, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, name, email, password string) (*Session, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	var out Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, body, &out); err != nil {
		return nil, errors.Wrap(err, "register")
	}
	return &out, nil
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var out Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &out); err != nil {
		return nil, errors.Wrap(err, "login")
	}
	return &out, nil
}

// CreatePaymentIntent creates a provider order for amount.
func (c *Client) CreatePaymentIntent(ctx context.Context, amount decimal.Decimal) (*PaymentIntent, error) {
	body := map[string]decimal.Decimal{"amount": amount}
	var out PaymentIntent
	if err := c.do(ctx, http.MethodPost, "/api/create-payment-intent", nil, body, &out); err != nil {
		return nil, errors.Wrap(err, "create payment intent")
	}
	return &out, nil
}

// CreateOrder places an order and returns its id.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/orders", nil, req, &out); err != nil {
		return "", errors.Wrap(err, "create order")
	}
	return out.ID, nil
}

// Orders lists the orders placed with email, newest first.
func (c *Client) Orders(ctx context.Context, email string) ([]Order, error) {
	var out []Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/user/"+url.PathEscape(email), nil, nil, &out); err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return out, nil
}

// ApplyDiscount sets a product's discount. Requires an admin token.
func (c *Client) ApplyDiscount(ctx context.Context, id int64, pct decimal.Decimal) (*Discount, error) {
	body := map[string]decimal.Decimal{"discount_percentage": pct}
	var out Discount
	path := "/api/products/" + strconv.FormatInt(id, 10) + "/discount"
	if err := c.do(ctx, http.MethodPatch, path, nil, body, &out); err != nil {
		return nil, errors.Wrapf(err, "discount product %d", id)
	}
	return &out, nil
}

// DeleteProduct removes a product. Requires an admin token.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, "/api/products/"+strconv.FormatInt(id, 10), nil, nil, nil); err != nil {
		return errors.Wrapf(err, "delete product %d", id)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.base.JoinPath(path)
	u.RawQuery = query.Encode()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshal request")
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), r)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "send request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var e struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&e); err == nil && e.Message != "" {
			apiErr.Message = e.Message
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
