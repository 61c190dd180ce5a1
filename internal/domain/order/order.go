package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SanathKumar1997/teez/internal/domain/payment"
)

// Order is an immutable record of a completed checkout.
type Order struct {
	ID              string
	CustomerEmail   string
	TotalAmount     decimal.Decimal
	Items           []LineItem
	ShippingAddress Address
	// Payment is nil for orders placed without a payment confirmation.
	Payment   *payment.Reference
	CreatedAt time.Time
}

// LineItem is a snapshot of a cart line at submission time. It is decoupled
// from the live product, so later catalog changes do not alter the order.
type LineItem struct {
	ProductID int64           `json:"id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	Quantity  int             `json:"quantity"`
}

// Subtotal returns price x quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Address is the shipping destination of an order.
type Address struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state,omitempty"`
	Zip       string `json:"zip"`
}

// ItemsTotal returns the sum of price x quantity over items.
func ItemsTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, order *Order) error
	// ListByEmail returns the orders placed with email, newest first.
	ListByEmail(ctx context.Context, email string) ([]Order, error)
}
