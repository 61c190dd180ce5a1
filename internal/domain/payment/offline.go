package payment

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/shopspring/decimal"
)

// OfflineName is the provider name of Offline.
const OfflineName = "offline"

// Offline is a Gateway for development and tests that never contacts a
// provider. Intents get sequential ids and any confirmation naming an order
// and a payment is accepted.
type Offline struct {
	Currency string
	seq      atomic.Int64
}

var _ Gateway = (*Offline)(nil)

// Name implements Gateway.
func (o *Offline) Name() string { return OfflineName }

// CreateIntent implements Gateway.
func (o *Offline) CreateIntent(_ context.Context, amount decimal.Decimal) (*Intent, error) {
	if !amount.IsPositive() {
		return nil, &Error{Provider: OfflineName, Op: "create order", Reason: "amount must be positive"}
	}
	currency := o.Currency
	if currency == "" {
		currency = "INR"
	}
	return &Intent{
		OrderID:  fmt.Sprintf("offline_%d", o.seq.Add(1)),
		Amount:   ToMinorUnits(amount),
		Currency: currency,
	}, nil
}

// Verify implements Gateway.
func (o *Offline) Verify(_ context.Context, c Confirmation) (*Reference, error) {
	if c.OrderID == "" || c.PaymentID == "" {
		return nil, &Error{Provider: OfflineName, Op: "verify", Reason: "incomplete confirmation"}
	}
	return &Reference{Provider: OfflineName, OrderID: c.OrderID, PaymentID: c.PaymentID}, nil
}
