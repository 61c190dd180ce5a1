// Package payment defines the boundary to an external payment provider.
package payment

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrPayment is the sentinel every provider failure matches with errors.Is.
var ErrPayment = errors.New("payment failed")

// Error describes a provider rejection or an unreachable provider.
type Error struct {
	Provider string
	Op       string
	Reason   string
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("payment: %s %s: %s", e.Provider, e.Op, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports ErrPayment for any *Error.
func (e *Error) Is(target error) bool { return target == ErrPayment }

// Intent is a provider-side order the client pays against.
type Intent struct {
	// OrderID is the provider's order reference.
	OrderID string
	// Amount in minor currency units.
	Amount   int64
	Currency string
	// KeyID is the public key the client uses to open the checkout.
	KeyID string
}

// Confirmation is what the client reports back after paying.
type Confirmation struct {
	OrderID   string
	PaymentID string
	Signature string
}

// Reference is the verified payment recorded on an order.
type Reference struct {
	Provider  string
	OrderID   string
	PaymentID string
}

// Gateway creates payment intents and verifies client confirmations.
type Gateway interface {
	Name() string
	CreateIntent(ctx context.Context, amount decimal.Decimal) (*Intent, error)
	Verify(ctx context.Context, c Confirmation) (*Reference, error)
}

// ToMinorUnits converts a major-unit amount to minor units (x100), rounding
// half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
