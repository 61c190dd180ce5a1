package order

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/SanathKumar1997/teez/internal/domain"
	"github.com/SanathKumar1997/teez/internal/domain/payment"
)

// ErrConfirmationRequired is returned by Checkout when the service only
// accepts paid orders and the request carries no confirmation.
var ErrConfirmationRequired = &payment.Error{
	Provider: "checkout",
	Op:       "verify",
	Reason:   "payment confirmation required",
}

// CreateRequest holds the input for creating an order.
type CreateRequest struct {
	CustomerEmail   string
	TotalAmount     decimal.Decimal
	Items           []LineItem
	ShippingAddress Address
	Payment         *payment.Reference
}

// CheckoutRequest is a CreateRequest together with the client's payment
// confirmation.
type CheckoutRequest struct {
	Order        CreateRequest
	Confirmation *payment.Confirmation
}

// Option configures a Service.
type Option func(*Service)

// WithMeterProvider sets the meter provider for order metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Service) { s.meter = mp.Meter("teez/order") }
}

// WithConfirmationRequired makes Checkout reject orders without a payment
// confirmation.
func WithConfirmationRequired(required bool) Option {
	return func(s *Service) { s.requireConfirmation = required }
}

// Service records orders and lists them back.
type Service struct {
	orders              Repository
	gateway             payment.Gateway
	requireConfirmation bool

	meter   metric.Meter
	created metric.Int64Counter
}

// NewService creates an order Service.
func NewService(orders Repository, gateway payment.Gateway, opts ...Option) (*Service, error) {
	s := &Service{
		orders:  orders,
		gateway: gateway,
		meter:   noop.NewMeterProvider().Meter("teez/order"),
	}
	for _, o := range opts {
		o(s)
	}

	var err error
	if s.created, err = s.meter.Int64Counter("teez.orders.created",
		metric.WithDescription("Number of orders created"),
	); err != nil {
		return nil, errors.Wrap(err, "orders counter")
	}
	return s, nil
}

// CreateOrder persists a new order and returns it.
//
// The submitted total is stored as given. It is not recomputed against the
// live catalog and stock is not checked; a total that differs from the item
// sum is only logged.
func (s *Service) CreateOrder(ctx context.Context, req CreateRequest) (*Order, error) {
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	lg := zctx.From(ctx)
	if sum := ItemsTotal(req.Items); !sum.Equal(req.TotalAmount) {
		lg.Warn("Order total differs from item sum",
			zap.String("submitted", req.TotalAmount.String()),
			zap.String("items_sum", sum.String()),
		)
	}

	o := &Order{
		ID:              uuid.New().String(),
		CustomerEmail:   req.CustomerEmail,
		TotalAmount:     req.TotalAmount,
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
		Payment:         req.Payment,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	provider := "none"
	if o.Payment != nil {
		provider = o.Payment.Provider
	}
	s.created.Add(ctx, 1, metric.WithAttributes(attribute.String("payment.provider", provider)))

	return o, nil
}

// Checkout verifies the payment confirmation with the gateway and then
// creates the order with the payment reference recorded on it.
//
// A failure to store the order after the payment was verified is logged
// with the payment reference and returned; it is not compensated.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*Order, error) {
	if req.Confirmation == nil {
		if s.requireConfirmation {
			return nil, ErrConfirmationRequired
		}
		return s.CreateOrder(ctx, req.Order)
	}

	// Validate before verifying so a malformed order is never paired
	// with a captured payment.
	req.Order.CustomerEmail = strings.TrimSpace(req.Order.CustomerEmail)
	if err := validateCreate(req.Order); err != nil {
		return nil, err
	}

	ref, err := s.gateway.Verify(ctx, *req.Confirmation)
	if err != nil {
		return nil, errors.Wrap(err, "verify payment")
	}
	req.Order.Payment = ref

	o, err := s.CreateOrder(ctx, req.Order)
	if err != nil {
		zctx.From(ctx).Error("Order not stored after payment",
			zap.String("provider", ref.Provider),
			zap.String("provider_order_id", ref.OrderID),
			zap.String("provider_payment_id", ref.PaymentID),
			zap.String("customer_email", req.Order.CustomerEmail),
			zap.Error(err),
		)
		return nil, err
	}
	return o, nil
}

// CreateIntent asks the gateway for a payment intent covering amount.
func (s *Service) CreateIntent(ctx context.Context, amount decimal.Decimal) (*payment.Intent, error) {
	if !amount.IsPositive() {
		return nil, domain.Invalid("amount", "must be positive")
	}
	intent, err := s.gateway.CreateIntent(ctx, amount)
	if err != nil {
		return nil, errors.Wrap(err, "create payment intent")
	}
	return intent, nil
}

// ListOrdersForUser returns the orders placed with email, newest first.
func (s *Service) ListOrdersForUser(ctx context.Context, email string) ([]Order, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, domain.Invalid("email", "required")
	}
	orders, err := s.orders.ListByEmail(ctx, email)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

func validateCreate(req CreateRequest) error {
	if req.CustomerEmail == "" {
		return domain.Invalid("customer_email", "required")
	}
	if len(req.Items) == 0 {
		return domain.Invalid("items", "at least one item required")
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return domain.Invalid("items", "quantity must be greater than 0")
		}
		if it.Price.IsNegative() {
			return domain.Invalid("items", "price must not be negative")
		}
	}
	if req.TotalAmount.IsNegative() {
		return domain.Invalid("total_amount", "must not be negative")
	}
	return nil
}
