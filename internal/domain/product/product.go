package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// DefaultStockQuantity is assigned to new products created without a stock level.
const DefaultStockQuantity = 100

// Product represents a catalog item available for purchase.
type Product struct {
	ID          int64
	Title       string
	Description string
	Image       string
	Category    string
	Rating      float64
	Reviews     int
	Colors      []string
	Sizes       []string

	StockQuantity int
	Pricing

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Pricing is the price state of a product. When DiscountPercentage is
// positive, OriginalPrice is set and Price is derived from it.
type Pricing struct {
	Price              decimal.Decimal
	OriginalPrice      *decimal.Decimal
	DiscountPercentage decimal.Decimal
}

// Discounted reports whether a discount is currently active.
func (p Pricing) Discounted() bool {
	return p.DiscountPercentage.IsPositive()
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context, f Filter) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
}

// PricingFunc computes new pricing from the current state of a product.
type PricingFunc func(current Product) (Pricing, error)

// Store extends Repository with the privileged write operations.
type Store interface {
	Repository

	Create(ctx context.Context, f Fields) (*Product, error)
	// Update overwrites every catalog field and resets any active discount.
	Update(ctx context.Context, id int64, f Fields) (*Product, error)
	Delete(ctx context.Context, id int64) error
	// UpdatePricing reads the product, calls fn and persists the returned
	// pricing as one atomic step. Concurrent calls on the same product are
	// serialized.
	UpdatePricing(ctx context.Context, id int64, fn PricingFunc) (*Product, error)
}
