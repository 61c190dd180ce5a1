package product

import (
	"github.com/shopspring/decimal"

	"github.com/SanathKumar1997/teez/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Discount derives new pricing for a discount of pct percent. The new price
// is always computed from the true original price (the stored original price,
// or the current price when no discount was ever applied), so repeated
// applications do not compound. Prices are rounded to cents.
func Discount(current Product, pct decimal.Decimal) (Pricing, error) {
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return Pricing{}, domain.Invalid("discount_percentage", "must be between 0 and 100")
	}

	original := current.Price
	if current.OriginalPrice != nil {
		original = *current.OriginalPrice
	}

	factor := decimal.NewFromInt(1).Sub(pct.Div(hundred))
	return Pricing{
		Price:              original.Mul(factor).Round(2),
		OriginalPrice:      &original,
		DiscountPercentage: pct,
	}, nil
}

// DiscountFunc adapts Discount to a PricingFunc for Store.UpdatePricing.
func DiscountFunc(pct decimal.Decimal) PricingFunc {
	return func(current Product) (Pricing, error) {
		return Discount(current, pct)
	}
}
