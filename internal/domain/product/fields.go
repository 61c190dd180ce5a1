package product

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/SanathKumar1997/teez/internal/domain"
)

// Fields is the admin-editable content of a product.
type Fields struct {
	Title       string
	Description string
	Image       string
	Category    string
	Price       decimal.Decimal
	Rating      float64
	Reviews     int
	Colors      []string
	Sizes       []string
	// StockQuantity defaults to DefaultStockQuantity when nil.
	StockQuantity *int
}

// Stock returns the effective stock quantity.
func (f Fields) Stock() int {
	if f.StockQuantity == nil {
		return DefaultStockQuantity
	}
	return *f.StockQuantity
}

// Validate checks the field ranges enforced by the catalog.
func (f Fields) Validate() error {
	switch {
	case strings.TrimSpace(f.Title) == "":
		return domain.Invalid("title", "required")
	case f.Price.IsNegative():
		return domain.Invalid("price", "must not be negative")
	case f.Rating < 0 || f.Rating > 5:
		return domain.Invalid("rating", "must be between 0 and 5")
	case f.Reviews < 0:
		return domain.Invalid("reviews", "must not be negative")
	case f.Stock() < 0:
		return domain.Invalid("stock_quantity", "must not be negative")
	}
	return nil
}

// Normalize trims text fields and drops blank colors and sizes.
func (f Fields) Normalize() Fields {
	f.Title = strings.TrimSpace(f.Title)
	f.Category = strings.TrimSpace(f.Category)
	f.Colors = compact(f.Colors)
	f.Sizes = compact(f.Sizes)
	return f
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
