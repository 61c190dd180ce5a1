package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SanathKumar1997/teez/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDiscount(t *testing.T) {
	tests := []struct {
		name         string
		price        string
		original     string
		pct          string
		wantPrice    string
		wantOriginal string
	}{
		{
			name:         "first discount uses current price as original",
			price:        "40.00",
			pct:          "25",
			wantPrice:    "30.00",
			wantOriginal: "40.00",
		},
		{
			name:         "discount on discounted product starts from original",
			price:        "30.00",
			original:     "40.00",
			pct:          "50",
			wantPrice:    "20.00",
			wantOriginal: "40.00",
		},
		{
			name:         "zero percent restores original price",
			price:        "30.00",
			original:     "40.00",
			pct:          "0",
			wantPrice:    "40.00",
			wantOriginal: "40.00",
		},
		{
			name:         "hundred percent makes product free",
			price:        "29.99",
			pct:          "100",
			wantPrice:    "0",
			wantOriginal: "29.99",
		},
		{
			name:         "result rounded to cents",
			price:        "29.99",
			pct:          "10",
			wantPrice:    "26.99",
			wantOriginal: "29.99",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Product{ID: 1, Pricing: Pricing{Price: dec(tt.price)}}
			if tt.original != "" {
				o := dec(tt.original)
				p.OriginalPrice = &o
			}

			got, err := Discount(p, dec(tt.pct))
			require.NoError(t, err)
			assert.True(t, dec(tt.wantPrice).Equal(got.Price), "price: got %s, want %s", got.Price, tt.wantPrice)
			require.NotNil(t, got.OriginalPrice)
			assert.True(t, dec(tt.wantOriginal).Equal(*got.OriginalPrice), "original: got %s", got.OriginalPrice)
			assert.True(t, dec(tt.pct).Equal(got.DiscountPercentage))
		})
	}
}

func TestDiscount_OutOfRange(t *testing.T) {
	p := Product{Pricing: Pricing{Price: dec("10")}}

	for _, pct := range []string{"-1", "100.01", "250"} {
		_, err := Discount(p, dec(pct))

		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr, "pct %s", pct)
		assert.Equal(t, "discount_percentage", vErr.Field)
	}
}

func TestDiscount_NonCompounding(t *testing.T) {
	p := Product{Pricing: Pricing{Price: dec("80.00")}}

	first, err := Discount(p, dec("10"))
	require.NoError(t, err)
	p.Pricing = first

	second, err := Discount(p, dec("25"))
	require.NoError(t, err)

	// 80 * 0.75, not 72 * 0.75.
	assert.True(t, dec("60.00").Equal(second.Price), "got %s", second.Price)
	assert.True(t, dec("80.00").Equal(*second.OriginalPrice))
}
