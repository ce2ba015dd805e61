package shop

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/charcoalshop/pkg/config"
)

func TestQuote(t *testing.T) {
	p := DefaultPricing()

	tests := []struct {
		name     string
		subtotal int64
		want     Totals
	}{
		{"below threshold", 4500, Totals{Subtotal: 4500, ShippingCost: 500, Tax: 810, Total: 5810}},
		{"above threshold", 12000, Totals{Subtotal: 12000, ShippingCost: 0, Tax: 2160, Total: 14160}},
		{"exactly threshold", 10000, Totals{Subtotal: 10000, ShippingCost: 0, Tax: 1800, Total: 11800}},
		{"just below threshold", 9999, Totals{Subtotal: 9999, ShippingCost: 500, Tax: 1800, Total: 12299}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Quote(tt.subtotal)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.Subtotal+got.ShippingCost+got.Tax-got.Discount, got.Total)
		})
	}
}

func TestTaxRounding(t *testing.T) {
	p := DefaultPricing()

	// 0.18 * 25 = 4.5 rounds up, 0.18 * 24 = 4.32 rounds down, 0.18 * 3 = 0.54 rounds up.
	assert.Equal(t, int64(5), p.Tax(25))
	assert.Equal(t, int64(4), p.Tax(24))
	assert.Equal(t, int64(1), p.Tax(3))
	assert.Equal(t, int64(0), p.Tax(0))
}

func TestPricingFromConfig(t *testing.T) {
	p, err := PricingFromConfig(config.ShopConfig{
		FreeShippingThreshold: 5000,
		FlatShippingCost:      250,
		TaxRate:               "0.05",
		DeliveryWindow:        72 * time.Hour,
	})
	require.NoError(t, err)

	assert.True(t, p.TaxRate.Equal(decimal.RequireFromString("0.05")))
	assert.Equal(t, Totals{Subtotal: 1000, ShippingCost: 250, Tax: 50, Total: 1300}, p.Quote(1000))

	_, err = PricingFromConfig(config.ShopConfig{TaxRate: "eighteen"})
	assert.Error(t, err)

	_, err = PricingFromConfig(config.ShopConfig{TaxRate: "-0.1"})
	assert.Error(t, err)
}
