package shop

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/charcoalshop/pkg/config"
)

// Pricing holds the checkout money rules. Amounts are whole currency units.
type Pricing struct {
	FreeShippingThreshold int64
	FlatShippingCost      int64
	TaxRate               decimal.Decimal
	DeliveryWindow        time.Duration
}

func DefaultPricing() Pricing {
	return Pricing{
		FreeShippingThreshold: 10000,
		FlatShippingCost:      500,
		TaxRate:               decimal.RequireFromString("0.18"),
		DeliveryWindow:        7 * 24 * time.Hour,
	}
}

func PricingFromConfig(cfg config.ShopConfig) (Pricing, error) {
	rate, err := decimal.NewFromString(cfg.TaxRate)
	if err != nil {
		return Pricing{}, fmt.Errorf("failed to parse tax rate %q: %w", cfg.TaxRate, err)
	}
	if rate.IsNegative() {
		return Pricing{}, fmt.Errorf("tax rate %s is negative", rate)
	}
	return Pricing{
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		FlatShippingCost:      cfg.FlatShippingCost,
		TaxRate:               rate,
		DeliveryWindow:        cfg.DeliveryWindow,
	}, nil
}

type Totals struct {
	Subtotal     int64
	ShippingCost int64
	Tax          int64
	Discount     int64
	Total        int64
}

func (p Pricing) Quote(subtotal int64) Totals {
	shipping := p.FlatShippingCost
	if subtotal >= p.FreeShippingThreshold {
		shipping = 0
	}
	tax := p.Tax(subtotal)
	return Totals{
		Subtotal:     subtotal,
		ShippingCost: shipping,
		Tax:          tax,
		Total:        subtotal + shipping + tax,
	}
}

// Tax rounds half away from zero to the nearest whole unit.
func (p Pricing) Tax(subtotal int64) int64 {
	return decimal.NewFromInt(subtotal).Mul(p.TaxRate).Round(0).IntPart()
}
