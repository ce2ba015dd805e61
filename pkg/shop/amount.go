package shop

import (
	"github.com/example/charcoalshop/pkg/apperr"
	"github.com/example/charcoalshop/pkg/models"
)

// maxAmount caps every line and cart subtotal. Totals stay far from int64
// overflow after tax and shipping, and exact as JSON numbers.
const maxAmount int64 = 1 << 53

func lineAmount(price, quantity int64) (int64, error) {
	if price < 0 || quantity < 0 {
		return 0, apperr.Validation("price and quantity must not be negative")
	}
	if price != 0 && quantity > maxAmount/price {
		return 0, apperr.Validation("order amount exceeds the limit of %d", maxAmount)
	}
	return price * quantity, nil
}

func sumLines(items []models.CartItem) (int64, error) {
	var total int64
	for _, item := range items {
		amount, err := lineAmount(item.Price, item.Quantity)
		if err != nil {
			return 0, err
		}
		if total > maxAmount-amount {
			return 0, apperr.Validation("order amount exceeds the limit of %d", maxAmount)
		}
		total += amount
	}
	return total, nil
}
