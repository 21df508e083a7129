package cart

import (
	"github.com/shopspring/decimal"

	"github.com/fooddash/fooddash-backend/pkg/config"
)

var centsPerDollar = decimal.NewFromInt(100)

// Totals is the priced breakdown of a cart.
type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
}

// TotalCents is the grand total in integer cents, the unit the payment
// processor charges in.
func (t Totals) TotalCents() int64 {
	return t.Total.Mul(centsPerDollar).Round(0).IntPart()
}

// MeetsMinimum reports whether the total clears the processor's floor.
func (t Totals) MeetsMinimum(minimumCents int64) bool {
	return t.TotalCents() >= minimumCents
}

// Calculator prices a cart. Tax is rounded to cents at calculation time so
// the displayed breakdown always sums to the charged total.
type Calculator struct {
	taxRate decimal.Decimal
}

func NewCalculator(cfg config.CheckoutConfig) Calculator {
	return Calculator{
		taxRate: cfg.TaxRate,
	}
}

// Calculate prices the given lines. An empty cart is all zeros. The delivery
// fee is whatever the first restaurant-carrying line's snapshot says, zero
// included; a cart with no restaurant info ships free.
func (c Calculator) Calculate(items []LineItem) Totals {
	if len(items) == 0 {
		return Totals{
			Subtotal:    decimal.Zero,
			DeliveryFee: decimal.Zero,
			Tax:         decimal.Zero,
			Total:       decimal.Zero,
		}
	}

	subtotal := decimal.Zero
	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		subtotal = subtotal.Add(item.MenuItem.Price.Mul(qty))
	}

	fee := decimal.Zero
	for _, item := range items {
		if restaurant := item.Restaurant(); restaurant != nil {
			fee = restaurant.DeliveryFee
			break
		}
	}

	tax := subtotal.Mul(c.taxRate).Round(2)

	return Totals{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Tax:         tax,
		Total:       subtotal.Add(fee).Add(tax),
	}
}
