package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/fooddash/fooddash-backend/internal/catalog"
	"github.com/fooddash/fooddash-backend/pkg/config"
)

func restaurantWithFee(id, name, fee string) *catalog.Restaurant {
	return &catalog.Restaurant{
		ID:          id,
		Name:        name,
		DeliveryFee: decimal.RequireFromString(fee),
	}
}

func testCalculator() Calculator {
	return NewCalculator(config.CheckoutConfig{
		TaxRate:            decimal.RequireFromString("0.0825"),
		DefaultDeliveryFee: decimal.RequireFromString("2.99"),
		MinimumChargeCents: 50,
	})
}

func TestCalculate_EmptyCartIsAllZeros(t *testing.T) {
	totals := testCalculator().Calculate(nil)

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.DeliveryFee.IsZero())
	assert.True(t, totals.Tax.IsZero())
	assert.True(t, totals.Total.IsZero())
	assert.EqualValues(t, 0, totals.TotalCents())
}

func TestCalculate_BreakdownSumsToTotal(t *testing.T) {
	luigis := restaurantWithFee("r1", "Luigi's", "2.99")
	items := []LineItem{
		{ID: "l1", MenuItem: menuItem("m1", "Lasagna", "14.50", luigis), Quantity: 1},
		{ID: "l2", MenuItem: menuItem("m2", "Garlic Bread", "7.50", luigis), Quantity: 2},
	}

	totals := testCalculator().Calculate(items)

	assert.Equal(t, "29.5", totals.Subtotal.String())
	assert.Equal(t, "2.99", totals.DeliveryFee.String())
	assert.Equal(t, "2.43", totals.Tax.String())
	assert.Equal(t, "34.92", totals.Total.String())
	assert.EqualValues(t, 3492, totals.TotalCents())
}

func TestCalculate_NoRestaurantMeansNoFee(t *testing.T) {
	items := []LineItem{
		{ID: "l1", MenuItem: menuItem("m1", "Pizza", "12.00", nil), Quantity: 1},
	}

	totals := testCalculator().Calculate(items)
	assert.True(t, totals.DeliveryFee.IsZero())
	assert.Equal(t, "12.99", totals.Total.String())
}

func TestCalculate_ZeroFeeRestaurantChargesZero(t *testing.T) {
	freeDelivery := restaurantWithFee("r1", "Campus Deli", "0.00")
	items := []LineItem{
		{ID: "l1", MenuItem: menuItem("m1", "BLT", "8.00", freeDelivery), Quantity: 1},
	}

	totals := testCalculator().Calculate(items)
	assert.True(t, totals.DeliveryFee.IsZero())
}

func TestCalculate_FeeFollowsFirstLineRestaurant(t *testing.T) {
	premium := restaurantWithFee("r1", "Harbor Grill", "4.99")
	items := []LineItem{
		{ID: "l1", MenuItem: menuItem("m1", "Chowder", "9.00", premium), Quantity: 1},
	}

	totals := testCalculator().Calculate(items)
	assert.Equal(t, "4.99", totals.DeliveryFee.String())
}

func TestCalculate_FirstRestaurantCarryingLineWins(t *testing.T) {
	premium := restaurantWithFee("r1", "Harbor Grill", "4.99")
	items := []LineItem{
		{ID: "l1", MenuItem: menuItem("m1", "Soda", "2.00", nil), Quantity: 1},
		{ID: "l2", MenuItem: menuItem("m2", "Chowder", "9.00", premium), Quantity: 1},
	}

	totals := testCalculator().Calculate(items)
	assert.Equal(t, "4.99", totals.DeliveryFee.String())
}

func TestMeetsMinimum(t *testing.T) {
	calc := testCalculator()

	small := calc.Calculate([]LineItem{
		{ID: "l1", MenuItem: menuItem("m1", "Mint", "0.10", nil), Quantity: 1},
	})
	assert.False(t, small.MeetsMinimum(50))

	covered := calc.Calculate([]LineItem{
		{ID: "l1", MenuItem: menuItem("m1", "Mint", "0.60", nil), Quantity: 1},
	})
	assert.True(t, covered.MeetsMinimum(50))

	tiny := Totals{Total: decimal.RequireFromString("0.49")}
	assert.False(t, tiny.MeetsMinimum(50))
	atFloor := Totals{Total: decimal.RequireFromString("0.50")}
	assert.True(t, atFloor.MeetsMinimum(50))
}
