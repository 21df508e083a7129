package orders

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fooddash/fooddash-backend/pkg/stripe"
)

const (
	orderNumberPrefix       = "ORD"
	orderNumberSuffixLen    = 5
	orderNumberSuffixChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	defaultEstimatedWindow  = "30-45 minutes"
	fallbackCustomerName    = "Customer"
	fallbackDeliveryAddress = "Address not provided"
	fallbackRestaurantName  = "Unknown Restaurant"
)

// Draft is a fully derived order ready to be recorded. Totals come from the
// settled charge, not from any client-supplied figures.
type Draft struct {
	OrderNumber       string
	CustomerName      string
	CustomerEmail     string
	CustomerPhone     string
	DeliveryAddress   string
	RestaurantID      string
	RestaurantName    string
	Items             []ContextItem
	Subtotal          decimal.Decimal
	DeliveryFee       decimal.Decimal
	Tax               decimal.Decimal
	Total             decimal.Decimal
	PaymentIntentID   string
	EstimatedDelivery string
}

// NewOrderNumber mints a human-readable order number: a millisecond timestamp
// plus a short random suffix so concurrent checkouts in the same millisecond
// stay distinct.
func NewOrderNumber(now time.Time) string {
	buf := make([]byte, orderNumberSuffixLen)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand is documented to never fail on supported platforms.
		panic(fmt.Sprintf("reading random bytes: %v", err))
	}

	var suffix strings.Builder
	for _, b := range buf {
		suffix.WriteByte(orderNumberSuffixChars[int(b)%len(orderNumberSuffixChars)])
	}
	return fmt.Sprintf("%s%d%s", orderNumberPrefix, now.UnixMilli(), suffix.String())
}

// BuildDraft derives an order from a settled payment intent. The charged
// amount is authoritative for the total; subtotal is recomputed from the
// metadata items and tax falls out as the remainder after subtotal and
// delivery fee. An order number carried in the intent metadata wins over the
// provided one. defaultDeliveryFee covers intents whose metadata carries no
// parseable fee; a metadata fee of zero is honored as-is.
func BuildDraft(snapshot *stripe.IntentSnapshot, orderNumber string, defaultDeliveryFee decimal.Decimal) Draft {
	checkout := ContextFromMetadata(snapshot.Metadata)
	if checkout.OrderNumber != "" {
		orderNumber = checkout.OrderNumber
	}
	checkout.DeliveryFee = deliveryFeeOrDefault(snapshot.Metadata, defaultDeliveryFee)

	total := decimal.NewFromInt(snapshot.AmountCents).Div(decimal.NewFromInt(100))

	subtotal := decimal.Zero
	for _, item := range checkout.Items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	tax := total.Sub(subtotal).Sub(checkout.DeliveryFee).Round(2)
	if tax.IsNegative() {
		tax = decimal.Zero
	}

	draft := Draft{
		OrderNumber:       orderNumber,
		CustomerName:      fallbackCustomerName,
		CustomerEmail:     checkout.CustomerEmail,
		DeliveryAddress:   fallbackDeliveryAddress,
		RestaurantID:      checkout.RestaurantID,
		RestaurantName:    checkout.RestaurantName,
		Items:             checkout.Items,
		Subtotal:          subtotal,
		DeliveryFee:       checkout.DeliveryFee,
		Tax:               tax,
		Total:             total,
		PaymentIntentID:   snapshot.ID,
		EstimatedDelivery: defaultEstimatedWindow,
	}
	if draft.RestaurantName == "" {
		draft.RestaurantName = fallbackRestaurantName
	}

	if shipping := snapshot.Shipping; shipping != nil {
		if strings.TrimSpace(shipping.Name) != "" {
			draft.CustomerName = shipping.Name
		}
		draft.CustomerPhone = shipping.Phone
		if addr := formatAddress(shipping.Address); addr != "" {
			draft.DeliveryAddress = addr
		}
	}

	return draft
}

// deliveryFeeOrDefault reads the fee straight out of the raw metadata so a
// present value of "0" is distinguishable from a missing key. Absent or
// unparseable fees fall back to the configured default.
func deliveryFeeOrDefault(metadata map[string]string, fallback decimal.Decimal) decimal.Decimal {
	raw, ok := metadata[metaKeyDeliveryFee]
	if !ok || raw == "" {
		return fallback
	}
	fee, err := decimal.NewFromString(raw)
	if err != nil {
		return fallback
	}
	return fee
}

func formatAddress(addr *stripe.ShippingAddress) string {
	if addr == nil {
		return ""
	}
	parts := make([]string, 0, 3)
	if addr.Line1 != "" {
		parts = append(parts, addr.Line1)
	}
	if addr.City != "" {
		parts = append(parts, addr.City)
	}
	region := strings.TrimSpace(addr.State + " " + addr.PostalCode)
	if region != "" {
		parts = append(parts, region)
	}
	return strings.Join(parts, ", ")
}
