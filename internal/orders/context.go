package orders

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Metadata keys attached to the payment intent at creation time. The intent
// is the only state that travels between create and confirm, so everything
// the order builder needs must round-trip through these keys.
const (
	metaKeyVersion        = "checkoutVersion"
	metaKeyOrderNumber    = "orderNumber"
	metaKeyCustomerEmail  = "customerEmail"
	metaKeyRestaurantID   = "restaurantId"
	metaKeyRestaurantName = "restaurantName"
	metaKeyDeliveryFee    = "deliveryFee"
	metaKeyItems          = "items"

	contextVersion = 1
)

// ContextItem is one cart line flattened for the metadata payload.
type ContextItem struct {
	ID                  string          `json:"id,omitempty"`
	Name                string          `json:"name"`
	Price               decimal.Decimal `json:"price"`
	Quantity            int             `json:"quantity"`
	SpecialInstructions string          `json:"special_instructions,omitempty"`
}

// CheckoutContext is the order-relevant cart state smuggled through the
// processor's intent metadata.
type CheckoutContext struct {
	// OrderNumber is the internal order reference. Checkout mints one at
	// intent creation when the caller did not supply it, so the recorded
	// order and the processor idempotency key share the same reference.
	OrderNumber    string
	CustomerEmail  string
	RestaurantID   string
	RestaurantName string
	DeliveryFee    decimal.Decimal
	Items          []ContextItem
}

// ToMetadata serializes the context into the flat string map the processor
// accepts.
func (c CheckoutContext) ToMetadata() (map[string]string, error) {
	items, err := json.Marshal(c.Items)
	if err != nil {
		return nil, fmt.Errorf("encoding context items: %w", err)
	}
	metadata := map[string]string{
		metaKeyVersion:        strconv.Itoa(contextVersion),
		metaKeyCustomerEmail:  c.CustomerEmail,
		metaKeyRestaurantID:   c.RestaurantID,
		metaKeyRestaurantName: c.RestaurantName,
		metaKeyDeliveryFee:    c.DeliveryFee.String(),
		metaKeyItems:          string(items),
	}
	if c.OrderNumber != "" {
		metadata[metaKeyOrderNumber] = c.OrderNumber
	}
	return metadata, nil
}

// ContextFromMetadata rebuilds the checkout context from intent metadata.
// Missing or malformed fields degrade to zero values rather than failing the
// confirmation; the charge has already settled by the time this runs.
func ContextFromMetadata(metadata map[string]string) CheckoutContext {
	ctx := CheckoutContext{
		OrderNumber:    metadata[metaKeyOrderNumber],
		CustomerEmail:  metadata[metaKeyCustomerEmail],
		RestaurantID:   metadata[metaKeyRestaurantID],
		RestaurantName: metadata[metaKeyRestaurantName],
	}

	if raw := metadata[metaKeyDeliveryFee]; raw != "" {
		if fee, err := decimal.NewFromString(raw); err == nil {
			ctx.DeliveryFee = fee
		}
	}
	if raw := metadata[metaKeyItems]; raw != "" {
		var items []ContextItem
		if err := json.Unmarshal([]byte(raw), &items); err == nil {
			ctx.Items = items
		}
	}
	return ctx
}
