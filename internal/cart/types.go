package cart

import (
	"github.com/fooddash/fooddash-backend/internal/catalog"
)

// LineItem is one cart entry. MenuItem is a full snapshot taken at add time
// so the line survives later menu edits or deletions.
type LineItem struct {
	ID                  string           `json:"id"`
	MenuItem            catalog.MenuItem `json:"menu_item"`
	Quantity            int              `json:"quantity"`
	SpecialInstructions string           `json:"special_instructions,omitempty"`
}

// Restaurant returns the snapshot restaurant for the line, if any.
func (li LineItem) Restaurant() *catalog.Restaurant {
	return li.MenuItem.Restaurant
}

// Composition describes which restaurant a cart belongs to. Primary is the
// restaurant of the first item added; Mixed is set when any later item comes
// from a different restaurant.
type Composition struct {
	Primary *catalog.Restaurant `json:"primary,omitempty"`
	Mixed   bool                `json:"mixed"`
}
