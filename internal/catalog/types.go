package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fooddash/fooddash-backend/pkg/cosmic"
)

// CuisineType enumerates the restaurant cuisine select values.
type CuisineType string

const (
	CuisineAmerican      CuisineType = "American"
	CuisineItalian       CuisineType = "Italian"
	CuisineMexican       CuisineType = "Mexican"
	CuisineAsian         CuisineType = "Asian"
	CuisineIndian        CuisineType = "Indian"
	CuisineMediterranean CuisineType = "Mediterranean"
)

// DeliveryZone is a named service area used for filtering and display.
type DeliveryZone struct {
	ID       string          `json:"id"`
	Slug     string          `json:"slug"`
	Name     string          `json:"name"`
	ZipCodes string          `json:"zip_codes,omitempty"`
	BaseFee  decimal.Decimal `json:"base_delivery_fee"`
	IsActive bool            `json:"is_active"`
}

// Restaurant is the storefront view of a restaurant record.
type Restaurant struct {
	ID           string          `json:"id"`
	Slug         string          `json:"slug"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Address      string          `json:"address,omitempty"`
	Phone        string          `json:"phone,omitempty"`
	Cuisine      CuisineType     `json:"cuisine_type"`
	Rating       float64         `json:"rating,omitempty"`
	DeliveryFee  decimal.Decimal `json:"delivery_fee"`
	MinimumOrder decimal.Decimal `json:"minimum_order"`
	DeliveryTime string          `json:"delivery_time,omitempty"`
	IsOpen       bool            `json:"is_open"`
	DeliveryZone *DeliveryZone   `json:"delivery_zone,omitempty"`
}

// Category groups menu items for browsing.
type Category struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// MenuItem is a restaurant dish. The embedded restaurant and category are the
// depth-1 resolutions from the content backend; cart line items snapshot the
// whole struct so orders survive later menu edits.
type MenuItem struct {
	ID           string          `json:"id"`
	Slug         string          `json:"slug"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	IsVegetarian bool            `json:"is_vegetarian"`
	IsSpicy      bool            `json:"is_spicy"`
	Available    bool            `json:"available"`
	Restaurant   *Restaurant     `json:"restaurant,omitempty"`
	Category     *Category       `json:"category,omitempty"`
}

type restaurantMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	CuisineType struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"cuisine_type"`
	Rating       float64         `json:"rating"`
	DeliveryFee  decimal.Decimal `json:"delivery_fee"`
	MinimumOrder decimal.Decimal `json:"minimum_order"`
	DeliveryTime string          `json:"delivery_time"`
	IsOpen       bool            `json:"is_open"`
	DeliveryZone json.RawMessage `json:"delivery_zone"`
}

type zoneMetadata struct {
	ZoneName string          `json:"zone_name"`
	ZipCodes string          `json:"zip_codes"`
	BaseFee  decimal.Decimal `json:"base_delivery_fee"`
	IsActive bool            `json:"is_active"`
}

type categoryMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type menuItemMetadata struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	IsVegetarian bool            `json:"is_vegetarian"`
	IsSpicy      bool            `json:"is_spicy"`
	Available    bool            `json:"available"`
	Restaurant   json.RawMessage `json:"restaurant"`
	Category     json.RawMessage `json:"category"`
}

func restaurantFromObject(obj cosmic.Object) (Restaurant, error) {
	var meta restaurantMetadata
	if len(obj.Metadata) > 0 {
		if err := json.Unmarshal(obj.Metadata, &meta); err != nil {
			return Restaurant{}, fmt.Errorf("decoding restaurant %s: %w", obj.ID, err)
		}
	}

	name := meta.Name
	if name == "" {
		name = obj.Title
	}

	restaurant := Restaurant{
		ID:           obj.ID,
		Slug:         obj.Slug,
		Name:         name,
		Description:  meta.Description,
		Address:      meta.Address,
		Phone:        meta.Phone,
		Cuisine:      CuisineType(meta.CuisineType.Value),
		Rating:       meta.Rating,
		DeliveryFee:  meta.DeliveryFee,
		MinimumOrder: meta.MinimumOrder,
		DeliveryTime: meta.DeliveryTime,
		IsOpen:       meta.IsOpen,
	}

	if zone, ok := zoneFromReference(meta.DeliveryZone); ok {
		restaurant.DeliveryZone = &zone
	}

	return restaurant, nil
}

// zoneFromReference tolerates the two shapes the backend returns for a
// reference field: a resolved object at depth 1, or a bare id string.
func zoneFromReference(raw json.RawMessage) (DeliveryZone, bool) {
	if len(raw) == 0 {
		return DeliveryZone{}, false
	}

	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		if id == "" {
			return DeliveryZone{}, false
		}
		return DeliveryZone{ID: id}, true
	}

	var obj cosmic.Object
	if err := json.Unmarshal(raw, &obj); err != nil || obj.ID == "" {
		return DeliveryZone{}, false
	}
	zone, err := zoneFromObject(obj)
	if err != nil {
		return DeliveryZone{}, false
	}
	return zone, true
}

func zoneFromObject(obj cosmic.Object) (DeliveryZone, error) {
	var meta zoneMetadata
	if len(obj.Metadata) > 0 {
		if err := json.Unmarshal(obj.Metadata, &meta); err != nil {
			return DeliveryZone{}, fmt.Errorf("decoding delivery zone %s: %w", obj.ID, err)
		}
	}
	name := meta.ZoneName
	if name == "" {
		name = obj.Title
	}
	return DeliveryZone{
		ID:       obj.ID,
		Slug:     obj.Slug,
		Name:     name,
		ZipCodes: meta.ZipCodes,
		BaseFee:  meta.BaseFee,
		IsActive: meta.IsActive,
	}, nil
}

func categoryFromObject(obj cosmic.Object) (Category, error) {
	var meta categoryMetadata
	if len(obj.Metadata) > 0 {
		if err := json.Unmarshal(obj.Metadata, &meta); err != nil {
			return Category{}, fmt.Errorf("decoding category %s: %w", obj.ID, err)
		}
	}
	name := meta.Name
	if name == "" {
		name = obj.Title
	}
	return Category{
		ID:          obj.ID,
		Slug:        obj.Slug,
		Name:        name,
		Description: meta.Description,
		Icon:        meta.Icon,
	}, nil
}

func menuItemFromObject(obj cosmic.Object) (MenuItem, error) {
	var meta menuItemMetadata
	if len(obj.Metadata) > 0 {
		if err := json.Unmarshal(obj.Metadata, &meta); err != nil {
			return MenuItem{}, fmt.Errorf("decoding menu item %s: %w", obj.ID, err)
		}
	}

	name := meta.Name
	if name == "" {
		name = obj.Title
	}

	item := MenuItem{
		ID:           obj.ID,
		Slug:         obj.Slug,
		Name:         name,
		Description:  meta.Description,
		Price:        meta.Price,
		IsVegetarian: meta.IsVegetarian,
		IsSpicy:      meta.IsSpicy,
		Available:    meta.Available,
	}

	if len(meta.Restaurant) > 0 {
		var restObj cosmic.Object
		if err := json.Unmarshal(meta.Restaurant, &restObj); err == nil && restObj.ID != "" {
			if restaurant, err := restaurantFromObject(restObj); err == nil {
				item.Restaurant = &restaurant
			}
		}
	}
	if len(meta.Category) > 0 {
		var catObj cosmic.Object
		if err := json.Unmarshal(meta.Category, &catObj); err == nil && catObj.ID != "" {
			if category, err := categoryFromObject(catObj); err == nil {
				item.Category = &category
			}
		}
	}

	return item, nil
}
