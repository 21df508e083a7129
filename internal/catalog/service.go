package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/fooddash/fooddash-backend/pkg/cosmic"
	pkgerrors "github.com/fooddash/fooddash-backend/pkg/errors"
)

const (
	typeRestaurants   = "restaurants"
	typeMenuItems     = "menu-items"
	typeCategories    = "categories"
	typeDeliveryZones = "delivery-zones"

	defaultFeaturedLimit = 6
)

var listProps = []string{"id", "title", "slug", "metadata", "type"}

// ContentClient is the subset of the content-backend surface the catalog uses.
type ContentClient interface {
	Find(ctx context.Context, q cosmic.Query) ([]cosmic.Object, error)
	FindOne(ctx context.Context, q cosmic.Query) (*cosmic.Object, error)
}

// Service exposes read operations over the restaurant catalog.
type Service interface {
	Restaurants(ctx context.Context) ([]Restaurant, error)
	RestaurantsByCuisine(ctx context.Context, cuisine string) ([]Restaurant, error)
	RestaurantsByZone(ctx context.Context, zoneID string) ([]Restaurant, error)
	RestaurantBySlug(ctx context.Context, slug string) (*Restaurant, error)
	MenuItemByID(ctx context.Context, id string) (*MenuItem, error)
	MenuItemsByRestaurant(ctx context.Context, restaurantID string) ([]MenuItem, error)
	MenuItemsByCategory(ctx context.Context, categoryID string) ([]MenuItem, error)
	FeaturedMenuItems(ctx context.Context, limit int) ([]MenuItem, error)
	Categories(ctx context.Context) ([]Category, error)
	DeliveryZones(ctx context.Context) ([]DeliveryZone, error)
	Search(ctx context.Context, query string) (*SearchResult, error)
}

// SearchResult groups matches across restaurants and menu items.
type SearchResult struct {
	Restaurants []Restaurant `json:"restaurants"`
	MenuItems   []MenuItem   `json:"menu_items"`
}

type service struct {
	content ContentClient
}

// NewService wires the catalog against a content client.
func NewService(content ContentClient) (Service, error) {
	if content == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "content client required")
	}
	return &service{content: content}, nil
}

func (s *service) Restaurants(ctx context.Context) ([]Restaurant, error) {
	restaurants, err := s.findRestaurants(ctx, map[string]any{"type": typeRestaurants})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(restaurants, func(i, j int) bool {
		return restaurants[i].Rating > restaurants[j].Rating
	})
	return restaurants, nil
}

func (s *service) RestaurantsByCuisine(ctx context.Context, cuisine string) ([]Restaurant, error) {
	return s.findRestaurants(ctx, map[string]any{
		"type":                      typeRestaurants,
		"metadata.cuisine_type.key": cuisine,
	})
}

func (s *service) RestaurantsByZone(ctx context.Context, zoneID string) ([]Restaurant, error) {
	return s.findRestaurants(ctx, map[string]any{
		"type":                   typeRestaurants,
		"metadata.delivery_zone": zoneID,
	})
}

func (s *service) RestaurantBySlug(ctx context.Context, slug string) (*Restaurant, error) {
	obj, err := s.content.FindOne(ctx, cosmic.Query{
		Filter: map[string]any{"type": typeRestaurants, "slug": slug},
		Depth:  1,
	})
	if err != nil {
		if errors.Is(err, cosmic.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch restaurant")
	}

	restaurant, err := restaurantFromObject(*obj)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode restaurant")
	}
	return &restaurant, nil
}

func (s *service) MenuItemByID(ctx context.Context, id string) (*MenuItem, error) {
	obj, err := s.content.FindOne(ctx, cosmic.Query{
		Filter: map[string]any{"type": typeMenuItems, "id": id},
		Depth:  1,
	})
	if err != nil {
		if errors.Is(err, cosmic.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch menu item")
	}

	item, err := menuItemFromObject(*obj)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode menu item")
	}
	return &item, nil
}

func (s *service) MenuItemsByRestaurant(ctx context.Context, restaurantID string) ([]MenuItem, error) {
	items, err := s.findMenuItems(ctx, map[string]any{
		"type":                typeMenuItems,
		"metadata.restaurant": restaurantID,
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Price.LessThan(items[j].Price)
	})
	return items, nil
}

func (s *service) MenuItemsByCategory(ctx context.Context, categoryID string) ([]MenuItem, error) {
	return s.findMenuItems(ctx, map[string]any{
		"type":              typeMenuItems,
		"metadata.category": categoryID,
	})
}

func (s *service) FeaturedMenuItems(ctx context.Context, limit int) ([]MenuItem, error) {
	if limit <= 0 {
		limit = defaultFeaturedLimit
	}

	items, err := s.findMenuItems(ctx, map[string]any{
		"type":               typeMenuItems,
		"metadata.available": true,
	})
	if err != nil {
		return nil, err
	}

	rated := items[:0]
	for _, item := range items {
		if item.Restaurant != nil && item.Restaurant.Rating > 0 {
			rated = append(rated, item)
		}
	}
	sort.SliceStable(rated, func(i, j int) bool {
		return rated[i].Restaurant.Rating > rated[j].Restaurant.Rating
	})

	if len(rated) > limit {
		rated = rated[:limit]
	}
	return rated, nil
}

func (s *service) Categories(ctx context.Context) ([]Category, error) {
	objects, err := s.content.Find(ctx, cosmic.Query{
		Filter: map[string]any{"type": typeCategories},
		Props:  listProps,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}

	categories := make([]Category, 0, len(objects))
	for _, obj := range objects {
		category, err := categoryFromObject(obj)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode category")
		}
		categories = append(categories, category)
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

func (s *service) DeliveryZones(ctx context.Context) ([]DeliveryZone, error) {
	objects, err := s.content.Find(ctx, cosmic.Query{
		Filter: map[string]any{"type": typeDeliveryZones},
		Props:  listProps,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list delivery zones")
	}

	zones := make([]DeliveryZone, 0, len(objects))
	for _, obj := range objects {
		zone, err := zoneFromObject(obj)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode delivery zone")
		}
		if zone.IsActive {
			zones = append(zones, zone)
		}
	}
	return zones, nil
}

func (s *service) Search(ctx context.Context, query string) (*SearchResult, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	result := &SearchResult{Restaurants: []Restaurant{}, MenuItems: []MenuItem{}}
	if needle == "" {
		return result, nil
	}

	restaurants, err := s.Restaurants(ctx)
	if err != nil {
		return nil, err
	}
	for _, restaurant := range restaurants {
		if containsFold(restaurant.Name, needle) ||
			containsFold(string(restaurant.Cuisine), needle) ||
			containsFold(restaurant.Description, needle) {
			result.Restaurants = append(result.Restaurants, restaurant)
		}
	}

	items, err := s.findMenuItems(ctx, map[string]any{"type": typeMenuItems})
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if containsFold(item.Name, needle) || containsFold(item.Description, needle) {
			result.MenuItems = append(result.MenuItems, item)
		}
	}

	return result, nil
}

func (s *service) findRestaurants(ctx context.Context, filter map[string]any) ([]Restaurant, error) {
	objects, err := s.content.Find(ctx, cosmic.Query{
		Filter: filter,
		Props:  listProps,
		Depth:  1,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list restaurants")
	}

	restaurants := make([]Restaurant, 0, len(objects))
	for _, obj := range objects {
		restaurant, err := restaurantFromObject(obj)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode restaurant")
		}
		restaurants = append(restaurants, restaurant)
	}
	return restaurants, nil
}

func (s *service) findMenuItems(ctx context.Context, filter map[string]any) ([]MenuItem, error) {
	objects, err := s.content.Find(ctx, cosmic.Query{
		Filter: filter,
		Props:  listProps,
		Depth:  1,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list menu items")
	}

	items := make([]MenuItem, 0, len(objects))
	for _, obj := range objects {
		item, err := menuItemFromObject(obj)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode menu item")
		}
		items = append(items, item)
	}
	return items, nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}
