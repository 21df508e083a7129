package catalog

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fooddash/fooddash-backend/pkg/cosmic"
	pkgerrors "github.com/fooddash/fooddash-backend/pkg/errors"
)

type stubContent struct {
	findFn    func(ctx context.Context, q cosmic.Query) ([]cosmic.Object, error)
	findOneFn func(ctx context.Context, q cosmic.Query) (*cosmic.Object, error)
}

func (s *stubContent) Find(ctx context.Context, q cosmic.Query) ([]cosmic.Object, error) {
	return s.findFn(ctx, q)
}

func (s *stubContent) FindOne(ctx context.Context, q cosmic.Query) (*cosmic.Object, error) {
	return s.findOneFn(ctx, q)
}

func restaurantObject(t *testing.T, id, slug, name string, rating float64) cosmic.Object {
	t.Helper()
	meta, err := json.Marshal(map[string]any{
		"name":         name,
		"rating":       rating,
		"delivery_fee": 2.99,
		"cuisine_type": map[string]string{"key": "italian", "value": "Italian"},
	})
	require.NoError(t, err)
	return cosmic.Object{ID: id, Slug: slug, Title: name, Type: "restaurants", Metadata: meta}
}

func menuItemObject(t *testing.T, id, name string, price float64, restaurant map[string]any) cosmic.Object {
	t.Helper()
	meta := map[string]any{
		"name":      name,
		"price":     price,
		"available": true,
	}
	if restaurant != nil {
		meta["restaurant"] = restaurant
	}
	raw, err := json.Marshal(meta)
	require.NoError(t, err)
	return cosmic.Object{ID: id, Slug: id, Title: name, Type: "menu-items", Metadata: raw}
}

func TestNewService_RequiresContentClient(t *testing.T) {
	_, err := NewService(nil)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
}

func TestRestaurants_SortedByRatingDesc(t *testing.T) {
	content := &stubContent{
		findFn: func(_ context.Context, q cosmic.Query) ([]cosmic.Object, error) {
			assert.Equal(t, "restaurants", q.Filter["type"])
			return []cosmic.Object{
				restaurantObject(t, "r1", "luigis", "Luigi's", 4.2),
				restaurantObject(t, "r2", "mamas", "Mama's", 4.8),
				restaurantObject(t, "r3", "pranzo", "Pranzo", 3.9),
			}, nil
		},
	}
	svc, err := NewService(content)
	require.NoError(t, err)

	restaurants, err := svc.Restaurants(context.Background())
	require.NoError(t, err)
	require.Len(t, restaurants, 3)
	assert.Equal(t, "Mama's", restaurants[0].Name)
	assert.Equal(t, "Luigi's", restaurants[1].Name)
	assert.Equal(t, "Pranzo", restaurants[2].Name)
}

func TestRestaurantBySlug_NotFound(t *testing.T) {
	content := &stubContent{
		findOneFn: func(_ context.Context, _ cosmic.Query) (*cosmic.Object, error) {
			return nil, cosmic.ErrNotFound
		},
	}
	svc, err := NewService(content)
	require.NoError(t, err)

	_, err = svc.RestaurantBySlug(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestMenuItemsByRestaurant_SortedByPriceAsc(t *testing.T) {
	content := &stubContent{
		findFn: func(_ context.Context, q cosmic.Query) ([]cosmic.Object, error) {
			assert.Equal(t, "r1", q.Filter["metadata.restaurant"])
			assert.Equal(t, 1, q.Depth)
			return []cosmic.Object{
				menuItemObject(t, "m1", "Lasagna", 14.50, nil),
				menuItemObject(t, "m2", "Garlic Bread", 4.25, nil),
				menuItemObject(t, "m3", "Tiramisu", 7.00, nil),
			}, nil
		},
	}
	svc, err := NewService(content)
	require.NoError(t, err)

	items, err := svc.MenuItemsByRestaurant(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Garlic Bread", items[0].Name)
	assert.Equal(t, "Tiramisu", items[1].Name)
	assert.Equal(t, "Lasagna", items[2].Name)
}

func TestFeaturedMenuItems_FiltersUnratedAndLimits(t *testing.T) {
	highRated := map[string]any{"id": "r1", "title": "Mama's", "metadata": map[string]any{"name": "Mama's", "rating": 4.8}}
	lowRated := map[string]any{"id": "r2", "title": "Pranzo", "metadata": map[string]any{"name": "Pranzo", "rating": 4.1}}
	unrated := map[string]any{"id": "r3", "title": "New Spot", "metadata": map[string]any{"name": "New Spot"}}

	content := &stubContent{
		findFn: func(_ context.Context, q cosmic.Query) ([]cosmic.Object, error) {
			assert.Equal(t, true, q.Filter["metadata.available"])
			return []cosmic.Object{
				menuItemObject(t, "m1", "Lasagna", 14.50, lowRated),
				menuItemObject(t, "m2", "Pizza", 12.00, highRated),
				menuItemObject(t, "m3", "Salad", 8.00, unrated),
				menuItemObject(t, "m4", "Pasta", 11.00, highRated),
			}, nil
		},
	}
	svc, err := NewService(content)
	require.NoError(t, err)

	items, err := svc.FeaturedMenuItems(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Mama's", items[0].Restaurant.Name)
	assert.Equal(t, "Mama's", items[1].Restaurant.Name)
}

func TestDeliveryZones_ActiveOnly(t *testing.T) {
	active, err := json.Marshal(map[string]any{"zone_name": "Downtown", "base_delivery_fee": 2.99, "is_active": true})
	require.NoError(t, err)
	inactive, err := json.Marshal(map[string]any{"zone_name": "Harbor", "base_delivery_fee": 4.99, "is_active": false})
	require.NoError(t, err)

	content := &stubContent{
		findFn: func(_ context.Context, _ cosmic.Query) ([]cosmic.Object, error) {
			return []cosmic.Object{
				{ID: "z1", Slug: "downtown", Title: "Downtown", Metadata: active},
				{ID: "z2", Slug: "harbor", Title: "Harbor", Metadata: inactive},
			}, nil
		},
	}
	svc, err := NewService(content)
	require.NoError(t, err)

	zones, err := svc.DeliveryZones(context.Background())
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.Equal(t, "Downtown", zones[0].Name)
}

func TestSearch_MatchesRestaurantsAndItems(t *testing.T) {
	content := &stubContent{
		findFn: func(_ context.Context, q cosmic.Query) ([]cosmic.Object, error) {
			if q.Filter["type"] == "restaurants" {
				return []cosmic.Object{
					restaurantObject(t, "r1", "luigis", "Luigi's Pizzeria", 4.2),
					restaurantObject(t, "r2", "sushico", "Sushi Co", 4.5),
				}, nil
			}
			return []cosmic.Object{
				menuItemObject(t, "m1", "Pizza Margherita", 12.00, nil),
				menuItemObject(t, "m2", "Ramen", 11.00, nil),
			}, nil
		},
	}
	svc, err := NewService(content)
	require.NoError(t, err)

	result, err := svc.Search(context.Background(), "pizz")
	require.NoError(t, err)
	require.Len(t, result.Restaurants, 1)
	assert.Equal(t, "Luigi's Pizzeria", result.Restaurants[0].Name)
	require.Len(t, result.MenuItems, 1)
	assert.Equal(t, "Pizza Margherita", result.MenuItems[0].Name)
}

func TestSearch_EmptyQueryReturnsEmptyResult(t *testing.T) {
	svc, err := NewService(&stubContent{})
	require.NoError(t, err)

	result, err := svc.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, result.Restaurants)
	assert.Empty(t, result.MenuItems)
}
