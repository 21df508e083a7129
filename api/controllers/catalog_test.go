package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fooddash/fooddash-backend/internal/catalog"
	pkgerrors "github.com/fooddash/fooddash-backend/pkg/errors"
	"github.com/fooddash/fooddash-backend/pkg/types"
)

type listStubCatalog struct {
	catalog.Service
	all        []catalog.Restaurant
	byCuisine  []catalog.Restaurant
	byZone     []catalog.Restaurant
	lastFilter string
	featured   []catalog.MenuItem
	lastLimit  int
	search     *catalog.SearchResult
}

func (s *listStubCatalog) Restaurants(ctx context.Context) ([]catalog.Restaurant, error) {
	return s.all, nil
}

func (s *listStubCatalog) RestaurantsByCuisine(ctx context.Context, cuisine string) ([]catalog.Restaurant, error) {
	s.lastFilter = "cuisine:" + cuisine
	return s.byCuisine, nil
}

func (s *listStubCatalog) RestaurantsByZone(ctx context.Context, zoneID string) ([]catalog.Restaurant, error) {
	s.lastFilter = "zone:" + zoneID
	return s.byZone, nil
}

func (s *listStubCatalog) FeaturedMenuItems(ctx context.Context, limit int) ([]catalog.MenuItem, error) {
	s.lastLimit = limit
	return s.featured, nil
}

func (s *listStubCatalog) Search(ctx context.Context, query string) (*catalog.SearchResult, error) {
	return s.search, nil
}

func decodeDataSlice(t *testing.T, resp *httptest.ResponseRecorder) []any {
	t.Helper()
	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	data, ok := envelope.Data.([]any)
	if !ok {
		t.Fatalf("unexpected envelope payload %v", envelope.Data)
	}
	return data
}

func TestListRestaurantsFiltersByCuisine(t *testing.T) {
	t.Parallel()

	svc := &listStubCatalog{byCuisine: []catalog.Restaurant{{ID: "r1", Name: "Luigi's"}}}
	handler := ListRestaurants(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/restaurants?cuisine=italian", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastFilter != "cuisine:italian" {
		t.Fatalf("expected cuisine filter got %q", svc.lastFilter)
	}
	if got := decodeDataSlice(t, resp); len(got) != 1 {
		t.Fatalf("expected 1 restaurant got %d", len(got))
	}
}

func TestListRestaurantsFiltersByZone(t *testing.T) {
	t.Parallel()

	svc := &listStubCatalog{byZone: []catalog.Restaurant{{ID: "r2"}}}
	handler := ListRestaurants(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/restaurants?zone=downtown", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastFilter != "zone:downtown" {
		t.Fatalf("expected zone filter got %q", svc.lastFilter)
	}
}

func TestFeaturedMenuClampsLimit(t *testing.T) {
	t.Parallel()

	svc := &listStubCatalog{featured: []catalog.MenuItem{}}
	handler := FeaturedMenu(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/menu/featured?limit=12", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastLimit != 12 {
		t.Fatalf("expected limit 12 got %d", svc.lastLimit)
	}
}

func TestFeaturedMenuRejectsBadLimit(t *testing.T) {
	t.Parallel()

	handler := FeaturedMenu(&listStubCatalog{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/menu/featured?limit=nope", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	t.Parallel()

	handler := Search(&listStubCatalog{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if apiErr := decodeAPIError(t, resp); apiErr.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("expected validation code got %q", apiErr.Code)
	}
}

func TestSearchReturnsGroupedMatches(t *testing.T) {
	t.Parallel()

	svc := &listStubCatalog{search: &catalog.SearchResult{
		Restaurants: []catalog.Restaurant{{ID: "r1", Name: "Luigi's"}},
		MenuItems:   []catalog.MenuItem{{ID: "m1", Name: "Margherita"}},
	}}
	handler := Search(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=pizza", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	data := decodeData(t, resp)
	if restaurants, ok := data["restaurants"].([]any); !ok || len(restaurants) != 1 {
		t.Fatalf("unexpected restaurants %v", data["restaurants"])
	}
	if items, ok := data["menu_items"].([]any); !ok || len(items) != 1 {
		t.Fatalf("unexpected menu items %v", data["menu_items"])
	}
}
