package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fooddash/fooddash-backend/api/middleware"
	cartsvc "github.com/fooddash/fooddash-backend/internal/cart"
	"github.com/fooddash/fooddash-backend/internal/catalog"
	"github.com/fooddash/fooddash-backend/pkg/config"
	pkgerrors "github.com/fooddash/fooddash-backend/pkg/errors"
)

type stubCatalogService struct {
	catalog.Service
	menuItem *catalog.MenuItem
	err      error
}

func (s stubCatalogService) MenuItemByID(ctx context.Context, id string) (*catalog.MenuItem, error) {
	return s.menuItem, s.err
}

func testCalculator() cartsvc.Calculator {
	return cartsvc.NewCalculator(config.CheckoutConfig{
		TaxRate:            decimal.RequireFromString("0.0825"),
		DefaultDeliveryFee: decimal.RequireFromString("2.99"),
	})
}

func testCartFactory() (CartStoreFactory, *cartsvc.Store) {
	store := cartsvc.NewStore(context.Background(), cartsvc.NewMemoryStrategy(), nil, 10)
	return func(ctx context.Context, token string) *cartsvc.Store { return store }, store
}

func withCartToken(req *http.Request) *http.Request {
	return req.WithContext(middleware.WithCartToken(req.Context(), "token-1"))
}

func withItemID(req *http.Request, itemID string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("itemId", itemID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestAddCartItemSnapshotsMenuItem(t *testing.T) {
	t.Parallel()

	carts, store := testCartFactory()
	catalogSvc := stubCatalogService{menuItem: &catalog.MenuItem{
		ID:        "item-1",
		Name:      "Margherita",
		Price:     decimal.RequireFromString("12.50"),
		Available: true,
	}}
	handler := AddCartItem(carts, catalogSvc, testCalculator(), nil)

	req := withCartToken(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items",
		strings.NewReader(`{"menu_item_id":"item-1","quantity":2}`)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if store.ItemCount() != 2 {
		t.Fatalf("expected 2 items got %d", store.ItemCount())
	}
	data := decodeData(t, resp)
	if data["item_count"] != float64(2) {
		t.Fatalf("unexpected item_count %v", data["item_count"])
	}
}

func TestAddCartItemRejectsUnavailableItem(t *testing.T) {
	t.Parallel()

	carts, store := testCartFactory()
	catalogSvc := stubCatalogService{menuItem: &catalog.MenuItem{ID: "item-1", Available: false}}
	handler := AddCartItem(carts, catalogSvc, testCalculator(), nil)

	req := withCartToken(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items",
		strings.NewReader(`{"menu_item_id":"item-1","quantity":1}`)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if store.ItemCount() != 0 {
		t.Fatalf("unavailable item must not reach the cart")
	}
}

func TestAddCartItemUnknownMenuItem(t *testing.T) {
	t.Parallel()

	carts, _ := testCartFactory()
	catalogSvc := stubCatalogService{err: pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")}
	handler := AddCartItem(carts, catalogSvc, testCalculator(), nil)

	req := withCartToken(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items",
		strings.NewReader(`{"menu_item_id":"missing","quantity":1}`)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestGetCartRequiresToken(t *testing.T) {
	t.Parallel()

	carts, _ := testCartFactory()
	handler := GetCart(carts, testCalculator(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUpdateCartItemUnknownLine(t *testing.T) {
	t.Parallel()

	carts, _ := testCartFactory()
	handler := UpdateCartItem(carts, testCalculator(), nil)

	req := withCartToken(withItemID(httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/line-1",
		strings.NewReader(`{"quantity":3}`)), "line-1"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestUpdateCartItemRejectsExcessiveQuantity(t *testing.T) {
	t.Parallel()

	carts, store := testCartFactory()
	line := store.AddItem(context.Background(), catalog.MenuItem{ID: "item-1", Name: "Margherita", Available: true}, 2, "")
	handler := UpdateCartItem(carts, testCalculator(), nil)

	req := withCartToken(withItemID(httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/"+line.ID,
		strings.NewReader(`{"quantity":15}`)), line.ID))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if got := store.Items()[0].Quantity; got != 2 {
		t.Fatalf("quantity must be untouched, got %d", got)
	}
}

func TestUpdateCartItemZeroQuantityRemovesLine(t *testing.T) {
	t.Parallel()

	carts, store := testCartFactory()
	line := store.AddItem(context.Background(), catalog.MenuItem{ID: "item-1", Name: "Margherita", Available: true}, 2, "")
	handler := UpdateCartItem(carts, testCalculator(), nil)

	req := withCartToken(withItemID(httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/"+line.ID,
		strings.NewReader(`{"quantity":0}`)), line.ID))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if store.ItemCount() != 0 {
		t.Fatalf("expected empty cart got %d items", store.ItemCount())
	}
}

func TestClearCartEmptiesStore(t *testing.T) {
	t.Parallel()

	carts, store := testCartFactory()
	store.AddItem(context.Background(), catalog.MenuItem{ID: "item-1", Name: "Margherita"}, 3, "")
	handler := ClearCart(carts, testCalculator(), nil)

	req := withCartToken(httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if store.ItemCount() != 0 {
		t.Fatalf("expected cleared cart got %d items", store.ItemCount())
	}
}
