package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fooddash/fooddash-backend/api/middleware"
	"github.com/fooddash/fooddash-backend/api/responses"
	"github.com/fooddash/fooddash-backend/api/validators"
	cartsvc "github.com/fooddash/fooddash-backend/internal/cart"
	"github.com/fooddash/fooddash-backend/internal/catalog"
	pkgerrors "github.com/fooddash/fooddash-backend/pkg/errors"
	"github.com/fooddash/fooddash-backend/pkg/logger"
)

// CartStoreFactory resolves the cart store for a request's cart token.
type CartStoreFactory func(ctx context.Context, token string) *cartsvc.Store

type cartResponse struct {
	Items      []cartsvc.LineItem  `json:"items"`
	ItemCount  int                 `json:"item_count"`
	Totals     cartsvc.Totals      `json:"totals"`
	Restaurant *catalog.Restaurant `json:"restaurant,omitempty"`
	Mixed      bool                `json:"mixed"`
}

func newCartResponse(store *cartsvc.Store, calc cartsvc.Calculator) cartResponse {
	items := store.Items()
	comp := store.Composition()
	return cartResponse{
		Items:      items,
		ItemCount:  store.ItemCount(),
		Totals:     calc.Calculate(items),
		Restaurant: comp.Primary,
		Mixed:      comp.Mixed,
	}
}

func cartStoreForRequest(r *http.Request, carts CartStoreFactory) (*cartsvc.Store, error) {
	token := middleware.CartTokenFromContext(r.Context())
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart token is required")
	}
	return carts(r.Context(), token), nil
}

// GetCart returns the caller's cart with priced totals.
func GetCart(carts CartStoreFactory, calc cartsvc.Calculator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := cartStoreForRequest(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(store, calc))
	}
}

// GetCartTotals returns just the priced breakdown.
func GetCartTotals(carts CartStoreFactory, calc cartsvc.Calculator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := cartStoreForRequest(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, calc.Calculate(store.Items()))
	}
}

type addCartItemRequest struct {
	MenuItemID          string `json:"menu_item_id" validate:"required"`
	Quantity            int    `json:"quantity" validate:"required,min=1,max=10"`
	SpecialInstructions string `json:"special_instructions,omitempty" validate:"max=500"`
}

// AddCartItem snapshots the menu item from the catalog and merges it into
// the cart.
func AddCartItem(carts CartStoreFactory, catalogSvc catalog.Service, calc cartsvc.Calculator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := cartStoreForRequest(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := catalogSvc.MenuItemByID(r.Context(), payload.MenuItemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !item.Available {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "menu item is not available"))
			return
		}

		store.AddItem(r.Context(), *item, payload.Quantity, validators.SanitizeString(payload.SpecialInstructions, 500))
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(store, calc))
	}
}

// Quantity above the courtesy bound is rejected here; the store itself sets
// whatever it is told.
type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"max=10"`
}

// UpdateCartItem sets a line's quantity; zero removes the line.
func UpdateCartItem(carts CartStoreFactory, calc cartsvc.Calculator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := cartStoreForRequest(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID := chi.URLParam(r, "itemId")
		if !store.UpdateQuantity(r.Context(), itemID, payload.Quantity) && payload.Quantity > 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found"))
			return
		}

		responses.WriteSuccess(w, newCartResponse(store, calc))
	}
}

// RemoveCartItem deletes a line.
func RemoveCartItem(carts CartStoreFactory, calc cartsvc.Calculator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := cartStoreForRequest(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.RemoveItem(r.Context(), chi.URLParam(r, "itemId"))
		responses.WriteSuccess(w, newCartResponse(store, calc))
	}
}

// ClearCart empties the caller's cart.
func ClearCart(carts CartStoreFactory, calc cartsvc.Calculator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := cartStoreForRequest(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.Clear(r.Context())
		responses.WriteSuccess(w, newCartResponse(store, calc))
	}
}
