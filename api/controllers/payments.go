package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/fooddash/fooddash-backend/api/middleware"
	"github.com/fooddash/fooddash-backend/api/responses"
	"github.com/fooddash/fooddash-backend/api/validators"
	checkoutsvc "github.com/fooddash/fooddash-backend/internal/checkout"
	"github.com/fooddash/fooddash-backend/internal/orders"
	pkgerrors "github.com/fooddash/fooddash-backend/pkg/errors"
	"github.com/fooddash/fooddash-backend/pkg/logger"
)

type intentItemPayload struct {
	ID                  string          `json:"id" validate:"required"`
	Name                string          `json:"name" validate:"required"`
	Price               decimal.Decimal `json:"price" validate:"required"`
	Quantity            int             `json:"quantity" validate:"required,min=1"`
	SpecialInstructions string          `json:"special_instructions,omitempty" validate:"max=500"`
}

type createIntentRequest struct {
	Amount         int64               `json:"amount" validate:"required,gt=0"`
	Currency       string              `json:"currency,omitempty" validate:"omitempty,len=3"`
	CustomerEmail  string              `json:"customer_email,omitempty" validate:"omitempty,email"`
	RestaurantID   string              `json:"restaurant_id,omitempty"`
	RestaurantName string              `json:"restaurant_name,omitempty"`
	DeliveryFee    decimal.Decimal     `json:"delivery_fee,omitempty"`
	Items          []intentItemPayload `json:"items,omitempty" validate:"dive"`
}

type createIntentResponse struct {
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
}

// CreatePaymentIntent opens a charge attempt for the amount the storefront
// computed, carrying the order context in the intent metadata.
func CreatePaymentIntent(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConfiguration, "checkout service unavailable"))
			return
		}

		var payload createIntentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]orders.ContextItem, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, orders.ContextItem{
				ID:                  item.ID,
				Name:                validators.SanitizeString(item.Name, 200),
				Price:               item.Price,
				Quantity:            item.Quantity,
				SpecialInstructions: validators.SanitizeString(item.SpecialInstructions, 500),
			})
		}

		result, err := svc.CreateIntent(r.Context(), checkoutsvc.CreateIntentInput{
			AmountCents: payload.Amount,
			Currency:    payload.Currency,
			Context: orders.CheckoutContext{
				CustomerEmail:  payload.CustomerEmail,
				RestaurantID:   payload.RestaurantID,
				RestaurantName: payload.RestaurantName,
				DeliveryFee:    payload.DeliveryFee,
				Items:          items,
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, createIntentResponse{
			PaymentIntentID: result.PaymentIntentID,
			ClientSecret:    result.ClientSecret,
		})
	}
}

type confirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

type confirmPaymentResponse struct {
	Success     bool          `json:"success"`
	OrderNumber string        `json:"order_number"`
	Order       *orders.Order `json:"order"`
}

// ConfirmPayment verifies the charge settled and records the order. Replays
// for the same intent return the originally recorded order. The caller's
// server-side cart is cleared only once recording succeeded.
func ConfirmPayment(svc checkoutsvc.Service, carts CartStoreFactory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConfiguration, "checkout service unavailable"))
			return
		}

		var payload confirmPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Confirm(r.Context(), payload.PaymentIntentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if carts != nil {
			if token := middleware.CartTokenFromContext(r.Context()); token != "" {
				carts(r.Context(), token).Clear(r.Context())
			}
		}

		responses.WriteSuccess(w, confirmPaymentResponse{
			Success:     true,
			OrderNumber: result.Order.OrderNumber,
			Order:       result.Order,
		})
	}
}
