package stripe

import (
	"context"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"
)

// IntentRequest carries everything needed to open a charge attempt.
type IntentRequest struct {
	AmountCents    int64
	Currency       string
	Metadata       map[string]string
	Description    string
	IdempotencyKey string
}

// ShippingAddress is the flattened subset of Stripe's address object the
// storefront consumes.
type ShippingAddress struct {
	Line1      string
	City       string
	State      string
	PostalCode string
}

// ShippingInfo mirrors the shipping sub-object attached during client-side
// confirmation.
type ShippingInfo struct {
	Name    string
	Phone   string
	Address *ShippingAddress
}

// IntentSnapshot is the processor-neutral view of a payment intent used by
// the checkout and order layers.
type IntentSnapshot struct {
	ID           string
	ClientSecret string
	Status       string
	AmountCents  int64
	Currency     string
	Metadata     map[string]string
	Description  string
	Shipping     *ShippingInfo
}

// Succeeded reports whether the processor settled the charge.
func (s IntentSnapshot) Succeeded() bool {
	return s.Status == string(stripe.PaymentIntentStatusSucceeded)
}

// IntentClient is the subset of processor operations checkout depends on.
type IntentClient interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*IntentSnapshot, error)
	GetIntent(ctx context.Context, id string) (*IntentSnapshot, error)
}

type intentClientWrapper struct{}

// NewIntentClient wraps the configured Stripe client so callers can be tested
// against a stub.
func NewIntentClient(api *Client) IntentClient {
	if api == nil {
		return nil
	}
	return &intentClientWrapper{}
}

func (w *intentClientWrapper) CreateIntent(ctx context.Context, req IntentRequest) (*IntentSnapshot, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountCents),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.Metadata = req.Metadata
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}
	return snapshotFromIntent(intent), nil
}

func (w *intentClientWrapper) GetIntent(ctx context.Context, id string) (*IntentSnapshot, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	intent, err := paymentintent.Get(id, params)
	if err != nil {
		return nil, err
	}
	return snapshotFromIntent(intent), nil
}

func snapshotFromIntent(intent *stripe.PaymentIntent) *IntentSnapshot {
	if intent == nil {
		return nil
	}
	snap := &IntentSnapshot{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
		AmountCents:  intent.Amount,
		Currency:     string(intent.Currency),
		Metadata:     intent.Metadata,
		Description:  intent.Description,
	}
	if intent.Shipping != nil {
		info := &ShippingInfo{
			Name:  intent.Shipping.Name,
			Phone: intent.Shipping.Phone,
		}
		if intent.Shipping.Address != nil {
			info.Address = &ShippingAddress{
				Line1:      intent.Shipping.Address.Line1,
				City:       intent.Shipping.Address.City,
				State:      intent.Shipping.Address.State,
				PostalCode: intent.Shipping.Address.PostalCode,
			}
		}
		snap.Shipping = info
	}
	return snap
}

// ErrorMessage extracts the processor-supplied message when the error came
// from Stripe, falling back to the raw error text.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && strings.TrimSpace(stripeErr.Msg) != "" {
		return stripeErr.Msg
	}
	return err.Error()
}

// IsProcessorError reports whether the error originated from the Stripe API.
func IsProcessorError(err error) bool {
	var stripeErr *stripe.Error
	return errors.As(err, &stripeErr)
}
