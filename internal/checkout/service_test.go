package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fooddash/fooddash-backend/internal/notifications"
	"github.com/fooddash/fooddash-backend/internal/orders"
	"github.com/fooddash/fooddash-backend/pkg/config"
	pkgerrors "github.com/fooddash/fooddash-backend/pkg/errors"
	"github.com/fooddash/fooddash-backend/pkg/stripe"
)

type stubProcessor struct {
	createFn func(ctx context.Context, req stripe.IntentRequest) (*stripe.IntentSnapshot, error)
	getFn    func(ctx context.Context, id string) (*stripe.IntentSnapshot, error)
}

func (s *stubProcessor) CreateIntent(ctx context.Context, req stripe.IntentRequest) (*stripe.IntentSnapshot, error) {
	return s.createFn(ctx, req)
}

func (s *stubProcessor) GetIntent(ctx context.Context, id string) (*stripe.IntentSnapshot, error) {
	return s.getFn(ctx, id)
}

type stubOrders struct {
	recordFn func(ctx context.Context, draft orders.Draft) (*orders.Order, error)
}

func (s *stubOrders) Record(ctx context.Context, draft orders.Draft) (*orders.Order, error) {
	return s.recordFn(ctx, draft)
}

func (s *stubOrders) ByNumber(context.Context, string) (*orders.Order, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

type stubNotifier struct {
	sent []string
	err  error
}

func (s *stubNotifier) SendOrderConfirmation(_ context.Context, order *orders.Order) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, order.OrderNumber)
	return nil
}

func checkoutConfig() config.CheckoutConfig {
	return config.CheckoutConfig{
		TaxRate:            decimal.RequireFromString("0.0825"),
		DefaultDeliveryFee: decimal.RequireFromString("2.99"),
		Currency:           "usd",
		MinimumChargeCents: 50,
		CallTimeout:        time.Second,
	}
}

func testContext() orders.CheckoutContext {
	return orders.CheckoutContext{
		CustomerEmail:  "jo@example.com",
		RestaurantID:   "r1",
		RestaurantName: "Luigi's",
		DeliveryFee:    decimal.RequireFromString("2.99"),
		Items: []orders.ContextItem{
			{ID: "m1", Name: "Pizza", Price: decimal.RequireFromString("12.00"), Quantity: 2},
		},
	}
}

func newTestService(t *testing.T, processor *stubProcessor, orderSvc *stubOrders, notifier *stubNotifier) Service {
	t.Helper()
	var notifySvc notifications.Service
	if notifier != nil {
		notifySvc = notifier
	}
	svc, err := NewService(processor, orderSvc, notifySvc, checkoutConfig(), nil, nil)
	require.NoError(t, err)
	return svc
}

func TestCreateIntent_BelowMinimum(t *testing.T) {
	svc := newTestService(t, &stubProcessor{}, &stubOrders{}, nil)

	_, err := svc.CreateIntent(context.Background(), CreateIntentInput{
		AmountCents: 49,
		Context:     testContext(),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCreateIntent_Succeeds(t *testing.T) {
	var captured stripe.IntentRequest
	processor := &stubProcessor{
		createFn: func(_ context.Context, req stripe.IntentRequest) (*stripe.IntentSnapshot, error) {
			captured = req
			return &stripe.IntentSnapshot{
				ID:           "pi_123",
				ClientSecret: "pi_123_secret",
				Status:       "requires_payment_method",
			}, nil
		},
	}
	svc := newTestService(t, processor, &stubOrders{}, nil)

	result, err := svc.CreateIntent(context.Background(), CreateIntentInput{
		AmountCents: 2897,
		Currency:    "USD",
		Context:     testContext(),
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", result.PaymentIntentID)
	assert.Equal(t, "pi_123_secret", result.ClientSecret)
	assert.Equal(t, StateAwaitingCardInput, result.State)

	assert.EqualValues(t, 2897, captured.AmountCents)
	assert.Equal(t, "usd", captured.Currency)
	assert.NotEmpty(t, captured.IdempotencyKey)
	assert.Equal(t, "jo@example.com", captured.Metadata["customerEmail"])
	assert.Equal(t, "r1", captured.Metadata["restaurantId"])
	assert.Contains(t, captured.Metadata["items"], "Pizza")

	// The minted order reference rides in the metadata and keys the
	// processor call, so replays of the same reference cannot open a
	// second intent.
	assert.Regexp(t, `^ORD\d{13}[A-Z]{5}$`, captured.Metadata["orderNumber"])
	assert.Equal(t, captured.Metadata["orderNumber"], captured.IdempotencyKey)
}

func TestCreateIntent_KeepsSuppliedOrderReference(t *testing.T) {
	var captured stripe.IntentRequest
	processor := &stubProcessor{
		createFn: func(_ context.Context, req stripe.IntentRequest) (*stripe.IntentSnapshot, error) {
			captured = req
			return &stripe.IntentSnapshot{ID: "pi_123", ClientSecret: "pi_123_secret"}, nil
		},
	}
	svc := newTestService(t, processor, &stubOrders{}, nil)

	input := CreateIntentInput{AmountCents: 2897, Context: testContext()}
	input.Context.OrderNumber = "ORD1700000000000ABCDE"

	_, err := svc.CreateIntent(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "ORD1700000000000ABCDE", captured.Metadata["orderNumber"])
	assert.Equal(t, "ORD1700000000000ABCDE", captured.IdempotencyKey)
}

func TestCreateIntent_ProcessorFailure(t *testing.T) {
	processor := &stubProcessor{
		createFn: func(context.Context, stripe.IntentRequest) (*stripe.IntentSnapshot, error) {
			return nil, errors.New("card network unreachable")
		},
	}
	svc := newTestService(t, processor, &stubOrders{}, nil)

	_, err := svc.CreateIntent(context.Background(), CreateIntentInput{
		AmountCents: 2897,
		Context:     testContext(),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeProcessor, pkgerrors.As(err).Code())
}

func TestConfirm_RequiresIntentID(t *testing.T) {
	svc := newTestService(t, &stubProcessor{}, &stubOrders{}, nil)

	_, err := svc.Confirm(context.Background(), "  ")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestConfirm_RejectsUnsettledIntent(t *testing.T) {
	processor := &stubProcessor{
		getFn: func(_ context.Context, id string) (*stripe.IntentSnapshot, error) {
			return &stripe.IntentSnapshot{ID: id, Status: "requires_payment_method"}, nil
		},
	}
	recorded := false
	orderSvc := &stubOrders{
		recordFn: func(context.Context, orders.Draft) (*orders.Order, error) {
			recorded = true
			return nil, nil
		},
	}
	svc := newTestService(t, processor, orderSvc, nil)

	_, err := svc.Confirm(context.Background(), "pi_123")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	assert.False(t, recorded, "no order may be recorded for an unsettled intent")
}

func succeededSnapshot(t *testing.T, id string) *stripe.IntentSnapshot {
	t.Helper()
	metadata, err := testContext().ToMetadata()
	require.NoError(t, err)
	return &stripe.IntentSnapshot{
		ID:          id,
		Status:      "succeeded",
		AmountCents: 2897,
		Currency:    "usd",
		Metadata:    metadata,
	}
}

func TestConfirm_RecordsOrderAndSendsEmail(t *testing.T) {
	processor := &stubProcessor{
		getFn: func(_ context.Context, id string) (*stripe.IntentSnapshot, error) {
			return succeededSnapshot(t, id), nil
		},
	}
	orderSvc := &stubOrders{
		recordFn: func(_ context.Context, draft orders.Draft) (*orders.Order, error) {
			assert.Equal(t, "pi_123", draft.PaymentIntentID)
			assert.Equal(t, "28.97", draft.Total.String())
			return &orders.Order{
				OrderNumber:   draft.OrderNumber,
				CustomerEmail: draft.CustomerEmail,
				Total:         draft.Total,
				Status:        orders.StatusPending,
			}, nil
		},
	}
	notifier := &stubNotifier{}
	svc := newTestService(t, processor, orderSvc, notifier)

	result, err := svc.Confirm(context.Background(), "pi_123")
	require.NoError(t, err)
	assert.Equal(t, StateDone, result.State)
	require.NotNil(t, result.Order)
	assert.Regexp(t, `^ORD\d+[A-Z]{5}$`, result.Order.OrderNumber)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, result.Order.OrderNumber, notifier.sent[0])
}

func TestConfirm_EmailFailureDoesNotFailCheckout(t *testing.T) {
	processor := &stubProcessor{
		getFn: func(_ context.Context, id string) (*stripe.IntentSnapshot, error) {
			return succeededSnapshot(t, id), nil
		},
	}
	orderSvc := &stubOrders{
		recordFn: func(_ context.Context, draft orders.Draft) (*orders.Order, error) {
			return &orders.Order{OrderNumber: draft.OrderNumber, CustomerEmail: draft.CustomerEmail}, nil
		},
	}
	notifier := &stubNotifier{err: errors.New("resend unavailable")}
	svc := newTestService(t, processor, orderSvc, notifier)

	result, err := svc.Confirm(context.Background(), "pi_123")
	require.NoError(t, err)
	assert.Equal(t, StateDone, result.State)
}

func TestConfirm_PersistenceFailurePropagates(t *testing.T) {
	processor := &stubProcessor{
		getFn: func(_ context.Context, id string) (*stripe.IntentSnapshot, error) {
			return succeededSnapshot(t, id), nil
		},
	}
	orderSvc := &stubOrders{
		recordFn: func(context.Context, orders.Draft) (*orders.Order, error) {
			return nil, pkgerrors.New(pkgerrors.CodePersistence, "recording order")
		},
	}
	svc := newTestService(t, processor, orderSvc, nil)

	_, err := svc.Confirm(context.Background(), "pi_123")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodePersistence, pkgerrors.As(err).Code())
}
