package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fooddash/fooddash-backend/internal/notifications"
	"github.com/fooddash/fooddash-backend/internal/orders"
	"github.com/fooddash/fooddash-backend/pkg/config"
	pkgerrors "github.com/fooddash/fooddash-backend/pkg/errors"
	"github.com/fooddash/fooddash-backend/pkg/logger"
	"github.com/fooddash/fooddash-backend/pkg/metrics"
	"github.com/fooddash/fooddash-backend/pkg/stripe"
)

// State names the phases a checkout moves through. The HTTP flow splits the
// sequence across two requests: CreateIntent ends at AwaitingCardInput, the
// browser collects the card, and Confirm drives the rest.
type State string

const (
	StateDetails             State = "details"
	StateCreatingIntent      State = "creating_payment_intent"
	StateAwaitingCardInput   State = "awaiting_card_input"
	StateConfirmingPayment   State = "confirming_payment"
	StatePersistingOrder     State = "persisting_order"
	StateSendingConfirmation State = "sending_confirmation"
	StateDone                State = "done"
	StateFailed              State = "failed"
)

// CreateIntentInput opens a charge attempt for the given amount. Context
// carries everything the order builder needs back at confirmation time.
type CreateIntentInput struct {
	AmountCents int64
	Currency    string
	Context     orders.CheckoutContext
}

// IntentResult is the client-facing handle for finishing the payment.
type IntentResult struct {
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
	State           State  `json:"state"`
}

// ConfirmResult reports a completed checkout.
type ConfirmResult struct {
	Order *orders.Order `json:"order"`
	State State         `json:"state"`
}

// Service sequences the payment and persistence steps of a checkout.
type Service interface {
	CreateIntent(ctx context.Context, input CreateIntentInput) (*IntentResult, error)
	Confirm(ctx context.Context, paymentIntentID string) (*ConfirmResult, error)
}

type service struct {
	processor     stripe.IntentClient
	orders        orders.Service
	notifications notifications.Service
	cfg           config.CheckoutConfig
	logg          *logger.Logger
	metrics       *metrics.CheckoutMetrics
	now           func() time.Time
}

// NewService wires the orchestrator. The notifications service may be nil;
// confirmations are then skipped entirely.
func NewService(
	processor stripe.IntentClient,
	orderSvc orders.Service,
	notifySvc notifications.Service,
	cfg config.CheckoutConfig,
	logg *logger.Logger,
	checkoutMetrics *metrics.CheckoutMetrics,
) (Service, error) {
	if processor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration, "payment processor not configured")
	}
	if orderSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order service required")
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 30 * time.Second
	}
	return &service{
		processor:     processor,
		orders:        orderSvc,
		notifications: notifySvc,
		cfg:           cfg,
		logg:          logg,
		metrics:       checkoutMetrics,
		now:           time.Now,
	}, nil
}

func (s *service) CreateIntent(ctx context.Context, input CreateIntentInput) (*IntentResult, error) {
	if input.AmountCents < s.cfg.MinimumChargeCents {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("amount must be at least %d cents", s.cfg.MinimumChargeCents))
	}

	currency := strings.ToLower(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = s.cfg.Currency
	}

	// The order reference travels in the metadata and doubles as the
	// processor idempotency key, so a retried create with the same
	// reference cannot open a second intent.
	if input.Context.OrderNumber == "" {
		input.Context.OrderNumber = orders.NewOrderNumber(s.now())
	}

	metadata, err := input.Context.ToMetadata()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building intent metadata")
	}

	snapshot, err := s.timedIntentCall(ctx, StateCreatingIntent, func(callCtx context.Context) (*stripe.IntentSnapshot, error) {
		return s.processor.CreateIntent(callCtx, stripe.IntentRequest{
			AmountCents:    input.AmountCents,
			Currency:       currency,
			Metadata:       metadata,
			Description:    fmt.Sprintf("FoodDash order for %s", input.Context.RestaurantName),
			IdempotencyKey: input.Context.OrderNumber,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithPaymentIntentID(ctx, snapshot.ID), "payment intent created")
	}
	return &IntentResult{
		PaymentIntentID: snapshot.ID,
		ClientSecret:    snapshot.ClientSecret,
		State:           StateAwaitingCardInput,
	}, nil
}

func (s *service) Confirm(ctx context.Context, paymentIntentID string) (*ConfirmResult, error) {
	if strings.TrimSpace(paymentIntentID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment intent id is required")
	}

	ctx = s.attachIntent(ctx, paymentIntentID)

	// Client-side confirmation is never trusted; re-fetch the intent and
	// check the settled status ourselves.
	snapshot, err := s.timedIntentCall(ctx, StateConfirmingPayment, func(callCtx context.Context) (*stripe.IntentSnapshot, error) {
		return s.processor.GetIntent(callCtx, paymentIntentID)
	})
	if err != nil {
		return nil, err
	}
	if !snapshot.Succeeded() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("payment has not succeeded (status %s)", snapshot.Status))
	}

	// The charge has settled. From here the work must finish even if the
	// client goes away.
	ctx = context.WithoutCancel(ctx)

	draft := orders.BuildDraft(snapshot, orders.NewOrderNumber(s.now()), s.cfg.DefaultDeliveryFee)

	start := s.now()
	order, err := s.orders.Record(ctx, draft)
	s.observe(StatePersistingOrder, start, err)
	if err != nil {
		return nil, err
	}

	s.sendConfirmation(ctx, order)

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderNumber(ctx, order.OrderNumber), "checkout complete")
	}
	return &ConfirmResult{Order: order, State: StateDone}, nil
}

// sendConfirmation is best-effort: a failed email never fails the checkout.
func (s *service) sendConfirmation(ctx context.Context, order *orders.Order) {
	if s.notifications == nil {
		return
	}

	start := s.now()
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()

	err := s.notifications.SendOrderConfirmation(callCtx, order)
	s.observe(StateSendingConfirmation, start, err)
	if err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithOrderNumber(ctx, order.OrderNumber), "order confirmation email failed", err)
	}
}

// timedIntentCall runs a processor call under the configured timeout and
// maps failures onto the error taxonomy.
func (s *service) timedIntentCall(
	ctx context.Context,
	step State,
	call func(ctx context.Context) (*stripe.IntentSnapshot, error),
) (*stripe.IntentSnapshot, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()

	start := s.now()
	snapshot, err := call(callCtx)
	s.observe(step, start, err)
	if err != nil {
		return nil, s.processorError(err, step)
	}
	return snapshot, nil
}

func (s *service) processorError(err error, step State) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeProcessor, err, stripe.ErrorMessage(err)).
		WithDetails(map[string]any{"step": string(step)})
}

func (s *service) observe(step State, start time.Time, err error) {
	s.metrics.ObserveDuration(string(step), s.now().Sub(start))
	if err != nil {
		s.metrics.IncFailure(string(step))
		return
	}
	s.metrics.IncSuccess(string(step))
}

func (s *service) attachIntent(ctx context.Context, paymentIntentID string) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithPaymentIntentID(ctx, paymentIntentID)
}
