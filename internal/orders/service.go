package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fooddash/fooddash-backend/internal/ledger"
	"github.com/fooddash/fooddash-backend/pkg/cosmic"
	"github.com/fooddash/fooddash-backend/pkg/db/models"
	pkgerrors "github.com/fooddash/fooddash-backend/pkg/errors"
	"github.com/fooddash/fooddash-backend/pkg/logger"
)

const (
	typeOrders = "orders"

	// StatusPending is the only status this service writes; fulfilment
	// tooling moves orders through the rest of the lifecycle.
	StatusPending = "pending"
)

// Order is the storefront view of a recorded order.
type Order struct {
	ID                string          `json:"id"`
	OrderNumber       string          `json:"order_number"`
	CustomerName      string          `json:"customer_name"`
	CustomerEmail     string          `json:"customer_email"`
	CustomerPhone     string          `json:"customer_phone,omitempty"`
	DeliveryAddress   string          `json:"delivery_address"`
	RestaurantID      string          `json:"restaurant_id,omitempty"`
	RestaurantName    string          `json:"restaurant_name"`
	Items             []ContextItem   `json:"items"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	DeliveryFee       decimal.Decimal `json:"delivery_fee"`
	Tax               decimal.Decimal `json:"tax"`
	Total             decimal.Decimal `json:"total"`
	PaymentIntentID   string          `json:"payment_intent_id"`
	Status            string          `json:"status"`
	EstimatedDelivery string          `json:"estimated_delivery"`
}

// ContentStore is the content-backend surface the order service writes to.
type ContentStore interface {
	Insert(ctx context.Context, input cosmic.InsertInput) (*cosmic.Object, error)
	FindOne(ctx context.Context, q cosmic.Query) (*cosmic.Object, error)
}

// Service records orders exactly once per payment intent and serves lookups.
type Service interface {
	// Record persists the draft. When the payment intent was already
	// claimed by an earlier confirmation, the previously recorded order is
	// returned instead of creating a second one.
	Record(ctx context.Context, draft Draft) (*Order, error)
	ByNumber(ctx context.Context, orderNumber string) (*Order, error)
}

type service struct {
	content ContentStore
	entries ledger.Repository
	logg    *logger.Logger
}

func NewService(content ContentStore, entries ledger.Repository, logg *logger.Logger) (Service, error) {
	if content == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "content store required")
	}
	if entries == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "ledger repository required")
	}
	return &service{content: content, entries: entries, logg: logg}, nil
}

func (s *service) Record(ctx context.Context, draft Draft) (*Order, error) {
	payload, err := json.Marshal(draft)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding order draft")
	}

	entry := &models.OrderLedgerEntry{
		PaymentIntentID: draft.PaymentIntentID,
		OrderNumber:     draft.OrderNumber,
		AmountCents:     draft.Total.Mul(decimal.NewFromInt(100)).Round(0).IntPart(),
		CustomerEmail:   draft.CustomerEmail,
		Payload:         string(payload),
	}

	if err := s.entries.Begin(ctx, entry); err != nil {
		if errors.Is(err, ledger.ErrDuplicateIntent) {
			return s.existingOrder(ctx, draft.PaymentIntentID)
		}
		return nil, err
	}

	obj, err := s.content.Insert(ctx, cosmic.InsertInput{
		Title:    draft.OrderNumber,
		Type:     typeOrders,
		Metadata: metadataFromDraft(draft),
	})
	if err != nil {
		if markErr := s.entries.MarkFailed(ctx, draft.PaymentIntentID, err.Error()); markErr != nil && s.logg != nil {
			s.logg.Error(ctx, "marking ledger entry failed", markErr)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "recording order")
	}

	if err := s.entries.MarkRecorded(ctx, draft.PaymentIntentID); err != nil && s.logg != nil {
		// The order exists in the content backend; a stale ledger status
		// only affects reconciliation reporting.
		s.logg.Error(ctx, "marking ledger entry recorded", err)
	}

	order := orderFromDraft(draft)
	order.ID = obj.ID
	return order, nil
}

// existingOrder resolves the order a previous confirmation recorded for the
// same payment intent.
func (s *service) existingOrder(ctx context.Context, paymentIntentID string) (*Order, error) {
	entry, err := s.entries.FindByPaymentIntent(ctx, paymentIntentID)
	if err != nil {
		return nil, err
	}
	if entry.Status == models.OrderLedgerStatusPersistFailed {
		return nil, pkgerrors.New(pkgerrors.CodePersistence,
			fmt.Sprintf("order %s was not recorded", entry.OrderNumber))
	}

	order, err := s.ByNumber(ctx, entry.OrderNumber)
	if err == nil {
		return order, nil
	}

	// The ledger says recorded but the content backend cannot serve it
	// right now. Rebuild from the stored payload so the caller still gets
	// an idempotent answer.
	var draft Draft
	if jsonErr := json.Unmarshal([]byte(entry.Payload), &draft); jsonErr != nil {
		return nil, err
	}
	return orderFromDraft(draft), nil
}

func (s *service) ByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	obj, err := s.content.FindOne(ctx, cosmic.Query{
		Filter: map[string]any{
			"type":                  typeOrders,
			"metadata.order_number": orderNumber,
		},
	})
	if err != nil {
		if errors.Is(err, cosmic.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetching order")
	}
	return orderFromObject(*obj)
}

type orderMetadata struct {
	OrderNumber       string          `json:"order_number"`
	CustomerName      string          `json:"customer_name"`
	CustomerEmail     string          `json:"customer_email"`
	CustomerPhone     string          `json:"customer_phone,omitempty"`
	DeliveryAddress   string          `json:"delivery_address"`
	Restaurant        string          `json:"restaurant,omitempty"`
	RestaurantName    string          `json:"restaurant_name"`
	Items             []ContextItem   `json:"items"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	DeliveryFee       decimal.Decimal `json:"delivery_fee"`
	Tax               decimal.Decimal `json:"tax"`
	Total             decimal.Decimal `json:"total"`
	PaymentIntentID   string          `json:"payment_intent_id"`
	OrderStatus       string          `json:"order_status"`
	EstimatedDelivery string          `json:"estimated_delivery"`
	PlacedAt          time.Time       `json:"placed_at"`
}

func metadataFromDraft(draft Draft) orderMetadata {
	return orderMetadata{
		OrderNumber:       draft.OrderNumber,
		CustomerName:      draft.CustomerName,
		CustomerEmail:     draft.CustomerEmail,
		CustomerPhone:     draft.CustomerPhone,
		DeliveryAddress:   draft.DeliveryAddress,
		Restaurant:        draft.RestaurantID,
		RestaurantName:    draft.RestaurantName,
		Items:             draft.Items,
		Subtotal:          draft.Subtotal,
		DeliveryFee:       draft.DeliveryFee,
		Tax:               draft.Tax,
		Total:             draft.Total,
		PaymentIntentID:   draft.PaymentIntentID,
		OrderStatus:       StatusPending,
		EstimatedDelivery: draft.EstimatedDelivery,
		PlacedAt:          time.Now().UTC(),
	}
}

func orderFromDraft(draft Draft) *Order {
	return &Order{
		OrderNumber:       draft.OrderNumber,
		CustomerName:      draft.CustomerName,
		CustomerEmail:     draft.CustomerEmail,
		CustomerPhone:     draft.CustomerPhone,
		DeliveryAddress:   draft.DeliveryAddress,
		RestaurantID:      draft.RestaurantID,
		RestaurantName:    draft.RestaurantName,
		Items:             draft.Items,
		Subtotal:          draft.Subtotal,
		DeliveryFee:       draft.DeliveryFee,
		Tax:               draft.Tax,
		Total:             draft.Total,
		PaymentIntentID:   draft.PaymentIntentID,
		Status:            StatusPending,
		EstimatedDelivery: draft.EstimatedDelivery,
	}
}

func orderFromObject(obj cosmic.Object) (*Order, error) {
	var meta orderMetadata
	if len(obj.Metadata) > 0 {
		if err := json.Unmarshal(obj.Metadata, &meta); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err,
				fmt.Sprintf("decoding order %s", obj.ID))
		}
	}

	status := meta.OrderStatus
	if status == "" {
		status = StatusPending
	}
	orderNumber := meta.OrderNumber
	if orderNumber == "" {
		orderNumber = obj.Title
	}

	return &Order{
		ID:                obj.ID,
		OrderNumber:       orderNumber,
		CustomerName:      meta.CustomerName,
		CustomerEmail:     meta.CustomerEmail,
		CustomerPhone:     meta.CustomerPhone,
		DeliveryAddress:   meta.DeliveryAddress,
		RestaurantID:      meta.Restaurant,
		RestaurantName:    meta.RestaurantName,
		Items:             meta.Items,
		Subtotal:          meta.Subtotal,
		DeliveryFee:       meta.DeliveryFee,
		Tax:               meta.Tax,
		Total:             meta.Total,
		PaymentIntentID:   meta.PaymentIntentID,
		Status:            status,
		EstimatedDelivery: meta.EstimatedDelivery,
	}, nil
}
