package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fooddash/fooddash-backend/internal/orders"
	"github.com/fooddash/fooddash-backend/pkg/email"
	pkgerrors "github.com/fooddash/fooddash-backend/pkg/errors"
)

type stubSender struct {
	sent []email.Message
	err  error
}

func (s *stubSender) Send(_ context.Context, msg email.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func testOrder() *orders.Order {
	return &orders.Order{
		OrderNumber:       "ORD1756380000000ABCDE",
		CustomerName:      "Jo Doe",
		CustomerEmail:     "jo@example.com",
		DeliveryAddress:   "1 Main St, Austin, TX 78701",
		RestaurantName:    "Luigi's",
		Items:             []orders.ContextItem{{Name: "Pizza", Price: decimal.RequireFromString("12.00"), Quantity: 2}},
		Subtotal:          decimal.RequireFromString("24.00"),
		DeliveryFee:       decimal.RequireFromString("2.99"),
		Tax:               decimal.RequireFromString("1.98"),
		Total:             decimal.RequireFromString("28.97"),
		Status:            orders.StatusPending,
		EstimatedDelivery: "30-45 minutes",
	}
}

func TestSendOrderConfirmation(t *testing.T) {
	sender := &stubSender{}
	svc, err := NewService(sender, nil)
	require.NoError(t, err)

	require.NoError(t, svc.SendOrderConfirmation(context.Background(), testOrder()))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "jo@example.com", msg.To)
	assert.Contains(t, msg.Subject, "ORD1756380000000ABCDE")
	assert.Contains(t, msg.HTML, "Luigi&#39;s")
	assert.Contains(t, msg.HTML, "28.97")
	assert.Contains(t, msg.HTML, "30-45 minutes")
}

func TestSendOrderConfirmation_NoEmailIsNoop(t *testing.T) {
	sender := &stubSender{}
	svc, err := NewService(sender, nil)
	require.NoError(t, err)

	order := testOrder()
	order.CustomerEmail = ""
	require.NoError(t, svc.SendOrderConfirmation(context.Background(), order))
	assert.Empty(t, sender.sent)
}

func TestSendOrderConfirmation_SenderFailure(t *testing.T) {
	sender := &stubSender{err: errors.New("resend unavailable")}
	svc, err := NewService(sender, nil)
	require.NoError(t, err)

	err = svc.SendOrderConfirmation(context.Background(), testOrder())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotification, pkgerrors.As(err).Code())
}
