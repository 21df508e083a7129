package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/fooddash/fooddash-backend/internal/orders"
	"github.com/fooddash/fooddash-backend/pkg/email"
	pkgerrors "github.com/fooddash/fooddash-backend/pkg/errors"
	"github.com/fooddash/fooddash-backend/pkg/logger"
)

var confirmationTmpl = template.Must(template.New("order_confirmation").Parse(`
<div style="font-family: sans-serif; max-width: 560px; margin: 0 auto;">
  <h1>Thanks for your order, {{.CustomerName}}!</h1>
  <p>Your order <strong>{{.OrderNumber}}</strong> from {{.RestaurantName}} is confirmed.</p>
  <table width="100%" cellpadding="4">
    {{range .Items}}
    <tr>
      <td>{{.Quantity}}&times; {{.Name}}{{if .SpecialInstructions}} <em>({{.SpecialInstructions}})</em>{{end}}</td>
      <td align="right">${{.Price}}</td>
    </tr>
    {{end}}
  </table>
  <hr>
  <p>Subtotal: ${{.Subtotal}}<br>
  Delivery fee: ${{.DeliveryFee}}<br>
  Tax: ${{.Tax}}<br>
  <strong>Total: ${{.Total}}</strong></p>
  <p>Delivering to: {{.DeliveryAddress}}<br>
  Estimated delivery: {{.EstimatedDelivery}}</p>
</div>
`))

// Service sends order lifecycle notifications. Failures are reported to the
// caller but are never grounds to fail a checkout; the caller decides whether
// to surface or just log them.
type Service interface {
	SendOrderConfirmation(ctx context.Context, order *orders.Order) error
}

type service struct {
	sender email.Sender
	logg   *logger.Logger
}

func NewService(sender email.Sender, logg *logger.Logger) (Service, error) {
	if sender == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "email sender required")
	}
	return &service{sender: sender, logg: logg}, nil
}

func (s *service) SendOrderConfirmation(ctx context.Context, order *orders.Order) error {
	if order == nil || order.CustomerEmail == "" {
		// Guest checkouts without an email simply get no confirmation.
		return nil
	}

	var body bytes.Buffer
	if err := confirmationTmpl.Execute(&body, order); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNotification, err, "rendering confirmation email")
	}

	msg := email.Message{
		To:      order.CustomerEmail,
		Subject: fmt.Sprintf("Your FoodDash order %s is confirmed", order.OrderNumber),
		HTML:    body.String(),
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNotification, err, "sending confirmation email")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderNumber(ctx, order.OrderNumber), "order confirmation email sent")
	}
	return nil
}
