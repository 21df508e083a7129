package email

import (
	"context"
	"errors"
	"strings"

	"github.com/resend/resend-go/v2"

	"github.com/fooddash/fooddash-backend/pkg/config"
)

// Message is one transactional email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender dispatches transactional email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Client wraps the Resend API.
type Client struct {
	api     *resend.Client
	from    string
	replyTo string
}

// NewClient validates credentials and returns a Resend-backed sender.
func NewClient(cfg config.ResendConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("resend api key is required")
	}
	return &Client{
		api:     resend.NewClient(cfg.APIKey),
		from:    cfg.FromEmail,
		replyTo: cfg.ReplyTo,
	}, nil
}

// Send dispatches a single message.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("email recipient is required")
	}
	params := &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	}
	if c.replyTo != "" {
		params.ReplyTo = c.replyTo
	}
	_, err := c.api.Emails.SendWithContext(ctx, params)
	return err
}
