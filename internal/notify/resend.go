package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/resend/resend-go/v2"
)

// ResendNotifier emails every recipient through the Resend API.
type ResendNotifier struct {
	emails resend.EmailsSvc
	from   string
	to     []string
}

func NewResendNotifier(apiKey, from string, to []string) (*ResendNotifier, error) {
	if apiKey == "" {
		return nil, errors.New("resend: api key is required")
	}
	return newResendNotifier(resend.NewClient(apiKey).Emails, from, to)
}

func newResendNotifier(emails resend.EmailsSvc, from string, to []string) (*ResendNotifier, error) {
	if from == "" {
		return nil, errors.New("resend: sender address is required")
	}
	if len(to) == 0 {
		return nil, errors.New("resend: at least one recipient is required")
	}
	return &ResendNotifier{emails: emails, from: from, to: to}, nil
}

func (n *ResendNotifier) Publish(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      n.to,
		Subject: msg.Subject,
		Text:    msg.Text,
		Html:    "<pre style=\"font-family: sans-serif;\">" + html.EscapeString(msg.Text) + "</pre>",
	}
	if _, err := n.emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("resend: send to %s: %w", strings.Join(n.to, ","), err)
	}
	return nil
}
