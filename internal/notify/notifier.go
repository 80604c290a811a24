package notify

import "context"

// Message is a short human-readable notice about a new submission.
type Message struct {
	Subject string
	Text    string
}

// Notifier publishes messages to whoever watches incoming feedback.
type Notifier interface {
	Publish(ctx context.Context, msg Message) error
}
