package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier writes messages to the log. Used when no email provider is configured.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "notify").Logger()}
}

func (n *LogNotifier) Publish(ctx context.Context, msg Message) error {
	n.log.Info().Str("subject", msg.Subject).Str("text", msg.Text).Msg("feedback notification")
	return nil
}
