package notify

import (
	"context"

	"go.uber.org/zap"
)

// Kind classifies a notification for the delivery pipeline.
type Kind string

const (
	KindTicketCreated       Kind = "TICKET_CREATED"
	KindTicketAssigned      Kind = "TICKET_ASSIGNED"
	KindTicketStatusChanged Kind = "TICKET_STATUS_CHANGED"
)

// Sender delivers one notification to one recipient. Delivery is
// fire-and-forget from the caller's perspective: a returned error is logged
// and never propagates into the surrounding operation.
type Sender interface {
	Send(ctx context.Context, recipientID string, kind Kind, title, message string) error
}

// LogSender writes notifications to the service log. It is the default
// sender when no broker is configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender constructs the sender.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the notification.
func (s *LogSender) Send(_ context.Context, recipientID string, kind Kind, title, message string) error {
	s.logger.Info("notification",
		zap.String("recipient_id", recipientID),
		zap.String("kind", string(kind)),
		zap.String("title", title),
		zap.String("message", message))
	return nil
}
