package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/vanline/support-service/internal/config"
)

// envelope is the wire shape consumed by the platform's delivery service.
type envelope struct {
	RecipientID string    `json:"recipient_id"`
	Kind        Kind      `json:"kind"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	SentAt      time.Time `json:"sent_at"`
}

// NATSSender publishes notification commands onto a NATS subject. Actual
// delivery (push, email, SMS) is owned by the platform's notification
// service consuming that subject.
type NATSSender struct {
	conn    *nats.Conn
	subject string
	logger  *zap.Logger
}

// ConnectNATS establishes the broker connection and returns a sender bound
// to the configured subject.
func ConnectNATS(cfg config.NATSConfig, logger *zap.Logger) (*NATSSender, error) {
	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	logger.Info("connected to nats", zap.String("subject", cfg.Subject))
	return &NATSSender{conn: conn, subject: cfg.Subject, logger: logger}, nil
}

// Send publishes one notification envelope.
func (s *NATSSender) Send(_ context.Context, recipientID string, kind Kind, title, message string) error {
	data, err := json.Marshal(envelope{
		RecipientID: recipientID,
		Kind:        kind,
		Title:       title,
		Message:     message,
		SentAt:      time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if err := s.conn.Publish(s.subject, data); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Close drains the connection.
func (s *NATSSender) Close() {
	if s == nil || s.conn == nil {
		return
	}
	s.conn.Close()
}
