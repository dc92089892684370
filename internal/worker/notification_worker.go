package worker

import (
	"go.uber.org/zap"

	"github.com/vanline/support-service/internal/events"
	"github.com/vanline/support-service/internal/observability"
	"github.com/vanline/support-service/internal/service"
)

// Start attaches the in-process event consumers to the dispatcher: the
// notification handlers and the event metrics counter. Call once, after the
// services are constructed and before the server accepts traffic.
func Start(dispatcher events.Dispatcher, notifications *service.NotificationService, metrics *observability.Metrics, logger *zap.Logger) {
	observability.ObserveEvents(dispatcher, metrics)

	if notifications == nil {
		logger.Warn("notification service not configured; delivery disabled")
		return
	}
	notifications.RegisterHandlers()
	logger.Info("notification worker subscribed")
}
