package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vanline/support-service/internal/cache"
	"github.com/vanline/support-service/internal/domain"
	"github.com/vanline/support-service/internal/events"
	"github.com/vanline/support-service/internal/notify"
	"github.com/vanline/support-service/internal/observability"
	"github.com/vanline/support-service/internal/repository"
)

// adminFanOutLimit bounds how many administrators a creation fan-out reaches.
const adminFanOutLimit = 1000

// NotificationService turns lifecycle events into notifications. Delivery is
// best-effort: a failed send is logged and never reaches the operation that
// raised the event.
type NotificationService struct {
	users      repository.UserRepository
	recipients *cache.RecipientCache
	sender     notify.Sender
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NotificationDependencies bundles collaborators. Recipients and Metrics may
// be nil when no cache backend or registry is configured.
type NotificationDependencies struct {
	UserRepo   repository.UserRepository
	Recipients *cache.RecipientCache
	Sender     notify.Sender
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	return &NotificationService{
		users:      deps.UserRepo,
		recipients: deps.Recipients,
		sender:     deps.Sender,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// RegisterHandlers subscribes to the lifecycle events that notify someone.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
}

// handleTicketCreated fans the event out to every current administrator, one
// send per recipient, failures isolated per recipient.
func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	message := fmt.Sprintf("A new support ticket %q was opened.", payload.Subject)
	for _, adminID := range n.adminRecipients(ctx) {
		n.send(ctx, adminID, notify.KindTicketCreated, "New support ticket", message, event)
	}
	return nil
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	message := fmt.Sprintf("Support ticket %s was assigned to you.", event.TicketID)
	n.send(ctx, payload.AdminID, notify.KindTicketAssigned, "Ticket assigned to you", message, event)
	return nil
}

// handleTicketStatusChanged notifies the ticket's actor. Only end users are
// reachable through the notification pipeline, and only the terminal
// statuses carry actor-facing copy.
func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	if payload.ActorType != domain.ActorTypeEndUser {
		return nil
	}
	title, message, ok := statusChangeNotice(payload.NewStatus)
	if !ok {
		return nil
	}
	n.send(ctx, payload.ActorID, notify.KindTicketStatusChanged, title, message, event)
	return nil
}

// adminRecipients returns the current administrator ids, served from the
// recipient cache when warm. A directory failure yields an empty fan-out.
func (n *NotificationService) adminRecipients(ctx context.Context) []string {
	if ids, ok := n.recipients.AdminIDs(ctx); ok {
		return ids
	}
	admins, err := n.users.ListByRole(ctx, domain.UserRoleAdmin, adminFanOutLimit)
	if err != nil {
		n.logger.Warn("admin recipient lookup failed", zap.Error(err))
		return nil
	}
	ids := make([]string, 0, len(admins))
	for i := range admins {
		ids = append(ids, admins[i].ID)
	}
	n.recipients.StoreAdminIDs(ctx, ids)
	return ids
}

func (n *NotificationService) send(ctx context.Context, recipientID string, kind notify.Kind, title, message string, event events.Event) {
	if n.sender == nil || recipientID == "" {
		return
	}
	err := n.sender.Send(ctx, recipientID, kind, title, message)
	n.metrics.RecordNotification(string(kind), err == nil)
	if err != nil {
		n.logger.Warn("notification send failed",
			zap.String("recipient_id", recipientID),
			zap.String("kind", string(kind)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
}

// statusChangeNotice returns the actor-facing copy for a status. Only
// RESOLVED and REJECTED notify.
func statusChangeNotice(status domain.TicketStatus) (string, string, bool) {
	switch status {
	case domain.TicketStatusResolved:
		return "Your ticket was resolved",
			"Our support team marked your ticket as resolved. Reply on the ticket if you still need help.", true
	case domain.TicketStatusRejected:
		return "Your ticket was rejected",
			"Our support team could not proceed with your ticket. Reply on the ticket for more detail.", true
	default:
		return "", "", false
	}
}
