package events

import (
	"time"

	"github.com/vanline/support-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketMessageAdded  EventType = "ticket_message_added"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	ActorType domain.ActorType      `json:"actor_type"`
	ActorID   string                `json:"actor_id"`
	Subject   string                `json:"subject"`
	Priority  domain.TicketPriority `json:"priority"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AdminID       string              `json:"admin_id"`
	AutoAdvanced  bool                `json:"auto_advanced"`
	CurrentStatus domain.TicketStatus `json:"current_status"`
}

// TicketStatusChangedPayload payload. OldStatus and NewStatus always differ:
// no-op updates do not publish.
type TicketStatusChangedPayload struct {
	ActorType domain.ActorType    `json:"actor_type"`
	ActorID   string              `json:"actor_id"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketMessageAddedPayload payload.
type TicketMessageAddedPayload struct {
	MessageID  string            `json:"message_id"`
	SenderType domain.SenderType `json:"sender_type"`
	SenderID   string            `json:"sender_id"`
}
