package domain

import "time"

// TicketEventType captures what changed in an audit entry.
type TicketEventType string

const (
	TicketEventStatusChange   TicketEventType = "STATUS_CHANGE"
	TicketEventAssigneeChange TicketEventType = "ASSIGNEE_CHANGE"
)

// TicketEvent is an immutable audit trail entry for a ticket mutation.
type TicketEvent struct {
	ID        string
	TicketID  string
	ActorID   *string
	EventType TicketEventType
	OldValue  map[string]any
	NewValue  map[string]any
	CreatedAt time.Time
}
