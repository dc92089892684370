package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusRejected   TicketStatus = "REJECTED"
)

// Valid reports whether the value is one of the known statuses.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusRejected:
		return true
	}
	return false
}

// Terminal reports whether the status ends the support conversation.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusResolved || s == TicketStatusRejected
}

// TicketPriority enumerates triage urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// Valid reports whether the value is one of the known priorities.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// LinkedEntityType enumerates the platform records a ticket may reference.
type LinkedEntityType string

const (
	LinkedEntityQuote       LinkedEntityType = "QUOTE"
	LinkedEntityReservation LinkedEntityType = "RESERVATION"
)

// Valid reports whether the value is one of the known linked entity types.
func (t LinkedEntityType) Valid() bool {
	return t == LinkedEntityQuote || t == LinkedEntityReservation
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID              string
	ActorType       ActorType
	ActorID         string
	Subject         string
	LinkedType      *LinkedEntityType
	LinkedID        *string
	Status          TicketStatus
	Priority        TicketPriority
	AssignedAdminID *string
	LastMessageAt   *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}
