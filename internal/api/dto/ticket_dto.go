package dto

import (
	"time"

	"github.com/vanline/support-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	ActorType  domain.ActorType         `json:"actor_type"`
	ActorID    string                   `json:"actor_id"`
	Subject    string                   `json:"subject"`
	Content    string                   `json:"content"`
	Priority   domain.TicketPriority    `json:"priority"`
	LinkedType *domain.LinkedEntityType `json:"linked_type"`
	LinkedID   *string                  `json:"linked_id"`
}

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	Content string `json:"content"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AdminID string `json:"admin_id"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// TicketResponse is the API shape of a ticket. LinkedNumber is populated on
// detail reads when the linked quote or reservation still resolves.
type TicketResponse struct {
	ID              string                   `json:"id"`
	ActorType       domain.ActorType         `json:"actor_type"`
	ActorID         string                   `json:"actor_id"`
	Subject         string                   `json:"subject"`
	LinkedType      *domain.LinkedEntityType `json:"linked_type,omitempty"`
	LinkedID        *string                  `json:"linked_id,omitempty"`
	LinkedNumber    *string                  `json:"linked_number,omitempty"`
	Status          domain.TicketStatus      `json:"status"`
	Priority        domain.TicketPriority    `json:"priority"`
	AssignedAdminID *string                  `json:"assigned_admin_id,omitempty"`
	LastMessageAt   *time.Time               `json:"last_message_at,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// AdminTicketResponse adds the resolved actor display name for console lists.
type AdminTicketResponse struct {
	TicketResponse
	ActorName string `json:"actor_name"`
}

// TicketMessageResponse represents a thread entry.
type TicketMessageResponse struct {
	ID         string            `json:"id"`
	TicketID   string            `json:"ticket_id"`
	SenderType domain.SenderType `json:"sender_type"`
	SenderID   string            `json:"sender_id"`
	Content    string            `json:"content"`
	CreatedAt  time.Time         `json:"created_at"`
}

// TicketEventResponse represents an audit trail entry.
type TicketEventResponse struct {
	ID        string                 `json:"id"`
	TicketID  string                 `json:"ticket_id"`
	ActorID   *string                `json:"actor_id,omitempty"`
	EventType domain.TicketEventType `json:"event_type"`
	OldValue  map[string]any         `json:"old_value,omitempty"`
	NewValue  map[string]any         `json:"new_value,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// PageMeta describes list pagination.
type PageMeta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

// NewPageMeta derives the page envelope from a total count.
func NewPageMeta(page, limit, total int, hasMore bool) PageMeta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return PageMeta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    hasMore,
	}
}
