package domain

import "time"

// TicketMessage captures one entry of a ticket's conversation thread.
// Messages are append-only: they are never mutated after creation.
type TicketMessage struct {
	ID         string
	TicketID   string
	SenderType SenderType
	SenderID   string
	Content    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}
