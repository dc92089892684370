package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vanline/support-service/internal/domain"
	"github.com/vanline/support-service/internal/events"
	"github.com/vanline/support-service/internal/repository"
	apperrors "github.com/vanline/support-service/pkg/util"
)

// AssignmentService hands tickets to administrators.
type AssignmentService struct {
	tickets      repository.TicketRepository
	users        repository.UserRepository
	ticketEvents repository.TicketEventRepository
	dispatcher   events.Dispatcher
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	TicketRepo      repository.TicketRepository
	UserRepo        repository.UserRepository
	TicketEventRepo repository.TicketEventRepository
	Dispatcher      events.Dispatcher
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		tickets:      deps.TicketRepo,
		users:        deps.UserRepo,
		ticketEvents: deps.TicketEventRepo,
		dispatcher:   deps.Dispatcher,
	}
}

// AssignAdmin assigns a ticket to the administrator adminID. The target must
// exist in the user directory and hold the administrator role. An OPEN
// ticket advances to IN_PROGRESS; any other status is left alone.
func (s *AssignmentService) AssignAdmin(ctx context.Context, requesterID, ticketID, adminID string) (*domain.Ticket, error) {
	adminID = strings.TrimSpace(adminID)
	if adminID == "" {
		return nil, apperrors.NewValidationError("admin_id required", nil)
	}

	req, err := resolveRequester(ctx, s.users, requesterID)
	if err != nil {
		return nil, err
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !req.IsAdmin() {
		return nil, apperrors.NewForbidden("only administrators may assign tickets")
	}

	assignee, err := s.users.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("admin", map[string]any{"admin_id": adminID})
		}
		return nil, apperrors.MapError(err)
	}
	if !assignee.IsAdmin() {
		return nil, apperrors.NewBusinessRule("user is not an administrator", map[string]any{"admin_id": adminID})
	}

	update := repository.TicketUpdate{AssignedAdminID: &adminID}
	autoAdvanced := false
	if ticket.Status == domain.TicketStatusOpen {
		inProgress := domain.TicketStatusInProgress
		update.Status = &inProgress
		autoAdvanced = true
	}
	if err := s.tickets.UpdateFields(ctx, ticketID, update); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordAssigneeChange(ctx, req.id, ticket, adminID, update.Status); err != nil {
		return nil, apperrors.MapError(err)
	}
	fresh, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	s.publishAssignedEvent(ctx, ticket.ID, events.TicketAssignedPayload{
		AdminID:       adminID,
		AutoAdvanced:  autoAdvanced,
		CurrentStatus: fresh.Status,
	})
	return fresh, nil
}

func (s *AssignmentService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *AssignmentService) recordAssigneeChange(ctx context.Context, actorID string, ticket *domain.Ticket, adminID string, newStatus *domain.TicketStatus) error {
	if s.ticketEvents == nil {
		return nil
	}
	newValue := map[string]any{"assigned_admin_id": adminID, "status": ticket.Status}
	if newStatus != nil {
		newValue["status"] = *newStatus
	}
	return s.ticketEvents.Create(ctx, &domain.TicketEvent{
		TicketID:  ticket.ID,
		ActorID:   &actorID,
		EventType: domain.TicketEventAssigneeChange,
		OldValue:  map[string]any{"assigned_admin_id": ticket.AssignedAdminID, "status": ticket.Status},
		NewValue:  newValue,
	})
}

func (s *AssignmentService) publishAssignedEvent(ctx context.Context, ticketID string, payload events.TicketAssignedPayload) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketAssigned,
		TicketID:  ticketID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}
