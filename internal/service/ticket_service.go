package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/vanline/support-service/internal/domain"
	"github.com/vanline/support-service/internal/events"
	"github.com/vanline/support-service/internal/repository"
	apperrors "github.com/vanline/support-service/pkg/util"
)

const (
	maxSubjectLen = 200
	maxContentLen = 10000

	maxPageLimit        = 100
	defaultMessageLimit = 50
	defaultListLimit    = 20
	defaultSearchLimit  = 20
)

// TicketService coordinates ticket creation, reads, status changes and the
// message thread.
type TicketService struct {
	tickets      repository.TicketRepository
	messages     repository.TicketMessageRepository
	ticketEvents repository.TicketEventRepository
	users        repository.UserRepository
	quotes       repository.QuoteRepository
	reservations repository.ReservationRepository
	dispatcher   events.Dispatcher
	logger       *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo      repository.TicketRepository
	MessageRepo     repository.TicketMessageRepository
	TicketEventRepo repository.TicketEventRepository
	UserRepo        repository.UserRepository
	QuoteRepo       repository.QuoteRepository
	ReservationRepo repository.ReservationRepository
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
}

// TicketCreateInput describes the ticket creation payload. ActorType and
// ActorID identify the ticket owner; non-admin requesters may only open
// tickets for themselves.
type TicketCreateInput struct {
	ActorType  domain.ActorType
	ActorID    string
	Subject    string
	Content    string
	Priority   domain.TicketPriority
	LinkedType *domain.LinkedEntityType
	LinkedID   *string
}

// TicketListInput describes the own-ticket listing parameters. An empty
// ActorID lists the requester's tickets; administrators may list any actor's.
type TicketListInput struct {
	ActorID string
	Status  *domain.TicketStatus
	Page    int
	Limit   int
}

// TicketDetail is a ticket plus its best-effort display enrichment.
type TicketDetail struct {
	Ticket       domain.Ticket
	LinkedNumber *string
}

// TicketPage is one page of tickets with its paging summary.
type TicketPage struct {
	Items   []domain.Ticket
	Total   int
	Page    int
	Limit   int
	HasMore bool
}

// MessagePage is one page of a ticket's thread, oldest first.
type MessagePage struct {
	Items   []domain.TicketMessage
	Total   int
	Page    int
	Limit   int
	HasMore bool
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:      deps.TicketRepo,
		messages:     deps.MessageRepo,
		ticketEvents: deps.TicketEventRepo,
		users:        deps.UserRepo,
		quotes:       deps.QuoteRepo,
		reservations: deps.ReservationRepo,
		dispatcher:   deps.Dispatcher,
		logger:       deps.Logger,
	}
}

// CreateTicket opens a ticket with its opening message. The ticket always
// starts OPEN and its last-message timestamp equals its creation timestamp.
func (s *TicketService) CreateTicket(ctx context.Context, requesterID string, input TicketCreateInput) (*domain.Ticket, error) {
	input.Subject = strings.TrimSpace(input.Subject)
	input.Content = strings.TrimSpace(input.Content)
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	req, err := resolveRequester(ctx, s.users, requesterID)
	if err != nil {
		return nil, err
	}
	if !req.IsAdmin() && input.ActorID != req.id {
		return nil, apperrors.NewForbidden("tickets can only be opened for yourself")
	}

	now := time.Now().UTC()
	ticket := &domain.Ticket{
		ActorType:     input.ActorType,
		ActorID:       input.ActorID,
		Subject:       input.Subject,
		LinkedType:    input.LinkedType,
		LinkedID:      input.LinkedID,
		Status:        domain.TicketStatusOpen,
		Priority:      input.Priority,
		LastMessageAt: &now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	opening := &domain.TicketMessage{
		TicketID:   ticket.ID,
		SenderType: domain.SenderTypeForActor(ticket.ActorType),
		SenderID:   ticket.ActorID,
		Content:    input.Content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.messages.Create(ctx, opening); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			ActorType: ticket.ActorType,
			ActorID:   ticket.ActorID,
			Subject:   ticket.Subject,
			Priority:  ticket.Priority,
		},
	})
	return ticket, nil
}

// GetTicket fetches a ticket for the requester with best-effort linked
// entity enrichment.
func (s *TicketService) GetTicket(ctx context.Context, requesterID, ticketID string) (*TicketDetail, error) {
	ticket, _, err := s.accessTicket(ctx, requesterID, ticketID)
	if err != nil {
		return nil, err
	}
	detail := &TicketDetail{Ticket: *ticket}
	if number, ok := s.linkedNumber(ctx, ticket); ok {
		detail.LinkedNumber = &number
	}
	return detail, nil
}

// ListTicketsForActor returns one page of an actor's own tickets, most
// recently active first.
func (s *TicketService) ListTicketsForActor(ctx context.Context, requesterID string, input TicketListInput) (*TicketPage, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": *input.Status})
	}

	req, err := resolveRequester(ctx, s.users, requesterID)
	if err != nil {
		return nil, err
	}
	actorID := input.ActorID
	if actorID == "" {
		actorID = req.id
	}
	if !req.IsAdmin() && actorID != req.id {
		return nil, apperrors.NewForbidden("access denied")
	}

	page := clampPage(input.Page)
	limit := clampLimit(input.Limit, defaultListLimit)
	items, total, err := s.tickets.Search(ctx, repository.TicketSearchQuery{
		ActorID:   &actorID,
		Status:    input.Status,
		SortKey:   repository.SortByLastMessageAt,
		SortOrder: repository.SortDesc,
		Limit:     limit,
		Offset:    (page - 1) * limit,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &TicketPage{
		Items:   items,
		Total:   total,
		Page:    page,
		Limit:   limit,
		HasMore: page*limit < total,
	}, nil
}

// UpdateStatus sets a ticket's status. Any administrator may set any known
// value; no transition graph is enforced.
func (s *TicketService) UpdateStatus(ctx context.Context, requesterID, ticketID string, status domain.TicketStatus) (*domain.Ticket, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": status})
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
		return nil, apperrors.NewForbidden("only administrators may change ticket status")
	}
	if ticket.Status == status {
		// Same value: no write, no audit entry, no notification.
		return ticket, nil
	}

	oldStatus := ticket.Status
	if err := s.tickets.UpdateFields(ctx, ticketID, repository.TicketUpdate{Status: &status}); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordStatusChange(ctx, req.id, ticket.ID, oldStatus, status); err != nil {
		return nil, apperrors.MapError(err)
	}
	fresh, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Payload: events.TicketStatusChangedPayload{
			ActorType: ticket.ActorType,
			ActorID:   ticket.ActorID,
			OldStatus: oldStatus,
			NewStatus: status,
		},
	})
	return fresh, nil
}

// AddMessage appends a message to a ticket's thread and advances the
// ticket's last-message timestamp.
func (s *TicketService) AddMessage(ctx context.Context, requesterID, ticketID, content string) (*domain.TicketMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}
	if len(content) > maxContentLen {
		return nil, apperrors.NewValidationError("content too long", map[string]any{"max": maxContentLen})
	}

	ticket, req, err := s.accessTicket(ctx, requesterID, ticketID)
	if err != nil {
		return nil, err
	}
	senderType := domain.SenderTypeForActor(ticket.ActorType)
	if req.IsAdmin() {
		senderType = domain.SenderTypeAdmin
	}

	now := time.Now().UTC()
	msg := &domain.TicketMessage{
		TicketID:   ticket.ID,
		SenderType: senderType,
		SenderID:   req.id,
		Content:    content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.tickets.SetLastMessageAt(ctx, ticket.ID, msg.CreatedAt); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketMessageAdded,
		TicketID: ticket.ID,
		Payload: events.TicketMessageAddedPayload{
			MessageID:  msg.ID,
			SenderType: msg.SenderType,
			SenderID:   msg.SenderID,
		},
	})
	return msg, nil
}

// ListMessages returns one page of a ticket's thread in chronological order.
func (s *TicketService) ListMessages(ctx context.Context, requesterID, ticketID string, page, limit int) (*MessagePage, error) {
	ticket, _, err := s.accessTicket(ctx, requesterID, ticketID)
	if err != nil {
		return nil, err
	}
	page = clampPage(page)
	limit = clampLimit(limit, defaultMessageLimit)
	items, total, err := s.messages.ListByTicketPaged(ctx, ticket.ID, limit, (page-1)*limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &MessagePage{
		Items:   items,
		Total:   total,
		Page:    page,
		Limit:   limit,
		HasMore: page*limit < total,
	}, nil
}

// ListEvents returns a ticket's audit trail, newest first. Administrators
// only.
func (s *TicketService) ListEvents(ctx context.Context, requesterID, ticketID string, limit, offset int) ([]domain.TicketEvent, error) {
	req, err := resolveRequester(ctx, s.users, requesterID)
	if err != nil {
		return nil, err
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !req.IsAdmin() {
		return nil, apperrors.NewForbidden("administrator access required")
	}
	entries, err := s.ticketEvents.ListByTicket(ctx, ticket.ID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// accessTicket resolves the requester, loads the ticket and applies the
// access rule. A missing ticket reports NOT_FOUND before authorization.
func (s *TicketService) accessTicket(ctx context.Context, requesterID, ticketID string) (*domain.Ticket, requesterContext, error) {
	req, err := resolveRequester(ctx, s.users, requesterID)
	if err != nil {
		return nil, requesterContext{}, err
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, requesterContext{}, err
	}
	if !canAccessTicket(req, ticket) {
		return nil, requesterContext{}, apperrors.NewForbidden("access denied")
	}
	return ticket, req, nil
}

func (s *TicketService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// linkedNumber resolves the human-readable number of the linked entity. The
// ok result is false when the ticket links nothing or the lookup misses; a
// failed lookup is logged and never fails the surrounding read.
func (s *TicketService) linkedNumber(ctx context.Context, ticket *domain.Ticket) (string, bool) {
	if ticket.LinkedType == nil || ticket.LinkedID == nil {
		return "", false
	}
	var (
		number string
		err    error
	)
	switch *ticket.LinkedType {
	case domain.LinkedEntityQuote:
		var ref *domain.QuoteRef
		if ref, err = s.quotes.GetByID(ctx, *ticket.LinkedID); err == nil {
			number = ref.Number
		}
	case domain.LinkedEntityReservation:
		var ref *domain.ReservationRef
		if ref, err = s.reservations.GetByID(ctx, *ticket.LinkedID); err == nil {
			number = ref.Number
		}
	default:
		return "", false
	}
	if err != nil {
		s.logger.Warn("linked entity lookup failed",
			zap.String("ticket_id", ticket.ID),
			zap.String("linked_type", string(*ticket.LinkedType)),
			zap.String("linked_id", *ticket.LinkedID),
			zap.Error(err))
		return "", false
	}
	return number, true
}

func (s *TicketService) recordStatusChange(ctx context.Context, actorID, ticketID string, oldStatus, newStatus domain.TicketStatus) error {
	if s.ticketEvents == nil {
		return nil
	}
	return s.ticketEvents.Create(ctx, &domain.TicketEvent{
		TicketID:  ticketID,
		ActorID:   &actorID,
		EventType: domain.TicketEventStatusChange,
		OldValue:  map[string]any{"status": oldStatus},
		NewValue:  map[string]any{"status": newStatus},
	})
}

func validateCreateInput(input TicketCreateInput) error {
	if !input.ActorType.Valid() {
		return apperrors.NewValidationError("actor_type must be END_USER or DRIVER", nil)
	}
	if input.ActorID == "" {
		return apperrors.NewValidationError("actor_id required", nil)
	}
	if input.Subject == "" {
		return apperrors.NewValidationError("subject required", nil)
	}
	if len(input.Subject) > maxSubjectLen {
		return apperrors.NewValidationError("subject too long", map[string]any{"max": maxSubjectLen})
	}
	if input.Content == "" {
		return apperrors.NewValidationError("content required", nil)
	}
	if len(input.Content) > maxContentLen {
		return apperrors.NewValidationError("content too long", map[string]any{"max": maxContentLen})
	}
	if input.Priority != "" && !input.Priority.Valid() {
		return apperrors.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}
	if input.LinkedID != nil && input.LinkedType == nil {
		return apperrors.NewValidationError("linked_type required when linked_id is set", nil)
	}
	if input.LinkedType != nil && !input.LinkedType.Valid() {
		return apperrors.NewValidationError("unknown linked_type", map[string]any{"linked_type": *input.LinkedType})
	}
	return nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func clampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxPageLimit {
		return maxPageLimit
	}
	return limit
}
