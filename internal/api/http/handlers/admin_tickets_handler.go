package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vanline/support-service/internal/api/dto"
	"github.com/vanline/support-service/internal/auth"
	"github.com/vanline/support-service/internal/domain"
	"github.com/vanline/support-service/internal/repository"
	"github.com/vanline/support-service/internal/service"
	apperrors "github.com/vanline/support-service/pkg/util"
)

// AdminTicketsHandler serves the admin console endpoints. Administrator
// rights are enforced by the services per operation.
type AdminTicketsHandler struct {
	tickets     *service.TicketService
	assignments *service.AssignmentService
	search      *service.SearchService
}

// NewAdminTicketsHandler constructs handler.
func NewAdminTicketsHandler(tickets *service.TicketService, assignments *service.AssignmentService, search *service.SearchService) *AdminTicketsHandler {
	return &AdminTicketsHandler{tickets: tickets, assignments: assignments, search: search}
}

// SearchTickets GET /admin/tickets.
func (h *AdminTicketsHandler) SearchTickets(c *fiber.Ctx) error {
	requesterID, err := auth.RequesterID(c)
	if err != nil {
		return err
	}
	result, err := h.search.SearchTickets(c.UserContext(), requesterID, parseTicketSearchInput(c))
	if err != nil {
		return err
	}
	items := make([]dto.AdminTicketResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, dto.AdminTicketResponse{
			TicketResponse: ticketResponse(&result.Items[i].Ticket),
			ActorName:      result.Items[i].ActorName,
		})
	}
	return c.JSON(fiber.Map{
		"data": items,
		"meta": dto.NewPageMeta(result.Page, result.Limit, result.Total, result.HasMore),
	})
}

// AssignTicket POST /admin/tickets/:id/assign.
func (h *AdminTicketsHandler) AssignTicket(c *fiber.Ctx) error {
	requesterID, err := auth.RequesterID(c)
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.assignments.AssignAdmin(c.UserContext(), requesterID, c.Params("id"), req.AdminID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// UpdateStatus PATCH /admin/tickets/:id/status.
func (h *AdminTicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	requesterID, err := auth.RequesterID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.UpdateStatus(c.UserContext(), requesterID, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListEvents GET /admin/tickets/:id/events.
func (h *AdminTicketsHandler) ListEvents(c *fiber.Ctx) error {
	requesterID, err := auth.RequesterID(c)
	if err != nil {
		return err
	}
	page := parseInt(c.Query("page"), 1)
	limit := parseInt(c.Query("limit"), 50)
	entries, err := h.tickets.ListEvents(c.UserContext(), requesterID, c.Params("id"), limit, (page-1)*limit)
	if err != nil {
		return err
	}
	items := make([]dto.TicketEventResponse, 0, len(entries))
	for i := range entries {
		items = append(items, ticketEventResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseTicketSearchInput(c *fiber.Ctx) service.TicketSearchInput {
	input := service.TicketSearchInput{
		Search:    c.Query("search"),
		SortKey:   repository.SortKey(c.Query("sort_by")),
		SortOrder: repository.SortOrder(c.Query("sort_order")),
		Page:      parseInt(c.Query("page"), 1),
		Limit:     parseInt(c.Query("limit"), 0),
	}
	if status := c.Query("status"); status != "" {
		parsed := domain.TicketStatus(status)
		input.Status = &parsed
	}
	if actorType := c.Query("actor_type"); actorType != "" {
		parsed := domain.ActorType(actorType)
		input.ActorType = &parsed
	}
	if adminID := c.Query("assigned_admin_id"); adminID != "" {
		input.AssignedAdminID = &adminID
	}
	return input
}

func ticketEventResponse(event *domain.TicketEvent) dto.TicketEventResponse {
	return dto.TicketEventResponse{
		ID:        event.ID,
		TicketID:  event.TicketID,
		ActorID:   event.ActorID,
		EventType: event.EventType,
		OldValue:  event.OldValue,
		NewValue:  event.NewValue,
		CreatedAt: event.CreatedAt,
	}
}
