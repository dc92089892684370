package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/vanline/support-service/internal/api/dto"
	"github.com/vanline/support-service/internal/auth"
	"github.com/vanline/support-service/internal/domain"
	"github.com/vanline/support-service/internal/service"
	apperrors "github.com/vanline/support-service/pkg/util"
)

// TicketsHandler serves the self-service ticket endpoints shared by end
// users, drivers and administrators acting on their behalf.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	requesterID, err := auth.RequesterID(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), requesterID, service.TicketCreateInput{
		ActorType:  req.ActorType,
		ActorID:    req.ActorID,
		Subject:    req.Subject,
		Content:    req.Content,
		Priority:   req.Priority,
		LinkedType: req.LinkedType,
		LinkedID:   req.LinkedID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	requesterID, err := auth.RequesterID(c)
	if err != nil {
		return err
	}
	input := service.TicketListInput{
		ActorID: c.Query("actor_id"),
		Page:    parseInt(c.Query("page"), 1),
		Limit:   parseInt(c.Query("limit"), 0),
	}
	if status := c.Query("status"); status != "" {
		parsed := domain.TicketStatus(status)
		input.Status = &parsed
	}

	page, err := h.service.ListTicketsForActor(c.UserContext(), requesterID, input)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, ticketResponse(&page.Items[i]))
	}
	return c.JSON(fiber.Map{
		"data": items,
		"meta": dto.NewPageMeta(page.Page, page.Limit, page.Total, page.HasMore),
	})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	requesterID, err := auth.RequesterID(c)
	if err != nil {
		return err
	}
	detail, err := h.service.GetTicket(c.UserContext(), requesterID, c.Params("id"))
	if err != nil {
		return err
	}
	resp := ticketResponse(&detail.Ticket)
	resp.LinkedNumber = detail.LinkedNumber
	return c.JSON(fiber.Map{"data": resp})
}

// ListMessages GET /tickets/:id/messages.
func (h *TicketsHandler) ListMessages(c *fiber.Ctx) error {
	requesterID, err := auth.RequesterID(c)
	if err != nil {
		return err
	}
	page, err := h.service.ListMessages(c.UserContext(), requesterID, c.Params("id"),
		parseInt(c.Query("page"), 1), parseInt(c.Query("limit"), 0))
	if err != nil {
		return err
	}
	items := make([]dto.TicketMessageResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, ticketMessageResponse(&page.Items[i]))
	}
	return c.JSON(fiber.Map{
		"data": items,
		"meta": dto.NewPageMeta(page.Page, page.Limit, page.Total, page.HasMore),
	})
}

// AddMessage POST /tickets/:id/messages.
func (h *TicketsHandler) AddMessage(c *fiber.Ctx) error {
	requesterID, err := auth.RequesterID(c)
	if err != nil {
		return err
	}
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	msg, err := h.service.AddMessage(c.UserContext(), requesterID, c.Params("id"), req.Content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketMessageResponse(msg)})
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:              ticket.ID,
		ActorType:       ticket.ActorType,
		ActorID:         ticket.ActorID,
		Subject:         ticket.Subject,
		LinkedType:      ticket.LinkedType,
		LinkedID:        ticket.LinkedID,
		Status:          ticket.Status,
		Priority:        ticket.Priority,
		AssignedAdminID: ticket.AssignedAdminID,
		LastMessageAt:   ticket.LastMessageAt,
		CreatedAt:       ticket.CreatedAt,
		UpdatedAt:       ticket.UpdatedAt,
	}
}

func ticketMessageResponse(msg *domain.TicketMessage) dto.TicketMessageResponse {
	return dto.TicketMessageResponse{
		ID:         msg.ID,
		TicketID:   msg.TicketID,
		SenderType: msg.SenderType,
		SenderID:   msg.SenderID,
		Content:    msg.Content,
		CreatedAt:  msg.CreatedAt,
	}
}
