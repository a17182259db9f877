package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// TicketsHandler exposes the ticket lifecycle. Lifecycle failures answer 400
// with the error message, lookups of a single ticket answer 404.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if principal, ok := auth.PrincipalFromContext(c); ok && req.UserID == "" {
		req.UserID = principal.User.ID
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), service.TicketCreateInput{
		Title:        req.Title,
		Description:  req.Description,
		UserID:       req.UserID,
		DepartmentID: req.DepartmentID,
		CategoryID:   req.CategoryID,
		Impact:       req.Impact,
		Urgency:      req.Urgency,
	})
	if err != nil {
		return apperrors.AsBadRequest(err)
	}
	return c.Status(http.StatusCreated).JSON(dto.NewTicketResponse(ticket))
}

// ListTickets GET /api/tickets?userId=&agentId=.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter := service.TicketListFilter{}
	if v := c.Query("userId"); v != "" {
		filter.UserID = &v
	}
	if v := c.Query("agentId"); v != "" {
		filter.AgentID = &v
	}
	tickets, err := h.service.ListTickets(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketResponse(&tickets[i]))
	}
	return c.JSON(items)
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}

// UpdateStatus PATCH /api/tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	actorID := req.UserID
	if principal, ok := auth.PrincipalFromContext(c); ok {
		actorID = principal.User.ID
	}
	ticket, err := h.service.UpdateStatus(c.UserContext(), c.Params("id"), actorID, req.Status)
	if err != nil {
		return apperrors.AsBadRequest(err)
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}

// ListHistory GET /api/tickets/:id/history.
func (h *TicketsHandler) ListHistory(c *fiber.Ctx) error {
	entries, err := h.service.ListHistory(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.HistoryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.NewHistoryResponse(e))
	}
	return c.JSON(items)
}

// LogTime POST /api/tickets/:id/time-logs.
func (h *TicketsHandler) LogTime(c *fiber.Ctx) error {
	var req dto.LogTimeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	actorID := req.UserID
	if principal, ok := auth.PrincipalFromContext(c); ok {
		actorID = principal.User.ID
	}
	id, err := h.service.LogTime(c.UserContext(), c.Params("id"), actorID, req.DurationMinutes, req.Description)
	if err != nil {
		return apperrors.AsBadRequest(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"id": id})
}

// ListTimeLogs GET /api/tickets/:id/time-logs.
func (h *TicketsHandler) ListTimeLogs(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ticketID := c.Params("id")
	logs, err := h.service.ListTimeLogs(ctx, ticketID)
	if err != nil {
		return err
	}
	total, err := h.service.GetTotalTime(ctx, ticketID)
	if err != nil {
		return err
	}
	resp := dto.TimeLogListResponse{
		Logs:         make([]dto.TimeLogResponse, 0, len(logs)),
		TotalMinutes: total,
	}
	for _, l := range logs {
		resp.Logs = append(resp.Logs, dto.NewTimeLogResponse(l))
	}
	return c.JSON(resp)
}

// StatusChangeRoles may change ticket status when auth is enforced.
var StatusChangeRoles = []domain.Role{domain.RoleAgent, domain.RoleSupervisor, domain.RoleAdmin}
