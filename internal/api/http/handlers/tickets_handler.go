package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/api/dto"
	"github.com/spec-kit/ticket-tracker/internal/auth"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/service"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actorID, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.TicketPriority(strings.ToUpper(strings.TrimSpace(string(req.Priority)))),
		Category:    domain.TicketCategory(strings.ToUpper(strings.TrimSpace(string(req.Category)))),
	}, actorID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListAll GET /api/tickets.
func (h *TicketsHandler) ListAll(c *fiber.Ctx) error {
	actorID, err := actorFromContext(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.GetAllTickets(c.UserContext(), actorID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketList(tickets)})
}

// ListOwn GET /api/tickets/user.
func (h *TicketsHandler) ListOwn(c *fiber.Ctx) error {
	actorID, err := actorFromContext(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.GetUserTickets(c.UserContext(), actorID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketList(tickets)})
}

// ListByStatus GET /api/tickets/status/:status.
func (h *TicketsHandler) ListByStatus(c *fiber.Ctx) error {
	actorID, err := actorFromContext(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.GetTicketsByStatus(c.UserContext(), parseStatus(c.Params("status")), actorID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketList(tickets)})
}

// AuditLogs GET /api/tickets/audit-logs.
func (h *TicketsHandler) AuditLogs(c *fiber.Ctx) error {
	actorID, err := actorFromContext(c)
	if err != nil {
		return err
	}
	entries, err := h.service.GetAuditLogs(c.UserContext(), actorID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": auditList(entries)})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actorID, err := actorFromContext(c)
	if err != nil {
		return err
	}
	ticketID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ticket, err := h.service.GetTicketByID(c.UserContext(), ticketID, actorID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// UpdateStatus PUT /api/tickets/:id/status. The new status comes from the
// newStatus query parameter or a JSON body.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	actorID, err := actorFromContext(c)
	if err != nil {
		return err
	}
	ticketID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	raw := c.Query("newStatus")
	if raw == "" && len(c.Body()) > 0 {
		var req dto.UpdateStatusRequest
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
		raw = string(req.Status)
	}
	if strings.TrimSpace(raw) == "" {
		return apperrors.NewValidationError("status required", map[string]any{"fields": []string{"status"}})
	}

	ticket, err := h.service.UpdateStatus(c.UserContext(), ticketID, parseStatus(raw), actorID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// AddComment POST /api/tickets/:id/comments. Accepts {"content": ...} or a
// plain-text body.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	actorID, err := actorFromContext(c)
	if err != nil {
		return err
	}
	ticketID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	content := string(c.Body())
	if strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON) {
		var req dto.AddCommentRequest
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
		content = req.Content
	}

	ticket, err := h.service.AddComment(c.UserContext(), ticketID, content, actorID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

func actorFromContext(c *fiber.Ctx) (int64, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.UserID <= 0 {
		return 0, apperrors.NewUnauthorized("authentication required")
	}
	return principal.UserID, nil
}

func pathID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+name, map[string]any{"fields": []string{name}})
	}
	return id, nil
}

func parseStatus(raw string) domain.TicketStatus {
	return domain.TicketStatus(strings.ToUpper(strings.TrimSpace(raw)))
}

func ticketList(tickets []domain.Ticket) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return items
}

func ticketResponse(t *domain.Ticket) dto.TicketResponse {
	comments := make([]dto.CommentResponse, 0, len(t.Comments))
	for _, cm := range t.Comments {
		comments = append(comments, dto.CommentResponse{
			ID:        cm.ID,
			TicketID:  cm.TicketID,
			Content:   cm.Content,
			CreatedBy: cm.CreatedBy,
			CreatedAt: cm.CreatedAt,
		})
	}
	return dto.TicketResponse{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Priority:     t.Priority,
		Category:     t.Category,
		Status:       t.Status,
		CreatedBy:    t.CreatedBy,
		CreatedAt:    t.CreatedAt,
		LastUpdated:  t.LastUpdated,
		Comments:     comments,
		AuditEntries: auditList(t.AuditEntries),
	}
}

func auditList(entries []domain.AuditEntry) []dto.AuditEntryResponse {
	items := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.AuditEntryResponse{
			ID:          e.ID,
			TicketID:    e.TicketID,
			Action:      e.Action,
			OldValue:    e.OldValue,
			NewValue:    e.NewValue,
			PerformedBy: e.PerformedBy,
			CreatedAt:   e.CreatedAt,
		})
	}
	return items
}
