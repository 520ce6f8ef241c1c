package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/majewskibartosz/railway-support-lab/internal/api/dto"
	"github.com/majewskibartosz/railway-support-lab/internal/service"
	apperrors "github.com/majewskibartosz/railway-support-lab/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	input := service.TicketListInput{
		Status:     c.Query("status"),
		Severity:   c.Query("severity"),
		AssignedTo: c.Query("assigned_to"),
		Limit:      parseInt(c.Query("limit"), 50),
		Offset:     parseInt(c.Query("offset"), 0),
	}
	if raw := c.Query("customer_id"); raw != "" {
		customerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return apperrors.NewInvalidInput("customer_id must be an integer", nil)
		}
		input.CustomerID = &customerID
	}

	tickets, err := h.service.ListTickets(c.UserContext(), input)
	if err != nil {
		return err
	}

	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.FromTicket(&tickets[i]))
	}
	return c.JSON(dto.ListTicketsResponse{Count: len(items), Tickets: items})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := parseTicketID(c.Params("id"))
	if err != nil {
		return err
	}
	ticket, err := h.service.GetTicket(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket))
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Severity:    req.Severity,
		CustomerID:  req.CustomerID,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromTicket(ticket))
}

// UpdateTicket PATCH /api/tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	id, err := parseTicketID(c.Params("id"))
	if err != nil {
		return err
	}

	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}

	ticket, err := h.service.UpdateTicket(c.UserContext(), id, service.TicketUpdateInput{
		Status:                req.Status,
		Severity:              req.Severity,
		AssignedTo:            req.AssignedTo,
		ResolutionTimeMinutes: req.ResolutionTimeMinutes,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket))
}

// Stats GET /api/tickets/stats.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	rows, err := h.service.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.FromStats(rows))
}

// parseTicketID rejects malformed ids as caller errors, never NotFound.
func parseTicketID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewInvalidInput("ticket id must be a positive integer", map[string]any{"id": raw})
	}
	return id, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}
