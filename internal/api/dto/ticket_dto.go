package dto

import (
	"time"

	"github.com/majewskibartosz/railway-support-lab/internal/domain"
	"github.com/majewskibartosz/railway-support-lab/internal/repository"
)

// CreateTicketRequest is the POST /api/tickets payload.
type CreateTicketRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Severity    string  `json:"severity,omitempty"`
	CustomerID  *int64  `json:"customer_id,omitempty"`
	AssignedTo  *string `json:"assigned_to,omitempty"`
}

// UpdateTicketRequest is the PATCH /api/tickets/:id payload.
type UpdateTicketRequest struct {
	Status                *string `json:"status,omitempty"`
	Severity              *string `json:"severity,omitempty"`
	AssignedTo            *string `json:"assigned_to,omitempty"`
	ResolutionTimeMinutes *int32  `json:"resolution_time_minutes,omitempty"`
}

// TicketResponse is the external ticket representation.
type TicketResponse struct {
	ID                    int64     `json:"id"`
	Title                 string    `json:"title"`
	Description           *string   `json:"description"`
	Severity              string    `json:"severity"`
	Status                string    `json:"status"`
	CustomerID            *int64    `json:"customer_id"`
	AssignedTo            *string   `json:"assigned_to"`
	ResolutionTimeMinutes *int32    `json:"resolution_time_minutes"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// ListTicketsResponse wraps a listing result.
type ListTicketsResponse struct {
	Count   int              `json:"count"`
	Tickets []TicketResponse `json:"tickets"`
}

// StatsRowResponse is one grouped statistics row.
type StatsRowResponse struct {
	Status               string   `json:"status"`
	Severity             string   `json:"severity"`
	Count                int64    `json:"count"`
	AvgResolutionMinutes *float64 `json:"avg_resolution_minutes"`
}

// StatsResponse wraps the grouped statistics.
type StatsResponse struct {
	Statistics []StatsRowResponse `json:"statistics"`
}

// LoginRequest is the POST /auth/login payload.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse carries the issued admin token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FromTicket maps a domain ticket to its response shape.
func FromTicket(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:                    ticket.ID,
		Title:                 ticket.Title,
		Description:           ticket.Description,
		Severity:              string(ticket.Severity),
		Status:                string(ticket.Status),
		CustomerID:            ticket.CustomerID,
		AssignedTo:            ticket.AssignedTo,
		ResolutionTimeMinutes: ticket.ResolutionTimeMinutes,
		CreatedAt:             ticket.CreatedAt,
		UpdatedAt:             ticket.UpdatedAt,
	}
}

// FromStats maps grouped statistics rows.
func FromStats(rows []repository.StatsRow) StatsResponse {
	items := make([]StatsRowResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, StatsRowResponse{
			Status:               string(row.Status),
			Severity:             string(row.Severity),
			Count:                row.Count,
			AvgResolutionMinutes: row.AvgResolutionMinutes,
		})
	}
	return StatsResponse{Statistics: items}
}
