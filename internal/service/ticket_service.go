package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/majewskibartosz/railway-support-lab/internal/domain"
	"github.com/majewskibartosz/railway-support-lab/internal/events"
	"github.com/majewskibartosz/railway-support-lab/internal/repository"
	apperrors "github.com/majewskibartosz/railway-support-lab/pkg/util"
)

const (
	defaultListLimit  = 50
	defaultListOffset = 0
)

// TicketService validates requests and coordinates ticket persistence. All
// validation happens before any statement is issued.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(tickets repository.TicketRepository, dispatcher events.Dispatcher, logger *zap.Logger) *TicketService {
	return &TicketService{tickets: tickets, dispatcher: dispatcher, logger: logger}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description *string
	Severity    string
	CustomerID  *int64
	AssignedTo  *string
}

// TicketUpdateInput describes a sparse partial update; nil fields are ignored.
type TicketUpdateInput struct {
	Status                *string
	Severity              *string
	AssignedTo            *string
	ResolutionTimeMinutes *int32
}

// TicketListInput describes listing filters. Empty strings mean the filter is
// absent; filters combine with AND semantics only.
type TicketListInput struct {
	Status     string
	Severity   string
	CustomerID *int64
	AssignedTo string
	Limit      int
	Offset     int
}

// CreateTicket validates and persists a new ticket.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewInvalidInput("title is required", nil)
	}

	severity := domain.SeverityLow
	if input.Severity != "" {
		severity = domain.Severity(input.Severity)
		if !severity.Valid() {
			return nil, apperrors.NewInvalidInput("invalid severity", map[string]any{
				"severity": input.Severity,
				"allowed":  domain.Severities(),
			})
		}
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: input.Description,
		Severity:    severity,
		Status:      domain.StatusOpen,
		CustomerID:  input.CustomerID,
		AssignedTo:  input.AssignedTo,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, s.storeFailure("create ticket", err)
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketCreated,
		TicketID:  ticket.ID,
		Timestamp: time.Now(),
		Payload: events.TicketCreatedPayload{
			Title:    ticket.Title,
			Severity: ticket.Severity,
			Status:   ticket.Status,
		},
	})

	return ticket, nil
}

// GetTicket fetches a single ticket by id.
func (s *TicketService) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, s.storeFailure("get ticket", err)
	}
	return ticket, nil
}

// ListTickets returns tickets matching the supplied filters, newest first.
func (s *TicketService) ListTickets(ctx context.Context, input TicketListInput) ([]domain.Ticket, error) {
	filter := repository.TicketFilter{
		CustomerID: input.CustomerID,
		Limit:      input.Limit,
		Offset:     input.Offset,
	}
	if input.Status != "" {
		status := domain.Status(input.Status)
		filter.Status = &status
	}
	if input.Severity != "" {
		severity := domain.Severity(input.Severity)
		filter.Severity = &severity
	}
	if input.AssignedTo != "" {
		assignedTo := input.AssignedTo
		filter.AssignedTo = &assignedTo
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = defaultListOffset
	}

	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, s.storeFailure("list tickets", err)
	}
	return tickets, nil
}

// UpdateTicket applies a partial update. At least one recognized field must be
// supplied; status is enum-checked. Severity is deliberately accepted as-is on
// update while create validates it strictly.
func (s *TicketService) UpdateTicket(ctx context.Context, id int64, input TicketUpdateInput) (*domain.Ticket, error) {
	patch := domain.TicketPatch{
		AssignedTo:            input.AssignedTo,
		ResolutionTimeMinutes: input.ResolutionTimeMinutes,
	}
	if input.Status != nil {
		status := domain.Status(*input.Status)
		if !status.Valid() {
			return nil, apperrors.NewInvalidInput("invalid status", map[string]any{
				"status":  *input.Status,
				"allowed": domain.Statuses(),
			})
		}
		patch.Status = &status
	}
	if input.Severity != nil {
		severity := domain.Severity(*input.Severity)
		patch.Severity = &severity
	}
	if input.ResolutionTimeMinutes != nil && *input.ResolutionTimeMinutes < 0 {
		return nil, apperrors.NewInvalidInput("resolution_time_minutes must be non-negative", map[string]any{
			"resolution_time_minutes": *input.ResolutionTimeMinutes,
		})
	}

	if patch.Empty() {
		return nil, apperrors.NewInvalidInput("at least one field is required", nil)
	}

	ticket, err := s.tickets.ApplyPatch(ctx, id, patch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, s.storeFailure("update ticket", err)
	}

	if patch.Status != nil {
		s.publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventTicketStatusChanged,
			TicketID:  ticket.ID,
			Timestamp: time.Now(),
			Payload:   events.TicketStatusChangedPayload{NewStatus: ticket.Status},
		})
	}

	return ticket, nil
}

// Stats returns grouped aggregate statistics by (status, severity).
func (s *TicketService) Stats(ctx context.Context) ([]repository.StatsRow, error) {
	stats, err := s.tickets.GroupedStats(ctx)
	if err != nil {
		return nil, s.storeFailure("ticket stats", err)
	}
	return stats, nil
}

// Summary returns whole-set ticket metrics.
func (s *TicketService) Summary(ctx context.Context) (*repository.MetricsSummary, error) {
	summary, err := s.tickets.Summary(ctx)
	if err != nil {
		return nil, s.storeFailure("ticket summary", err)
	}
	return summary, nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// storeFailure logs the failing statement identity with the raw error; the
// caller-facing error carries only a generic message outside development mode.
func (s *TicketService) storeFailure(op string, err error) error {
	s.logger.Error("store failure", zap.String("op", op), zap.Error(err))
	return apperrors.NewStoreFailure(err)
}
