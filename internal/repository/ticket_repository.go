package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/majewskibartosz/railway-support-lab/internal/domain"
)

const ticketColumns = `id, title, description, severity, status, customer_id, assigned_to,
               resolution_time_minutes, created_at, updated_at`

// TicketFilter captures listing parameters. Nil fields impose no constraint;
// present fields are compared for exact equality and combined with AND.
type TicketFilter struct {
	Status     *domain.Status
	Severity   *domain.Severity
	CustomerID *int64
	AssignedTo *string
	Limit      int
	Offset     int
}

// StatsRow is one (status, severity) group of the aggregate statistics.
type StatsRow struct {
	Status               domain.Status
	Severity             domain.Severity
	Count                int64
	AvgResolutionMinutes *float64
}

// MetricsSummary aggregates counts over the whole ticket set.
type MetricsSummary struct {
	Total                int64
	Open                 int64
	Resolved             int64
	AvgResolutionMinutes *float64
	LastCreatedAt        *time.Time
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	ApplyPatch(ctx context.Context, id int64, patch domain.TicketPatch) (*domain.Ticket, error)
	GroupedStats(ctx context.Context) ([]StatsRow, error)
	Summary(ctx context.Context) (*MetricsSummary, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, severity, status, customer_id, assigned_to)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Severity,
		ticket.Status,
		ticket.CustomerID,
		ticket.AssignedTo,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	var ticket domain.Ticket
	if err := scanTicket(r.pool.QueryRow(ctx, query, id), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	query, args := buildListQuery(filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// buildListQuery composes the conjunctive filter over exactly the supplied
// keys. Every filter and pagination value is parameter bound.
func buildListQuery(filter TicketFilter) (string, []any) {
	base := fmt.Sprintf(`SELECT %s FROM tickets`, ticketColumns)
	clauses := []string{}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Severity != nil {
		args = append(args, *filter.Severity)
		clauses = append(clauses, fmt.Sprintf("severity=$%d", len(args)))
	}
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("customer_id=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}

	query := base
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	args = append(args, filter.Limit)
	limitPos := len(args)
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", limitPos, limitPos+1)

	return query, args
}

func (r *ticketRepository) ApplyPatch(ctx context.Context, id int64, patch domain.TicketPatch) (*domain.Ticket, error) {
	query, args := buildPatchQuery(id, patch)
	var ticket domain.Ticket
	if err := scanTicket(r.pool.QueryRow(ctx, query, args...), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// buildPatchQuery turns the sparse patch into SET fragments; only supplied
// fields become assignments, and updated_at is always refreshed. The update
// is a single statement, atomic per call.
func buildPatchQuery(id int64, patch domain.TicketPatch) (string, []any) {
	sets := []string{}
	args := []any{}

	if patch.Status != nil {
		args = append(args, *patch.Status)
		sets = append(sets, fmt.Sprintf("status=$%d", len(args)))
	}
	if patch.Severity != nil {
		args = append(args, *patch.Severity)
		sets = append(sets, fmt.Sprintf("severity=$%d", len(args)))
	}
	if patch.AssignedTo != nil {
		args = append(args, *patch.AssignedTo)
		sets = append(sets, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if patch.ResolutionTimeMinutes != nil {
		args = append(args, *patch.ResolutionTimeMinutes)
		sets = append(sets, fmt.Sprintf("resolution_time_minutes=$%d", len(args)))
	}
	sets = append(sets, "updated_at=NOW()")

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), ticketColumns)
	return query, args
}

func (r *ticketRepository) GroupedStats(ctx context.Context) ([]StatsRow, error) {
	const query = `
        SELECT status, severity, COUNT(*), AVG(resolution_time_minutes)
        FROM tickets
        GROUP BY status, severity
        ORDER BY status ASC, severity ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StatsRow
	for rows.Next() {
		var row StatsRow
		if err := rows.Scan(&row.Status, &row.Severity, &row.Count, &row.AvgResolutionMinutes); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *ticketRepository) Summary(ctx context.Context) (*MetricsSummary, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status='open'),
               COUNT(*) FILTER (WHERE status='resolved'),
               AVG(resolution_time_minutes),
               MAX(created_at)
        FROM tickets`
	var summary MetricsSummary
	if err := r.pool.QueryRow(ctx, query).Scan(
		&summary.Total,
		&summary.Open,
		&summary.Resolved,
		&summary.AvgResolutionMinutes,
		&summary.LastCreatedAt,
	); err != nil {
		return nil, err
	}
	return &summary, nil
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Severity,
		&ticket.Status,
		&ticket.CustomerID,
		&ticket.AssignedTo,
		&ticket.ResolutionTimeMinutes,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Severity,
			&ticket.Status,
			&ticket.CustomerID,
			&ticket.AssignedTo,
			&ticket.ResolutionTimeMinutes,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
