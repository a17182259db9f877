package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketFilter narrows ticket listings. When both ids are set only UserID is
// applied.
type TicketFilter struct {
	UserID  *string
	AgentID *string
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetView(ctx context.Context, id string) (*domain.TicketView, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.TicketView, error)
	// UpdateStatus writes status, updated_at, resolved_at and closed_at.
	UpdateStatus(ctx context.Context, ticket *domain.Ticket) error
	// Assign writes assigned_agent_id, status and updated_at.
	Assign(ctx context.Context, ticket *domain.Ticket) error
	CountByStatus(ctx context.Context) (map[domain.TicketStatus]int, error)
	CountByPriority(ctx context.Context) (map[domain.Priority]int, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const (
	ticketColumns = `t.id, t.title, t.description, t.user_id, t.department_id, t.category_id,
               t.impact, t.urgency, t.priority, t.status, t.assigned_agent_id,
               t.created_at, t.updated_at, t.resolved_at, t.closed_at, t.sla_deadline`
	ticketViewQuery = `SELECT ` + ticketColumns + `, u.name, a.name, c.name
        FROM tickets t
        JOIN users u ON t.user_id = u.id
        LEFT JOIN users a ON t.assigned_agent_id = a.id
        JOIN categories c ON t.category_id = c.id`
)

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, title, description, user_id, department_id, category_id, impact, urgency,
            priority, status, assigned_agent_id, created_at, updated_at, sla_deadline)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`
	_, err := r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.Title,
		ticket.Description,
		ticket.UserID,
		ticket.DepartmentID,
		ticket.CategoryID,
		string(ticket.Impact),
		string(ticket.Urgency),
		string(ticket.Priority),
		string(ticket.Status),
		ticket.AssignedAgentID,
		ticket.CreatedAt,
		ticket.UpdatedAt,
		ticket.SLADeadline,
	)
	return err
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets t WHERE t.id=$1`
	var ticket domain.Ticket
	if err := scanTicket(r.pool.QueryRow(ctx, query, id), &ticket); err != nil {
		return nil, notFound(err)
	}
	return &ticket, nil
}

func (r *ticketRepository) GetView(ctx context.Context, id string) (*domain.TicketView, error) {
	var view domain.TicketView
	if err := scanTicketView(r.pool.QueryRow(ctx, ticketViewQuery+` WHERE t.id=$1`, id), &view); err != nil {
		return nil, notFound(err)
	}
	return &view, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.TicketView, error) {
	query := ticketViewQuery
	args := []any{}
	if filter.UserID != nil {
		query += ` WHERE t.user_id=$1`
		args = append(args, *filter.UserID)
	} else if filter.AgentID != nil {
		query += ` WHERE t.assigned_agent_id=$1`
		args = append(args, *filter.AgentID)
	}
	query += ` ORDER BY t.created_at DESC, t.id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.TicketView{}
	for rows.Next() {
		var view domain.TicketView
		if err := scanTicketView(rows, &view); err != nil {
			return nil, err
		}
		result = append(result, view)
	}
	return result, rows.Err()
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET status=$1, updated_at=$2, resolved_at=$3, closed_at=$4
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		string(ticket.Status),
		ticket.UpdatedAt,
		ticket.ResolvedAt,
		ticket.ClosedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) Assign(ctx context.Context, ticket *domain.Ticket) error {
	const query = `UPDATE tickets SET assigned_agent_id=$1, status=$2, updated_at=$3 WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.AssignedAgentID,
		string(ticket.Status),
		ticket.UpdatedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) CountByStatus(ctx context.Context) (map[domain.TicketStatus]int, error) {
	counts, err := r.countBy(ctx, "status")
	if err != nil {
		return nil, err
	}
	result := make(map[domain.TicketStatus]int, len(counts))
	for k, v := range counts {
		result[domain.TicketStatus(k)] = v
	}
	return result, nil
}

func (r *ticketRepository) CountByPriority(ctx context.Context) (map[domain.Priority]int, error) {
	counts, err := r.countBy(ctx, "priority")
	if err != nil {
		return nil, err
	}
	result := make(map[domain.Priority]int, len(counts))
	for k, v := range counts {
		result[domain.Priority(k)] = v
	}
	return result, nil
}

// countBy groups on a fixed column name; never pass user input.
func (r *ticketRepository) countBy(ctx context.Context, column string) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+column+`, COUNT(*) FROM tickets GROUP BY `+column)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := map[string]int{}
	for rows.Next() {
		var (
			key   string
			count int64
		)
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		result[key] = int(count)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	var (
		impact, urgency, priority, status string
		slaDeadline                       *time.Time
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.UserID,
		&ticket.DepartmentID,
		&ticket.CategoryID,
		&impact,
		&urgency,
		&priority,
		&status,
		&ticket.AssignedAgentID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
		&slaDeadline,
	); err != nil {
		return err
	}
	fillTicketEnums(ticket, impact, urgency, priority, status, slaDeadline)
	return nil
}

func scanTicketView(row pgx.Row, view *domain.TicketView) error {
	var (
		impact, urgency, priority, status string
		slaDeadline                       *time.Time
	)
	if err := row.Scan(
		&view.ID,
		&view.Title,
		&view.Description,
		&view.UserID,
		&view.DepartmentID,
		&view.CategoryID,
		&impact,
		&urgency,
		&priority,
		&status,
		&view.AssignedAgentID,
		&view.CreatedAt,
		&view.UpdatedAt,
		&view.ResolvedAt,
		&view.ClosedAt,
		&slaDeadline,
		&view.UserName,
		&view.AgentName,
		&view.CategoryName,
	); err != nil {
		return err
	}
	fillTicketEnums(&view.Ticket, impact, urgency, priority, status, slaDeadline)
	return nil
}

func fillTicketEnums(ticket *domain.Ticket, impact, urgency, priority, status string, slaDeadline *time.Time) {
	ticket.Impact = domain.Level(impact)
	ticket.Urgency = domain.Level(urgency)
	ticket.Priority = domain.Priority(priority)
	ticket.Status = domain.TicketStatus(status)
	if slaDeadline != nil {
		ticket.SLADeadline = *slaDeadline
	}
}
