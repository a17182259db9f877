package sqlite

import (
	"context"
	"database/sql"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type ticketRepository struct {
	db *sql.DB
}

const (
	ticketColumns = `t.id, t.title, t.description, t.user_id, t.department_id, t.category_id,
        t.impact, t.urgency, t.priority, t.status, t.assigned_agent_id,
        t.created_at, t.updated_at, t.resolved_at, t.closed_at, t.sla_deadline`
	ticketViewSelect = `SELECT ` + ticketColumns + `, u.name, a.name, c.name
        FROM tickets t
        JOIN users u ON t.user_id = u.id
        LEFT JOIN users a ON t.assigned_agent_id = a.id
        JOIN categories c ON t.category_id = c.id`
)

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO tickets(id, title, description, user_id, department_id, category_id, impact, urgency,
            priority, status, assigned_agent_id, created_at, updated_at, sla_deadline)
        VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
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
		nullString(ticket.AssignedAgentID),
		toMillis(ticket.CreatedAt),
		toMillis(ticket.UpdatedAt),
		toMillis(ticket.SLADeadline),
	)
	return err
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	var ticket domain.Ticket
	row := r.db.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets t WHERE t.id=?`, id)
	if err := scanTicket(row, &ticket); err != nil {
		return nil, notFound(err)
	}
	return &ticket, nil
}

func (r *ticketRepository) GetView(ctx context.Context, id string) (*domain.TicketView, error) {
	var view domain.TicketView
	if err := scanTicketView(r.db.QueryRowContext(ctx, ticketViewSelect+` WHERE t.id=?`, id), &view); err != nil {
		return nil, notFound(err)
	}
	return &view, nil
}

func (r *ticketRepository) List(ctx context.Context, filter repository.TicketFilter) ([]domain.TicketView, error) {
	query := ticketViewSelect
	args := []any{}
	switch {
	case filter.UserID != nil:
		query += ` WHERE t.user_id=?`
		args = append(args, *filter.UserID)
	case filter.AgentID != nil:
		query += ` WHERE t.assigned_agent_id=?`
		args = append(args, *filter.AgentID)
	}
	query += ` ORDER BY t.created_at DESC, t.rowid DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
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
	res, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET status=?, updated_at=?, resolved_at=?, closed_at=? WHERE id=?`,
		string(ticket.Status),
		toMillis(ticket.UpdatedAt),
		toNullMillis(ticket.ResolvedAt),
		toNullMillis(ticket.ClosedAt),
		ticket.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *ticketRepository) Assign(ctx context.Context, ticket *domain.Ticket) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET assigned_agent_id=?, status=?, updated_at=? WHERE id=?`,
		nullString(ticket.AssignedAgentID),
		string(ticket.Status),
		toMillis(ticket.UpdatedAt),
		ticket.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *ticketRepository) CountByStatus(ctx context.Context) (map[domain.TicketStatus]int, error) {
	counts, err := r.countBy(ctx, `SELECT status, COUNT(*) FROM tickets GROUP BY status`)
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
	counts, err := r.countBy(ctx, `SELECT priority, COUNT(*) FROM tickets GROUP BY priority`)
	if err != nil {
		return nil, err
	}
	result := make(map[domain.Priority]int, len(counts))
	for k, v := range counts {
		result[domain.Priority(k)] = v
	}
	return result, nil
}

func (r *ticketRepository) countBy(ctx context.Context, query string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := map[string]int{}
	for rows.Next() {
		var (
			key   string
			count int
		)
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		result[key] = count
	}
	return result, rows.Err()
}

type ticketRow struct {
	impact, urgency, priority, status string
	agentID                           sql.NullString
	createdAt, updatedAt              int64
	resolvedAt, closedAt, slaDeadline sql.NullInt64
}

func (tr *ticketRow) dest(ticket *domain.Ticket) []any {
	return []any{
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.UserID,
		&ticket.DepartmentID,
		&ticket.CategoryID,
		&tr.impact,
		&tr.urgency,
		&tr.priority,
		&tr.status,
		&tr.agentID,
		&tr.createdAt,
		&tr.updatedAt,
		&tr.resolvedAt,
		&tr.closedAt,
		&tr.slaDeadline,
	}
}

func (tr *ticketRow) fill(ticket *domain.Ticket) {
	ticket.Impact = domain.Level(tr.impact)
	ticket.Urgency = domain.Level(tr.urgency)
	ticket.Priority = domain.Priority(tr.priority)
	ticket.Status = domain.TicketStatus(tr.status)
	ticket.AssignedAgentID = stringPtr(tr.agentID)
	ticket.CreatedAt = fromMillis(tr.createdAt)
	ticket.UpdatedAt = fromMillis(tr.updatedAt)
	ticket.ResolvedAt = fromNullMillis(tr.resolvedAt)
	ticket.ClosedAt = fromNullMillis(tr.closedAt)
	if tr.slaDeadline.Valid {
		ticket.SLADeadline = fromMillis(tr.slaDeadline.Int64)
	}
}

func scanTicket(row rowScanner, ticket *domain.Ticket) error {
	var tr ticketRow
	if err := row.Scan(tr.dest(ticket)...); err != nil {
		return err
	}
	tr.fill(ticket)
	return nil
}

func scanTicketView(row rowScanner, view *domain.TicketView) error {
	var (
		tr        ticketRow
		agentName sql.NullString
	)
	dest := append(tr.dest(&view.Ticket), &view.UserName, &agentName, &view.CategoryName)
	if err := row.Scan(dest...); err != nil {
		return err
	}
	tr.fill(&view.Ticket)
	view.AgentName = stringPtr(agentName)
	return nil
}
