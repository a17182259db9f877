package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

const userSelect = `SELECT id, name, email, COALESCE(role_id, ''), COALESCE(department_id, ''),
    max_active_tickets, is_active, is_available FROM users`

func (r *userRepository) Upsert(ctx context.Context, user *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO users(id, name, email, role_id, department_id, max_active_tickets, is_active, is_available)
        VALUES(?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET name=excluded.name, email=excluded.email, role_id=excluded.role_id,
            department_id=excluded.department_id, max_active_tickets=excluded.max_active_tickets,
            is_active=excluded.is_active, is_available=excluded.is_available`,
		user.ID,
		user.Name,
		user.Email,
		string(user.Role),
		user.DepartmentID,
		user.MaxActiveTickets,
		boolToInt(user.IsActive),
		boolToInt(user.IsAvailable),
	)
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, userSelect+` WHERE id=?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	query := userSelect
	args := []any{}
	clauses := []string{}
	if filter.Role != nil {
		clauses = append(clauses, "role_id=?")
		args = append(args, string(*filter.Role))
	}
	if filter.DepartmentID != nil {
		clauses = append(clauses, "department_id=?")
		args = append(args, *filter.DepartmentID)
	}
	if filter.Active != nil {
		clauses = append(clauses, "is_active=?")
		args = append(args, boolToInt(*filter.Active))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

func (r *userRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET is_available=? WHERE id=?`, boolToInt(available), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *userRepository) ListAssignableAgents(ctx context.Context) ([]domain.AgentLoad, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT u.id, u.name, u.max_active_tickets, COUNT(t.id) AS open_count
        FROM users u
        LEFT JOIN tickets t ON t.assigned_agent_id = u.id AND t.status NOT IN (?, ?)
        WHERE u.role_id = ? AND u.is_active = 1 AND u.is_available = 1
        GROUP BY u.id, u.name, u.max_active_tickets
        ORDER BY open_count ASC, u.id ASC`,
		string(domain.TicketStatusResolved),
		string(domain.TicketStatusClosed),
		string(domain.RoleAgent),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.AgentLoad{}
	for rows.Next() {
		var load domain.AgentLoad
		if err := rows.Scan(&load.UserID, &load.Name, &load.MaxActiveTickets, &load.OpenTickets); err != nil {
			return nil, err
		}
		result = append(result, load)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user              domain.User
		role              string
		active, available int
	)
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&role,
		&user.DepartmentID,
		&user.MaxActiveTickets,
		&active,
		&available,
	); err != nil {
		return nil, err
	}
	user.Role = domain.Role(role)
	user.IsActive = active != 0
	user.IsAvailable = available != 0
	return &user, nil
}
