package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// UserFilter defines query params for user listing.
type UserFilter struct {
	Role         *domain.Role
	DepartmentID *string
	Active       *bool
}

// UserRepository defines persistence access for department members.
type UserRepository interface {
	Upsert(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	SetAvailability(ctx context.Context, id string, available bool) error
	// ListAssignableAgents returns active, available agents with their count
	// of open tickets, least loaded first and ties ordered by id.
	ListAssignableAgents(ctx context.Context) ([]domain.AgentLoad, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const (
	userColumns       = `id, name, email, role_id, department_id, max_active_tickets, is_active, is_available`
	userSelectColumns = `id, name, email, COALESCE(role_id, ''), COALESCE(department_id, ''), max_active_tickets, is_active, is_available`
)

func (r *userRepository) Upsert(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (` + userColumns + `)
        VALUES ($1,$2,$3,NULLIF($4,''),NULLIF($5,''),$6,$7,$8)
        ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, email=EXCLUDED.email, role_id=EXCLUDED.role_id,
            department_id=EXCLUDED.department_id, max_active_tickets=EXCLUDED.max_active_tickets,
            is_active=EXCLUDED.is_active, is_available=EXCLUDED.is_available`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		string(user.Role),
		user.DepartmentID,
		user.MaxActiveTickets,
		user.IsActive,
		user.IsAvailable,
	)
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userSelectColumns + ` FROM users WHERE id=$1`
	var (
		user domain.User
		role string
	)
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&role,
		&user.DepartmentID,
		&user.MaxActiveTickets,
		&user.IsActive,
		&user.IsAvailable,
	); err != nil {
		return nil, notFound(err)
	}
	user.Role = domain.Role(role)
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	query := `SELECT ` + userSelectColumns + ` FROM users`
	args := []any{}
	clauses := []string{}

	if filter.Role != nil {
		args = append(args, string(*filter.Role))
		clauses = append(clauses, fmt.Sprintf("role_id=$%d", len(args)))
	}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("is_active=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.User{}
	for rows.Next() {
		var (
			user domain.User
			role string
		)
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&role,
			&user.DepartmentID,
			&user.MaxActiveTickets,
			&user.IsActive,
			&user.IsAvailable,
		); err != nil {
			return nil, err
		}
		user.Role = domain.Role(role)
		result = append(result, user)
	}
	return result, rows.Err()
}

func (r *userRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE users SET is_available=$1 WHERE id=$2`, available, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) ListAssignableAgents(ctx context.Context) ([]domain.AgentLoad, error) {
	const query = `
        SELECT u.id, u.name, u.max_active_tickets, COUNT(t.id) AS open_count
        FROM users u
        LEFT JOIN tickets t ON t.assigned_agent_id = u.id AND t.status NOT IN ($2, $3)
        WHERE u.role_id = $1 AND u.is_active AND u.is_available
        GROUP BY u.id, u.name, u.max_active_tickets
        ORDER BY open_count ASC, u.id ASC`
	rows, err := r.pool.Query(ctx, query,
		string(domain.RoleAgent),
		string(domain.TicketStatusResolved),
		string(domain.TicketStatusClosed),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.AgentLoad{}
	for rows.Next() {
		var (
			load  domain.AgentLoad
			count int64
		)
		if err := rows.Scan(&load.UserID, &load.Name, &load.MaxActiveTickets, &count); err != nil {
			return nil, err
		}
		load.OpenTickets = int(count)
		result = append(result, load)
	}
	return result, rows.Err()
}
