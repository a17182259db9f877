package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TimeLogRepository stores effort records per ticket.
type TimeLogRepository interface {
	Create(ctx context.Context, log *domain.TimeLog) error
	// ListByTicket returns logs newest first, joined with the author's name.
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TimeLog, error)
	// TotalMinutes sums all durations for the ticket, 0 when there are none.
	TotalMinutes(ctx context.Context, ticketID string) (int, error)
}

type timeLogRepository struct {
	pool *pgxpool.Pool
}

// NewTimeLogRepository builds repository.
func NewTimeLogRepository(pool *pgxpool.Pool) TimeLogRepository {
	return &timeLogRepository{pool: pool}
}

func (r *timeLogRepository) Create(ctx context.Context, log *domain.TimeLog) error {
	const query = `
        INSERT INTO ticket_time_logs (id, ticket_id, user_id, duration_minutes, description, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.pool.Exec(ctx, query,
		log.ID,
		log.TicketID,
		log.UserID,
		log.DurationMinutes,
		log.Description,
		log.CreatedAt,
	)
	return err
}

func (r *timeLogRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TimeLog, error) {
	const query = `
        SELECT l.id, l.ticket_id, l.user_id, u.name, l.duration_minutes, l.description, l.created_at
        FROM ticket_time_logs l
        JOIN users u ON l.user_id = u.id
        WHERE l.ticket_id=$1
        ORDER BY l.created_at DESC, l.id DESC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.TimeLog{}
	for rows.Next() {
		var log domain.TimeLog
		if err := rows.Scan(
			&log.ID,
			&log.TicketID,
			&log.UserID,
			&log.UserName,
			&log.DurationMinutes,
			&log.Description,
			&log.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, log)
	}
	return result, rows.Err()
}

func (r *timeLogRepository) TotalMinutes(ctx context.Context, ticketID string) (int, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(duration_minutes), 0) FROM ticket_time_logs WHERE ticket_id=$1`,
		ticketID,
	).Scan(&total)
	if err != nil {
		return 0, err
	}
	return int(total), nil
}
