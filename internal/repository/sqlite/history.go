package sqlite

import (
	"context"
	"database/sql"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

type historyRepository struct {
	db *sql.DB
}

func (r *historyRepository) Create(ctx context.Context, history *domain.TicketHistory) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO ticket_history(id, ticket_id, user_id, action, previous_state, new_state, created_at)
        VALUES(?, ?, ?, ?, ?, ?, ?)`,
		history.ID,
		history.TicketID,
		history.UserID,
		history.Action,
		nullStatus(history.PreviousState),
		nullStatus(history.NewState),
		toMillis(history.CreatedAt),
	)
	return err
}

func (r *historyRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, ticket_id, user_id, action, previous_state, new_state, created_at
        FROM ticket_history WHERE ticket_id=? ORDER BY created_at ASC, rowid ASC`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.TicketHistory{}
	for rows.Next() {
		var (
			history        domain.TicketHistory
			previous, next sql.NullString
			createdAt      int64
		)
		if err := rows.Scan(
			&history.ID,
			&history.TicketID,
			&history.UserID,
			&history.Action,
			&previous,
			&next,
			&createdAt,
		); err != nil {
			return nil, err
		}
		history.PreviousState = statusPtr(previous)
		history.NewState = statusPtr(next)
		history.CreatedAt = fromMillis(createdAt)
		result = append(result, history)
	}
	return result, rows.Err()
}

type timeLogRepository struct {
	db *sql.DB
}

func (r *timeLogRepository) Create(ctx context.Context, log *domain.TimeLog) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO ticket_time_logs(id, ticket_id, user_id, duration_minutes, description, created_at)
        VALUES(?, ?, ?, ?, ?, ?)`,
		log.ID,
		log.TicketID,
		log.UserID,
		log.DurationMinutes,
		log.Description,
		toMillis(log.CreatedAt),
	)
	return err
}

func (r *timeLogRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TimeLog, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT l.id, l.ticket_id, l.user_id, u.name, l.duration_minutes, l.description, l.created_at
        FROM ticket_time_logs l
        JOIN users u ON l.user_id = u.id
        WHERE l.ticket_id=?
        ORDER BY l.created_at DESC, l.rowid DESC`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.TimeLog{}
	for rows.Next() {
		var (
			log       domain.TimeLog
			createdAt int64
		)
		if err := rows.Scan(
			&log.ID,
			&log.TicketID,
			&log.UserID,
			&log.UserName,
			&log.DurationMinutes,
			&log.Description,
			&createdAt,
		); err != nil {
			return nil, err
		}
		log.CreatedAt = fromMillis(createdAt)
		result = append(result, log)
	}
	return result, rows.Err()
}

func (r *timeLogRepository) TotalMinutes(ctx context.Context, ticketID string) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(duration_minutes), 0) FROM ticket_time_logs WHERE ticket_id=?`, ticketID).
		Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func nullStatus(status *domain.TicketStatus) sql.NullString {
	if status == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*status), Valid: true}
}

func statusPtr(v sql.NullString) *domain.TicketStatus {
	if !v.Valid {
		return nil
	}
	status := domain.TicketStatus(v.String)
	return &status
}
