package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketHistoryRepository stores audit entries. Entries are append-only.
type TicketHistoryRepository interface {
	Create(ctx context.Context, history *domain.TicketHistory) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error)
}

type ticketHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewTicketHistoryRepository builds repository.
func NewTicketHistoryRepository(pool *pgxpool.Pool) TicketHistoryRepository {
	return &ticketHistoryRepository{pool: pool}
}

func (r *ticketHistoryRepository) Create(ctx context.Context, history *domain.TicketHistory) error {
	const query = `
        INSERT INTO ticket_history (id, ticket_id, user_id, action, previous_state, new_state, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.pool.Exec(ctx, query,
		history.ID,
		history.TicketID,
		history.UserID,
		history.Action,
		statusPtrToString(history.PreviousState),
		statusPtrToString(history.NewState),
		history.CreatedAt,
	)
	return err
}

func (r *ticketHistoryRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	const query = `
        SELECT id, ticket_id, user_id, action, previous_state, new_state, created_at
        FROM ticket_history WHERE ticket_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.TicketHistory{}
	for rows.Next() {
		var (
			history        domain.TicketHistory
			previous, next *string
		)
		if err := rows.Scan(
			&history.ID,
			&history.TicketID,
			&history.UserID,
			&history.Action,
			&previous,
			&next,
			&history.CreatedAt,
		); err != nil {
			return nil, err
		}
		history.PreviousState = stringToStatusPtr(previous)
		history.NewState = stringToStatusPtr(next)
		result = append(result, history)
	}
	return result, rows.Err()
}

func statusPtrToString(status *domain.TicketStatus) *string {
	if status == nil {
		return nil
	}
	s := string(*status)
	return &s
}

func stringToStatusPtr(s *string) *domain.TicketStatus {
	if s == nil {
		return nil
	}
	status := domain.TicketStatus(*s)
	return &status
}
