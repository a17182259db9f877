package memory

import (
	"context"
	"sort"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

type historyRepository struct{ s *Store }

func (r historyRepository) Create(_ context.Context, history *domain.TicketHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.findTicket(history.TicketID) == nil {
		return ErrForeignKey
	}
	entry := *history
	entry.PreviousState = cloneStatus(history.PreviousState)
	entry.NewState = cloneStatus(history.NewState)
	r.s.history = append(r.s.history, entry)
	return nil
}

func (r historyRepository) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketHistory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := []domain.TicketHistory{}
	for _, h := range r.s.history {
		if h.TicketID == ticketID {
			h.PreviousState = cloneStatus(h.PreviousState)
			h.NewState = cloneStatus(h.NewState)
			result = append(result, h)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

type timeLogRepository struct{ s *Store }

func (r timeLogRepository) Create(_ context.Context, log *domain.TimeLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.findTicket(log.TicketID) == nil {
		return ErrForeignKey
	}
	if _, ok := r.s.users[log.UserID]; !ok {
		return ErrForeignKey
	}
	r.s.timeLogs = append(r.s.timeLogs, *log)
	return nil
}

func (r timeLogRepository) ListByTicket(_ context.Context, ticketID string) ([]domain.TimeLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := []domain.TimeLog{}
	for i := len(r.s.timeLogs) - 1; i >= 0; i-- {
		l := r.s.timeLogs[i]
		if l.TicketID != ticketID {
			continue
		}
		l.UserName = r.s.users[l.UserID].Name
		result = append(result, l)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r timeLogRepository) TotalMinutes(_ context.Context, ticketID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	total := 0
	for _, l := range r.s.timeLogs {
		if l.TicketID == ticketID {
			total += l.DurationMinutes
		}
	}
	return total, nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneStatus(s *domain.TicketStatus) *domain.TicketStatus {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
