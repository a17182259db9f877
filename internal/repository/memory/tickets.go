package memory

import (
	"context"
	"sort"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type ticketRepository struct{ s *Store }

func (r ticketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[ticket.UserID]; !ok {
		return ErrForeignKey
	}
	if _, ok := r.s.categories[ticket.CategoryID]; !ok {
		return ErrForeignKey
	}
	if ticket.AssignedAgentID != nil {
		if _, ok := r.s.users[*ticket.AssignedAgentID]; !ok {
			return ErrForeignKey
		}
	}
	copied := cloneTicket(*ticket)
	r.s.tickets = append(r.s.tickets, &copied)
	return nil
}

func (r ticketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t := r.s.findTicket(id)
	if t == nil {
		return nil, repository.ErrNotFound
	}
	copied := cloneTicket(*t)
	return &copied, nil
}

func (r ticketRepository) GetView(_ context.Context, id string) (*domain.TicketView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t := r.s.findTicket(id)
	if t == nil {
		return nil, repository.ErrNotFound
	}
	view := r.s.view(t)
	return &view, nil
}

func (r ticketRepository) List(_ context.Context, filter repository.TicketFilter) ([]domain.TicketView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := []domain.TicketView{}
	// Newest first; equal timestamps keep reverse insertion order.
	for i := len(r.s.tickets) - 1; i >= 0; i-- {
		t := r.s.tickets[i]
		switch {
		case filter.UserID != nil:
			if t.UserID != *filter.UserID {
				continue
			}
		case filter.AgentID != nil:
			if t.AssignedAgentID == nil || *t.AssignedAgentID != *filter.AgentID {
				continue
			}
		}
		result = append(result, r.s.view(t))
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r ticketRepository) UpdateStatus(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t := r.s.findTicket(ticket.ID)
	if t == nil {
		return repository.ErrNotFound
	}
	t.Status = ticket.Status
	t.UpdatedAt = ticket.UpdatedAt
	t.ResolvedAt = cloneTime(ticket.ResolvedAt)
	t.ClosedAt = cloneTime(ticket.ClosedAt)
	return nil
}

func (r ticketRepository) Assign(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t := r.s.findTicket(ticket.ID)
	if t == nil {
		return repository.ErrNotFound
	}
	if ticket.AssignedAgentID != nil {
		if _, ok := r.s.users[*ticket.AssignedAgentID]; !ok {
			return ErrForeignKey
		}
	}
	t.AssignedAgentID = cloneString(ticket.AssignedAgentID)
	t.Status = ticket.Status
	t.UpdatedAt = ticket.UpdatedAt
	return nil
}

func (r ticketRepository) CountByStatus(_ context.Context) (map[domain.TicketStatus]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := map[domain.TicketStatus]int{}
	for _, t := range r.s.tickets {
		result[t.Status]++
	}
	return result, nil
}

func (r ticketRepository) CountByPriority(_ context.Context) (map[domain.Priority]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := map[domain.Priority]int{}
	for _, t := range r.s.tickets {
		result[t.Priority]++
	}
	return result, nil
}

// view must be called with the lock held.
func (s *Store) view(t *domain.Ticket) domain.TicketView {
	view := domain.TicketView{
		Ticket:       cloneTicket(*t),
		UserName:     s.users[t.UserID].Name,
		CategoryName: s.categories[t.CategoryID].Name,
	}
	if t.AssignedAgentID != nil {
		if agent, ok := s.users[*t.AssignedAgentID]; ok {
			name := agent.Name
			view.AgentName = &name
		}
	}
	return view
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	t.AssignedAgentID = cloneString(t.AssignedAgentID)
	t.ResolvedAt = cloneTime(t.ResolvedAt)
	t.ClosedAt = cloneTime(t.ClosedAt)
	return t
}
