package memory

import (
	"context"
	"sort"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type userRepository struct{ s *Store }

func (r userRepository) Upsert(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r userRepository) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := []domain.User{}
	for _, u := range r.s.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.DepartmentID != nil && u.DepartmentID != *filter.DepartmentID {
			continue
		}
		if filter.Active != nil && u.IsActive != *filter.Active {
			continue
		}
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r userRepository) SetAvailability(_ context.Context, id string, available bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsAvailable = available
	r.s.users[id] = u
	return nil
}

func (r userRepository) ListAssignableAgents(_ context.Context) ([]domain.AgentLoad, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	open := map[string]int{}
	for _, t := range r.s.tickets {
		if t.AssignedAgentID != nil && t.Status.Open() {
			open[*t.AssignedAgentID]++
		}
	}
	result := []domain.AgentLoad{}
	for _, u := range r.s.users {
		if u.Role != domain.RoleAgent || !u.IsActive || !u.IsAvailable {
			continue
		}
		result = append(result, domain.AgentLoad{
			UserID:           u.ID,
			Name:             u.Name,
			MaxActiveTickets: u.MaxActiveTickets,
			OpenTickets:      open[u.ID],
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].OpenTickets != result[j].OpenTickets {
			return result[i].OpenTickets < result[j].OpenTickets
		}
		return result[i].UserID < result[j].UserID
	})
	return result, nil
}
