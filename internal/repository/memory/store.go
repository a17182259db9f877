// Package memory provides a process-local implementation of the repository
// interfaces. It backs the service tests and the "memory" store driver.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// ErrForeignKey mirrors a foreign key violation in the SQL backends.
var ErrForeignKey = errors.New("foreign key constraint failed")

// Store holds all rows behind a single mutex.
type Store struct {
	mu          sync.RWMutex
	departments map[string]domain.Department
	roles       map[domain.Role]domain.RoleRecord
	categories  map[string]domain.Category
	users       map[string]domain.User
	tickets     []*domain.Ticket
	history     []domain.TicketHistory
	timeLogs    []domain.TimeLog
}

// New returns an empty store wrapped as a repository set.
func New() repository.Repositories {
	return NewStore().Repositories()
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		departments: map[string]domain.Department{},
		roles:       map[domain.Role]domain.RoleRecord{},
		categories:  map[string]domain.Category{},
		users:       map[string]domain.User{},
	}
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Departments: departmentRepository{s},
		Roles:       roleRepository{s},
		Categories:  categoryRepository{s},
		Users:       userRepository{s},
		Tickets:     ticketRepository{s},
		History:     historyRepository{s},
		TimeLogs:    timeLogRepository{s},
	}
}

func (s *Store) findTicket(id string) *domain.Ticket {
	for _, t := range s.tickets {
		if t.ID == id {
			return t
		}
	}
	return nil
}

type departmentRepository struct{ s *Store }

func (r departmentRepository) Upsert(_ context.Context, department *domain.Department) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.departments[department.ID] = *department
	return nil
}

func (r departmentRepository) GetByID(_ context.Context, id string) (*domain.Department, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.departments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (r departmentRepository) List(_ context.Context) ([]domain.Department, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make([]domain.Department, 0, len(r.s.departments))
	for _, d := range r.s.departments {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type roleRepository struct{ s *Store }

func (r roleRepository) Upsert(_ context.Context, role *domain.RoleRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.roles[role.ID] = *role
	return nil
}

func (r roleRepository) List(_ context.Context) ([]domain.RoleRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make([]domain.RoleRecord, 0, len(r.s.roles))
	for _, role := range r.s.roles {
		result = append(result, role)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type categoryRepository struct{ s *Store }

func (r categoryRepository) Upsert(_ context.Context, category *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.categories[category.ID] = *category
	return nil
}

func (r categoryRepository) GetByID(_ context.Context, id string) (*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r categoryRepository) List(_ context.Context) ([]domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make([]domain.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}
