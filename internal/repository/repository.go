package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned by every backend when a requested row does not exist.
var ErrNotFound = errors.New("record not found")

// Repositories bundles the storage interfaces the services depend on.
type Repositories struct {
	Departments DepartmentRepository
	Roles       RoleRepository
	Categories  CategoryRepository
	Users       UserRepository
	Tickets     TicketRepository
	History     TicketHistoryRepository
	TimeLogs    TimeLogRepository
}

// NewPostgres returns the Postgres-backed repository set.
func NewPostgres(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Departments: NewDepartmentRepository(pool),
		Roles:       NewRoleRepository(pool),
		Categories:  NewCategoryRepository(pool),
		Users:       NewUserRepository(pool),
		Tickets:     NewTicketRepository(pool),
		History:     NewTicketHistoryRepository(pool),
		TimeLogs:    NewTimeLogRepository(pool),
	}
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
