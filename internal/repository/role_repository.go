package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RoleRepository manages the roles lookup table.
type RoleRepository interface {
	Upsert(ctx context.Context, role *domain.RoleRecord) error
	List(ctx context.Context) ([]domain.RoleRecord, error)
}

type roleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository builds the repository.
func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &roleRepository{pool: pool}
}

func (r *roleRepository) Upsert(ctx context.Context, role *domain.RoleRecord) error {
	const query = `
        INSERT INTO roles (id, name) VALUES ($1,$2)
        ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name`
	_, err := r.pool.Exec(ctx, query, string(role.ID), role.Name)
	return err
}

func (r *roleRepository) List(ctx context.Context) ([]domain.RoleRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.RoleRecord{}
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		result = append(result, domain.RoleRecord{ID: domain.Role(id), Name: name})
	}
	return result, rows.Err()
}
