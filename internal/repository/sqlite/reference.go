package sqlite

import (
	"context"
	"database/sql"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

type departmentRepository struct {
	db *sql.DB
}

func (r *departmentRepository) Upsert(ctx context.Context, department *domain.Department) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO departments(id, name) VALUES(?, ?)
         ON CONFLICT(id) DO UPDATE SET name=excluded.name`,
		department.ID, department.Name)
	return err
}

func (r *departmentRepository) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	var department domain.Department
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM departments WHERE id=?`, id).
		Scan(&department.ID, &department.Name)
	if err != nil {
		return nil, notFound(err)
	}
	return &department, nil
}

func (r *departmentRepository) List(ctx context.Context) ([]domain.Department, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM departments ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Department{}
	for rows.Next() {
		var department domain.Department
		if err := rows.Scan(&department.ID, &department.Name); err != nil {
			return nil, err
		}
		result = append(result, department)
	}
	return result, rows.Err()
}

type roleRepository struct {
	db *sql.DB
}

func (r *roleRepository) Upsert(ctx context.Context, role *domain.RoleRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO roles(id, name) VALUES(?, ?)
         ON CONFLICT(id) DO UPDATE SET name=excluded.name`,
		string(role.ID), role.Name)
	return err
}

func (r *roleRepository) List(ctx context.Context) ([]domain.RoleRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM roles ORDER BY id`)
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

type categoryRepository struct {
	db *sql.DB
}

func (r *categoryRepository) Upsert(ctx context.Context, category *domain.Category) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories(id, name, sla_hours) VALUES(?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET name=excluded.name, sla_hours=excluded.sla_hours`,
		category.ID, category.Name, category.SLAHours)
	return err
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	var category domain.Category
	err := r.db.QueryRowContext(ctx, `SELECT id, name, sla_hours FROM categories WHERE id=?`, id).
		Scan(&category.ID, &category.Name, &category.SLAHours)
	if err != nil {
		return nil, notFound(err)
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, sla_hours FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Category{}
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.SLAHours); err != nil {
			return nil, err
		}
		result = append(result, category)
	}
	return result, rows.Err()
}
