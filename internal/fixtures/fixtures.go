// Package fixtures loads reference data (departments, roles, categories and
// demo users) from YAML into any repository backend.
package fixtures

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

//go:embed seed.yaml
var defaultSeed []byte

// Set is the YAML document shape.
type Set struct {
	Departments []Department `yaml:"departments"`
	Roles       []Role       `yaml:"roles"`
	Categories  []Category   `yaml:"categories"`
	Users       []User       `yaml:"users"`
}

// Department fixture.
type Department struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Role fixture.
type Role struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Category fixture.
type Category struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	SLAHours int    `yaml:"sla_hours"`
}

// User fixture. Optional fields default to an active, available user with
// the standard ticket capacity.
type User struct {
	ID               string `yaml:"id"`
	Name             string `yaml:"name"`
	Email            string `yaml:"email"`
	Role             string `yaml:"role"`
	DepartmentID     string `yaml:"department_id"`
	MaxActiveTickets int    `yaml:"max_active_tickets,omitempty"`
	IsActive         *bool  `yaml:"is_active,omitempty"`
	IsAvailable      *bool  `yaml:"is_available,omitempty"`
}

// Default returns the embedded demo data set.
func Default() (*Set, error) {
	return Parse(defaultSeed)
}

// Load reads a set from path, or the embedded default when path is empty.
func Load(path string) (*Set, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML set.
func Parse(data []byte) (*Set, error) {
	var set Set
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return &set, nil
}

// Validate checks ids are present and references resolve within the set.
func (s *Set) Validate() error {
	departments := map[string]bool{}
	for _, d := range s.Departments {
		if d.ID == "" {
			return errors.New("department without id")
		}
		departments[d.ID] = true
	}
	for _, r := range s.Roles {
		if !domain.Role(r.ID).Valid() {
			return fmt.Errorf("unknown role %q", r.ID)
		}
	}
	for _, c := range s.Categories {
		if c.ID == "" {
			return errors.New("category without id")
		}
	}
	emails := map[string]string{}
	for _, u := range s.Users {
		if u.ID == "" || u.Email == "" {
			return fmt.Errorf("user %q needs id and email", u.Name)
		}
		if other, dup := emails[u.Email]; dup {
			return fmt.Errorf("users %s and %s share email %s", other, u.ID, u.Email)
		}
		emails[u.Email] = u.ID
		if !domain.Role(u.Role).Valid() {
			return fmt.Errorf("user %s: unknown role %q", u.ID, u.Role)
		}
		if u.DepartmentID != "" && !departments[u.DepartmentID] {
			return fmt.Errorf("user %s: unknown department %q", u.ID, u.DepartmentID)
		}
	}
	return nil
}

// Apply writes the set through repos. Unless force is set it does nothing
// when departments already exist, so restarts keep availability toggles.
// It reports whether anything was written.
func Apply(ctx context.Context, repos repository.Repositories, set *Set, force bool) (bool, error) {
	if !force {
		existing, err := repos.Departments.List(ctx)
		if err != nil {
			return false, err
		}
		if len(existing) > 0 {
			return false, nil
		}
	}

	for _, d := range set.Departments {
		if err := repos.Departments.Upsert(ctx, &domain.Department{ID: d.ID, Name: d.Name}); err != nil {
			return false, fmt.Errorf("department %s: %w", d.ID, err)
		}
	}
	for _, r := range set.Roles {
		if err := repos.Roles.Upsert(ctx, &domain.RoleRecord{ID: domain.Role(r.ID), Name: r.Name}); err != nil {
			return false, fmt.Errorf("role %s: %w", r.ID, err)
		}
	}
	for _, c := range set.Categories {
		if err := repos.Categories.Upsert(ctx, &domain.Category{ID: c.ID, Name: c.Name, SLAHours: c.SLAHours}); err != nil {
			return false, fmt.Errorf("category %s: %w", c.ID, err)
		}
	}
	for _, u := range set.Users {
		if err := repos.Users.Upsert(ctx, u.toDomain()); err != nil {
			return false, fmt.Errorf("user %s: %w", u.ID, err)
		}
	}
	return true, nil
}

func (u User) toDomain() *domain.User {
	user := &domain.User{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Role:             domain.Role(u.Role),
		DepartmentID:     u.DepartmentID,
		MaxActiveTickets: u.MaxActiveTickets,
		IsActive:         true,
		IsAvailable:      true,
	}
	if user.MaxActiveTickets <= 0 {
		user.MaxActiveTickets = domain.DefaultMaxActiveTickets
	}
	if u.IsActive != nil {
		user.IsActive = *u.IsActive
	}
	if u.IsAvailable != nil {
		user.IsAvailable = *u.IsAvailable
	}
	return user
}
