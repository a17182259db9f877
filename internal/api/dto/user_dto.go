package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// LoginRequest payload for the mock login.
type LoginRequest struct {
	Role string `json:"role"`
}

// SessionUser is the user block of a login response.
type SessionUser struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Role         domain.Role `json:"role"`
	Department   string      `json:"department"`
	DepartmentID string      `json:"departmentId"`
	IsAvailable  bool        `json:"isAvailable"`
}

// LoginResponse returns the session user and its token.
type LoginResponse struct {
	User      SessionUser `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// AvailabilityRequest toggles availability. A missing flag is rejected.
type AvailabilityRequest struct {
	IsAvailable *bool `json:"isAvailable"`
}

// AvailabilityResponse confirms the new flag.
type AvailabilityResponse struct {
	Success     bool `json:"success"`
	IsAvailable bool `json:"isAvailable"`
}

// DepartmentResponse reference data.
type DepartmentResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoryResponse reference data.
type CategoryResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SLAHours int    `json:"sla_hours"`
}

// UserResponse is a directory entry.
type UserResponse struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Email            string      `json:"email"`
	Role             domain.Role `json:"role"`
	DepartmentID     string      `json:"department_id"`
	MaxActiveTickets int         `json:"max_active_tickets"`
	IsActive         bool        `json:"is_active"`
	IsAvailable      bool        `json:"is_available"`
}

// NewUserResponse maps the domain user.
func NewUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Role:             u.Role,
		DepartmentID:     u.DepartmentID,
		MaxActiveTickets: u.MaxActiveTickets,
		IsActive:         u.IsActive,
		IsAvailable:      u.IsAvailable,
	}
}

// RoleResponse reference data.
type RoleResponse struct {
	ID   domain.Role `json:"id"`
	Name string      `json:"name"`
}
