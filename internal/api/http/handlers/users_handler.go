package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// UsersHandler handles sessions, availability and reference data.
type UsersHandler struct {
	auth  *service.AuthService
	users *service.UserService
}

// NewUsersHandler builds handler.
func NewUsersHandler(authService *service.AuthService, userService *service.UserService) *UsersHandler {
	return &UsersHandler{auth: authService, users: userService}
}

// Login POST /api/auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	session, err := h.auth.Login(c.UserContext(), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(dto.LoginResponse{
		User: dto.SessionUser{
			ID:           session.User.ID,
			Name:         session.User.Name,
			Role:         session.Role,
			Department:   session.DepartmentName,
			DepartmentID: session.User.DepartmentID,
			IsAvailable:  session.User.IsAvailable,
		},
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}

// SetAvailability PATCH /api/users/:id/availability.
func (h *UsersHandler) SetAvailability(c *fiber.Ctx) error {
	var req dto.AvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.IsAvailable == nil {
		return apperrors.NewValidationError("isAvailable is required", map[string]any{"field": "isAvailable"})
	}
	user, err := h.users.SetAvailability(c.UserContext(), c.Params("id"), *req.IsAvailable)
	if err != nil {
		return apperrors.AsBadRequest(err)
	}
	return c.JSON(dto.AvailabilityResponse{Success: true, IsAvailable: user.IsAvailable})
}

// ListDepartments GET /api/departments.
func (h *UsersHandler) ListDepartments(c *fiber.Ctx) error {
	departments, err := h.users.ListDepartments(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.DepartmentResponse, 0, len(departments))
	for _, d := range departments {
		items = append(items, dto.DepartmentResponse{ID: d.ID, Name: d.Name})
	}
	return c.JSON(items)
}

// ListCategories GET /api/categories.
func (h *UsersHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.users.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.CategoryResponse, 0, len(categories))
	for _, cat := range categories {
		items = append(items, dto.CategoryResponse{ID: cat.ID, Name: cat.Name, SLAHours: cat.SLAHours})
	}
	return c.JSON(items)
}

// ListUsers GET /api/users?role=&departmentId=&active=.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	filter := service.UserListFilter{
		Role:         c.Query("role"),
		DepartmentID: c.Query("departmentId"),
	}
	if v := c.Query("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return apperrors.NewValidationError("active must be a boolean", map[string]any{"active": v})
		}
		filter.Active = &active
	}
	users, err := h.users.ListUsers(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, dto.NewUserResponse(u))
	}
	return c.JSON(items)
}

// ListRoles GET /api/roles.
func (h *UsersHandler) ListRoles(c *fiber.Ctx) error {
	roles, err := h.users.ListRoles(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.RoleResponse, 0, len(roles))
	for _, r := range roles {
		items = append(items, dto.RoleResponse{ID: r.ID, Name: r.Name})
	}
	return c.JSON(items)
}
