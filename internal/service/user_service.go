package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// UserService manages department members and reference data.
type UserService struct {
	users       repository.UserRepository
	departments repository.DepartmentRepository
	categories  repository.CategoryRepository
	roles       repository.RoleRepository
	logger      *zap.Logger
}

// UserDependencies encapsulates repositories required for user management.
type UserDependencies struct {
	UserRepo       repository.UserRepository
	DepartmentRepo repository.DepartmentRepository
	CategoryRepo   repository.CategoryRepository
	RoleRepo       repository.RoleRepository
	Logger         *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:       deps.UserRepo,
		departments: deps.DepartmentRepo,
		categories:  deps.CategoryRepo,
		roles:       deps.RoleRepo,
		logger:      logger.With(zap.String("service", "users")),
	}
}

// SetAvailability toggles whether the user takes auto-assigned tickets.
func (s *UserService) SetAvailability(ctx context.Context, userID string, available bool) (*domain.User, error) {
	if err := s.users.SetAvailability(ctx, userID, available); err != nil {
		return nil, lookupError(err, "user", map[string]any{"user_id": userID})
	}
	s.logger.Info("availability changed", zap.String("user_id", userID), zap.Bool("available", available))
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "user", map[string]any{"user_id": userID})
	}
	return user, nil
}

// ListDepartments returns all departments ordered by id.
func (s *UserService) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	departments, err := s.departments.List(ctx)
	return departments, storeError(err)
}

// ListCategories returns all categories with their SLA hours.
func (s *UserService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categories.List(ctx)
	return categories, storeError(err)
}

// UserListFilter narrows the directory listing. Empty fields match everything.
type UserListFilter struct {
	Role         string
	DepartmentID string
	Active       *bool
}

// ListUsers returns directory entries ordered by id. An unknown role is a
// validation error rather than an empty result.
func (s *UserService) ListUsers(ctx context.Context, filter UserListFilter) ([]domain.User, error) {
	query := repository.UserFilter{Active: filter.Active}
	if filter.Role != "" {
		role := domain.Role(filter.Role)
		if !role.Valid() {
			return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": filter.Role})
		}
		query.Role = &role
	}
	if filter.DepartmentID != "" {
		query.DepartmentID = &filter.DepartmentID
	}
	users, err := s.users.List(ctx, query)
	return users, storeError(err)
}

// ListRoles returns the role catalogue.
func (s *UserService) ListRoles(ctx context.Context) ([]domain.RoleRecord, error) {
	roles, err := s.roles.List(ctx)
	return roles, storeError(err)
}
