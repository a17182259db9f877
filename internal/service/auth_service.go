package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// Demo identities handed out by the mock login.
const (
	demoAgentID    = "u2"
	demoEmployeeID = "u4"
)

// Session is the result of a mock login.
type Session struct {
	User           *domain.User
	Role           domain.Role
	DepartmentName string
	Token          string
	ExpiresAt      time.Time
}

// AuthService issues demo sessions. There is no credential check.
type AuthService struct {
	users       repository.UserRepository
	departments repository.DepartmentRepository
	tokenMgr    *auth.TokenManager
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo       repository.UserRepository
	DepartmentRepo repository.DepartmentRepository
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:       deps.UserRepo,
		departments: deps.DepartmentRepo,
		tokenMgr:    auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
	}
}

// Login maps the requested role to a seeded user: agent gets the first IT
// agent, any other role the demo employee. Unknown roles act as employee.
func (s *AuthService) Login(ctx context.Context, requested string) (*Session, error) {
	role := domain.Role(strings.ToLower(strings.TrimSpace(requested)))
	if !role.Valid() {
		role = domain.RoleEmployee
	}
	userID := demoEmployeeID
	if role == domain.RoleAgent {
		userID = demoAgentID
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "user", map[string]any{"user_id": userID})
	}

	session := &Session{User: user, Role: role}
	if user.DepartmentID != "" {
		if dept, err := s.departments.GetByID(ctx, user.DepartmentID); err == nil {
			session.DepartmentName = dept.Name
		}
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	session.Token = token
	session.ExpiresAt = exp
	return session, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
