package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	UserID       string       `json:"userId"`
	DepartmentID string       `json:"departmentId"`
	CategoryID   string       `json:"categoryId"`
	Impact       domain.Level `json:"impact"`
	Urgency      domain.Level `json:"urgency"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
	UserID string              `json:"userId"`
}

// LogTimeRequest payload.
type LogTimeRequest struct {
	UserID          string `json:"userId"`
	DurationMinutes int    `json:"durationMinutes"`
	Description     string `json:"description"`
}

// TicketResponse mirrors a ticket row joined with display names.
type TicketResponse struct {
	ID              string              `json:"id"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	UserID          string              `json:"user_id"`
	DepartmentID    string              `json:"department_id"`
	CategoryID      string              `json:"category_id"`
	Impact          domain.Level        `json:"impact"`
	Urgency         domain.Level        `json:"urgency"`
	Priority        domain.Priority     `json:"priority"`
	Status          domain.TicketStatus `json:"status"`
	AssignedAgentID *string             `json:"assigned_agent_id"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	ResolvedAt      *time.Time          `json:"resolved_at"`
	ClosedAt        *time.Time          `json:"closed_at"`
	SLADeadline     time.Time           `json:"sla_deadline"`
	UserName        string              `json:"user_name"`
	AgentName       *string             `json:"agent_name"`
	CategoryName    string              `json:"category_name"`
}

// NewTicketResponse maps the domain view.
func NewTicketResponse(v *domain.TicketView) TicketResponse {
	return TicketResponse{
		ID:              v.ID,
		Title:           v.Title,
		Description:     v.Description,
		UserID:          v.UserID,
		DepartmentID:    v.DepartmentID,
		CategoryID:      v.CategoryID,
		Impact:          v.Impact,
		Urgency:         v.Urgency,
		Priority:        v.Priority,
		Status:          v.Status,
		AssignedAgentID: v.AssignedAgentID,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
		ResolvedAt:      v.ResolvedAt,
		ClosedAt:        v.ClosedAt,
		SLADeadline:     v.SLADeadline,
		UserName:        v.UserName,
		AgentName:       v.AgentName,
		CategoryName:    v.CategoryName,
	}
}

// HistoryResponse is one audit entry.
type HistoryResponse struct {
	ID            string               `json:"id"`
	TicketID      string               `json:"ticket_id"`
	UserID        string               `json:"user_id"`
	Action        string               `json:"action"`
	PreviousState *domain.TicketStatus `json:"previous_state"`
	NewState      *domain.TicketStatus `json:"new_state"`
	CreatedAt     time.Time            `json:"created_at"`
}

// NewHistoryResponse maps the domain entry.
func NewHistoryResponse(h domain.TicketHistory) HistoryResponse {
	return HistoryResponse{
		ID:            h.ID,
		TicketID:      h.TicketID,
		UserID:        h.UserID,
		Action:        h.Action,
		PreviousState: h.PreviousState,
		NewState:      h.NewState,
		CreatedAt:     h.CreatedAt,
	}
}

// TimeLogResponse is one effort record.
type TimeLogResponse struct {
	ID              string    `json:"id"`
	TicketID        string    `json:"ticket_id"`
	UserID          string    `json:"user_id"`
	UserName        string    `json:"user_name"`
	DurationMinutes int       `json:"duration_minutes"`
	Description     string    `json:"description"`
	CreatedAt       time.Time `json:"created_at"`
}

// TimeLogListResponse wraps logs with their total.
type TimeLogListResponse struct {
	Logs         []TimeLogResponse `json:"logs"`
	TotalMinutes int               `json:"totalMinutes"`
}

// NewTimeLogResponse maps the domain log.
func NewTimeLogResponse(l domain.TimeLog) TimeLogResponse {
	return TimeLogResponse{
		ID:              l.ID,
		TicketID:        l.TicketID,
		UserID:          l.UserID,
		UserName:        l.UserName,
		DurationMinutes: l.DurationMinutes,
		Description:     l.Description,
		CreatedAt:       l.CreatedAt,
	}
}

// MetricsResponse holds dashboard counts.
type MetricsResponse struct {
	Total      int                         `json:"total"`
	ByStatus   map[domain.TicketStatus]int `json:"byStatus"`
	ByPriority map[domain.Priority]int     `json:"byPriority"`
}

// RequestStatsResponse exposes the process-local request and error counters,
// keyed "route|method|status" and "route|method|code".
type RequestStatsResponse struct {
	Requests map[string]int64 `json:"requests"`
	Errors   map[string]int64 `json:"errors"`
}
