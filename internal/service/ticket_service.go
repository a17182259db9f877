package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	categories repository.CategoryRepository
	users      repository.UserRepository
	history    repository.TicketHistoryRepository
	timeLogs   repository.TimeLogRepository
	assigner   *AssignmentService
	dispatcher events.Dispatcher
	logger     *zap.Logger
	clock      Clock
	options    TicketOptions
}

// TicketOptions tunes lifecycle rules.
type TicketOptions struct {
	// StrictTransitions rejects unknown statuses and moves outside the
	// transition graph. Off by default: any status may be written.
	StrictTransitions bool
	// DefaultSLAHours applies to categories without a positive SLA.
	DefaultSLAHours int
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	CategoryRepo repository.CategoryRepository
	UserRepo     repository.UserRepository
	HistoryRepo  repository.TicketHistoryRepository
	TimeLogRepo  repository.TimeLogRepository
	Assigner     *AssignmentService
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	Clock        Clock
	Options      TicketOptions
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title        string
	Description  string
	UserID       string
	DepartmentID string
	CategoryID   string
	Impact       domain.Level
	Urgency      domain.Level
}

// TicketListFilter selects tickets by requester or assignee. UserID wins when
// both are set.
type TicketListFilter struct {
	UserID  *string
	AgentID *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	options := deps.Options
	if options.DefaultSLAHours <= 0 {
		options.DefaultSLAHours = domain.DefaultSLAHours
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		categories: deps.CategoryRepo,
		users:      deps.UserRepo,
		history:    deps.HistoryRepo,
		timeLogs:   deps.TimeLogRepo,
		assigner:   deps.Assigner,
		dispatcher: deps.Dispatcher,
		logger:     logger.With(zap.String("service", "tickets")),
		clock:      deps.Clock,
		options:    options,
	}
}

// CreateTicket stores a new ticket in status Nuevo, runs auto-assignment and
// returns the enriched record.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.TicketView, error) {
	logger := s.logger.With(zap.String("method", "CreateTicket"))

	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidationError("title is required", map[string]any{"field": "title"})
	}
	if strings.TrimSpace(input.UserID) == "" {
		return nil, apperrors.NewValidationError("userId is required", map[string]any{"field": "userId"})
	}

	if _, err := s.users.GetByID(ctx, input.UserID); err != nil {
		return nil, lookupError(err, "user", map[string]any{"user_id": input.UserID})
	}
	category, err := s.categories.GetByID(ctx, input.CategoryID)
	if err != nil {
		return nil, lookupError(err, "category", map[string]any{"category_id": input.CategoryID})
	}

	slaHours := category.SLAHours
	if slaHours <= 0 {
		slaHours = s.options.DefaultSLAHours
	}

	now := s.clock.now()
	ticket := &domain.Ticket{
		ID:           uuid.NewString(),
		Title:        input.Title,
		Description:  input.Description,
		UserID:       input.UserID,
		DepartmentID: input.DepartmentID,
		CategoryID:   category.ID,
		Impact:       input.Impact,
		Urgency:      input.Urgency,
		Priority:     domain.CalculatePriority(input.Impact, input.Urgency),
		Status:       domain.TicketStatusNew,
		CreatedAt:    now,
		UpdatedAt:    now,
		SLADeadline:  now.Add(time.Duration(slaHours) * time.Hour),
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		logger.Error("create ticket", zap.Error(err))
		return nil, storeError(err)
	}
	logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("priority", string(ticket.Priority)))

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.Actor{UserID: ticket.UserID},
		Payload: events.TicketCreatedPayload{
			Title:       ticket.Title,
			CategoryID:  ticket.CategoryID,
			Priority:    ticket.Priority,
			SLADeadline: ticket.SLADeadline,
		},
	})

	// An unassigned ticket is a valid outcome, so assignment failures are
	// logged rather than undoing the creation.
	if s.assigner != nil {
		if _, _, err := s.assigner.AutoAssign(ctx, ticket.ID); err != nil {
			logger.Warn("auto-assign failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
		}
	}

	return s.GetTicket(ctx, ticket.ID)
}

// UpdateStatus writes a new status, records the change and returns the
// enriched ticket.
func (s *TicketService) UpdateStatus(ctx context.Context, ticketID, actorID string, newStatus domain.TicketStatus) (*domain.TicketView, error) {
	logger := s.logger.With(zap.String("method", "UpdateStatus"), zap.String("ticket_id", ticketID))

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, lookupError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if strings.TrimSpace(string(newStatus)) == "" {
		return nil, apperrors.NewValidationError("status is required", map[string]any{"field": "status"})
	}
	if strings.TrimSpace(actorID) == "" {
		return nil, apperrors.NewValidationError("userId is required", map[string]any{"field": "userId"})
	}
	if s.options.StrictTransitions {
		if !newStatus.Valid() {
			return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": newStatus})
		}
		if !domain.CanTransition(ticket.Status, newStatus) {
			return nil, apperrors.NewValidationError("invalid status transition", map[string]any{
				"from": ticket.Status,
				"to":   newStatus,
			})
		}
	}

	previous := ticket.Status
	now := s.clock.now()
	ticket.Status = newStatus
	ticket.UpdatedAt = now
	switch newStatus {
	case domain.TicketStatusResolved:
		ticket.ResolvedAt = &now
	case domain.TicketStatusClosed:
		ticket.ClosedAt = &now
	}
	if err := s.tickets.UpdateStatus(ctx, ticket); err != nil {
		return nil, lookupError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}

	next := newStatus
	if err := s.history.Create(ctx, &domain.TicketHistory{
		ID:            uuid.NewString(),
		TicketID:      ticket.ID,
		UserID:        actorID,
		Action:        fmt.Sprintf("Status changed to %s", newStatus),
		PreviousState: &previous,
		NewState:      &next,
		CreatedAt:     now,
	}); err != nil {
		logger.Error("record status change", zap.Error(err))
		return nil, storeError(err)
	}
	logger.Info("status changed",
		zap.String("from", string(previous)),
		zap.String("to", string(newStatus)),
		zap.String("actor", actorID))

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    events.Actor{UserID: actorID},
		Payload: events.TicketStatusChangedPayload{
			OldStatus: previous,
			NewStatus: newStatus,
		},
	})
	return s.GetTicket(ctx, ticket.ID)
}

// ListTickets returns tickets newest first without pagination.
func (s *TicketService) ListTickets(ctx context.Context, filter TicketListFilter) ([]domain.TicketView, error) {
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{
		UserID:  nonEmpty(filter.UserID),
		AgentID: nonEmpty(filter.AgentID),
	})
	if err != nil {
		return nil, storeError(err)
	}
	return tickets, nil
}

// GetTicket returns the ticket joined with requester, agent and category names.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.TicketView, error) {
	view, err := s.tickets.GetView(ctx, ticketID)
	if err != nil {
		return nil, lookupError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	return view, nil
}

// LogTime records effort on a ticket and returns the new log id.
func (s *TicketService) LogTime(ctx context.Context, ticketID, actorID string, durationMinutes int, description string) (string, error) {
	if durationMinutes <= 0 {
		return "", apperrors.NewValidationError("durationMinutes must be positive", map[string]any{
			"durationMinutes": durationMinutes,
		})
	}
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return "", lookupError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if _, err := s.users.GetByID(ctx, actorID); err != nil {
		return "", lookupError(err, "user", map[string]any{"user_id": actorID})
	}

	now := s.clock.now()
	entry := &domain.TimeLog{
		ID:              uuid.NewString(),
		TicketID:        ticketID,
		UserID:          actorID,
		DurationMinutes: durationMinutes,
		Description:     description,
		CreatedAt:       now,
	}
	if err := s.timeLogs.Create(ctx, entry); err != nil {
		return "", storeError(err)
	}
	if err := s.history.Create(ctx, &domain.TicketHistory{
		ID:        uuid.NewString(),
		TicketID:  ticketID,
		UserID:    actorID,
		Action:    fmt.Sprintf("Logged %d minutes: %s", durationMinutes, description),
		CreatedAt: now,
	}); err != nil {
		return "", storeError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketTimeLogged,
		TicketID: ticketID,
		Actor:    events.Actor{UserID: actorID},
		Payload: events.TicketTimeLoggedPayload{
			DurationMinutes: durationMinutes,
			Description:     description,
		},
	})
	return entry.ID, nil
}

// GetTotalTime sums logged minutes; 0 when nothing was logged.
func (s *TicketService) GetTotalTime(ctx context.Context, ticketID string) (int, error) {
	total, err := s.timeLogs.TotalMinutes(ctx, ticketID)
	if err != nil {
		return 0, storeError(err)
	}
	return total, nil
}

// ListTimeLogs returns a ticket's logs, newest first.
func (s *TicketService) ListTimeLogs(ctx context.Context, ticketID string) ([]domain.TimeLog, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return nil, lookupError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	logs, err := s.timeLogs.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, storeError(err)
	}
	return logs, nil
}

// ListHistory returns a ticket's audit trail, oldest first.
func (s *TicketService) ListHistory(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return nil, lookupError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	entries, err := s.history.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, storeError(err)
	}
	return entries, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func nonEmpty(v *string) *string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	return v
}
