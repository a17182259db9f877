package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

const autoAssignAction = "Auto-assigned to agent"

// AssignmentService picks the least loaded eligible agent for new tickets.
type AssignmentService struct {
	tickets         repository.TicketRepository
	users           repository.UserRepository
	historyRepo     repository.TicketHistoryRepository
	dispatcher      events.Dispatcher
	logger          *zap.Logger
	clock           Clock
	enforceCapacity bool
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	TicketRepo  repository.TicketRepository
	UserRepo    repository.UserRepository
	HistoryRepo repository.TicketHistoryRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Clock       Clock
	// EnforceCapacity skips agents already holding max_active_tickets open tickets.
	EnforceCapacity bool
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		tickets:         deps.TicketRepo,
		users:           deps.UserRepo,
		historyRepo:     deps.HistoryRepo,
		dispatcher:      deps.Dispatcher,
		logger:          logger.With(zap.String("service", "assignment")),
		clock:           deps.Clock,
		enforceCapacity: deps.EnforceCapacity,
	}
}

// AutoAssign assigns the ticket to the eligible agent with the fewest open
// tickets, ties going to the lowest user id. It reports false, without error
// and without a history entry, when no agent is eligible.
func (s *AssignmentService) AutoAssign(ctx context.Context, ticketID string) (*domain.Ticket, bool, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, false, lookupError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}

	candidates, err := s.users.ListAssignableAgents(ctx)
	if err != nil {
		return nil, false, storeError(err)
	}
	agent, ok := s.pick(candidates)
	if !ok {
		s.logger.Info("no eligible agent", zap.String("ticket_id", ticketID))
		return ticket, false, nil
	}

	previous := ticket.Status
	ticket.AssignedAgentID = &agent.UserID
	ticket.Status = domain.TicketStatusAssigned
	ticket.UpdatedAt = s.clock.now()
	if err := s.tickets.Assign(ctx, ticket); err != nil {
		return nil, false, storeError(err)
	}

	next := domain.TicketStatusAssigned
	if err := s.historyRepo.Create(ctx, &domain.TicketHistory{
		ID:            uuid.NewString(),
		TicketID:      ticket.ID,
		UserID:        domain.SystemActor,
		Action:        autoAssignAction,
		PreviousState: &previous,
		NewState:      &next,
		CreatedAt:     ticket.UpdatedAt,
	}); err != nil {
		return nil, false, storeError(err)
	}

	s.logger.Info("ticket auto-assigned",
		zap.String("ticket_id", ticket.ID),
		zap.String("agent_id", agent.UserID),
		zap.Int("open_tickets", agent.OpenTickets))
	s.publishAssignmentEvent(ctx, ticket, agent)
	return ticket, true, nil
}

// pick expects candidates ordered by load then id.
func (s *AssignmentService) pick(candidates []domain.AgentLoad) (domain.AgentLoad, bool) {
	for _, c := range candidates {
		if s.enforceCapacity && c.MaxActiveTickets > 0 && c.OpenTickets >= c.MaxActiveTickets {
			continue
		}
		return c, true
	}
	return domain.AgentLoad{}, false
}

func (s *AssignmentService) publishAssignmentEvent(ctx context.Context, ticket *domain.Ticket, agent domain.AgentLoad) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketAssigned,
		TicketID:  ticket.ID,
		Actor:     events.Actor{UserID: domain.SystemActor},
		Timestamp: ticket.UpdatedAt,
		Payload: events.TicketAssignedPayload{
			AgentID:   agent.UserID,
			AgentName: agent.Name,
		},
	})
}
