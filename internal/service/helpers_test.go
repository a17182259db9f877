package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/fixtures"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
)

var baseTime = time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)

// stepClock advances one minute per call.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	repos    repository.Repositories
	clock    *stepClock
	events   *recorder
	assigner *AssignmentService
	tickets  *TicketService
}

type envOption func(*TicketDependencies, *AssignmentDependencies)

func strict() envOption {
	return func(t *TicketDependencies, _ *AssignmentDependencies) { t.Options.StrictTransitions = true }
}

func enforceCapacity() envOption {
	return func(_ *TicketDependencies, a *AssignmentDependencies) { a.EnforceCapacity = true }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	repos := memory.New()
	set, err := fixtures.Default()
	require.NoError(t, err)
	_, err = fixtures.Apply(context.Background(), repos, set, false)
	require.NoError(t, err)

	clock := &stepClock{now: baseTime}
	rec := &recorder{}
	dispatcher := events.NewInMemoryDispatcher(nil)
	for _, typ := range events.AllEventTypes {
		dispatcher.Subscribe(typ, rec.Handle)
	}

	assignDeps := AssignmentDependencies{
		TicketRepo:  repos.Tickets,
		UserRepo:    repos.Users,
		HistoryRepo: repos.History,
		Dispatcher:  dispatcher,
		Clock:       clock.Now,
	}
	ticketDeps := TicketDependencies{
		TicketRepo:   repos.Tickets,
		CategoryRepo: repos.Categories,
		UserRepo:     repos.Users,
		HistoryRepo:  repos.History,
		TimeLogRepo:  repos.TimeLogs,
		Dispatcher:   dispatcher,
		Clock:        clock.Now,
	}
	for _, opt := range opts {
		opt(&ticketDeps, &assignDeps)
	}
	assigner := NewAssignmentService(assignDeps)
	ticketDeps.Assigner = assigner

	return &testEnv{
		repos:    repos,
		clock:    clock,
		events:   rec,
		assigner: assigner,
		tickets:  NewTicketService(ticketDeps),
	}
}

func (e *testEnv) setAvailable(t *testing.T, userID string, available bool) {
	t.Helper()
	require.NoError(t, e.repos.Users.SetAvailability(context.Background(), userID, available))
}

func (e *testEnv) create(t *testing.T, input TicketCreateInput) *domain.TicketView {
	t.Helper()
	if input.Title == "" {
		input.Title = "Laptop will not boot"
	}
	if input.UserID == "" {
		input.UserID = "u4"
	}
	if input.DepartmentID == "" {
		input.DepartmentID = "d2"
	}
	if input.CategoryID == "" {
		input.CategoryID = "c1"
	}
	if input.Impact == "" {
		input.Impact = domain.LevelMedium
	}
	if input.Urgency == "" {
		input.Urgency = domain.LevelMedium
	}
	view, err := e.tickets.CreateTicket(context.Background(), input)
	require.NoError(t, err)
	return view
}

func strPtr(s string) *string { return &s }
