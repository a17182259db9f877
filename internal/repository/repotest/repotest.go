// Package repotest holds behaviour checks shared by every repository backend.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/fixtures"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

var base = time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)

// Factory returns an empty, migrated repository set.
type Factory func(t *testing.T) repository.Repositories

// Run seeds the default fixtures into a fresh store and checks the behaviour
// the services rely on.
func Run(t *testing.T, newRepos Factory) {
	t.Run("Users", func(t *testing.T) { testUsers(t, seeded(t, newRepos)) })
	t.Run("TicketsLifecycle", func(t *testing.T) { testTickets(t, seeded(t, newRepos)) })
	t.Run("AssignableAgents", func(t *testing.T) { testAssignableAgents(t, seeded(t, newRepos)) })
	t.Run("HistoryAndTimeLogs", func(t *testing.T) { testHistory(t, seeded(t, newRepos)) })
	t.Run("EqualTimestamps", func(t *testing.T) { testEqualTimestamps(t, seeded(t, newRepos)) })
}

func seeded(t *testing.T, newRepos Factory) repository.Repositories {
	t.Helper()
	repos := newRepos(t)
	set, err := fixtures.Default()
	require.NoError(t, err)
	applied, err := fixtures.Apply(context.Background(), repos, set, false)
	require.NoError(t, err)
	require.True(t, applied)
	return repos
}

func newTicket(id string, offset time.Duration) *domain.Ticket {
	created := base.Add(offset)
	return &domain.Ticket{
		ID:           id,
		Title:        "Ticket " + id,
		Description:  "desc",
		UserID:       "u4",
		DepartmentID: "d2",
		CategoryID:   "c1",
		Impact:       domain.LevelMedium,
		Urgency:      domain.LevelHigh,
		Priority:     domain.PriorityHigh,
		Status:       domain.TicketStatusNew,
		CreatedAt:    created,
		UpdatedAt:    created,
		SLADeadline:  created.Add(8 * time.Hour),
	}
}

func testUsers(t *testing.T, repos repository.Repositories) {
	ctx := context.Background()

	user, err := repos.Users.GetByID(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, "IT Agent 1", user.Name)
	assert.Equal(t, domain.RoleAgent, user.Role)
	assert.Equal(t, "d1", user.DepartmentID)
	assert.True(t, user.IsActive)
	assert.True(t, user.IsAvailable)

	_, err = repos.Users.GetByID(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repos.Users.SetAvailability(ctx, "u2", false))
	user, err = repos.Users.GetByID(ctx, "u2")
	require.NoError(t, err)
	assert.False(t, user.IsAvailable)
	assert.ErrorIs(t, repos.Users.SetAvailability(ctx, "nobody", true), repository.ErrNotFound)

	role := domain.RoleAgent
	agents, err := repos.Users.List(ctx, repository.UserFilter{Role: &role})
	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.Equal(t, "u2", agents[0].ID)
	assert.Equal(t, "u3", agents[1].ID)

	categories, err := repos.Categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, 2, categories[2].SLAHours)

	dept, err := repos.Departments.GetByID(ctx, "d2")
	require.NoError(t, err)
	assert.Equal(t, "Sales", dept.Name)
}

func testTickets(t *testing.T, repos repository.Repositories) {
	ctx := context.Background()

	first := newTicket("t1", 0)
	second := newTicket("t2", time.Minute)
	require.NoError(t, repos.Tickets.Create(ctx, first))
	require.NoError(t, repos.Tickets.Create(ctx, second))

	view, err := repos.Tickets.GetView(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Employee User", view.UserName)
	assert.Equal(t, "Hardware", view.CategoryName)
	assert.Nil(t, view.AgentName)
	assert.True(t, first.SLADeadline.Equal(view.SLADeadline))

	_, err = repos.Tickets.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	agent := "u2"
	first.AssignedAgentID = &agent
	first.Status = domain.TicketStatusAssigned
	first.UpdatedAt = base.Add(2 * time.Minute)
	require.NoError(t, repos.Tickets.Assign(ctx, first))

	resolved := base.Add(3 * time.Minute)
	first.Status = domain.TicketStatusResolved
	first.UpdatedAt = resolved
	first.ResolvedAt = &resolved
	require.NoError(t, repos.Tickets.UpdateStatus(ctx, first))

	got, err := repos.Tickets.GetView(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, got.Status)
	require.NotNil(t, got.AgentName)
	assert.Equal(t, "IT Agent 1", *got.AgentName)
	require.NotNil(t, got.ResolvedAt)
	assert.True(t, resolved.Equal(*got.ResolvedAt))
	assert.Nil(t, got.ClosedAt)

	ghost := newTicket("ghost", 0)
	assert.ErrorIs(t, repos.Tickets.UpdateStatus(ctx, ghost), repository.ErrNotFound)

	all, err := repos.Tickets.List(ctx, repository.TicketFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "t2", all[0].ID)
	assert.Equal(t, "t1", all[1].ID)

	mine, err := repos.Tickets.List(ctx, repository.TicketFilter{AgentID: &agent})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "t1", mine[0].ID)

	requester := "u1"
	none, err := repos.Tickets.List(ctx, repository.TicketFilter{UserID: &requester, AgentID: &agent})
	require.NoError(t, err)
	assert.Empty(t, none)

	byStatus, err := repos.Tickets.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, byStatus[domain.TicketStatusResolved])
	assert.Equal(t, 1, byStatus[domain.TicketStatusNew])

	byPriority, err := repos.Tickets.CountByPriority(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, byPriority[domain.PriorityHigh])
}

func testAssignableAgents(t *testing.T, repos repository.Repositories) {
	ctx := context.Background()

	agent := "u2"
	open := newTicket("t1", 0)
	open.AssignedAgentID = &agent
	open.Status = domain.TicketStatusInProgress
	closed := newTicket("t2", time.Minute)
	closed.AssignedAgentID = &agent
	closed.Status = domain.TicketStatusClosed
	require.NoError(t, repos.Tickets.Create(ctx, open))
	require.NoError(t, repos.Tickets.Create(ctx, closed))

	loads, err := repos.Users.ListAssignableAgents(ctx)
	require.NoError(t, err)
	require.Len(t, loads, 2)
	assert.Equal(t, "u3", loads[0].UserID)
	assert.Equal(t, 0, loads[0].OpenTickets)
	assert.Equal(t, "u2", loads[1].UserID)
	assert.Equal(t, 1, loads[1].OpenTickets)

	require.NoError(t, repos.Users.SetAvailability(ctx, "u3", false))
	loads, err = repos.Users.ListAssignableAgents(ctx)
	require.NoError(t, err)
	require.Len(t, loads, 1)
	assert.Equal(t, "u2", loads[0].UserID)
}

func testHistory(t *testing.T, repos repository.Repositories) {
	ctx := context.Background()
	require.NoError(t, repos.Tickets.Create(ctx, newTicket("t1", 0)))

	prev, next := domain.TicketStatusNew, domain.TicketStatusAssigned
	require.NoError(t, repos.History.Create(ctx, &domain.TicketHistory{
		ID: "h1", TicketID: "t1", UserID: domain.SystemActor, Action: "Auto-assigned to agent",
		PreviousState: &prev, NewState: &next, CreatedAt: base.Add(time.Minute),
	}))
	require.NoError(t, repos.History.Create(ctx, &domain.TicketHistory{
		ID: "h2", TicketID: "t1", UserID: "u2", Action: "Logged 15 minutes: triage",
		CreatedAt: base.Add(2 * time.Minute),
	}))

	entries, err := repos.History.ListByTicket(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "h1", entries[0].ID)
	require.NotNil(t, entries[0].NewState)
	assert.Equal(t, domain.TicketStatusAssigned, *entries[0].NewState)
	assert.Nil(t, entries[1].PreviousState)

	total, err := repos.TimeLogs.TotalMinutes(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	require.NoError(t, repos.TimeLogs.Create(ctx, &domain.TimeLog{
		ID: "l1", TicketID: "t1", UserID: "u2", DurationMinutes: 15, Description: "triage", CreatedAt: base.Add(time.Minute),
	}))
	require.NoError(t, repos.TimeLogs.Create(ctx, &domain.TimeLog{
		ID: "l2", TicketID: "t1", UserID: "u3", DurationMinutes: 45, Description: "fix", CreatedAt: base.Add(2 * time.Minute),
	}))

	logs, err := repos.TimeLogs.ListByTicket(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "l2", logs[0].ID)
	assert.Equal(t, "IT Agent 2", logs[0].UserName)

	total, err = repos.TimeLogs.TotalMinutes(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 60, total)
}

// Rows sharing a timestamp come back in a stable order: t-b was written after
// t-a and also sorts after it by id, so every backend agrees.
func testEqualTimestamps(t *testing.T, repos repository.Repositories) {
	ctx := context.Background()
	require.NoError(t, repos.Tickets.Create(ctx, newTicket("t-a", 0)))
	require.NoError(t, repos.Tickets.Create(ctx, newTicket("t-b", 0)))

	for i := 0; i < 3; i++ {
		all, err := repos.Tickets.List(ctx, repository.TicketFilter{})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "t-b", all[0].ID)
		assert.Equal(t, "t-a", all[1].ID)
	}

	for _, id := range []string{"h-a", "h-b"} {
		require.NoError(t, repos.History.Create(ctx, &domain.TicketHistory{
			ID: id, TicketID: "t-a", UserID: "u2", Action: "note", CreatedAt: base,
		}))
	}
	entries, err := repos.History.ListByTicket(ctx, "t-a")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "h-a", entries[0].ID)
	assert.Equal(t, "h-b", entries[1].ID)
}
