package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func TestCreateTicketCriticalWithAgent(t *testing.T) {
	env := newTestEnv(t)

	view := env.create(t, TicketCreateInput{
		CategoryID: "c3",
		Impact:     domain.LevelHigh,
		Urgency:    domain.LevelHigh,
	})

	assert.Equal(t, domain.PriorityCritical, view.Priority)
	assert.Equal(t, view.CreatedAt.Add(2*time.Hour), view.SLADeadline)
	assert.Equal(t, domain.TicketStatusAssigned, view.Status)
	require.NotNil(t, view.AssignedAgentID)
	assert.Equal(t, "u2", *view.AssignedAgentID)
	require.NotNil(t, view.AgentName)
	assert.Equal(t, "IT Agent 1", *view.AgentName)
	assert.Equal(t, "Employee User", view.UserName)
	assert.Equal(t, "Network", view.CategoryName)
	assert.Equal(t, []events.EventType{events.EventTicketCreated, events.EventTicketAssigned}, env.events.types())
}

func TestCreateTicketWithoutEligibleAgentStaysNew(t *testing.T) {
	env := newTestEnv(t)
	env.setAvailable(t, "u2", false)
	env.setAvailable(t, "u3", false)

	view := env.create(t, TicketCreateInput{Impact: domain.LevelHigh, Urgency: domain.LevelHigh})

	assert.Equal(t, domain.TicketStatusNew, view.Status)
	assert.Nil(t, view.AssignedAgentID)
	assert.Nil(t, view.AgentName)

	history, err := env.tickets.ListHistory(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestCreateTicketUsesCategorySLA(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.repos.Categories.Upsert(ctx, &domain.Category{ID: "c0", Name: "Other", SLAHours: 0}))

	hardware := env.create(t, TicketCreateInput{CategoryID: "c1"})
	assert.Equal(t, 8*time.Hour, hardware.SLADeadline.Sub(hardware.CreatedAt))

	other := env.create(t, TicketCreateInput{CategoryID: "c0"})
	assert.Equal(t, 24*time.Hour, other.SLADeadline.Sub(other.CreatedAt))
}

func TestCreateTicketErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.tickets.CreateTicket(ctx, TicketCreateInput{Title: "x", UserID: "u4", CategoryID: "nope"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, err = env.tickets.CreateTicket(ctx, TicketCreateInput{Title: "x", UserID: "ghost", CategoryID: "c1"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, err = env.tickets.CreateTicket(ctx, TicketCreateInput{Title: "  ", UserID: "u4", CategoryID: "c1"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	all, err := env.tickets.ListTickets(ctx, TicketListFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateTicketUnknownLevelsDegradeToLow(t *testing.T) {
	env := newTestEnv(t)
	view := env.create(t, TicketCreateInput{Impact: "Enorme", Urgency: "??"})
	assert.Equal(t, domain.PriorityLow, view.Priority)
	assert.Equal(t, domain.Level("Enorme"), view.Impact)
}

func TestCreateTicketKeepsTextAsSubmitted(t *testing.T) {
	env := newTestEnv(t)
	view := env.create(t, TicketCreateInput{Title: "  Monitor flickers ", Description: "\tsince Monday\n"})
	assert.Equal(t, "  Monitor flickers ", view.Title)
	assert.Equal(t, "\tsince Monday\n", view.Description)

	_, err := env.tickets.CreateTicket(context.Background(), TicketCreateInput{Title: "   ", UserID: "u4", CategoryID: "c1"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestUpdateStatusRecordsHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created := env.create(t, TicketCreateInput{})

	updated, err := env.tickets.UpdateStatus(ctx, created.ID, "u2", domain.TicketStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	history, err := env.tickets.ListHistory(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	assigned := history[0]
	assert.Equal(t, domain.SystemActor, assigned.UserID)
	assert.Equal(t, "Auto-assigned to agent", assigned.Action)
	assert.Equal(t, domain.TicketStatusNew, *assigned.PreviousState)
	assert.Equal(t, domain.TicketStatusAssigned, *assigned.NewState)

	change := history[1]
	assert.Equal(t, "u2", change.UserID)
	assert.Equal(t, "Status changed to En Proceso", change.Action)
	assert.Equal(t, domain.TicketStatusAssigned, *change.PreviousState)
	assert.Equal(t, domain.TicketStatusInProgress, *change.NewState)
}

func TestUpdateStatusMissingTicket(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.tickets.UpdateStatus(ctx, "missing", "u2", domain.TicketStatusResolved)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	history, err := env.repos.History.ListByTicket(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestUpdateStatusIsPermissiveByDefault(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created := env.create(t, TicketCreateInput{})

	closed, err := env.tickets.UpdateStatus(ctx, created.ID, "u1", domain.TicketStatusClosed)
	require.NoError(t, err)
	require.NotNil(t, closed.ClosedAt)

	reopened, err := env.tickets.UpdateStatus(ctx, created.ID, "u1", domain.TicketStatusNew)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusNew, reopened.Status)

	custom, err := env.tickets.UpdateStatus(ctx, created.ID, "u1", "Escalado")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatus("Escalado"), custom.Status)
}

func TestUpdateStatusStrictMode(t *testing.T) {
	env := newTestEnv(t, strict())
	ctx := context.Background()
	created := env.create(t, TicketCreateInput{})
	require.Equal(t, domain.TicketStatusAssigned, created.Status)

	_, err := env.tickets.UpdateStatus(ctx, created.ID, "u2", "Escalado")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, err = env.tickets.UpdateStatus(ctx, created.ID, "u2", domain.TicketStatusNew)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	resolved, err := env.tickets.UpdateStatus(ctx, created.ID, "u2", domain.TicketStatusResolved)
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedAt)
	assert.Nil(t, resolved.ClosedAt)

	history, err := env.tickets.ListHistory(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestUpdateStatusRequiresStatusAndActor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created := env.create(t, TicketCreateInput{})

	_, err := env.tickets.UpdateStatus(ctx, created.ID, "u2", "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	_, err = env.tickets.UpdateStatus(ctx, created.ID, "", domain.TicketStatusResolved)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestListTicketsFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.create(t, TicketCreateInput{UserID: "u4", Title: "first"})
	env.create(t, TicketCreateInput{UserID: "u1", DepartmentID: "d1", Title: "admin"})
	third := env.create(t, TicketCreateInput{UserID: "u4", Title: "third"})

	mine, err := env.tickets.ListTickets(ctx, TicketListFilter{UserID: strPtr("u4")})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, third.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)

	both, err := env.tickets.ListTickets(ctx, TicketListFilter{UserID: strPtr("u4"), AgentID: strPtr("u3")})
	require.NoError(t, err)
	assert.Len(t, both, 2)

	// u2 gets tickets 1 and 3, u3 gets ticket 2.
	agent, err := env.tickets.ListTickets(ctx, TicketListFilter{AgentID: strPtr("u3")})
	require.NoError(t, err)
	require.Len(t, agent, 1)
	assert.Equal(t, "admin", agent[0].Title)

	all, err := env.tickets.ListTickets(ctx, TicketListFilter{UserID: strPtr("")})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestLogTimeAndTotals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created := env.create(t, TicketCreateInput{})

	total, err := env.tickets.GetTotalTime(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	_, err = env.tickets.LogTime(ctx, created.ID, "u2", 30, "diagnosis")
	require.NoError(t, err)
	id, err := env.tickets.LogTime(ctx, created.ID, "u2", 45, "replaced disk")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	total, err = env.tickets.GetTotalTime(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 75, total)

	logs, err := env.tickets.ListTimeLogs(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, id, logs[0].ID)
	assert.Equal(t, "IT Agent 1", logs[0].UserName)

	history, err := env.tickets.ListHistory(ctx, created.ID)
	require.NoError(t, err)
	last := history[len(history)-1]
	assert.Equal(t, "Logged 45 minutes: replaced disk", last.Action)
	assert.Nil(t, last.PreviousState)
	assert.Nil(t, last.NewState)
}

func TestLogTimeValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created := env.create(t, TicketCreateInput{})

	_, err := env.tickets.LogTime(ctx, "missing", "u2", 10, "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, err = env.tickets.LogTime(ctx, created.ID, "u2", 0, "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, err = env.tickets.LogTime(ctx, created.ID, "ghost", 10, "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	total, err := env.tickets.GetTotalTime(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestGetTicketNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.tickets.GetTicket(context.Background(), "missing")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	_, err = env.tickets.ListTimeLogs(context.Background(), "missing")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}
