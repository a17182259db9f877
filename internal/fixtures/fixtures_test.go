package fixtures

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
)

func TestDefaultSeed(t *testing.T) {
	set, err := Default()
	require.NoError(t, err)
	assert.Len(t, set.Departments, 3)
	assert.Len(t, set.Roles, 4)
	require.Len(t, set.Categories, 3)
	assert.Equal(t, 2, set.Categories[2].SLAHours)
	require.Len(t, set.Users, 4)
	assert.Equal(t, "u2", set.Users[1].ID)
	assert.Equal(t, "agent", set.Users[1].Role)
}

func TestParseRejectsBadReferences(t *testing.T) {
	cases := map[string]string{
		"unknown role": `
users:
  - {id: u1, name: A, email: a@x, role: wizard}`,
		"unknown department": `
departments: [{id: d1, name: IT}]
users:
  - {id: u1, name: A, email: a@x, role: agent, department_id: d9}`,
		"duplicate email": `
users:
  - {id: u1, name: A, email: a@x, role: agent}
  - {id: u2, name: B, email: a@x, role: agent}`,
		"bad yaml": "users: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestApplySeedsOnce(t *testing.T) {
	ctx := context.Background()
	repos := memory.New()
	set, err := Default()
	require.NoError(t, err)

	applied, err := Apply(ctx, repos, set, false)
	require.NoError(t, err)
	assert.True(t, applied)

	u2, err := repos.Users.GetByID(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAgent, u2.Role)
	assert.Equal(t, domain.DefaultMaxActiveTickets, u2.MaxActiveTickets)
	assert.True(t, u2.IsActive)
	assert.True(t, u2.IsAvailable)

	require.NoError(t, repos.Users.SetAvailability(ctx, "u2", false))
	applied, err = Apply(ctx, repos, set, false)
	require.NoError(t, err)
	assert.False(t, applied)

	u2, err = repos.Users.GetByID(ctx, "u2")
	require.NoError(t, err)
	assert.False(t, u2.IsAvailable)

	applied, err = Apply(ctx, repos, set, true)
	require.NoError(t, err)
	assert.True(t, applied)
	u2, err = repos.Users.GetByID(ctx, "u2")
	require.NoError(t, err)
	assert.True(t, u2.IsAvailable)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	doc := `
departments: [{id: d1, name: IT}]
roles: [{id: agent, name: Agent}]
categories: [{id: c9, name: Printers, sla_hours: 12}]
users:
  - {id: a1, name: Night Agent, email: night@x, role: agent, department_id: d1, max_active_tickets: 2, is_available: false}
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	set, err := Load(path)
	require.NoError(t, err)
	user := set.Users[0].toDomain()
	assert.Equal(t, 2, user.MaxActiveTickets)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsAvailable)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
