package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("STORE_DRIVER", "memory")
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSeedMemoryStore(t *testing.T) {
	out, err := run(t, "seed", "--driver", "memory", "--env-file", filepath.Join(t.TempDir(), "none.env"))
	require.NoError(t, err)
	assert.Contains(t, out, "fixtures loaded")
}

func TestMigrateAndSeedSQLite(t *testing.T) {
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "helpdesk.db"))
	envFile := filepath.Join(t.TempDir(), "none.env")

	out, err := run(t, "migrate", "--driver", "sqlite", "--env-file", envFile)
	require.NoError(t, err)
	assert.Contains(t, out, "migrations applied (sqlite)")

	out, err = run(t, "seed", "--driver", "sqlite", "--env-file", envFile)
	require.NoError(t, err)
	assert.Contains(t, out, "fixtures loaded")

	out, err = run(t, "seed", "--driver", "sqlite", "--env-file", envFile)
	require.NoError(t, err)
	assert.Contains(t, out, "already seeded")

	out, err = run(t, "seed", "--force", "--driver", "sqlite", "--env-file", envFile)
	require.NoError(t, err)
	assert.Contains(t, out, "fixtures loaded")
}

func TestMigrateRejectsMemoryStore(t *testing.T) {
	_, err := run(t, "migrate", "--driver", "memory", "--env-file", filepath.Join(t.TempDir(), "none.env"))
	assert.Error(t, err)
}
