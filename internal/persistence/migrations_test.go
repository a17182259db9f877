package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMigrationNamesSorted(t *testing.T) {
	for _, dialect := range []string{DialectPostgres, DialectSQLite} {
		names, err := MigrationNames(dialect)
		require.NoError(t, err)
		require.NotEmpty(t, names)
		assert.Equal(t, "001_schema.sql", names[0])
	}
}

func TestMigrationNamesUnknownDialect(t *testing.T) {
	_, err := MigrationNames("oracle")
	assert.Error(t, err)
}

func TestRunSQLiteMigrationsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	logger := zap.NewNop()
	require.NoError(t, RunSQLiteMigrations(ctx, db, logger))
	require.NoError(t, RunSQLiteMigrations(ctx, db, logger))

	for _, table := range []string{"departments", "roles", "users", "categories", "tickets", "ticket_history", "ticket_time_logs"} {
		var name string
		err := db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestRunMigrationsWithoutPoolIsNoop(t *testing.T) {
	assert.NoError(t, RunMigrations(context.Background(), nil, zap.NewNop()))
}

func TestRedisNilIsDisabled(t *testing.T) {
	var r *Redis
	assert.False(t, r.Enabled())
	assert.Error(t, r.Ping(context.Background()))
	r.Close()
}
