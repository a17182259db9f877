package repository_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/repository/repotest"
)

// Requires a disposable database; every subtest truncates all tables.
func TestPostgresRepositories(t *testing.T) {
	dsn := os.Getenv("HELPDESK_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("HELPDESK_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, persistence.RunMigrations(ctx, pool, zap.NewNop()))

	repotest.Run(t, func(t *testing.T) repository.Repositories {
		_, err := pool.Exec(ctx, `TRUNCATE ticket_time_logs, ticket_history, tickets, users, categories, roles, departments CASCADE`)
		require.NoError(t, err)
		return repository.NewPostgres(pool)
	})
}
