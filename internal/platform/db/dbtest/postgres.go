// Package dbtest starts a throwaway PostgreSQL for integration tests.
package dbtest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"legisflow/internal/platform/db"
)

// SetupPostgres runs a migrated postgres container for the duration of t.
// Callers skip it under -short.
func SetupPostgres(t *testing.T, ctx context.Context) *db.Postgres {
	t.Helper()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("legisflow_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(context.Background()))
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pg, err := db.Connect(dsn, db.Options{PingTimeout: 10 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Close() })

	_, err = db.Migrate(ctx, pg.DB)
	require.NoError(t, err)
	return pg
}

// Truncate empties tables between tests.
func Truncate(t *testing.T, pg *db.Postgres, tables ...string) {
	t.Helper()
	if len(tables) == 0 {
		return
	}
	require.NoError(t, pg.DB.Exec("TRUNCATE TABLE "+strings.Join(tables, ", ")+" CASCADE").Error)
}
