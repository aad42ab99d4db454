// Package testdb runs a throwaway PostgreSQL in a container for integration
// tests. One container is shared by every test in a package binary; tests
// using it must not run in parallel.
//
// Usage:
//
//	func TestMain(m *testing.M) {
//	    code := m.Run()
//	    testdb.Terminate()
//	    os.Exit(code)
//	}
//
//	func TestRepository(t *testing.T) {
//	    pg := testdb.SetupSharedPostgres(t)
//	    pg.RunMigrations(t, (*student.Student)(nil), (*student.Marks)(nil))
//
//	    t.Run("Case", func(t *testing.T) {
//	        testdb.CleanupTables(t, pg.DB, "student")
//	        // ...
//	    })
//	}
package testdb

import (
	"context"
	"sync"
	"testing"

	"school-service/internal/db"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
)

var (
	sharedContainer *PostgresContainer
	sharedErr       error
	sharedOnce      sync.Once
)

type PostgresContainer struct {
	Container *postgres.PostgresContainer
	DB        *bun.DB
	DSN       string
}

// SetupSharedPostgres starts the package's container on first use and
// returns it. It skips the test under -short.
func SetupSharedPostgres(t *testing.T) *PostgresContainer {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	sharedOnce.Do(func() {
		sharedContainer, sharedErr = start(context.Background())
	})
	require.NoError(t, sharedErr, "failed to start postgres container")

	return sharedContainer
}

func start(ctx context.Context) (*PostgresContainer, error) {
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
		),
	)
	if err != nil {
		return nil, err
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}

	bunDB, err := db.NewWithDSN(ctx, connStr)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}

	return &PostgresContainer{
		Container: pgContainer,
		DB:        bunDB,
		DSN:       connStr,
	}, nil
}

// Terminate stops the shared container, if one was started. Call it from
// TestMain after m.Run.
func Terminate() {
	if sharedContainer == nil {
		return
	}

	if sharedContainer.DB != nil {
		sharedContainer.DB.Close()
	}
	if sharedContainer.Container != nil {
		_ = sharedContainer.Container.Terminate(context.Background())
	}
	sharedContainer = nil
}

// RunMigrations creates the tables for models through the same bootstrap the
// service runs at startup.
func (pc *PostgresContainer) RunMigrations(t *testing.T, models ...interface{}) {
	t.Helper()

	err := db.RunMigrations(context.Background(), pc.DB, models...)
	require.NoError(t, err, "failed to create tables")
}

func CleanupTables(t *testing.T, bunDB *bun.DB, tables ...string) {
	t.Helper()

	ctx := context.Background()

	for _, table := range tables {
		_, err := bunDB.ExecContext(ctx, "TRUNCATE "+table+" RESTART IDENTITY CASCADE")
		require.NoError(t, err, "failed to truncate table: %s", table)
	}
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, bunDB *bun.DB, table string) int {
	t.Helper()

	var n int
	err := bunDB.NewSelect().TableExpr(table).ColumnExpr("count(*)").Scan(context.Background(), &n)
	require.NoError(t, err, "failed to count rows in %s", table)
	return n
}
