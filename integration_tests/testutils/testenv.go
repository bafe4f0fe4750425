package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/tabletop-ledger/partie/app/migrations"
	"github.com/tabletop-ledger/partie/integration_tests/containers"
)

// TestEnvironment is one migrated Postgres shared by the tests of a package.
type TestEnvironment struct {
	Postgres *containers.Postgres
	DB       *bun.DB
	DSN      string
	Logger   *slog.Logger
}

// NewTestEnvironment starts Postgres and applies every module's migrations.
func NewTestEnvironment(ctx context.Context) (*TestEnvironment, error) {
	pg, err := containers.StartPostgres(ctx, containers.PostgresOptions{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open("pgx", pg.DSN)
	if err != nil {
		_ = pg.Terminate(ctx)
		return nil, fmt.Errorf("failed to open sql DB connection: %w", err)
	}
	db := bun.NewDB(sqlDB, pgdialect.New())

	if err := migrations.Migrate(ctx, db); err != nil {
		_ = db.Close()
		_ = pg.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TestEnvironment{
		Postgres: pg,
		DB:       db,
		DSN:      pg.DSN,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Cleanup closes the database and terminates the container.
func (env *TestEnvironment) Cleanup(ctx context.Context) {
	if env == nil {
		return
	}
	if env.DB != nil {
		_ = env.DB.Close()
	}
	_ = env.Postgres.Terminate(ctx)
}

// Require skips t when the environment could not be started and otherwise
// empties every table.
func Require(t *testing.T, env *TestEnvironment) *TestEnvironment {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}
	if env == nil {
		t.Skip("postgres test environment unavailable")
	}
	if err := TruncateAll(context.Background(), env.DB); err != nil {
		t.Fatalf("failed to reset database: %v", err)
	}
	return env
}
