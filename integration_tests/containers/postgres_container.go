package containers

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	// pgx backs the database/sql readiness probe.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresOptions describes the throwaway database. Zero fields take the
// defaults of DefaultPostgresOptions.
type PostgresOptions struct {
	Image          string
	Database       string
	User           string
	Password       string
	StartupTimeout time.Duration
}

func DefaultPostgresOptions() PostgresOptions {
	return PostgresOptions{
		Image:          "postgres:16-alpine",
		Database:       "partie",
		User:           "partie",
		Password:       "partie",
		StartupTimeout: 45 * time.Second,
	}
}

func (o PostgresOptions) withDefaults() PostgresOptions {
	d := DefaultPostgresOptions()
	if o.Image == "" {
		o.Image = d.Image
	}
	if o.Database == "" {
		o.Database = d.Database
	}
	if o.User == "" {
		o.User = d.User
	}
	if o.Password == "" {
		o.Password = d.Password
	}
	if o.StartupTimeout <= 0 {
		o.StartupTimeout = d.StartupTimeout
	}
	return o
}

func (o PostgresOptions) dsn(host string, port nat.Port) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", o.User, o.Password, host, port.Port(), o.Database)
}

// Postgres is a running database container.
type Postgres struct {
	container *postgres.PostgresContainer
	DSN       string
}

// StartPostgres runs the container and waits until it accepts SQL queries.
func StartPostgres(ctx context.Context, opts PostgresOptions) (*Postgres, error) {
	opts = opts.withDefaults()
	c, err := postgres.Run(ctx, opts.Image,
		postgres.WithDatabase(opts.Database),
		postgres.WithUsername(opts.User),
		postgres.WithPassword(opts.Password),
		testcontainers.WithWaitStrategy(
			wait.ForSQL("5432/tcp", "pgx", opts.dsn).WithStartupTimeout(opts.StartupTimeout),
		),
	)
	if err != nil {
		if c != nil {
			_ = c.Terminate(ctx)
		}
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("failed to resolve postgres host: %w", err)
	}
	port, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("failed to resolve postgres port: %w", err)
	}

	return &Postgres{container: c, DSN: opts.dsn(host, port)}, nil
}

// Terminate stops the container. It is safe on a nil receiver.
func (p *Postgres) Terminate(ctx context.Context) error {
	if p == nil || p.container == nil {
		return nil
	}
	return p.container.Terminate(ctx)
}
