package app

import (
	"context"
	"database/sql"
	"fmt"

	gamedb "github.com/tabletop-ledger/partie/app/modules/game/infrastructure/repositories"
	playerdb "github.com/tabletop-ledger/partie/app/modules/player/infrastructure/repositories"
	rounddb "github.com/tabletop-ledger/partie/app/modules/round/infrastructure/repositories"
	scoredb "github.com/tabletop-ledger/partie/app/modules/score/infrastructure/repositories"
	"github.com/tabletop-ledger/partie/app/server"
	"github.com/tabletop-ledger/partie/app/shared/memdb"
	"github.com/tabletop-ledger/partie/app/shared/txn"
	"github.com/tabletop-ledger/partie/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type storage struct {
	games   gamedb.Repository
	players playerdb.Repository
	rounds  rounddb.Repository
	scores  scoredb.Repository
	tx      txn.Transactor
	health  server.HealthCheck
	db      *bun.DB
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		return newMemoryStorage(), nil
	}

	db := OpenPostgres(cfg.Postgres.DSN)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return newPostgresStorage(db), nil
}

func newMemoryStorage() *storage {
	store := memdb.NewStore()
	rounds := rounddb.NewMemory(store)
	return &storage{
		games:   gamedb.NewMemory(store),
		players: playerdb.NewMemory(store),
		rounds:  rounds,
		scores:  scoredb.NewMemory(store, rounds),
		tx:      store,
	}
}

func newPostgresStorage(db *bun.DB) *storage {
	return &storage{
		games:   gamedb.NewRepository(db),
		players: playerdb.NewRepository(db),
		rounds:  rounddb.NewRepository(db),
		scores:  scoredb.NewRepository(db),
		tx:      txn.NewBunTransactor(db),
		health:  db.PingContext,
		db:      db,
	}
}

func (s *storage) close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// OpenPostgres returns a bun handle over pgdriver. The connection is lazy.
func OpenPostgres(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}
