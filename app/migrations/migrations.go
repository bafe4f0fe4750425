// Package migrations runs the schema migrations of every module.
package migrations

import (
	"context"
	"fmt"

	gamemigrations "github.com/tabletop-ledger/partie/app/modules/game/infrastructure/repositories/migrations"
	playermigrations "github.com/tabletop-ledger/partie/app/modules/player/infrastructure/repositories/migrations"
	roundmigrations "github.com/tabletop-ledger/partie/app/modules/round/infrastructure/repositories/migrations"
	scoremigrations "github.com/tabletop-ledger/partie/app/modules/score/infrastructure/repositories/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// ModuleMigrator is the migrator of one module's tables.
type ModuleMigrator struct {
	Module   string
	Migrator *migrate.Migrator
}

// Migrators returns one migrator per module in foreign key order. Each
// module records its progress in its own bookkeeping tables.
func Migrators(db *bun.DB) []ModuleMigrator {
	newMigrator := func(module string, migrations *migrate.Migrations) ModuleMigrator {
		return ModuleMigrator{
			Module: module,
			Migrator: migrate.NewMigrator(db, migrations,
				migrate.WithTableName("bun_migrations_"+module),
				migrate.WithLocksTableName("bun_migration_locks_"+module),
			),
		}
	}
	return []ModuleMigrator{
		newMigrator("game", gamemigrations.Migrations),
		newMigrator("player", playermigrations.Migrations),
		newMigrator("round", roundmigrations.Migrations),
		newMigrator("score", scoremigrations.Migrations),
	}
}

// Migrate initialises and applies every module's migrations.
func Migrate(ctx context.Context, db *bun.DB) error {
	for _, m := range Migrators(db) {
		if err := m.Migrator.Init(ctx); err != nil {
			return fmt.Errorf("failed to init %s migrations: %w", m.Module, err)
		}
		if _, err := m.Migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", m.Module, err)
		}
	}
	return nil
}
