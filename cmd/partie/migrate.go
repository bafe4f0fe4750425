package main

import (
	"fmt"
	"slices"

	"github.com/tabletop-ledger/partie/app"
	"github.com/tabletop-ledger/partie/app/migrations"
	"github.com/tabletop-ledger/partie/config"
	"github.com/urfave/cli/v2"
)

// withMigrators opens the database and hands the module migrators, in
// foreign key order, to fn.
func withMigrators(c *cli.Context, fn func([]migrations.ModuleMigrator) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.Storage.Driver != config.StorageDriverPostgres {
		return fmt.Errorf("migrations require the %s storage driver", config.StorageDriverPostgres)
	}
	db := app.OpenPostgres(cfg.Postgres.DSN)
	defer db.Close()
	return fn(migrations.Migrators(db))
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					return withMigrators(c, func(migrators []migrations.ModuleMigrator) error {
						for _, m := range migrators {
							fmt.Printf("Initializing migrations for module: %s\n", m.Module)
							if err := m.Migrator.Init(c.Context); err != nil {
								return fmt.Errorf("failed to initialize migrations for module %s: %w", m.Module, err)
							}
						}
						return nil
					})
				},
			},
			{
				Name:  "migrate",
				Usage: "migrate database",
				Action: func(c *cli.Context) error {
					return withMigrators(c, func(migrators []migrations.ModuleMigrator) error {
						for _, m := range migrators {
							group, err := m.Migrator.Migrate(c.Context)
							if err != nil {
								return fmt.Errorf("failed to migrate module %s: %w", m.Module, err)
							}
							if group.IsZero() {
								fmt.Printf("No new migrations to run for module: %s\n", m.Module)
							} else {
								fmt.Printf("Migrated module: %s to %s\n", m.Module, group)
							}
						}
						return nil
					})
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group",
				Action: func(c *cli.Context) error {
					return withMigrators(c, func(migrators []migrations.ModuleMigrator) error {
						// Dependent tables go first.
						for _, m := range slices.Backward(migrators) {
							group, err := m.Migrator.Rollback(c.Context)
							if err != nil {
								return fmt.Errorf("failed to roll back module %s: %w", m.Module, err)
							}
							if group.IsZero() {
								fmt.Printf("No groups to roll back for module: %s\n", m.Module)
							} else {
								fmt.Printf("Rolled back module: %s to %s\n", m.Module, group)
							}
						}
						return nil
					})
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					return withMigrators(c, func(migrators []migrations.ModuleMigrator) error {
						for _, m := range migrators {
							ms, err := m.Migrator.MigrationsWithStatus(c.Context)
							if err != nil {
								return err
							}
							fmt.Printf("Migrations for module: %s\n", m.Module)
							fmt.Printf("  %s\n", ms)
							fmt.Printf("  Applied: %s\n", ms.Applied())
							fmt.Printf("  Unapplied: %s\n", ms.Unapplied())
						}
						return nil
					})
				},
			},
		},
	}
}
