package roundmigrations

import "github.com/uptrace/bun/migrate"

var Migrations = migrate.NewMigrations()

func init() {
	// Each migration takes its id from the name of the file registering it.
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
}
