package playermigrations

import (
	"context"
	"fmt"

	playerdb "github.com/tabletop-ledger/partie/app/modules/player/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewCreateTable().
				Model((*playerdb.Player)(nil)).
				IfNotExists().
				ForeignKey(`("game_id") REFERENCES "games" ("id") ON DELETE CASCADE`).
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to create players table: %w", err)
			}
			for _, stmt := range []string{
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_players_game_pseudo ON players(game_id, lower(pseudo))`,
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_players_game_user ON players(game_id, user_id) WHERE user_id IS NOT NULL`,
				`ALTER TABLE players ADD CONSTRAINT players_guest_check CHECK (is_guest = (user_id IS NULL))`,
			} {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("failed to apply players schema: %w", err)
				}
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		if _, err := db.NewDropTable().Model((*playerdb.Player)(nil)).IfExists().Cascade().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop players table: %w", err)
		}
		return nil
	})
}
