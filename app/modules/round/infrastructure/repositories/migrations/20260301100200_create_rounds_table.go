package roundmigrations

import (
	"context"
	"fmt"

	rounddb "github.com/tabletop-ledger/partie/app/modules/round/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewCreateTable().
				Model((*rounddb.Round)(nil)).
				IfNotExists().
				ForeignKey(`("game_id") REFERENCES "games" ("id") ON DELETE CASCADE`).
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to create rounds table: %w", err)
			}
			for _, stmt := range []string{
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_rounds_game_number ON rounds(game_id, number)`,
				`ALTER TABLE rounds ADD CONSTRAINT rounds_number_positive CHECK (number > 0)`,
				`ALTER TABLE rounds ADD CONSTRAINT rounds_scores_range CHECK (player_score BETWEEN 0 AND 100 AND opponent_score BETWEEN 0 AND 100)`,
			} {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("failed to apply rounds schema: %w", err)
				}
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		if _, err := db.NewDropTable().Model((*rounddb.Round)(nil)).IfExists().Cascade().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop rounds table: %w", err)
		}
		return nil
	})
}
