package scoremigrations

import (
	"context"
	"fmt"

	scoredb "github.com/tabletop-ledger/partie/app/modules/score/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewCreateTable().
				Model((*scoredb.Score)(nil)).
				IfNotExists().
				ForeignKey(`("round_id") REFERENCES "rounds" ("id") ON DELETE CASCADE`).
				ForeignKey(`("player_id") REFERENCES "players" ("id") ON DELETE CASCADE`).
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to create scores table: %w", err)
			}
			for _, stmt := range []string{
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_scores_round_player_type_name ON scores(round_id, player_id, score_type, score_name)`,
				`CREATE INDEX IF NOT EXISTS idx_scores_player_id ON scores(player_id)`,
				`ALTER TABLE scores ADD CONSTRAINT scores_type_check CHECK (score_type IN ('PRIMARY', 'SECONDARY', 'CHALLENGER', 'BONUS', 'PENALTY', 'OBJECTIVE'))`,
			} {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("failed to apply scores schema: %w", err)
				}
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		if _, err := db.NewDropTable().Model((*scoredb.Score)(nil)).IfExists().Cascade().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop scores table: %w", err)
		}
		return nil
	})
}
