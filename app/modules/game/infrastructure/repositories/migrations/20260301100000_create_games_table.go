package gamemigrations

import (
	"context"
	"fmt"

	gamedb "github.com/tabletop-ledger/partie/app/modules/game/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewCreateTable().Model((*gamedb.Game)(nil)).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to create games table: %w", err)
			}
			for _, stmt := range []string{
				`ALTER TABLE games ADD CONSTRAINT games_points_limit_check CHECK (points_limit IN (500, 1000, 1500, 2000, 3000))`,
				`ALTER TABLE games ADD CONSTRAINT games_status_check CHECK (status IN ('PLANNED', 'IN_PROGRESS', 'COMPLETED', 'CANCELLED'))`,
				`CREATE INDEX IF NOT EXISTS idx_games_user_id ON games(user_id)`,
			} {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("failed to apply games schema: %w", err)
				}
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		if _, err := db.NewDropTable().Model((*gamedb.Game)(nil)).IfExists().Cascade().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop games table: %w", err)
		}
		return nil
	})
}
