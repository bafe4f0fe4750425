package gamedb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	gamedomain "github.com/tabletop-ledger/partie/app/modules/game/domain"
	"github.com/tabletop-ledger/partie/app/shared/dberr"
	"github.com/uptrace/bun"
)

// Impl is the bun-backed Repository.
type Impl struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) Repository {
	return &Impl{db: db}
}

func (r *Impl) conn(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) Save(ctx context.Context, db bun.IDB, game *gamedomain.Game) (*gamedomain.Game, error) {
	model := fromDomain(game)
	_, err := r.conn(db).NewInsert().
		Model(model).
		On("CONFLICT (id) DO UPDATE").
		Set("opponent_id = EXCLUDED.opponent_id").
		Set("status = EXCLUDED.status").
		Set("player_score = EXCLUDED.player_score").
		Set("opponent_score = EXCLUDED.opponent_score").
		Set("mission = EXCLUDED.mission").
		Set("notes = EXCLUDED.notes").
		Set("started_at = EXCLUDED.started_at").
		Set("completed_at = EXCLUDED.completed_at").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to save game %s: %w", game.ID, err)
	}
	return model.toDomain(), nil
}

func (r *Impl) FindByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*gamedomain.Game, error) {
	model := new(Game)
	err := r.conn(db).NewSelect().
		Model(model).
		Where("g.id = ?", id).
		Scan(ctx)
	if err != nil {
		if dberr.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch game %s: %w", id, err)
	}
	return model.toDomain(), nil
}

func (r *Impl) FindAll(ctx context.Context, db bun.IDB) ([]*gamedomain.Game, error) {
	var models []Game
	err := r.conn(db).NewSelect().
		Model(&models).
		Order("g.created_at DESC", "g.id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	out := make([]*gamedomain.Game, 0, len(models))
	for i := range models {
		out = append(out, models[i].toDomain())
	}
	return out, nil
}

func (r *Impl) Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	res, err := r.conn(db).NewDelete().
		Model((*Game)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete game %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
