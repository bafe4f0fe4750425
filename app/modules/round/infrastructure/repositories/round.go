package rounddb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	rounddomain "github.com/tabletop-ledger/partie/app/modules/round/domain"
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

func (r *Impl) Save(ctx context.Context, db bun.IDB, round *rounddomain.Round) (*rounddomain.Round, error) {
	model := fromDomain(round)
	_, err := r.conn(db).NewInsert().
		Model(model).
		On("CONFLICT (id) DO UPDATE").
		Set("player_score = EXCLUDED.player_score").
		Set("opponent_score = EXCLUDED.opponent_score").
		Set("is_completed = EXCLUDED.is_completed").
		Exec(ctx)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to save round %s: %w", round.ID, err)
	}
	return model.toDomain(), nil
}

func (r *Impl) FindByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*rounddomain.Round, error) {
	model := new(Round)
	if err := r.conn(db).NewSelect().Model(model).Where("r.id = ?", id).Scan(ctx); err != nil {
		if dberr.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch round %s: %w", id, err)
	}
	return model.toDomain(), nil
}

func (r *Impl) FindByGameID(ctx context.Context, db bun.IDB, gameID uuid.UUID) ([]*rounddomain.Round, error) {
	var models []Round
	err := r.conn(db).NewSelect().
		Model(&models).
		Where("r.game_id = ?", gameID).
		Order("r.number").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds of game %s: %w", gameID, err)
	}
	out := make([]*rounddomain.Round, 0, len(models))
	for i := range models {
		out = append(out, models[i].toDomain())
	}
	return out, nil
}

func (r *Impl) FindByGameIDAndNumber(ctx context.Context, db bun.IDB, gameID uuid.UUID, number int) (*rounddomain.Round, error) {
	model := new(Round)
	err := r.conn(db).NewSelect().
		Model(model).
		Where("r.game_id = ?", gameID).
		Where("r.number = ?", number).
		Scan(ctx)
	if err != nil {
		if dberr.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch round %d of game %s: %w", number, gameID, err)
	}
	return model.toDomain(), nil
}

func (r *Impl) FindPreviousRound(ctx context.Context, db bun.IDB, gameID uuid.UUID, number int) (*rounddomain.Round, error) {
	if number <= 1 {
		return nil, nil
	}
	return r.FindByGameIDAndNumber(ctx, db, gameID, number-1)
}

func (r *Impl) Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	res, err := r.conn(db).NewDelete().Model((*Round)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete round %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Impl) DeleteByGameID(ctx context.Context, db bun.IDB, gameID uuid.UUID) error {
	if _, err := r.conn(db).NewDelete().Model((*Round)(nil)).Where("game_id = ?", gameID).Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete rounds of game %s: %w", gameID, err)
	}
	return nil
}
