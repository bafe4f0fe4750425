package playerdb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	playerdomain "github.com/tabletop-ledger/partie/app/modules/player/domain"
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

func (r *Impl) Save(ctx context.Context, db bun.IDB, player *playerdomain.Player) (*playerdomain.Player, error) {
	model := fromDomain(player)
	_, err := r.conn(db).NewInsert().
		Model(model).
		On("CONFLICT (id) DO UPDATE").
		Set("user_id = EXCLUDED.user_id").
		Set("is_guest = EXCLUDED.is_guest").
		Set("pseudo = EXCLUDED.pseudo").
		Exec(ctx)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to save player %s: %w", player.ID, err)
	}
	return model.toDomain(), nil
}

func (r *Impl) FindByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*playerdomain.Player, error) {
	model := new(Player)
	err := r.conn(db).NewSelect().Model(model).Where("p.id = ?", id).Scan(ctx)
	if err != nil {
		if dberr.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch player %s: %w", id, err)
	}
	return model.toDomain(), nil
}

func (r *Impl) FindByGameID(ctx context.Context, db bun.IDB, gameID uuid.UUID) ([]*playerdomain.Player, error) {
	var models []Player
	err := r.conn(db).NewSelect().
		Model(&models).
		Where("p.game_id = ?", gameID).
		Order("p.created_at", "p.id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players of game %s: %w", gameID, err)
	}
	out := make([]*playerdomain.Player, 0, len(models))
	for i := range models {
		out = append(out, models[i].toDomain())
	}
	return out, nil
}

func (r *Impl) FindByGameAndUser(ctx context.Context, db bun.IDB, gameID uuid.UUID, userID int64) (*playerdomain.Player, error) {
	model := new(Player)
	err := r.conn(db).NewSelect().
		Model(model).
		Where("p.game_id = ?", gameID).
		Where("p.user_id = ?", userID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if dberr.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch player of user %d in game %s: %w", userID, gameID, err)
	}
	return model.toDomain(), nil
}

func (r *Impl) Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	res, err := r.conn(db).NewDelete().Model((*Player)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete player %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Impl) DeleteByGameID(ctx context.Context, db bun.IDB, gameID uuid.UUID) error {
	if _, err := r.conn(db).NewDelete().Model((*Player)(nil)).Where("game_id = ?", gameID).Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete players of game %s: %w", gameID, err)
	}
	return nil
}
