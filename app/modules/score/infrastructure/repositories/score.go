package scoredb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	scoredomain "github.com/tabletop-ledger/partie/app/modules/score/domain"
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

func (r *Impl) Save(ctx context.Context, db bun.IDB, score *scoredomain.Score) (*scoredomain.Score, error) {
	model := fromDomain(score)
	_, err := r.conn(db).NewInsert().
		Model(model).
		On("CONFLICT (id) DO UPDATE").
		Set("score_name = EXCLUDED.score_name").
		Set("score_value = EXCLUDED.score_value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to save score %s: %w", score.ID, err)
	}
	return model.toDomain(), nil
}

func (r *Impl) FindByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*scoredomain.Score, error) {
	model := new(Score)
	if err := r.conn(db).NewSelect().Model(model).Where("s.id = ?", id).Scan(ctx); err != nil {
		if dberr.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch score %s: %w", id, err)
	}
	return model.toDomain(), nil
}

func (r *Impl) FindByRoundID(ctx context.Context, db bun.IDB, roundID uuid.UUID) ([]*scoredomain.Score, error) {
	var models []Score
	err := r.conn(db).NewSelect().
		Model(&models).
		Where("s.round_id = ?", roundID).
		Order("s.created_at", "s.id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores of round %s: %w", roundID, err)
	}
	return toDomainSlice(models), nil
}

func (r *Impl) FindByRoundAndPlayer(ctx context.Context, db bun.IDB, roundID, playerID uuid.UUID) ([]*scoredomain.Score, error) {
	var models []Score
	err := r.conn(db).NewSelect().
		Model(&models).
		Where("s.round_id = ?", roundID).
		Where("s.player_id = ?", playerID).
		Order("s.created_at", "s.id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores of player %s in round %s: %w", playerID, roundID, err)
	}
	return toDomainSlice(models), nil
}

func (r *Impl) FindByPlayerInGame(ctx context.Context, db bun.IDB, playerID, gameID uuid.UUID) ([]*scoredomain.Score, error) {
	var models []Score
	err := r.conn(db).NewSelect().
		Model(&models).
		Join("JOIN rounds AS r ON r.id = s.round_id").
		Where("r.game_id = ?", gameID).
		Where("s.player_id = ?", playerID).
		Order("r.number", "s.created_at", "s.id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores of player %s in game %s: %w", playerID, gameID, err)
	}
	return toDomainSlice(models), nil
}

func (r *Impl) ExistsChallengerInRound(ctx context.Context, db bun.IDB, roundID uuid.UUID) (bool, error) {
	exists, err := r.conn(db).NewSelect().
		Model((*Score)(nil)).
		Where("s.round_id = ?", roundID).
		Where("s.score_type = ?", string(scoredomain.TypeChallenger)).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check challenger in round %s: %w", roundID, err)
	}
	return exists, nil
}

func (r *Impl) FindPlayersInGame(ctx context.Context, db bun.IDB, gameID uuid.UUID) ([]uuid.UUID, error) {
	var playerIDs []uuid.UUID
	err := r.conn(db).NewSelect().
		Model((*Score)(nil)).
		ColumnExpr("s.player_id").
		Join("JOIN rounds AS r ON r.id = s.round_id").
		Where("r.game_id = ?", gameID).
		GroupExpr("s.player_id").
		OrderExpr("MIN(s.created_at)").
		Scan(ctx, &playerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list scoring players of game %s: %w", gameID, err)
	}
	return playerIDs, nil
}

func (r *Impl) Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	res, err := r.conn(db).NewDelete().Model((*Score)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete score %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Impl) DeleteByGameID(ctx context.Context, db bun.IDB, gameID uuid.UUID) error {
	conn := r.conn(db)
	rounds := conn.NewSelect().TableExpr("rounds").Column("id").Where("game_id = ?", gameID)
	if _, err := conn.NewDelete().Model((*Score)(nil)).Where("round_id IN (?)", rounds).Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete scores of game %s: %w", gameID, err)
	}
	return nil
}
