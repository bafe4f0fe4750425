package scoredb

import (
	"context"

	"github.com/google/uuid"
	scoredomain "github.com/tabletop-ledger/partie/app/modules/score/domain"
	"github.com/uptrace/bun"
)

// Repository defines the contract for score persistence.
//
// Error semantics:
//   - ErrNotFound: the score does not exist (FindByID, Delete)
//   - ErrDuplicate: (round, player, type, name) is already taken (Save)
type Repository interface {
	Save(ctx context.Context, db bun.IDB, score *scoredomain.Score) (*scoredomain.Score, error)
	FindByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*scoredomain.Score, error)
	FindByRoundID(ctx context.Context, db bun.IDB, roundID uuid.UUID) ([]*scoredomain.Score, error)
	FindByRoundAndPlayer(ctx context.Context, db bun.IDB, roundID, playerID uuid.UUID) ([]*scoredomain.Score, error)
	FindByPlayerInGame(ctx context.Context, db bun.IDB, playerID, gameID uuid.UUID) ([]*scoredomain.Score, error)
	ExistsChallengerInRound(ctx context.Context, db bun.IDB, roundID uuid.UUID) (bool, error)
	// FindPlayersInGame returns the distinct ids of players holding at least
	// one score anywhere in the game, in order of their first score.
	FindPlayersInGame(ctx context.Context, db bun.IDB, gameID uuid.UUID) ([]uuid.UUID, error)
	Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error
	DeleteByGameID(ctx context.Context, db bun.IDB, gameID uuid.UUID) error
}
