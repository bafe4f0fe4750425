package playerdb

import (
	"context"

	"github.com/google/uuid"
	playerdomain "github.com/tabletop-ledger/partie/app/modules/player/domain"
	"github.com/uptrace/bun"
)

// Repository defines the contract for player persistence.
//
// Error semantics:
//   - ErrNotFound: the player does not exist (FindByID, Delete)
//   - ErrDuplicate: the pseudo is already taken in the game, ignoring case (Save)
//   - FindByGameAndUser returns (nil, nil) when the user has no player in the game
type Repository interface {
	Save(ctx context.Context, db bun.IDB, player *playerdomain.Player) (*playerdomain.Player, error)
	FindByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*playerdomain.Player, error)
	// FindByGameID returns the players of a game in creation order.
	FindByGameID(ctx context.Context, db bun.IDB, gameID uuid.UUID) ([]*playerdomain.Player, error)
	FindByGameAndUser(ctx context.Context, db bun.IDB, gameID uuid.UUID, userID int64) (*playerdomain.Player, error)
	Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error
	DeleteByGameID(ctx context.Context, db bun.IDB, gameID uuid.UUID) error
}
