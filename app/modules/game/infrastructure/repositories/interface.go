package gamedb

import (
	"context"

	"github.com/google/uuid"
	gamedomain "github.com/tabletop-ledger/partie/app/modules/game/domain"
	"github.com/uptrace/bun"
)

// Repository defines the contract for game persistence. A nil db runs the
// call outside of any transaction.
//
// Error semantics:
//   - ErrNotFound: the game does not exist (FindByID, Delete)
//   - Other errors: infrastructure failures
type Repository interface {
	// Save inserts the game or overwrites the stored copy.
	Save(ctx context.Context, db bun.IDB, game *gamedomain.Game) (*gamedomain.Game, error)
	FindByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*gamedomain.Game, error)
	// FindAll returns every game, newest first.
	FindAll(ctx context.Context, db bun.IDB) ([]*gamedomain.Game, error)
	Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error
}
