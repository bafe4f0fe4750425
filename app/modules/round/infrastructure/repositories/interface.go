package rounddb

import (
	"context"

	"github.com/google/uuid"
	rounddomain "github.com/tabletop-ledger/partie/app/modules/round/domain"
	"github.com/uptrace/bun"
)

// Repository defines the contract for round persistence.
//
// Error semantics:
//   - ErrNotFound: the round does not exist (FindByID, Delete)
//   - ErrDuplicate: the game already has a round with the number (Save)
//   - FindByGameIDAndNumber and FindPreviousRound return (nil, nil) when no
//     round matches
type Repository interface {
	Save(ctx context.Context, db bun.IDB, round *rounddomain.Round) (*rounddomain.Round, error)
	FindByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*rounddomain.Round, error)
	// FindByGameID returns the rounds of a game ordered by number.
	FindByGameID(ctx context.Context, db bun.IDB, gameID uuid.UUID) ([]*rounddomain.Round, error)
	FindByGameIDAndNumber(ctx context.Context, db bun.IDB, gameID uuid.UUID, number int) (*rounddomain.Round, error)
	// FindPreviousRound returns the round numbered number-1.
	FindPreviousRound(ctx context.Context, db bun.IDB, gameID uuid.UUID, number int) (*rounddomain.Round, error)
	Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error
	DeleteByGameID(ctx context.Context, db bun.IDB, gameID uuid.UUID) error
}
