package gameservice

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	gamedomain "github.com/tabletop-ledger/partie/app/modules/game/domain"
	playerdomain "github.com/tabletop-ledger/partie/app/modules/player/domain"
	"github.com/uptrace/bun"
)

// ParticipantFinder is the part of the player repository access checks need.
type ParticipantFinder interface {
	FindByGameAndUser(ctx context.Context, db bun.IDB, gameID uuid.UUID, userID int64) (*playerdomain.Player, error)
}

// CanAccess reports whether userID owns game or is registered as one of its
// players.
func CanAccess(ctx context.Context, db bun.IDB, players ParticipantFinder, game *gamedomain.Game, userID int64) (bool, error) {
	if game.IsOwner(userID) {
		return true, nil
	}
	p, err := players.FindByGameAndUser(ctx, db, game.ID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to look up participant: %w", err)
	}
	return p != nil, nil
}
