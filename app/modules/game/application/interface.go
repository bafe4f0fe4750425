package gameservice

import (
	"context"

	"github.com/google/uuid"
	gamedomain "github.com/tabletop-ledger/partie/app/modules/game/domain"
)

// Service is the application layer of the Game aggregate.
type Service interface {
	CreateGame(ctx context.Context, req CreateGameRequest) (*gamedomain.Game, error)
	StartGame(ctx context.Context, gameID uuid.UUID, mission *string, requestingUserID int64) (*gamedomain.Game, error)
	CompleteGame(ctx context.Context, gameID uuid.UUID, playerScore, opponentScore int, requestingUserID int64) (*gamedomain.Game, error)
	CancelGame(ctx context.Context, gameID uuid.UUID, requestingUserID int64) (*gamedomain.Game, error)
	SetOpponent(ctx context.Context, gameID uuid.UUID, opponentID, requestingUserID int64) (*gamedomain.Game, error)
	SetMission(ctx context.Context, gameID uuid.UUID, mission string, requestingUserID int64) (*gamedomain.Game, error)
	UpdateNotes(ctx context.Context, gameID uuid.UUID, notes string, requestingUserID int64) (*gamedomain.Game, error)
	GetGame(ctx context.Context, gameID uuid.UUID) (*gamedomain.Game, error)
	ListGames(ctx context.Context, userID int64) ([]*gamedomain.Game, error)
	DeleteGame(ctx context.Context, gameID uuid.UUID, requestingUserID int64) error
}

// CreateGameRequest carries the fields of a new game.
type CreateGameRequest struct {
	UserID           int64
	GameType         string
	PointsLimit      int
	OpponentID       *int64
	Mission          *string
	Notes            string
	RequestingUserID int64
}
