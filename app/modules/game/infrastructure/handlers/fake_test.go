package gamehandlers

import (
	"context"

	"github.com/google/uuid"
	gameservice "github.com/tabletop-ledger/partie/app/modules/game/application"
	gamedomain "github.com/tabletop-ledger/partie/app/modules/game/domain"
)

// FakeService is a programmable gameservice.Service. Unset funcs return
// gamedomain.ErrGameNotFound.
type FakeService struct {
	CreateGameFunc   func(ctx context.Context, req gameservice.CreateGameRequest) (*gamedomain.Game, error)
	StartGameFunc    func(ctx context.Context, gameID uuid.UUID, mission *string, requestingUserID int64) (*gamedomain.Game, error)
	CompleteGameFunc func(ctx context.Context, gameID uuid.UUID, playerScore, opponentScore int, requestingUserID int64) (*gamedomain.Game, error)
	CancelGameFunc   func(ctx context.Context, gameID uuid.UUID, requestingUserID int64) (*gamedomain.Game, error)
	UpdateNotesFunc  func(ctx context.Context, gameID uuid.UUID, notes string, requestingUserID int64) (*gamedomain.Game, error)
	GetGameFunc      func(ctx context.Context, gameID uuid.UUID) (*gamedomain.Game, error)
	ListGamesFunc    func(ctx context.Context, userID int64) ([]*gamedomain.Game, error)
	DeleteGameFunc   func(ctx context.Context, gameID uuid.UUID, requestingUserID int64) error
}

var _ gameservice.Service = (*FakeService)(nil)

func (f *FakeService) CreateGame(ctx context.Context, req gameservice.CreateGameRequest) (*gamedomain.Game, error) {
	if f.CreateGameFunc != nil {
		return f.CreateGameFunc(ctx, req)
	}
	return nil, gamedomain.ErrGameNotFound
}

func (f *FakeService) StartGame(ctx context.Context, gameID uuid.UUID, mission *string, requestingUserID int64) (*gamedomain.Game, error) {
	if f.StartGameFunc != nil {
		return f.StartGameFunc(ctx, gameID, mission, requestingUserID)
	}
	return nil, gamedomain.ErrGameNotFound
}

func (f *FakeService) CompleteGame(ctx context.Context, gameID uuid.UUID, playerScore, opponentScore int, requestingUserID int64) (*gamedomain.Game, error) {
	if f.CompleteGameFunc != nil {
		return f.CompleteGameFunc(ctx, gameID, playerScore, opponentScore, requestingUserID)
	}
	return nil, gamedomain.ErrGameNotFound
}

func (f *FakeService) CancelGame(ctx context.Context, gameID uuid.UUID, requestingUserID int64) (*gamedomain.Game, error) {
	if f.CancelGameFunc != nil {
		return f.CancelGameFunc(ctx, gameID, requestingUserID)
	}
	return nil, gamedomain.ErrGameNotFound
}

func (f *FakeService) SetOpponent(context.Context, uuid.UUID, int64, int64) (*gamedomain.Game, error) {
	return nil, gamedomain.ErrGameNotFound
}

func (f *FakeService) SetMission(context.Context, uuid.UUID, string, int64) (*gamedomain.Game, error) {
	return nil, gamedomain.ErrGameNotFound
}

func (f *FakeService) UpdateNotes(ctx context.Context, gameID uuid.UUID, notes string, requestingUserID int64) (*gamedomain.Game, error) {
	if f.UpdateNotesFunc != nil {
		return f.UpdateNotesFunc(ctx, gameID, notes, requestingUserID)
	}
	return nil, gamedomain.ErrGameNotFound
}

func (f *FakeService) GetGame(ctx context.Context, gameID uuid.UUID) (*gamedomain.Game, error) {
	if f.GetGameFunc != nil {
		return f.GetGameFunc(ctx, gameID)
	}
	return nil, gamedomain.ErrGameNotFound
}

func (f *FakeService) ListGames(ctx context.Context, userID int64) ([]*gamedomain.Game, error) {
	if f.ListGamesFunc != nil {
		return f.ListGamesFunc(ctx, userID)
	}
	return nil, nil
}

func (f *FakeService) DeleteGame(ctx context.Context, gameID uuid.UUID, requestingUserID int64) error {
	if f.DeleteGameFunc != nil {
		return f.DeleteGameFunc(ctx, gameID, requestingUserID)
	}
	return gamedomain.ErrGameNotFound
}
