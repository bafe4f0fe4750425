package gameservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gamedomain "github.com/tabletop-ledger/partie/app/modules/game/domain"
	gamedb "github.com/tabletop-ledger/partie/app/modules/game/infrastructure/repositories"
	"github.com/tabletop-ledger/partie/app/shared/apperrors"
	"github.com/tabletop-ledger/partie/app/shared/eventbus"
	"github.com/tabletop-ledger/partie/app/shared/observability/attr"
	"github.com/tabletop-ledger/partie/app/shared/operation"
	"github.com/tabletop-ledger/partie/app/shared/results"
	"github.com/tabletop-ledger/partie/app/shared/txn"
	"github.com/uptrace/bun"
)

type gameResult = results.OperationResult[*gamedomain.Game, error]

func gameFailure(err error) (gameResult, error) {
	return results.FailureResult[*gamedomain.Game, error](err), nil
}

// CreateGame persists a PLANNED game owned by req.UserID.
func (s *GameService) CreateGame(ctx context.Context, req CreateGameRequest) (*gamedomain.Game, error) {
	return operation.Execute(s.runner, ctx, "CreateGame", fmt.Sprint(req.UserID), func(ctx context.Context, db bun.IDB) (gameResult, error) {
		return s.createGameLogic(ctx, db, req)
	})
}

func (s *GameService) createGameLogic(ctx context.Context, db bun.IDB, req CreateGameRequest) (gameResult, error) {
	if req.RequestingUserID != req.UserID {
		return gameFailure(gamedomain.ErrRequesterNotUser.With("user_id", req.UserID, "requesting_user_id", req.RequestingUserID))
	}
	gameType, err := gamedomain.ParseGameType(req.GameType)
	if err != nil {
		return gameFailure(err)
	}
	points, err := gamedomain.ParsePointsLimit(req.PointsLimit)
	if err != nil {
		return gameFailure(err)
	}

	game, err := gamedomain.New(s.ids.NewID(), req.UserID, gameType, points, time.Now().UTC())
	if err != nil {
		return gameFailure(err)
	}
	if req.OpponentID != nil {
		if err := game.SetOpponent(*req.OpponentID); err != nil {
			return gameFailure(err)
		}
	}
	if req.Mission != nil {
		if err := game.SetMission(*req.Mission); err != nil {
			return gameFailure(err)
		}
	}
	game.UpdateNotes(req.Notes)

	saved, err := s.repo.Save(ctx, db, game)
	if err != nil {
		return gameResult{}, fmt.Errorf("failed to create game: %w", err)
	}
	return results.SuccessResult[*gamedomain.Game, error](saved), nil
}

// loadOwned fetches a game and checks that requestingUserID owns it.
func (s *GameService) loadOwned(ctx context.Context, db bun.IDB, gameID uuid.UUID, requestingUserID int64) (*gamedomain.Game, *apperrors.Error, error) {
	game, err := s.repo.FindByID(ctx, db, gameID)
	if err != nil {
		if errors.Is(err, gamedb.ErrNotFound) {
			return nil, gamedomain.ErrGameNotFound.With("game_id", gameID.String()), nil
		}
		return nil, nil, fmt.Errorf("failed to load game: %w", err)
	}
	if !game.IsOwner(requestingUserID) {
		return nil, gamedomain.ErrNotOwner.With("game_id", gameID.String(), "requesting_user_id", requestingUserID), nil
	}
	return game, nil, nil
}

// mutate runs change against an owned game and saves the result. When the
// status moves, game.status_changed.v1 is published once the surrounding
// transaction commits.
func (s *GameService) mutate(ctx context.Context, operationName string, gameID uuid.UUID, requestingUserID int64, change func(g *gamedomain.Game) error) (*gamedomain.Game, error) {
	return operation.Execute(s.runner, ctx, operationName, gameID.String(), func(ctx context.Context, db bun.IDB) (gameResult, error) {
		game, failure, err := s.loadOwned(ctx, db, gameID, requestingUserID)
		if err != nil {
			return gameResult{}, err
		}
		if failure != nil {
			return gameFailure(failure)
		}

		from := game.Status
		if err := change(game); err != nil {
			return gameFailure(err)
		}

		saved, err := s.repo.Save(ctx, db, game)
		if err != nil {
			return gameResult{}, fmt.Errorf("failed to save game: %w", err)
		}
		if saved.Status != from {
			s.publishStatusChange(ctx, saved, from)
		}
		return results.SuccessResult[*gamedomain.Game, error](saved), nil
	})
}

func (s *GameService) publishStatusChange(ctx context.Context, game *gamedomain.Game, from gamedomain.Status) {
	payload := eventbus.GameStatusChangedPayload{
		GameID:     game.ID,
		UserID:     game.UserID,
		FromStatus: string(from),
		ToStatus:   string(game.Status),
		ChangedAt:  time.Now().UTC(),
	}
	txn.AfterCommit(ctx, func(ctx context.Context) {
		if err := s.publisher.PublishJSON(ctx, eventbus.GameStatusChangedTopic, payload); err != nil {
			s.runner.Logger().WarnContext(ctx, "Failed to publish game status change",
				attr.ExtractCorrelationID(ctx),
				attr.UUID("game_id", game.ID),
				attr.Error(err),
			)
		}
	})
}

func (s *GameService) StartGame(ctx context.Context, gameID uuid.UUID, mission *string, requestingUserID int64) (*gamedomain.Game, error) {
	return s.mutate(ctx, "StartGame", gameID, requestingUserID, func(g *gamedomain.Game) error {
		return g.Start(mission, time.Now().UTC())
	})
}

func (s *GameService) CompleteGame(ctx context.Context, gameID uuid.UUID, playerScore, opponentScore int, requestingUserID int64) (*gamedomain.Game, error) {
	return s.mutate(ctx, "CompleteGame", gameID, requestingUserID, func(g *gamedomain.Game) error {
		return g.Complete(playerScore, opponentScore, time.Now().UTC())
	})
}

func (s *GameService) CancelGame(ctx context.Context, gameID uuid.UUID, requestingUserID int64) (*gamedomain.Game, error) {
	return s.mutate(ctx, "CancelGame", gameID, requestingUserID, func(g *gamedomain.Game) error {
		return g.Cancel()
	})
}

func (s *GameService) SetOpponent(ctx context.Context, gameID uuid.UUID, opponentID, requestingUserID int64) (*gamedomain.Game, error) {
	return s.mutate(ctx, "SetOpponent", gameID, requestingUserID, func(g *gamedomain.Game) error {
		return g.SetOpponent(opponentID)
	})
}

func (s *GameService) SetMission(ctx context.Context, gameID uuid.UUID, mission string, requestingUserID int64) (*gamedomain.Game, error) {
	return s.mutate(ctx, "SetMission", gameID, requestingUserID, func(g *gamedomain.Game) error {
		return g.SetMission(mission)
	})
}

func (s *GameService) UpdateNotes(ctx context.Context, gameID uuid.UUID, notes string, requestingUserID int64) (*gamedomain.Game, error) {
	return s.mutate(ctx, "UpdateNotes", gameID, requestingUserID, func(g *gamedomain.Game) error {
		g.UpdateNotes(notes)
		return nil
	})
}

// GetGame is a public read.
func (s *GameService) GetGame(ctx context.Context, gameID uuid.UUID) (*gamedomain.Game, error) {
	return operation.Execute(s.runner, ctx, "GetGame", gameID.String(), func(ctx context.Context, db bun.IDB) (gameResult, error) {
		game, err := s.repo.FindByID(ctx, db, gameID)
		if err != nil {
			if errors.Is(err, gamedb.ErrNotFound) {
				return gameFailure(gamedomain.ErrGameNotFound.With("game_id", gameID.String()))
			}
			return gameResult{}, fmt.Errorf("failed to load game: %w", err)
		}
		return results.SuccessResult[*gamedomain.Game, error](game), nil
	})
}

// ListGames returns the games owned by userID, newest first.
func (s *GameService) ListGames(ctx context.Context, userID int64) ([]*gamedomain.Game, error) {
	return operation.Execute(s.runner, ctx, "ListGames", fmt.Sprint(userID), func(ctx context.Context, db bun.IDB) (results.OperationResult[[]*gamedomain.Game, error], error) {
		all, err := s.repo.FindAll(ctx, db)
		if err != nil {
			return results.OperationResult[[]*gamedomain.Game, error]{}, fmt.Errorf("failed to list games: %w", err)
		}
		owned := make([]*gamedomain.Game, 0, len(all))
		for _, g := range all {
			if g.IsOwner(userID) {
				owned = append(owned, g)
			}
		}
		return results.SuccessResult[[]*gamedomain.Game, error](owned), nil
	})
}

// DeleteGame removes a game with its players, rounds and scores.
func (s *GameService) DeleteGame(ctx context.Context, gameID uuid.UUID, requestingUserID int64) error {
	_, err := operation.Execute(s.runner, ctx, "DeleteGame", gameID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[struct{}, error], error) {
		_, failure, err := s.loadOwned(ctx, db, gameID, requestingUserID)
		if err != nil {
			return results.OperationResult[struct{}, error]{}, err
		}
		if failure != nil {
			return results.FailureResult[struct{}, error](failure), nil
		}
		for _, d := range s.dependents {
			if err := d.DeleteByGameID(ctx, db, gameID); err != nil {
				return results.OperationResult[struct{}, error]{}, fmt.Errorf("failed to delete game dependents: %w", err)
			}
		}
		if err := s.repo.Delete(ctx, db, gameID); err != nil {
			return results.OperationResult[struct{}, error]{}, fmt.Errorf("failed to delete game: %w", err)
		}
		return results.SuccessResult[struct{}, error](struct{}{}), nil
	})
	return err
}
