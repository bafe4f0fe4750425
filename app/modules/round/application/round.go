package roundservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gamedomain "github.com/tabletop-ledger/partie/app/modules/game/domain"
	gamedb "github.com/tabletop-ledger/partie/app/modules/game/infrastructure/repositories"
	playerdomain "github.com/tabletop-ledger/partie/app/modules/player/domain"
	playerdb "github.com/tabletop-ledger/partie/app/modules/player/infrastructure/repositories"
	rounddomain "github.com/tabletop-ledger/partie/app/modules/round/domain"
	rounddb "github.com/tabletop-ledger/partie/app/modules/round/infrastructure/repositories"
	"github.com/tabletop-ledger/partie/app/shared/operation"
	"github.com/tabletop-ledger/partie/app/shared/results"
	"github.com/uptrace/bun"
)

type roundResult = results.OperationResult[*rounddomain.Round, error]

type roundsResult = results.OperationResult[[]*rounddomain.Round, error]

func roundFailure(err error) (roundResult, error) {
	return results.FailureResult[*rounddomain.Round, error](err), nil
}

func roundSuccess(r *rounddomain.Round) (roundResult, error) {
	return results.SuccessResult[*rounddomain.Round, error](r), nil
}

// CreateRound adds one round to a game in progress.
func (s *RoundService) CreateRound(ctx context.Context, req CreateRoundRequest) (*rounddomain.Round, error) {
	return operation.Execute(s.runner, ctx, "CreateRound", req.GameID.String(), func(ctx context.Context, db bun.IDB) (roundResult, error) {
		return s.createRoundLogic(ctx, db, req)
	})
}

func (s *RoundService) createRoundLogic(ctx context.Context, db bun.IDB, req CreateRoundRequest) (roundResult, error) {
	round, err := rounddomain.NewRound(s.ids.NewID(), req.GameID, req.Number, time.Now().UTC())
	if err != nil {
		return roundFailure(err)
	}
	if req.PlayerScore != nil && req.OpponentScore != nil {
		if err := round.Complete(*req.PlayerScore, *req.OpponentScore); err != nil {
			return roundFailure(err)
		}
	}

	if _, failure, err := s.writableGame(ctx, db, req.GameID, req.RequestingUserID, gamedomain.ErrGameNotFound); err != nil {
		return roundResult{}, err
	} else if failure != nil {
		return roundFailure(failure)
	}

	existing, err := s.repo.FindByGameIDAndNumber(ctx, db, req.GameID, req.Number)
	if err != nil {
		return roundResult{}, fmt.Errorf("failed to check round number: %w", err)
	}
	if existing != nil {
		return roundFailure(rounddomain.ErrDuplicateRound.With("game_id", req.GameID.String(), "round_number", req.Number))
	}

	saved, failure, err := s.save(ctx, db, round)
	if err != nil {
		return roundResult{}, err
	}
	if failure != nil {
		return roundFailure(failure)
	}
	return roundSuccess(saved)
}

// PrepopulateRounds creates rounds 1..count, all empty. An existing round
// with one of those numbers fails the whole call.
func (s *RoundService) PrepopulateRounds(ctx context.Context, gameID uuid.UUID, count int, requestingUserID int64) ([]*rounddomain.Round, error) {
	return operation.Execute(s.runner, ctx, "PrepopulateRounds", gameID.String(), func(ctx context.Context, db bun.IDB) (roundsResult, error) {
		rounds, err := rounddomain.EmptyRounds(s.ids.NewID, gameID, count, time.Now().UTC())
		if err != nil {
			return results.FailureResult[[]*rounddomain.Round, error](err), nil
		}

		if _, failure, err := s.writableGame(ctx, db, gameID, requestingUserID, gamedomain.ErrGameNotFound); err != nil {
			return roundsResult{}, err
		} else if failure != nil {
			return results.FailureResult[[]*rounddomain.Round, error](failure), nil
		}

		saved := make([]*rounddomain.Round, 0, len(rounds))
		for _, r := range rounds {
			out, failure, err := s.save(ctx, db, r)
			if err != nil {
				return roundsResult{}, err
			}
			if failure != nil {
				return results.FailureResult[[]*rounddomain.Round, error](failure), nil
			}
			saved = append(saved, out)
		}
		return results.SuccessResult[[]*rounddomain.Round, error](saved), nil
	})
}

// CompleteRound sets both scores and marks the round completed. Repeating
// the call with the same scores leaves the round unchanged.
func (s *RoundService) CompleteRound(ctx context.Context, roundID uuid.UUID, playerScore, opponentScore int, requestingUserID int64) (*rounddomain.Round, error) {
	return s.editRound(ctx, "CompleteRound", roundID, requestingUserID, func(r *rounddomain.Round) error {
		return r.Complete(playerScore, opponentScore)
	})
}

// UpdateScores edits both scores without touching completion.
func (s *RoundService) UpdateScores(ctx context.Context, roundID uuid.UUID, playerScore, opponentScore *int, requestingUserID int64) (*rounddomain.Round, error) {
	return s.editRound(ctx, "UpdateScores", roundID, requestingUserID, func(r *rounddomain.Round) error {
		return r.UpdateScores(playerScore, opponentScore)
	})
}

func (s *RoundService) editRound(ctx context.Context, operationName string, roundID uuid.UUID, requestingUserID int64, edit func(*rounddomain.Round) error) (*rounddomain.Round, error) {
	return operation.Execute(s.runner, ctx, operationName, roundID.String(), func(ctx context.Context, db bun.IDB) (roundResult, error) {
		round, failure, err := s.roundInWritableGame(ctx, db, roundID, requestingUserID)
		if err != nil {
			return roundResult{}, err
		}
		if failure != nil {
			return roundFailure(failure)
		}
		if err := edit(round); err != nil {
			return roundFailure(err)
		}
		saved, failure, err := s.save(ctx, db, round)
		if err != nil {
			return roundResult{}, err
		}
		if failure != nil {
			return roundFailure(failure)
		}
		return roundSuccess(saved)
	})
}

// UpdateRoundScore writes a single score into the round. The main player,
// the one registered as the game owner, owns the player slot; any other
// player writes the opponent slot.
func (s *RoundService) UpdateRoundScore(ctx context.Context, req UpdateRoundScoreRequest) (*rounddomain.Round, error) {
	return operation.Execute(s.runner, ctx, "UpdateRoundScore", req.RoundID.String(), func(ctx context.Context, db bun.IDB) (roundResult, error) {
		return s.updateRoundScoreLogic(ctx, db, req)
	})
}

func (s *RoundService) updateRoundScoreLogic(ctx context.Context, db bun.IDB, req UpdateRoundScoreRequest) (roundResult, error) {
	game, failure, err := s.writableGame(ctx, db, req.GameID, req.RequestingUserID, gamedomain.ErrGameNotFound)
	if err != nil {
		return roundResult{}, err
	}
	if failure != nil {
		return roundFailure(failure)
	}

	round, err := s.repo.FindByID(ctx, db, req.RoundID)
	if err != nil {
		if errors.Is(err, rounddb.ErrNotFound) {
			return roundFailure(rounddomain.ErrRoundNotFound.With("round_id", req.RoundID.String()))
		}
		return roundResult{}, fmt.Errorf("failed to load round: %w", err)
	}
	if round.GameID != game.ID {
		return roundFailure(rounddomain.ErrRoundNotInGame.With("round_id", round.ID.String(), "game_id", game.ID.String()))
	}

	player, err := s.players.FindByID(ctx, db, req.PlayerID)
	if err != nil {
		if errors.Is(err, playerdb.ErrNotFound) {
			return roundFailure(playerdomain.ErrPlayerNotFound.With("player_id", req.PlayerID.String()))
		}
		return roundResult{}, fmt.Errorf("failed to load player: %w", err)
	}
	if player.GameID != game.ID {
		return roundFailure(playerdomain.ErrPlayerNotInGame.With("player_id", player.ID.String(), "game_id", game.ID.String()))
	}

	if err := round.SetSlotScore(player.IsUser(game.UserID), req.Score); err != nil {
		return roundFailure(err)
	}
	saved, failure, err := s.save(ctx, db, round)
	if err != nil {
		return roundResult{}, err
	}
	if failure != nil {
		return roundFailure(failure)
	}
	return roundSuccess(saved)
}

// ListRounds returns the rounds of a game ordered by number.
func (s *RoundService) ListRounds(ctx context.Context, gameID uuid.UUID) ([]*rounddomain.Round, error) {
	return operation.Execute(s.runner, ctx, "ListRounds", gameID.String(), func(ctx context.Context, db bun.IDB) (roundsResult, error) {
		if _, err := s.games.FindByID(ctx, db, gameID); err != nil {
			if errors.Is(err, gamedb.ErrNotFound) {
				return results.FailureResult[[]*rounddomain.Round, error](gamedomain.ErrGameNotFound.With("game_id", gameID.String())), nil
			}
			return roundsResult{}, fmt.Errorf("failed to load game: %w", err)
		}
		rounds, err := s.repo.FindByGameID(ctx, db, gameID)
		if err != nil {
			return roundsResult{}, fmt.Errorf("failed to list rounds: %w", err)
		}
		return results.SuccessResult[[]*rounddomain.Round, error](rounds), nil
	})
}
