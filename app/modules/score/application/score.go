package scoreservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gamedomain "github.com/tabletop-ledger/partie/app/modules/game/domain"
	gamedb "github.com/tabletop-ledger/partie/app/modules/game/infrastructure/repositories"
	playerdomain "github.com/tabletop-ledger/partie/app/modules/player/domain"
	playerdb "github.com/tabletop-ledger/partie/app/modules/player/infrastructure/repositories"
	rounddomain "github.com/tabletop-ledger/partie/app/modules/round/domain"
	scoredomain "github.com/tabletop-ledger/partie/app/modules/score/domain"
	scoredb "github.com/tabletop-ledger/partie/app/modules/score/infrastructure/repositories"
	"github.com/tabletop-ledger/partie/app/shared/apperrors"
	"github.com/tabletop-ledger/partie/app/shared/eventbus"
	"github.com/tabletop-ledger/partie/app/shared/operation"
	"github.com/tabletop-ledger/partie/app/shared/results"
	"github.com/uptrace/bun"
)

type scoreResult = results.OperationResult[*ScoreResponse, error]

func scoreFailure(err error) (scoreResult, error) {
	return results.FailureResult[*ScoreResponse, error](err), nil
}

// AddScore validates and persists one score.
//
// Input checks run first: the type must be PRIMARY, SECONDARY or
// CHALLENGER, the value must lie in [0,15] and a SECONDARY score needs a
// name. The round and its game are then loaded and the requester must own
// the game or play in it. CHALLENGER scores are refused in round 1, when
// the round already has one, and unless the player trailed the single other
// scoring player by at least six points in the previous round.
func (s *ScoreService) AddScore(ctx context.Context, req AddScoreRequest) (*ScoreResponse, error) {
	return operation.Execute(s.runner, ctx, "AddScore", req.RoundID.String(), func(ctx context.Context, db bun.IDB) (scoreResult, error) {
		return s.addScoreLogic(ctx, db, req)
	})
}

func (s *ScoreService) addScoreLogic(ctx context.Context, db bun.IDB, req AddScoreRequest) (scoreResult, error) {
	scoreType := scoredomain.Type(req.Type)
	if !scoredomain.IsRecordable(scoreType) {
		return scoreFailure(scoredomain.ErrInvalidTypeForService.With("score_type", req.Type))
	}
	if req.Value < scoredomain.MinValue || req.Value > scoredomain.MaxValue {
		return scoreFailure(scoredomain.ErrValueOutOfRange.With("score_type", req.Type, "value", req.Value))
	}
	if scoreType == scoredomain.TypeSecondary && strings.TrimSpace(req.Name) == "" {
		return scoreFailure(scoredomain.ErrNameRequired.With("score_type", req.Type))
	}

	round, game, failure, err := s.roundContext(ctx, db, req.RoundID)
	if err != nil {
		return scoreResult{}, err
	}
	if failure != nil {
		return scoreFailure(failure)
	}
	if failure, err := s.authorize(ctx, db, game, req.RequestingUserID); err != nil {
		return scoreResult{}, err
	} else if failure != nil {
		return scoreFailure(failure)
	}

	player, err := s.players.FindByID(ctx, db, req.PlayerID)
	if err != nil && !errors.Is(err, playerdb.ErrNotFound) {
		return scoreResult{}, fmt.Errorf("failed to load player: %w", err)
	}
	if player == nil || player.GameID != game.ID {
		return scoreFailure(playerdomain.ErrPlayerNotInGame.With("player_id", req.PlayerID.String(), "game_id", game.ID.String()))
	}

	if scoreType == scoredomain.TypeChallenger {
		failure, err := s.checkChallenger(ctx, db, round, req.PlayerID)
		if err != nil {
			return scoreResult{}, err
		}
		if failure != nil {
			return scoreFailure(failure)
		}
	}

	score, err := scoredomain.New(s.ids.NewID(), round.ID, req.PlayerID, scoreType, req.Name, req.Value, time.Now().UTC())
	if err != nil {
		return scoreFailure(err)
	}
	saved, err := s.repo.Save(ctx, db, score)
	if err != nil {
		if errors.Is(err, scoredb.ErrDuplicate) {
			return scoreFailure(scoredomain.ErrDuplicateScore.With(
				"round_id", round.ID.String(),
				"player_id", req.PlayerID.String(),
				"score_type", req.Type,
				"score_name", score.Name,
			))
		}
		return scoreResult{}, fmt.Errorf("failed to save score: %w", err)
	}

	s.publish(ctx, eventbus.ScoreRecordedTopic, scorePayload(saved))

	return s.respond(ctx, db, saved, round, game, req.RequestingUserID)
}

// checkChallenger applies the CHALLENGER eligibility rules in order.
func (s *ScoreService) checkChallenger(ctx context.Context, db bun.IDB, round *rounddomain.Round, playerID uuid.UUID) (*apperrors.Error, error) {
	if round.Number == 1 {
		return scoredomain.ErrChallengerFirstRound.With("round_id", round.ID.String()), nil
	}

	exists, err := s.repo.ExistsChallengerInRound(ctx, db, round.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check challenger: %w", err)
	}
	if exists {
		return scoredomain.ErrChallengerExists.With("round_id", round.ID.String()), nil
	}

	previous, err := s.rounds.FindPreviousRound(ctx, db, round.GameID, round.Number)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous round: %w", err)
	}
	if previous == nil {
		return scoredomain.ErrChallengerFirstRound.With("round_id", round.ID.String(), "round_number", round.Number), nil
	}

	scoring, err := s.repo.FindPlayersInGame(ctx, db, round.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scoring players: %w", err)
	}
	opponent, err := scoredomain.ResolveOpponent(scoring, playerID)
	if err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			return appErr, nil
		}
		return nil, err
	}

	previousScores, err := s.repo.FindByRoundID(ctx, db, previous.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous round scores: %w", err)
	}
	if err := scoredomain.CheckChallengerDeficit(previousScores, playerID, opponent); err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			return appErr.With("previous_round_id", previous.ID.String()), nil
		}
		return nil, err
	}
	return nil, nil
}

// UpdateScore replaces the value, and optionally the name, of a score. The
// range check uses the stored type, which never changes.
func (s *ScoreService) UpdateScore(ctx context.Context, req UpdateScoreRequest) (*ScoreResponse, error) {
	return operation.Execute(s.runner, ctx, "UpdateScore", req.ScoreID.String(), func(ctx context.Context, db bun.IDB) (scoreResult, error) {
		return s.updateScoreLogic(ctx, db, req)
	})
}

func (s *ScoreService) updateScoreLogic(ctx context.Context, db bun.IDB, req UpdateScoreRequest) (scoreResult, error) {
	score, err := s.repo.FindByID(ctx, db, req.ScoreID)
	if err != nil {
		if errors.Is(err, scoredb.ErrNotFound) {
			return scoreFailure(scoredomain.ErrScoreNotFound.With("score_id", req.ScoreID.String()))
		}
		return scoreResult{}, fmt.Errorf("failed to load score: %w", err)
	}

	round, game, failure, err := s.roundContext(ctx, db, score.RoundID)
	if err != nil {
		return scoreResult{}, err
	}
	if failure != nil {
		return scoreFailure(failure)
	}
	if failure, err := s.authorize(ctx, db, game, req.RequestingUserID); err != nil {
		return scoreResult{}, err
	} else if failure != nil {
		return scoreFailure(failure)
	}

	if err := score.Update(req.Value, req.Name, time.Now().UTC()); err != nil {
		return scoreFailure(err)
	}
	saved, err := s.repo.Save(ctx, db, score)
	if err != nil {
		if errors.Is(err, scoredb.ErrDuplicate) {
			return scoreFailure(scoredomain.ErrDuplicateScore.With("score_id", score.ID.String(), "score_name", score.Name))
		}
		return scoreResult{}, fmt.Errorf("failed to save score: %w", err)
	}

	s.publish(ctx, eventbus.ScoreUpdatedTopic, scorePayload(saved))

	return s.respond(ctx, db, saved, round, game, req.RequestingUserID)
}

func (s *ScoreService) respond(ctx context.Context, db bun.IDB, score *scoredomain.Score, round *rounddomain.Round, game *gamedomain.Game, requestingUserID int64) (scoreResult, error) {
	failure, err := s.authorize(ctx, db, game, requestingUserID)
	if err != nil {
		return scoreResult{}, err
	}
	return results.SuccessResult[*ScoreResponse, error](&ScoreResponse{
		Score:       NewScoreView(score),
		GameID:      game.ID,
		RoundNumber: round.Number,
		CanModify:   failure == nil && game.IsInProgress(),
	}), nil
}

func scorePayload(s *scoredomain.Score) eventbus.ScoreRecordedPayload {
	return eventbus.ScoreRecordedPayload{
		ScoreID:  s.ID,
		RoundID:  s.RoundID,
		PlayerID: s.PlayerID,
		Type:     string(s.Type),
		Value:    s.Value,
	}
}

// ListScores is a public read of a round's scores with the identity of its
// game.
func (s *ScoreService) ListScores(ctx context.Context, roundID uuid.UUID) (*RoundScores, error) {
	return operation.Execute(s.runner, ctx, "ListScores", roundID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*RoundScores, error], error) {
		round, game, failure, err := s.roundContext(ctx, db, roundID)
		if err != nil {
			return results.OperationResult[*RoundScores, error]{}, err
		}
		if failure != nil {
			return results.FailureResult[*RoundScores, error](failure), nil
		}
		scores, err := s.repo.FindByRoundID(ctx, db, roundID)
		if err != nil {
			return results.OperationResult[*RoundScores, error]{}, fmt.Errorf("failed to list scores: %w", err)
		}
		views := make([]ScoreView, 0, len(scores))
		for _, sc := range scores {
			views = append(views, NewScoreView(sc))
		}
		return results.SuccessResult[*RoundScores, error](&RoundScores{
			RoundID:     round.ID,
			RoundNumber: round.Number,
			Game: GameRef{
				ID:       game.ID,
				UserID:   game.UserID,
				GameType: string(game.GameType),
				Status:   string(game.Status),
				Mission:  game.Mission,
			},
			Scores: views,
		}), nil
	})
}

// GetTotal sums a player's scores across a game.
func (s *ScoreService) GetTotal(ctx context.Context, playerID, gameID uuid.UUID) (*PlayerTotal, error) {
	return operation.Execute(s.runner, ctx, "GetTotal", playerID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*PlayerTotal, error], error) {
		if _, err := s.games.FindByID(ctx, db, gameID); err != nil {
			if errors.Is(err, gamedb.ErrNotFound) {
				return results.FailureResult[*PlayerTotal, error](gamedomain.ErrGameNotFound.With("game_id", gameID.String())), nil
			}
			return results.OperationResult[*PlayerTotal, error]{}, fmt.Errorf("failed to load game: %w", err)
		}
		scores, err := s.repo.FindByPlayerInGame(ctx, db, playerID, gameID)
		if err != nil {
			return results.OperationResult[*PlayerTotal, error]{}, fmt.Errorf("failed to load player scores: %w", err)
		}
		return results.SuccessResult[*PlayerTotal, error](&PlayerTotal{
			PlayerID:  playerID,
			GameID:    gameID,
			Breakdown: scoredomain.Sum(scores),
		}), nil
	})
}
