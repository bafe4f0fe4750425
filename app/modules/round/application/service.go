package roundservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	gameservice "github.com/tabletop-ledger/partie/app/modules/game/application"
	gamedomain "github.com/tabletop-ledger/partie/app/modules/game/domain"
	gamedb "github.com/tabletop-ledger/partie/app/modules/game/infrastructure/repositories"
	playerdb "github.com/tabletop-ledger/partie/app/modules/player/infrastructure/repositories"
	rounddomain "github.com/tabletop-ledger/partie/app/modules/round/domain"
	rounddb "github.com/tabletop-ledger/partie/app/modules/round/infrastructure/repositories"
	"github.com/tabletop-ledger/partie/app/shared/apperrors"
	"github.com/tabletop-ledger/partie/app/shared/ids"
	"github.com/tabletop-ledger/partie/app/shared/metrics"
	"github.com/tabletop-ledger/partie/app/shared/operation"
	"github.com/tabletop-ledger/partie/app/shared/txn"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// Service holds the round operations of a game in progress.
type Service interface {
	CreateRound(ctx context.Context, req CreateRoundRequest) (*rounddomain.Round, error)
	PrepopulateRounds(ctx context.Context, gameID uuid.UUID, count int, requestingUserID int64) ([]*rounddomain.Round, error)
	CompleteRound(ctx context.Context, roundID uuid.UUID, playerScore, opponentScore int, requestingUserID int64) (*rounddomain.Round, error)
	UpdateScores(ctx context.Context, roundID uuid.UUID, playerScore, opponentScore *int, requestingUserID int64) (*rounddomain.Round, error)
	UpdateRoundScore(ctx context.Context, req UpdateRoundScoreRequest) (*rounddomain.Round, error)
	ListRounds(ctx context.Context, gameID uuid.UUID) ([]*rounddomain.Round, error)
}

// CreateRoundRequest creates round Number of a game. When both scores are
// set the round is created completed.
type CreateRoundRequest struct {
	GameID           uuid.UUID
	Number           int
	PlayerScore      *int
	OpponentScore    *int
	RequestingUserID int64
}

// UpdateRoundScoreRequest writes Score into the slot of PlayerID.
type UpdateRoundScoreRequest struct {
	GameID           uuid.UUID
	RoundID          uuid.UUID
	PlayerID         uuid.UUID
	Score            int
	RequestingUserID int64
}

type RoundService struct {
	repo    rounddb.Repository
	games   gamedb.Repository
	players playerdb.Repository
	ids     ids.Generator
	runner  *operation.Runner
}

func NewRoundService(
	repo rounddb.Repository,
	games gamedb.Repository,
	players playerdb.Repository,
	idGen ids.Generator,
	logger *slog.Logger,
	m metrics.OperationMetrics,
	tracer trace.Tracer,
	tx txn.Transactor,
) *RoundService {
	if idGen == nil {
		idGen = ids.UUIDGenerator{}
	}
	return &RoundService{
		repo:    repo,
		games:   games,
		players: players,
		ids:     idGen,
		runner:  operation.NewRunner("RoundService", logger, m, tracer, tx),
	}
}

var _ Service = (*RoundService)(nil)

// writableGame loads a game the requester may write rounds to. missing is
// returned instead of ErrGameNotFound when the game cannot be found.
func (s *RoundService) writableGame(ctx context.Context, db bun.IDB, gameID uuid.UUID, requestingUserID int64, missing *apperrors.Error) (*gamedomain.Game, *apperrors.Error, error) {
	game, err := s.games.FindByID(ctx, db, gameID)
	if err != nil {
		if errors.Is(err, gamedb.ErrNotFound) {
			return nil, missing.With("game_id", gameID.String()), nil
		}
		return nil, nil, fmt.Errorf("failed to load game: %w", err)
	}

	ok, err := gameservice.CanAccess(ctx, db, s.players, game, requestingUserID)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, gamedomain.ErrUnauthorized.With("game_id", game.ID.String(), "requesting_user_id", requestingUserID), nil
	}
	if !game.IsInProgress() {
		return nil, gamedomain.ErrNotInProgress.With("game_id", game.ID.String(), "status", string(game.Status)), nil
	}
	return game, nil, nil
}

// roundInWritableGame loads a round and its game. A round whose game is gone
// is reported as missing.
func (s *RoundService) roundInWritableGame(ctx context.Context, db bun.IDB, roundID uuid.UUID, requestingUserID int64) (*rounddomain.Round, *apperrors.Error, error) {
	round, err := s.repo.FindByID(ctx, db, roundID)
	if err != nil {
		if errors.Is(err, rounddb.ErrNotFound) {
			return nil, rounddomain.ErrRoundNotFound.With("round_id", roundID.String()), nil
		}
		return nil, nil, fmt.Errorf("failed to load round: %w", err)
	}
	_, failure, err := s.writableGame(ctx, db, round.GameID, requestingUserID, rounddomain.ErrRoundNotFound.With("round_id", roundID.String()))
	if err != nil || failure != nil {
		return nil, failure, err
	}
	return round, nil, nil
}

func (s *RoundService) save(ctx context.Context, db bun.IDB, round *rounddomain.Round) (*rounddomain.Round, *apperrors.Error, error) {
	saved, err := s.repo.Save(ctx, db, round)
	if err != nil {
		if errors.Is(err, rounddb.ErrDuplicate) {
			return nil, rounddomain.ErrDuplicateRound.With("game_id", round.GameID.String(), "round_number", round.Number), nil
		}
		return nil, nil, fmt.Errorf("failed to save round: %w", err)
	}
	return saved, nil, nil
}
