package scoreservice

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
	scoredb "github.com/tabletop-ledger/partie/app/modules/score/infrastructure/repositories"
	"github.com/tabletop-ledger/partie/app/shared/apperrors"
	"github.com/tabletop-ledger/partie/app/shared/eventbus"
	"github.com/tabletop-ledger/partie/app/shared/ids"
	"github.com/tabletop-ledger/partie/app/shared/metrics"
	"github.com/tabletop-ledger/partie/app/shared/observability/attr"
	"github.com/tabletop-ledger/partie/app/shared/operation"
	"github.com/tabletop-ledger/partie/app/shared/txn"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

type ScoreService struct {
	repo      scoredb.Repository
	rounds    rounddb.Repository
	games     gamedb.Repository
	players   playerdb.Repository
	publisher eventbus.Publisher
	ids       ids.Generator
	runner    *operation.Runner
}

func NewScoreService(
	repo scoredb.Repository,
	rounds rounddb.Repository,
	games gamedb.Repository,
	players playerdb.Repository,
	publisher eventbus.Publisher,
	idGen ids.Generator,
	logger *slog.Logger,
	m metrics.OperationMetrics,
	tracer trace.Tracer,
	tx txn.Transactor,
) *ScoreService {
	if publisher == nil {
		publisher = eventbus.Discard{}
	}
	if idGen == nil {
		idGen = ids.UUIDGenerator{}
	}
	return &ScoreService{
		repo:      repo,
		rounds:    rounds,
		games:     games,
		players:   players,
		publisher: publisher,
		ids:       idGen,
		runner:    operation.NewRunner("ScoreService", logger, m, tracer, tx),
	}
}

var _ Service = (*ScoreService)(nil)

// roundContext loads a round and its game. A round without a game is
// reported as missing, the same as a round that does not exist.
func (s *ScoreService) roundContext(ctx context.Context, db bun.IDB, roundID uuid.UUID) (*rounddomain.Round, *gamedomain.Game, *apperrors.Error, error) {
	round, err := s.rounds.FindByID(ctx, db, roundID)
	if err != nil {
		if errors.Is(err, rounddb.ErrNotFound) {
			return nil, nil, rounddomain.ErrRoundNotFound.With("round_id", roundID.String()), nil
		}
		return nil, nil, nil, fmt.Errorf("failed to load round: %w", err)
	}
	game, err := s.games.FindByID(ctx, db, round.GameID)
	if err != nil {
		if errors.Is(err, gamedb.ErrNotFound) {
			return nil, nil, rounddomain.ErrRoundNotFound.With("round_id", roundID.String()), nil
		}
		return nil, nil, nil, fmt.Errorf("failed to load game: %w", err)
	}
	return round, game, nil, nil
}

// authorize fails with ErrUnauthorized unless the requester owns or plays in
// game.
func (s *ScoreService) authorize(ctx context.Context, db bun.IDB, game *gamedomain.Game, requestingUserID int64) (*apperrors.Error, error) {
	ok, err := gameservice.CanAccess(ctx, db, s.players, game, requestingUserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return gamedomain.ErrUnauthorized.With("game_id", game.ID.String(), "requesting_user_id", requestingUserID), nil
	}
	return nil, nil
}

func (s *ScoreService) publish(ctx context.Context, topic string, payload eventbus.ScoreRecordedPayload) {
	txn.AfterCommit(ctx, func(ctx context.Context) {
		if err := s.publisher.PublishJSON(ctx, topic, payload); err != nil {
			s.runner.Logger().WarnContext(ctx, "Failed to publish score event",
				attr.ExtractCorrelationID(ctx),
				attr.String("topic", topic),
				attr.UUID("score_id", payload.ScoreID),
				attr.Error(err),
			)
		}
	})
}
