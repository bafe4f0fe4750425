// Package exportservice renders a game's rounds and scores as an XLSX score
// sheet or a PNG progression chart.
package exportservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	gamedomain "github.com/tabletop-ledger/partie/app/modules/game/domain"
	gamedb "github.com/tabletop-ledger/partie/app/modules/game/infrastructure/repositories"
	playerdomain "github.com/tabletop-ledger/partie/app/modules/player/domain"
	playerdb "github.com/tabletop-ledger/partie/app/modules/player/infrastructure/repositories"
	rounddomain "github.com/tabletop-ledger/partie/app/modules/round/domain"
	rounddb "github.com/tabletop-ledger/partie/app/modules/round/infrastructure/repositories"
	scoredomain "github.com/tabletop-ledger/partie/app/modules/score/domain"
	scoredb "github.com/tabletop-ledger/partie/app/modules/score/infrastructure/repositories"
	"github.com/tabletop-ledger/partie/app/shared/metrics"
	"github.com/tabletop-ledger/partie/app/shared/operation"
	"github.com/tabletop-ledger/partie/app/shared/results"
	"github.com/tabletop-ledger/partie/app/shared/txn"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

type Service interface {
	ScoreSheet(ctx context.Context, gameID uuid.UUID) ([]byte, error)
	ProgressionChart(ctx context.Context, gameID uuid.UUID) ([]byte, error)
}

// Snapshot is everything recorded for one game, rounds ordered by number.
type Snapshot struct {
	Game    *gamedomain.Game
	Players []*playerdomain.Player
	Rounds  []*rounddomain.Round
	Scores  map[uuid.UUID][]*scoredomain.Score
}

// Pseudo returns the pseudo of playerID, or its id when unknown.
func (s *Snapshot) Pseudo(playerID uuid.UUID) string {
	for _, p := range s.Players {
		if p.ID == playerID {
			return p.Pseudo
		}
	}
	return playerID.String()
}

type ExportService struct {
	games   gamedb.Repository
	players playerdb.Repository
	rounds  rounddb.Repository
	scores  scoredb.Repository
	palette Palette
	runner  *operation.Runner
}

func NewExportService(
	games gamedb.Repository,
	players playerdb.Repository,
	rounds rounddb.Repository,
	scores scoredb.Repository,
	logger *slog.Logger,
	m metrics.OperationMetrics,
	tracer trace.Tracer,
	tx txn.Transactor,
) *ExportService {
	return &ExportService{
		games:   games,
		players: players,
		rounds:  rounds,
		scores:  scores,
		palette: DefaultPalette,
		runner:  operation.NewRunner("ExportService", logger, m, tracer, tx),
	}
}

var _ Service = (*ExportService)(nil)

type bytesResult = results.OperationResult[[]byte, error]

func (s *ExportService) ScoreSheet(ctx context.Context, gameID uuid.UUID) ([]byte, error) {
	return operation.Execute(s.runner, ctx, "ScoreSheet", gameID.String(), func(ctx context.Context, db bun.IDB) (bytesResult, error) {
		return s.render(ctx, db, gameID, RenderScoreSheet)
	})
}

func (s *ExportService) ProgressionChart(ctx context.Context, gameID uuid.UUID) ([]byte, error) {
	return operation.Execute(s.runner, ctx, "ProgressionChart", gameID.String(), func(ctx context.Context, db bun.IDB) (bytesResult, error) {
		return s.render(ctx, db, gameID, func(snap *Snapshot) ([]byte, error) {
			return RenderProgressionChart(snap, s.palette)
		})
	})
}

func (s *ExportService) render(ctx context.Context, db bun.IDB, gameID uuid.UUID, draw func(*Snapshot) ([]byte, error)) (bytesResult, error) {
	snap, err := s.load(ctx, db, gameID)
	if err != nil {
		if errors.Is(err, gamedb.ErrNotFound) {
			return results.FailureResult[[]byte, error](gamedomain.ErrGameNotFound.With("game_id", gameID.String())), nil
		}
		return bytesResult{}, err
	}
	out, err := draw(snap)
	if err != nil {
		return bytesResult{}, fmt.Errorf("failed to render export: %w", err)
	}
	return results.SuccessResult[[]byte, error](out), nil
}

func (s *ExportService) load(ctx context.Context, db bun.IDB, gameID uuid.UUID) (*Snapshot, error) {
	game, err := s.games.FindByID(ctx, db, gameID)
	if err != nil {
		return nil, err
	}
	players, err := s.players.FindByGameID(ctx, db, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	rounds, err := s.rounds.FindByGameID(ctx, db, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rounds: %w", err)
	}
	snap := &Snapshot{
		Game:    game,
		Players: players,
		Rounds:  rounds,
		Scores:  make(map[uuid.UUID][]*scoredomain.Score, len(rounds)),
	}
	for _, r := range rounds {
		scores, err := s.scores.FindByRoundID(ctx, db, r.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load scores of round %d: %w", r.Number, err)
		}
		snap.Scores[r.ID] = scores
	}
	return snap, nil
}
