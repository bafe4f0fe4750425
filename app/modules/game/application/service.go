package gameservice

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	gamedb "github.com/tabletop-ledger/partie/app/modules/game/infrastructure/repositories"
	"github.com/tabletop-ledger/partie/app/shared/eventbus"
	"github.com/tabletop-ledger/partie/app/shared/ids"
	"github.com/tabletop-ledger/partie/app/shared/metrics"
	"github.com/tabletop-ledger/partie/app/shared/operation"
	"github.com/tabletop-ledger/partie/app/shared/txn"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// Dependents are the repositories holding rows owned by a game. DeleteGame
// clears them in the order given before removing the game itself.
type Dependents interface {
	DeleteByGameID(ctx context.Context, db bun.IDB, gameID uuid.UUID) error
}

// GameService implements Service.
type GameService struct {
	repo       gamedb.Repository
	dependents []Dependents
	publisher  eventbus.Publisher
	ids        ids.Generator
	runner     *operation.Runner
}

func NewGameService(
	repo gamedb.Repository,
	dependents []Dependents,
	publisher eventbus.Publisher,
	idGen ids.Generator,
	logger *slog.Logger,
	m metrics.OperationMetrics,
	tracer trace.Tracer,
	tx txn.Transactor,
) *GameService {
	if publisher == nil {
		publisher = eventbus.Discard{}
	}
	if idGen == nil {
		idGen = ids.UUIDGenerator{}
	}
	return &GameService{
		repo:       repo,
		dependents: dependents,
		publisher:  publisher,
		ids:        idGen,
		runner:     operation.NewRunner("GameService", logger, m, tracer, tx),
	}
}

var _ Service = (*GameService)(nil)
