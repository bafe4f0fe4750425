package playerservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	gamedomain "github.com/tabletop-ledger/partie/app/modules/game/domain"
	gamedb "github.com/tabletop-ledger/partie/app/modules/game/infrastructure/repositories"
	playerdomain "github.com/tabletop-ledger/partie/app/modules/player/domain"
	playerdb "github.com/tabletop-ledger/partie/app/modules/player/infrastructure/repositories"
	"github.com/tabletop-ledger/partie/app/shared/ids"
	"github.com/tabletop-ledger/partie/app/shared/metrics"
	"github.com/tabletop-ledger/partie/app/shared/operation"
	"github.com/tabletop-ledger/partie/app/shared/results"
	"github.com/tabletop-ledger/partie/app/shared/txn"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// Service manages the players of a game.
type Service interface {
	AddPlayer(ctx context.Context, req AddPlayerRequest) (*playerdomain.Player, error)
	ListPlayers(ctx context.Context, gameID uuid.UUID) ([]*playerdomain.Player, error)
}

// AddPlayerRequest adds a registered user when UserID is set, a guest
// otherwise.
type AddPlayerRequest struct {
	GameID           uuid.UUID
	Pseudo           string
	UserID           *int64
	RequestingUserID int64
}

type PlayerService struct {
	repo   playerdb.Repository
	games  gamedb.Repository
	ids    ids.Generator
	runner *operation.Runner
}

func NewPlayerService(
	repo playerdb.Repository,
	games gamedb.Repository,
	idGen ids.Generator,
	logger *slog.Logger,
	m metrics.OperationMetrics,
	tracer trace.Tracer,
	tx txn.Transactor,
) *PlayerService {
	if idGen == nil {
		idGen = ids.UUIDGenerator{}
	}
	return &PlayerService{
		repo:   repo,
		games:  games,
		ids:    idGen,
		runner: operation.NewRunner("PlayerService", logger, m, tracer, tx),
	}
}

var _ Service = (*PlayerService)(nil)

type playerResult = results.OperationResult[*playerdomain.Player, error]

func playerFailure(err error) (playerResult, error) {
	return results.FailureResult[*playerdomain.Player, error](err), nil
}

// AddPlayer registers a player on a game the requester owns. Pseudos are
// unique per game regardless of case and a game holds at most
// playerdomain.MaxPlayersPerGame players.
func (s *PlayerService) AddPlayer(ctx context.Context, req AddPlayerRequest) (*playerdomain.Player, error) {
	return operation.Execute(s.runner, ctx, "AddPlayer", req.GameID.String(), func(ctx context.Context, db bun.IDB) (playerResult, error) {
		return s.addPlayerLogic(ctx, db, req)
	})
}

func (s *PlayerService) addPlayerLogic(ctx context.Context, db bun.IDB, req AddPlayerRequest) (playerResult, error) {
	player, err := playerdomain.New(s.ids.NewID(), req.GameID, req.Pseudo, req.UserID, time.Now().UTC())
	if err != nil {
		return playerFailure(err)
	}

	game, err := s.games.FindByID(ctx, db, req.GameID)
	if err != nil {
		if errors.Is(err, gamedb.ErrNotFound) {
			return playerFailure(gamedomain.ErrGameNotFound.With("game_id", req.GameID.String()))
		}
		return playerResult{}, fmt.Errorf("failed to load game: %w", err)
	}
	if !game.IsOwner(req.RequestingUserID) {
		return playerFailure(gamedomain.ErrNotOwner.With("game_id", game.ID.String(), "requesting_user_id", req.RequestingUserID))
	}
	if game.IsClosed() {
		return playerFailure(gamedomain.ErrGameClosed.With("game_id", game.ID.String(), "status", string(game.Status)))
	}

	existing, err := s.repo.FindByGameID(ctx, db, req.GameID)
	if err != nil {
		return playerResult{}, fmt.Errorf("failed to list players: %w", err)
	}
	if len(existing) >= playerdomain.MaxPlayersPerGame {
		return playerFailure(playerdomain.ErrTooManyPlayers.With("game_id", game.ID.String()))
	}
	for _, p := range existing {
		if playerdomain.SamePseudo(p.Pseudo, player.Pseudo) {
			return playerFailure(playerdomain.DuplicatePseudo(player.Pseudo))
		}
		if req.UserID != nil && p.IsUser(*req.UserID) {
			return playerFailure(playerdomain.ErrUserAlreadyIn.With("user_id", *req.UserID))
		}
	}

	saved, err := s.repo.Save(ctx, db, player)
	if err != nil {
		if errors.Is(err, playerdb.ErrDuplicate) {
			return playerFailure(playerdomain.DuplicatePseudo(player.Pseudo))
		}
		return playerResult{}, fmt.Errorf("failed to save player: %w", err)
	}
	return results.SuccessResult[*playerdomain.Player, error](saved), nil
}

// ListPlayers returns the players of a game in the order they were added.
func (s *PlayerService) ListPlayers(ctx context.Context, gameID uuid.UUID) ([]*playerdomain.Player, error) {
	return operation.Execute(s.runner, ctx, "ListPlayers", gameID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[[]*playerdomain.Player, error], error) {
		if _, err := s.games.FindByID(ctx, db, gameID); err != nil {
			if errors.Is(err, gamedb.ErrNotFound) {
				return results.FailureResult[[]*playerdomain.Player, error](gamedomain.ErrGameNotFound.With("game_id", gameID.String())), nil
			}
			return results.OperationResult[[]*playerdomain.Player, error]{}, fmt.Errorf("failed to load game: %w", err)
		}
		players, err := s.repo.FindByGameID(ctx, db, gameID)
		if err != nil {
			return results.OperationResult[[]*playerdomain.Player, error]{}, fmt.Errorf("failed to list players: %w", err)
		}
		return results.SuccessResult[[]*playerdomain.Player, error](players), nil
	})
}
