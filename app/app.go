// Package app wires configuration, storage, services and transport into a
// runnable process.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	exportservice "github.com/tabletop-ledger/partie/app/modules/export/application"
	gameservice "github.com/tabletop-ledger/partie/app/modules/game/application"
	partieservice "github.com/tabletop-ledger/partie/app/modules/partie/application"
	playerservice "github.com/tabletop-ledger/partie/app/modules/player/application"
	roundservice "github.com/tabletop-ledger/partie/app/modules/round/application"
	scoreservice "github.com/tabletop-ledger/partie/app/modules/score/application"
	"github.com/tabletop-ledger/partie/app/shared/eventbus"
	"github.com/tabletop-ledger/partie/app/shared/ids"
	"github.com/tabletop-ledger/partie/app/shared/observability"
	"github.com/tabletop-ledger/partie/app/shared/observability/attr"
	"github.com/tabletop-ledger/partie/config"
)

// App holds every long-lived component of the process.
type App struct {
	Config *config.Config
	Obs    *observability.Provider
	Logger *slog.Logger

	Games        *gameservice.GameService
	Players      *playerservice.PlayerService
	Rounds       *roundservice.RoundService
	Scores       *scoreservice.ScoreService
	Orchestrator *partieservice.Orchestrator
	Export       *exportservice.ExportService

	storage *storage
	bus     *eventbus.Bus
}

// Options overrides collaborators, mostly for tests.
type Options struct {
	IDs       ids.Generator
	Publisher message.Publisher
}

// New builds the application from cfg. The caller owns obs and must call
// Close on the returned App.
func New(ctx context.Context, cfg *config.Config, obs *observability.Provider, opts Options) (*App, error) {
	logger := obs.Logger

	st, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	bus, err := newBus(cfg, opts.Publisher, logger)
	if err != nil {
		_ = st.close()
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Obs:     obs,
		Logger:  logger,
		storage: st,
		bus:     bus,
	}
	a.wireServices(opts.IDs)

	logger.InfoContext(ctx, "Application initialized",
		attr.String("storage_driver", cfg.Storage.Driver),
		attr.Bool("nats", cfg.NATS.URL != ""),
		attr.Bool("metrics", obs.Registry != nil),
	)
	return a, nil
}

func (a *App) wireServices(idGen ids.Generator) {
	st := a.storage
	m := a.Obs.Metrics
	logger := a.Logger

	a.Games = gameservice.NewGameService(
		st.games,
		[]gameservice.Dependents{st.scores, st.rounds, st.players},
		a.bus, idGen, logger, m, a.Obs.Tracer("GameService"), st.tx,
	)
	a.Players = playerservice.NewPlayerService(st.players, st.games, idGen, logger, m, a.Obs.Tracer("PlayerService"), st.tx)
	a.Rounds = roundservice.NewRoundService(st.rounds, st.games, st.players, idGen, logger, m, a.Obs.Tracer("RoundService"), st.tx)
	a.Scores = scoreservice.NewScoreService(st.scores, st.rounds, st.games, st.players, a.bus, idGen, logger, m, a.Obs.Tracer("ScoreService"), st.tx)
	a.Export = exportservice.NewExportService(st.games, st.players, st.rounds, st.scores, logger, m, a.Obs.Tracer("ExportService"), st.tx)

	a.Orchestrator = partieservice.NewOrchestrator(
		a.Games, a.Players, a.Rounds, a.Scores,
		st.tx, a.bus, logger, m, a.Obs.Tracer("PartieOrchestrator"),
		partieservice.Options{
			TransactionTimeout:      a.Config.Orchestrator.TransactionTimeout,
			MaxRetries:              a.Config.Orchestrator.MaxRetries,
			ValidateCrossReferences: a.Config.CrossReferenceValidation(),
		},
	)
}

func newBus(cfg *config.Config, publisher message.Publisher, logger *slog.Logger) (*eventbus.Bus, error) {
	if publisher != nil {
		return eventbus.New(publisher, logger), nil
	}
	if cfg.NATS.URL != "" {
		nats, err := eventbus.ConnectNATS(cfg.NATS.URL, logger)
		if err != nil {
			return nil, err
		}
		return eventbus.New(nats, logger), nil
	}
	return eventbus.New(eventbus.NewGoChannel(logger), logger), nil
}

// Close releases the event bus and the database.
func (a *App) Close() error {
	var errs []error
	if err := a.bus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close event bus: %w", err))
	}
	if err := a.storage.close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close storage: %w", err))
	}
	return errors.Join(errs...)
}
