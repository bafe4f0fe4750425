package app

import (
	"net/http"

	exporthandlers "github.com/tabletop-ledger/partie/app/modules/export/infrastructure/handlers"
	gamehandlers "github.com/tabletop-ledger/partie/app/modules/game/infrastructure/handlers"
	partiehandlers "github.com/tabletop-ledger/partie/app/modules/partie/infrastructure/handlers"
	playerhandlers "github.com/tabletop-ledger/partie/app/modules/player/infrastructure/handlers"
	roundhandlers "github.com/tabletop-ledger/partie/app/modules/round/infrastructure/handlers"
	scorehandlers "github.com/tabletop-ledger/partie/app/modules/score/infrastructure/handlers"
	"github.com/tabletop-ledger/partie/app/server"
)

// Modules returns the HTTP handlers of every module.
func (a *App) Modules() []server.Routes {
	tracer := a.Obs.Tracer("http")
	return []server.Routes{
		partiehandlers.NewPartieHandlers(a.Orchestrator, a.Logger, tracer),
		gamehandlers.NewGameHandlers(a.Games, a.Logger, tracer),
		playerhandlers.NewPlayerHandlers(a.Players, a.Logger, tracer),
		roundhandlers.NewRoundHandlers(a.Rounds, a.Logger, tracer),
		scorehandlers.NewScoreHandlers(a.Scores, a.Logger, tracer),
		exporthandlers.NewExportHandlers(a.Export, a.Logger, tracer),
	}
}

func (a *App) serverOptions() server.Options {
	h := a.Config.HTTP
	return server.Options{
		Address:         h.Address,
		RateLimit:       h.RateLimit,
		RateBurst:       h.RateBurst,
		ShutdownTimeout: h.ShutdownTimeout,
		AllowedOrigins:  h.AllowedOrigins,
		Registry:        a.Obs.Registry,
		Health:          a.storage.health,
	}
}

// Router returns the full HTTP handler.
func (a *App) Router() http.Handler {
	return server.NewRouter(a.serverOptions(), a.Logger, a.Modules()...)
}
