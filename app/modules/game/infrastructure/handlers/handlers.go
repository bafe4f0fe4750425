package gamehandlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	gameservice "github.com/tabletop-ledger/partie/app/modules/game/application"
	gamedomain "github.com/tabletop-ledger/partie/app/modules/game/domain"
	"github.com/tabletop-ledger/partie/app/shared/httpx"
	"go.opentelemetry.io/otel/trace"
)

// GameHandlers exposes the game service over HTTP.
type GameHandlers struct {
	service gameservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

func NewGameHandlers(service gameservice.Service, logger *slog.Logger, tracer trace.Tracer) *GameHandlers {
	return &GameHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// Routes registers the game endpoints. Other modules add routes below
// /api/games/{gameID}, so paths are registered flat.
func (h *GameHandlers) Routes(r chi.Router) {
	r.Get("/api/games", h.HandleListGames)
	r.Post("/api/games", h.HandleCreateGame)
	r.Get("/api/games/{gameID}", h.HandleGetGame)
	r.Post("/api/games/{gameID}/start", h.HandleStartGame)
	r.Post("/api/games/{gameID}/complete", h.HandleCompleteGame)
	r.Post("/api/games/{gameID}/cancel", h.HandleCancelGame)
	r.Put("/api/games/{gameID}/notes", h.HandleUpdateNotes)
	r.Delete("/api/games/{gameID}", h.HandleDeleteGame)
}

// GameView is the JSON shape of a game.
type GameView struct {
	ID            uuid.UUID  `json:"id"`
	UserID        int64      `json:"userId"`
	OpponentID    *int64     `json:"opponentId,omitempty"`
	GameType      string     `json:"gameType"`
	PointsLimit   int        `json:"pointsLimit"`
	Status        string     `json:"status"`
	PlayerScore   *int       `json:"playerScore,omitempty"`
	OpponentScore *int       `json:"opponentScore,omitempty"`
	Mission       *string    `json:"mission,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	StartedAt     *time.Time `json:"startedAt,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

func NewGameView(g *gamedomain.Game) GameView {
	return GameView{
		ID:            g.ID,
		UserID:        g.UserID,
		OpponentID:    g.OpponentID,
		GameType:      string(g.GameType),
		PointsLimit:   int(g.PointsLimit),
		Status:        string(g.Status),
		PlayerScore:   g.PlayerScore,
		OpponentScore: g.OpponentScore,
		Mission:       g.Mission,
		Notes:         g.Notes,
		CreatedAt:     g.CreatedAt,
		StartedAt:     g.StartedAt,
		CompletedAt:   g.CompletedAt,
	}
}

type createGameBody struct {
	GameType    string  `json:"gameType"`
	PointsLimit int     `json:"pointsLimit"`
	OpponentID  *int64  `json:"opponentId"`
	Mission     *string `json:"mission"`
	Notes       string  `json:"notes"`
}

type startGameBody struct {
	Mission *string `json:"mission"`
}

type completeGameBody struct {
	PlayerScore   int `json:"playerScore"`
	OpponentScore int `json:"opponentScore"`
}

type notesBody struct {
	Notes string `json:"notes"`
}

func (h *GameHandlers) HandleListGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GameHandlers.HandleListGames")
	defer span.End()

	userID, ok := httpx.Requester(w, r)
	if !ok {
		return
	}
	games, err := h.service.ListGames(ctx, userID)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	out := make([]GameView, 0, len(games))
	for _, g := range games {
		out = append(out, NewGameView(g))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *GameHandlers) HandleCreateGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GameHandlers.HandleCreateGame")
	defer span.End()

	userID, ok := httpx.Requester(w, r)
	if !ok {
		return
	}
	var body createGameBody
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	game, err := h.service.CreateGame(ctx, gameservice.CreateGameRequest{
		UserID:           userID,
		GameType:         body.GameType,
		PointsLimit:      body.PointsLimit,
		OpponentID:       body.OpponentID,
		Mission:          body.Mission,
		Notes:            body.Notes,
		RequestingUserID: userID,
	})
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, NewGameView(game))
}

func (h *GameHandlers) HandleGetGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GameHandlers.HandleGetGame")
	defer span.End()

	gameID, err := httpx.UUIDParam(r, "gameID")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	game, err := h.service.GetGame(ctx, gameID)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, NewGameView(game))
}

// HandleStartGame accepts an empty body.
func (h *GameHandlers) HandleStartGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GameHandlers.HandleStartGame")
	defer span.End()

	userID, gameID, ok := h.target(w, r)
	if !ok {
		return
	}
	var body startGameBody
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &body); err != nil {
			httpx.WriteError(w, r, h.logger, err)
			return
		}
	}
	h.respond(w, r)(h.service.StartGame(ctx, gameID, body.Mission, userID))
}

func (h *GameHandlers) HandleCompleteGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GameHandlers.HandleCompleteGame")
	defer span.End()

	userID, gameID, ok := h.target(w, r)
	if !ok {
		return
	}
	var body completeGameBody
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	h.respond(w, r)(h.service.CompleteGame(ctx, gameID, body.PlayerScore, body.OpponentScore, userID))
}

func (h *GameHandlers) HandleCancelGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GameHandlers.HandleCancelGame")
	defer span.End()

	userID, gameID, ok := h.target(w, r)
	if !ok {
		return
	}
	h.respond(w, r)(h.service.CancelGame(ctx, gameID, userID))
}

func (h *GameHandlers) HandleUpdateNotes(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GameHandlers.HandleUpdateNotes")
	defer span.End()

	userID, gameID, ok := h.target(w, r)
	if !ok {
		return
	}
	var body notesBody
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	h.respond(w, r)(h.service.UpdateNotes(ctx, gameID, body.Notes, userID))
}

func (h *GameHandlers) HandleDeleteGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GameHandlers.HandleDeleteGame")
	defer span.End()

	userID, gameID, ok := h.target(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteGame(ctx, gameID, userID); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// target resolves the requesting user and the {gameID} parameter, writing
// the error response itself when either is missing.
func (h *GameHandlers) target(w http.ResponseWriter, r *http.Request) (int64, uuid.UUID, bool) {
	userID, ok := httpx.Requester(w, r)
	if !ok {
		return 0, uuid.Nil, false
	}
	gameID, err := httpx.UUIDParam(r, "gameID")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return 0, uuid.Nil, false
	}
	return userID, gameID, true
}

func (h *GameHandlers) respond(w http.ResponseWriter, r *http.Request) func(*gamedomain.Game, error) {
	return func(game *gamedomain.Game, err error) {
		if err != nil {
			httpx.WriteError(w, r, h.logger, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, NewGameView(game))
	}
}
