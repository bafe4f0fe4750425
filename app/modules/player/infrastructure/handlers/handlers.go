package playerhandlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	playerservice "github.com/tabletop-ledger/partie/app/modules/player/application"
	playerdomain "github.com/tabletop-ledger/partie/app/modules/player/domain"
	"github.com/tabletop-ledger/partie/app/shared/httpx"
	"go.opentelemetry.io/otel/trace"
)

type PlayerHandlers struct {
	service playerservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

func NewPlayerHandlers(service playerservice.Service, logger *slog.Logger, tracer trace.Tracer) *PlayerHandlers {
	return &PlayerHandlers{service: service, logger: logger, tracer: tracer}
}

func (h *PlayerHandlers) Routes(r chi.Router) {
	r.Get("/api/games/{gameID}/players", h.HandleListPlayers)
	r.Post("/api/games/{gameID}/players", h.HandleAddPlayer)
}

type PlayerView struct {
	ID        uuid.UUID `json:"id"`
	GameID    uuid.UUID `json:"gameId"`
	Pseudo    string    `json:"pseudo"`
	IsGuest   bool      `json:"isGuest"`
	UserID    *int64    `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewPlayerView(p *playerdomain.Player) PlayerView {
	return PlayerView{
		ID:        p.ID,
		GameID:    p.GameID,
		Pseudo:    p.Pseudo,
		IsGuest:   p.IsGuest,
		UserID:    p.UserID,
		CreatedAt: p.CreatedAt,
	}
}

type addPlayerBody struct {
	Pseudo string `json:"pseudo"`
	UserID *int64 `json:"userId"`
}

func (h *PlayerHandlers) HandleListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PlayerHandlers.HandleListPlayers")
	defer span.End()

	gameID, err := httpx.UUIDParam(r, "gameID")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	players, err := h.service.ListPlayers(ctx, gameID)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	out := make([]PlayerView, 0, len(players))
	for _, p := range players {
		out = append(out, NewPlayerView(p))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *PlayerHandlers) HandleAddPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PlayerHandlers.HandleAddPlayer")
	defer span.End()

	userID, ok := httpx.Requester(w, r)
	if !ok {
		return
	}
	gameID, err := httpx.UUIDParam(r, "gameID")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	var body addPlayerBody
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	player, err := h.service.AddPlayer(ctx, playerservice.AddPlayerRequest{
		GameID:           gameID,
		Pseudo:           body.Pseudo,
		UserID:           body.UserID,
		RequestingUserID: userID,
	})
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, NewPlayerView(player))
}
