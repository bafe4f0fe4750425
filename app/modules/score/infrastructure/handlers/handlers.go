package scorehandlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	scoreservice "github.com/tabletop-ledger/partie/app/modules/score/application"
	"github.com/tabletop-ledger/partie/app/shared/httpx"
	"go.opentelemetry.io/otel/trace"
)

// ScoreHandlers exposes the score recording service over HTTP. Service
// results already carry their JSON shape.
type ScoreHandlers struct {
	service scoreservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

func NewScoreHandlers(service scoreservice.Service, logger *slog.Logger, tracer trace.Tracer) *ScoreHandlers {
	return &ScoreHandlers{service: service, logger: logger, tracer: tracer}
}

func (h *ScoreHandlers) Routes(r chi.Router) {
	r.Post("/api/rounds/{roundID}/scores", h.HandleAddScore)
	r.Get("/api/rounds/{roundID}/scores", h.HandleListScores)
	r.Put("/api/scores/{scoreID}", h.HandleUpdateScore)
	r.Get("/api/games/{gameID}/players/{playerID}/total", h.HandleGetTotal)
}

type addScoreBody struct {
	PlayerID   uuid.UUID `json:"playerId"`
	ScoreType  string    `json:"scoreType"`
	ScoreName  string    `json:"scoreName"`
	ScoreValue int       `json:"scoreValue"`
}

type updateScoreBody struct {
	ScoreValue int     `json:"scoreValue"`
	ScoreName  *string `json:"scoreName"`
}

func (h *ScoreHandlers) HandleAddScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ScoreHandlers.HandleAddScore")
	defer span.End()

	userID, ok := httpx.Requester(w, r)
	if !ok {
		return
	}
	roundID, err := httpx.UUIDParam(r, "roundID")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	var body addScoreBody
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	resp, err := h.service.AddScore(ctx, scoreservice.AddScoreRequest{
		RoundID:          roundID,
		PlayerID:         body.PlayerID,
		Type:             body.ScoreType,
		Name:             body.ScoreName,
		Value:            body.ScoreValue,
		RequestingUserID: userID,
	})
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, resp)
}

func (h *ScoreHandlers) HandleListScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ScoreHandlers.HandleListScores")
	defer span.End()

	roundID, err := httpx.UUIDParam(r, "roundID")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	scores, err := h.service.ListScores(ctx, roundID)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, scores)
}

func (h *ScoreHandlers) HandleUpdateScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ScoreHandlers.HandleUpdateScore")
	defer span.End()

	userID, ok := httpx.Requester(w, r)
	if !ok {
		return
	}
	scoreID, err := httpx.UUIDParam(r, "scoreID")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	var body updateScoreBody
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	resp, err := h.service.UpdateScore(ctx, scoreservice.UpdateScoreRequest{
		ScoreID:          scoreID,
		Value:            body.ScoreValue,
		Name:             body.ScoreName,
		RequestingUserID: userID,
	})
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *ScoreHandlers) HandleGetTotal(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ScoreHandlers.HandleGetTotal")
	defer span.End()

	gameID, err := httpx.UUIDParam(r, "gameID")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	playerID, err := httpx.UUIDParam(r, "playerID")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	total, err := h.service.GetTotal(ctx, playerID, gameID)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, total)
}
