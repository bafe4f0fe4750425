package roundhandlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	roundservice "github.com/tabletop-ledger/partie/app/modules/round/application"
	rounddomain "github.com/tabletop-ledger/partie/app/modules/round/domain"
	"github.com/tabletop-ledger/partie/app/shared/httpx"
	"go.opentelemetry.io/otel/trace"
)

// RoundHandlers exposes the round service over HTTP.
type RoundHandlers struct {
	service roundservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

func NewRoundHandlers(service roundservice.Service, logger *slog.Logger, tracer trace.Tracer) *RoundHandlers {
	return &RoundHandlers{service: service, logger: logger, tracer: tracer}
}

func (h *RoundHandlers) Routes(r chi.Router) {
	r.Get("/api/games/{gameID}/rounds", h.HandleListRounds)
	r.Post("/api/games/{gameID}/rounds", h.HandleCreateRound)
	r.Post("/api/games/{gameID}/rounds/prepopulate", h.HandlePrepopulateRounds)
	r.Put("/api/games/{gameID}/rounds/{roundID}/score", h.HandleUpdateRoundScore)
	r.Post("/api/rounds/{roundID}/complete", h.HandleCompleteRound)
	r.Patch("/api/rounds/{roundID}", h.HandleUpdateScores)
}

type RoundView struct {
	ID            uuid.UUID `json:"id"`
	GameID        uuid.UUID `json:"gameId"`
	RoundNumber   int       `json:"roundNumber"`
	PlayerScore   int       `json:"playerScore"`
	OpponentScore int       `json:"opponentScore"`
	IsCompleted   bool      `json:"isCompleted"`
}

func NewRoundView(r *rounddomain.Round) RoundView {
	return RoundView{
		ID:            r.ID,
		GameID:        r.GameID,
		RoundNumber:   r.Number,
		PlayerScore:   r.PlayerScore,
		OpponentScore: r.OpponentScore,
		IsCompleted:   r.IsCompleted,
	}
}

func views(rounds []*rounddomain.Round) []RoundView {
	out := make([]RoundView, 0, len(rounds))
	for _, r := range rounds {
		out = append(out, NewRoundView(r))
	}
	return out
}

type createRoundBody struct {
	RoundNumber   int  `json:"roundNumber"`
	PlayerScore   *int `json:"playerScore"`
	OpponentScore *int `json:"opponentScore"`
}

type prepopulateBody struct {
	Count int `json:"count"`
}

type roundScoreBody struct {
	PlayerID uuid.UUID `json:"playerId"`
	Score    int       `json:"score"`
}

type completeBody struct {
	PlayerScore   int `json:"playerScore"`
	OpponentScore int `json:"opponentScore"`
}

// scoresBody treats an omitted score as zero.
type scoresBody struct {
	PlayerScore   *int `json:"playerScore"`
	OpponentScore *int `json:"opponentScore"`
}

func (h *RoundHandlers) HandleListRounds(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RoundHandlers.HandleListRounds")
	defer span.End()

	gameID, err := httpx.UUIDParam(r, "gameID")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	rounds, err := h.service.ListRounds(ctx, gameID)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, views(rounds))
}

func (h *RoundHandlers) HandleCreateRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RoundHandlers.HandleCreateRound")
	defer span.End()

	var body createRoundBody
	userID, gameID, ok := h.decode(w, r, "gameID", &body)
	if !ok {
		return
	}
	round, err := h.service.CreateRound(ctx, roundservice.CreateRoundRequest{
		GameID:           gameID,
		Number:           body.RoundNumber,
		PlayerScore:      body.PlayerScore,
		OpponentScore:    body.OpponentScore,
		RequestingUserID: userID,
	})
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, NewRoundView(round))
}

func (h *RoundHandlers) HandlePrepopulateRounds(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RoundHandlers.HandlePrepopulateRounds")
	defer span.End()

	var body prepopulateBody
	userID, gameID, ok := h.decode(w, r, "gameID", &body)
	if !ok {
		return
	}
	rounds, err := h.service.PrepopulateRounds(ctx, gameID, body.Count, userID)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, views(rounds))
}

func (h *RoundHandlers) HandleUpdateRoundScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RoundHandlers.HandleUpdateRoundScore")
	defer span.End()

	var body roundScoreBody
	userID, gameID, ok := h.decode(w, r, "gameID", &body)
	if !ok {
		return
	}
	roundID, err := httpx.UUIDParam(r, "roundID")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	h.respond(w, r)(h.service.UpdateRoundScore(ctx, roundservice.UpdateRoundScoreRequest{
		GameID:           gameID,
		RoundID:          roundID,
		PlayerID:         body.PlayerID,
		Score:            body.Score,
		RequestingUserID: userID,
	}))
}

func (h *RoundHandlers) HandleCompleteRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RoundHandlers.HandleCompleteRound")
	defer span.End()

	var body completeBody
	userID, roundID, ok := h.decode(w, r, "roundID", &body)
	if !ok {
		return
	}
	h.respond(w, r)(h.service.CompleteRound(ctx, roundID, body.PlayerScore, body.OpponentScore, userID))
}

func (h *RoundHandlers) HandleUpdateScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RoundHandlers.HandleUpdateScores")
	defer span.End()

	var body scoresBody
	userID, roundID, ok := h.decode(w, r, "roundID", &body)
	if !ok {
		return
	}
	h.respond(w, r)(h.service.UpdateScores(ctx, roundID, body.PlayerScore, body.OpponentScore, userID))
}

// decode resolves the requester, the id parameter and the JSON body.
func (h *RoundHandlers) decode(w http.ResponseWriter, r *http.Request, param string, body any) (int64, uuid.UUID, bool) {
	userID, ok := httpx.Requester(w, r)
	if !ok {
		return 0, uuid.Nil, false
	}
	id, err := httpx.UUIDParam(r, param)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return 0, uuid.Nil, false
	}
	if err := httpx.DecodeJSON(r, body); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return 0, uuid.Nil, false
	}
	return userID, id, true
}

func (h *RoundHandlers) respond(w http.ResponseWriter, r *http.Request) func(*rounddomain.Round, error) {
	return func(round *rounddomain.Round, err error) {
		if err != nil {
			httpx.WriteError(w, r, h.logger, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, NewRoundView(round))
	}
}
