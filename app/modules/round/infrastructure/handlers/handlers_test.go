package roundhandlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	roundservice "github.com/tabletop-ledger/partie/app/modules/round/application"
	rounddomain "github.com/tabletop-ledger/partie/app/modules/round/domain"
	"github.com/tabletop-ledger/partie/app/shared/httpx"
	"go.opentelemetry.io/otel/trace/noop"
)

// FakeService records the last request it saw and answers with Round or Err.
type FakeService struct {
	Round  *rounddomain.Round
	Rounds []*rounddomain.Round
	Err    error

	LastCreate      roundservice.CreateRoundRequest
	LastRoundScore  roundservice.UpdateRoundScoreRequest
	LastScores      [2]*int
	LastComplete    [2]int
	LastCount       int
	LastRequesterID int64
}

func (f *FakeService) CreateRound(_ context.Context, req roundservice.CreateRoundRequest) (*rounddomain.Round, error) {
	f.LastCreate, f.LastRequesterID = req, req.RequestingUserID
	return f.Round, f.Err
}

func (f *FakeService) PrepopulateRounds(_ context.Context, _ uuid.UUID, count int, requester int64) ([]*rounddomain.Round, error) {
	f.LastCount, f.LastRequesterID = count, requester
	return f.Rounds, f.Err
}

func (f *FakeService) CompleteRound(_ context.Context, _ uuid.UUID, p, o int, requester int64) (*rounddomain.Round, error) {
	f.LastComplete, f.LastRequesterID = [2]int{p, o}, requester
	return f.Round, f.Err
}

func (f *FakeService) UpdateScores(_ context.Context, _ uuid.UUID, p, o *int, requester int64) (*rounddomain.Round, error) {
	f.LastScores, f.LastRequesterID = [2]*int{p, o}, requester
	return f.Round, f.Err
}

func (f *FakeService) UpdateRoundScore(_ context.Context, req roundservice.UpdateRoundScoreRequest) (*rounddomain.Round, error) {
	f.LastRoundScore, f.LastRequesterID = req, req.RequestingUserID
	return f.Round, f.Err
}

func (f *FakeService) ListRounds(context.Context, uuid.UUID) ([]*rounddomain.Round, error) {
	return f.Rounds, f.Err
}

func serve(svc roundservice.Service, method, path, body string) *httptest.ResponseRecorder {
	h := NewRoundHandlers(svc, slog.New(slog.NewTextHandler(io.Discard, nil)), noop.NewTracerProvider().Tracer("test"))
	r := chi.NewRouter()
	h.Routes(r)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(httpx.WithRequestingUser(req.Context(), 5))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestRoundHandlers_Routes(t *testing.T) {
	gameID, roundID, playerID := uuid.New(), uuid.New(), uuid.New()
	round, err := rounddomain.NewRound(roundID, gameID, 2, time.Now())
	require.NoError(t, err)

	t.Run("create completed round", func(t *testing.T) {
		svc := &FakeService{Round: round}
		rr := serve(svc, http.MethodPost, "/api/games/"+gameID.String()+"/rounds", `{"roundNumber":2,"playerScore":15,"opponentScore":12}`)
		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, 2, svc.LastCreate.Number)
		require.NotNil(t, svc.LastCreate.PlayerScore)
		assert.Equal(t, 15, *svc.LastCreate.PlayerScore)
		assert.Equal(t, int64(5), svc.LastRequesterID)
	})

	t.Run("prepopulate", func(t *testing.T) {
		svc := &FakeService{Rounds: []*rounddomain.Round{round}}
		rr := serve(svc, http.MethodPost, "/api/games/"+gameID.String()+"/rounds/prepopulate", `{"count":5}`)
		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, 5, svc.LastCount)
	})

	t.Run("main player slot score", func(t *testing.T) {
		svc := &FakeService{Round: round}
		rr := serve(svc, http.MethodPut, "/api/games/"+gameID.String()+"/rounds/"+roundID.String()+"/score",
			`{"playerId":"`+playerID.String()+`","score":9}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, roundservice.UpdateRoundScoreRequest{
			GameID: gameID, RoundID: roundID, PlayerID: playerID, Score: 9, RequestingUserID: 5,
		}, svc.LastRoundScore)
	})

	t.Run("complete", func(t *testing.T) {
		svc := &FakeService{Round: round}
		rr := serve(svc, http.MethodPost, "/api/rounds/"+roundID.String()+"/complete", `{"playerScore":10,"opponentScore":4}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, [2]int{10, 4}, svc.LastComplete)

		var view RoundView
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&view))
		assert.Equal(t, 2, view.RoundNumber)
	})

	t.Run("inline edit keeps omitted score nil", func(t *testing.T) {
		svc := &FakeService{Round: round}
		rr := serve(svc, http.MethodPatch, "/api/rounds/"+roundID.String(), `{"playerScore":7}`)
		require.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, svc.LastScores[0])
		assert.Equal(t, 7, *svc.LastScores[0])
		assert.Nil(t, svc.LastScores[1])
	})

	t.Run("list", func(t *testing.T) {
		svc := &FakeService{Rounds: []*rounddomain.Round{round}}
		rr := serve(svc, http.MethodGet, "/api/games/"+gameID.String()+"/rounds", "")
		require.Equal(t, http.StatusOK, rr.Code)
		var got []RoundView
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Len(t, got, 1)
	})
}

func TestRoundHandlers_Errors(t *testing.T) {
	roundID := uuid.New()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "score out of range", err: rounddomain.ErrRoundScoreRange, wantStatus: http.StatusBadRequest},
		{name: "round not found", err: rounddomain.ErrRoundNotFound, wantStatus: http.StatusNotFound},
		{name: "round of another game", err: rounddomain.ErrRoundNotInGame, wantStatus: http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(&FakeService{Err: tt.err}, http.MethodPost, "/api/rounds/"+roundID.String()+"/complete", `{"playerScore":101,"opponentScore":0}`)
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}
