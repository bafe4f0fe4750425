package scorehandlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	rounddomain "github.com/tabletop-ledger/partie/app/modules/round/domain"
	scoreservice "github.com/tabletop-ledger/partie/app/modules/score/application"
	scoredomain "github.com/tabletop-ledger/partie/app/modules/score/domain"
	"github.com/tabletop-ledger/partie/app/shared/httpx"
	"go.opentelemetry.io/otel/trace/noop"
)

type FakeService struct {
	AddScoreFunc    func(ctx context.Context, req scoreservice.AddScoreRequest) (*scoreservice.ScoreResponse, error)
	UpdateScoreFunc func(ctx context.Context, req scoreservice.UpdateScoreRequest) (*scoreservice.ScoreResponse, error)
	ListScoresFunc  func(ctx context.Context, roundID uuid.UUID) (*scoreservice.RoundScores, error)
	GetTotalFunc    func(ctx context.Context, playerID, gameID uuid.UUID) (*scoreservice.PlayerTotal, error)
}

func (f *FakeService) AddScore(ctx context.Context, req scoreservice.AddScoreRequest) (*scoreservice.ScoreResponse, error) {
	return f.AddScoreFunc(ctx, req)
}

func (f *FakeService) UpdateScore(ctx context.Context, req scoreservice.UpdateScoreRequest) (*scoreservice.ScoreResponse, error) {
	return f.UpdateScoreFunc(ctx, req)
}

func (f *FakeService) ListScores(ctx context.Context, roundID uuid.UUID) (*scoreservice.RoundScores, error) {
	return f.ListScoresFunc(ctx, roundID)
}

func (f *FakeService) GetTotal(ctx context.Context, playerID, gameID uuid.UUID) (*scoreservice.PlayerTotal, error) {
	return f.GetTotalFunc(ctx, playerID, gameID)
}

func serve(svc scoreservice.Service, method, path, body string, asUser bool) *httptest.ResponseRecorder {
	h := NewScoreHandlers(svc, slog.New(slog.NewTextHandler(io.Discard, nil)), noop.NewTracerProvider().Tracer("test"))
	r := chi.NewRouter()
	h.Routes(r)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if asUser {
		req = req.WithContext(httpx.WithRequestingUser(req.Context(), 1))
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestScoreHandlers_AddScore(t *testing.T) {
	roundID, playerID := uuid.New(), uuid.New()
	body := `{"playerId":"` + playerID.String() + `","scoreType":"SECONDARY","scoreName":"Assassinate","scoreValue":5}`

	tests := []struct {
		name       string
		asUser     bool
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "recorded", asUser: true, wantStatus: http.StatusCreated},
		{name: "anonymous", wantStatus: http.StatusUnauthorized, wantCode: "missing_user"},
		{name: "value out of range", asUser: true, err: scoredomain.ErrValueOutOfRange, wantStatus: http.StatusBadRequest, wantCode: "score_out_of_range"},
		{name: "challenger twice", asUser: true, err: scoredomain.ErrChallengerExists, wantStatus: http.StatusUnprocessableEntity, wantCode: "challenger_already_exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got scoreservice.AddScoreRequest
			svc := &FakeService{AddScoreFunc: func(_ context.Context, req scoreservice.AddScoreRequest) (*scoreservice.ScoreResponse, error) {
				got = req
				if tt.err != nil {
					return nil, tt.err
				}
				return &scoreservice.ScoreResponse{
					Score:       scoreservice.ScoreView{ID: uuid.New(), RoundID: req.RoundID, PlayerID: req.PlayerID, Type: req.Type, Name: req.Name, Value: req.Value},
					RoundNumber: 2,
					CanModify:   true,
				}, nil
			}}

			rr := serve(svc, http.MethodPost, "/api/rounds/"+roundID.String()+"/scores", body, tt.asUser)
			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantCode != "" {
				var e httpx.ErrorBody
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&e))
				assert.Equal(t, tt.wantCode, e.Error.Code)
				return
			}

			assert.Equal(t, scoreservice.AddScoreRequest{
				RoundID: roundID, PlayerID: playerID, Type: "SECONDARY", Name: "Assassinate", Value: 5, RequestingUserID: 1,
			}, got)
			var resp scoreservice.ScoreResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, "Assassinate", resp.Score.Name)
			assert.True(t, resp.CanModify)
		})
	}
}

func TestScoreHandlers_UpdateScore(t *testing.T) {
	scoreID := uuid.New()
	var got scoreservice.UpdateScoreRequest
	svc := &FakeService{UpdateScoreFunc: func(_ context.Context, req scoreservice.UpdateScoreRequest) (*scoreservice.ScoreResponse, error) {
		got = req
		return &scoreservice.ScoreResponse{Score: scoreservice.ScoreView{ID: req.ScoreID, Value: req.Value}}, nil
	}}

	rr := serve(svc, http.MethodPut, "/api/scores/"+scoreID.String(), `{"scoreValue":-4,"scoreName":"Late deployment"}`, true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, scoreID, got.ScoreID)
	assert.Equal(t, -4, got.Value)
	require.NotNil(t, got.Name)
	assert.Equal(t, "Late deployment", *got.Name)
}

func TestScoreHandlers_Reads(t *testing.T) {
	roundID, gameID, playerID := uuid.New(), uuid.New(), uuid.New()
	svc := &FakeService{
		ListScoresFunc: func(_ context.Context, id uuid.UUID) (*scoreservice.RoundScores, error) {
			if id != roundID {
				return nil, rounddomain.ErrRoundNotFound
			}
			return &scoreservice.RoundScores{RoundID: id, RoundNumber: 1, Scores: []scoreservice.ScoreView{}}, nil
		},
		GetTotalFunc: func(_ context.Context, p, g uuid.UUID) (*scoreservice.PlayerTotal, error) {
			return &scoreservice.PlayerTotal{PlayerID: p, GameID: g, Breakdown: scoredomain.Total{Primary: 20, Secondary: 6, Total: 26}}, nil
		},
	}

	rr := serve(svc, http.MethodGet, "/api/rounds/"+roundID.String()+"/scores", "", false)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = serve(svc, http.MethodGet, "/api/rounds/"+uuid.NewString()+"/scores", "", false)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = serve(svc, http.MethodGet, "/api/games/"+gameID.String()+"/players/"+playerID.String()+"/total", "", false)
	require.Equal(t, http.StatusOK, rr.Code)
	var total scoreservice.PlayerTotal
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&total))
	assert.Equal(t, 26, total.Breakdown.Total)
	assert.Equal(t, playerID, total.PlayerID)
}
