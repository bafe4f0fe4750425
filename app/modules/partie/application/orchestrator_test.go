package partieservice

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gameservice "github.com/tabletop-ledger/partie/app/modules/game/application"
	gamedomain "github.com/tabletop-ledger/partie/app/modules/game/domain"
	gamedb "github.com/tabletop-ledger/partie/app/modules/game/infrastructure/repositories"
	partiedomain "github.com/tabletop-ledger/partie/app/modules/partie/domain"
	playerservice "github.com/tabletop-ledger/partie/app/modules/player/application"
	playerdomain "github.com/tabletop-ledger/partie/app/modules/player/domain"
	playerdb "github.com/tabletop-ledger/partie/app/modules/player/infrastructure/repositories"
	roundservice "github.com/tabletop-ledger/partie/app/modules/round/application"
	rounddomain "github.com/tabletop-ledger/partie/app/modules/round/domain"
	rounddb "github.com/tabletop-ledger/partie/app/modules/round/infrastructure/repositories"
	scoreservice "github.com/tabletop-ledger/partie/app/modules/score/application"
	scoredb "github.com/tabletop-ledger/partie/app/modules/score/infrastructure/repositories"
	"github.com/tabletop-ledger/partie/app/shared/apperrors"
	"github.com/tabletop-ledger/partie/app/shared/eventbus"
	"github.com/tabletop-ledger/partie/app/shared/memdb"
	"github.com/tabletop-ledger/partie/app/shared/metrics"
	"github.com/tabletop-ledger/partie/app/shared/txn"
	"github.com/tabletop-ledger/partie/integration_tests/testutils"
)

const userID int64 = 1

type harness struct {
	store   *memdb.Store
	games   *gamedb.Memory
	players *playerdb.Memory
	rounds  *rounddb.Memory
	scores  *scoredb.Memory
	pub     *eventbus.Recorder
	logs    *bytes.Buffer
	trace   *callTrace

	gameSvc   *FakeGameCreator
	playerSvc *FakePlayerAdder
	roundSvc  *FakeRoundCreator
	scoreSvc  *FakeScoreRecorder
}

// newHarness wires the real services over one memdb store. Every service is
// wrapped in a fake whose Func fields can replace it.
func newHarness(t *testing.T) *harness {
	t.Helper()
	store := memdb.NewStore()
	h := &harness{
		store:   store,
		games:   gamedb.NewMemory(store),
		players: playerdb.NewMemory(store),
		pub:     &eventbus.Recorder{},
		logs:    &bytes.Buffer{},
		trace:   &callTrace{},
	}
	h.rounds = rounddb.NewMemory(store)
	h.scores = scoredb.NewMemory(store, h.rounds)

	logger := slog.New(slog.NewJSONHandler(h.logs, nil))
	m := metrics.NewNoop()

	games := gameservice.NewGameService(h.games, nil, h.pub, nil, logger, m, nil, store)
	players := playerservice.NewPlayerService(h.players, h.games, nil, logger, m, nil, store)
	rounds := roundservice.NewRoundService(h.rounds, h.games, h.players, nil, logger, m, nil, store)
	scores := scoreservice.NewScoreService(h.scores, h.rounds, h.games, h.players, h.pub, nil, logger, m, nil, store)

	h.gameSvc = &FakeGameCreator{callTrace: h.trace, Next: games}
	h.playerSvc = &FakePlayerAdder{callTrace: h.trace, Next: players}
	h.roundSvc = &FakeRoundCreator{callTrace: h.trace, Next: rounds}
	h.scoreSvc = &FakeScoreRecorder{callTrace: h.trace, Next: scores}
	return h
}

func (h *harness) orchestrator(opts Options) *Orchestrator {
	return h.orchestratorWith(h.store, opts)
}

func (h *harness) orchestratorWith(tx txn.Transactor, opts Options) *Orchestrator {
	logger := slog.New(slog.NewJSONHandler(h.logs, nil))
	return NewOrchestrator(h.gameSvc, h.playerSvc, h.roundSvc, h.scoreSvc, tx, h.pub, logger, metrics.NewNoop(), nil, opts)
}

func (h *harness) rows() [4]int {
	return [4]int{h.games.Len(), h.players.Len(), h.rounds.Len(), h.scores.Len()}
}

func intPtr(v int) *int { return &v }

func userPtr(v int64) *int64 { return &v }

// scenarioRequest is a two player, two round partie totalling 33 to 26.
func scenarioRequest() partiedomain.CreatePartieRequest {
	mission := "Take and Hold"
	return partiedomain.CreatePartieRequest{
		UserID:      userID,
		GameType:    "MATCHED_PLAY",
		PointsLimit: 2000,
		Mission:     &mission,
		Players: []partiedomain.PlayerInput{
			{Pseudo: "Warlord", UserID: userPtr(userID)},
			{Pseudo: "Guest"},
		},
		Rounds: []partiedomain.RoundInput{
			{
				RoundNumber: 1, PlayerScore: intPtr(15), OpponentScore: intPtr(12),
				Scores: []partiedomain.ScoreInput{
					{PlayerID: "1", ScoreType: "PRIMARY", ScoreName: "Primary", ScoreValue: 10},
					{PlayerID: "2", ScoreType: "SECONDARY", ScoreName: "Behind Enemy Lines", ScoreValue: 4},
				},
			},
			{
				RoundNumber: 2, PlayerScore: intPtr(18), OpponentScore: intPtr(14),
				Scores: []partiedomain.ScoreInput{
					{PlayerID: "1", ScoreType: "PRIMARY", ScoreName: "Primary", ScoreValue: 12},
					{PlayerID: "2", ScoreType: "SECONDARY", ScoreName: "Engage on All Fronts", ScoreValue: 3},
				},
			},
		},
		RequestingUserID: userID,
	}
}

func TestOrchestrator_CreatePartie_WithRounds(t *testing.T) {
	h := newHarness(t)
	got, err := h.orchestrator(DefaultOptions()).CreatePartie(context.Background(), scenarioRequest())
	require.NoError(t, err)

	assert.Len(t, got.Players, 2)
	assert.Len(t, got.Rounds, 2)
	assert.Len(t, got.Scores, 4)
	assert.Equal(t, 33, got.Summary.TotalPlayerScore)
	assert.Equal(t, 26, got.Summary.TotalOpponentScore)
	assert.Equal(t, partiedomain.SummaryCompleted, got.Summary.Status)
	require.NotNil(t, got.Summary.Mission)
	assert.Equal(t, "Take and Hold", *got.Summary.Mission)
	assert.Equal(t, got.GameID, got.PartieID)

	assert.False(t, got.Players[0].IsGuest)
	assert.True(t, got.Players[1].IsGuest)
	for _, r := range got.Rounds {
		assert.True(t, r.IsCompleted)
	}
	assert.Equal(t, got.Players[0].ID, got.Scores[0].PlayerID)
	assert.Equal(t, got.Players[1].ID, got.Scores[1].PlayerID)
	assert.Equal(t, got.Rounds[1].ID, got.Scores[3].RoundID)

	game, err := h.games.FindByID(context.Background(), nil, got.GameID)
	require.NoError(t, err)
	assert.Equal(t, gamedomain.StatusInProgress, game.Status)
	assert.Equal(t, [4]int{1, 2, 2, 4}, h.rows())

	assert.Equal(t, []string{
		"CreateGame", "AddPlayer", "AddPlayer", "StartGame",
		"CreateRound", "AddScore", "AddScore",
		"CreateRound", "AddScore", "AddScore",
	}, h.trace.Trace())
}

func TestOrchestrator_CreatePartie_WithoutRounds(t *testing.T) {
	h := newHarness(t)
	req := scenarioRequest()
	req.Rounds = nil

	got, err := h.orchestrator(DefaultOptions()).CreatePartie(context.Background(), req)
	require.NoError(t, err)

	assert.Len(t, got.Players, 2)
	assert.NotNil(t, got.Rounds)
	assert.Empty(t, got.Rounds)
	assert.NotNil(t, got.Scores)
	assert.Empty(t, got.Scores)
	assert.Equal(t, partiedomain.SummaryPlanned, got.Summary.Status)
	assert.Zero(t, got.Summary.TotalPlayerScore)
	assert.Zero(t, got.Summary.TotalOpponentScore)

	game, err := h.games.FindByID(context.Background(), nil, got.GameID)
	require.NoError(t, err)
	assert.Equal(t, gamedomain.StatusPlanned, game.Status)
	assert.NotContains(t, h.trace.Trace(), "StartGame")
}

func TestOrchestrator_CreatePartie_RejectedBeforeWriting(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*partiedomain.CreatePartieRequest)
		wantKind apperrors.Kind
		wantMsg  string
	}{
		{
			name: "duplicate pseudo",
			mutate: func(r *partiedomain.CreatePartieRequest) {
				r.Players = []partiedomain.PlayerInput{{Pseudo: "ValidPlayer"}, {Pseudo: "ValidPlayer"}}
				r.Rounds = nil
			},
			wantKind: apperrors.KindValidation,
			wantMsg:  "Duplicate pseudo: ValidPlayer",
		},
		{
			name:     "requester is not the user",
			mutate:   func(r *partiedomain.CreatePartieRequest) { r.RequestingUserID = 999 },
			wantKind: apperrors.KindAuthorization,
			wantMsg:  "requesting user must be the owning user",
		},
		{
			name:     "unknown game type",
			mutate:   func(r *partiedomain.CreatePartieRequest) { r.GameType = "KILL_TEAM" },
			wantKind: apperrors.KindValidation,
		},
		{
			name: "gap in round numbers",
			mutate: func(r *partiedomain.CreatePartieRequest) {
				r.Rounds[1].RoundNumber = 3
			},
			wantKind: apperrors.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			req := scenarioRequest()
			tt.mutate(&req)

			got, err := h.orchestrator(DefaultOptions()).CreatePartie(context.Background(), req)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.Equal(t, tt.wantKind, apperrors.KindOf(err))
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
			assert.Empty(t, h.trace.Trace())
			assert.Equal(t, [4]int{}, h.rows())
			assert.Empty(t, h.pub.Calls())
		})
	}
}

func TestOrchestrator_CreatePartie_RollsBackOnStepFailure(t *testing.T) {
	h := newHarness(t)
	req := scenarioRequest()
	req.Rounds[0].Scores = append(req.Rounds[0].Scores, partiedomain.ScoreInput{
		PlayerID: "1", ScoreType: "CHALLENGER", ScoreName: "Challenger", ScoreValue: 3,
	})

	got, err := h.orchestrator(DefaultOptions()).CreatePartie(context.Background(), req)
	require.Error(t, err)
	assert.Nil(t, got)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindCoordination, appErr.Kind)
	assert.Equal(t, StepCreateRoundsAndScores, appErr.Step)
	assert.Equal(t, sourceName, appErr.Source)
	assert.Equal(t, scoreTarget, appErr.Target)
	assert.Equal(t, 1, appErr.Context["round_number"])
	assert.Equal(t, 1, appErr.Context["player_index"])
	assert.Equal(t, 2, appErr.Context["scores_created"])
	assert.Contains(t, err.Error(), "challenger forbidden in first round")

	assert.Equal(t, [4]int{}, h.rows())
	assert.Empty(t, h.pub.Calls())
}

func TestOrchestrator_CreatePartie_CoordinationErrors(t *testing.T) {
	boom := errors.New("player store unavailable")

	tests := []struct {
		name       string
		setup      func(*harness)
		wantStep   string
		wantTarget string
	}{
		{
			name: "game creation fails",
			setup: func(h *harness) {
				h.gameSvc.CreateGameFunc = func(context.Context, gameservice.CreateGameRequest) (*gamedomain.Game, error) {
					return nil, boom
				}
			},
			wantStep:   StepCreatePartie,
			wantTarget: gameTarget,
		},
		{
			name: "player creation fails",
			setup: func(h *harness) {
				h.playerSvc.AddPlayerFunc = func(context.Context, playerservice.AddPlayerRequest) (*playerdomain.Player, error) {
					return nil, boom
				}
			},
			wantStep:   StepCreatePlayers,
			wantTarget: playerTarget,
		},
		{
			name: "game start fails",
			setup: func(h *harness) {
				h.gameSvc.StartGameFunc = func(context.Context, uuid.UUID, *string, int64) (*gamedomain.Game, error) {
					return nil, gamedomain.ErrNotPlanned
				}
			},
			wantStep:   StepStartGame,
			wantTarget: gameTarget,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			tt.setup(h)

			_, err := h.orchestrator(DefaultOptions()).CreatePartie(context.Background(), scenarioRequest())
			require.Error(t, err)

			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.KindCoordination, appErr.Kind)
			assert.Equal(t, tt.wantStep, appErr.Step)
			assert.Equal(t, tt.wantTarget, appErr.Target)
			assert.Equal(t, [4]int{}, h.rows())
		})
	}
}

func TestOrchestrator_CreatePartie_CrossReferenceMismatch(t *testing.T) {
	h := newHarness(t)
	next := h.scoreSvc.Next
	h.scoreSvc.AddScoreFunc = func(ctx context.Context, req scoreservice.AddScoreRequest) (*scoreservice.ScoreResponse, error) {
		resp, err := next.AddScore(ctx, req)
		if err != nil {
			return nil, err
		}
		resp.Score.RoundID = uuid.New()
		return resp, nil
	}

	_, err := h.orchestrator(DefaultOptions()).CreatePartie(context.Background(), scenarioRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, partiedomain.ErrScoreRoundMismatch)
	assert.Equal(t, apperrors.KindBusinessRule, apperrors.KindOf(err))
	assert.Equal(t, [4]int{}, h.rows())

	t.Run("skipped when disabled", func(t *testing.T) {
		h := newHarness(t)
		h.scoreSvc.AddScoreFunc = func(ctx context.Context, req scoreservice.AddScoreRequest) (*scoreservice.ScoreResponse, error) {
			resp, err := h.scoreSvc.Next.AddScore(ctx, req)
			if err != nil {
				return nil, err
			}
			resp.Score.RoundID = uuid.New()
			return resp, nil
		}
		opts := DefaultOptions()
		opts.ValidateCrossReferences = false

		_, err := h.orchestrator(opts).CreatePartie(context.Background(), scenarioRequest())
		require.NoError(t, err)
		assert.NotContains(t, h.logs.String(), StepValidateCrossReferences)
	})
}

func TestOrchestrator_CreatePartie_Timeout(t *testing.T) {
	h := newHarness(t)
	h.roundSvc.CreateRoundFunc = func(ctx context.Context, _ roundservice.CreateRoundRequest) (*rounddomain.Round, error) {
		return nil, context.DeadlineExceeded
	}

	_, err := h.orchestrator(DefaultOptions()).CreatePartie(context.Background(), scenarioRequest())
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindTimeout, appErr.Kind)
	assert.Equal(t, StepCreateRoundsAndScores, appErr.Context["step"])
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, [4]int{}, h.rows())
}

func TestOrchestrator_CreatePartie_TransactionFailure(t *testing.T) {
	h := newHarness(t)
	commitErr := errors.New("commit refused")

	_, err := h.orchestratorWith(FailingCommit{Err: commitErr}, DefaultOptions()).CreatePartie(context.Background(), scenarioRequest())
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindTransaction, appErr.Kind)
	assert.True(t, appErr.RollbackCompleted)
	assert.ErrorIs(t, err, commitErr)
	assert.NotContains(t, h.pub.Topics(), eventbus.PartieCreatedTopic)
}

func TestOrchestrator_CreatePartie_PublishesAfterCommit(t *testing.T) {
	h := newHarness(t)
	got, err := h.orchestrator(DefaultOptions()).CreatePartie(context.Background(), scenarioRequest())
	require.NoError(t, err)

	assert.Equal(t, []string{
		eventbus.GameStatusChangedTopic,
		eventbus.ScoreRecordedTopic,
		eventbus.ScoreRecordedTopic,
		eventbus.ScoreRecordedTopic,
		eventbus.ScoreRecordedTopic,
		eventbus.PartieCreatedTopic,
	}, h.pub.Topics())

	calls := h.pub.Calls()
	payload, ok := calls[len(calls)-1].Payload.(eventbus.PartieCreatedPayload)
	require.True(t, ok)
	assert.Equal(t, got.GameID, payload.GameID)
	assert.Equal(t, userID, payload.UserID)
	assert.Equal(t, 4, payload.Scores)
	assert.Equal(t, 33, payload.TotalPlayerScore)
	assert.Equal(t, 26, payload.TotalOpponentScore)

	t.Run("publish failure does not fail the partie", func(t *testing.T) {
		h := newHarness(t)
		h.pub.Err = errors.New("broker down")
		_, err := h.orchestrator(DefaultOptions()).CreatePartie(context.Background(), scenarioRequest())
		require.NoError(t, err)
		assert.Equal(t, [4]int{1, 2, 2, 4}, h.rows())
	})
}

func TestOrchestrator_CreatePartie_LogsStepHistory(t *testing.T) {
	h := newHarness(t)
	_, err := h.orchestrator(DefaultOptions()).CreatePartie(context.Background(), scenarioRequest())
	require.NoError(t, err)

	logs := h.logs.String()
	assert.Contains(t, logs, "Partie orchestration completed")
	for _, step := range []string{StepCreatePartie, StepCreatePlayers, StepStartGame, StepCreateRoundsAndScores, StepValidateCrossReferences} {
		assert.Contains(t, logs, step)
	}

	h = newHarness(t)
	req := scenarioRequest()
	req.Rounds[0].Scores[0].ScoreType = "CHALLENGER"
	_, err = h.orchestrator(DefaultOptions()).CreatePartie(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, h.logs.String(), "Partie orchestration failed")
	assert.Contains(t, h.logs.String(), `"failed_step":"create_rounds_and_scores"`)
}

func TestOrchestrator_CreatePartie_GeneratedRequests(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		gen := testutils.NewTestDataGenerator(seed)
		players, rounds := gen.Shape()
		req := gen.GeneratePartieRequest(userID, players, rounds)

		h := newHarness(t)
		got, err := h.orchestrator(DefaultOptions()).CreatePartie(context.Background(), req)
		require.NoError(t, err, "seed %d", seed)

		var wantPlayer, wantOpponent int
		for _, r := range req.Rounds {
			wantPlayer += *r.PlayerScore
			wantOpponent += *r.OpponentScore
		}
		assert.Len(t, got.Players, players, "seed %d", seed)
		assert.Len(t, got.Rounds, rounds, "seed %d", seed)
		assert.Len(t, got.Scores, players*rounds, "seed %d", seed)
		assert.Equal(t, wantPlayer, got.Summary.TotalPlayerScore, "seed %d", seed)
		assert.Equal(t, wantOpponent, got.Summary.TotalOpponentScore, "seed %d", seed)
		if rounds == 0 {
			assert.Equal(t, partiedomain.SummaryPlanned, got.Summary.Status, "seed %d", seed)
		} else {
			assert.Equal(t, partiedomain.SummaryCompleted, got.Summary.Status, "seed %d", seed)
		}
		assert.Equal(t, [4]int{1, players, rounds, players * rounds}, h.rows(), "seed %d", seed)
	}
}
