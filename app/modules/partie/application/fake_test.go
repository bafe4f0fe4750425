package partieservice

import (
	"context"
	"sync"

	"github.com/google/uuid"
	gameservice "github.com/tabletop-ledger/partie/app/modules/game/application"
	gamedomain "github.com/tabletop-ledger/partie/app/modules/game/domain"
	playerservice "github.com/tabletop-ledger/partie/app/modules/player/application"
	playerdomain "github.com/tabletop-ledger/partie/app/modules/player/domain"
	roundservice "github.com/tabletop-ledger/partie/app/modules/round/application"
	rounddomain "github.com/tabletop-ledger/partie/app/modules/round/domain"
	scoreservice "github.com/tabletop-ledger/partie/app/modules/score/application"
	"github.com/tabletop-ledger/partie/app/shared/txn"
)

// callTrace is shared by the fakes so a test can assert the order in which
// the orchestrator reached its collaborators.
type callTrace struct {
	mu    sync.Mutex
	calls []string
}

func (c *callTrace) record(step string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, step)
}

func (c *callTrace) Trace() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

// FakeGameCreator delegates to Next unless a Func override is set.
type FakeGameCreator struct {
	*callTrace
	Next           GameCreator
	CreateGameFunc func(ctx context.Context, req gameservice.CreateGameRequest) (*gamedomain.Game, error)
	StartGameFunc  func(ctx context.Context, gameID uuid.UUID, mission *string, requestingUserID int64) (*gamedomain.Game, error)
}

func (f *FakeGameCreator) CreateGame(ctx context.Context, req gameservice.CreateGameRequest) (*gamedomain.Game, error) {
	f.record("CreateGame")
	if f.CreateGameFunc != nil {
		return f.CreateGameFunc(ctx, req)
	}
	return f.Next.CreateGame(ctx, req)
}

func (f *FakeGameCreator) StartGame(ctx context.Context, gameID uuid.UUID, mission *string, requestingUserID int64) (*gamedomain.Game, error) {
	f.record("StartGame")
	if f.StartGameFunc != nil {
		return f.StartGameFunc(ctx, gameID, mission, requestingUserID)
	}
	return f.Next.StartGame(ctx, gameID, mission, requestingUserID)
}

type FakePlayerAdder struct {
	*callTrace
	Next          PlayerAdder
	AddPlayerFunc func(ctx context.Context, req playerservice.AddPlayerRequest) (*playerdomain.Player, error)
}

func (f *FakePlayerAdder) AddPlayer(ctx context.Context, req playerservice.AddPlayerRequest) (*playerdomain.Player, error) {
	f.record("AddPlayer")
	if f.AddPlayerFunc != nil {
		return f.AddPlayerFunc(ctx, req)
	}
	return f.Next.AddPlayer(ctx, req)
}

type FakeRoundCreator struct {
	*callTrace
	Next            RoundCreator
	CreateRoundFunc func(ctx context.Context, req roundservice.CreateRoundRequest) (*rounddomain.Round, error)
}

func (f *FakeRoundCreator) CreateRound(ctx context.Context, req roundservice.CreateRoundRequest) (*rounddomain.Round, error) {
	f.record("CreateRound")
	if f.CreateRoundFunc != nil {
		return f.CreateRoundFunc(ctx, req)
	}
	return f.Next.CreateRound(ctx, req)
}

type FakeScoreRecorder struct {
	*callTrace
	Next         ScoreRecorder
	AddScoreFunc func(ctx context.Context, req scoreservice.AddScoreRequest) (*scoreservice.ScoreResponse, error)
}

func (f *FakeScoreRecorder) AddScore(ctx context.Context, req scoreservice.AddScoreRequest) (*scoreservice.ScoreResponse, error) {
	f.record("AddScore")
	if f.AddScoreFunc != nil {
		return f.AddScoreFunc(ctx, req)
	}
	return f.Next.AddScore(ctx, req)
}

// FailingCommit runs the unit of work and then reports a commit failure.
type FailingCommit struct {
	Err error
}

func (f FailingCommit) RunInTx(ctx context.Context, fn txn.Func) error {
	scoped, _ := txn.Begin(ctx, nil)
	if err := fn(scoped, nil); err != nil {
		return err
	}
	return f.Err
}
