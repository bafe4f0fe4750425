package scoreservice

import (
	"context"
	"sync"

	"github.com/google/uuid"
	scoredomain "github.com/tabletop-ledger/partie/app/modules/score/domain"
	scoredb "github.com/tabletop-ledger/partie/app/modules/score/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// FakeScoreRepo delegates to a memory repository unless a Func override is
// set.
type FakeScoreRepo struct {
	*scoredb.Memory

	mu    sync.Mutex
	trace []string

	SaveFunc                    func(ctx context.Context, db bun.IDB, score *scoredomain.Score) (*scoredomain.Score, error)
	ExistsChallengerInRoundFunc func(ctx context.Context, db bun.IDB, roundID uuid.UUID) (bool, error)
}

func (f *FakeScoreRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeScoreRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeScoreRepo) Save(ctx context.Context, db bun.IDB, score *scoredomain.Score) (*scoredomain.Score, error) {
	f.record("Save")
	if f.SaveFunc != nil {
		return f.SaveFunc(ctx, db, score)
	}
	return f.Memory.Save(ctx, db, score)
}

func (f *FakeScoreRepo) ExistsChallengerInRound(ctx context.Context, db bun.IDB, roundID uuid.UUID) (bool, error) {
	f.record("ExistsChallengerInRound")
	if f.ExistsChallengerInRoundFunc != nil {
		return f.ExistsChallengerInRoundFunc(ctx, db, roundID)
	}
	return f.Memory.ExistsChallengerInRound(ctx, db, roundID)
}

var _ scoredb.Repository = (*FakeScoreRepo)(nil)
