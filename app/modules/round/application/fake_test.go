package roundservice

import (
	"context"
	"sync"

	"github.com/google/uuid"
	rounddomain "github.com/tabletop-ledger/partie/app/modules/round/domain"
	rounddb "github.com/tabletop-ledger/partie/app/modules/round/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// FakeRoundRepo delegates to a memory repository unless a Func override is
// set.
type FakeRoundRepo struct {
	*rounddb.Memory

	mu    sync.Mutex
	trace []string

	SaveFunc                  func(ctx context.Context, db bun.IDB, round *rounddomain.Round) (*rounddomain.Round, error)
	FindByGameIDAndNumberFunc func(ctx context.Context, db bun.IDB, gameID uuid.UUID, number int) (*rounddomain.Round, error)
}

func (f *FakeRoundRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeRoundRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeRoundRepo) Save(ctx context.Context, db bun.IDB, round *rounddomain.Round) (*rounddomain.Round, error) {
	f.record("Save")
	if f.SaveFunc != nil {
		return f.SaveFunc(ctx, db, round)
	}
	return f.Memory.Save(ctx, db, round)
}

func (f *FakeRoundRepo) FindByGameIDAndNumber(ctx context.Context, db bun.IDB, gameID uuid.UUID, number int) (*rounddomain.Round, error) {
	f.record("FindByGameIDAndNumber")
	if f.FindByGameIDAndNumberFunc != nil {
		return f.FindByGameIDAndNumberFunc(ctx, db, gameID, number)
	}
	return f.Memory.FindByGameIDAndNumber(ctx, db, gameID, number)
}

var _ rounddb.Repository = (*FakeRoundRepo)(nil)
