package playerservice

import (
	"context"
	"sync"

	"github.com/google/uuid"
	playerdomain "github.com/tabletop-ledger/partie/app/modules/player/domain"
	playerdb "github.com/tabletop-ledger/partie/app/modules/player/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// FakePlayerRepo wraps a memory repository and lets tests override single
// methods.
type FakePlayerRepo struct {
	*playerdb.Memory

	mu    sync.Mutex
	trace []string

	SaveFunc         func(ctx context.Context, db bun.IDB, player *playerdomain.Player) (*playerdomain.Player, error)
	FindByGameIDFunc func(ctx context.Context, db bun.IDB, gameID uuid.UUID) ([]*playerdomain.Player, error)
}

func (f *FakePlayerRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakePlayerRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakePlayerRepo) Save(ctx context.Context, db bun.IDB, player *playerdomain.Player) (*playerdomain.Player, error) {
	f.record("Save")
	if f.SaveFunc != nil {
		return f.SaveFunc(ctx, db, player)
	}
	return f.Memory.Save(ctx, db, player)
}

func (f *FakePlayerRepo) FindByGameID(ctx context.Context, db bun.IDB, gameID uuid.UUID) ([]*playerdomain.Player, error) {
	f.record("FindByGameID")
	if f.FindByGameIDFunc != nil {
		return f.FindByGameIDFunc(ctx, db, gameID)
	}
	return f.Memory.FindByGameID(ctx, db, gameID)
}

var _ playerdb.Repository = (*FakePlayerRepo)(nil)
