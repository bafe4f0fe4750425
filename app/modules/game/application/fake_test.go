package gameservice

import (
	"context"
	"sync"

	"github.com/google/uuid"
	gamedomain "github.com/tabletop-ledger/partie/app/modules/game/domain"
	gamedb "github.com/tabletop-ledger/partie/app/modules/game/infrastructure/repositories"
	playerdomain "github.com/tabletop-ledger/partie/app/modules/player/domain"
	"github.com/uptrace/bun"
)

// FakeGameRepo is a programmable gamedb.Repository.
type FakeGameRepo struct {
	mu    sync.Mutex
	trace []string

	SaveFunc     func(ctx context.Context, db bun.IDB, game *gamedomain.Game) (*gamedomain.Game, error)
	FindByIDFunc func(ctx context.Context, db bun.IDB, id uuid.UUID) (*gamedomain.Game, error)
	FindAllFunc  func(ctx context.Context, db bun.IDB) ([]*gamedomain.Game, error)
	DeleteFunc   func(ctx context.Context, db bun.IDB, id uuid.UUID) error
}

func NewFakeGameRepo() *FakeGameRepo {
	return &FakeGameRepo{}
}

func (f *FakeGameRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeGameRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeGameRepo) Save(ctx context.Context, db bun.IDB, game *gamedomain.Game) (*gamedomain.Game, error) {
	f.record("Save")
	if f.SaveFunc != nil {
		return f.SaveFunc(ctx, db, game)
	}
	return game, nil
}

func (f *FakeGameRepo) FindByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*gamedomain.Game, error) {
	f.record("FindByID")
	if f.FindByIDFunc != nil {
		return f.FindByIDFunc(ctx, db, id)
	}
	return nil, gamedb.ErrNotFound
}

func (f *FakeGameRepo) FindAll(ctx context.Context, db bun.IDB) ([]*gamedomain.Game, error) {
	f.record("FindAll")
	if f.FindAllFunc != nil {
		return f.FindAllFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeGameRepo) Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	f.record("Delete")
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, db, id)
	}
	return nil
}

var _ gamedb.Repository = (*FakeGameRepo)(nil)

// FakeDependents records DeleteByGameID calls into a shared trace.
type FakeDependents struct {
	Name  string
	Calls *[]string
	Err   error
}

func (f FakeDependents) DeleteByGameID(_ context.Context, _ bun.IDB, _ uuid.UUID) error {
	*f.Calls = append(*f.Calls, f.Name)
	return f.Err
}

var _ Dependents = FakeDependents{}

// FakeParticipants answers FindByGameAndUser from a fixed set of user ids.
type FakeParticipants struct {
	Users map[int64]bool
	Err   error
}

func (f FakeParticipants) FindByGameAndUser(_ context.Context, _ bun.IDB, gameID uuid.UUID, userID int64) (*playerdomain.Player, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if !f.Users[userID] {
		return nil, nil
	}
	uid := userID
	return &playerdomain.Player{ID: uuid.New(), GameID: gameID, Pseudo: "participant", UserID: &uid}, nil
}

var _ ParticipantFinder = FakeParticipants{}
