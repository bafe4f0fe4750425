package rounddb

import (
	"context"
	"slices"

	"github.com/google/uuid"
	rounddomain "github.com/tabletop-ledger/partie/app/modules/round/domain"
	"github.com/tabletop-ledger/partie/app/shared/memdb"
	"github.com/uptrace/bun"
)

// Memory is the Repository used by the memory storage driver.
type Memory struct {
	rounds *memdb.Table[rounddomain.Round]
}

func NewMemory(store *memdb.Store) *Memory {
	return &Memory{rounds: memdb.NewTable[rounddomain.Round](store)}
}

func (m *Memory) Save(_ context.Context, _ bun.IDB, round *rounddomain.Round) (*rounddomain.Round, error) {
	clash := m.rounds.Filter(func(r rounddomain.Round) bool {
		return r.GameID == round.GameID && r.Number == round.Number && r.ID != round.ID
	})
	if len(clash) > 0 {
		return nil, ErrDuplicate
	}
	m.rounds.Put(round.ID, *round)
	out := *round
	return &out, nil
}

func (m *Memory) FindByID(_ context.Context, _ bun.IDB, id uuid.UUID) (*rounddomain.Round, error) {
	r, ok := m.rounds.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *Memory) FindByGameID(_ context.Context, _ bun.IDB, gameID uuid.UUID) ([]*rounddomain.Round, error) {
	rows := m.rounds.Filter(func(r rounddomain.Round) bool { return r.GameID == gameID })
	slices.SortStableFunc(rows, func(a, b rounddomain.Round) int { return a.Number - b.Number })
	out := make([]*rounddomain.Round, 0, len(rows))
	for i := range rows {
		out = append(out, &rows[i])
	}
	return out, nil
}

func (m *Memory) FindByGameIDAndNumber(_ context.Context, _ bun.IDB, gameID uuid.UUID, number int) (*rounddomain.Round, error) {
	rows := m.rounds.Filter(func(r rounddomain.Round) bool { return r.GameID == gameID && r.Number == number })
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (m *Memory) FindPreviousRound(ctx context.Context, db bun.IDB, gameID uuid.UUID, number int) (*rounddomain.Round, error) {
	if number <= 1 {
		return nil, nil
	}
	return m.FindByGameIDAndNumber(ctx, db, gameID, number-1)
}

func (m *Memory) Delete(_ context.Context, _ bun.IDB, id uuid.UUID) error {
	if !m.rounds.Delete(id) {
		return ErrNotFound
	}
	return nil
}

func (m *Memory) DeleteByGameID(_ context.Context, _ bun.IDB, gameID uuid.UUID) error {
	for _, r := range m.rounds.Filter(func(r rounddomain.Round) bool { return r.GameID == gameID }) {
		m.rounds.Delete(r.ID)
	}
	return nil
}

// GameOf returns the game a stored round belongs to.
func (m *Memory) GameOf(roundID uuid.UUID) (uuid.UUID, bool) {
	r, ok := m.rounds.Get(roundID)
	if !ok {
		return uuid.Nil, false
	}
	return r.GameID, true
}

// Len returns the number of stored rounds.
func (m *Memory) Len() int { return m.rounds.Len() }
