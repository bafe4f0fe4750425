package gamedb

import (
	"context"
	"slices"

	"github.com/google/uuid"
	gamedomain "github.com/tabletop-ledger/partie/app/modules/game/domain"
	"github.com/tabletop-ledger/partie/app/shared/memdb"
	"github.com/uptrace/bun"
)

// Memory is the Repository used by the memory storage driver.
type Memory struct {
	games *memdb.Table[gamedomain.Game]
}

func NewMemory(store *memdb.Store) *Memory {
	return &Memory{games: memdb.NewTable[gamedomain.Game](store)}
}

func (m *Memory) Save(_ context.Context, _ bun.IDB, game *gamedomain.Game) (*gamedomain.Game, error) {
	m.games.Put(game.ID, *game)
	out := *game
	return &out, nil
}

func (m *Memory) FindByID(_ context.Context, _ bun.IDB, id uuid.UUID) (*gamedomain.Game, error) {
	g, ok := m.games.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &g, nil
}

func (m *Memory) FindAll(_ context.Context, _ bun.IDB) ([]*gamedomain.Game, error) {
	rows := m.games.Filter(nil)
	out := make([]*gamedomain.Game, 0, len(rows))
	for i := range rows {
		out = append(out, &rows[i])
	}
	slices.Reverse(out)
	return out, nil
}

func (m *Memory) Delete(_ context.Context, _ bun.IDB, id uuid.UUID) error {
	if !m.games.Delete(id) {
		return ErrNotFound
	}
	return nil
}

// Len returns the number of stored games.
func (m *Memory) Len() int { return m.games.Len() }
