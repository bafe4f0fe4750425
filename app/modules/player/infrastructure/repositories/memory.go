package playerdb

import (
	"context"

	"github.com/google/uuid"
	playerdomain "github.com/tabletop-ledger/partie/app/modules/player/domain"
	"github.com/tabletop-ledger/partie/app/shared/memdb"
	"github.com/uptrace/bun"
)

// Memory is the Repository used by the memory storage driver.
type Memory struct {
	players *memdb.Table[playerdomain.Player]
}

func NewMemory(store *memdb.Store) *Memory {
	return &Memory{players: memdb.NewTable[playerdomain.Player](store)}
}

func (m *Memory) Save(_ context.Context, _ bun.IDB, player *playerdomain.Player) (*playerdomain.Player, error) {
	clash := m.players.Filter(func(p playerdomain.Player) bool {
		return p.GameID == player.GameID && p.ID != player.ID && playerdomain.SamePseudo(p.Pseudo, player.Pseudo)
	})
	if len(clash) > 0 {
		return nil, ErrDuplicate
	}
	m.players.Put(player.ID, *player)
	out := *player
	return &out, nil
}

func (m *Memory) FindByID(_ context.Context, _ bun.IDB, id uuid.UUID) (*playerdomain.Player, error) {
	p, ok := m.players.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *Memory) FindByGameID(_ context.Context, _ bun.IDB, gameID uuid.UUID) ([]*playerdomain.Player, error) {
	rows := m.players.Filter(func(p playerdomain.Player) bool { return p.GameID == gameID })
	out := make([]*playerdomain.Player, 0, len(rows))
	for i := range rows {
		out = append(out, &rows[i])
	}
	return out, nil
}

func (m *Memory) FindByGameAndUser(_ context.Context, _ bun.IDB, gameID uuid.UUID, userID int64) (*playerdomain.Player, error) {
	rows := m.players.Filter(func(p playerdomain.Player) bool { return p.GameID == gameID && p.IsUser(userID) })
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (m *Memory) Delete(_ context.Context, _ bun.IDB, id uuid.UUID) error {
	if !m.players.Delete(id) {
		return ErrNotFound
	}
	return nil
}

func (m *Memory) DeleteByGameID(_ context.Context, _ bun.IDB, gameID uuid.UUID) error {
	for _, p := range m.players.Filter(func(p playerdomain.Player) bool { return p.GameID == gameID }) {
		m.players.Delete(p.ID)
	}
	return nil
}

// Len returns the number of stored players.
func (m *Memory) Len() int { return m.players.Len() }
