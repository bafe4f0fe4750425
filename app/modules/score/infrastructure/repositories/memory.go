package scoredb

import (
	"context"

	"github.com/google/uuid"
	scoredomain "github.com/tabletop-ledger/partie/app/modules/score/domain"
	"github.com/tabletop-ledger/partie/app/shared/memdb"
	"github.com/uptrace/bun"
)

// RoundIndex resolves the game of a round for the game-scoped queries.
type RoundIndex interface {
	GameOf(roundID uuid.UUID) (uuid.UUID, bool)
}

// Memory is the Repository used by the memory storage driver.
type Memory struct {
	scores *memdb.Table[scoredomain.Score]
	rounds RoundIndex
}

func NewMemory(store *memdb.Store, rounds RoundIndex) *Memory {
	return &Memory{scores: memdb.NewTable[scoredomain.Score](store), rounds: rounds}
}

func (m *Memory) inGame(gameID uuid.UUID) func(scoredomain.Score) bool {
	return func(s scoredomain.Score) bool {
		g, ok := m.rounds.GameOf(s.RoundID)
		return ok && g == gameID
	}
}

func (m *Memory) find(keep func(scoredomain.Score) bool) []*scoredomain.Score {
	rows := m.scores.Filter(keep)
	out := make([]*scoredomain.Score, 0, len(rows))
	for i := range rows {
		out = append(out, &rows[i])
	}
	return out
}

func (m *Memory) Save(_ context.Context, _ bun.IDB, score *scoredomain.Score) (*scoredomain.Score, error) {
	clash := m.scores.Filter(func(s scoredomain.Score) bool {
		return s.ID != score.ID &&
			s.RoundID == score.RoundID &&
			s.PlayerID == score.PlayerID &&
			s.Type == score.Type &&
			s.Name == score.Name
	})
	if len(clash) > 0 {
		return nil, ErrDuplicate
	}
	m.scores.Put(score.ID, *score)
	out := *score
	return &out, nil
}

func (m *Memory) FindByID(_ context.Context, _ bun.IDB, id uuid.UUID) (*scoredomain.Score, error) {
	s, ok := m.scores.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *Memory) FindByRoundID(_ context.Context, _ bun.IDB, roundID uuid.UUID) ([]*scoredomain.Score, error) {
	return m.find(func(s scoredomain.Score) bool { return s.RoundID == roundID }), nil
}

func (m *Memory) FindByRoundAndPlayer(_ context.Context, _ bun.IDB, roundID, playerID uuid.UUID) ([]*scoredomain.Score, error) {
	return m.find(func(s scoredomain.Score) bool { return s.RoundID == roundID && s.PlayerID == playerID }), nil
}

func (m *Memory) FindByPlayerInGame(_ context.Context, _ bun.IDB, playerID, gameID uuid.UUID) ([]*scoredomain.Score, error) {
	inGame := m.inGame(gameID)
	return m.find(func(s scoredomain.Score) bool { return s.PlayerID == playerID && inGame(s) }), nil
}

func (m *Memory) ExistsChallengerInRound(_ context.Context, _ bun.IDB, roundID uuid.UUID) (bool, error) {
	rows := m.scores.Filter(func(s scoredomain.Score) bool {
		return s.RoundID == roundID && s.Type == scoredomain.TypeChallenger
	})
	return len(rows) > 0, nil
}

func (m *Memory) FindPlayersInGame(_ context.Context, _ bun.IDB, gameID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	seen := make(map[uuid.UUID]struct{})
	for _, s := range m.scores.Filter(m.inGame(gameID)) {
		if _, ok := seen[s.PlayerID]; ok {
			continue
		}
		seen[s.PlayerID] = struct{}{}
		out = append(out, s.PlayerID)
	}
	return out, nil
}

func (m *Memory) Delete(_ context.Context, _ bun.IDB, id uuid.UUID) error {
	if !m.scores.Delete(id) {
		return ErrNotFound
	}
	return nil
}

func (m *Memory) DeleteByGameID(_ context.Context, _ bun.IDB, gameID uuid.UUID) error {
	for _, s := range m.scores.Filter(m.inGame(gameID)) {
		m.scores.Delete(s.ID)
	}
	return nil
}

// Len returns the number of stored scores.
func (m *Memory) Len() int { return m.scores.Len() }
