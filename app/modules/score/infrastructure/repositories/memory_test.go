package scoredb

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	scoredomain "github.com/tabletop-ledger/partie/app/modules/score/domain"
	"github.com/tabletop-ledger/partie/app/shared/ids"
	"github.com/tabletop-ledger/partie/app/shared/memdb"
)

type fakeRounds map[uuid.UUID]uuid.UUID

func (f fakeRounds) GameOf(roundID uuid.UUID) (uuid.UUID, bool) {
	g, ok := f[roundID]
	return g, ok
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	gameA, gameB := ids.Sequential(1), ids.Sequential(2)
	r1, r2, r3 := ids.Sequential(11), ids.Sequential(12), ids.Sequential(21)
	alice, bob := ids.Sequential(101), ids.Sequential(102)

	repo := NewMemory(memdb.NewStore(), fakeRounds{r1: gameA, r2: gameA, r3: gameB})
	gen := ids.NewSequenceGenerator()
	save := func(round, player uuid.UUID, typ scoredomain.Type, name string, value int) *scoredomain.Score {
		t.Helper()
		s, err := scoredomain.New(gen.NewID(), round, player, typ, name, value, time.Now())
		require.NoError(t, err)
		_, err = repo.Save(ctx, nil, s)
		require.NoError(t, err)
		return s
	}

	save(r1, bob, scoredomain.TypePrimary, "Hold", 10)
	save(r1, alice, scoredomain.TypePrimary, "Hold", 4)
	save(r2, alice, scoredomain.TypeChallenger, "Comeback", 3)
	save(r3, ids.Sequential(999), scoredomain.TypePrimary, "Hold", 5)

	dup, err := scoredomain.New(gen.NewID(), r1, bob, scoredomain.TypePrimary, "Hold", 2, time.Now())
	require.NoError(t, err)
	_, err = repo.Save(ctx, nil, dup)
	assert.ErrorIs(t, err, ErrDuplicate)

	players, err := repo.FindPlayersInGame(ctx, nil, gameA)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{bob, alice}, players)

	aliceScores, err := repo.FindByPlayerInGame(ctx, nil, alice, gameA)
	require.NoError(t, err)
	assert.Len(t, aliceScores, 2)

	roundScores, err := repo.FindByRoundAndPlayer(ctx, nil, r1, bob)
	require.NoError(t, err)
	require.Len(t, roundScores, 1)
	assert.Equal(t, 10, roundScores[0].Value)

	exists, err := repo.ExistsChallengerInRound(ctx, nil, r2)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.ExistsChallengerInRound(ctx, nil, r1)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.DeleteByGameID(ctx, nil, gameA))
	assert.Equal(t, 1, repo.Len())
}
