package rounddb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	rounddomain "github.com/tabletop-ledger/partie/app/modules/round/domain"
	"github.com/tabletop-ledger/partie/app/shared/ids"
	"github.com/tabletop-ledger/partie/app/shared/memdb"
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory(memdb.NewStore())
	gameID := ids.Sequential(100)
	now := time.Now()

	for _, n := range []int{3, 1, 2} {
		r, err := rounddomain.NewRound(ids.Sequential(uint64(n)), gameID, n, now)
		require.NoError(t, err)
		_, err = repo.Save(ctx, nil, r)
		require.NoError(t, err)
	}

	dup, err := rounddomain.NewRound(ids.Sequential(9), gameID, 2, now)
	require.NoError(t, err)
	_, err = repo.Save(ctx, nil, dup)
	assert.ErrorIs(t, err, ErrDuplicate)

	rounds, err := repo.FindByGameID(ctx, nil, gameID)
	require.NoError(t, err)
	require.Len(t, rounds, 3)
	for i, r := range rounds {
		assert.Equal(t, i+1, r.Number)
	}

	prev, err := repo.FindPreviousRound(ctx, nil, gameID, 3)
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, 2, prev.Number)

	none, err := repo.FindPreviousRound(ctx, nil, gameID, 1)
	require.NoError(t, err)
	assert.Nil(t, none)

	g, ok := repo.GameOf(ids.Sequential(1))
	assert.True(t, ok)
	assert.Equal(t, gameID, g)

	require.NoError(t, repo.DeleteByGameID(ctx, nil, gameID))
	assert.Zero(t, repo.Len())
	_, err = repo.FindByID(ctx, nil, ids.Sequential(1))
	assert.ErrorIs(t, err, ErrNotFound)
}
