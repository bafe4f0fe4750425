package rounddomain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabletop-ledger/partie/app/shared/ids"
)

var now = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func ptr(v int) *int { return &v }

func TestNewRound(t *testing.T) {
	r, err := NewRound(uuid.New(), uuid.New(), 3, now)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Number)
	assert.Zero(t, r.PlayerScore)
	assert.Zero(t, r.OpponentScore)
	assert.False(t, r.IsCompleted)

	_, err = NewRound(uuid.New(), uuid.New(), 0, now)
	assert.ErrorIs(t, err, ErrInvalidRoundNumber)
}

func TestEmptyRounds(t *testing.T) {
	gen := ids.NewSequenceGenerator()
	gameID := uuid.New()

	rounds, err := EmptyRounds(gen.NewID, gameID, 5, now)
	require.NoError(t, err)
	require.Len(t, rounds, 5)
	for i, r := range rounds {
		assert.Equal(t, i+1, r.Number)
		assert.Equal(t, gameID, r.GameID)
		assert.Equal(t, ids.Sequential(uint64(i+1)), r.ID)
		assert.False(t, r.IsCompleted)
	}

	for _, count := range []int{0, MaxRoundsPerGame + 1} {
		_, err := EmptyRounds(gen.NewID, gameID, count, now)
		assert.ErrorIs(t, err, ErrInvalidRoundCount)
	}
}

func TestCompleteIsIdempotent(t *testing.T) {
	r, err := NewRound(uuid.New(), uuid.New(), 1, now)
	require.NoError(t, err)

	require.NoError(t, r.Complete(15, 12))
	first := *r
	require.NoError(t, r.Complete(15, 12))

	assert.Equal(t, first, *r)
	assert.True(t, r.IsCompleted)
	assert.Equal(t, 15, r.PlayerScore)
	assert.Equal(t, 12, r.OpponentScore)
}

func TestCompleteValidatesRange(t *testing.T) {
	r := &Round{Number: 1}
	assert.ErrorIs(t, r.Complete(101, 0), ErrRoundScoreRange)
	assert.ErrorIs(t, r.Complete(0, -1), ErrRoundScoreRange)
	assert.False(t, r.IsCompleted)
	assert.NoError(t, r.Complete(100, 0))
}

func TestUpdateScores(t *testing.T) {
	r := &Round{Number: 2, PlayerScore: 9, OpponentScore: 9}

	require.NoError(t, r.UpdateScores(ptr(20), nil))
	assert.Equal(t, 20, r.PlayerScore)
	assert.Equal(t, 0, r.OpponentScore)
	assert.False(t, r.IsCompleted)

	assert.ErrorIs(t, r.UpdateScores(nil, ptr(101)), ErrRoundScoreRange)
	assert.Equal(t, 20, r.PlayerScore)
}

func TestSetSlotScore(t *testing.T) {
	r := &Round{PlayerScore: 4, OpponentScore: 6}

	require.NoError(t, r.SetSlotScore(true, 11))
	assert.Equal(t, 11, r.PlayerScore)
	assert.Equal(t, 6, r.OpponentScore)

	require.NoError(t, r.SetSlotScore(false, 13))
	assert.Equal(t, 11, r.PlayerScore)
	assert.Equal(t, 13, r.OpponentScore)

	assert.ErrorIs(t, r.SetSlotScore(true, -2), ErrRoundScoreRange)
}
