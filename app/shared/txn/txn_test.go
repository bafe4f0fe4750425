package txn

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func TestPassthroughJoinsOuterScope(t *testing.T) {
	var tx Transactor = Passthrough{}
	depth := 0

	err := tx.RunInTx(context.Background(), func(ctx context.Context, db bun.IDB) error {
		_, inScope := FromContext(ctx)
		assert.True(t, inScope)
		depth++
		return tx.RunInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			depth++
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 2, depth)
}

func TestPassthroughPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	err := Passthrough{}.RunInTx(context.Background(), func(ctx context.Context, db bun.IDB) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestFromContextWithoutScope(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)
}

func TestAfterCommitRunsOnlyOnSuccess(t *testing.T) {
	var ran []string

	err := Passthrough{}.RunInTx(context.Background(), func(ctx context.Context, db bun.IDB) error {
		AfterCommit(ctx, func(context.Context) { ran = append(ran, "first") })
		return Passthrough{}.RunInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			AfterCommit(ctx, func(context.Context) { ran = append(ran, "nested") })
			assert.Empty(t, ran)
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "nested"}, ran)

	ran = nil
	err = Passthrough{}.RunInTx(context.Background(), func(ctx context.Context, db bun.IDB) error {
		AfterCommit(ctx, func(context.Context) { ran = append(ran, "dropped") })
		return errors.New("rollback")
	})
	require.Error(t, err)
	assert.Empty(t, ran)
}

func TestAfterCommitOutsideScopeRunsImmediately(t *testing.T) {
	called := false
	AfterCommit(context.Background(), func(context.Context) { called = true })
	assert.True(t, called)
}

func TestCommitHooksDoNotSeeTheScope(t *testing.T) {
	var inScope bool
	err := Passthrough{}.RunInTx(context.Background(), func(ctx context.Context, db bun.IDB) error {
		AfterCommit(ctx, func(ctx context.Context) { _, inScope = FromContext(ctx) })
		return nil
	})
	require.NoError(t, err)
	assert.False(t, inScope)
}
