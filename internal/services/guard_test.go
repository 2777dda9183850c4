package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanExchangeMessages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a, b := env.user(t, "a"), env.user(t, "b")

	ok, err := env.guard.CanExchangeMessages(ctx, a, b)
	require.NoError(t, err)
	assert.False(t, ok, "strangers")

	env.store.Like(a, b)
	ok, err = env.guard.CanExchangeMessages(ctx, a, b)
	require.NoError(t, err)
	assert.False(t, ok, "one-sided like")

	env.store.Like(b, a)
	ok, err = env.guard.CanExchangeMessages(ctx, b, a)
	require.NoError(t, err)
	assert.True(t, ok, "matched")

	env.store.Block(b, a)
	ok, err = env.guard.CanExchangeMessages(ctx, a, b)
	require.NoError(t, err)
	assert.False(t, ok, "a block applies on the next call")

	blocked, err := env.guard.Blocked(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, blocked)

	env.store.Unblock(b, a)
	env.store.Unlike(a, b)
	ok, err = env.guard.CanExchangeMessages(ctx, a, b)
	require.NoError(t, err)
	assert.False(t, ok, "unmatched")
}

func TestCanExchangeWithSelf(t *testing.T) {
	env := newTestEnv(t)
	a := env.user(t, "a")
	env.store.Like(a, a)

	ok, err := env.guard.CanExchangeMessages(context.Background(), a, a)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExchangeableCounterparts(t *testing.T) {
	env := newTestEnv(t)
	me, matched, blocked, stranger := env.user(t, "me"), env.user(t, "m"), env.user(t, "b"), env.user(t, "s")
	env.match(t, me, matched)
	env.match(t, me, blocked)
	env.store.Block(me, blocked)

	allowed, err := env.guard.ExchangeableCounterparts(context.Background(), me, []uuid.UUID{matched, blocked, stranger, me})
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]bool{matched: true}, allowed)
}
