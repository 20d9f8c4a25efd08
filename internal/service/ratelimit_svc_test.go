package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T) (*VoteLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewVoteLimiter(client), mr
}

func TestVoteLimiterCooldown(t *testing.T) {
	limiter, mr := newTestLimiter(t)
	ctx := context.Background()

	ok, err := limiter.CheckVoteRateLimit(ctx, "user1")
	require.NoError(t, err)
	assert.True(t, ok, "first check claims the slot")

	ok, err = limiter.CheckVoteRateLimit(ctx, "user1")
	require.NoError(t, err)
	assert.False(t, ok, "second check inside the window is denied")

	// Another user has an independent slot.
	ok, err = limiter.CheckVoteRateLimit(ctx, "user2")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(VoteCooldown + time.Second)

	ok, err = limiter.CheckVoteRateLimit(ctx, "user1")
	require.NoError(t, err)
	assert.True(t, ok, "slot frees after the cooldown expires")
}

func TestVoteLimiterNilClientAllowsAll(t *testing.T) {
	limiter := NewVoteLimiter(nil)

	for i := 0; i < 3; i++ {
		ok, err := limiter.CheckVoteRateLimit(context.Background(), "user1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}
