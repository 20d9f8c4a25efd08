package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// VoteCooldown is the minimum interval between votes from one user.
const VoteCooldown = 5 * time.Second

// VoteLimiter enforces the per-user vote cooldown against redis. Checking
// the limit consumes the slot: a permitted check sets the key immediately,
// so a later failure in the caller does not release it.
type VoteLimiter struct {
	rdb      *redis.Client
	cooldown time.Duration
}

// NewVoteLimiter creates a limiter. A nil client disables limiting (every
// check passes), mirroring how the cache degrades without redis.
func NewVoteLimiter(rdb *redis.Client) *VoteLimiter {
	return &VoteLimiter{rdb: rdb, cooldown: VoteCooldown}
}

// CheckVoteRateLimit reports whether userID may vote now. A true result has
// already reserved the cooldown slot. SETNX claims the slot atomically, so
// two in-flight requests from one user cannot both pass.
func (l *VoteLimiter) CheckVoteRateLimit(ctx context.Context, userID string) (bool, error) {
	if l.rdb == nil {
		return true, nil
	}

	ok, err := l.rdb.SetNX(ctx, voteLimitKey(userID), "1", l.cooldown).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func voteLimitKey(userID string) string {
	return fmt.Sprintf("ratelimit:vote:%s", userID)
}
