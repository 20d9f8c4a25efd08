package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
)

// RateLimitConfig defines the limit for a specific route or group. These
// in-memory API limits protect read endpoints from abuse; the per-user vote
// cooldown is separate and lives in the vote service against redis.
type RateLimitConfig struct {
	Max    int                      // Maximum requests allowed in the window
	Window time.Duration            // Time window for the limit
	KeyFn  func(c fiber.Ctx) string // Returns the key to rate limit on (IP, userID, etc.)
}

// bucket tracks the request count for one key inside the current window.
type bucket struct {
	count    int
	resetsAt time.Time
}

// RateLimiter is an in-memory fixed-window rate limiter. Expired buckets
// are pruned by a background sweep.
type RateLimiter struct {
	cfg RateLimitConfig

	mu      sync.Mutex
	buckets map[string]*bucket
}

// NewRateLimiter creates a rate limiter with the given config.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		cfg:     cfg,
		buckets: make(map[string]*bucket),
	}
	go rl.sweep()
	return rl
}

// take consumes one slot for key and reports whether the request is within
// the limit, along with the remaining budget and window reset time.
func (rl *RateLimiter) take(key string) (ok bool, remaining int, resetsAt time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, exists := rl.buckets[key]
	if !exists || now.After(b.resetsAt) {
		b = &bucket{count: 1, resetsAt: now.Add(rl.cfg.Window)}
		rl.buckets[key] = b
		return true, rl.cfg.Max - 1, b.resetsAt
	}

	b.count++
	remaining = rl.cfg.Max - b.count
	if remaining < 0 {
		remaining = 0
	}
	return b.count <= rl.cfg.Max, remaining, b.resetsAt
}

// Handler returns a Fiber middleware handler that enforces the rate limit.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		ok, remaining, resetsAt := rl.take(rl.cfg.KeyFn(c))

		c.Set("X-RateLimit-Limit", strconv.Itoa(rl.cfg.Max))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(resetsAt.Unix(), 10))

		if !ok {
			retryAfter := int(time.Until(resetsAt).Seconds()) + 1
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": fiber.Map{
					"code":       "RATE_LIMITED",
					"message":    "Too many requests. Try again in " + strconv.Itoa(retryAfter) + " seconds.",
					"retryAfter": retryAfter,
				},
			})
		}

		return c.Next()
	}
}

// Allow consumes one slot for key and reports whether it is within the limit.
func (rl *RateLimiter) Allow(key string) bool {
	ok, _, _ := rl.take(key)
	return ok
}

// sweep drops expired buckets every 5 minutes.
func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		now := time.Now()
		rl.mu.Lock()
		for key, b := range rl.buckets {
			if now.After(b.resetsAt) {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}

// KeyByIP returns the client IP as the rate limit key.
func KeyByIP(c fiber.Ctx) string {
	return "ip:" + c.IP()
}

// KeyByPrincipal returns the authenticated user as the rate limit key,
// falling back to IP for unauthenticated requests.
func KeyByPrincipal(c fiber.Ctx) string {
	if uid := PrincipalID(c); uid != "" {
		return "user:" + uid
	}
	return "ip:" + c.IP()
}

// NewPostRateLimiter: 100 req/min per IP
func NewPostRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		Max:    100,
		Window: time.Minute,
		KeyFn:  KeyByIP,
	})
}

// NewCredibilityRateLimiter: 30 req/min per principal (IP for anonymous)
func NewCredibilityRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		Max:    30,
		Window: time.Minute,
		KeyFn:  KeyByPrincipal,
	})
}

// NewStatsRateLimiter: 10 req/min per IP
func NewStatsRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		Max:    10,
		Window: time.Minute,
		KeyFn:  KeyByIP,
	})
}
