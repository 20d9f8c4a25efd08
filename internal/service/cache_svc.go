package service

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/crediforum/crediforum-go/internal/model"
)

// Redis cache TTLs.
const (
	PostCacheTTL      = 5 * time.Minute
	CommunityCacheTTL = 15 * time.Minute
)

// CacheRefreshThreshold is the minimum absolute post-score delta that
// triggers a refresh of the cached post snapshot after a vote.
const CacheRefreshThreshold = 0.1

// CacheService provides a Redis cache-aside layer for post and community
// lookups, plus the hash snapshot the feed renderer reads.
type CacheService struct {
	rdb *redis.Client
}

// NewCacheService creates a new CacheService. If redisURL is empty or the
// connection cannot be established, the returned service carries a nil
// client and every operation becomes a no-op.
func NewCacheService(redisURL string) *CacheService {
	if redisURL == "" {
		log.Println("redis: no URL configured, caching disabled")
		return &CacheService{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("redis: invalid URL %q, caching disabled: %v", redisURL, err)
		return &CacheService{}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis: connection failed, caching disabled: %v", err)
		return &CacheService{}
	}

	log.Println("redis: connected, caching enabled")
	return &CacheService{rdb: rdb}
}

// Client returns the underlying Redis client (for health checks, the vote
// limiter, sessions and the audit sink). May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

// getJSON reads a cached value. nil, nil means not cached or cache disabled.
func (c *CacheService) getJSON(ctx context.Context, key string) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

// setJSON marshals and stores a value under key with the given TTL.
func (c *CacheService) setJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, ttl).Err()
}

func (c *CacheService) del(ctx context.Context, key string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, key).Err()
}

// GetPost retrieves a cached post response, or nil when absent.
func (c *CacheService) GetPost(ctx context.Context, postID string) ([]byte, error) {
	return c.getJSON(ctx, "postcache:"+postID)
}

// SetPost stores a post response in cache.
func (c *CacheService) SetPost(ctx context.Context, postID string, data interface{}) error {
	return c.setJSON(ctx, "postcache:"+postID, data, PostCacheTTL)
}

// InvalidatePost removes a post from cache (called after vote changes).
func (c *CacheService) InvalidatePost(ctx context.Context, postID string) error {
	return c.del(ctx, "postcache:"+postID)
}

// GetCommunity retrieves a cached community response, or nil when absent.
func (c *CacheService) GetCommunity(ctx context.Context, slug string) ([]byte, error) {
	return c.getJSON(ctx, "community:"+slug)
}

// SetCommunity stores a community response in cache.
func (c *CacheService) SetCommunity(ctx context.Context, slug string, data interface{}) error {
	return c.setJSON(ctx, "community:"+slug, data, CommunityCacheTTL)
}

// InvalidateCommunity removes a community from cache.
func (c *CacheService) InvalidateCommunity(ctx context.Context, slug string) error {
	return c.del(ctx, "community:"+slug)
}

// RefreshPostSnapshot writes the denormalized post hash the feed renderer
// reads. Called after a vote when the score delta crosses
// CacheRefreshThreshold.
func (c *CacheService) RefreshPostSnapshot(ctx context.Context, post *model.Post, authorUsername string) error {
	if c.rdb == nil {
		return nil
	}
	fields := map[string]string{
		"id":               post.ID,
		"title":            post.Title,
		"authorUsername":   authorUsername,
		"communitySlug":    post.CommunitySlug,
		"credibilityScore": strconv.FormatFloat(post.CredibilityScore, 'f', -1, 64),
		"createdAt":        post.CreatedAt.Format(time.RFC3339),
	}
	return c.rdb.HSet(ctx, "post:"+post.ID, fields).Err()
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
