package service

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crediforum/crediforum-go/internal/repository"
)

// CommunityWorker is a periodic background job that recalculates community
// aggregate credibility from member post scores.
type CommunityWorker struct {
	pool     *pgxpool.Pool
	repo     *repository.CommunityRepo
	cache    *CacheService
	interval time.Duration
	stopCh   chan struct{}
}

// NewCommunityWorker creates a worker that ticks every interval.
func NewCommunityWorker(pool *pgxpool.Pool, repo *repository.CommunityRepo, cache *CacheService, interval time.Duration) *CommunityWorker {
	return &CommunityWorker{
		pool:     pool,
		repo:     repo,
		cache:    cache,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic recalculation loop. It runs one tick
// immediately, then every interval.
func (w *CommunityWorker) Start(ctx context.Context) {
	log.Printf("community-worker: starting (interval=%s)", w.interval)

	w.tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			log.Println("community-worker: stopping (context cancelled)")
			return
		case <-w.stopCh:
			log.Println("community-worker: stopping (stop signal)")
			return
		}
	}
}

// Stop signals the worker to stop.
func (w *CommunityWorker) Stop() {
	close(w.stopCh)
}

// tick runs one cycle: recalculate every community that has posts.
func (w *CommunityWorker) tick(ctx context.Context) {
	start := time.Now()

	slugs, err := w.repo.ListSlugsWithPosts(ctx, w.pool)
	if err != nil {
		log.Printf("community-worker: error: %v", err)
		return
	}

	updated := 0
	for _, slug := range slugs {
		if err := w.repo.RecomputeAggregates(ctx, w.pool, slug); err != nil {
			log.Printf("community-worker: error recalculating %s: %v", slug, err)
			continue
		}
		if w.cache != nil {
			if err := w.cache.InvalidateCommunity(ctx, slug); err != nil {
				log.Printf("community-worker: cache invalidate error for %s: %v", slug, err)
			}
		}
		updated++
	}

	elapsed := time.Since(start)
	log.Printf("community-worker: tick complete — %d communities updated (%s)",
		updated, elapsed.Round(time.Millisecond))
}
