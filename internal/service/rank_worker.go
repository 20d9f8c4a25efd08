package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crediforum/crediforum-go/internal/repository"
)

// RankWorker listens for PostgreSQL NOTIFY on the 'rank_changes' channel and
// batches credibility_rank recomputation. Vote bursts that touch many
// authors inside one window still trigger a single global recompute.
type RankWorker struct {
	pool    *pgxpool.Pool
	users   *repository.UserRepo
	batchMs time.Duration

	mu      sync.Mutex
	pending map[string]struct{} // user IDs whose scores moved since last flush
}

// NewRankWorker creates a rank recomputation worker.
func NewRankWorker(pool *pgxpool.Pool, users *repository.UserRepo) *RankWorker {
	return &RankWorker{
		pool:    pool,
		users:   users,
		batchMs: 5 * time.Second,
		pending: make(map[string]struct{}),
	}
}

// Start begins listening for rank_changes notifications and processing batches.
func (w *RankWorker) Start(ctx context.Context) {
	log.Printf("rank-worker: starting (batch window=%s)", w.batchMs)

	for {
		if err := w.listenLoop(ctx); err != nil {
			if ctx.Err() != nil {
				log.Println("rank-worker: stopping (context cancelled)")
				return
			}
			log.Printf("rank-worker: listen error, reconnecting in 5s: %v", err)
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				log.Println("rank-worker: stopping (context cancelled)")
				return
			}
		}
	}
}

// listenLoop acquires a dedicated connection, LISTENs on rank_changes, and
// collects notifications into batched windows.
func (w *RankWorker) listenLoop(ctx context.Context) error {
	conn, err := w.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, "LISTEN rank_changes")
	if err != nil {
		return err
	}
	log.Println("rank-worker: listening on rank_changes")

	flushCtx, flushCancel := context.WithCancel(ctx)
	defer flushCancel()
	go w.flushLoop(flushCtx)

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}

		userID := notification.Payload
		if userID == "" {
			continue
		}

		w.mu.Lock()
		w.pending[userID] = struct{}{}
		w.mu.Unlock()
	}
}

// flushLoop periodically drains the pending set and recomputes ranks.
func (w *RankWorker) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(w.batchMs)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.flush(ctx)
		case <-ctx.Done():
			// Final flush before exit
			w.flush(context.Background())
			return
		}
	}
}

// flush recomputes credibility ranks if any scores moved during the window.
// Ranking is a single global statement, so the batch only decides whether to
// run it, not how often per user.
func (w *RankWorker) flush(ctx context.Context) {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	batch := w.pending
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	updated, err := w.users.RecomputeRanks(ctx, w.pool)
	if err != nil {
		log.Printf("rank-worker: recompute error: %v", err)
		return
	}

	log.Printf("rank-worker: batch complete, %d ranks updated (from %d notifications)",
		updated, len(batch))
}
