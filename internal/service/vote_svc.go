package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonboulle/clockwork"

	"github.com/crediforum/crediforum-go/internal/model"
	"github.com/crediforum/crediforum-go/internal/repository"
)

// DB is the database handle the vote service needs: plain queries for
// post-commit work plus transaction start. *pgxpool.Pool satisfies it.
type DB interface {
	repository.Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store seams over the concrete repositories, narrow enough to fake in
// tests without a live database.
type voteStore interface {
	ListByPost(ctx context.Context, q repository.Querier, postID string) ([]model.Vote, error)
	Create(ctx context.Context, q repository.Querier, userID, postID string, voteType model.VoteType, weight float64, now time.Time) error
	Update(ctx context.Context, q repository.Querier, userID, postID string, voteType model.VoteType, weight float64, now time.Time) error
	Delete(ctx context.Context, q repository.Querier, userID, postID string) error
}

type postStore interface {
	FindForUpdate(ctx context.Context, q repository.Querier, postID string) (*repository.PostWithAuthor, error)
	UpdateScore(ctx context.Context, q repository.Querier, postID string, score float64, now time.Time) error
}

type userStore interface {
	GetCredibilityScore(ctx context.Context, q repository.Querier, userID string) (float64, error)
	UpdateScore(ctx context.Context, q repository.Querier, userID string, score float64, now time.Time) error
	TouchLastActive(ctx context.Context, q repository.Querier, userID string, now time.Time) error
	FindByID(ctx context.Context, q repository.Querier, userID string) (*model.User, error)
	NotifyRankChange(ctx context.Context, q repository.Querier, userID string) error
}

// voteRateLimiter gates vote applications per user.
type voteRateLimiter interface {
	CheckVoteRateLimit(ctx context.Context, userID string) (bool, error)
}

// VoteService orchestrates the vote application protocol: cooldown gate,
// one atomic transaction over the vote ledger and the post/author scores,
// then best-effort audit and cache side effects.
type VoteService struct {
	db      DB
	votes   voteStore
	posts   postStore
	users   userStore
	cred    *CredibilityService
	limiter voteRateLimiter
	audit   *AuditService
	cache   *CacheService
	clock   clockwork.Clock
}

func NewVoteService(
	db DB,
	votes voteStore,
	posts postStore,
	users userStore,
	cred *CredibilityService,
	limiter voteRateLimiter,
	audit *AuditService,
	cache *CacheService,
	clock clockwork.Clock,
) *VoteService {
	return &VoteService{
		db:      db,
		votes:   votes,
		posts:   posts,
		users:   users,
		cred:    cred,
		limiter: limiter,
		audit:   audit,
		cache:   cache,
		clock:   clock,
	}
}

// ApplyVote applies one vote request from voterID against postID.
//
// The ledger transition, the post score write, and the author score write
// all happen inside a single transaction with row locks on the post and
// author, so two concurrent votes on the same post serialize and neither
// delta is lost. The cooldown check runs before the transaction and
// consumes its slot regardless of the outcome.
func (s *VoteService) ApplyVote(ctx context.Context, voterID, postID string, requested model.VoteType) (*model.VoteResponse, error) {
	allowed, err := s.limiter.CheckVoteRateLimit(ctx, voterID)
	if err != nil {
		return nil, fmt.Errorf("vote rate limit check: %w", err)
	}
	if !allowed {
		return nil, ErrRateLimited
	}

	decision, snap, post, err := s.applyVoteTx(ctx, voterID, postID, requested)
	if err != nil {
		return nil, err
	}

	// The voter's own row is not part of the transaction's locked set
	// (post + author). Writing it inside the transaction could deadlock
	// against a concurrent vote on the voter's own post, so last_active
	// is advisory and written after commit.
	if err := s.users.TouchLastActive(ctx, s.db, voterID, s.clock.Now()); err != nil {
		log.Printf("vote: touch last_active error: %v", err)
	}

	votesApplied.WithLabelValues(decision.Transition.String()).Inc()
	s.emitAudit(ctx, voterID, postID, requested, decision, snap)
	s.refreshCache(ctx, post, decision)

	return &model.VoteResponse{
		PostScore:     decision.NewPostScore,
		AuthorScore:   decision.NewAuthorScore,
		PostConsensus: decision.PostConsensus,
		VoteWeight:    decision.VoteWeight,
		DeltaPost:     decision.DeltaPost,
		DeltaAuthor:   decision.DeltaAuthor,
	}, nil
}

// applyVoteTx runs the transactional part of the protocol and returns the
// decision plus the snapshot it was computed from.
func (s *VoteService) applyVoteTx(ctx context.Context, voterID, postID string, requested model.VoteType) (VoteDecision, VoteSnapshot, *model.Post, error) {
	var (
		decision VoteDecision
		snap     VoteSnapshot
		post     *model.Post
	)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return decision, snap, nil, err
	}
	defer tx.Rollback(ctx)

	// Lock the post and its author first; every writer takes these locks
	// in the same order, so concurrent votes on one post serialize here.
	pa, err := s.posts.FindForUpdate(ctx, tx, postID)
	if errors.Is(err, pgx.ErrNoRows) {
		return decision, snap, nil, ErrPostNotFound
	}
	if err != nil {
		return decision, snap, nil, err
	}

	voterScore, err := s.users.GetCredibilityScore(ctx, tx, voterID)
	if errors.Is(err, pgx.ErrNoRows) {
		return decision, snap, nil, ErrVoterNotFound
	}
	if err != nil {
		return decision, snap, nil, err
	}

	// One snapshot read of the full vote collection serves both the
	// existing-vote lookup and the consensus computation.
	allVotes, err := s.votes.ListByPost(ctx, tx, postID)
	if err != nil {
		return decision, snap, nil, err
	}

	snap = VoteSnapshot{
		VoterCredibility: voterScore,
		PostScore:        pa.Post.CredibilityScore,
		AuthorScore:      pa.AuthorScore,
	}
	for i := range allVotes {
		if allVotes[i].UserID == voterID {
			snap.Existing = &allVotes[i]
		} else {
			snap.OtherVotes = append(snap.OtherVotes, allVotes[i])
		}
	}

	decision = s.cred.ResolveVote(snap, requested)
	now := s.clock.Now()

	switch decision.Transition {
	case TransitionCast:
		err = s.votes.Create(ctx, tx, voterID, postID, requested, decision.VoteWeight, now)
	case TransitionFlip:
		err = s.votes.Update(ctx, tx, voterID, postID, requested, decision.VoteWeight, now)
	case TransitionRetract:
		err = s.votes.Delete(ctx, tx, voterID, postID)
	}
	if err != nil {
		return decision, snap, nil, err
	}

	if err := s.posts.UpdateScore(ctx, tx, postID, decision.NewPostScore, now); err != nil {
		return decision, snap, nil, err
	}
	if err := s.users.UpdateScore(ctx, tx, pa.AuthorID, decision.NewAuthorScore, now); err != nil {
		return decision, snap, nil, err
	}

	// Ranks are recomputed in batches by the rank worker, not per vote.
	if err := s.users.NotifyRankChange(ctx, tx, pa.AuthorID); err != nil {
		return decision, snap, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return decision, snap, nil, err
	}

	committed := pa.Post
	committed.CredibilityScore = decision.NewPostScore
	committed.LastUpdated = now
	post = &committed

	return decision, snap, post, nil
}

// emitAudit appends the scoring decision to the audit sink. Best-effort:
// the transaction has already committed and the caller's result is fixed.
func (s *VoteService) emitAudit(ctx context.Context, voterID, postID string, requested model.VoteType, d VoteDecision, snap VoteSnapshot) {
	s.audit.Append(ctx, model.AuditEvent{
		EventID:         uuid.NewString(),
		Timestamp:       s.clock.Now(),
		VoterID:         voterID,
		PostID:          postID,
		VoteType:        requested,
		VoteWeight:      d.VoteWeight,
		PrevPostScore:   snap.PostScore,
		NewPostScore:    d.NewPostScore,
		DeltaPost:       d.DeltaPost,
		PrevAuthorScore: snap.AuthorScore,
		NewAuthorScore:  d.NewAuthorScore,
		DeltaAuthor:     d.DeltaAuthor,
		PostConsensus:   d.PostConsensus,
	})
}

// refreshCache invalidates the cached post and, when the score moved enough
// to matter, rewrites the feed snapshot hash. Cache errors are logged only.
func (s *VoteService) refreshCache(ctx context.Context, post *model.Post, d VoteDecision) {
	if s.cache == nil || post == nil {
		return
	}

	if err := s.cache.InvalidatePost(ctx, post.ID); err != nil {
		log.Printf("cache: invalidate post error: %v", err)
	}

	if abs(d.DeltaPost) < CacheRefreshThreshold {
		return
	}

	author, err := s.users.FindByID(ctx, s.db, post.AuthorID)
	if err != nil {
		log.Printf("cache: load author for snapshot error: %v", err)
		return
	}
	if err := s.cache.RefreshPostSnapshot(ctx, post, author.Username); err != nil {
		log.Printf("cache: refresh post snapshot error: %v", err)
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
