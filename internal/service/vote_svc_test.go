package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crediforum/crediforum-go/internal/model"
	"github.com/crediforum/crediforum-go/internal/repository"
)

// callLog records store and transaction calls in invocation order.
type callLog struct {
	calls []string
}

func (l *callLog) add(name string) {
	l.calls = append(l.calls, name)
}

func (l *callLog) index(name string) int {
	for i, c := range l.calls {
		if c == name {
			return i
		}
	}
	return -1
}

// fakeTx satisfies pgx.Tx; only Commit and Rollback matter to the protocol.
type fakeTx struct {
	log        *callLog
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	t.log.add("tx.Commit")
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

func (t *fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *fakeTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *fakeTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (t *fakeTx) Conn() *pgx.Conn                                               { return nil }

// fakeDB satisfies DB; Begin hands out the shared fake transaction.
type fakeDB struct {
	log        *callLog
	tx         *fakeTx
	beginCalls int
}

func (d *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	d.beginCalls++
	d.log.add("db.Begin")
	return d.tx, nil
}

func (d *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (d *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (d *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }

// fakeVoteStore keeps the ledger in memory so sequential applications see
// the prior transitions.
type fakeVoteStore struct {
	log   *callLog
	votes []model.Vote
}

func (s *fakeVoteStore) ListByPost(ctx context.Context, q repository.Querier, postID string) ([]model.Vote, error) {
	out := make([]model.Vote, len(s.votes))
	copy(out, s.votes)
	return out, nil
}

func (s *fakeVoteStore) Create(ctx context.Context, q repository.Querier, userID, postID string, voteType model.VoteType, weight float64, now time.Time) error {
	s.log.add("votes.Create")
	s.votes = append(s.votes, model.Vote{
		UserID: userID, PostID: postID, Type: voteType, Weight: weight,
		VotedAt: now, LastWeightUpdate: now,
	})
	return nil
}

func (s *fakeVoteStore) Update(ctx context.Context, q repository.Querier, userID, postID string, voteType model.VoteType, weight float64, now time.Time) error {
	s.log.add("votes.Update")
	for i := range s.votes {
		if s.votes[i].UserID == userID && s.votes[i].PostID == postID {
			s.votes[i].Type = voteType
			s.votes[i].Weight = weight
			s.votes[i].LastWeightUpdate = now
		}
	}
	return nil
}

func (s *fakeVoteStore) Delete(ctx context.Context, q repository.Querier, userID, postID string) error {
	s.log.add("votes.Delete")
	kept := s.votes[:0]
	for _, v := range s.votes {
		if v.UserID != userID || v.PostID != postID {
			kept = append(kept, v)
		}
	}
	s.votes = kept
	return nil
}

type fakePostStore struct {
	log  *callLog
	post repository.PostWithAuthor
}

func (s *fakePostStore) FindForUpdate(ctx context.Context, q repository.Querier, postID string) (*repository.PostWithAuthor, error) {
	s.log.add("posts.FindForUpdate")
	pa := s.post
	return &pa, nil
}

func (s *fakePostStore) UpdateScore(ctx context.Context, q repository.Querier, postID string, score float64, now time.Time) error {
	s.log.add("posts.UpdateScore")
	s.post.Post.CredibilityScore = score
	return nil
}

type fakeUserStore struct {
	log        *callLog
	voterScore float64
	touchQ     repository.Querier
	touchAt    time.Time
}

func (s *fakeUserStore) GetCredibilityScore(ctx context.Context, q repository.Querier, userID string) (float64, error) {
	s.log.add("users.GetCredibilityScore")
	return s.voterScore, nil
}

func (s *fakeUserStore) UpdateScore(ctx context.Context, q repository.Querier, userID string, score float64, now time.Time) error {
	s.log.add("users.UpdateScore")
	return nil
}

func (s *fakeUserStore) TouchLastActive(ctx context.Context, q repository.Querier, userID string, now time.Time) error {
	s.log.add("users.TouchLastActive")
	s.touchQ = q
	s.touchAt = now
	return nil
}

func (s *fakeUserStore) FindByID(ctx context.Context, q repository.Querier, userID string) (*model.User, error) {
	return &model.User{ID: userID, Username: "author"}, nil
}

func (s *fakeUserStore) NotifyRankChange(ctx context.Context, q repository.Querier, userID string) error {
	s.log.add("users.NotifyRankChange")
	return nil
}

type allowAllLimiter struct{}

func (allowAllLimiter) CheckVoteRateLimit(ctx context.Context, userID string) (bool, error) {
	return true, nil
}

type denyLimiter struct{}

func (denyLimiter) CheckVoteRateLimit(ctx context.Context, userID string) (bool, error) {
	return false, nil
}

type voteEnv struct {
	log   *callLog
	db    *fakeDB
	votes *fakeVoteStore
	users *fakeUserStore
	clock clockwork.Clock
	svc   *VoteService
}

func newVoteEnv(t *testing.T, limiter voteRateLimiter) *voteEnv {
	t.Helper()

	log := &callLog{}
	db := &fakeDB{log: log, tx: &fakeTx{log: log}}
	votes := &fakeVoteStore{log: log}
	posts := &fakePostStore{
		log: log,
		post: repository.PostWithAuthor{
			Post:        model.Post{ID: "post1", AuthorID: "author1", CredibilityScore: 5},
			AuthorID:    "author1",
			AuthorScore: 20,
		},
	}
	users := &fakeUserStore{log: log, voterScore: 10}
	clock := clockwork.NewFakeClock()

	svc := NewVoteService(db, votes, posts, users,
		NewCredibilityService(), limiter, NewAuditService(nil), nil, clock)

	return &voteEnv{log: log, db: db, votes: votes, users: users, clock: clock, svc: svc}
}

func TestApplyVoteCast(t *testing.T) {
	env := newVoteEnv(t, allowAllLimiter{})
	castsBefore := testutil.ToFloat64(votesApplied.WithLabelValues("cast"))

	resp, err := env.svc.ApplyVote(context.Background(), "voter1", "post1", model.VoteUp)
	require.NoError(t, err)

	assert.InDelta(t, 5.2398, resp.PostScore, 1e-4)
	assert.Len(t, env.votes.votes, 1)
	assert.Equal(t, model.VoteUp, env.votes.votes[0].Type)
	assert.Equal(t, castsBefore+1, testutil.ToFloat64(votesApplied.WithLabelValues("cast")))
}

func TestApplyVoteVoterActivityWrittenAfterCommit(t *testing.T) {
	env := newVoteEnv(t, allowAllLimiter{})

	_, err := env.svc.ApplyVote(context.Background(), "voter1", "post1", model.VoteUp)
	require.NoError(t, err)

	// The transaction's locked set is the post and its author; the voter's
	// own row must only be written once those locks are released, otherwise
	// two users voting on each other's posts can deadlock.
	commit := env.log.index("tx.Commit")
	touch := env.log.index("users.TouchLastActive")
	require.GreaterOrEqual(t, commit, 0)
	require.GreaterOrEqual(t, touch, 0)
	assert.Greater(t, touch, commit, "last_active write must happen after commit")
	assert.Same(t, env.db, env.users.touchQ, "last_active write must not use the transaction")
	assert.Equal(t, env.clock.Now(), env.users.touchAt)
}

func TestApplyVoteRateLimited(t *testing.T) {
	env := newVoteEnv(t, denyLimiter{})

	resp, err := env.svc.ApplyVote(context.Background(), "voter1", "post1", model.VoteUp)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Zero(t, env.db.beginCalls, "a rejected vote must not open a transaction")
	assert.Empty(t, env.log.calls)
}

func TestApplyVoteCooldownBlocksSecondVote(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	env := newVoteEnv(t, NewVoteLimiter(client))
	ctx := context.Background()

	_, err := env.svc.ApplyVote(ctx, "voter1", "post1", model.VoteUp)
	require.NoError(t, err)
	require.Len(t, env.votes.votes, 1)

	// Second request inside the window: rejected before any ledger access,
	// existing vote and scores untouched.
	resp, err := env.svc.ApplyVote(ctx, "voter1", "post1", model.VoteUp)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Len(t, env.votes.votes, 1)
	assert.Equal(t, 1, env.db.beginCalls)

	// After the cooldown expires the same request goes through; UP on an
	// existing UP is a retract.
	mr.FastForward(VoteCooldown + time.Second)
	_, err = env.svc.ApplyVote(ctx, "voter1", "post1", model.VoteUp)
	require.NoError(t, err)
	assert.Empty(t, env.votes.votes)
}
