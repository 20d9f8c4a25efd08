package repository

import (
	"context"
	"time"

	"github.com/crediforum/crediforum-go/internal/model"
)

// VoteRepo is the vote ledger: at most one row per (user, post) pair,
// enforced by the primary key. The ledger performs no scoring.
type VoteRepo struct{}

func NewVoteRepo() *VoteRepo {
	return &VoteRepo{}
}

// ListByPost returns all votes on a post. Used for consensus computation,
// which needs the full vote collection from the transaction snapshot.
func (r *VoteRepo) ListByPost(ctx context.Context, q Querier, postID string) ([]model.Vote, error) {
	rows, err := q.Query(ctx, `
		SELECT user_id, post_id, type, weight, voted_at, last_weight_update
		FROM votes
		WHERE post_id = $1`,
		postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var votes []model.Vote
	for rows.Next() {
		var v model.Vote
		if err := rows.Scan(&v.UserID, &v.PostID, &v.Type, &v.Weight, &v.VotedAt, &v.LastWeightUpdate); err != nil {
			return nil, err
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

// Create inserts a new vote row.
func (r *VoteRepo) Create(ctx context.Context, q Querier, userID, postID string, voteType model.VoteType, weight float64, now time.Time) error {
	_, err := q.Exec(ctx, `
		INSERT INTO votes (user_id, post_id, type, weight, voted_at, last_weight_update)
		VALUES ($1, $2, $3, $4, $5, $5)`,
		userID, postID, voteType, weight, now)
	return err
}

// Update overwrites the direction and weight of an existing vote.
func (r *VoteRepo) Update(ctx context.Context, q Querier, userID, postID string, voteType model.VoteType, weight float64, now time.Time) error {
	_, err := q.Exec(ctx, `
		UPDATE votes
		SET type = $3, weight = $4, last_weight_update = $5
		WHERE user_id = $1 AND post_id = $2`,
		userID, postID, voteType, weight, now)
	return err
}

// Delete removes the voter's row for a post.
func (r *VoteRepo) Delete(ctx context.Context, q Querier, userID, postID string) error {
	_, err := q.Exec(ctx, `
		DELETE FROM votes WHERE user_id = $1 AND post_id = $2`,
		userID, postID)
	return err
}
