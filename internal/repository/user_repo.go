package repository

import (
	"context"
	"time"

	"github.com/crediforum/crediforum-go/internal/model"
)

type UserRepo struct{}

func NewUserRepo() *UserRepo {
	return &UserRepo{}
}

// GetCredibilityScore returns a user's current credibility score.
func (r *UserRepo) GetCredibilityScore(ctx context.Context, q Querier, userID string) (float64, error) {
	var score float64
	err := q.QueryRow(ctx, `
		SELECT credibility_score FROM users WHERE id = $1`, userID).Scan(&score)
	return score, err
}

// UpdateScore persists a new credibility score onto a user.
func (r *UserRepo) UpdateScore(ctx context.Context, q Querier, userID string, score float64, now time.Time) error {
	_, err := q.Exec(ctx, `
		UPDATE users SET credibility_score = $2, last_score_update = $3 WHERE id = $1`,
		userID, score, now)
	return err
}

// TouchLastActive bumps a user's last_active timestamp.
func (r *UserRepo) TouchLastActive(ctx context.Context, q Querier, userID string, now time.Time) error {
	_, err := q.Exec(ctx, `UPDATE users SET last_active = $2 WHERE id = $1`, userID, now)
	return err
}

// FindByID returns a single user.
func (r *UserRepo) FindByID(ctx context.Context, q Querier, userID string) (*model.User, error) {
	query := `
		SELECT id, username, credibility_score, credibility_rank, expertise,
		       last_score_update, created_at, last_active
		FROM users
		WHERE id = $1`

	var u model.User
	err := q.QueryRow(ctx, query, userID).Scan(
		&u.ID, &u.Username, &u.CredibilityScore, &u.CredibilityRank, &u.Expertise,
		&u.LastScoreUpdate, &u.CreatedAt, &u.LastActive,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CountActivity returns the user's post count and votes cast.
func (r *UserRepo) CountActivity(ctx context.Context, q Querier, userID string) (posts, votes int, err error) {
	err = q.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM posts WHERE author_id = $1),
			(SELECT COUNT(*) FROM votes WHERE user_id = $1)`,
		userID).Scan(&posts, &votes)
	return posts, votes, err
}

// Leaderboard returns the top users by credibility score.
func (r *UserRepo) Leaderboard(ctx context.Context, q Querier, limit int) ([]model.LeaderboardEntry, error) {
	rows, err := q.Query(ctx, `
		SELECT u.id, u.username, u.credibility_score, u.credibility_rank, u.expertise,
		       (SELECT COUNT(*) FROM posts p WHERE p.author_id = u.id) AS post_count
		FROM users u
		ORDER BY u.credibility_score DESC
		LIMIT $1`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.LeaderboardEntry
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.ID, &e.Username, &e.CredibilityScore, &e.CredibilityRank, &e.Expertise, &e.PostCount); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// NotifyRankChange tells the rank worker that a user's score moved.
func (r *UserRepo) NotifyRankChange(ctx context.Context, q Querier, userID string) error {
	_, err := q.Exec(ctx, `SELECT pg_notify('rank_changes', $1)`, userID)
	return err
}

// RecomputeRanks reassigns credibility_rank for every user from a dense rank
// over credibility_score. Run by the rank worker, never per-vote.
func (r *UserRepo) RecomputeRanks(ctx context.Context, q Querier) (int, error) {
	tag, err := q.Exec(ctx, `
		UPDATE users u
		SET credibility_rank = ranked.rank
		FROM (
			SELECT id, DENSE_RANK() OVER (ORDER BY credibility_score DESC) AS rank
			FROM users
		) ranked
		WHERE u.id = ranked.id AND u.credibility_rank IS DISTINCT FROM ranked.rank`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// GetStats returns aggregate statistics across all tables.
func (r *UserRepo) GetStats(ctx context.Context, q Querier) (*model.StatsResponse, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM posts) AS total_posts,
			(SELECT COUNT(*) FROM communities) AS total_communities,
			(SELECT COUNT(*) FROM votes) AS total_votes,
			(SELECT COUNT(*) FROM users) AS total_users,
			(SELECT COUNT(*) FROM users WHERE last_active > NOW() - INTERVAL '24 hours') AS active_users_24h`

	var stats model.StatsResponse
	err := q.QueryRow(ctx, query).Scan(
		&stats.TotalPosts, &stats.TotalCommunities, &stats.TotalVotes,
		&stats.TotalUsers, &stats.ActiveUsers24h,
	)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, `
		SELECT research_domain, COUNT(*) AS total
		FROM posts
		WHERE research_domain IS NOT NULL
		GROUP BY research_domain
		ORDER BY total DESC
		LIMIT 10`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats.TopDomains = make(map[string]int)
	for rows.Next() {
		var domain string
		var count int
		if err := rows.Scan(&domain, &count); err != nil {
			return nil, err
		}
		stats.TopDomains[domain] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &stats, nil
}
