package repository

import (
	"context"

	"github.com/crediforum/crediforum-go/internal/model"
)

type CommunityRepo struct{}

func NewCommunityRepo() *CommunityRepo {
	return &CommunityRepo{}
}

// FindBySlug returns a single community.
func (r *CommunityRepo) FindBySlug(ctx context.Context, q Querier, slug string) (*model.Community, error) {
	query := `
		SELECT slug, name, credibility_score, total_posts, scored_posts, last_updated
		FROM communities
		WHERE slug = $1`

	var c model.Community
	err := q.QueryRow(ctx, query, slug).Scan(
		&c.Slug, &c.Name, &c.CredibilityScore, &c.TotalPosts, &c.ScoredPosts, &c.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// TopDomains returns the most common research domains among a community's posts.
func (r *CommunityRepo) TopDomains(ctx context.Context, q Querier, slug string, limit int) ([]string, error) {
	rows, err := q.Query(ctx, `
		SELECT research_domain
		FROM posts
		WHERE community_slug = $1 AND research_domain IS NOT NULL
		GROUP BY research_domain
		ORDER BY COUNT(*) DESC
		LIMIT $2`,
		slug, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		domains = append(domains, d)
	}
	return domains, rows.Err()
}

// ListSlugsWithPosts returns slugs of communities that have at least one post.
func (r *CommunityRepo) ListSlugsWithPosts(ctx context.Context, q Querier) ([]string, error) {
	rows, err := q.Query(ctx, `
		SELECT DISTINCT community_slug FROM posts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		slugs = append(slugs, s)
	}
	return slugs, rows.Err()
}

// RecomputeAggregates refreshes a community's aggregate credibility from its
// posts: mean credibility over posts that have received at least one vote.
func (r *CommunityRepo) RecomputeAggregates(ctx context.Context, q Querier, slug string) error {
	_, err := q.Exec(ctx, `
		UPDATE communities c
		SET credibility_score = agg.avg_score,
		    total_posts = agg.total,
		    scored_posts = agg.scored,
		    last_updated = NOW()
		FROM (
			SELECT
				COALESCE(AVG(p.credibility_score) FILTER (WHERE v.post_id IS NOT NULL), 0) AS avg_score,
				COUNT(DISTINCT p.id) AS total,
				COUNT(DISTINCT p.id) FILTER (WHERE v.post_id IS NOT NULL) AS scored
			FROM posts p
			LEFT JOIN votes v ON v.post_id = p.id
			WHERE p.community_slug = $1
		) agg
		WHERE c.slug = $1`,
		slug)
	return err
}
