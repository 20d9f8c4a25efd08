package repository

import (
	"context"
	"time"

	"github.com/crediforum/crediforum-go/internal/model"
)

type PostRepo struct{}

func NewPostRepo() *PostRepo {
	return &PostRepo{}
}

// PostWithAuthor bundles a post with its author's scoring fields.
type PostWithAuthor struct {
	Post        model.Post
	AuthorID    string
	AuthorScore float64
}

// FindForUpdate loads a post joined with its author and takes row locks on
// both, serializing concurrent vote applications against the same post.
func (r *PostRepo) FindForUpdate(ctx context.Context, q Querier, postID string) (*PostWithAuthor, error) {
	query := `
		SELECT p.id, p.community_slug, p.author_id, p.title, p.credibility_score,
		       p.research_domain, p.citation_count, p.created_at, p.last_updated,
		       u.credibility_score
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = $1
		FOR UPDATE OF p, u`

	var pa PostWithAuthor
	err := q.QueryRow(ctx, query, postID).Scan(
		&pa.Post.ID, &pa.Post.CommunitySlug, &pa.Post.AuthorID, &pa.Post.Title,
		&pa.Post.CredibilityScore, &pa.Post.ResearchDomain, &pa.Post.CitationCount,
		&pa.Post.CreatedAt, &pa.Post.LastUpdated,
		&pa.AuthorScore,
	)
	if err != nil {
		return nil, err
	}
	pa.AuthorID = pa.Post.AuthorID
	return &pa, nil
}

// FindByID returns a single post without locking.
func (r *PostRepo) FindByID(ctx context.Context, q Querier, postID string) (*model.Post, error) {
	query := `
		SELECT id, community_slug, author_id, title, credibility_score,
		       research_domain, citation_count, created_at, last_updated
		FROM posts
		WHERE id = $1`

	var p model.Post
	err := q.QueryRow(ctx, query, postID).Scan(
		&p.ID, &p.CommunitySlug, &p.AuthorID, &p.Title, &p.CredibilityScore,
		&p.ResearchDomain, &p.CitationCount, &p.CreatedAt, &p.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateScore persists a new credibility score onto a post.
func (r *PostRepo) UpdateScore(ctx context.Context, q Querier, postID string, score float64, now time.Time) error {
	_, err := q.Exec(ctx, `
		UPDATE posts SET credibility_score = $2, last_updated = $3 WHERE id = $1`,
		postID, score, now)
	return err
}

// TopByAuthor returns the author's highest-credibility posts.
func (r *PostRepo) TopByAuthor(ctx context.Context, q Querier, authorID string, limit int) ([]model.PostSummary, error) {
	rows, err := q.Query(ctx, `
		SELECT id, title, credibility_score, research_domain
		FROM posts
		WHERE author_id = $1
		ORDER BY credibility_score DESC
		LIMIT $2`,
		authorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.PostSummary
	for rows.Next() {
		var p model.PostSummary
		if err := rows.Scan(&p.ID, &p.Title, &p.CredibilityScore, &p.ResearchDomain); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
