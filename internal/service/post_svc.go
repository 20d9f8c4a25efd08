package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crediforum/crediforum-go/internal/model"
	"github.com/crediforum/crediforum-go/internal/repository"
)

type PostService struct {
	pool  *pgxpool.Pool
	posts *repository.PostRepo
	votes *repository.VoteRepo
	users *repository.UserRepo
	cred  *CredibilityService
	cache *CacheService
}

func NewPostService(pool *pgxpool.Pool, posts *repository.PostRepo, votes *repository.VoteRepo, users *repository.UserRepo, cred *CredibilityService, cache *CacheService) *PostService {
	return &PostService{pool: pool, posts: posts, votes: votes, users: users, cred: cred, cache: cache}
}

// Lookup returns the post response for a given post ID.
// Uses cache-aside: check Redis first, fall back to DB, then populate cache.
func (s *PostService) Lookup(ctx context.Context, postID string) (*model.PostResponse, error) {
	if s.cache != nil {
		cached, err := s.cache.GetPost(ctx, postID)
		if err != nil {
			log.Printf("cache: post get error: %v", err)
		} else if cached != nil {
			var resp model.PostResponse
			if err := json.Unmarshal(cached, &resp); err == nil {
				cacheHits.Inc()
				return &resp, nil
			}
		}
		cacheMisses.Inc()
	}

	p, err := s.posts.FindByID(ctx, s.pool, postID)
	if err != nil {
		return nil, err
	}

	author, err := s.users.FindByID(ctx, s.pool, p.AuthorID)
	if err != nil {
		return nil, err
	}

	votes, err := s.votes.ListByPost(ctx, s.pool, postID)
	if err != nil {
		return nil, err
	}

	resp := &model.PostResponse{
		ID:               p.ID,
		CommunitySlug:    p.CommunitySlug,
		Title:            p.Title,
		AuthorID:         p.AuthorID,
		AuthorUsername:   author.Username,
		CredibilityScore: p.CredibilityScore,
		ResearchDomain:   p.ResearchDomain,
		CitationCount:    p.CitationCount,
		TotalVotes:       len(votes),
		Consensus:        s.cred.ComputePostConsensus(votes),
		CreatedAt:        p.CreatedAt,
		LastUpdated:      p.LastUpdated,
	}

	if s.cache != nil {
		if err := s.cache.SetPost(ctx, postID, resp); err != nil {
			log.Printf("cache: post set error: %v", err)
		}
	}

	return resp, nil
}
