package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crediforum/crediforum-go/internal/model"
	"github.com/crediforum/crediforum-go/internal/repository"
)

type CommunityService struct {
	pool  *pgxpool.Pool
	repo  *repository.CommunityRepo
	cache *CacheService
}

func NewCommunityService(pool *pgxpool.Pool, repo *repository.CommunityRepo, cache *CacheService) *CommunityService {
	return &CommunityService{pool: pool, repo: repo, cache: cache}
}

// Lookup returns the community response for a given slug.
// Uses cache-aside: check Redis first, fall back to DB, then populate cache.
func (s *CommunityService) Lookup(ctx context.Context, slug string) (*model.CommunityResponse, error) {
	if s.cache != nil {
		cached, err := s.cache.GetCommunity(ctx, slug)
		if err != nil {
			log.Printf("cache: community get error: %v", err)
		} else if cached != nil {
			var resp model.CommunityResponse
			if err := json.Unmarshal(cached, &resp); err == nil {
				cacheHits.Inc()
				return &resp, nil
			}
		}
		cacheMisses.Inc()
	}

	c, err := s.repo.FindBySlug(ctx, s.pool, slug)
	if err != nil {
		return nil, err
	}

	topDomains, err := s.repo.TopDomains(ctx, s.pool, slug, 3)
	if err != nil {
		return nil, err
	}
	if topDomains == nil {
		topDomains = []string{}
	}

	resp := &model.CommunityResponse{
		Slug:             c.Slug,
		Name:             c.Name,
		CredibilityScore: c.CredibilityScore,
		TotalPosts:       c.TotalPosts,
		ScoredPosts:      c.ScoredPosts,
		TopDomains:       topDomains,
		LastUpdated:      c.LastUpdated.Format(time.RFC3339),
	}

	if s.cache != nil {
		if err := s.cache.SetCommunity(ctx, slug, resp); err != nil {
			log.Printf("cache: community set error: %v", err)
		}
	}

	return resp, nil
}
