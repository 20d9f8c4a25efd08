package service

import (
	"context"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crediforum/crediforum-go/internal/model"
	"github.com/crediforum/crediforum-go/internal/repository"
)

const (
	leaderboardSize = 50
	topPostsPerUser = 5
)

type UserService struct {
	pool  *pgxpool.Pool
	users *repository.UserRepo
	posts *repository.PostRepo
}

func NewUserService(pool *pgxpool.Pool, users *repository.UserRepo, posts *repository.PostRepo) *UserService {
	return &UserService{pool: pool, users: users, posts: posts}
}

// Lookup returns the profile response for a given user ID.
func (s *UserService) Lookup(ctx context.Context, userID string) (*model.UserResponse, error) {
	u, err := s.users.FindByID(ctx, s.pool, userID)
	if err != nil {
		return nil, err
	}

	postCount, voteCount, err := s.users.CountActivity(ctx, s.pool, userID)
	if err != nil {
		return nil, err
	}

	accountAge := int(math.Floor(time.Since(u.CreatedAt).Hours() / 24))

	return &model.UserResponse{
		ID:               u.ID,
		Username:         u.Username,
		CredibilityScore: u.CredibilityScore,
		CredibilityRank:  u.CredibilityRank,
		Expertise:        u.Expertise,
		TotalPosts:       postCount,
		TotalVotesCast:   voteCount,
		AccountAge:       accountAge,
	}, nil
}

// Leaderboard returns the top users by credibility score.
func (s *UserService) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	entries, err := s.users.Leaderboard(ctx, s.pool, leaderboardSize)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	return entries, nil
}

// CredibilityDetail returns one user's credibility view with their top posts.
func (s *UserService) CredibilityDetail(ctx context.Context, userID string) (*model.UserCredibilityDetail, error) {
	u, err := s.users.FindByID(ctx, s.pool, userID)
	if err != nil {
		return nil, err
	}

	topPosts, err := s.posts.TopByAuthor(ctx, s.pool, userID, topPostsPerUser)
	if err != nil {
		return nil, err
	}
	if topPosts == nil {
		topPosts = []model.PostSummary{}
	}

	return &model.UserCredibilityDetail{
		ID:               u.ID,
		Username:         u.Username,
		CredibilityScore: u.CredibilityScore,
		CredibilityRank:  u.CredibilityRank,
		Expertise:        u.Expertise,
		LastScoreUpdate:  u.LastScoreUpdate,
		TopPosts:         topPosts,
	}, nil
}

// GetStats returns aggregate platform statistics.
func (s *UserService) GetStats(ctx context.Context) (*model.StatsResponse, error) {
	return s.users.GetStats(ctx, s.pool)
}
