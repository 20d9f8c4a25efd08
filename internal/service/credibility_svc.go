package service

import (
	"math"

	"github.com/crediforum/crediforum-go/internal/model"
)

const (
	// Alpha is the learning rate for post score updates.
	Alpha = 0.1
	// Beta is the learning rate for author score updates.
	Beta = 0.05

	// Credibility scores are clamped to [MinCredibility, MaxCredibility]
	// for both users and posts.
	MinCredibility = 0.1
	MaxCredibility = 100.0
)

// CredibilityService holds the pure scoring model: vote weights, incremental
// post/author score updates, and post consensus. All methods are
// deterministic and perform no I/O.
type CredibilityService struct{}

func NewCredibilityService() *CredibilityService {
	return &CredibilityService{}
}

// ComputeVoteWeight returns the magnitude of a vote cast by a voter with the
// given credibility score:
//
//	weight = ln(1 + max(MinCredibility, voterCredibility))
//
// Monotonically increasing in voter credibility and always positive; the
// floor keeps ln away from non-positive arguments.
func (s *CredibilityService) ComputeVoteWeight(voterCredibility float64) float64 {
	return math.Log(1 + math.Max(MinCredibility, voterCredibility))
}

// UpdatePostCredibility applies one vote's directional delta to a post score:
//
//	score' = clamp(score + Alpha * direction * weight)
func (s *CredibilityService) UpdatePostCredibility(currentScore float64, voteType model.VoteType, weight float64) float64 {
	delta := Alpha * voteType.Direction() * weight
	return clampCredibility(currentScore + delta)
}

// UpdateAuthorCredibility nudges an author's score toward the community's
// judgment of their post:
//
//	score' = clamp(score + Beta * postConsensus)
func (s *CredibilityService) UpdateAuthorCredibility(currentScore, postConsensus float64) float64 {
	return clampCredibility(currentScore + Beta*postConsensus)
}

// ComputePostConsensus returns the mean signed weighted vote over the given
// votes, or 0 for an empty set. Order-independent.
func (s *CredibilityService) ComputePostConsensus(votes []model.Vote) float64 {
	if len(votes) == 0 {
		return 0
	}
	var sum float64
	for _, v := range votes {
		sum += v.Type.Direction() * v.Weight
	}
	return sum / float64(len(votes))
}

func clampCredibility(score float64) float64 {
	return math.Max(MinCredibility, math.Min(MaxCredibility, score))
}
