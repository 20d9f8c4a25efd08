package model

import "time"

// VoteType is the direction of a vote.
type VoteType string

const (
	VoteUp   VoteType = "UP"
	VoteDown VoteType = "DOWN"
)

// Valid reports whether t is one of the two allowed directions.
func (t VoteType) Valid() bool {
	return t == VoteUp || t == VoteDown
}

// Direction returns +1 for UP and -1 for DOWN.
func (t VoteType) Direction() float64 {
	if t == VoteUp {
		return 1
	}
	return -1
}

// Opposite returns the reversed direction.
func (t VoteType) Opposite() VoteType {
	if t == VoteUp {
		return VoteDown
	}
	return VoteUp
}

// Vote is one row of the vote ledger: at most one per (user, post) pair.
// Weight is captured at cast or update time and is never recomputed
// retroactively for past votes.
type Vote struct {
	UserID           string    `json:"userId"`
	PostID           string    `json:"postId"`
	Type             VoteType  `json:"type"`
	Weight           float64   `json:"weight"`
	VotedAt          time.Time `json:"votedAt"`
	LastWeightUpdate time.Time `json:"lastWeightUpdate"`
}

// VoteRequest is the API request body for casting a vote.
type VoteRequest struct {
	PostID   string   `json:"postId"`
	VoteType VoteType `json:"voteType"`
}

// VoteResponse is the API response after a vote application.
type VoteResponse struct {
	PostScore     float64 `json:"postScore"`
	AuthorScore   float64 `json:"authorScore"`
	PostConsensus float64 `json:"postConsensus"`
	VoteWeight    float64 `json:"voteWeight"`
	DeltaPost     float64 `json:"deltaPost"`
	DeltaAuthor   float64 `json:"deltaAuthor"`
}
