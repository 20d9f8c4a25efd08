package model

import "time"

// User represents a forum user with credibility metadata.
type User struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	CredibilityScore float64   `json:"credibilityScore"`
	CredibilityRank  int       `json:"credibilityRank"`
	Expertise        []string  `json:"expertise"`
	LastScoreUpdate  time.Time `json:"-"`
	CreatedAt        time.Time `json:"-"`
	LastActive       time.Time `json:"-"`
}

// UserResponse is the API response for user profile lookups.
type UserResponse struct {
	ID               string   `json:"id"`
	Username         string   `json:"username"`
	CredibilityScore float64  `json:"credibilityScore"`
	CredibilityRank  int      `json:"credibilityRank"`
	Expertise        []string `json:"expertise"`
	TotalPosts       int      `json:"totalPosts"`
	TotalVotesCast   int      `json:"totalVotesCast"`
	AccountAge       int      `json:"accountAge"`
}

// LeaderboardEntry is one row of the top-users credibility listing.
type LeaderboardEntry struct {
	ID               string   `json:"id"`
	Username         string   `json:"username"`
	CredibilityScore float64  `json:"credibilityScore"`
	CredibilityRank  int      `json:"credibilityRank"`
	Expertise        []string `json:"expertise"`
	PostCount        int      `json:"postCount"`
}

// UserCredibilityDetail is the detail view for a single user, including
// their highest-credibility posts.
type UserCredibilityDetail struct {
	ID               string        `json:"id"`
	Username         string        `json:"username"`
	CredibilityScore float64       `json:"credibilityScore"`
	CredibilityRank  int           `json:"credibilityRank"`
	Expertise        []string      `json:"expertise"`
	LastScoreUpdate  time.Time     `json:"lastScoreUpdate"`
	TopPosts         []PostSummary `json:"topPosts"`
}

// StatsResponse is the API response for global statistics.
type StatsResponse struct {
	TotalPosts       int            `json:"totalPosts"`
	TotalCommunities int            `json:"totalCommunities"`
	TotalVotes       int            `json:"totalVotes"`
	TotalUsers       int            `json:"totalUsers"`
	ActiveUsers24h   int            `json:"activeUsers24h"`
	TopDomains       map[string]int `json:"topDomains"`
}
