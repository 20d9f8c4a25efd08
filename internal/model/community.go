package model

import "time"

// Community represents a forum community with aggregated post credibility.
type Community struct {
	Slug             string    `json:"slug"`
	Name             string    `json:"name"`
	CredibilityScore float64   `json:"credibilityScore"`
	TotalPosts       int       `json:"totalPosts"`
	ScoredPosts      int       `json:"scoredPosts"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

// CommunityResponse is the API response for community lookups.
type CommunityResponse struct {
	Slug             string   `json:"slug"`
	Name             string   `json:"name"`
	CredibilityScore float64  `json:"credibilityScore"`
	TotalPosts       int      `json:"totalPosts"`
	ScoredPosts      int      `json:"scoredPosts"`
	TopDomains       []string `json:"topDomains"`
	LastUpdated      string   `json:"lastUpdated"`
}
