package model

import "time"

// Post represents a scored content unit owned by a community.
type Post struct {
	ID               string    `json:"id"`
	CommunitySlug    string    `json:"communitySlug"`
	AuthorID         string    `json:"authorId"`
	Title            string    `json:"title"`
	CredibilityScore float64   `json:"credibilityScore"`
	ResearchDomain   *string   `json:"researchDomain,omitempty"`
	CitationCount    int       `json:"citationCount"`
	CreatedAt        time.Time `json:"createdAt"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

// PostSummary is the reduced post shape used in credibility detail views.
type PostSummary struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	CredibilityScore float64 `json:"credibilityScore"`
	ResearchDomain   *string `json:"researchDomain,omitempty"`
}

// PostResponse is the API response for post lookups.
type PostResponse struct {
	ID               string    `json:"id"`
	CommunitySlug    string    `json:"communitySlug"`
	Title            string    `json:"title"`
	AuthorID         string    `json:"authorId"`
	AuthorUsername   string    `json:"authorUsername"`
	CredibilityScore float64   `json:"credibilityScore"`
	ResearchDomain   *string   `json:"researchDomain,omitempty"`
	CitationCount    int       `json:"citationCount"`
	TotalVotes       int       `json:"totalVotes"`
	Consensus        float64   `json:"consensus"`
	CreatedAt        time.Time `json:"createdAt"`
	LastUpdated      time.Time `json:"lastUpdated"`
}
