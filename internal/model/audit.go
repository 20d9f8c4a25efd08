package model

import "time"

// AuditEvent records one scoring decision. Events are pushed to a capped
// redis list for observability; they are not authoritative state.
type AuditEvent struct {
	EventID         string    `json:"eventId"`
	Timestamp       time.Time `json:"ts"`
	VoterID         string    `json:"voterId"`
	PostID          string    `json:"postId"`
	VoteType        VoteType  `json:"voteType"`
	VoteWeight      float64   `json:"voteWeight"`
	PrevPostScore   float64   `json:"prevPostScore"`
	NewPostScore    float64   `json:"newPostScore"`
	DeltaPost       float64   `json:"deltaPost"`
	PrevAuthorScore float64   `json:"prevAuthorScore"`
	NewAuthorScore  float64   `json:"newAuthorScore"`
	DeltaAuthor     float64   `json:"deltaAuthor"`
	PostConsensus   float64   `json:"postConsensus"`
}
