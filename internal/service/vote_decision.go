package service

import "github.com/crediforum/crediforum-go/internal/model"

// VoteTransition is the ledger mutation an incoming vote resolves to.
type VoteTransition int

const (
	// TransitionCast creates a new vote row.
	TransitionCast VoteTransition = iota
	// TransitionFlip updates the existing row's direction and weight.
	TransitionFlip
	// TransitionRetract deletes the existing row (same direction voted twice).
	TransitionRetract
)

func (t VoteTransition) String() string {
	switch t {
	case TransitionCast:
		return "cast"
	case TransitionFlip:
		return "flip"
	case TransitionRetract:
		return "retract"
	default:
		return "unknown"
	}
}

// VoteSnapshot is the consistent read a vote decision is computed from. All
// fields must come from a single transactional snapshot.
type VoteSnapshot struct {
	VoterCredibility float64
	PostScore        float64
	AuthorScore      float64
	// Existing is the acting voter's current vote on the post, if any.
	Existing *model.Vote
	// OtherVotes are the post's votes excluding the acting voter's own.
	// Consensus reflects the rest of the community's judgment, so the
	// actor's vote never feeds the author update.
	OtherVotes []model.Vote
}

// VoteDecision is the resolved outcome of applying a requested vote to a
// snapshot: which ledger transition to perform and the new aggregate scores.
type VoteDecision struct {
	Transition     VoteTransition
	VoteWeight     float64
	PostConsensus  float64
	NewPostScore   float64
	NewAuthorScore float64
	DeltaPost      float64
	DeltaAuthor    float64
}

// ResolveVote runs the cast/flip/retract state machine against a snapshot.
//
//	no existing vote            -> cast  (fresh weight, full delta)
//	existing type == requested  -> retract (reverse using the stored weight)
//	existing type != requested  -> flip  (fresh weight, full delta)
//
// A retract undoes the original direction using the weight recorded at cast
// time, not a freshly recomputed one, so a cast/retract round trip returns
// the post score to its prior value.
func (s *CredibilityService) ResolveVote(snap VoteSnapshot, requested model.VoteType) VoteDecision {
	d := VoteDecision{
		VoteWeight: s.ComputeVoteWeight(snap.VoterCredibility),
	}

	switch {
	case snap.Existing == nil:
		d.Transition = TransitionCast
		d.NewPostScore = s.UpdatePostCredibility(snap.PostScore, requested, d.VoteWeight)
	case snap.Existing.Type == requested:
		d.Transition = TransitionRetract
		d.NewPostScore = s.UpdatePostCredibility(snap.PostScore, requested.Opposite(), snap.Existing.Weight)
	default:
		d.Transition = TransitionFlip
		d.NewPostScore = s.UpdatePostCredibility(snap.PostScore, requested, d.VoteWeight)
	}

	d.PostConsensus = s.ComputePostConsensus(snap.OtherVotes)
	d.NewAuthorScore = s.UpdateAuthorCredibility(snap.AuthorScore, d.PostConsensus)
	d.DeltaPost = d.NewPostScore - snap.PostScore
	d.DeltaAuthor = d.NewAuthorScore - snap.AuthorScore

	return d
}
