package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crediforum/crediforum-go/internal/model"
)

func TestResolveVoteCast(t *testing.T) {
	svc := NewCredibilityService()

	snap := VoteSnapshot{
		VoterCredibility: 10,
		PostScore:        5,
		AuthorScore:      20,
	}

	d := svc.ResolveVote(snap, model.VoteUp)

	assert.Equal(t, TransitionCast, d.Transition)
	assert.InDelta(t, math.Log(11), d.VoteWeight, 1e-9)
	// 5 + 0.1 * 1 * ln(11) ≈ 5.2398
	assert.InDelta(t, 5.2398, d.NewPostScore, 1e-4)
	assert.InDelta(t, d.NewPostScore-5, d.DeltaPost, 1e-12)
	// No other votes: consensus 0, author unchanged.
	assert.Zero(t, d.PostConsensus)
	assert.InDelta(t, 20, d.NewAuthorScore, 1e-12)
	assert.Zero(t, d.DeltaAuthor)
}

func TestResolveVoteRetractRestoresScore(t *testing.T) {
	svc := NewCredibilityService()

	const initialScore = 5.0

	// Cast UP, then request UP again against the post-cast state.
	cast := svc.ResolveVote(VoteSnapshot{
		VoterCredibility: 10,
		PostScore:        initialScore,
		AuthorScore:      20,
	}, model.VoteUp)
	require.Equal(t, TransitionCast, cast.Transition)

	retract := svc.ResolveVote(VoteSnapshot{
		VoterCredibility: 10,
		PostScore:        cast.NewPostScore,
		AuthorScore:      20,
		Existing:         &model.Vote{Type: model.VoteUp, Weight: cast.VoteWeight},
	}, model.VoteUp)

	assert.Equal(t, TransitionRetract, retract.Transition)
	assert.InDelta(t, initialScore, retract.NewPostScore, 1e-9,
		"cast then retract should return the post score to its pre-vote value")
}

func TestResolveVoteRetractUsesStoredWeight(t *testing.T) {
	svc := NewCredibilityService()

	// The voter's credibility rose since the original cast; the retract
	// must still reverse using the weight recorded at cast time.
	storedWeight := math.Log(11) // cast when credibility was 10
	d := svc.ResolveVote(VoteSnapshot{
		VoterCredibility: 80, // current credibility, would give a larger weight
		PostScore:        6,
		AuthorScore:      20,
		Existing:         &model.Vote{Type: model.VoteUp, Weight: storedWeight},
	}, model.VoteUp)

	assert.Equal(t, TransitionRetract, d.Transition)
	want := svc.UpdatePostCredibility(6, model.VoteDown, storedWeight)
	assert.InDelta(t, want, d.NewPostScore, 1e-12)
}

func TestResolveVoteFlip(t *testing.T) {
	svc := NewCredibilityService()

	scoreBeforeFlip := 5.3
	d := svc.ResolveVote(VoteSnapshot{
		VoterCredibility: 10,
		PostScore:        scoreBeforeFlip,
		AuthorScore:      20,
		Existing:         &model.Vote{Type: model.VoteUp, Weight: 1.9},
	}, model.VoteDown)

	assert.Equal(t, TransitionFlip, d.Transition)
	// The flip applies the new DOWN's full directional delta with a
	// freshly computed weight, not the stored one.
	want := svc.UpdatePostCredibility(scoreBeforeFlip, model.VoteDown, d.VoteWeight)
	assert.InDelta(t, want, d.NewPostScore, 1e-12)
	assert.InDelta(t, math.Log(11), d.VoteWeight, 1e-9)
}

func TestResolveVoteConsensusExcludesActor(t *testing.T) {
	svc := NewCredibilityService()

	// OtherVotes already excludes the acting voter's vote; the author
	// update must be driven by those alone.
	d := svc.ResolveVote(VoteSnapshot{
		VoterCredibility: 10,
		PostScore:        5,
		AuthorScore:      20,
		OtherVotes: []model.Vote{
			{Type: model.VoteUp, Weight: 2.0},
			{Type: model.VoteDown, Weight: 1.0},
		},
	}, model.VoteUp)

	assert.InDelta(t, 0.5, d.PostConsensus, 1e-12)
	assert.InDelta(t, 20+Beta*0.5, d.NewAuthorScore, 1e-12)
	assert.InDelta(t, Beta*0.5, d.DeltaAuthor, 1e-12)
}

func TestResolveVoteDeltas(t *testing.T) {
	svc := NewCredibilityService()

	snap := VoteSnapshot{
		VoterCredibility: 3,
		PostScore:        42,
		AuthorScore:      7,
		OtherVotes:       []model.Vote{{Type: model.VoteDown, Weight: 4.0}},
	}
	d := svc.ResolveVote(snap, model.VoteDown)

	assert.InDelta(t, d.NewPostScore-snap.PostScore, d.DeltaPost, 1e-12)
	assert.InDelta(t, d.NewAuthorScore-snap.AuthorScore, d.DeltaAuthor, 1e-12)
}

func TestResolveVoteSequentialOrderIndependence(t *testing.T) {
	svc := NewCredibilityService()

	// Applying distinct voters' casts sequentially must converge to the
	// same post score regardless of arrival order, because each cast adds
	// an independent clamped delta.
	weights := []struct {
		cred float64
		t    model.VoteType
	}{
		{10, model.VoteUp},
		{3, model.VoteDown},
		{55, model.VoteUp},
	}

	apply := func(order []int) float64 {
		score := 5.0
		for _, i := range order {
			d := svc.ResolveVote(VoteSnapshot{
				VoterCredibility: weights[i].cred,
				PostScore:        score,
				AuthorScore:      20,
			}, weights[i].t)
			score = d.NewPostScore
		}
		return score
	}

	a := apply([]int{0, 1, 2})
	b := apply([]int{2, 0, 1})
	c := apply([]int{1, 2, 0})

	assert.InDelta(t, a, b, 1e-9)
	assert.InDelta(t, a, c, 1e-9)
}
