package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIdea(t *testing.T) *IdeaBox {
	t.Helper()
	i, err := NewIdea(validIdeaProps(), &seqIDs{}, testNow)
	require.NoError(t, err)
	return i
}

func approvedIdea(t *testing.T) *IdeaBox {
	t.Helper()
	i := newTestIdea(t)
	require.NoError(t, i.StartReview(testNow))
	_, err := i.Approve("user-mgr", "", testNow)
	require.NoError(t, err)
	return i
}

func TestNewIdea_Defaults(t *testing.T) {
	i := newTestIdea(t)
	assert.Equal(t, IdeaSubmitted, i.Status)
	assert.Equal(t, LevelMedium, i.Urgency)
	assert.Equal(t, LevelMedium, i.Importance)
}

func TestNewIdea_Validation(t *testing.T) {
	props := validIdeaProps()
	props.Title = " "
	_, err := NewIdea(props, &seqIDs{}, testNow)
	assert.Equal(t, "title", FieldOf(err))

	props = validIdeaProps()
	props.SourceType = "RUMOR"
	_, err = NewIdea(props, &seqIDs{}, testNow)
	assert.Equal(t, "sourceType", FieldOf(err))

	props = validIdeaProps()
	props.Urgency = "EXTREME"
	_, err = NewIdea(props, &seqIDs{}, testNow)
	assert.Equal(t, "urgency", FieldOf(err))
}

func TestIdeaStatus_TransitionTable(t *testing.T) {
	all := []IdeaStatus{IdeaSubmitted, IdeaUnderReview, IdeaApproved, IdeaRejected, IdeaConverted, IdeaArchived}
	allowed := map[IdeaStatus][]IdeaStatus{
		IdeaSubmitted:   {IdeaUnderReview, IdeaArchived},
		IdeaUnderReview: {IdeaApproved, IdeaRejected, IdeaArchived},
		IdeaApproved:    {IdeaConverted, IdeaArchived},
	}
	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
	assert.True(t, IdeaRejected.IsTerminal())
	assert.True(t, IdeaConverted.IsTerminal())
	assert.True(t, IdeaArchived.IsTerminal())
	assert.False(t, IdeaApproved.IsTerminal())
}

func TestIdea_ApproveEmitsEvent(t *testing.T) {
	i := newTestIdea(t)

	_, err := i.Approve("user-mgr", "", testNow)
	require.Error(t, err, "cannot approve before review")
	assert.True(t, IsInvariant(err))

	require.NoError(t, i.StartReview(testNow))
	ev, err := i.Approve("user-mgr", "good one", testNow)
	require.NoError(t, err)
	assert.Equal(t, IdeaApproved, i.Status)
	assert.Equal(t, EventIdeaApproved, ev.Type)
	assert.Equal(t, i.ID, ev.AggregateID)
	assert.Equal(t, "user-mgr", i.ReviewedBy)
	require.NotNil(t, i.ReviewedAt)
}

func TestIdea_RejectRequiresNotes(t *testing.T) {
	i := newTestIdea(t)
	require.NoError(t, i.StartReview(testNow))

	for _, notes := range []string{"", "   "} {
		err := i.Reject("user-mgr", notes, testNow)
		require.Error(t, err)
		assert.Equal(t, "reviewNotes", FieldOf(err))
	}
	assert.Equal(t, IdeaUnderReview, i.Status)

	require.NoError(t, i.Reject("user-mgr", "duplicate of IDEA-2025-00012", testNow))
	assert.Equal(t, IdeaRejected, i.Status)

	require.Error(t, i.Archive(testNow), "terminal status accepts nothing")
}

func TestIdea_ConvertRequiresApproval(t *testing.T) {
	for _, prep := range []func(*IdeaBox){
		func(*IdeaBox) {},
		func(i *IdeaBox) { _ = i.StartReview(testNow) },
		func(i *IdeaBox) { _ = i.Archive(testNow) },
	} {
		i := newTestIdea(t)
		prep(i)
		_, err := i.Convert(ConvertToActionPlan, "plan-9", testNow)
		require.Error(t, err)
		assert.True(t, IsInvariant(err))
		assert.Empty(t, i.ConvertedEntityID)
	}
}

func TestIdea_ApproveThenConvert(t *testing.T) {
	i := approvedIdea(t)
	at := testNow.Add(time.Hour)

	ev, err := i.Convert(ConvertToActionPlan, "plan-9", at)
	require.NoError(t, err)
	assert.Equal(t, IdeaConverted, i.Status)
	assert.Equal(t, ConvertToActionPlan, i.ConvertedTo)
	assert.Equal(t, "plan-9", i.ConvertedEntityID)
	require.NotNil(t, i.ConvertedAt)
	assert.Equal(t, at, *i.ConvertedAt)
	assert.Equal(t, EventIdeaConverted, ev.Type)
	assert.Equal(t, "plan-9", ev.Payload["convertedEntityId"])

	_, err = i.Convert(ConvertToActionPlan, "plan-10", at)
	assert.Error(t, err)
}

func TestIdea_Refine(t *testing.T) {
	i := newTestIdea(t)
	cost := decimal.RequireFromString("3200.00")
	impact := "Cuts dwell time by a third"
	require.NoError(t, i.Refine(IdeaRefinement{EstimatedImpact: &impact, EstimatedCost: &cost}, testNow))
	assert.Equal(t, impact, i.EstimatedImpact)
	assert.True(t, i.EstimatedCost.Valid)

	neg := decimal.NewFromInt(-1)
	assert.Error(t, i.Refine(IdeaRefinement{EstimatedCost: &neg}, testNow))

	require.NoError(t, i.Archive(testNow))
	assert.Error(t, i.Refine(IdeaRefinement{EstimatedImpact: &impact}, testNow))
}

func TestIdea_PriorityQuadrant(t *testing.T) {
	cases := []struct {
		urgency, importance Level
		want                Quadrant
		priority            Priority
	}{
		{LevelHigh, LevelHigh, QuadrantDoFirst, PriorityHigh},
		{LevelLow, LevelHigh, QuadrantSchedule, PriorityMedium},
		{LevelHigh, LevelLow, QuadrantDelegate, PriorityMedium},
		{LevelMedium, LevelHigh, QuadrantEliminate, PriorityLow},
		{LevelLow, LevelLow, QuadrantEliminate, PriorityLow},
	}
	for _, tc := range cases {
		i := &IdeaBox{Urgency: tc.urgency, Importance: tc.importance}
		assert.Equal(t, tc.want, i.PriorityQuadrant(), "%s/%s", tc.urgency, tc.importance)
		assert.Equal(t, tc.priority, i.PriorityQuadrant().SuggestedPriority())
	}
}
