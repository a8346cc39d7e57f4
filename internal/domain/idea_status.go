package domain

type IdeaStatus string

const (
	IdeaSubmitted   IdeaStatus = "SUBMITTED"
	IdeaUnderReview IdeaStatus = "UNDER_REVIEW"
	IdeaApproved    IdeaStatus = "APPROVED"
	IdeaRejected    IdeaStatus = "REJECTED"
	IdeaConverted   IdeaStatus = "CONVERTED"
	IdeaArchived    IdeaStatus = "ARCHIVED"
)

// ideaTransitions is the complete review lifecycle. Statuses without an
// entry are terminal.
var ideaTransitions = map[IdeaStatus][]IdeaStatus{
	IdeaSubmitted:   {IdeaUnderReview, IdeaArchived},
	IdeaUnderReview: {IdeaApproved, IdeaRejected, IdeaArchived},
	IdeaApproved:    {IdeaConverted, IdeaArchived},
}

func (s IdeaStatus) Valid() bool {
	switch s {
	case IdeaSubmitted, IdeaUnderReview, IdeaApproved, IdeaRejected, IdeaConverted, IdeaArchived:
		return true
	}
	return false
}

// CanTransitionTo reports whether target is reachable from s in one step.
func (s IdeaStatus) CanTransitionTo(target IdeaStatus) bool {
	for _, next := range ideaTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s accepts no further transitions.
func (s IdeaStatus) IsTerminal() bool {
	return len(ideaTransitions[s]) == 0
}
