package domain

// ExecutionStatus is the outcome recorded by one 3G verification.
type ExecutionStatus string

const (
	ExecutedOK       ExecutionStatus = "EXECUTED_OK"
	ExecutedPartial  ExecutionStatus = "EXECUTED_PARTIAL"
	NotExecuted      ExecutionStatus = "NOT_EXECUTED"
	ExecutionBlocked ExecutionStatus = "BLOCKED"
)

type executionPolicy struct {
	requiresFollowUp   bool
	requiresEscalation bool
}

var executionPolicies = map[ExecutionStatus]executionPolicy{
	ExecutedOK:       {requiresFollowUp: false, requiresEscalation: false},
	ExecutedPartial:  {requiresFollowUp: true, requiresEscalation: false},
	NotExecuted:      {requiresFollowUp: true, requiresEscalation: false},
	ExecutionBlocked: {requiresFollowUp: true, requiresEscalation: true},
}

func (s ExecutionStatus) Valid() bool {
	_, ok := executionPolicies[s]
	return ok
}

// RequiresFollowUp reports whether another verification must be scheduled.
func (s ExecutionStatus) RequiresFollowUp() bool {
	return executionPolicies[s].requiresFollowUp
}

// RequiresEscalation reports whether the outcome must be escalated to management.
func (s ExecutionStatus) RequiresEscalation() bool {
	return executionPolicies[s].requiresEscalation
}

// RequiresReproposition reports whether a new child plan should be proposed.
func (s ExecutionStatus) RequiresReproposition() bool {
	return s == NotExecuted || s == ExecutionBlocked
}
