package domain

// PDCAPhase is one step of the Plan-Do-Check-Act cycle. The cycle only moves
// forward; ACT wraps back to PLAN.
type PDCAPhase string

const (
	PhasePlan  PDCAPhase = "PLAN"
	PhaseDo    PDCAPhase = "DO"
	PhaseCheck PDCAPhase = "CHECK"
	PhaseAct   PDCAPhase = "ACT"
)

var pdcaOrder = []PDCAPhase{PhasePlan, PhaseDo, PhaseCheck, PhaseAct}

// Order returns the zero-based position of the phase in the cycle, or -1.
func (p PDCAPhase) Order() int {
	for i, phase := range pdcaOrder {
		if phase == p {
			return i
		}
	}
	return -1
}

func (p PDCAPhase) Valid() bool {
	return p.Order() >= 0
}

// Next returns the phase that follows p. An unknown phase restarts at PLAN.
func (p PDCAPhase) Next() PDCAPhase {
	i := p.Order()
	if i < 0 {
		return PhasePlan
	}
	return pdcaOrder[(i+1)%len(pdcaOrder)]
}

// CanAdvanceTo reports whether target is the immediate successor of p.
// Skipping and jumping backwards are never allowed.
func (p PDCAPhase) CanAdvanceTo(target PDCAPhase) bool {
	return p.Valid() && target == p.Next()
}

// AcceptsFollowUps reports whether verification records may be taken in this phase.
func (p PDCAPhase) AcceptsFollowUps() bool {
	return p == PhaseDo || p == PhaseCheck
}
