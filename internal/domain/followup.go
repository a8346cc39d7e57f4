package domain

import (
	"strings"
	"time"
)

// FollowUp is one 3G (gemba / gembutsu / genjitsu) verification of an
// action plan. Once persisted it is never updated.
type FollowUp struct {
	ID             string
	OrganizationID string
	BranchID       string
	ActionPlanID   string
	FollowUpNumber int

	GembaLocal          string
	GembutsuObservation string
	GenjitsuData        string

	ExecutionStatus  ExecutionStatus
	ExecutionPercent int
	ProblemsObserved string
	ProblemSeverity  Severity

	RequiresNewPlan    bool
	NewPlanDescription string
	NewPlanAssignedTo  string
	ChildActionPlanID  *string

	EvidenceURLs []string
	VerifiedBy   string
	VerifiedAt   time.Time
	CreatedAt    time.Time
}

type FollowUpProps struct {
	OrganizationID      string
	BranchID            string
	ActionPlanID        string
	FollowUpNumber      int
	GembaLocal          string
	GembutsuObservation string
	GenjitsuData        string
	ExecutionStatus     ExecutionStatus
	ExecutionPercent    int
	ProblemsObserved    string
	ProblemSeverity     Severity
	EvidenceURLs        []string
	VerifiedBy          string
}

func (p FollowUpProps) validate() error {
	if isBlank(p.OrganizationID) {
		return NewValidationError("organizationId", "organizationId is required")
	}
	if isBlank(p.BranchID) {
		return NewValidationError("branchId", "branchId is required")
	}
	if isBlank(p.ActionPlanID) {
		return NewValidationError("actionPlanId", "actionPlanId is required")
	}
	if p.FollowUpNumber < 1 {
		return NewValidationError("followUpNumber", "follow-up number must be at least 1, got %d", p.FollowUpNumber)
	}

	threeG := []struct {
		name  string
		value string
	}{
		{"gembaLocal", p.GembaLocal},
		{"gembutsuObservation", p.GembutsuObservation},
		{"genjitsuData", p.GenjitsuData},
	}
	for _, g := range threeG {
		if isBlank(g.value) {
			err := NewInvariantError("3G field %s must not be blank", g.name)
			err.Field = g.name
			return err
		}
	}

	if !p.ExecutionStatus.Valid() {
		return NewValidationError("executionStatus", "execution status %q is not recognized", p.ExecutionStatus)
	}
	if p.ExecutionPercent < 0 || p.ExecutionPercent > 100 {
		return NewValidationError("executionPercent", "execution percent %d must be between 0 and 100", p.ExecutionPercent)
	}
	if p.ProblemSeverity != "" && !p.ProblemSeverity.Valid() {
		return NewValidationError("problemSeverity", "problem severity %q is not recognized", p.ProblemSeverity)
	}
	for _, u := range p.EvidenceURLs {
		if isBlank(u) {
			return NewValidationError("evidenceUrls", "evidence urls must not be blank")
		}
	}
	if isBlank(p.VerifiedBy) {
		return NewValidationError("verifiedBy", "verifiedBy is required")
	}
	return nil
}

// NewFollowUp validates props and stamps the record as verified at now.
func NewFollowUp(props FollowUpProps, ids IDGenerator, now time.Time) (*FollowUp, error) {
	if err := props.validate(); err != nil {
		return nil, err
	}
	evidence := make([]string, 0, len(props.EvidenceURLs))
	for _, u := range props.EvidenceURLs {
		evidence = append(evidence, strings.TrimSpace(u))
	}
	return &FollowUp{
		ID:                  ids.NewID(),
		OrganizationID:      props.OrganizationID,
		BranchID:            props.BranchID,
		ActionPlanID:        props.ActionPlanID,
		FollowUpNumber:      props.FollowUpNumber,
		GembaLocal:          strings.TrimSpace(props.GembaLocal),
		GembutsuObservation: strings.TrimSpace(props.GembutsuObservation),
		GenjitsuData:        strings.TrimSpace(props.GenjitsuData),
		ExecutionStatus:     props.ExecutionStatus,
		ExecutionPercent:    props.ExecutionPercent,
		ProblemsObserved:    strings.TrimSpace(props.ProblemsObserved),
		ProblemSeverity:     props.ProblemSeverity,
		EvidenceURLs:        evidence,
		VerifiedBy:          props.VerifiedBy,
		VerifiedAt:          now,
		CreatedAt:           now,
	}, nil
}

// RequestReproposition records that a child plan must be created. It is
// called before the child exists.
func (f *FollowUp) RequestReproposition(description, assignedTo string) error {
	if isBlank(description) {
		return NewValidationError("newPlanDescription", "new plan description is required")
	}
	if isBlank(assignedTo) {
		return NewValidationError("newPlanAssignedTo", "new plan assignee is required")
	}
	f.RequiresNewPlan = true
	f.NewPlanDescription = strings.TrimSpace(description)
	f.NewPlanAssignedTo = assignedTo
	return nil
}

// LinkChildActionPlan stores the back-reference to the plan created for
// this follow-up's reproposition request.
func (f *FollowUp) LinkChildActionPlan(childID string) error {
	if !f.RequiresNewPlan {
		return NewInvariantError("follow-up %d did not request a new plan", f.FollowUpNumber)
	}
	if isBlank(childID) {
		return NewValidationError("childActionPlanId", "child action plan id is required")
	}
	f.ChildActionPlanID = &childID
	return nil
}

func (f *FollowUp) RequiresEscalation() bool {
	return f.ExecutionStatus.RequiresEscalation() || f.ProblemSeverity == SeverityCritical
}
