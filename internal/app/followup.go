package app

import (
	"time"

	"github.com/alexanderramin/strategos/internal/domain"
)

// ExecuteFollowUpRequest records one 3G verification against a plan in DO or
// CHECK. When RequiresNewPlan is set the follow-up also spawns a reproposed
// child plan assigned to NewPlanAssignedTo.
type ExecuteFollowUpRequest struct {
	Tenant TenantContext `validate:"-"`

	ActionPlanID string `json:"actionPlanId" validate:"required"`

	GembaLocal          string
	GembutsuObservation string
	GenjitsuData        string

	ExecutionStatus  domain.ExecutionStatus
	ExecutionPercent int
	ProblemsObserved string
	ProblemSeverity  domain.Severity
	EvidenceURLs     []string

	RequiresNewPlan     bool
	NewPlanDescription  string `json:"newPlanDescription" validate:"required_if=RequiresNewPlan true"`
	NewPlanAssignedTo   string `json:"newPlanAssignedTo" validate:"required_if=RequiresNewPlan true"`
	NewPlanAssigneeName string

	// NewPlanWhenEnd defaults to now plus the parent's planned duration.
	NewPlanWhenEnd *time.Time

	NextFollowUpDate *time.Time
}

type ExecuteFollowUpResult struct {
	FollowUp        *domain.FollowUp
	ActionPlan      *domain.ActionPlan
	ChildActionPlan *domain.ActionPlan
	AdvancedToCheck bool
	CompletedNow    bool
	Escalate        bool
	Events          []domain.Event
}
