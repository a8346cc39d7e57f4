package testutil

import (
	"time"

	"github.com/alexanderramin/strategos/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Default tenant used by fixtures.
const (
	TestOrg    = "org-test"
	TestBranch = "branch-test"
	TestUser   = "user-test"
)

// ActionPlan options
type PlanOption func(*domain.ActionPlan)

func WithPlanStatus(s domain.ActionPlanStatus) PlanOption {
	return func(p *domain.ActionPlan) {
		p.Status = s
	}
}

func WithPhase(ph domain.PDCAPhase) PlanOption {
	return func(p *domain.ActionPlan) {
		p.PDCACycle = ph
	}
}

func WithCompletion(pct int) PlanOption {
	return func(p *domain.ActionPlan) {
		p.CompletionPercent = pct
	}
}

func WithWindow(start, end time.Time) PlanOption {
	return func(p *domain.ActionPlan) {
		p.WhenStart = start
		p.WhenEnd = end
	}
}

func WithAssignee(userID, name string) PlanOption {
	return func(p *domain.ActionPlan) {
		p.WhoUserID = userID
		p.Who = name
	}
}

func WithLineage(parentID string, number int) PlanOption {
	return func(p *domain.ActionPlan) {
		p.ParentActionPlanID = &parentID
		p.RepropositionNumber = number
		p.RepropositionReason = "fixture lineage"
	}
}

func WithPlanTenant(orgID, branchID string) PlanOption {
	return func(p *domain.ActionPlan) {
		p.OrganizationID = orgID
		p.BranchID = branchID
	}
}

func WithBudget(amount string) PlanOption {
	return func(p *domain.ActionPlan) {
		p.HowMuchAmount = decimal.NewNullDecimal(decimal.RequireFromString(amount))
		p.HowMuchCurrency = domain.DefaultCurrency
	}
}

func NewTestActionPlan(code string, opts ...PlanOption) *domain.ActionPlan {
	now := FixtureNow
	p := &domain.ActionPlan{
		ID:             uuid.New().String(),
		OrganizationID: TestOrg,
		BranchID:       TestBranch,
		Code:           code,
		What:           "Reduce dock dwell time",
		Why:            "Carriers wait over two hours",
		WhereLocation:  "Warehouse A",
		WhenStart:      now,
		WhenEnd:        now.AddDate(0, 0, 14),
		Who:            "Ana Souza",
		WhoUserID:      "user-ana",
		How:            "Slot booking per carrier",
		PDCACycle:      domain.PhasePlan,
		Priority:       domain.PriorityMedium,
		Status:         domain.PlanDraft,
		EvidenceURLs:   []string{},
		CreatedBy:      TestUser,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FollowUp options
type FollowUpOption func(*domain.FollowUp)

func WithExecution(status domain.ExecutionStatus, pct int) FollowUpOption {
	return func(f *domain.FollowUp) {
		f.ExecutionStatus = status
		f.ExecutionPercent = pct
	}
}

func WithChildPlan(childID string) FollowUpOption {
	return func(f *domain.FollowUp) {
		f.RequiresNewPlan = true
		f.NewPlanDescription = "fixture reproposition"
		f.NewPlanAssignedTo = "user-ana"
		f.ChildActionPlanID = &childID
	}
}

func NewTestFollowUp(planID string, number int, opts ...FollowUpOption) *domain.FollowUp {
	f := &domain.FollowUp{
		ID:                  uuid.New().String(),
		OrganizationID:      TestOrg,
		BranchID:            TestBranch,
		ActionPlanID:        planID,
		FollowUpNumber:      number,
		GembaLocal:          "Dock 3",
		GembutsuObservation: "Booking board in use",
		GenjitsuData:        "Average wait 95 min",
		ExecutionStatus:     domain.ExecutedPartial,
		ExecutionPercent:    50,
		EvidenceURLs:        []string{},
		VerifiedBy:          TestUser,
		VerifiedAt:          FixtureNow,
		CreatedAt:           FixtureNow,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// IdeaBox options
type IdeaOption func(*domain.IdeaBox)

func WithIdeaStatus(s domain.IdeaStatus) IdeaOption {
	return func(i *domain.IdeaBox) {
		i.Status = s
	}
}

func WithEisenhower(urgency, importance domain.Level) IdeaOption {
	return func(i *domain.IdeaBox) {
		i.Urgency = urgency
		i.Importance = importance
	}
}

func WithEstimatedCost(amount string) IdeaOption {
	return func(i *domain.IdeaBox) {
		i.EstimatedCost = decimal.NewNullDecimal(decimal.RequireFromString(amount))
	}
}

func NewTestIdea(code string, opts ...IdeaOption) *domain.IdeaBox {
	i := &domain.IdeaBox{
		ID:             uuid.New().String(),
		OrganizationID: TestOrg,
		BranchID:       TestBranch,
		Code:           code,
		Title:          "Carrier slot booking",
		Description:    "Let carriers book unloading slots online",
		SourceType:     domain.SourceSuggestion,
		SubmittedBy:    TestUser,
		Urgency:        domain.LevelMedium,
		Importance:     domain.LevelMedium,
		Status:         domain.IdeaSubmitted,
		CreatedAt:      FixtureNow,
		UpdatedAt:      FixtureNow,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// KPI options
type KPIOption func(*domain.KPI)

func WithTarget(target float64) KPIOption {
	return func(k *domain.KPI) {
		k.TargetValue = target
	}
}

func WithThresholds(alert, critical float64) KPIOption {
	return func(k *domain.KPI) {
		k.AlertThreshold = alert
		k.CriticalThreshold = critical
	}
}

func WithSource(module, query string) KPIOption {
	return func(k *domain.KPI) {
		k.AutoCalculate = true
		k.SourceModule = module
		k.SourceQuery = query
	}
}

func WithPolarity(p domain.Polarity) KPIOption {
	return func(k *domain.KPI) {
		k.Polarity = p
	}
}

func WithCurrentValue(v float64) KPIOption {
	return func(k *domain.KPI) {
		k.CurrentValue = v
	}
}

// NewTestKPI builds a KPI and derives its status from the final fields,
// so fixtures never carry a status the calculator would disagree with.
func NewTestKPI(code string, opts ...KPIOption) *domain.KPI {
	k := &domain.KPI{
		ID:             uuid.New().String(),
		OrganizationID: TestOrg,
		BranchID:       TestBranch,
		Code:           code,
		Name:           "Indicator " + code,
		Unit:           "%",
		Polarity:       domain.PolarityUp,
		Frequency:      domain.FrequencyMonthly,
		TargetValue:    100,
		AlertThreshold: 10,
		CreatedBy:      TestUser,
		CreatedAt:      FixtureNow,
		UpdatedAt:      FixtureNow,
	}
	for _, opt := range opts {
		opt(k)
	}
	res, err := k.Evaluate()
	if err != nil {
		k.Status = domain.KPIRed
	} else {
		k.Status = res.Status
	}
	return k
}
