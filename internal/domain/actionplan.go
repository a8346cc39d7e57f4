package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaxRepropositions bounds the lineage chain of an action plan. A plan whose
// RepropositionNumber equals this value cannot spawn another child.
const MaxRepropositions = 3

// DefaultCurrency is applied when an amount is given without a currency.
const DefaultCurrency = "BRL"

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// ActionPlan is a 5W2H plan driven through the PDCA cycle.
type ActionPlan struct {
	ID             string
	OrganizationID string
	BranchID       string
	Code           string

	// 5W2H
	What            string
	Why             string
	WhereLocation   string
	WhenStart       time.Time
	WhenEnd         time.Time
	Who             string
	WhoUserID       string
	How             string
	HowMuchAmount   decimal.NullDecimal
	HowMuchCurrency string

	PDCACycle         PDCAPhase
	CompletionPercent int
	Priority          Priority
	Status            ActionPlanStatus

	// Lineage
	ParentActionPlanID  *string
	RepropositionNumber int
	RepropositionReason string

	EvidenceURLs       []string
	NextFollowUpDate   *time.Time
	CancellationReason string

	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// ActionPlanProps carries the caller-editable fields of a new plan.
type ActionPlanProps struct {
	OrganizationID  string
	BranchID        string
	Code            string
	What            string
	Why             string
	WhereLocation   string
	WhenStart       time.Time
	WhenEnd         time.Time
	Who             string
	WhoUserID       string
	How             string
	HowMuchAmount   decimal.NullDecimal
	HowMuchCurrency string
	Priority        Priority
	CreatedBy       string
}

// lineage describes the position of a plan in a reproposition chain.
type lineage struct {
	parentID *string
	number   int
	reason   string
}

// validate checks fields in a fixed order and reports the first failure.
func (p ActionPlanProps) validate() error {
	textFields := []struct {
		name  string
		value string
	}{
		{"organizationId", p.OrganizationID},
		{"branchId", p.BranchID},
		{"code", p.Code},
		{"what", p.What},
		{"why", p.Why},
		{"whereLocation", p.WhereLocation},
	}
	for _, f := range textFields {
		if isBlank(f.value) {
			return NewValidationError(f.name, "%s is required", f.name)
		}
	}

	if p.WhenStart.IsZero() {
		return NewValidationError("whenStart", "whenStart is required")
	}
	if p.WhenEnd.IsZero() {
		return NewValidationError("whenEnd", "whenEnd is required")
	}
	if !p.WhenEnd.After(p.WhenStart) {
		return NewValidationError("whenEnd", "whenEnd (%s) must be after whenStart (%s)",
			p.WhenEnd.Format(time.RFC3339), p.WhenStart.Format(time.RFC3339))
	}

	textFields = []struct {
		name  string
		value string
	}{
		{"who", p.Who},
		{"whoUserId", p.WhoUserID},
		{"how", p.How},
		{"createdBy", p.CreatedBy},
	}
	for _, f := range textFields {
		if isBlank(f.value) {
			return NewValidationError(f.name, "%s is required", f.name)
		}
	}

	if p.HowMuchAmount.Valid && p.HowMuchAmount.Decimal.IsNegative() {
		return NewValidationError("howMuchAmount", "howMuchAmount must not be negative")
	}
	if p.HowMuchCurrency != "" && !currencyPattern.MatchString(p.HowMuchCurrency) {
		return NewValidationError("howMuchCurrency", "howMuchCurrency %q must be a 3-letter ISO code", p.HowMuchCurrency)
	}
	if p.Priority != "" && !p.Priority.Valid() {
		return NewValidationError("priority", "priority %q is not one of LOW, MEDIUM, HIGH, CRITICAL", p.Priority)
	}
	return nil
}

// NewActionPlan validates props and creates a DRAFT plan in the PLAN phase.
func NewActionPlan(props ActionPlanProps, ids IDGenerator, now time.Time) (*ActionPlan, error) {
	if err := props.validate(); err != nil {
		return nil, err
	}
	return buildActionPlan(props, lineage{}, ids, now), nil
}

// newReproposedActionPlan is the only construction path that sets lineage.
func newReproposedActionPlan(props ActionPlanProps, lin lineage, ids IDGenerator, now time.Time) (*ActionPlan, error) {
	if lin.number > MaxRepropositions {
		return nil, NewInvariantError("reproposition number %d exceeds the maximum of %d", lin.number, MaxRepropositions)
	}
	if lin.parentID == nil || isBlank(*lin.parentID) {
		return nil, NewInvariantError("a reproposed plan requires its parent plan")
	}
	if err := props.validate(); err != nil {
		return nil, err
	}
	return buildActionPlan(props, lin, ids, now), nil
}

func buildActionPlan(props ActionPlanProps, lin lineage, ids IDGenerator, now time.Time) *ActionPlan {
	priority := props.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	currency := props.HowMuchCurrency
	if currency == "" && props.HowMuchAmount.Valid {
		currency = DefaultCurrency
	}
	return &ActionPlan{
		ID:                  ids.NewID(),
		OrganizationID:      props.OrganizationID,
		BranchID:            props.BranchID,
		Code:                props.Code,
		What:                strings.TrimSpace(props.What),
		Why:                 strings.TrimSpace(props.Why),
		WhereLocation:       strings.TrimSpace(props.WhereLocation),
		WhenStart:           props.WhenStart,
		WhenEnd:             props.WhenEnd,
		Who:                 strings.TrimSpace(props.Who),
		WhoUserID:           props.WhoUserID,
		How:                 strings.TrimSpace(props.How),
		HowMuchAmount:       props.HowMuchAmount,
		HowMuchCurrency:     currency,
		PDCACycle:           PhasePlan,
		CompletionPercent:   0,
		Priority:            priority,
		Status:              PlanDraft,
		ParentActionPlanID:  lin.parentID,
		RepropositionNumber: lin.number,
		RepropositionReason: lin.reason,
		EvidenceURLs:        []string{},
		CreatedBy:           props.CreatedBy,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// AdvancePDCA moves the plan to the next PDCA phase. Closing a full cycle
// (ACT -> PLAN) returns a PDCA_CYCLE_COMPLETED event; other steps return nil.
func (p *ActionPlan) AdvancePDCA(reason string, now time.Time) (*Event, error) {
	if p.Status.IsTerminal() {
		return nil, NewInvariantError("action plan %s is %s and cannot advance its PDCA cycle", p.Code, p.Status)
	}
	next := p.PDCACycle.Next()
	if !p.PDCACycle.CanAdvanceTo(next) {
		return nil, NewInvariantError("action plan %s has unknown PDCA phase %q", p.Code, p.PDCACycle)
	}

	p.PDCACycle = next
	if next == PhaseDo && (p.Status == PlanDraft || p.Status == PlanPending) {
		p.Status = PlanInProgress
	}
	p.UpdatedAt = now

	if next != PhasePlan {
		return nil, nil
	}
	return &Event{
		Type:           EventPDCACycleCompleted,
		AggregateID:    p.ID,
		OrganizationID: p.OrganizationID,
		BranchID:       p.BranchID,
		OccurredAt:     now,
		Payload: map[string]any{
			"code":   p.Code,
			"reason": reason,
		},
	}, nil
}

// UpdateProgress records the completion percent. Reaching 100 completes the
// plan; calling it again on a completed plan only confirms completion.
// It reports whether this call transitioned the plan to COMPLETED.
func (p *ActionPlan) UpdateProgress(percent int, now time.Time) (bool, error) {
	if percent < 0 || percent > 100 {
		return false, NewValidationError("completionPercent", "completion percent %d must be between 0 and 100", percent)
	}
	switch p.Status {
	case PlanCancelled:
		return false, NewInvariantError("action plan %s is cancelled and does not accept progress updates", p.Code)
	case PlanCompleted:
		if percent < 100 {
			return false, NewInvariantError("action plan %s is completed and cannot regress to %d%%", p.Code, percent)
		}
		return false, nil
	}

	p.CompletionPercent = percent
	p.UpdatedAt = now
	if percent == 100 {
		p.Status = PlanCompleted
		return true, nil
	}
	if percent > 0 && (p.Status == PlanDraft || p.Status == PlanPending) {
		p.Status = PlanInProgress
	}
	return false, nil
}

// AddEvidence appends an evidence URL. Evidence is a log, so duplicates are kept.
func (p *ActionPlan) AddEvidence(url string, now time.Time) error {
	if isBlank(url) {
		return NewValidationError("evidenceUrl", "evidence url is required")
	}
	p.EvidenceURLs = append(p.EvidenceURLs, strings.TrimSpace(url))
	p.UpdatedAt = now
	return nil
}

// ScheduleFollowUp sets the next verification date, which must be in the future.
func (p *ActionPlan) ScheduleFollowUp(date time.Time, now time.Time) error {
	if !date.After(now) {
		return NewValidationError("nextFollowUpDate", "next follow-up date %s must be in the future", date.Format(time.RFC3339))
	}
	p.NextFollowUpDate = &date
	p.UpdatedAt = now
	return nil
}

// RepropositionInput describes the child plan requested by a reproposition.
type RepropositionInput struct {
	Reason       string
	NewWhenEnd   time.Time
	NewWhoUserID string
	NewWho       string
	CreatedBy    string
}

// Repropose creates the next plan in the lineage chain. The parent is left
// untouched; the returned ACTION_PLAN_REPROPOSED event belongs to the parent.
func (p *ActionPlan) Repropose(in RepropositionInput, ids IDGenerator, now time.Time) (*ActionPlan, Event, error) {
	if !p.CanRepropose() {
		return nil, Event{}, NewInvariantError("action plan %s reached the maximum of %d repropositions", p.Code, MaxRepropositions)
	}
	if isBlank(in.Reason) {
		return nil, Event{}, NewValidationError("repropositionReason", "reproposition reason is required")
	}

	number := p.RepropositionNumber + 1
	props := ActionPlanProps{
		OrganizationID:  p.OrganizationID,
		BranchID:        p.BranchID,
		Code:            fmt.Sprintf("%s-R%d", p.Code, number),
		What:            p.What,
		Why:             p.Why,
		WhereLocation:   p.WhereLocation,
		WhenStart:       now,
		WhenEnd:         in.NewWhenEnd,
		Who:             CoalesceStr(in.NewWho, p.Who),
		WhoUserID:       CoalesceStr(in.NewWhoUserID, p.WhoUserID),
		How:             p.How,
		HowMuchAmount:   p.HowMuchAmount,
		HowMuchCurrency: p.HowMuchCurrency,
		Priority:        p.Priority,
		CreatedBy:       in.CreatedBy,
	}
	parentID := p.ID
	child, err := newReproposedActionPlan(props, lineage{
		parentID: &parentID,
		number:   number,
		reason:   strings.TrimSpace(in.Reason),
	}, ids, now)
	if err != nil {
		return nil, Event{}, err
	}

	event := Event{
		Type:           EventActionPlanReproposed,
		AggregateID:    p.ID,
		OrganizationID: p.OrganizationID,
		BranchID:       p.BranchID,
		OccurredAt:     now,
		Payload: map[string]any{
			"parentActionPlanId":  p.ID,
			"childActionPlanId":   child.ID,
			"childCode":           child.Code,
			"repropositionNumber": child.RepropositionNumber,
			"reason":              child.RepropositionReason,
		},
	}
	return child, event, nil
}

// Submit moves a draft plan to PENDING, awaiting execution.
func (p *ActionPlan) Submit(now time.Time) error {
	if p.Status != PlanDraft {
		return NewInvariantError("only draft plans can be submitted; %s is %s", p.Code, p.Status)
	}
	p.Status = PlanPending
	p.UpdatedAt = now
	return nil
}

// Block marks a non-terminal plan as impeded.
func (p *ActionPlan) Block(now time.Time) error {
	if p.Status.IsTerminal() {
		return NewInvariantError("action plan %s is %s and cannot be blocked", p.Code, p.Status)
	}
	p.Status = PlanBlocked
	p.UpdatedAt = now
	return nil
}

// Unblock resumes a blocked plan.
func (p *ActionPlan) Unblock(now time.Time) error {
	if p.Status != PlanBlocked {
		return NewInvariantError("action plan %s is not blocked", p.Code)
	}
	p.Status = PlanInProgress
	p.UpdatedAt = now
	return nil
}

// Cancel terminates a plan that has not completed.
func (p *ActionPlan) Cancel(reason string, now time.Time) error {
	if p.Status.IsTerminal() {
		return NewInvariantError("action plan %s is already %s", p.Code, p.Status)
	}
	if isBlank(reason) {
		return NewValidationError("cancellationReason", "cancellation reason is required")
	}
	p.Status = PlanCancelled
	p.CancellationReason = strings.TrimSpace(reason)
	p.UpdatedAt = now
	return nil
}

// IsOverdue reports whether the plan is past its deadline without completing.
func (p *ActionPlan) IsOverdue(now time.Time) bool {
	return now.After(p.WhenEnd) && p.Status != PlanCompleted
}

func (p *ActionPlan) CanRepropose() bool {
	return p.RepropositionNumber < MaxRepropositions
}

// RemainingRepropositions is the unused reproposition budget of the chain.
func (p *ActionPlan) RemainingRepropositions() int {
	return MaxRepropositions - p.RepropositionNumber
}

// PlannedDuration is the span between WhenStart and WhenEnd.
func (p *ActionPlan) PlannedDuration() time.Duration {
	return p.WhenEnd.Sub(p.WhenStart)
}
