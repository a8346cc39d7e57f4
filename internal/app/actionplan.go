package app

import (
	"time"

	"github.com/alexanderramin/strategos/internal/domain"
	"github.com/shopspring/decimal"
)

// CreateActionPlanRequest carries the 5W2H fields of a new plan. The code is
// allocated from the tenant sequence when empty.
type CreateActionPlanRequest struct {
	Tenant TenantContext `validate:"-"`

	Code            string
	What            string
	Why             string
	WhereLocation   string
	WhenStart       time.Time
	WhenEnd         time.Time
	Who             string
	WhoUserID       string
	How             string
	HowMuchAmount   *decimal.Decimal
	HowMuchCurrency string
	Priority        domain.Priority `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
}

// Props converts the request into aggregate props owned by the tenant.
func (r CreateActionPlanRequest) Props() domain.ActionPlanProps {
	var amount decimal.NullDecimal
	if r.HowMuchAmount != nil {
		amount = decimal.NewNullDecimal(*r.HowMuchAmount)
	}
	return domain.ActionPlanProps{
		OrganizationID:  r.Tenant.OrganizationID,
		BranchID:        r.Tenant.BranchID,
		Code:            r.Code,
		What:            r.What,
		Why:             r.Why,
		WhereLocation:   r.WhereLocation,
		WhenStart:       r.WhenStart,
		WhenEnd:         r.WhenEnd,
		Who:             r.Who,
		WhoUserID:       r.WhoUserID,
		How:             r.How,
		HowMuchAmount:   amount,
		HowMuchCurrency: r.HowMuchCurrency,
		Priority:        r.Priority,
		CreatedBy:       r.Tenant.UserID,
	}
}

type ListActionPlansRequest struct {
	Tenant TenantContext `validate:"-"`

	Status    domain.ActionPlanStatus
	Phase     domain.PDCAPhase
	WhoUserID string
	ParentID  string
	Search    string
	Page      int `json:"page" validate:"gte=0"`
	PageSize  int `json:"pageSize" validate:"gte=0,lte=100"`

	// OnlyOverdue keeps plans past their deadline at the service clock's now.
	OnlyOverdue bool
}

func NewListActionPlansRequest(tenant TenantContext) ListActionPlansRequest {
	return ListActionPlansRequest{Tenant: tenant, Page: 1, PageSize: 20}
}

type ReproposeRequest struct {
	Tenant TenantContext `validate:"-"`

	ActionPlanID string    `json:"actionPlanId" validate:"required"`
	Reason       string    `json:"reason" validate:"required"`
	NewWhenEnd   time.Time `json:"newWhenEnd" validate:"required"`
	NewWhoUserID string
	NewWho       string
}

type ReproposeResult struct {
	Parent *domain.ActionPlan
	Child  *domain.ActionPlan
	Event  domain.Event
}

type AdvancePDCAResult struct {
	Plan *domain.ActionPlan
	// Event is set only when the advance closed a full cycle.
	Event *domain.Event
}

type UpdateProgressResult struct {
	Plan         *domain.ActionPlan
	CompletedNow bool
}
