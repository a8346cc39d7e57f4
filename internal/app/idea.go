package app

import (
	"time"

	"github.com/alexanderramin/strategos/internal/domain"
	"github.com/shopspring/decimal"
)

type SubmitIdeaRequest struct {
	Tenant TenantContext `validate:"-"`

	Title            string
	Description      string
	SourceType       domain.IdeaSourceType
	Category         string
	Department       string
	Urgency          domain.Level
	Importance       domain.Level
	EstimatedImpact  string
	EstimatedCost    *decimal.Decimal
	EstimatedBenefit string
}

func (r SubmitIdeaRequest) Props(code string) domain.IdeaProps {
	var cost decimal.NullDecimal
	if r.EstimatedCost != nil {
		cost = decimal.NewNullDecimal(*r.EstimatedCost)
	}
	return domain.IdeaProps{
		OrganizationID:   r.Tenant.OrganizationID,
		BranchID:         r.Tenant.BranchID,
		Code:             code,
		Title:            r.Title,
		Description:      r.Description,
		SourceType:       r.SourceType,
		Category:         r.Category,
		SubmittedBy:      r.Tenant.UserID,
		Department:       r.Department,
		Urgency:          r.Urgency,
		Importance:       r.Importance,
		EstimatedImpact:  r.EstimatedImpact,
		EstimatedCost:    cost,
		EstimatedBenefit: r.EstimatedBenefit,
	}
}

type ListIdeasRequest struct {
	Tenant TenantContext `validate:"-"`

	Status      domain.IdeaStatus
	SourceType  domain.IdeaSourceType
	SubmittedBy string
	Search      string
	Page        int `json:"page" validate:"gte=0"`
	PageSize    int `json:"pageSize" validate:"gte=0,lte=100"`
}

type ReviewIdeaRequest struct {
	Tenant TenantContext `validate:"-"`

	IdeaID string `json:"ideaId" validate:"required"`
	Notes  string
}

// ConvertIdeaRequest turns an approved idea into an action plan. The idea
// supplies what (title), why (description) and howMuch (estimated cost);
// the request fills the remaining 5W2H fields.
type ConvertIdeaRequest struct {
	Tenant TenantContext `validate:"-"`

	IdeaID        string `json:"ideaId" validate:"required"`
	WhereLocation string
	WhenStart     time.Time
	WhenEnd       time.Time
	Who           string
	WhoUserID     string
	How           string

	// Priority overrides the one suggested by the idea's Eisenhower quadrant.
	Priority domain.Priority `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
}

type ConvertIdeaResult struct {
	Idea       *domain.IdeaBox
	ActionPlan *domain.ActionPlan
	Events     []domain.Event
}
