package service

import (
	"context"
	"time"

	"github.com/alexanderramin/strategos/internal/contract"
	"github.com/alexanderramin/strategos/internal/domain"
	"github.com/alexanderramin/strategos/internal/repository"
)

// ActionPlanService drives an action plan through its lifecycle. Every call
// is scoped to the tenant it receives; idOrCode accepts a plan ID or its
// PA-YYYY-NNNN code.
type ActionPlanService interface {
	Create(ctx context.Context, req contract.CreateActionPlanRequest) (*domain.ActionPlan, error)
	Get(ctx context.Context, tenant contract.TenantContext, idOrCode string) (*domain.ActionPlan, error)
	List(ctx context.Context, req contract.ListActionPlansRequest) (repository.Page[*domain.ActionPlan], error)
	Lineage(ctx context.Context, tenant contract.TenantContext, idOrCode string) ([]*domain.ActionPlan, error)

	Submit(ctx context.Context, tenant contract.TenantContext, idOrCode string) (*domain.ActionPlan, error)
	AdvancePDCA(ctx context.Context, tenant contract.TenantContext, idOrCode, reason string) (*contract.AdvancePDCAResult, error)
	UpdateProgress(ctx context.Context, tenant contract.TenantContext, idOrCode string, percent int) (*contract.UpdateProgressResult, error)
	AddEvidence(ctx context.Context, tenant contract.TenantContext, idOrCode, url string) (*domain.ActionPlan, error)
	ScheduleFollowUp(ctx context.Context, tenant contract.TenantContext, idOrCode string, date time.Time) (*domain.ActionPlan, error)
	Block(ctx context.Context, tenant contract.TenantContext, idOrCode string) (*domain.ActionPlan, error)
	Unblock(ctx context.Context, tenant contract.TenantContext, idOrCode string) (*domain.ActionPlan, error)
	Cancel(ctx context.Context, tenant contract.TenantContext, idOrCode, reason string) (*domain.ActionPlan, error)
	Delete(ctx context.Context, tenant contract.TenantContext, idOrCode string) error

	Repropose(ctx context.Context, req contract.ReproposeRequest) (*contract.ReproposeResult, error)
}

// FollowUpService records 3G verifications. Follow-ups are immutable once
// written, so there is no update or delete.
type FollowUpService interface {
	Execute(ctx context.Context, req contract.ExecuteFollowUpRequest) (*contract.ExecuteFollowUpResult, error)
	Get(ctx context.Context, tenant contract.TenantContext, id string) (*domain.FollowUp, error)
	ListByActionPlan(ctx context.Context, tenant contract.TenantContext, planIDOrCode string) ([]*domain.FollowUp, error)
}

type IdeaService interface {
	Submit(ctx context.Context, req contract.SubmitIdeaRequest) (*domain.IdeaBox, error)
	Get(ctx context.Context, tenant contract.TenantContext, idOrCode string) (*domain.IdeaBox, error)
	List(ctx context.Context, req contract.ListIdeasRequest) (repository.Page[*domain.IdeaBox], error)

	StartReview(ctx context.Context, tenant contract.TenantContext, idOrCode string) (*domain.IdeaBox, error)
	Approve(ctx context.Context, req contract.ReviewIdeaRequest) (*domain.IdeaBox, error)
	Reject(ctx context.Context, req contract.ReviewIdeaRequest) (*domain.IdeaBox, error)
	Archive(ctx context.Context, tenant contract.TenantContext, idOrCode string) (*domain.IdeaBox, error)
	Refine(ctx context.Context, tenant contract.TenantContext, idOrCode string, r domain.IdeaRefinement) (*domain.IdeaBox, error)
	Delete(ctx context.Context, tenant contract.TenantContext, idOrCode string) error

	Convert(ctx context.Context, req contract.ConvertIdeaRequest) (*contract.ConvertIdeaResult, error)
}

type KPIService interface {
	Create(ctx context.Context, req contract.CreateKPIRequest) (*contract.KPIReading, error)
	Get(ctx context.Context, tenant contract.TenantContext, idOrCode string) (*contract.KPIReading, error)
	List(ctx context.Context, req contract.ListKPIsRequest) (repository.Page[*domain.KPI], error)

	UpdateValue(ctx context.Context, tenant contract.TenantContext, idOrCode string, value float64) (*contract.KPIReading, error)
	ChangeTarget(ctx context.Context, tenant contract.TenantContext, idOrCode string, target float64) (*contract.KPIReading, error)
	ChangeThresholds(ctx context.Context, tenant contract.TenantContext, idOrCode string, alert, critical float64) (*contract.KPIReading, error)
	Delete(ctx context.Context, tenant contract.TenantContext, idOrCode string) error

	Sync(ctx context.Context, req contract.SyncKPIsRequest) (*contract.SyncKPIsResponse, error)
}
