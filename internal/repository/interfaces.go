package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/strategos/internal/domain"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination selects one page of a list query. Page is 1-based.
type Pagination struct {
	Page     int
	PageSize int
}

// Normalize clamps the request to sane bounds.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p Pagination) offset() int {
	return (p.Page - 1) * p.PageSize
}

// Page is one slice of a list query plus the unpaginated total.
type Page[T any] struct {
	Items    []T
	Total    int
	Page     int
	PageSize int
}

func (p Page[T]) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

type ActionPlanFilter struct {
	OrganizationID string
	BranchID       string
	Status         domain.ActionPlanStatus
	Phase          domain.PDCAPhase
	WhoUserID      string
	ParentID       string
	Search         string

	// OverdueAt keeps only plans past WhenEnd at this instant and not completed.
	OverdueAt *time.Time

	Pagination
}

type IdeaFilter struct {
	OrganizationID string
	BranchID       string
	Status         domain.IdeaStatus
	SourceType     domain.IdeaSourceType
	SubmittedBy    string
	Search         string
	Pagination
}

type KPIFilter struct {
	OrganizationID string
	BranchID       string
	Status         domain.KPIStatus
	AutoCalculate  *bool
	Search         string
	Pagination
}

type ActionPlanRepo interface {
	FindByID(ctx context.Context, id, orgID, branchID string) (*domain.ActionPlan, error)
	FindByCode(ctx context.Context, code, orgID, branchID string) (*domain.ActionPlan, error)
	FindMany(ctx context.Context, filter ActionPlanFilter) (Page[*domain.ActionPlan], error)
	// ChildCode reports the code of the plan reproposed from parentID, if any.
	ChildCode(ctx context.Context, parentID, orgID, branchID string) (string, error)
	Save(ctx context.Context, p *domain.ActionPlan) error
	SoftDelete(ctx context.Context, id, orgID, branchID string, at time.Time) error
}

// FollowUpRepo is insert-only; follow-ups are never updated or deleted.
type FollowUpRepo interface {
	Create(ctx context.Context, f *domain.FollowUp) error
	FindByID(ctx context.Context, id, orgID, branchID string) (*domain.FollowUp, error)
	ListByActionPlan(ctx context.Context, actionPlanID, orgID, branchID string) ([]*domain.FollowUp, error)
}

type IdeaRepo interface {
	FindByID(ctx context.Context, id, orgID, branchID string) (*domain.IdeaBox, error)
	FindByCode(ctx context.Context, code, orgID, branchID string) (*domain.IdeaBox, error)
	FindMany(ctx context.Context, filter IdeaFilter) (Page[*domain.IdeaBox], error)
	Save(ctx context.Context, i *domain.IdeaBox) error
	SoftDelete(ctx context.Context, id, orgID, branchID string, at time.Time) error
}

type KPIRepo interface {
	FindByID(ctx context.Context, id, orgID, branchID string) (*domain.KPI, error)
	FindByCode(ctx context.Context, code, orgID, branchID string) (*domain.KPI, error)
	FindMany(ctx context.Context, filter KPIFilter) (Page[*domain.KPI], error)
	ListAutoCalculated(ctx context.Context, orgID, branchID string) ([]*domain.KPI, error)
	Save(ctx context.Context, k *domain.KPI) error
	SoftDelete(ctx context.Context, id, orgID, branchID string, at time.Time) error
}

// SequenceRepo allocates tenant-scoped human-readable codes and per-plan
// follow-up numbers. Allocation must run inside the caller's transaction.
type SequenceRepo interface {
	NextActionPlanCode(ctx context.Context, orgID, branchID string, year int) (string, error)
	NextIdeaCode(ctx context.Context, orgID, branchID string, year int) (string, error)
	NextFollowUpNumber(ctx context.Context, actionPlanID string) (int, error)
}
