package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/strategos/internal/contract"
	"github.com/alexanderramin/strategos/internal/db"
	"github.com/alexanderramin/strategos/internal/domain"
	"github.com/alexanderramin/strategos/internal/repository"
)

type actionPlanService struct {
	plans    repository.ActionPlanRepo
	uow      db.UnitOfWork
	env      Env
	observer UseCaseObserver
}

func NewActionPlanService(
	plans repository.ActionPlanRepo,
	uow db.UnitOfWork,
	env Env,
	observers ...UseCaseObserver,
) ActionPlanService {
	return &actionPlanService{
		plans:    plans,
		uow:      uow,
		env:      env.withDefaults(),
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *actionPlanService) Create(ctx context.Context, req contract.CreateActionPlanRequest) (plan *domain.ActionPlan, err error) {
	fields := map[string]any{"organization_id": req.Tenant.OrganizationID, "branch_id": req.Tenant.BranchID}
	defer observe(ctx, s.observer, "create-action-plan", time.Now(), fields)(&err)

	if err = checkRequest(req.Tenant, req); err != nil {
		return nil, err
	}
	now := s.env.Clock.Now()

	plan, err = db.InTx(ctx, s.uow, func(ctx context.Context, tx db.DBTX) (*domain.ActionPlan, error) {
		props := req.Props()
		if props.Code == "" {
			code, err := repository.NewSQLiteSequenceRepo(tx).NextActionPlanCode(ctx, props.OrganizationID, props.BranchID, now.Year())
			if err != nil {
				return nil, err
			}
			props.Code = code
		}
		p, err := domain.NewActionPlan(props, s.env.IDs, now)
		if err != nil {
			return nil, err
		}
		if err := repository.NewSQLiteActionPlanRepo(tx).Save(ctx, p); err != nil {
			return nil, err
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	fields["code"] = plan.Code
	return plan, nil
}

func (s *actionPlanService) Get(ctx context.Context, tenant contract.TenantContext, idOrCode string) (*domain.ActionPlan, error) {
	if err := checkRequest(tenant, nil); err != nil {
		return nil, err
	}
	if err := requireID("actionPlanId", idOrCode); err != nil {
		return nil, err
	}
	return resolve[*domain.ActionPlan](ctx, s.plans, tenant, idOrCode)
}

func (s *actionPlanService) List(ctx context.Context, req contract.ListActionPlansRequest) (repository.Page[*domain.ActionPlan], error) {
	if err := checkRequest(req.Tenant, req); err != nil {
		return repository.Page[*domain.ActionPlan]{}, err
	}
	filter := repository.ActionPlanFilter{
		OrganizationID: req.Tenant.OrganizationID,
		BranchID:       req.Tenant.BranchID,
		Status:         req.Status,
		Phase:          req.Phase,
		WhoUserID:      req.WhoUserID,
		ParentID:       req.ParentID,
		Search:         req.Search,
		Pagination:     repository.Pagination{Page: req.Page, PageSize: req.PageSize},
	}
	if req.OnlyOverdue {
		now := s.env.Clock.Now()
		filter.OverdueAt = &now
	}
	return s.plans.FindMany(ctx, filter)
}

// Lineage returns the whole reproposition chain the plan belongs to, from
// the original plan to the newest child.
func (s *actionPlanService) Lineage(ctx context.Context, tenant contract.TenantContext, idOrCode string) ([]*domain.ActionPlan, error) {
	plan, err := s.Get(ctx, tenant, idOrCode)
	if err != nil {
		return nil, err
	}

	root := plan
	for root.ParentActionPlanID != nil {
		parent, err := s.plans.FindByID(ctx, *root.ParentActionPlanID, tenant.OrganizationID, tenant.BranchID)
		if err != nil {
			return nil, fmt.Errorf("loading parent of %s: %w", root.Code, err)
		}
		root = parent
	}

	chain := []*domain.ActionPlan{root}
	queue := []string{root.ID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		page, err := s.plans.FindMany(ctx, repository.ActionPlanFilter{
			OrganizationID: tenant.OrganizationID,
			BranchID:       tenant.BranchID,
			ParentID:       id,
			Pagination:     repository.Pagination{PageSize: repository.MaxPageSize},
		})
		if err != nil {
			return nil, err
		}
		for _, child := range page.Items {
			chain = append(chain, child)
			queue = append(queue, child.ID)
		}
	}
	sort.SliceStable(chain, func(i, j int) bool {
		return chain[i].RepropositionNumber < chain[j].RepropositionNumber
	})
	return chain, nil
}

// mutate loads one plan inside a transaction, applies fn and saves it. The
// event fn returns, if any, is dispatched after commit.
func (s *actionPlanService) mutate(
	ctx context.Context,
	useCase string,
	tenant contract.TenantContext,
	idOrCode string,
	fn func(p *domain.ActionPlan, now time.Time) (*domain.Event, error),
) (plan *domain.ActionPlan, event *domain.Event, err error) {
	fields := map[string]any{"action_plan": idOrCode}
	defer observe(ctx, s.observer, useCase, time.Now(), fields)(&err)

	if err = checkRequest(tenant, nil); err != nil {
		return nil, nil, err
	}
	if err = requireID("actionPlanId", idOrCode); err != nil {
		return nil, nil, err
	}
	now := s.env.Clock.Now()

	plan, err = db.InTx(ctx, s.uow, func(ctx context.Context, tx db.DBTX) (*domain.ActionPlan, error) {
		plans := repository.NewSQLiteActionPlanRepo(tx)
		p, err := resolve[*domain.ActionPlan](ctx, plans, tenant, idOrCode)
		if err != nil {
			return nil, err
		}
		ev, err := fn(p, now)
		if err != nil {
			return nil, err
		}
		if err := plans.Save(ctx, p); err != nil {
			return nil, err
		}
		event = ev
		return p, nil
	})
	if err != nil {
		return nil, nil, err
	}
	fields["code"] = plan.Code
	fields["status"] = string(plan.Status)
	fields["pdca_cycle"] = string(plan.PDCACycle)
	if event != nil {
		s.env.dispatch(ctx, *event)
	}
	return plan, event, nil
}

func (s *actionPlanService) Submit(ctx context.Context, tenant contract.TenantContext, idOrCode string) (*domain.ActionPlan, error) {
	plan, _, err := s.mutate(ctx, "submit-action-plan", tenant, idOrCode, func(p *domain.ActionPlan, now time.Time) (*domain.Event, error) {
		return nil, p.Submit(now)
	})
	return plan, err
}

func (s *actionPlanService) AdvancePDCA(ctx context.Context, tenant contract.TenantContext, idOrCode, reason string) (*contract.AdvancePDCAResult, error) {
	plan, event, err := s.mutate(ctx, "advance-pdca", tenant, idOrCode, func(p *domain.ActionPlan, now time.Time) (*domain.Event, error) {
		return p.AdvancePDCA(reason, now)
	})
	if err != nil {
		return nil, err
	}
	return &contract.AdvancePDCAResult{Plan: plan, Event: event}, nil
}

func (s *actionPlanService) UpdateProgress(ctx context.Context, tenant contract.TenantContext, idOrCode string, percent int) (*contract.UpdateProgressResult, error) {
	var completedNow bool
	plan, _, err := s.mutate(ctx, "update-progress", tenant, idOrCode, func(p *domain.ActionPlan, now time.Time) (*domain.Event, error) {
		done, err := p.UpdateProgress(percent, now)
		completedNow = done
		return nil, err
	})
	if err != nil {
		return nil, err
	}
	return &contract.UpdateProgressResult{Plan: plan, CompletedNow: completedNow}, nil
}

func (s *actionPlanService) AddEvidence(ctx context.Context, tenant contract.TenantContext, idOrCode, url string) (*domain.ActionPlan, error) {
	plan, _, err := s.mutate(ctx, "add-evidence", tenant, idOrCode, func(p *domain.ActionPlan, now time.Time) (*domain.Event, error) {
		return nil, p.AddEvidence(url, now)
	})
	return plan, err
}

func (s *actionPlanService) ScheduleFollowUp(ctx context.Context, tenant contract.TenantContext, idOrCode string, date time.Time) (*domain.ActionPlan, error) {
	plan, _, err := s.mutate(ctx, "schedule-follow-up", tenant, idOrCode, func(p *domain.ActionPlan, now time.Time) (*domain.Event, error) {
		return nil, p.ScheduleFollowUp(date, now)
	})
	return plan, err
}

func (s *actionPlanService) Block(ctx context.Context, tenant contract.TenantContext, idOrCode string) (*domain.ActionPlan, error) {
	plan, _, err := s.mutate(ctx, "block-action-plan", tenant, idOrCode, func(p *domain.ActionPlan, now time.Time) (*domain.Event, error) {
		return nil, p.Block(now)
	})
	return plan, err
}

func (s *actionPlanService) Unblock(ctx context.Context, tenant contract.TenantContext, idOrCode string) (*domain.ActionPlan, error) {
	plan, _, err := s.mutate(ctx, "unblock-action-plan", tenant, idOrCode, func(p *domain.ActionPlan, now time.Time) (*domain.Event, error) {
		return nil, p.Unblock(now)
	})
	return plan, err
}

func (s *actionPlanService) Cancel(ctx context.Context, tenant contract.TenantContext, idOrCode, reason string) (*domain.ActionPlan, error) {
	plan, _, err := s.mutate(ctx, "cancel-action-plan", tenant, idOrCode, func(p *domain.ActionPlan, now time.Time) (*domain.Event, error) {
		return nil, p.Cancel(reason, now)
	})
	return plan, err
}

func (s *actionPlanService) Delete(ctx context.Context, tenant contract.TenantContext, idOrCode string) (err error) {
	fields := map[string]any{"action_plan": idOrCode}
	defer observe(ctx, s.observer, "delete-action-plan", time.Now(), fields)(&err)

	if err = checkRequest(tenant, nil); err != nil {
		return err
	}
	if err = requireID("actionPlanId", idOrCode); err != nil {
		return err
	}
	now := s.env.Clock.Now()
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		plans := repository.NewSQLiteActionPlanRepo(tx)
		p, err := resolve[*domain.ActionPlan](ctx, plans, tenant, idOrCode)
		if err != nil {
			return err
		}
		return plans.SoftDelete(ctx, p.ID, tenant.OrganizationID, tenant.BranchID, now)
	})
}

// Repropose creates the next plan of the lineage chain directly, outside a
// follow-up. The parent is left as it was.
func (s *actionPlanService) Repropose(ctx context.Context, req contract.ReproposeRequest) (res *contract.ReproposeResult, err error) {
	fields := map[string]any{"action_plan": req.ActionPlanID}
	defer observe(ctx, s.observer, "repropose-action-plan", time.Now(), fields)(&err)

	if err = checkRequest(req.Tenant, req); err != nil {
		return nil, err
	}
	now := s.env.Clock.Now()

	res, err = db.InTx(ctx, s.uow, func(ctx context.Context, tx db.DBTX) (*contract.ReproposeResult, error) {
		plans := repository.NewSQLiteActionPlanRepo(tx)
		parent, err := resolve[*domain.ActionPlan](ctx, plans, req.Tenant, req.ActionPlanID)
		if err != nil {
			return nil, err
		}
		child, event, err := reproposePlan(ctx, plans, parent, domain.RepropositionInput{
			Reason:       req.Reason,
			NewWhenEnd:   req.NewWhenEnd,
			NewWhoUserID: req.NewWhoUserID,
			NewWho:       req.NewWho,
			CreatedBy:    req.Tenant.UserID,
		}, s.env.IDs, now)
		if err != nil {
			return nil, err
		}
		return &contract.ReproposeResult{Parent: parent, Child: child, Event: event}, nil
	})
	if err != nil {
		return nil, err
	}
	fields["child_code"] = res.Child.Code
	fields["reproposition_number"] = res.Child.RepropositionNumber
	s.env.dispatch(ctx, res.Event)
	return res, nil
}
