package service

import (
	"context"
	"time"

	"github.com/alexanderramin/strategos/internal/contract"
	"github.com/alexanderramin/strategos/internal/db"
	"github.com/alexanderramin/strategos/internal/domain"
	"github.com/alexanderramin/strategos/internal/repository"
)

type ideaService struct {
	ideas    repository.IdeaRepo
	uow      db.UnitOfWork
	env      Env
	observer UseCaseObserver
}

func NewIdeaService(
	ideas repository.IdeaRepo,
	uow db.UnitOfWork,
	env Env,
	observers ...UseCaseObserver,
) IdeaService {
	return &ideaService{
		ideas:    ideas,
		uow:      uow,
		env:      env.withDefaults(),
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *ideaService) Submit(ctx context.Context, req contract.SubmitIdeaRequest) (idea *domain.IdeaBox, err error) {
	fields := map[string]any{"source_type": string(req.SourceType)}
	defer observe(ctx, s.observer, "submit-idea", time.Now(), fields)(&err)

	if err = checkRequest(req.Tenant, req); err != nil {
		return nil, err
	}
	now := s.env.Clock.Now()

	idea, err = db.InTx(ctx, s.uow, func(ctx context.Context, tx db.DBTX) (*domain.IdeaBox, error) {
		code, err := repository.NewSQLiteSequenceRepo(tx).NextIdeaCode(ctx, req.Tenant.OrganizationID, req.Tenant.BranchID, now.Year())
		if err != nil {
			return nil, err
		}
		i, err := domain.NewIdea(req.Props(code), s.env.IDs, now)
		if err != nil {
			return nil, err
		}
		if err := repository.NewSQLiteIdeaRepo(tx).Save(ctx, i); err != nil {
			return nil, err
		}
		return i, nil
	})
	if err != nil {
		return nil, err
	}
	fields["code"] = idea.Code
	fields["quadrant"] = string(idea.PriorityQuadrant())
	return idea, nil
}

func (s *ideaService) Get(ctx context.Context, tenant contract.TenantContext, idOrCode string) (*domain.IdeaBox, error) {
	if err := checkRequest(tenant, nil); err != nil {
		return nil, err
	}
	if err := requireID("ideaId", idOrCode); err != nil {
		return nil, err
	}
	return resolve[*domain.IdeaBox](ctx, s.ideas, tenant, idOrCode)
}

func (s *ideaService) List(ctx context.Context, req contract.ListIdeasRequest) (repository.Page[*domain.IdeaBox], error) {
	if err := checkRequest(req.Tenant, req); err != nil {
		return repository.Page[*domain.IdeaBox]{}, err
	}
	return s.ideas.FindMany(ctx, repository.IdeaFilter{
		OrganizationID: req.Tenant.OrganizationID,
		BranchID:       req.Tenant.BranchID,
		Status:         req.Status,
		SourceType:     req.SourceType,
		SubmittedBy:    req.SubmittedBy,
		Search:         req.Search,
		Pagination:     repository.Pagination{Page: req.Page, PageSize: req.PageSize},
	})
}

func (s *ideaService) mutate(
	ctx context.Context,
	useCase string,
	tenant contract.TenantContext,
	idOrCode string,
	fn func(i *domain.IdeaBox, now time.Time) (*domain.Event, error),
) (idea *domain.IdeaBox, err error) {
	fields := map[string]any{"idea": idOrCode}
	defer observe(ctx, s.observer, useCase, time.Now(), fields)(&err)

	if err = checkRequest(tenant, nil); err != nil {
		return nil, err
	}
	if err = requireID("ideaId", idOrCode); err != nil {
		return nil, err
	}
	now := s.env.Clock.Now()

	var event *domain.Event
	idea, err = db.InTx(ctx, s.uow, func(ctx context.Context, tx db.DBTX) (*domain.IdeaBox, error) {
		ideas := repository.NewSQLiteIdeaRepo(tx)
		i, err := resolve[*domain.IdeaBox](ctx, ideas, tenant, idOrCode)
		if err != nil {
			return nil, err
		}
		ev, err := fn(i, now)
		if err != nil {
			return nil, err
		}
		if err := ideas.Save(ctx, i); err != nil {
			return nil, err
		}
		event = ev
		return i, nil
	})
	if err != nil {
		return nil, err
	}
	fields["code"] = idea.Code
	fields["status"] = string(idea.Status)
	if event != nil {
		s.env.dispatch(ctx, *event)
	}
	return idea, nil
}

func (s *ideaService) StartReview(ctx context.Context, tenant contract.TenantContext, idOrCode string) (*domain.IdeaBox, error) {
	return s.mutate(ctx, "start-idea-review", tenant, idOrCode, func(i *domain.IdeaBox, now time.Time) (*domain.Event, error) {
		return nil, i.StartReview(now)
	})
}

func (s *ideaService) Approve(ctx context.Context, req contract.ReviewIdeaRequest) (*domain.IdeaBox, error) {
	if err := checkRequest(req.Tenant, req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, "approve-idea", req.Tenant, req.IdeaID, func(i *domain.IdeaBox, now time.Time) (*domain.Event, error) {
		ev, err := i.Approve(req.Tenant.UserID, req.Notes, now)
		if err != nil {
			return nil, err
		}
		return &ev, nil
	})
}

func (s *ideaService) Reject(ctx context.Context, req contract.ReviewIdeaRequest) (*domain.IdeaBox, error) {
	if err := checkRequest(req.Tenant, req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, "reject-idea", req.Tenant, req.IdeaID, func(i *domain.IdeaBox, now time.Time) (*domain.Event, error) {
		return nil, i.Reject(req.Tenant.UserID, req.Notes, now)
	})
}

func (s *ideaService) Archive(ctx context.Context, tenant contract.TenantContext, idOrCode string) (*domain.IdeaBox, error) {
	return s.mutate(ctx, "archive-idea", tenant, idOrCode, func(i *domain.IdeaBox, now time.Time) (*domain.Event, error) {
		return nil, i.Archive(now)
	})
}

func (s *ideaService) Refine(ctx context.Context, tenant contract.TenantContext, idOrCode string, r domain.IdeaRefinement) (*domain.IdeaBox, error) {
	return s.mutate(ctx, "refine-idea", tenant, idOrCode, func(i *domain.IdeaBox, now time.Time) (*domain.Event, error) {
		return nil, i.Refine(r, now)
	})
}

func (s *ideaService) Delete(ctx context.Context, tenant contract.TenantContext, idOrCode string) (err error) {
	fields := map[string]any{"idea": idOrCode}
	defer observe(ctx, s.observer, "delete-idea", time.Now(), fields)(&err)

	if err = checkRequest(tenant, nil); err != nil {
		return err
	}
	if err = requireID("ideaId", idOrCode); err != nil {
		return err
	}
	now := s.env.Clock.Now()
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		ideas := repository.NewSQLiteIdeaRepo(tx)
		i, err := resolve[*domain.IdeaBox](ctx, ideas, tenant, idOrCode)
		if err != nil {
			return err
		}
		return ideas.SoftDelete(ctx, i.ID, tenant.OrganizationID, tenant.BranchID, now)
	})
}

// Convert turns an approved idea into a new action plan and marks the idea
// converted, both in one transaction. The plan takes what from the title,
// why from the description and howMuch from the estimated cost; its priority
// follows the idea's Eisenhower quadrant unless the request overrides it.
func (s *ideaService) Convert(ctx context.Context, req contract.ConvertIdeaRequest) (res *contract.ConvertIdeaResult, err error) {
	fields := map[string]any{"idea": req.IdeaID}
	defer observe(ctx, s.observer, "convert-idea", time.Now(), fields)(&err)

	if err = checkRequest(req.Tenant, req); err != nil {
		return nil, err
	}
	now := s.env.Clock.Now()

	res, err = db.InTx(ctx, s.uow, func(ctx context.Context, tx db.DBTX) (*contract.ConvertIdeaResult, error) {
		ideas := repository.NewSQLiteIdeaRepo(tx)
		plans := repository.NewSQLiteActionPlanRepo(tx)

		idea, err := resolve[*domain.IdeaBox](ctx, ideas, req.Tenant, req.IdeaID)
		if err != nil {
			return nil, err
		}
		if idea.Status != domain.IdeaApproved {
			return nil, domain.NewInvariantError("idea %s is %s; only approved ideas can be converted", idea.Code, idea.Status)
		}

		code, err := repository.NewSQLiteSequenceRepo(tx).NextActionPlanCode(ctx, idea.OrganizationID, idea.BranchID, now.Year())
		if err != nil {
			return nil, err
		}
		priority := req.Priority
		if priority == "" {
			priority = idea.PriorityQuadrant().SuggestedPriority()
		}
		whenStart := req.WhenStart
		if whenStart.IsZero() {
			whenStart = now
		}
		whoUserID := domain.CoalesceStr(req.WhoUserID, req.Tenant.UserID)

		plan, err := domain.NewActionPlan(domain.ActionPlanProps{
			OrganizationID: idea.OrganizationID,
			BranchID:       idea.BranchID,
			Code:           code,
			What:           idea.Title,
			Why:            idea.Description,
			WhereLocation:  domain.CoalesceStr(req.WhereLocation, idea.Department),
			WhenStart:      whenStart,
			WhenEnd:        req.WhenEnd,
			Who:            domain.CoalesceStr(req.Who, whoUserID),
			WhoUserID:      whoUserID,
			How:            req.How,
			HowMuchAmount:  idea.EstimatedCost,
			Priority:       priority,
			CreatedBy:      req.Tenant.UserID,
		}, s.env.IDs, now)
		if err != nil {
			return nil, err
		}
		if err := plans.Save(ctx, plan); err != nil {
			return nil, err
		}

		event, err := idea.Convert(domain.ConvertToActionPlan, plan.ID, now)
		if err != nil {
			return nil, err
		}
		if err := ideas.Save(ctx, idea); err != nil {
			return nil, err
		}
		return &contract.ConvertIdeaResult{Idea: idea, ActionPlan: plan, Events: []domain.Event{event}}, nil
	})
	if err != nil {
		return nil, err
	}
	fields["code"] = res.Idea.Code
	fields["action_plan_code"] = res.ActionPlan.Code
	s.env.dispatch(ctx, res.Events...)
	return res, nil
}
