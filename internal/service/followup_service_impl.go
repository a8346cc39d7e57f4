package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/strategos/internal/contract"
	"github.com/alexanderramin/strategos/internal/db"
	"github.com/alexanderramin/strategos/internal/domain"
	"github.com/alexanderramin/strategos/internal/repository"
)

type followUpService struct {
	plans     repository.ActionPlanRepo
	followUps repository.FollowUpRepo
	uow       db.UnitOfWork
	env       Env
	observer  UseCaseObserver
}

func NewFollowUpService(
	plans repository.ActionPlanRepo,
	followUps repository.FollowUpRepo,
	uow db.UnitOfWork,
	env Env,
	observers ...UseCaseObserver,
) FollowUpService {
	return &followUpService{
		plans:     plans,
		followUps: followUps,
		uow:       uow,
		env:       env.withDefaults(),
		observer:  useCaseObserverOrNoop(observers),
	}
}

// Execute records a 3G verification and applies its consequences to the
// plan in one transaction:
//
//   - the follow-up number comes from the plan's sequence
//   - a reproposition request creates and links a child plan
//   - the execution percent becomes the plan's progress unless the plan is
//     already completed
//   - a full, successful execution during DO advances the plan to CHECK
//
// Events are dispatched only after the transaction commits.
func (s *followUpService) Execute(ctx context.Context, req contract.ExecuteFollowUpRequest) (res *contract.ExecuteFollowUpResult, err error) {
	fields := map[string]any{
		"action_plan":      req.ActionPlanID,
		"execution_status": string(req.ExecutionStatus),
	}
	defer observe(ctx, s.observer, "execute-follow-up", time.Now(), fields)(&err)

	if err = checkRequest(req.Tenant, req); err != nil {
		return nil, err
	}
	now := s.env.Clock.Now()

	res, err = db.InTx(ctx, s.uow, func(ctx context.Context, tx db.DBTX) (*contract.ExecuteFollowUpResult, error) {
		plans := repository.NewSQLiteActionPlanRepo(tx)
		followUps := repository.NewSQLiteFollowUpRepo(tx)
		sequences := repository.NewSQLiteSequenceRepo(tx)

		plan, err := resolve[*domain.ActionPlan](ctx, plans, req.Tenant, req.ActionPlanID)
		if err != nil {
			return nil, err
		}
		if plan.Status == domain.PlanCancelled {
			return nil, domain.NewInvariantError("action plan %s is cancelled and does not accept follow-ups", plan.Code)
		}
		if !plan.PDCACycle.AcceptsFollowUps() {
			return nil, domain.NewInvariantError("action plan %s is in %s; follow-ups are accepted only in DO or CHECK", plan.Code, plan.PDCACycle)
		}

		number, err := sequences.NextFollowUpNumber(ctx, plan.ID)
		if err != nil {
			return nil, err
		}
		fu, err := domain.NewFollowUp(domain.FollowUpProps{
			OrganizationID:      plan.OrganizationID,
			BranchID:            plan.BranchID,
			ActionPlanID:        plan.ID,
			FollowUpNumber:      number,
			GembaLocal:          req.GembaLocal,
			GembutsuObservation: req.GembutsuObservation,
			GenjitsuData:        req.GenjitsuData,
			ExecutionStatus:     req.ExecutionStatus,
			ExecutionPercent:    req.ExecutionPercent,
			ProblemsObserved:    req.ProblemsObserved,
			ProblemSeverity:     req.ProblemSeverity,
			EvidenceURLs:        req.EvidenceURLs,
			VerifiedBy:          req.Tenant.UserID,
		}, s.env.IDs, now)
		if err != nil {
			return nil, err
		}
		out := &contract.ExecuteFollowUpResult{FollowUp: fu, ActionPlan: plan}

		if req.RequiresNewPlan {
			if err := fu.RequestReproposition(req.NewPlanDescription, req.NewPlanAssignedTo); err != nil {
				return nil, err
			}
			whenEnd := now.Add(plan.PlannedDuration())
			if req.NewPlanWhenEnd != nil {
				whenEnd = *req.NewPlanWhenEnd
			}
			child, event, err := reproposePlan(ctx, plans, plan, domain.RepropositionInput{
				Reason:       req.NewPlanDescription,
				NewWhenEnd:   whenEnd,
				NewWhoUserID: req.NewPlanAssignedTo,
				NewWho:       req.NewPlanAssigneeName,
				CreatedBy:    req.Tenant.UserID,
			}, s.env.IDs, now)
			if err != nil {
				return nil, err
			}
			if err := fu.LinkChildActionPlan(child.ID); err != nil {
				return nil, err
			}
			out.ChildActionPlan = child
			out.Events = append(out.Events, event)
		}

		if err := followUps.Create(ctx, fu); err != nil {
			return nil, err
		}

		// The phase moves before progress: reaching 100% completes the plan
		// and a completed plan no longer advances.
		if fu.ExecutionStatus == domain.ExecutedOK && fu.ExecutionPercent >= 100 &&
			plan.PDCACycle == domain.PhaseDo && !plan.Status.IsTerminal() {
			if _, err := plan.AdvancePDCA(fmt.Sprintf("follow-up %d executed in full", fu.FollowUpNumber), now); err != nil {
				return nil, err
			}
			out.AdvancedToCheck = true
		}
		if plan.Status != domain.PlanCompleted {
			completed, err := plan.UpdateProgress(fu.ExecutionPercent, now)
			if err != nil {
				return nil, err
			}
			out.CompletedNow = completed
		}
		if req.NextFollowUpDate != nil {
			if err := plan.ScheduleFollowUp(*req.NextFollowUpDate, now); err != nil {
				return nil, err
			}
		}
		if err := plans.Save(ctx, plan); err != nil {
			return nil, err
		}

		out.Escalate = fu.RequiresEscalation()
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	fields["follow_up_number"] = res.FollowUp.FollowUpNumber
	fields["completion_percent"] = res.ActionPlan.CompletionPercent
	if res.ChildActionPlan != nil {
		fields["child_code"] = res.ChildActionPlan.Code
	}
	if res.Escalate {
		s.env.Logger.Sugar().Warnw("follow-up requires escalation",
			"action_plan", res.ActionPlan.Code,
			"follow_up_number", res.FollowUp.FollowUpNumber,
			"execution_status", res.FollowUp.ExecutionStatus,
			"problem_severity", res.FollowUp.ProblemSeverity,
		)
	}
	s.env.dispatch(ctx, res.Events...)
	return res, nil
}

func (s *followUpService) Get(ctx context.Context, tenant contract.TenantContext, id string) (*domain.FollowUp, error) {
	if err := checkRequest(tenant, nil); err != nil {
		return nil, err
	}
	if err := requireID("followUpId", id); err != nil {
		return nil, err
	}
	return s.followUps.FindByID(ctx, id, tenant.OrganizationID, tenant.BranchID)
}

func (s *followUpService) ListByActionPlan(ctx context.Context, tenant contract.TenantContext, planIDOrCode string) ([]*domain.FollowUp, error) {
	if err := checkRequest(tenant, nil); err != nil {
		return nil, err
	}
	if err := requireID("actionPlanId", planIDOrCode); err != nil {
		return nil, err
	}
	plan, err := resolve[*domain.ActionPlan](ctx, s.plans, tenant, planIDOrCode)
	if err != nil {
		return nil, err
	}
	return s.followUps.ListByActionPlan(ctx, plan.ID, tenant.OrganizationID, tenant.BranchID)
}
