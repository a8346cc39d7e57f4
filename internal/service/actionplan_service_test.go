package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/strategos/internal/contract"
	"github.com/alexanderramin/strategos/internal/domain"
	"github.com/alexanderramin/strategos/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateActionPlan_AllocatesCodeAndStartsInPlan(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	req := h.planRequest("Reduce dock dwell time")
	amount := decimal.RequireFromString("1500.50")
	req.HowMuchAmount = &amount

	plan, err := h.planSvc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "PA-2026-0001", plan.Code)
	assert.Equal(t, domain.PlanDraft, plan.Status)
	assert.Equal(t, domain.PhasePlan, plan.PDCACycle)
	assert.Equal(t, 0, plan.CompletionPercent)
	assert.Equal(t, testutil.TestUser, plan.CreatedBy)
	assert.Equal(t, domain.DefaultCurrency, plan.HowMuchCurrency)

	second, err := h.planSvc.Create(ctx, h.planRequest("Cut picking errors"))
	require.NoError(t, err)
	assert.Equal(t, "PA-2026-0002", second.Code)

	byCode, err := h.planSvc.Get(ctx, h.tenant(), "pa-2026-0001")
	require.NoError(t, err)
	assert.Equal(t, plan.ID, byCode.ID)
	assert.True(t, amount.Equal(byCode.HowMuchAmount.Decimal))
}

func TestCreateActionPlan_ContextCheckedBeforeFields(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	req := h.planRequest("")
	req.Tenant = contract.NewTenantContext(testutil.TestUser, "", testutil.TestBranch)

	_, err := h.planSvc.Create(ctx, req)
	require.Error(t, err)
	assert.True(t, domain.IsContext(err))
	assert.Equal(t, "organizationId", domain.FieldOf(err))

	req.Tenant = h.tenant()
	_, err = h.planSvc.Create(ctx, req)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, "what", domain.FieldOf(err))

	page, err := h.planSvc.List(ctx, contract.NewListActionPlansRequest(h.tenant()))
	require.NoError(t, err)
	assert.Zero(t, page.Total, "failed creates leave nothing behind")
}

func TestCreateActionPlan_RejectsInvertedWindow(t *testing.T) {
	h := newHarness(t)
	req := h.planRequest("Reduce dock dwell time")
	req.WhenEnd = req.WhenStart

	_, err := h.planSvc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, "whenEnd", domain.FieldOf(err))
}

func TestAdvancePDCA_FullCycleEmitsEvent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	plan := h.createInDo(t, "Reduce dock dwell time")
	assert.Equal(t, domain.PlanInProgress, plan.Status)

	for _, want := range []domain.PDCAPhase{domain.PhaseCheck, domain.PhaseAct} {
		res, err := h.planSvc.AdvancePDCA(ctx, h.tenant(), plan.Code, "review")
		require.NoError(t, err)
		assert.Equal(t, want, res.Plan.PDCACycle)
		assert.Nil(t, res.Event)
	}
	assert.Empty(t, h.events.Events())

	res, err := h.planSvc.AdvancePDCA(ctx, h.tenant(), plan.ID, "standardized")
	require.NoError(t, err)
	assert.Equal(t, domain.PhasePlan, res.Plan.PDCACycle)
	require.NotNil(t, res.Event)
	assert.Equal(t, []domain.EventType{domain.EventPDCACycleCompleted}, h.events.Types())
	assert.Equal(t, "standardized", h.events.Events()[0].Payload["reason"])
}

func TestUpdateProgress_CompletesAtHundred(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	plan := h.createInDo(t, "Reduce dock dwell time")

	res, err := h.planSvc.UpdateProgress(ctx, h.tenant(), plan.ID, 40)
	require.NoError(t, err)
	assert.False(t, res.CompletedNow)

	res, err = h.planSvc.UpdateProgress(ctx, h.tenant(), plan.ID, 100)
	require.NoError(t, err)
	assert.True(t, res.CompletedNow)
	assert.Equal(t, domain.PlanCompleted, res.Plan.Status)

	res, err = h.planSvc.UpdateProgress(ctx, h.tenant(), plan.ID, 100)
	require.NoError(t, err)
	assert.False(t, res.CompletedNow, "repeating 100 only confirms completion")

	_, err = h.planSvc.UpdateProgress(ctx, h.tenant(), plan.ID, 101)
	assert.True(t, domain.IsValidation(err))
}

func TestUpdateProgress_CancelledPlanRejected(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	plan := h.createInDo(t, "Reduce dock dwell time")

	_, err := h.planSvc.Cancel(ctx, h.tenant(), plan.ID, "")
	assert.True(t, domain.IsValidation(err), "a reason is required")

	cancelled, err := h.planSvc.Cancel(ctx, h.tenant(), plan.ID, "Supplier contract ended")
	require.NoError(t, err)
	assert.Equal(t, domain.PlanCancelled, cancelled.Status)

	_, err = h.planSvc.UpdateProgress(ctx, h.tenant(), plan.ID, 50)
	require.Error(t, err)
	assert.True(t, domain.IsInvariant(err))

	stored, err := h.plans.FindByID(ctx, plan.ID, testutil.TestOrg, testutil.TestBranch)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.CompletionPercent)
}

func TestSubmitBlockUnblock(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	plan, err := h.planSvc.Create(ctx, h.planRequest("Reduce dock dwell time"))
	require.NoError(t, err)

	submitted, err := h.planSvc.Submit(ctx, h.tenant(), plan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanPending, submitted.Status)

	_, err = h.planSvc.Submit(ctx, h.tenant(), plan.ID)
	assert.True(t, domain.IsInvariant(err))

	blocked, err := h.planSvc.Block(ctx, h.tenant(), plan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanBlocked, blocked.Status)

	unblocked, err := h.planSvc.Unblock(ctx, h.tenant(), plan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanInProgress, unblocked.Status)
}

func TestAddEvidenceAndScheduleFollowUp(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	plan := h.createInDo(t, "Reduce dock dwell time")

	_, err := h.planSvc.AddEvidence(ctx, h.tenant(), plan.ID, "https://files.example/a.jpg")
	require.NoError(t, err)
	updated, err := h.planSvc.AddEvidence(ctx, h.tenant(), plan.ID, "https://files.example/a.jpg")
	require.NoError(t, err)
	assert.Len(t, updated.EvidenceURLs, 2, "duplicates are kept")

	_, err = h.planSvc.AddEvidence(ctx, h.tenant(), plan.ID, "  ")
	assert.True(t, domain.IsValidation(err))

	_, err = h.planSvc.ScheduleFollowUp(ctx, h.tenant(), plan.ID, h.clock.Now())
	assert.True(t, domain.IsValidation(err), "the date must be strictly in the future")

	next := h.clock.Now().Add(7 * day)
	scheduled, err := h.planSvc.ScheduleFollowUp(ctx, h.tenant(), plan.ID, next)
	require.NoError(t, err)
	require.NotNil(t, scheduled.NextFollowUpDate)
	assert.True(t, next.Equal(*scheduled.NextFollowUpDate))
}

func TestRepropose_ChainIsCappedAtThree(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	plan := h.createInDo(t, "Reduce dock dwell time")

	current := plan
	for n := 1; n <= domain.MaxRepropositions; n++ {
		res, err := h.planSvc.Repropose(ctx, contract.ReproposeRequest{
			Tenant:       h.tenant(),
			ActionPlanID: current.ID,
			Reason:       "Carrier did not adopt slots",
			NewWhenEnd:   h.clock.Now().Add(21 * day),
			NewWhoUserID: "user-bruno",
			NewWho:       "Bruno Lima",
		})
		require.NoError(t, err, "reproposition %d", n)
		assert.Equal(t, n, res.Child.RepropositionNumber)
		require.NotNil(t, res.Child.ParentActionPlanID)
		assert.Equal(t, current.ID, *res.Child.ParentActionPlanID)
		assert.Equal(t, "user-bruno", res.Child.WhoUserID)
		assert.Equal(t, domain.EventActionPlanReproposed, res.Event.Type)
		current = res.Child
	}
	assert.Equal(t, "PA-2026-0001-R1-R2-R3", current.Code)

	_, err := h.planSvc.Repropose(ctx, contract.ReproposeRequest{
		Tenant:       h.tenant(),
		ActionPlanID: current.ID,
		Reason:       "One more try",
		NewWhenEnd:   h.clock.Now().Add(30 * day),
	})
	require.Error(t, err)
	assert.True(t, domain.IsInvariant(err))
	assert.Len(t, h.events.Events(), domain.MaxRepropositions)

	chain, err := h.planSvc.Lineage(ctx, h.tenant(), current.Code)
	require.NoError(t, err)
	require.Len(t, chain, 4)
	for i, p := range chain {
		assert.Equal(t, i, p.RepropositionNumber)
	}
	assert.Equal(t, plan.ID, chain[0].ID)
}

func TestRepropose_RequiresReasonAndDeadline(t *testing.T) {
	h := newHarness(t)
	plan := h.createInDo(t, "Reduce dock dwell time")

	_, err := h.planSvc.Repropose(context.Background(), contract.ReproposeRequest{
		Tenant:       h.tenant(),
		ActionPlanID: plan.ID,
		NewWhenEnd:   h.clock.Now().Add(day),
	})
	require.Error(t, err)
	assert.Equal(t, "reason", domain.FieldOf(err))

	_, err = h.planSvc.Repropose(context.Background(), contract.ReproposeRequest{
		Tenant:       h.tenant(),
		ActionPlanID: plan.ID,
		Reason:       "Late supplier",
	})
	require.Error(t, err)
	assert.Equal(t, "newWhenEnd", domain.FieldOf(err))
}

func TestListActionPlans_OverdueUsesServiceClock(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	short := h.planRequest("Short task")
	short.WhenEnd = short.WhenStart.Add(2 * day)
	_, err := h.planSvc.Create(ctx, short)
	require.NoError(t, err)
	_, err = h.planSvc.Create(ctx, h.planRequest("Long task"))
	require.NoError(t, err)

	req := contract.NewListActionPlansRequest(h.tenant())
	req.OnlyOverdue = true
	page, err := h.planSvc.List(ctx, req)
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	h.clock.Advance(3 * day)
	page, err = h.planSvc.List(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "Short task", page.Items[0].What)

	req = contract.NewListActionPlansRequest(h.tenant())
	req.PageSize = 500
	_, err = h.planSvc.List(ctx, req)
	assert.True(t, domain.IsValidation(err))
}

func TestDeleteActionPlan_HidesIt(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	plan, err := h.planSvc.Create(ctx, h.planRequest("Reduce dock dwell time"))
	require.NoError(t, err)

	require.NoError(t, h.planSvc.Delete(ctx, h.tenant(), plan.Code))
	_, err = h.planSvc.Get(ctx, h.tenant(), plan.ID)
	assert.True(t, domain.IsNotFound(err))

	other := contract.NewTenantContext("user-x", "org-other", testutil.TestBranch)
	err = h.planSvc.Delete(ctx, other, plan.ID)
	assert.True(t, domain.IsNotFound(err))
}

func TestEventSinkFailureDoesNotFailUseCase(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	plan := h.createInDo(t, "Reduce dock dwell time")
	h.events.Err = errors.New("stream unavailable")

	res, err := h.planSvc.Repropose(ctx, contract.ReproposeRequest{
		Tenant:       h.tenant(),
		ActionPlanID: plan.ID,
		Reason:       "Carrier did not adopt slots",
		NewWhenEnd:   h.clock.Now().Add(14 * day),
	})
	require.NoError(t, err)
	assert.NotNil(t, res.Child)

	warnings := h.logs.FilterMessage("event dispatch failed").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, string(domain.EventActionPlanReproposed), warnings[0].ContextMap()["type"])

	_, err = h.plans.FindByID(ctx, res.Child.ID, testutil.TestOrg, testutil.TestBranch)
	assert.NoError(t, err, "the child stays committed")
}

func TestRepropose_SameParentTwiceIsInvariant(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	plan := h.createInDo(t, "Reduce dock dwell time")
	req := contract.ReproposeRequest{
		Tenant:       h.tenant(),
		ActionPlanID: plan.ID,
		Reason:       "Carrier did not adopt slots",
		NewWhenEnd:   h.clock.Now().Add(21 * day),
	}

	_, err := h.planSvc.Repropose(ctx, req)
	require.NoError(t, err)
	h.events.Reset()

	_, err = h.planSvc.Repropose(ctx, req)
	require.Error(t, err)
	assert.True(t, domain.IsInvariant(err))
	assert.Contains(t, err.Error(), "already reproposed as PA-2026-0001-R1")
	assert.Empty(t, h.events.Events())
}
