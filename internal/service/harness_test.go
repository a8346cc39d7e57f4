package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/alexanderramin/strategos/internal/contract"
	"github.com/alexanderramin/strategos/internal/datasource"
	"github.com/alexanderramin/strategos/internal/db"
	"github.com/alexanderramin/strategos/internal/domain"
	"github.com/alexanderramin/strategos/internal/eventsink"
	"github.com/alexanderramin/strategos/internal/repository"
	"github.com/alexanderramin/strategos/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// harness wires every service against one in-memory database, a fixed
// clock, sequential IDs and a recording event sink.
type harness struct {
	db      *sql.DB
	uow     db.UnitOfWork
	clock   *testutil.FixedClock
	events  *eventsink.Recorder
	logs    *observer.ObservedLogs
	env     Env
	sources *datasource.Registry

	plans     repository.ActionPlanRepo
	followUps repository.FollowUpRepo
	ideas     repository.IdeaRepo
	kpis      repository.KPIRepo

	planSvc     ActionPlanService
	followUpSvc FollowUpService
	ideaSvc     IdeaService
	kpiSvc      KPIService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithDB(t, testutil.NewTestDB(t))
}

func newHarnessWithDB(t *testing.T, database *sql.DB) *harness {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	h := &harness{
		db:      database,
		uow:     testutil.NewTestUoW(database),
		clock:   testutil.NewFixedClock(testutil.FixtureNow),
		events:  &eventsink.Recorder{},
		logs:    logs,
		sources: datasource.NewRegistry(),

		plans:     repository.NewSQLiteActionPlanRepo(database),
		followUps: repository.NewSQLiteFollowUpRepo(database),
		ideas:     repository.NewSQLiteIdeaRepo(database),
		kpis:      repository.NewSQLiteKPIRepo(database),
	}
	h.env = Env{
		Clock:  h.clock,
		IDs:    &testutil.SeqIDs{Prefix: "id"},
		Events: h.events,
		Logger: zap.New(core),
	}
	h.rewire(h.uow)
	return h
}

// rewire rebuilds the services on top of uow, for rollback tests.
func (h *harness) rewire(uow db.UnitOfWork) {
	h.planSvc = NewActionPlanService(h.plans, uow, h.env)
	h.followUpSvc = NewFollowUpService(h.plans, h.followUps, uow, h.env)
	h.ideaSvc = NewIdeaService(h.ideas, uow, h.env)
	h.kpiSvc = NewKPIService(h.kpis, h.sources, uow, h.env)
}

func (h *harness) failOnExec(n int32) *testutil.FailOnNthExecUoW {
	uow := &testutil.FailOnNthExecUoW{DB: h.db, FailOn: n, Err: errInjected}
	h.rewire(uow)
	return uow
}

func (h *harness) tenant() contract.TenantContext {
	return contract.NewTenantContext(testutil.TestUser, testutil.TestOrg, testutil.TestBranch)
}

func (h *harness) planRequest(what string) contract.CreateActionPlanRequest {
	now := h.clock.Now()
	return contract.CreateActionPlanRequest{
		Tenant:        h.tenant(),
		What:          what,
		Why:           "Trucks wait too long before unloading",
		WhereLocation: "Distribution center, dock 3",
		WhenStart:     now,
		WhenEnd:       now.AddDate(0, 0, 14),
		Who:           "Ana Souza",
		WhoUserID:     "user-ana",
		How:           "Schedule carrier slots and pre-stage pallets",
	}
}

// createInDo creates a plan and advances it from PLAN to DO.
func (h *harness) createInDo(t *testing.T, what string) *domain.ActionPlan {
	t.Helper()
	ctx := context.Background()
	plan, err := h.planSvc.Create(ctx, h.planRequest(what))
	require.NoError(t, err)
	res, err := h.planSvc.AdvancePDCA(ctx, h.tenant(), plan.ID, "kickoff")
	require.NoError(t, err)
	require.Equal(t, domain.PhaseDo, res.Plan.PDCACycle)
	return res.Plan
}

func (h *harness) followUpRequest(planID string, status domain.ExecutionStatus, pct int) contract.ExecuteFollowUpRequest {
	return contract.ExecuteFollowUpRequest{
		Tenant:              h.tenant(),
		ActionPlanID:        planID,
		GembaLocal:          "Dock 3",
		GembutsuObservation: "Four trucks queued at 09:00",
		GenjitsuData:        "Average dwell 96 min over 12 trucks",
		ExecutionStatus:     status,
		ExecutionPercent:    pct,
	}
}

type injectedError struct{}

func (injectedError) Error() string { return "injected failure" }

var errInjected error = injectedError{}

var day = 24 * time.Hour

func planFilter() repository.ActionPlanFilter {
	return repository.ActionPlanFilter{OrganizationID: testutil.TestOrg, BranchID: testutil.TestBranch}
}
