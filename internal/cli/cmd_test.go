package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/strategos/internal/contract"
	"github.com/alexanderramin/strategos/internal/datasource"
	"github.com/alexanderramin/strategos/internal/domain"
	"github.com/alexanderramin/strategos/internal/eventsink"
	"github.com/alexanderramin/strategos/internal/repository"
	"github.com/alexanderramin/strategos/internal/service"
	"github.com/alexanderramin/strategos/internal/testutil"
	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const snapshotYAML = `
readings:
  otd_rate:
    value: 95
  scrap_rate:
    value: null
`

// testApp wires a full App backed by an in-memory DB for CLI integration tests.
func testApp(t *testing.T) (*App, *eventsink.Recorder) {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)

	snapshot, err := datasource.ParseSnapshot([]byte(snapshotYAML))
	require.NoError(t, err)
	sources := datasource.NewRegistry()
	sources.Register(datasource.ModuleSnapshot, snapshot)

	events := &eventsink.Recorder{}
	env := service.Env{
		Clock:  testutil.NewFixedClock(testutil.FixtureNow),
		IDs:    &testutil.SeqIDs{Prefix: "id"},
		Events: events,
		Logger: zap.NewNop(),
	}

	plans := repository.NewSQLiteActionPlanRepo(database)
	app := &App{
		Plans:     service.NewActionPlanService(plans, uow, env),
		FollowUps: service.NewFollowUpService(plans, repository.NewSQLiteFollowUpRepo(database), uow, env),
		Ideas:     service.NewIdeaService(repository.NewSQLiteIdeaRepo(database), uow, env),
		KPIs:      service.NewKPIService(repository.NewSQLiteKPIRepo(database), sources, uow, env),
		Tenant:    contract.NewTenantContext(testutil.TestUser, testutil.TestOrg, testutil.TestBranch),
		Now:       func() time.Time { return testutil.FixtureNow },
	}
	return app, events
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func createPlan(t *testing.T, app *App) {
	t.Helper()
	out, err := executeCmd(t, app, "plan", "create",
		"--what", "Reduce dock waiting time",
		"--why", "Trucks wait too long before unloading",
		"--where", "Distribution center",
		"--end", "2026-03-16",
		"--how", "Schedule carrier slots",
		"--amount", "2500.50",
	)
	require.NoError(t, err)
	require.Contains(t, out, "Created action plan PA-2026-0001")
}

// --- Plans ---

func TestPlanCmd_Lifecycle(t *testing.T) {
	app, events := testApp(t)
	createPlan(t, app)

	out, err := executeCmd(t, app, "plan", "show", "PA-2026-0001")
	require.NoError(t, err)
	assert.Contains(t, out, "Reduce dock waiting time")
	assert.Contains(t, out, "Distribution center")

	out, err = executeCmd(t, app, "plan", "advance", "PA-2026-0001", "--reason", "kickoff")
	require.NoError(t, err)
	assert.Contains(t, out, "PA-2026-0001 moved to")

	out, err = executeCmd(t, app, "plan", "progress", "PA-2026-0001", "40")
	require.NoError(t, err)
	assert.Contains(t, out, "40%")

	out, err = executeCmd(t, app, "plan", "evidence", "PA-2026-0001", "https://files.example.com/dock.jpg")
	require.NoError(t, err)
	assert.Contains(t, out, "1 evidence item(s)")

	out, err = executeCmd(t, app, "plan", "list", "--status", "in_progress")
	require.NoError(t, err)
	assert.Contains(t, out, "PA-2026-0001")

	out, err = executeCmd(t, app, "plan", "progress", "PA-2026-0001", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "Plan completed")

	plan, err := app.Plans.Get(context.Background(), app.Tenant, "PA-2026-0001")
	require.NoError(t, err)
	assert.Equal(t, domain.PlanCompleted, plan.Status)
	assert.Empty(t, events.Events())
}

func TestPlanCmd_CreateRequiresFlags(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "plan", "create", "--what", "Only a title")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestPlanCmd_CreateRejectsBadDate(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "plan", "create",
		"--what", "x", "--why", "y", "--where", "z", "--how", "h",
		"--end", "16/03/2026",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--end")
}

func TestPlanCmd_Repropose(t *testing.T) {
	app, events := testApp(t)
	createPlan(t, app)

	out, err := executeCmd(t, app, "plan", "repropose", "PA-2026-0001",
		"--reason", "Carrier contract delayed",
		"--end", "2026-04-15",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "PA-2026-0001-R1")
	assert.Contains(t, out, "2 reproposition(s) left")
	assert.Equal(t, []domain.EventType{domain.EventActionPlanReproposed}, events.Types())

	out, err = executeCmd(t, app, "plan", "lineage", "PA-2026-0001-R1")
	require.NoError(t, err)
	assert.Contains(t, out, "PA-2026-0001")
	assert.Contains(t, out, "PA-2026-0001-R1")
}

func TestPlanCmd_NotFound(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "plan", "show", "PA-2026-9999")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestPlanCmd_CancelThenRemove(t *testing.T) {
	app, _ := testApp(t)
	createPlan(t, app)

	out, err := executeCmd(t, app, "plan", "cancel", "PA-2026-0001", "--reason", "Supplier changed")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled PA-2026-0001")

	_, err = executeCmd(t, app, "plan", "rm", "PA-2026-0001")
	require.NoError(t, err)

	out, err = executeCmd(t, app, "plan", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No action plans found.")
}

func TestRootCmd_TenantFlagsOverride(t *testing.T) {
	app, _ := testApp(t)
	createPlan(t, app)

	out, err := executeCmd(t, app, "--org", "org-other", "plan", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No action plans found.")
	assert.Equal(t, "org-other", app.Tenant.OrganizationID)
	assert.Equal(t, testutil.TestBranch, app.Tenant.BranchID)
}

// --- Follow-ups ---

func TestFollowUpCmd_RecordReproposes(t *testing.T) {
	app, events := testApp(t)
	createPlan(t, app)
	_, err := executeCmd(t, app, "plan", "advance", "PA-2026-0001")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "followup", "record", "PA-2026-0001",
		"--gemba", "Dock 3",
		"--gembutsu", "Slots were not published",
		"--genjitsu", "Average wait still 95 minutes",
		"--status", "not_executed",
		"--percent", "10",
		"--new-plan",
		"--new-plan-description", "Publish carrier slots weekly",
		"--new-plan-assignee", "user-bruno",
		"--next", "2026-03-09",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded follow-up #1 on PA-2026-0001")
	assert.Contains(t, out, "Reproposed as PA-2026-0001-R1")
	assert.Contains(t, events.Types(), domain.EventActionPlanReproposed)

	out, err = executeCmd(t, app, "fu", "list", "PA-2026-0001")
	require.NoError(t, err)
	assert.Contains(t, out, "Dock 3")
}

func TestFollowUpCmd_FullExecutionAdvancesToCheck(t *testing.T) {
	app, _ := testApp(t)
	createPlan(t, app)
	_, err := executeCmd(t, app, "plan", "advance", "PA-2026-0001")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "followup", "record", "PA-2026-0001",
		"--gemba", "Dock 3",
		"--gembutsu", "Slots published and followed",
		"--genjitsu", "Average wait 20 minutes",
		"--status", "EXECUTED_OK",
		"--percent", "100",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Plan advanced to CHECK")
	assert.Contains(t, out, "Plan completed")
}

func TestFollowUpCmd_ListEmpty(t *testing.T) {
	app, _ := testApp(t)
	createPlan(t, app)

	out, err := executeCmd(t, app, "followup", "list", "PA-2026-0001")
	require.NoError(t, err)
	assert.Contains(t, out, "No follow-ups recorded for PA-2026-0001.")
}

func TestFollowUpCmd_InteractiveNeedsTerminal(t *testing.T) {
	app, _ := testApp(t)
	createPlan(t, app)

	_, err := executeCmd(t, app, "followup", "record", "PA-2026-0001", "-i")
	assert.ErrorIs(t, err, errNotInteractive)
}

func TestFollowUpCmd_InteractiveAbort(t *testing.T) {
	app, _ := testApp(t)
	createPlan(t, app)
	app.IsInteractive = func() bool { return true }
	var ran bool
	app.RunForm = func(*huh.Form) error {
		ran = true
		return huh.ErrUserAborted
	}

	_, err := executeCmd(t, app, "followup", "record", "PA-2026-0001", "-i")
	assert.True(t, ran)
	assert.ErrorIs(t, err, huh.ErrUserAborted)
}

// --- Ideas ---

func TestIdeaCmd_SubmitReviewConvert(t *testing.T) {
	app, events := testApp(t)

	out, err := executeCmd(t, app, "idea", "submit",
		"--title", "Kanban for packaging",
		"--description", "Replace weekly orders with kanban cards",
		"--source", "observation",
		"--department", "Packaging",
		"--urgency", "high",
		"--importance", "high",
		"--cost", "8000",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Submitted idea IDEA-2026-00001")
	assert.Contains(t, out, "DO FIRST")
	code := "IDEA-2026-00001"

	out, err = executeCmd(t, app, "idea", "list", "--source", "observation")
	require.NoError(t, err)
	assert.Contains(t, out, code)

	out, err = executeCmd(t, app, "idea", "review", code)
	require.NoError(t, err)
	assert.Contains(t, out, string(domain.IdeaUnderReview))

	out, err = executeCmd(t, app, "idea", "approve", code, "--notes", "Pilot on line 2")
	require.NoError(t, err)
	assert.Contains(t, out, string(domain.IdeaApproved))

	out, err = executeCmd(t, app, "idea", "convert", code,
		"--end", "2026-04-30",
		"--how", "Pilot on line 2 then roll out",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "into action plan PA-2026-0001")
	assert.Equal(t, []domain.EventType{domain.EventIdeaApproved, domain.EventIdeaConverted}, events.Types())

	plan, err := app.Plans.Get(context.Background(), app.Tenant, "PA-2026-0001")
	require.NoError(t, err)
	assert.Equal(t, "Kanban for packaging", plan.What)
	assert.Equal(t, "Packaging", plan.WhereLocation)
	assert.Equal(t, domain.PriorityHigh, plan.Priority)
}

func TestIdeaCmd_RejectNeedsNotes(t *testing.T) {
	app, _ := testApp(t)
	_, err := executeCmd(t, app, "idea", "submit", "--title", "Music on the floor", "--description", "Play music")
	require.NoError(t, err)
	_, err = executeCmd(t, app, "idea", "review", "IDEA-2026-00001")
	require.NoError(t, err)

	_, err = executeCmd(t, app, "idea", "reject", "IDEA-2026-00001")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestIdeaCmd_ListEmpty(t *testing.T) {
	app, _ := testApp(t)

	out, err := executeCmd(t, app, "idea", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No ideas found.")
}

// --- KPIs ---

func TestKPICmd_CreateUpdateShow(t *testing.T) {
	app, _ := testApp(t)

	out, err := executeCmd(t, app, "kpi", "create",
		"--code", "OEE", "--name", "Overall equipment effectiveness",
		"--unit", "%", "--target", "85", "--current", "85", "--critical", "30",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Created KPI OEE")
	assert.Contains(t, out, "GREEN")

	out, err = executeCmd(t, app, "kpi", "update", "OEE", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "RED")

	out, err = executeCmd(t, app, "kpi", "thresholds", "OEE", "--alert", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "YELLOW")

	out, err = executeCmd(t, app, "kpi", "show", "OEE")
	require.NoError(t, err)
	assert.Contains(t, out, "Overall equipment effectiveness")
}

func TestKPICmd_UpdateRejectsNonNumeric(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "kpi", "update", "OEE", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid value")
}

func TestKPICmd_Sync(t *testing.T) {
	app, _ := testApp(t)
	for _, args := range [][]string{
		{"--code", "OTD", "--name", "On-time delivery", "--query", "otd_rate"},
		{"--code", "SCRAP", "--name", "Scrap rate", "--query", "scrap_rate"},
	} {
		args = append([]string{"kpi", "create", "--target", "100", "--source", "snapshot"}, args...)
		_, err := executeCmd(t, app, args...)
		require.NoError(t, err)
	}

	out, err := executeCmd(t, app, "kpi", "sync", "--at", "2026-03-05")
	require.NoError(t, err)
	assert.Contains(t, out, "OTD")
	assert.Contains(t, out, "1 updated")
	assert.Contains(t, out, "1 without data")

	reading, err := app.KPIs.Get(context.Background(), app.Tenant, "OTD")
	require.NoError(t, err)
	assert.Equal(t, domain.KPIYellow, reading.Result.Status)
}

func TestKPICmd_SyncWithoutAutoKPIs(t *testing.T) {
	app, _ := testApp(t)

	out, err := executeCmd(t, app, "kpi", "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "No auto-calculated KPIs to sync.")
}
