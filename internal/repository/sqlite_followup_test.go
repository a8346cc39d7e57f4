package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/strategos/internal/domain"
	"github.com/alexanderramin/strategos/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPlan(t *testing.T, ctx context.Context, repo *SQLiteActionPlanRepo, code string, opts ...testutil.PlanOption) *domain.ActionPlan {
	t.Helper()
	p := testutil.NewTestActionPlan(code, opts...)
	require.NoError(t, repo.Save(ctx, p))
	return p
}

func TestFollowUpRepo_CreateAndFindByID(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	plans := NewSQLiteActionPlanRepo(database)
	repo := NewSQLiteFollowUpRepo(database)

	parent := seedPlan(t, ctx, plans, "PA-2026-0001")
	child := seedPlan(t, ctx, plans, "PA-2026-0001-R1", testutil.WithLineage(parent.ID, 1))

	fu := testutil.NewTestFollowUp(parent.ID, 1,
		testutil.WithExecution(domain.NotExecuted, 0),
		testutil.WithChildPlan(child.ID),
	)
	fu.ProblemsObserved = "Supplier missed delivery"
	fu.ProblemSeverity = domain.SeverityHigh
	fu.EvidenceURLs = []string{"https://files.example/gemba.jpg"}
	require.NoError(t, repo.Create(ctx, fu))

	got, err := repo.FindByID(ctx, fu.ID, testutil.TestOrg, testutil.TestBranch)
	require.NoError(t, err)
	assert.Equal(t, 1, got.FollowUpNumber)
	assert.Equal(t, "Dock 3", got.GembaLocal)
	assert.Equal(t, domain.NotExecuted, got.ExecutionStatus)
	assert.Equal(t, domain.SeverityHigh, got.ProblemSeverity)
	assert.True(t, got.RequiresNewPlan)
	require.NotNil(t, got.ChildActionPlanID)
	assert.Equal(t, child.ID, *got.ChildActionPlanID)
	assert.Equal(t, []string{"https://files.example/gemba.jpg"}, got.EvidenceURLs)
	assert.True(t, testutil.FixtureNow.Equal(got.VerifiedAt))
}

func TestFollowUpRepo_NumberIsUniquePerPlan(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	plans := NewSQLiteActionPlanRepo(database)
	repo := NewSQLiteFollowUpRepo(database)

	p1 := seedPlan(t, ctx, plans, "PA-2026-0001")
	p2 := seedPlan(t, ctx, plans, "PA-2026-0002")

	require.NoError(t, repo.Create(ctx, testutil.NewTestFollowUp(p1.ID, 1)))
	require.NoError(t, repo.Create(ctx, testutil.NewTestFollowUp(p2.ID, 1)), "numbering restarts per plan")

	err := repo.Create(ctx, testutil.NewTestFollowUp(p1.ID, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inserting follow-up 1")
}

func TestFollowUpRepo_RejectsBlank3GAtStorage(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	plans := NewSQLiteActionPlanRepo(database)
	repo := NewSQLiteFollowUpRepo(database)

	plan := seedPlan(t, ctx, plans, "PA-2026-0001")
	fu := testutil.NewTestFollowUp(plan.ID, 1)
	fu.GenjitsuData = "   "
	require.Error(t, repo.Create(ctx, fu))
}

func TestFollowUpRepo_RequiresExistingPlan(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteFollowUpRepo(database)

	err := repo.Create(context.Background(), testutil.NewTestFollowUp("no-such-plan", 1))
	require.Error(t, err)
}

func TestFollowUpRepo_ListByActionPlan(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	plans := NewSQLiteActionPlanRepo(database)
	repo := NewSQLiteFollowUpRepo(database)

	plan := seedPlan(t, ctx, plans, "PA-2026-0001")
	other := seedPlan(t, ctx, plans, "PA-2026-0002")
	for _, n := range []int{3, 1, 2} {
		require.NoError(t, repo.Create(ctx, testutil.NewTestFollowUp(plan.ID, n)))
	}
	require.NoError(t, repo.Create(ctx, testutil.NewTestFollowUp(other.ID, 1)))

	list, err := repo.ListByActionPlan(ctx, plan.ID, testutil.TestOrg, testutil.TestBranch)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, fu := range list {
		assert.Equal(t, i+1, fu.FollowUpNumber)
	}

	none, err := repo.ListByActionPlan(ctx, plan.ID, "org-other", testutil.TestBranch)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFollowUpRepo_NotFoundAndContext(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteFollowUpRepo(database)
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "missing", testutil.TestOrg, testutil.TestBranch)
	assert.True(t, domain.IsNotFound(err))

	_, err = repo.ListByActionPlan(ctx, "any", testutil.TestOrg, "")
	assert.True(t, domain.IsContext(err))
}
