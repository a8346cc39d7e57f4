package service

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/strategos/internal/contract"
	"github.com/alexanderramin/strategos/internal/datasource"
	"github.com/alexanderramin/strategos/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *harness) createKPI(t *testing.T, code string, mutate ...func(*contract.CreateKPIRequest)) *contract.KPIReading {
	t.Helper()
	current := 100.0
	req := contract.CreateKPIRequest{
		Tenant:            h.tenant(),
		Code:              code,
		Name:              code + " rate",
		Unit:              "%",
		Polarity:          domain.PolarityUp,
		TargetValue:       100,
		CurrentValue:      &current,
		AlertThreshold:    10,
		CriticalThreshold: 30,
	}
	for _, m := range mutate {
		m(&req)
	}
	out, err := h.kpiSvc.Create(context.Background(), req)
	require.NoError(t, err)
	return out
}

func autoFrom(module, query string) func(*contract.CreateKPIRequest) {
	return func(r *contract.CreateKPIRequest) {
		r.AutoCalculate = true
		r.SourceModule = module
		r.SourceQuery = query
	}
}

func TestKPI_StatusFollowsReadings(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	created := h.createKPI(t, "OTD")
	assert.Equal(t, domain.KPIGreen, created.Result.Status)

	cases := []struct {
		value    float64
		status   domain.KPIStatus
		critical bool
	}{
		{95, domain.KPIYellow, false},
		{90, domain.KPIYellow, false},
		{89.9, domain.KPIRed, false},
		{60, domain.KPIRed, true},
		{120, domain.KPIGreen, false},
	}
	for _, tc := range cases {
		out, err := h.kpiSvc.UpdateValue(ctx, h.tenant(), "otd", tc.value)
		require.NoError(t, err)
		assert.Equal(t, tc.status, out.Result.Status, "value %v", tc.value)
		assert.Equal(t, tc.critical, out.Result.Critical, "value %v", tc.value)

		stored, err := h.kpiSvc.Get(ctx, h.tenant(), created.KPI.ID)
		require.NoError(t, err)
		assert.Equal(t, tc.status, stored.KPI.Status)
		require.NotNil(t, stored.KPI.LastCalculatedAt)
	}
}

func TestKPI_DownPolarity(t *testing.T) {
	h := newHarness(t)
	scrap := h.createKPI(t, "SCRAP", func(r *contract.CreateKPIRequest) {
		r.Polarity = domain.PolarityDown
		r.TargetValue = 5
		v := 5.4
		r.CurrentValue = &v
	})
	assert.Equal(t, domain.KPIYellow, scrap.Result.Status, "8% over target is inside the alert band")

	out, err := h.kpiSvc.UpdateValue(context.Background(), h.tenant(), "SCRAP", 4)
	require.NoError(t, err)
	assert.Equal(t, domain.KPIGreen, out.Result.Status)
}

func TestKPI_CreateRejectsDuplicateCode(t *testing.T) {
	h := newHarness(t)
	h.createKPI(t, "OTD")

	current := 1.0
	_, err := h.kpiSvc.Create(context.Background(), contract.CreateKPIRequest{
		Tenant:       h.tenant(),
		Code:         "OTD",
		Name:         "Another",
		TargetValue:  10,
		CurrentValue: &current,
	})
	require.Error(t, err)
	assert.True(t, domain.IsInvariant(err))
}

func TestKPI_CreateValidatesSource(t *testing.T) {
	h := newHarness(t)
	_, err := h.kpiSvc.Create(context.Background(), contract.CreateKPIRequest{
		Tenant:        h.tenant(),
		Code:          "OTD",
		Name:          "On time",
		TargetValue:   100,
		AutoCalculate: true,
	})
	require.Error(t, err)
	assert.Equal(t, "sourceModule", domain.FieldOf(err))
}

func TestKPI_ChangeTargetAndThresholds(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.createKPI(t, "OTD", func(r *contract.CreateKPIRequest) {
		v := 92.0
		r.CurrentValue = &v
	})

	out, err := h.kpiSvc.ChangeTarget(ctx, h.tenant(), "OTD", 90)
	require.NoError(t, err)
	assert.Equal(t, domain.KPIGreen, out.Result.Status)

	out, err = h.kpiSvc.ChangeTarget(ctx, h.tenant(), "OTD", 110)
	require.NoError(t, err)
	assert.Equal(t, domain.KPIRed, out.Result.Status, "92/110 is below the 90% band")

	out, err = h.kpiSvc.ChangeThresholds(ctx, h.tenant(), "OTD", 20, 40)
	require.NoError(t, err)
	assert.Equal(t, domain.KPIYellow, out.Result.Status)

	_, err = h.kpiSvc.ChangeThresholds(ctx, h.tenant(), "OTD", -5, 0)
	assert.True(t, domain.IsValidation(err))

	stored, err := h.kpiSvc.Get(ctx, h.tenant(), "OTD")
	require.NoError(t, err)
	assert.InDelta(t, 20, stored.KPI.AlertThreshold, 1e-9)
	assert.InDelta(t, 110, stored.KPI.TargetValue, 1e-9)
}

func TestKPI_ZeroTargetReadsAsRed(t *testing.T) {
	h := newHarness(t)
	out := h.createKPI(t, "ZERO", func(r *contract.CreateKPIRequest) { r.TargetValue = 0 })
	assert.Equal(t, domain.KPIRed, out.Result.Status)
}

func TestKPI_ListAndDelete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.createKPI(t, "OTD")
	h.createKPI(t, "FILL", func(r *contract.CreateKPIRequest) {
		v := 50.0
		r.CurrentValue = &v
	})

	page, err := h.kpiSvc.List(ctx, contract.ListKPIsRequest{Tenant: h.tenant(), Status: domain.KPIRed})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "FILL", page.Items[0].Code)

	require.NoError(t, h.kpiSvc.Delete(ctx, h.tenant(), "FILL"))
	_, err = h.kpiSvc.Get(ctx, h.tenant(), "FILL")
	assert.True(t, domain.IsNotFound(err))
}

const snapshotYAML = `
readings:
  otd_rate:
    value: 95
  scrap_rate:
`

func TestKPI_SyncReportsEachOutcome(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	snap, err := datasource.ParseSnapshot([]byte(snapshotYAML))
	require.NoError(t, err)
	h.sources.Register(datasource.ModuleSnapshot, snap)
	h.sources.Register(datasource.ModuleSQL, datasource.NewSQLSource(h.db))

	h.createKPI(t, "OTD", autoFrom("snapshot", "otd_rate"))
	h.createKPI(t, "SCRAP", autoFrom("snapshot", "scrap_rate"))
	h.createKPI(t, "ENERGY", autoFrom("mes", "kwh_per_unit"))
	h.createKPI(t, "PURGE", autoFrom("sql", "DELETE FROM kpis"))
	h.createKPI(t, "COUNT", autoFrom("sql", "SELECT 50.0"))
	h.createKPI(t, "COST")

	resp, err := h.kpiSvc.Sync(ctx, contract.NewSyncKPIsRequest(h.tenant()))
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Total, "manual KPIs are not synced")
	assert.Equal(t, 2, resp.Updated)
	assert.Equal(t, 1, resp.NoData)
	assert.Equal(t, 2, resp.Errors)
	assert.True(t, h.clock.Now().Equal(resp.GeneratedAt))

	byCode := map[string]contract.KPISyncItem{}
	for _, item := range resp.Items {
		byCode[item.Code] = item
	}
	otd := byCode["OTD"]
	assert.Equal(t, contract.SyncUpdated, otd.Outcome)
	assert.Equal(t, domain.KPIGreen, otd.PreviousStatus)
	assert.Equal(t, domain.KPIYellow, otd.Status)
	require.NotNil(t, otd.Value)
	assert.InDelta(t, 95, *otd.Value, 1e-9)

	count := byCode["COUNT"]
	assert.Equal(t, domain.KPIRed, count.Status)
	assert.True(t, count.Critical)

	assert.Equal(t, contract.SyncNoData, byCode["SCRAP"].Outcome)
	assert.Equal(t, contract.SyncError, byCode["ENERGY"].Outcome)
	assert.Contains(t, byCode["ENERGY"].Message, `"mes"`)
	assert.Equal(t, contract.SyncError, byCode["PURGE"].Outcome)

	stored, err := h.kpiSvc.Get(ctx, h.tenant(), "OTD")
	require.NoError(t, err)
	assert.Equal(t, domain.KPIYellow, stored.KPI.Status)

	untouched, err := h.kpiSvc.Get(ctx, h.tenant(), "SCRAP")
	require.NoError(t, err)
	assert.Nil(t, untouched.KPI.LastCalculatedAt)

	assert.Equal(t, 2, h.logs.FilterMessage("kpi sync failed").Len())
}

func TestKPI_SyncByCode(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	snap, err := datasource.ParseSnapshot([]byte(snapshotYAML))
	require.NoError(t, err)
	h.sources.Register(datasource.ModuleSnapshot, snap)

	h.createKPI(t, "OTD", autoFrom("snapshot", "otd_rate"))
	h.createKPI(t, "SCRAP", autoFrom("snapshot", "scrap_rate"))
	h.createKPI(t, "COST")

	req := contract.NewSyncKPIsRequest(h.tenant())
	at := h.clock.Now().Add(day)
	req.Now = &at
	req.Codes = []string{"otd", "NOPE", "COST"}

	resp, err := h.kpiSvc.Sync(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 1, resp.Updated)
	assert.Equal(t, 2, resp.Errors)
	assert.Zero(t, resp.NoData, "SCRAP was not requested")

	stored, err := h.kpiSvc.Get(ctx, h.tenant(), "OTD")
	require.NoError(t, err)
	require.NotNil(t, stored.KPI.LastCalculatedAt)
	assert.True(t, at.Equal(*stored.KPI.LastCalculatedAt))
}

func TestKPI_SyncStampsMeasurementTime(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	snap, err := datasource.ParseSnapshot([]byte(`
readings:
  otd_rate:
    value: 97
    at: 2026-02-28T18:00:00Z
`))
	require.NoError(t, err)
	h.sources.Register(datasource.ModuleSnapshot, snap)
	h.createKPI(t, "OTD", autoFrom("snapshot", "otd_rate"))

	resp, err := h.kpiSvc.Sync(ctx, contract.NewSyncKPIsRequest(h.tenant()))
	require.NoError(t, err)
	require.Equal(t, 1, resp.Updated)

	stored, err := h.kpiSvc.Get(ctx, h.tenant(), "OTD")
	require.NoError(t, err)
	require.NotNil(t, stored.KPI.LastCalculatedAt)
	measured := time.Date(2026, 2, 28, 18, 0, 0, 0, time.UTC)
	assert.True(t, measured.Equal(*stored.KPI.LastCalculatedAt))
	assert.True(t, h.clock.Now().Equal(stored.KPI.UpdatedAt))
}

func TestKPI_NegativeTargetIsValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.kpiSvc.Create(ctx, contract.CreateKPIRequest{
		Tenant:      h.tenant(),
		Code:        "LOSS",
		Name:        "Operating loss",
		Polarity:    domain.PolarityUp,
		TargetValue: -100,
	})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	h.createKPI(t, "OTD")
	_, err = h.kpiSvc.ChangeTarget(ctx, h.tenant(), "OTD", -100)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	stored, err := h.kpiSvc.Get(ctx, h.tenant(), "OTD")
	require.NoError(t, err)
	assert.InDelta(t, 100, stored.KPI.TargetValue, 1e-9)
	assert.Equal(t, domain.KPIGreen, stored.KPI.Status)
}
