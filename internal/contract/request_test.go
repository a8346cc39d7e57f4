package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewListActionPlansRequest_SetsDefaults(t *testing.T) {
	tenant := NewTenantContext("u", "org", "br")
	req := NewListActionPlansRequest(tenant)

	assert.Equal(t, tenant, req.Tenant)
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 20, req.PageSize)
	assert.False(t, req.OnlyOverdue)
	assert.Empty(t, req.Status)
}

func TestNewSyncKPIsRequest_SetsDefaults(t *testing.T) {
	req := NewSyncKPIsRequest(NewTenantContext("u", "org", "br"))

	assert.Nil(t, req.Now)
	assert.Empty(t, req.Codes, "empty scope syncs every auto-calculated KPI")
}

func TestSyncOutcomes_AreDistinct(t *testing.T) {
	outcomes := []SyncOutcome{SyncUpdated, SyncNoData, SyncError}
	seen := make(map[SyncOutcome]bool)
	for _, o := range outcomes {
		assert.False(t, seen[o], "duplicate outcome: %s", o)
		seen[o] = true
	}
}
