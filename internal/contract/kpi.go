package contract

import "github.com/alexanderramin/strategos/internal/app"

type CreateKPIRequest = app.CreateKPIRequest

type ListKPIsRequest = app.ListKPIsRequest

type KPIReading = app.KPIReading

type SyncKPIsRequest = app.SyncKPIsRequest

func NewSyncKPIsRequest(tenant TenantContext) SyncKPIsRequest {
	return app.NewSyncKPIsRequest(tenant)
}

type SyncOutcome = app.SyncOutcome

const (
	SyncUpdated SyncOutcome = app.SyncUpdated
	SyncNoData  SyncOutcome = app.SyncNoData
	SyncError   SyncOutcome = app.SyncError
)

type KPISyncItem = app.KPISyncItem

type SyncKPIsResponse = app.SyncKPIsResponse
