package contract

import "github.com/alexanderramin/strategos/internal/app"

type CreateActionPlanRequest = app.CreateActionPlanRequest

type ListActionPlansRequest = app.ListActionPlansRequest

func NewListActionPlansRequest(tenant TenantContext) ListActionPlansRequest {
	return app.NewListActionPlansRequest(tenant)
}

type ReproposeRequest = app.ReproposeRequest

type ReproposeResult = app.ReproposeResult

type AdvancePDCAResult = app.AdvancePDCAResult

type UpdateProgressResult = app.UpdateProgressResult

type ExecuteFollowUpRequest = app.ExecuteFollowUpRequest

type ExecuteFollowUpResult = app.ExecuteFollowUpResult
