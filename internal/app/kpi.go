package app

import (
	"time"

	"github.com/alexanderramin/strategos/internal/domain"
)

type CreateKPIRequest struct {
	Tenant TenantContext `validate:"-"`

	Code              string
	Name              string
	Description       string
	Unit              string
	Polarity          domain.Polarity
	Frequency         domain.Frequency
	TargetValue       float64
	CurrentValue      *float64
	BaselineValue     *float64
	AlertThreshold    float64
	CriticalThreshold float64
	AutoCalculate     bool
	SourceModule      string
	SourceQuery       string
	ResponsibleUserID string
}

func (r CreateKPIRequest) Props() domain.KPIProps {
	return domain.KPIProps{
		OrganizationID:    r.Tenant.OrganizationID,
		BranchID:          r.Tenant.BranchID,
		Code:              r.Code,
		Name:              r.Name,
		Description:       r.Description,
		Unit:              r.Unit,
		Polarity:          r.Polarity,
		Frequency:         r.Frequency,
		TargetValue:       r.TargetValue,
		CurrentValue:      r.CurrentValue,
		BaselineValue:     r.BaselineValue,
		AlertThreshold:    r.AlertThreshold,
		CriticalThreshold: r.CriticalThreshold,
		AutoCalculate:     r.AutoCalculate,
		SourceModule:      r.SourceModule,
		SourceQuery:       r.SourceQuery,
		ResponsibleUserID: r.ResponsibleUserID,
		CreatedBy:         r.Tenant.UserID,
	}
}

type ListKPIsRequest struct {
	Tenant TenantContext `validate:"-"`

	Status        domain.KPIStatus
	AutoCalculate *bool
	Search        string
	Page          int `json:"page" validate:"gte=0"`
	PageSize      int `json:"pageSize" validate:"gte=0,lte=100"`
}

// KPIReading is a KPI together with the calculator's latest verdict.
type KPIReading struct {
	KPI    *domain.KPI
	Result domain.StatusResult
}

type SyncKPIsRequest struct {
	Tenant TenantContext `validate:"-"`
	Now    *time.Time

	// Codes restricts the sync to these KPIs. Empty means every
	// auto-calculated KPI of the tenant.
	Codes []string
}

func NewSyncKPIsRequest(tenant TenantContext) SyncKPIsRequest {
	return SyncKPIsRequest{Tenant: tenant}
}

type SyncOutcome string

const (
	SyncUpdated SyncOutcome = "UPDATED"
	SyncNoData  SyncOutcome = "NO_DATA"
	SyncError   SyncOutcome = "ERROR"
)

type KPISyncItem struct {
	KPIID          string
	Code           string
	Outcome        SyncOutcome
	PreviousStatus domain.KPIStatus
	Status         domain.KPIStatus
	Value          *float64
	Critical       bool
	Message        string
}

type SyncKPIsResponse struct {
	GeneratedAt time.Time
	Total       int
	Updated     int
	NoData      int
	Errors      int
	Items       []KPISyncItem
}
