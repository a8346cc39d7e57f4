package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/strategos/internal/contract"
	"github.com/alexanderramin/strategos/internal/datasource"
	"github.com/alexanderramin/strategos/internal/db"
	"github.com/alexanderramin/strategos/internal/domain"
	"github.com/alexanderramin/strategos/internal/repository"
	"go.uber.org/zap"
)

// SourceLookup resolves a KPI's SourceModule to a data source.
type SourceLookup interface {
	Lookup(module string) (datasource.Source, bool)
}

type kpiService struct {
	kpis     repository.KPIRepo
	sources  SourceLookup
	uow      db.UnitOfWork
	env      Env
	observer UseCaseObserver
}

func NewKPIService(
	kpis repository.KPIRepo,
	sources SourceLookup,
	uow db.UnitOfWork,
	env Env,
	observers ...UseCaseObserver,
) KPIService {
	if sources == nil {
		sources = datasource.NewRegistry()
	}
	return &kpiService{
		kpis:     kpis,
		sources:  sources,
		uow:      uow,
		env:      env.withDefaults(),
		observer: useCaseObserverOrNoop(observers),
	}
}

// readingOf pairs a KPI with the calculator's verdict. An indeterminate
// result keeps the stored status, which the aggregate already set to RED.
func readingOf(k *domain.KPI) *contract.KPIReading {
	res, err := k.Evaluate()
	if err != nil {
		res = domain.StatusResult{Status: k.Status}
	}
	return &contract.KPIReading{KPI: k, Result: res}
}

func (s *kpiService) Create(ctx context.Context, req contract.CreateKPIRequest) (out *contract.KPIReading, err error) {
	fields := map[string]any{"code": req.Code}
	defer observe(ctx, s.observer, "create-kpi", time.Now(), fields)(&err)

	if err = checkRequest(req.Tenant, req); err != nil {
		return nil, err
	}
	now := s.env.Clock.Now()

	k, err := db.InTx(ctx, s.uow, func(ctx context.Context, tx db.DBTX) (*domain.KPI, error) {
		kpis := repository.NewSQLiteKPIRepo(tx)
		k, err := domain.NewKPI(req.Props(), s.env.IDs, now)
		if err != nil {
			return nil, err
		}
		_, err = kpis.FindByCode(ctx, k.Code, k.OrganizationID, k.BranchID)
		switch {
		case err == nil:
			return nil, domain.NewInvariantError("a KPI with code %s already exists", k.Code)
		case !domain.IsNotFound(err):
			return nil, err
		}
		if err := kpis.Save(ctx, k); err != nil {
			return nil, err
		}
		return k, nil
	})
	if err != nil {
		return nil, err
	}
	fields["status"] = string(k.Status)
	return readingOf(k), nil
}

func (s *kpiService) Get(ctx context.Context, tenant contract.TenantContext, idOrCode string) (*contract.KPIReading, error) {
	if err := checkRequest(tenant, nil); err != nil {
		return nil, err
	}
	if err := requireID("kpiId", idOrCode); err != nil {
		return nil, err
	}
	k, err := resolve[*domain.KPI](ctx, s.kpis, tenant, idOrCode)
	if err != nil {
		return nil, err
	}
	return readingOf(k), nil
}

func (s *kpiService) List(ctx context.Context, req contract.ListKPIsRequest) (repository.Page[*domain.KPI], error) {
	if err := checkRequest(req.Tenant, req); err != nil {
		return repository.Page[*domain.KPI]{}, err
	}
	return s.kpis.FindMany(ctx, repository.KPIFilter{
		OrganizationID: req.Tenant.OrganizationID,
		BranchID:       req.Tenant.BranchID,
		Status:         req.Status,
		AutoCalculate:  req.AutoCalculate,
		Search:         req.Search,
		Pagination:     repository.Pagination{Page: req.Page, PageSize: req.PageSize},
	})
}

func (s *kpiService) mutate(
	ctx context.Context,
	useCase string,
	tenant contract.TenantContext,
	idOrCode string,
	fn func(k *domain.KPI, now time.Time) (domain.StatusResult, error),
) (out *contract.KPIReading, err error) {
	fields := map[string]any{"kpi": idOrCode}
	defer observe(ctx, s.observer, useCase, time.Now(), fields)(&err)

	if err = checkRequest(tenant, nil); err != nil {
		return nil, err
	}
	if err = requireID("kpiId", idOrCode); err != nil {
		return nil, err
	}
	now := s.env.Clock.Now()

	out, err = db.InTx(ctx, s.uow, func(ctx context.Context, tx db.DBTX) (*contract.KPIReading, error) {
		kpis := repository.NewSQLiteKPIRepo(tx)
		k, err := resolve[*domain.KPI](ctx, kpis, tenant, idOrCode)
		if err != nil {
			return nil, err
		}
		res, err := fn(k, now)
		if err != nil {
			return nil, err
		}
		if err := kpis.Save(ctx, k); err != nil {
			return nil, err
		}
		return &contract.KPIReading{KPI: k, Result: res}, nil
	})
	if err != nil {
		return nil, err
	}
	fields["code"] = out.KPI.Code
	fields["status"] = string(out.Result.Status)
	fields["critical"] = out.Result.Critical
	return out, nil
}

func (s *kpiService) UpdateValue(ctx context.Context, tenant contract.TenantContext, idOrCode string, value float64) (*contract.KPIReading, error) {
	return s.mutate(ctx, "update-kpi-value", tenant, idOrCode, func(k *domain.KPI, now time.Time) (domain.StatusResult, error) {
		return k.UpdateValue(value, now)
	})
}

func (s *kpiService) ChangeTarget(ctx context.Context, tenant contract.TenantContext, idOrCode string, target float64) (*contract.KPIReading, error) {
	return s.mutate(ctx, "change-kpi-target", tenant, idOrCode, func(k *domain.KPI, now time.Time) (domain.StatusResult, error) {
		return k.ChangeTarget(target, now)
	})
}

func (s *kpiService) ChangeThresholds(ctx context.Context, tenant contract.TenantContext, idOrCode string, alert, critical float64) (*contract.KPIReading, error) {
	return s.mutate(ctx, "change-kpi-thresholds", tenant, idOrCode, func(k *domain.KPI, now time.Time) (domain.StatusResult, error) {
		return k.ChangeThresholds(alert, critical, now)
	})
}

func (s *kpiService) Delete(ctx context.Context, tenant contract.TenantContext, idOrCode string) (err error) {
	fields := map[string]any{"kpi": idOrCode}
	defer observe(ctx, s.observer, "delete-kpi", time.Now(), fields)(&err)

	if err = checkRequest(tenant, nil); err != nil {
		return err
	}
	if err = requireID("kpiId", idOrCode); err != nil {
		return err
	}
	now := s.env.Clock.Now()
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		kpis := repository.NewSQLiteKPIRepo(tx)
		k, err := resolve[*domain.KPI](ctx, kpis, tenant, idOrCode)
		if err != nil {
			return err
		}
		return kpis.SoftDelete(ctx, k.ID, tenant.OrganizationID, tenant.BranchID, now)
	})
}

// Sync refreshes auto-calculated KPIs from their data sources. Each KPI is
// read outside any transaction and then saved in its own, so one failing
// source or write never blocks the others. Per-KPI failures are reported in
// the response and logged; only tenant, request or listing errors fail the
// call.
func (s *kpiService) Sync(ctx context.Context, req contract.SyncKPIsRequest) (resp *contract.SyncKPIsResponse, err error) {
	fields := map[string]any{"scope": len(req.Codes)}
	defer observe(ctx, s.observer, "sync-kpis", time.Now(), fields)(&err)

	if err = checkRequest(req.Tenant, req); err != nil {
		return nil, err
	}
	now := s.env.Clock.Now()
	if req.Now != nil {
		now = *req.Now
	}

	resp = &contract.SyncKPIsResponse{GeneratedAt: now}
	targets, missing, err := s.syncTargets(ctx, req)
	if err != nil {
		return nil, err
	}
	resp.Items = append(resp.Items, missing...)

	for _, k := range targets {
		resp.Items = append(resp.Items, s.syncOne(ctx, req.Tenant, k, now))
	}

	resp.Total = len(resp.Items)
	for _, item := range resp.Items {
		switch item.Outcome {
		case contract.SyncUpdated:
			resp.Updated++
		case contract.SyncNoData:
			resp.NoData++
		case contract.SyncError:
			resp.Errors++
		}
	}
	fields["total"] = resp.Total
	fields["updated"] = resp.Updated
	fields["no_data"] = resp.NoData
	fields["errors"] = resp.Errors
	return resp, nil
}

// syncTargets lists the KPIs to refresh. Requested codes that do not resolve
// to an auto-calculated KPI come back as ERROR items.
func (s *kpiService) syncTargets(ctx context.Context, req contract.SyncKPIsRequest) ([]*domain.KPI, []contract.KPISyncItem, error) {
	tenant := req.Tenant
	if len(req.Codes) == 0 {
		kpis, err := s.kpis.ListAutoCalculated(ctx, tenant.OrganizationID, tenant.BranchID)
		if err != nil {
			return nil, nil, fmt.Errorf("listing auto-calculated KPIs: %w", err)
		}
		return kpis, nil, nil
	}

	var (
		targets []*domain.KPI
		missing []contract.KPISyncItem
	)
	for _, code := range req.Codes {
		code = strings.TrimSpace(code)
		k, err := s.kpis.FindByCode(ctx, code, tenant.OrganizationID, tenant.BranchID)
		switch {
		case domain.IsNotFound(err):
			missing = append(missing, contract.KPISyncItem{Code: code, Outcome: contract.SyncError, Message: err.Error()})
		case err != nil:
			return nil, nil, fmt.Errorf("loading KPI %s: %w", code, err)
		case !k.AutoCalculate:
			missing = append(missing, contract.KPISyncItem{
				KPIID:          k.ID,
				Code:           k.Code,
				Outcome:        contract.SyncError,
				PreviousStatus: k.Status,
				Status:         k.Status,
				Message:        "KPI is not auto-calculated",
			})
		default:
			targets = append(targets, k)
		}
	}
	return targets, missing, nil
}

func (s *kpiService) syncOne(ctx context.Context, tenant contract.TenantContext, k *domain.KPI, now time.Time) contract.KPISyncItem {
	item := contract.KPISyncItem{
		KPIID:          k.ID,
		Code:           k.Code,
		PreviousStatus: k.Status,
		Status:         k.Status,
	}
	fail := func(err error) contract.KPISyncItem {
		item.Outcome = contract.SyncError
		item.Message = err.Error()
		s.env.Logger.Warn("kpi sync failed",
			zap.String("kpi", k.Code),
			zap.String("source_module", k.SourceModule),
			zap.Error(err),
		)
		return item
	}

	source, ok := s.sources.Lookup(k.SourceModule)
	if !ok {
		return fail(fmt.Errorf("no data source registered for module %q", k.SourceModule))
	}
	reading, found, err := source.Read(ctx, datasource.Query{
		OrganizationID: tenant.OrganizationID,
		BranchID:       tenant.BranchID,
		Text:           k.SourceQuery,
	})
	if err != nil {
		return fail(fmt.Errorf("reading %s source: %w", k.SourceModule, err))
	}
	if !found {
		item.Outcome = contract.SyncNoData
		item.Message = "source returned no data"
		return item
	}

	res, err := db.InTx(ctx, s.uow, func(ctx context.Context, tx db.DBTX) (domain.StatusResult, error) {
		kpis := repository.NewSQLiteKPIRepo(tx)
		fresh, err := kpis.FindByID(ctx, k.ID, tenant.OrganizationID, tenant.BranchID)
		if err != nil {
			return domain.StatusResult{}, err
		}
		res, err := fresh.RecordReading(reading.Value, reading.At, now)
		if err != nil {
			return domain.StatusResult{}, err
		}
		return res, kpis.Save(ctx, fresh)
	})
	if err != nil {
		return fail(err)
	}

	value := reading.Value
	item.Outcome = contract.SyncUpdated
	item.Value = &value
	item.Status = res.Status
	item.Critical = res.Critical
	return item
}
