package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/strategos/internal/db"
	"github.com/alexanderramin/strategos/internal/domain"
)

const kpiColumns = `id, organization_id, branch_id, code, name, description, unit,
		polarity, frequency, target_value, current_value, baseline_value,
		alert_threshold, critical_threshold, auto_calculate, source_module, source_query,
		status, last_calculated_at, responsible_user_id,
		created_by, created_at, updated_at, deleted_at`

// SQLiteKPIRepo implements KPIRepo using a SQLite database.
type SQLiteKPIRepo struct {
	db db.DBTX
}

func NewSQLiteKPIRepo(conn db.DBTX) *SQLiteKPIRepo {
	return &SQLiteKPIRepo{db: conn}
}

func (r *SQLiteKPIRepo) FindByID(ctx context.Context, id, orgID, branchID string) (*domain.KPI, error) {
	if err := requireTenant(orgID, branchID); err != nil {
		return nil, err
	}
	query := `SELECT ` + kpiColumns + ` FROM kpis
		WHERE id = ? AND organization_id = ? AND branch_id = ? AND deleted_at IS NULL`
	k, err := r.scanKPI(r.db.QueryRowContext(ctx, query, id, orgID, branchID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("kpi", id)
	}
	return k, err
}

func (r *SQLiteKPIRepo) FindByCode(ctx context.Context, code, orgID, branchID string) (*domain.KPI, error) {
	if err := requireTenant(orgID, branchID); err != nil {
		return nil, err
	}
	query := `SELECT ` + kpiColumns + ` FROM kpis
		WHERE UPPER(code) = UPPER(?) AND organization_id = ? AND branch_id = ? AND deleted_at IS NULL`
	k, err := r.scanKPI(r.db.QueryRowContext(ctx, query, code, orgID, branchID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("kpi", code)
	}
	return k, err
}

func (r *SQLiteKPIRepo) FindMany(ctx context.Context, f KPIFilter) (Page[*domain.KPI], error) {
	if err := requireTenant(f.OrganizationID, f.BranchID); err != nil {
		return Page[*domain.KPI]{}, err
	}
	pg := f.Pagination.Normalize()

	where := newTenantWhere(f.OrganizationID, f.BranchID)
	if f.Status != "" {
		where.add("status = ?", string(f.Status))
	}
	if f.AutoCalculate != nil {
		where.add("auto_calculate = ?", boolToInt(*f.AutoCalculate))
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		where.add(`(code LIKE ? ESCAPE '\' OR name LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM kpis `+where.String(), where.args...).Scan(&total); err != nil {
		return Page[*domain.KPI]{}, fmt.Errorf("counting kpis: %w", err)
	}

	query := `SELECT ` + kpiColumns + ` FROM kpis ` + where.String() + `
		ORDER BY code
		LIMIT ? OFFSET ?`
	args := append(append([]any{}, where.args...), pg.PageSize, pg.offset())
	items, err := r.queryKPIs(ctx, query, args...)
	if err != nil {
		return Page[*domain.KPI]{}, err
	}
	return Page[*domain.KPI]{Items: items, Total: total, Page: pg.Page, PageSize: pg.PageSize}, nil
}

// ListAutoCalculated returns every live KPI fed by a data source, in code order.
func (r *SQLiteKPIRepo) ListAutoCalculated(ctx context.Context, orgID, branchID string) ([]*domain.KPI, error) {
	if err := requireTenant(orgID, branchID); err != nil {
		return nil, err
	}
	query := `SELECT ` + kpiColumns + ` FROM kpis
		WHERE organization_id = ? AND branch_id = ? AND deleted_at IS NULL AND auto_calculate = 1
		ORDER BY code`
	return r.queryKPIs(ctx, query, orgID, branchID)
}

func (r *SQLiteKPIRepo) queryKPIs(ctx context.Context, query string, args ...any) ([]*domain.KPI, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing kpis: %w", err)
	}
	defer rows.Close()

	items := []*domain.KPI{}
	for rows.Next() {
		k, err := r.scanKPI(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating kpis: %w", err)
	}
	return items, nil
}

func (r *SQLiteKPIRepo) Save(ctx context.Context, k *domain.KPI) error {
	if err := requireTenant(k.OrganizationID, k.BranchID); err != nil {
		return err
	}
	query := `INSERT INTO kpis (` + kpiColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			unit = excluded.unit,
			polarity = excluded.polarity,
			frequency = excluded.frequency,
			target_value = excluded.target_value,
			current_value = excluded.current_value,
			baseline_value = excluded.baseline_value,
			alert_threshold = excluded.alert_threshold,
			critical_threshold = excluded.critical_threshold,
			auto_calculate = excluded.auto_calculate,
			source_module = excluded.source_module,
			source_query = excluded.source_query,
			status = excluded.status,
			last_calculated_at = excluded.last_calculated_at,
			responsible_user_id = excluded.responsible_user_id,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at
		WHERE kpis.organization_id = excluded.organization_id
			AND kpis.branch_id = excluded.branch_id
			AND kpis.deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query,
		k.ID, k.OrganizationID, k.BranchID, k.Code, k.Name, k.Description, k.Unit,
		string(k.Polarity), string(k.Frequency), k.TargetValue, k.CurrentValue, nullableFloatToValue(k.BaselineValue),
		k.AlertThreshold, k.CriticalThreshold, boolToInt(k.AutoCalculate), k.SourceModule, k.SourceQuery,
		string(k.Status), nullableTimeToString(k.LastCalculatedAt), k.ResponsibleUserID,
		k.CreatedBy, formatTime(k.CreatedAt), formatTime(k.UpdatedAt), nullableTimeToString(k.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("saving kpi %s: %w", k.Code, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("saving kpi %s: %w", k.Code, err)
	} else if n == 0 {
		return domain.NewNotFoundError("kpi", k.ID)
	}
	return nil
}

func (r *SQLiteKPIRepo) SoftDelete(ctx context.Context, id, orgID, branchID string, at time.Time) error {
	if err := requireTenant(orgID, branchID); err != nil {
		return err
	}
	stamp := formatTime(at)
	res, err := r.db.ExecContext(ctx, `UPDATE kpis SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND organization_id = ? AND branch_id = ? AND deleted_at IS NULL`,
		stamp, stamp, id, orgID, branchID)
	if err != nil {
		return fmt.Errorf("deleting kpi: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewNotFoundError("kpi", id)
	}
	return nil
}

func (r *SQLiteKPIRepo) scanKPI(row scanner) (*domain.KPI, error) {
	var k domain.KPI
	var polarity, frequency, status, createdAt, updatedAt string
	var baseline sql.NullFloat64
	var autoCalc int
	var lastCalc, deletedAt sql.NullString

	err := row.Scan(
		&k.ID, &k.OrganizationID, &k.BranchID, &k.Code, &k.Name, &k.Description, &k.Unit,
		&polarity, &frequency, &k.TargetValue, &k.CurrentValue, &baseline,
		&k.AlertThreshold, &k.CriticalThreshold, &autoCalc, &k.SourceModule, &k.SourceQuery,
		&status, &lastCalc, &k.ResponsibleUserID,
		&k.CreatedBy, &createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning kpi: %w", err)
	}

	k.Polarity = domain.Polarity(polarity)
	k.Frequency = domain.Frequency(frequency)
	k.Status = domain.KPIStatus(status)
	k.AutoCalculate = intToBool(autoCalc)
	k.BaselineValue = parseNullableFloat(baseline)
	k.LastCalculatedAt = parseNullableTime(lastCalc)
	k.DeletedAt = parseNullableTime(deletedAt)

	if k.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if k.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &k, nil
}
