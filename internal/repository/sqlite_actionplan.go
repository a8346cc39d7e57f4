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

// actionPlanColumns is the canonical SELECT column list for action_plans.
const actionPlanColumns = `id, organization_id, branch_id, code,
		what, why, where_location, when_start, when_end, who, who_user_id, how,
		how_much_amount, how_much_currency,
		pdca_cycle, completion_percent, priority, status,
		parent_action_plan_id, reproposition_number, reproposition_reason,
		evidence_urls, next_follow_up_date, cancellation_reason,
		created_by, created_at, updated_at, deleted_at`

// SQLiteActionPlanRepo implements ActionPlanRepo using a SQLite database.
type SQLiteActionPlanRepo struct {
	db db.DBTX
}

func NewSQLiteActionPlanRepo(conn db.DBTX) *SQLiteActionPlanRepo {
	return &SQLiteActionPlanRepo{db: conn}
}

func (r *SQLiteActionPlanRepo) FindByID(ctx context.Context, id, orgID, branchID string) (*domain.ActionPlan, error) {
	if err := requireTenant(orgID, branchID); err != nil {
		return nil, err
	}
	query := `SELECT ` + actionPlanColumns + `
		FROM action_plans
		WHERE id = ? AND organization_id = ? AND branch_id = ? AND deleted_at IS NULL`
	p, err := r.scanActionPlan(r.db.QueryRowContext(ctx, query, id, orgID, branchID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("action plan", id)
	}
	return p, err
}

func (r *SQLiteActionPlanRepo) FindByCode(ctx context.Context, code, orgID, branchID string) (*domain.ActionPlan, error) {
	if err := requireTenant(orgID, branchID); err != nil {
		return nil, err
	}
	query := `SELECT ` + actionPlanColumns + `
		FROM action_plans
		WHERE UPPER(code) = UPPER(?) AND organization_id = ? AND branch_id = ? AND deleted_at IS NULL`
	p, err := r.scanActionPlan(r.db.QueryRowContext(ctx, query, code, orgID, branchID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("action plan", code)
	}
	return p, err
}

// ChildCode returns the code of the plan reproposed from parentID, or ""
// when there is none. Soft-deleted children count, since their code stays
// reserved.
func (r *SQLiteActionPlanRepo) ChildCode(ctx context.Context, parentID, orgID, branchID string) (string, error) {
	if err := requireTenant(orgID, branchID); err != nil {
		return "", err
	}
	var code string
	err := r.db.QueryRowContext(ctx, `SELECT code FROM action_plans
		WHERE parent_action_plan_id = ? AND organization_id = ? AND branch_id = ?
		ORDER BY reproposition_number LIMIT 1`, parentID, orgID, branchID).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("looking up child of action plan %s: %w", parentID, err)
	}
	return code, nil
}

func (r *SQLiteActionPlanRepo) FindMany(ctx context.Context, f ActionPlanFilter) (Page[*domain.ActionPlan], error) {
	if err := requireTenant(f.OrganizationID, f.BranchID); err != nil {
		return Page[*domain.ActionPlan]{}, err
	}
	pg := f.Pagination.Normalize()

	where := newTenantWhere(f.OrganizationID, f.BranchID)
	if f.Status != "" {
		where.add("status = ?", string(f.Status))
	}
	if f.Phase != "" {
		where.add("pdca_cycle = ?", string(f.Phase))
	}
	if f.WhoUserID != "" {
		where.add("who_user_id = ?", f.WhoUserID)
	}
	if f.ParentID != "" {
		where.add("parent_action_plan_id = ?", f.ParentID)
	}
	if f.OverdueAt != nil {
		where.add("when_end < ? AND status != 'COMPLETED'", formatTime(*f.OverdueAt))
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		where.add(`(code LIKE ? ESCAPE '\' OR what LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM action_plans ` + where.String()
	if err := r.db.QueryRowContext(ctx, countQuery, where.args...).Scan(&total); err != nil {
		return Page[*domain.ActionPlan]{}, fmt.Errorf("counting action plans: %w", err)
	}

	query := `SELECT ` + actionPlanColumns + ` FROM action_plans ` + where.String() + `
		ORDER BY when_end, code
		LIMIT ? OFFSET ?`
	args := append(append([]any{}, where.args...), pg.PageSize, pg.offset())
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Page[*domain.ActionPlan]{}, fmt.Errorf("listing action plans: %w", err)
	}
	defer rows.Close()

	items := []*domain.ActionPlan{}
	for rows.Next() {
		p, err := r.scanActionPlan(rows)
		if err != nil {
			return Page[*domain.ActionPlan]{}, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return Page[*domain.ActionPlan]{}, fmt.Errorf("iterating action plans: %w", err)
	}
	return Page[*domain.ActionPlan]{Items: items, Total: total, Page: pg.Page, PageSize: pg.PageSize}, nil
}

// Save inserts the plan or updates the stored row. An existing row that
// belongs to another tenant, or was soft-deleted, is reported as not found.
func (r *SQLiteActionPlanRepo) Save(ctx context.Context, p *domain.ActionPlan) error {
	if err := requireTenant(p.OrganizationID, p.BranchID); err != nil {
		return err
	}
	evidence, err := encodeStrings(p.EvidenceURLs)
	if err != nil {
		return err
	}

	query := `INSERT INTO action_plans (` + actionPlanColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			what = excluded.what,
			why = excluded.why,
			where_location = excluded.where_location,
			when_start = excluded.when_start,
			when_end = excluded.when_end,
			who = excluded.who,
			who_user_id = excluded.who_user_id,
			how = excluded.how,
			how_much_amount = excluded.how_much_amount,
			how_much_currency = excluded.how_much_currency,
			pdca_cycle = excluded.pdca_cycle,
			completion_percent = excluded.completion_percent,
			priority = excluded.priority,
			status = excluded.status,
			evidence_urls = excluded.evidence_urls,
			next_follow_up_date = excluded.next_follow_up_date,
			cancellation_reason = excluded.cancellation_reason,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at
		WHERE action_plans.organization_id = excluded.organization_id
			AND action_plans.branch_id = excluded.branch_id
			AND action_plans.deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query,
		p.ID, p.OrganizationID, p.BranchID, p.Code,
		p.What, p.Why, p.WhereLocation,
		formatTime(p.WhenStart), formatTime(p.WhenEnd),
		p.Who, p.WhoUserID, p.How,
		nullableDecimalToValue(p.HowMuchAmount), p.HowMuchCurrency,
		string(p.PDCACycle), p.CompletionPercent, string(p.Priority), string(p.Status),
		nullableStringToValue(p.ParentActionPlanID), p.RepropositionNumber, p.RepropositionReason,
		evidence, nullableTimeToString(p.NextFollowUpDate), p.CancellationReason,
		p.CreatedBy, formatTime(p.CreatedAt), formatTime(p.UpdatedAt), nullableTimeToString(p.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("saving action plan %s: %w", p.Code, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("saving action plan %s: %w", p.Code, err)
	}
	if n == 0 {
		return domain.NewNotFoundError("action plan", p.ID)
	}
	return nil
}

func (r *SQLiteActionPlanRepo) SoftDelete(ctx context.Context, id, orgID, branchID string, at time.Time) error {
	if err := requireTenant(orgID, branchID); err != nil {
		return err
	}
	query := `UPDATE action_plans SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND organization_id = ? AND branch_id = ? AND deleted_at IS NULL`
	stamp := formatTime(at)
	res, err := r.db.ExecContext(ctx, query, stamp, stamp, id, orgID, branchID)
	if err != nil {
		return fmt.Errorf("deleting action plan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewNotFoundError("action plan", id)
	}
	return nil
}

func (r *SQLiteActionPlanRepo) scanActionPlan(row scanner) (*domain.ActionPlan, error) {
	var p domain.ActionPlan
	var pdca, priority, status string
	var whenStart, whenEnd, evidence, createdAt, updatedAt string
	var amount, parentID, nextFollowUp, deletedAt sql.NullString

	err := row.Scan(
		&p.ID, &p.OrganizationID, &p.BranchID, &p.Code,
		&p.What, &p.Why, &p.WhereLocation, &whenStart, &whenEnd, &p.Who, &p.WhoUserID, &p.How,
		&amount, &p.HowMuchCurrency,
		&pdca, &p.CompletionPercent, &priority, &status,
		&parentID, &p.RepropositionNumber, &p.RepropositionReason,
		&evidence, &nextFollowUp, &p.CancellationReason,
		&p.CreatedBy, &createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning action plan: %w", err)
	}

	p.PDCACycle = domain.PDCAPhase(pdca)
	p.Priority = domain.Priority(priority)
	p.Status = domain.ActionPlanStatus(status)
	p.ParentActionPlanID = parseNullableString(parentID)
	p.NextFollowUpDate = parseNullableTime(nextFollowUp)
	p.DeletedAt = parseNullableTime(deletedAt)

	if p.HowMuchAmount, err = parseNullableDecimal(amount, "how_much_amount"); err != nil {
		return nil, err
	}
	if p.EvidenceURLs, err = decodeStrings(evidence, "evidence_urls"); err != nil {
		return nil, err
	}
	if p.WhenStart, err = parseTime(whenStart, "when_start"); err != nil {
		return nil, err
	}
	if p.WhenEnd, err = parseTime(whenEnd, "when_end"); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &p, nil
}
