package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/strategos/internal/db"
	"github.com/alexanderramin/strategos/internal/domain"
)

const followUpColumns = `id, organization_id, branch_id, action_plan_id, follow_up_number,
		gemba_local, gembutsu_observation, genjitsu_data,
		execution_status, execution_percent, problems_observed, problem_severity,
		requires_new_plan, new_plan_description, new_plan_assigned_to, child_action_plan_id,
		evidence_urls, verified_by, verified_at, created_at`

// SQLiteFollowUpRepo implements FollowUpRepo using a SQLite database.
type SQLiteFollowUpRepo struct {
	db db.DBTX
}

func NewSQLiteFollowUpRepo(conn db.DBTX) *SQLiteFollowUpRepo {
	return &SQLiteFollowUpRepo{db: conn}
}

func (r *SQLiteFollowUpRepo) Create(ctx context.Context, f *domain.FollowUp) error {
	if err := requireTenant(f.OrganizationID, f.BranchID); err != nil {
		return err
	}
	evidence, err := encodeStrings(f.EvidenceURLs)
	if err != nil {
		return err
	}
	query := `INSERT INTO action_plan_follow_ups (` + followUpColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		f.ID, f.OrganizationID, f.BranchID, f.ActionPlanID, f.FollowUpNumber,
		f.GembaLocal, f.GembutsuObservation, f.GenjitsuData,
		string(f.ExecutionStatus), f.ExecutionPercent, f.ProblemsObserved, string(f.ProblemSeverity),
		boolToInt(f.RequiresNewPlan), f.NewPlanDescription, f.NewPlanAssignedTo,
		nullableStringToValue(f.ChildActionPlanID),
		evidence, f.VerifiedBy, formatTime(f.VerifiedAt), formatTime(f.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting follow-up %d for plan %s: %w", f.FollowUpNumber, f.ActionPlanID, err)
	}
	return nil
}

func (r *SQLiteFollowUpRepo) FindByID(ctx context.Context, id, orgID, branchID string) (*domain.FollowUp, error) {
	if err := requireTenant(orgID, branchID); err != nil {
		return nil, err
	}
	query := `SELECT ` + followUpColumns + `
		FROM action_plan_follow_ups
		WHERE id = ? AND organization_id = ? AND branch_id = ?`
	f, err := r.scanFollowUp(r.db.QueryRowContext(ctx, query, id, orgID, branchID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("follow-up", id)
	}
	return f, err
}

// ListByActionPlan returns the plan's follow-ups in number order.
func (r *SQLiteFollowUpRepo) ListByActionPlan(ctx context.Context, actionPlanID, orgID, branchID string) ([]*domain.FollowUp, error) {
	if err := requireTenant(orgID, branchID); err != nil {
		return nil, err
	}
	query := `SELECT ` + followUpColumns + `
		FROM action_plan_follow_ups
		WHERE action_plan_id = ? AND organization_id = ? AND branch_id = ?
		ORDER BY follow_up_number`
	rows, err := r.db.QueryContext(ctx, query, actionPlanID, orgID, branchID)
	if err != nil {
		return nil, fmt.Errorf("listing follow-ups: %w", err)
	}
	defer rows.Close()

	var out []*domain.FollowUp
	for rows.Next() {
		f, err := r.scanFollowUp(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating follow-ups: %w", err)
	}
	return out, nil
}

func (r *SQLiteFollowUpRepo) scanFollowUp(row scanner) (*domain.FollowUp, error) {
	var f domain.FollowUp
	var status, severity, evidence, verifiedAt, createdAt string
	var requiresNewPlan int
	var childID sql.NullString

	err := row.Scan(
		&f.ID, &f.OrganizationID, &f.BranchID, &f.ActionPlanID, &f.FollowUpNumber,
		&f.GembaLocal, &f.GembutsuObservation, &f.GenjitsuData,
		&status, &f.ExecutionPercent, &f.ProblemsObserved, &severity,
		&requiresNewPlan, &f.NewPlanDescription, &f.NewPlanAssignedTo, &childID,
		&evidence, &f.VerifiedBy, &verifiedAt, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning follow-up: %w", err)
	}

	f.ExecutionStatus = domain.ExecutionStatus(status)
	f.ProblemSeverity = domain.Severity(severity)
	f.RequiresNewPlan = intToBool(requiresNewPlan)
	f.ChildActionPlanID = parseNullableString(childID)

	if f.EvidenceURLs, err = decodeStrings(evidence, "evidence_urls"); err != nil {
		return nil, err
	}
	if f.VerifiedAt, err = parseTime(verifiedAt, "verified_at"); err != nil {
		return nil, err
	}
	if f.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &f, nil
}
