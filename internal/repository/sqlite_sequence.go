package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/strategos/internal/db"
)

const (
	actionPlanCodePrefix = "PA"
	ideaCodePrefix       = "IDEA"
)

// codeSource names the table whose existing codes seed a fresh allocator row.
var codeSource = map[string]string{
	actionPlanCodePrefix: "action_plans",
	ideaCodePrefix:       "idea_boxes",
}

// SQLiteSequenceRepo allocates sequence values atomically using the
// code_sequences and follow_up_sequences tables.
type SQLiteSequenceRepo struct {
	db db.DBTX
}

func NewSQLiteSequenceRepo(conn db.DBTX) *SQLiteSequenceRepo {
	return &SQLiteSequenceRepo{db: conn}
}

// NextActionPlanCode returns the next PA-YYYY-NNNN code for the tenant.
func (r *SQLiteSequenceRepo) NextActionPlanCode(ctx context.Context, orgID, branchID string, year int) (string, error) {
	n, err := r.nextCodeValue(ctx, orgID, branchID, actionPlanCodePrefix, year)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%04d", actionPlanCodePrefix, year, n), nil
}

// NextIdeaCode returns the next IDEA-YYYY-NNNNN code for the tenant.
func (r *SQLiteSequenceRepo) NextIdeaCode(ctx context.Context, orgID, branchID string, year int) (string, error) {
	n, err := r.nextCodeValue(ctx, orgID, branchID, ideaCodePrefix, year)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%05d", ideaCodePrefix, year, n), nil
}

func (r *SQLiteSequenceRepo) nextCodeValue(ctx context.Context, orgID, branchID, prefix string, year int) (int, error) {
	if err := requireTenant(orgID, branchID); err != nil {
		return 0, err
	}
	table, ok := codeSource[prefix]
	if !ok {
		return 0, fmt.Errorf("unknown code prefix %q", prefix)
	}

	// Seed from codes already stored so imported rows are never reissued.
	// CAST stops at the first non-digit, so "0007-R1" reads as 7.
	codeStem := fmt.Sprintf("%s-%d-", prefix, year)
	seedQuery := `INSERT OR IGNORE INTO code_sequences (organization_id, branch_id, prefix, year, next_value)
		SELECT ?, ?, ?, ?, COALESCE(MAX(CAST(substr(code, ?) AS INTEGER)), 0) + 1
		FROM ` + table + `
		WHERE organization_id = ? AND branch_id = ? AND code LIKE ?`
	if _, err := r.db.ExecContext(ctx, seedQuery,
		orgID, branchID, prefix, year, len(codeStem)+1,
		orgID, branchID, codeStem+"%",
	); err != nil {
		return 0, fmt.Errorf("seeding %s sequence: %w", prefix, err)
	}

	var next int
	allocQuery := `UPDATE code_sequences
		SET next_value = next_value + 1
		WHERE organization_id = ? AND branch_id = ? AND prefix = ? AND year = ?
		RETURNING next_value - 1`
	if err := r.db.QueryRowContext(ctx, allocQuery, orgID, branchID, prefix, year).Scan(&next); err != nil {
		return 0, fmt.Errorf("allocating next %s code: %w", prefix, err)
	}
	return next, nil
}

// NextFollowUpNumber returns the next 1-based follow-up number for a plan.
// Allocation is atomic and safe under concurrent writes when called inside
// a write transaction.
func (r *SQLiteSequenceRepo) NextFollowUpNumber(ctx context.Context, actionPlanID string) (int, error) {
	seedQuery := `INSERT OR IGNORE INTO follow_up_sequences (action_plan_id, next_number)
		SELECT ?, COALESCE(MAX(follow_up_number), 0) + 1
		FROM action_plan_follow_ups
		WHERE action_plan_id = ?`
	if _, err := r.db.ExecContext(ctx, seedQuery, actionPlanID, actionPlanID); err != nil {
		return 0, fmt.Errorf("seeding follow-up sequence for %s: %w", actionPlanID, err)
	}

	var next int
	allocQuery := `UPDATE follow_up_sequences
		SET next_number = next_number + 1
		WHERE action_plan_id = ?
		RETURNING next_number - 1`
	if err := r.db.QueryRowContext(ctx, allocQuery, actionPlanID).Scan(&next); err != nil {
		return 0, fmt.Errorf("allocating next follow-up number for %s: %w", actionPlanID, err)
	}
	return next, nil
}
