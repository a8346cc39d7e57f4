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

const ideaColumns = `id, organization_id, branch_id, code, title, description,
		source_type, category, submitted_by, department, urgency, importance, status,
		reviewed_by, reviewed_at, review_notes,
		converted_to, converted_entity_id, converted_at,
		estimated_impact, estimated_cost, estimated_benefit,
		created_at, updated_at, deleted_at`

// SQLiteIdeaRepo implements IdeaRepo using a SQLite database.
type SQLiteIdeaRepo struct {
	db db.DBTX
}

func NewSQLiteIdeaRepo(conn db.DBTX) *SQLiteIdeaRepo {
	return &SQLiteIdeaRepo{db: conn}
}

func (r *SQLiteIdeaRepo) FindByID(ctx context.Context, id, orgID, branchID string) (*domain.IdeaBox, error) {
	if err := requireTenant(orgID, branchID); err != nil {
		return nil, err
	}
	query := `SELECT ` + ideaColumns + ` FROM idea_boxes
		WHERE id = ? AND organization_id = ? AND branch_id = ? AND deleted_at IS NULL`
	i, err := r.scanIdea(r.db.QueryRowContext(ctx, query, id, orgID, branchID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("idea", id)
	}
	return i, err
}

func (r *SQLiteIdeaRepo) FindByCode(ctx context.Context, code, orgID, branchID string) (*domain.IdeaBox, error) {
	if err := requireTenant(orgID, branchID); err != nil {
		return nil, err
	}
	query := `SELECT ` + ideaColumns + ` FROM idea_boxes
		WHERE UPPER(code) = UPPER(?) AND organization_id = ? AND branch_id = ? AND deleted_at IS NULL`
	i, err := r.scanIdea(r.db.QueryRowContext(ctx, query, code, orgID, branchID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("idea", code)
	}
	return i, err
}

func (r *SQLiteIdeaRepo) FindMany(ctx context.Context, f IdeaFilter) (Page[*domain.IdeaBox], error) {
	if err := requireTenant(f.OrganizationID, f.BranchID); err != nil {
		return Page[*domain.IdeaBox]{}, err
	}
	pg := f.Pagination.Normalize()

	where := newTenantWhere(f.OrganizationID, f.BranchID)
	if f.Status != "" {
		where.add("status = ?", string(f.Status))
	}
	if f.SourceType != "" {
		where.add("source_type = ?", string(f.SourceType))
	}
	if f.SubmittedBy != "" {
		where.add("submitted_by = ?", f.SubmittedBy)
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		where.add(`(code LIKE ? ESCAPE '\' OR title LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM idea_boxes `+where.String(), where.args...).Scan(&total); err != nil {
		return Page[*domain.IdeaBox]{}, fmt.Errorf("counting ideas: %w", err)
	}

	query := `SELECT ` + ideaColumns + ` FROM idea_boxes ` + where.String() + `
		ORDER BY created_at DESC, code DESC
		LIMIT ? OFFSET ?`
	args := append(append([]any{}, where.args...), pg.PageSize, pg.offset())
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Page[*domain.IdeaBox]{}, fmt.Errorf("listing ideas: %w", err)
	}
	defer rows.Close()

	items := []*domain.IdeaBox{}
	for rows.Next() {
		i, err := r.scanIdea(rows)
		if err != nil {
			return Page[*domain.IdeaBox]{}, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return Page[*domain.IdeaBox]{}, fmt.Errorf("iterating ideas: %w", err)
	}
	return Page[*domain.IdeaBox]{Items: items, Total: total, Page: pg.Page, PageSize: pg.PageSize}, nil
}

func (r *SQLiteIdeaRepo) Save(ctx context.Context, i *domain.IdeaBox) error {
	if err := requireTenant(i.OrganizationID, i.BranchID); err != nil {
		return err
	}
	query := `INSERT INTO idea_boxes (` + ideaColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			category = excluded.category,
			department = excluded.department,
			urgency = excluded.urgency,
			importance = excluded.importance,
			status = excluded.status,
			reviewed_by = excluded.reviewed_by,
			reviewed_at = excluded.reviewed_at,
			review_notes = excluded.review_notes,
			converted_to = excluded.converted_to,
			converted_entity_id = excluded.converted_entity_id,
			converted_at = excluded.converted_at,
			estimated_impact = excluded.estimated_impact,
			estimated_cost = excluded.estimated_cost,
			estimated_benefit = excluded.estimated_benefit,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at
		WHERE idea_boxes.organization_id = excluded.organization_id
			AND idea_boxes.branch_id = excluded.branch_id
			AND idea_boxes.deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query,
		i.ID, i.OrganizationID, i.BranchID, i.Code, i.Title, i.Description,
		string(i.SourceType), i.Category, i.SubmittedBy, i.Department,
		string(i.Urgency), string(i.Importance), string(i.Status),
		i.ReviewedBy, nullableTimeToString(i.ReviewedAt), i.ReviewNotes,
		string(i.ConvertedTo), i.ConvertedEntityID, nullableTimeToString(i.ConvertedAt),
		i.EstimatedImpact, nullableDecimalToValue(i.EstimatedCost), i.EstimatedBenefit,
		formatTime(i.CreatedAt), formatTime(i.UpdatedAt), nullableTimeToString(i.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("saving idea %s: %w", i.Code, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("saving idea %s: %w", i.Code, err)
	} else if n == 0 {
		return domain.NewNotFoundError("idea", i.ID)
	}
	return nil
}

func (r *SQLiteIdeaRepo) SoftDelete(ctx context.Context, id, orgID, branchID string, at time.Time) error {
	if err := requireTenant(orgID, branchID); err != nil {
		return err
	}
	stamp := formatTime(at)
	res, err := r.db.ExecContext(ctx, `UPDATE idea_boxes SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND organization_id = ? AND branch_id = ? AND deleted_at IS NULL`,
		stamp, stamp, id, orgID, branchID)
	if err != nil {
		return fmt.Errorf("deleting idea: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewNotFoundError("idea", id)
	}
	return nil
}

func (r *SQLiteIdeaRepo) scanIdea(row scanner) (*domain.IdeaBox, error) {
	var i domain.IdeaBox
	var sourceType, urgency, importance, status, convertedTo, createdAt, updatedAt string
	var reviewedAt, convertedAt, cost, deletedAt sql.NullString

	err := row.Scan(
		&i.ID, &i.OrganizationID, &i.BranchID, &i.Code, &i.Title, &i.Description,
		&sourceType, &i.Category, &i.SubmittedBy, &i.Department, &urgency, &importance, &status,
		&i.ReviewedBy, &reviewedAt, &i.ReviewNotes,
		&convertedTo, &i.ConvertedEntityID, &convertedAt,
		&i.EstimatedImpact, &cost, &i.EstimatedBenefit,
		&createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning idea: %w", err)
	}

	i.SourceType = domain.IdeaSourceType(sourceType)
	i.Urgency = domain.Level(urgency)
	i.Importance = domain.Level(importance)
	i.Status = domain.IdeaStatus(status)
	i.ConvertedTo = domain.ConversionTarget(convertedTo)
	i.ReviewedAt = parseNullableTime(reviewedAt)
	i.ConvertedAt = parseNullableTime(convertedAt)
	i.DeletedAt = parseNullableTime(deletedAt)

	if i.EstimatedCost, err = parseNullableDecimal(cost, "estimated_cost"); err != nil {
		return nil, err
	}
	if i.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if i.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &i, nil
}
