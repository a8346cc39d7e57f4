package datasource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SQLSource evaluates a read-only query against the application database.
// The first column of the first row is the reading; no rows or NULL means
// no data. Queries may reference the tenant as :org and :branch.
//
// Every read runs in a transaction that is rolled back, and a query that
// changed any row is rejected with ErrNotReadOnly.
type SQLSource struct {
	db *sql.DB
}

func NewSQLSource(database *sql.DB) *SQLSource {
	return &SQLSource{db: database}
}

// ErrNotReadOnly rejects anything other than a single SELECT or WITH query.
var ErrNotReadOnly = errors.New("only a single SELECT or WITH query is allowed")

func (s *SQLSource) Read(ctx context.Context, q Query) (Reading, bool, error) {
	text, err := readOnlyQuery(q.Text)
	if err != nil {
		return Reading{}, false, err
	}

	var args []any
	if strings.Contains(text, ":org") {
		args = append(args, sql.Named("org", q.OrganizationID))
	}
	if strings.Contains(text, ":branch") {
		args = append(args, sql.Named("branch", q.BranchID))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Reading{}, false, fmt.Errorf("beginning kpi query: %w", err)
	}
	defer tx.Rollback()

	before, err := totalChanges(ctx, tx)
	if err != nil {
		return Reading{}, false, err
	}
	var value sql.NullFloat64
	err = tx.QueryRowContext(ctx, text, args...).Scan(&value)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Reading{}, false, fmt.Errorf("evaluating kpi query: %w", err)
	}
	after, cerr := totalChanges(ctx, tx)
	if cerr != nil {
		return Reading{}, false, cerr
	}
	if after != before {
		return Reading{}, false, ErrNotReadOnly
	}
	if errors.Is(err, sql.ErrNoRows) || !value.Valid {
		return Reading{}, false, nil
	}
	return Reading{Value: value.Float64}, true, nil
}

// totalChanges counts the rows modified on the transaction's connection.
func totalChanges(ctx context.Context, tx *sql.Tx) (int64, error) {
	var n int64
	if err := tx.QueryRowContext(ctx, "SELECT total_changes()").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting changes: %w", err)
	}
	return n, nil
}

func readOnlyQuery(text string) (string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, ";")
	if strings.Contains(text, ";") {
		return "", ErrNotReadOnly
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", ErrNotReadOnly
	}
	switch strings.ToUpper(fields[0]) {
	case "SELECT", "WITH":
		return text, nil
	}
	return "", ErrNotReadOnly
}
