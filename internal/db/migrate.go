package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate runs all schema migrations. Every statement is idempotent.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillFollowUpSequences(db); err != nil {
		return fmt.Errorf("backfilling follow-up sequence allocator state: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS action_plans (
		id                    TEXT PRIMARY KEY,
		organization_id       TEXT NOT NULL,
		branch_id             TEXT NOT NULL,
		code                  TEXT NOT NULL,
		what                  TEXT NOT NULL,
		why                   TEXT NOT NULL,
		where_location        TEXT NOT NULL,
		when_start            TEXT NOT NULL,
		when_end              TEXT NOT NULL,
		who                   TEXT NOT NULL,
		who_user_id           TEXT NOT NULL,
		how                   TEXT NOT NULL,
		how_much_amount       TEXT,
		how_much_currency     TEXT NOT NULL DEFAULT '',
		pdca_cycle            TEXT NOT NULL DEFAULT 'PLAN'
		                      CHECK(pdca_cycle IN ('PLAN','DO','CHECK','ACT')),
		completion_percent    INTEGER NOT NULL DEFAULT 0
		                      CHECK(completion_percent BETWEEN 0 AND 100),
		priority              TEXT NOT NULL DEFAULT 'MEDIUM'
		                      CHECK(priority IN ('LOW','MEDIUM','HIGH','CRITICAL')),
		status                TEXT NOT NULL DEFAULT 'DRAFT'
		                      CHECK(status IN ('DRAFT','PENDING','IN_PROGRESS','COMPLETED','CANCELLED','BLOCKED')),
		parent_action_plan_id TEXT REFERENCES action_plans(id),
		reproposition_number  INTEGER NOT NULL DEFAULT 0
		                      CHECK(reproposition_number BETWEEN 0 AND 3),
		reproposition_reason  TEXT NOT NULL DEFAULT '',
		evidence_urls         TEXT NOT NULL DEFAULT '[]',
		next_follow_up_date   TEXT,
		cancellation_reason   TEXT NOT NULL DEFAULT '',
		created_by            TEXT NOT NULL,
		created_at            TEXT NOT NULL,
		updated_at            TEXT NOT NULL,
		deleted_at            TEXT
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_action_plans_code ON action_plans(organization_id, branch_id, code)`,
	`CREATE INDEX IF NOT EXISTS idx_action_plans_tenant_status ON action_plans(organization_id, branch_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_action_plans_parent ON action_plans(parent_action_plan_id)`,

	`CREATE TABLE IF NOT EXISTS action_plan_follow_ups (
		id                   TEXT PRIMARY KEY,
		organization_id      TEXT NOT NULL,
		branch_id            TEXT NOT NULL,
		action_plan_id       TEXT NOT NULL REFERENCES action_plans(id),
		follow_up_number     INTEGER NOT NULL CHECK(follow_up_number > 0),
		gemba_local          TEXT NOT NULL CHECK(trim(gemba_local) != ''),
		gembutsu_observation TEXT NOT NULL CHECK(trim(gembutsu_observation) != ''),
		genjitsu_data        TEXT NOT NULL CHECK(trim(genjitsu_data) != ''),
		execution_status     TEXT NOT NULL
		                     CHECK(execution_status IN ('EXECUTED_OK','EXECUTED_PARTIAL','NOT_EXECUTED','BLOCKED')),
		execution_percent    INTEGER NOT NULL CHECK(execution_percent BETWEEN 0 AND 100),
		problems_observed    TEXT NOT NULL DEFAULT '',
		problem_severity     TEXT NOT NULL DEFAULT ''
		                     CHECK(problem_severity IN ('','LOW','MEDIUM','HIGH','CRITICAL')),
		requires_new_plan    INTEGER NOT NULL DEFAULT 0,
		new_plan_description TEXT NOT NULL DEFAULT '',
		new_plan_assigned_to TEXT NOT NULL DEFAULT '',
		child_action_plan_id TEXT REFERENCES action_plans(id),
		evidence_urls        TEXT NOT NULL DEFAULT '[]',
		verified_by          TEXT NOT NULL,
		verified_at          TEXT NOT NULL,
		created_at           TEXT NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_follow_ups_plan_number ON action_plan_follow_ups(action_plan_id, follow_up_number)`,
	`CREATE INDEX IF NOT EXISTS idx_follow_ups_tenant ON action_plan_follow_ups(organization_id, branch_id)`,

	`CREATE TABLE IF NOT EXISTS follow_up_sequences (
		action_plan_id TEXT PRIMARY KEY REFERENCES action_plans(id),
		next_number    INTEGER NOT NULL CHECK(next_number > 0)
	)`,

	`CREATE TABLE IF NOT EXISTS code_sequences (
		organization_id TEXT NOT NULL,
		branch_id       TEXT NOT NULL,
		prefix          TEXT NOT NULL,
		year            INTEGER NOT NULL,
		next_value      INTEGER NOT NULL CHECK(next_value > 0),
		PRIMARY KEY (organization_id, branch_id, prefix, year)
	)`,

	`CREATE TABLE IF NOT EXISTS idea_boxes (
		id                  TEXT PRIMARY KEY,
		organization_id     TEXT NOT NULL,
		branch_id           TEXT NOT NULL,
		code                TEXT NOT NULL,
		title               TEXT NOT NULL,
		description         TEXT NOT NULL,
		source_type         TEXT NOT NULL
		                    CHECK(source_type IN ('SUGGESTION','COMPLAINT','OBSERVATION','BENCHMARK','AUDIT','CLIENT_FEEDBACK')),
		category            TEXT NOT NULL DEFAULT '',
		submitted_by        TEXT NOT NULL,
		department          TEXT NOT NULL DEFAULT '',
		urgency             TEXT NOT NULL DEFAULT 'MEDIUM' CHECK(urgency IN ('LOW','MEDIUM','HIGH')),
		importance          TEXT NOT NULL DEFAULT 'MEDIUM' CHECK(importance IN ('LOW','MEDIUM','HIGH')),
		status              TEXT NOT NULL DEFAULT 'SUBMITTED'
		                    CHECK(status IN ('SUBMITTED','UNDER_REVIEW','APPROVED','REJECTED','CONVERTED','ARCHIVED')),
		reviewed_by         TEXT NOT NULL DEFAULT '',
		reviewed_at         TEXT,
		review_notes        TEXT NOT NULL DEFAULT '',
		converted_to        TEXT NOT NULL DEFAULT ''
		                    CHECK(converted_to IN ('','ACTION_PLAN','PROJECT','GOAL')),
		converted_entity_id TEXT NOT NULL DEFAULT '',
		converted_at        TEXT,
		estimated_impact    TEXT NOT NULL DEFAULT '',
		estimated_cost      TEXT,
		estimated_benefit   TEXT NOT NULL DEFAULT '',
		created_at          TEXT NOT NULL,
		updated_at          TEXT NOT NULL,
		deleted_at          TEXT
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_idea_boxes_code ON idea_boxes(organization_id, branch_id, code)`,
	`CREATE INDEX IF NOT EXISTS idx_idea_boxes_tenant_status ON idea_boxes(organization_id, branch_id, status)`,

	`CREATE TABLE IF NOT EXISTS kpis (
		id                  TEXT PRIMARY KEY,
		organization_id     TEXT NOT NULL,
		branch_id           TEXT NOT NULL,
		code                TEXT NOT NULL,
		name                TEXT NOT NULL,
		description         TEXT NOT NULL DEFAULT '',
		unit                TEXT NOT NULL DEFAULT '',
		polarity            TEXT NOT NULL CHECK(polarity IN ('UP','DOWN')),
		frequency           TEXT NOT NULL
		                    CHECK(frequency IN ('DAILY','WEEKLY','MONTHLY','QUARTERLY','YEARLY')),
		target_value        REAL NOT NULL,
		current_value       REAL NOT NULL DEFAULT 0,
		baseline_value      REAL,
		alert_threshold     REAL NOT NULL DEFAULT 0,
		critical_threshold  REAL NOT NULL DEFAULT 0,
		auto_calculate      INTEGER NOT NULL DEFAULT 0,
		source_module       TEXT NOT NULL DEFAULT '',
		source_query        TEXT NOT NULL DEFAULT '',
		status              TEXT NOT NULL CHECK(status IN ('GREEN','YELLOW','RED')),
		last_calculated_at  TEXT,
		responsible_user_id TEXT NOT NULL DEFAULT '',
		created_by          TEXT NOT NULL,
		created_at          TEXT NOT NULL,
		updated_at          TEXT NOT NULL,
		deleted_at          TEXT
	)`,

	// A soft-deleted KPI frees its code for reuse.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_kpis_code ON kpis(organization_id, branch_id, code) WHERE deleted_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS idx_kpis_auto ON kpis(organization_id, branch_id, auto_calculate)`,
}

// migrateBackfillFollowUpSequences raises next_number for every plan that
// already has follow-ups so the allocator never hands out a used number.
func migrateBackfillFollowUpSequences(db *sql.DB) error {
	ctx := context.Background()

	query := `INSERT INTO follow_up_sequences (action_plan_id, next_number)
		SELECT action_plan_id, MAX(follow_up_number) + 1
		FROM action_plan_follow_ups
		WHERE true
		GROUP BY action_plan_id
		ON CONFLICT(action_plan_id) DO UPDATE
		SET next_number = MAX(follow_up_sequences.next_number, excluded.next_number)`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("upserting follow-up sequence rows: %w", err)
	}
	return nil
}
