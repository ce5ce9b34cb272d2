package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"
)

//go:embed schema.sql
var schemaSQL string

//go:embed search_index.sql
var searchIndexSQL string

// column is one additive column a migration guarantees.
type column struct {
	table, name, decl string
}

// migration is a forward-only schema step. Each step only adds columns and
// skips any that already exist, so it is safe against files created by any
// earlier release, including ones that predate schema_migrations.
type migration struct {
	version int
	name    string
	columns []column
}

// migrations is the linear history. Append only; never renumber.
var migrations = []migration{
	{1, "patient_profile_columns", []column{
		{"patients", "photo_url", "TEXT"},
		{"patients", "ai_summary", "TEXT"},
		{"patients", "preferred_pharmacy", "TEXT"},
		{"patients", "insurance_provider", "TEXT"},
		{"patients", "insurance_policy_number", "TEXT"},
		{"patients", "insurance_group_number", "TEXT"},
	}},
	{2, "lab_abnormal_flag", []column{
		{"labs", "is_abnormal", "INTEGER"},
	}},
	{3, "todo_diagnosis_link", []column{
		{"todos", "diagnosis_id", "INTEGER REFERENCES diagnoses(id) ON DELETE SET NULL"},
	}},
	{4, "settings_zen_mode", []column{
		{"user_settings", "zen_mode_default", "INTEGER NOT NULL DEFAULT 0"},
	}},
	{5, "list_column_width", []column{
		{"patient_list_columns", "width", "INTEGER"},
	}},
}

// currentSchemaVersion is the version a fully migrated store reports.
var currentSchemaVersion = migrations[len(migrations)-1].version

// migrate brings db to the current schema:
//  1. base tables (CREATE TABLE IF NOT EXISTS)
//  2. pending column migrations, each recorded in schema_migrations
//  3. secondary indexes, shadow tables and sync triggers
//  4. a full shadow rebuild
func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	applied, err := appliedVersions(ctx, s.db)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		if err := s.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("migrate to v%d (%s): %w", m.version, m.name, err)
		}
		s.log.Info().Int("version", m.version).Str("name", m.name).Msg("applied migration")
	}

	if _, err := s.db.ExecContext(ctx, searchIndexSQL); err != nil {
		return fmt.Errorf("create search index: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := s.rebuild(ctx, tx); err != nil {
		return fmt.Errorf("rebuild search index: %w", err)
	}
	return tx.Commit()
}

func (s *Store) applyMigration(ctx context.Context, m migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, c := range m.columns {
		ok, err := hasColumn(ctx, tx, c.table, c.name)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", c.table, c.name, c.decl)
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("add %s.%s: %w", c.table, c.name, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
		m.version, m.name, s.now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return tx.Commit()
}

func appliedVersions(ctx context.Context, q querier) (map[int]bool, error) {
	rows, err := q.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan schema_migrations: %w", err)
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// hasColumn reports whether table has a column called name.
func hasColumn(ctx context.Context, q querier, table, name string) (bool, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("table_info %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid     int
			colName string
			colType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &colName, &colType, &notNull, &dflt, &pk); err != nil {
			return false, fmt.Errorf("scan table_info %s: %w", table, err)
		}
		if colName == name {
			return true, nil
		}
	}
	return false, rows.Err()
}

func schemaVersion(ctx context.Context, q querier) (int, error) {
	var v int
	err := q.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}
