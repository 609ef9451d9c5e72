package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// migration is a single idempotent schema step, applied in order. Each
// step is safe to re-run because its DDL uses CREATE TABLE IF NOT EXISTS.
type migration struct {
	name string
	fn   func(context.Context, *sql.DB) error
}

var migrations = []migration{
	{"core_tables", migrateCoreTables},
	{"cursor_table", migrateCursorTable},
	{"bookkeeping_tables", migrateBookkeepingTables},
}

// RunMigrations applies every registered migration in order.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	for _, m := range migrations {
		if err := m.fn(ctx, db); err != nil {
			return fmt.Errorf("migration %s: %w", m.name, err)
		}
	}
	return nil
}

func migrateCoreTables(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS entities (
			id    TEXT PRIMARY KEY,
			space TEXT NOT NULL,
			name  TEXT,
			description TEXT,
			value_type TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS entity_types (
			entity_id TEXT NOT NULL REFERENCES entities(id),
			type_id   TEXT NOT NULL REFERENCES entities(id),
			PRIMARY KEY (entity_id, type_id)
		)`,
		`CREATE TABLE IF NOT EXISTS entity_attributes (
			attribute_id TEXT NOT NULL REFERENCES entities(id),
			attribute_of TEXT NOT NULL REFERENCES entities(id),
			PRIMARY KEY (attribute_id, attribute_of)
		)`,
		`CREATE TABLE IF NOT EXISTS triples (
			id           UUID PRIMARY KEY,
			entity_id    TEXT NOT NULL,
			attribute_id TEXT NOT NULL,
			value_id     TEXT NOT NULL,
			value_tag    TEXT NOT NULL,
			value        TEXT,
			space        TEXT NOT NULL,
			author       TEXT NOT NULL,
			deleted      BOOLEAN NOT NULL DEFAULT FALSE,
			UNIQUE (entity_id, attribute_id, value_id)
		)`,
		`CREATE TABLE IF NOT EXISTS spaces (
			id            TEXT PRIMARY KEY,
			address       TEXT NOT NULL,
			created_in    TEXT NOT NULL,
			is_root_space BOOLEAN NOT NULL DEFAULT FALSE,
			cover_url     TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS subspaces (
			parent_space TEXT NOT NULL REFERENCES spaces(id),
			child_space  TEXT NOT NULL REFERENCES spaces(id),
			PRIMARY KEY (parent_space, child_space)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func migrateCursorTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS cursors (
			id           SMALLINT PRIMARY KEY DEFAULT 0,
			cursor_token TEXT NOT NULL,
			block_number BIGINT NOT NULL,
			CHECK (id = 0)
		)
	`)
	return err
}

// migrateBookkeepingTables declares the proposals/versions/accounts
// bookkeeping tables the original sink's SeaORM migration also creates.
// No Go code in this sink writes to them (governance/versioning is out
// of scope, spec.md §1 Non-goals); they exist so the schema matches the
// full table list and a future governance component has somewhere to
// land without another migration.
func migrateBookkeepingTables(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS log_entries (
			id              UUID PRIMARY KEY,
			created_at_block TEXT NOT NULL,
			uri             TEXT NOT NULL,
			created_by      TEXT NOT NULL,
			space           TEXT NOT NULL,
			mime_type       TEXT,
			decoded         TEXT,
			json            TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS proposals (
			id                TEXT PRIMARY KEY,
			space             TEXT NOT NULL,
			name              TEXT,
			description       TEXT,
			created_at        BIGINT NOT NULL,
			created_at_block  TEXT NOT NULL,
			created_by        TEXT,
			status            TEXT NOT NULL,
			proposed_versions TEXT[]
		)`,
		`CREATE TABLE IF NOT EXISTS proposed_versions (
			id               TEXT PRIMARY KEY,
			name             TEXT,
			description      TEXT,
			created_at       BIGINT NOT NULL,
			created_at_block TEXT NOT NULL,
			created_by       TEXT NOT NULL,
			entity           TEXT NOT NULL REFERENCES entities(id),
			actions          TEXT[]
		)`,
		`CREATE TABLE IF NOT EXISTS actions (
			id           UUID PRIMARY KEY,
			action_type  TEXT NOT NULL,
			entity       TEXT NOT NULL,
			attribute    TEXT,
			value_type   TEXT,
			value_id     TEXT,
			number_value BIGINT,
			string_value TEXT,
			entity_value TEXT,
			array_value  TEXT[]
		)`,
		`CREATE TABLE IF NOT EXISTS versions (
			id               TEXT PRIMARY KEY,
			name             TEXT,
			description      TEXT,
			created_at       BIGINT NOT NULL,
			created_at_block TEXT NOT NULL,
			created_by       TEXT NOT NULL,
			proposed_version TEXT NOT NULL,
			actions          TEXT[]
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
