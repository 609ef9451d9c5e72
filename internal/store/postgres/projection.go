package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/entities-sink/ksink/internal/schema"
)

// quoteIdent renders name as a safely-quoted Postgres identifier. Entity
// and space ids come from untrusted on-chain data, so table/column names
// derived from them are never interpolated unquoted — doubling embedded
// quotes is sufficient to make a quoted identifier injection-safe.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func spaceSchemaName(space string) string { return "space_" + space }
func typeTableName(typeID string) string  { return "type_" + typeID }

// createSpaceSchema creates the per-space schema (namespace) a type's
// projection tables live under, if it doesn't already exist.
func createSpaceSchema(ctx context.Context, tx *sql.Tx, space string) error {
	_, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", quoteIdent(spaceSchemaName(space))))
	return err
}

// ensureTypeTable creates the per-space, per-type projection table
// (id, entity_id) spec.md §6 describes, if it doesn't already exist.
func ensureTypeTable(ctx context.Context, tx *sql.Tx, space, typeID string) error {
	if err := createSpaceSchema(ctx, tx, space); err != nil {
		return err
	}
	stmt := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s.%s (id UUID PRIMARY KEY DEFAULT gen_random_uuid(), entity_id TEXT NOT NULL UNIQUE)`,
		quoteIdent(spaceSchemaName(space)), quoteIdent(typeTableName(typeID)),
	)
	_, err := tx.ExecContext(ctx, stmt)
	return err
}

// addColumnIfNotExists adds a column to the named table if absent,
// mirroring the teacher's information_schema-checked migration helper.
func addColumnIfNotExists(ctx context.Context, tx *sql.Tx, schemaName, table, column, colType string) error {
	var count int
	err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2 AND column_name = $3
	`, schemaName, table, column).Scan(&count)
	if err != nil {
		return fmt.Errorf("check column %s.%s.%s: %w", schemaName, table, column, err)
	}
	if count > 0 {
		return nil
	}
	stmt := fmt.Sprintf("ALTER TABLE %s.%s ADD COLUMN %s %s", quoteIdent(schemaName), quoteIdent(table), quoteIdent(column), colType)
	_, err = tx.ExecContext(ctx, stmt)
	return err
}

func attrColumnName(attributeID string) string { return "attr_" + attributeID }

// sqlColumnType maps an attribute's declared value-type entity id
// (schema.Number, schema.Text, ... or a custom type entity) to the
// column type its attr_<id> projection column uses. Number gets an
// integer column; the built-in scalar value types get plain text;
// anything else (Relation, or a custom entity/relation type) names an
// entity and gets a text column with a foreign key back to entities.
func sqlColumnType(valueTypeID string) string {
	switch valueTypeID {
	case schema.Number:
		return "BIGINT"
	case schema.Text, schema.Image, schema.Date, schema.URL, "":
		return "TEXT"
	default:
		return "TEXT REFERENCES entities(id)"
	}
}
