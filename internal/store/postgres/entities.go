package postgres

import (
	"context"
	"database/sql"

	"github.com/entities-sink/ksink/internal/store"
)

type entityOps struct {
	tx *sql.Tx
}

var _ store.EntityOps = entityOps{}

func (e entityOps) Create(ctx context.Context, id, space string) error {
	_, span := startSpan(ctx, "postgres.Entities.Create")
	defer span.End()
	_, err := e.tx.ExecContext(ctx,
		`INSERT INTO entities (id, space) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`, id, space)
	return err
}

func (e entityOps) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := e.tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM entities WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (e entityOps) UpsertName(ctx context.Context, id, name, space string) error {
	_, err := e.tx.ExecContext(ctx, `
		INSERT INTO entities (id, space, name) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
	`, id, space, name)
	return err
}

func (e entityOps) UpsertDescription(ctx context.Context, id, description, space string) error {
	_, err := e.tx.ExecContext(ctx, `
		INSERT INTO entities (id, space, description) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET description = EXCLUDED.description
	`, id, space, description)
	return err
}

func (e entityOps) UpsertValueType(ctx context.Context, id, valueTypeID, space string) error {
	_, err := e.tx.ExecContext(ctx, `
		INSERT INTO entities (id, space, value_type) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET value_type = EXCLUDED.value_type
	`, id, space, valueTypeID)
	return err
}

func (e entityOps) ValueTypeMatches(ctx context.Context, id, valueTypeID string) (bool, error) {
	var matches bool
	err := e.tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM entities WHERE id = $1 AND value_type = $2)`, id, valueTypeID,
	).Scan(&matches)
	return matches, err
}

func (e entityOps) AddType(ctx context.Context, entityID, typeID, space string, projectToSpaceSchema bool) error {
	_, span := startSpan(ctx, "postgres.Entities.AddType")
	defer span.End()

	if _, err := e.tx.ExecContext(ctx,
		`INSERT INTO entity_types (entity_id, type_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		entityID, typeID); err != nil {
		return err
	}
	if !projectToSpaceSchema {
		return nil
	}
	if err := ensureTypeTable(ctx, e.tx, space, typeID); err != nil {
		return err
	}
	_, err := e.tx.ExecContext(ctx, `
		INSERT INTO `+quoteIdent(spaceSchemaName(space))+`.`+quoteIdent(typeTableName(typeID))+` (entity_id)
		VALUES ($1) ON CONFLICT (entity_id) DO NOTHING
	`, entityID)
	return err
}

func (e entityOps) HasType(ctx context.Context, entityID, typeID string) (bool, error) {
	var has bool
	err := e.tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM entity_types WHERE entity_id = $1 AND type_id = $2)`, entityID, typeID,
	).Scan(&has)
	return has, err
}

func (e entityOps) AddRelation(ctx context.Context, parentEntityID, attributeID, space string) error {
	var valueTypeID sql.NullString
	err := e.tx.QueryRowContext(ctx, `SELECT value_type FROM entities WHERE id = $1`, attributeID).Scan(&valueTypeID)
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	colType := sqlColumnType(valueTypeID.String)
	return addColumnIfNotExists(ctx, e.tx, spaceSchemaName(space), typeTableName(parentEntityID), attrColumnName(attributeID), colType)
}

func (e entityOps) AddAttribute(ctx context.Context, attributeID, typeEntityID string) error {
	_, err := e.tx.ExecContext(ctx,
		`INSERT INTO entity_attributes (attribute_id, attribute_of) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		attributeID, typeEntityID)
	return err
}

func (e entityOps) IsAttributeOf(ctx context.Context, attributeID, typeEntityID string) (bool, error) {
	var is bool
	err := e.tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM entity_attributes WHERE attribute_id = $1 AND attribute_of = $2)`,
		attributeID, typeEntityID,
	).Scan(&is)
	return is, err
}
