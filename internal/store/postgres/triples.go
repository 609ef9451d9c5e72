package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/entities-sink/ksink/internal/store"
	"github.com/entities-sink/ksink/internal/value"
)

type tripleOps struct {
	tx *sql.Tx
}

var _ store.TripleOps = tripleOps{}

func (t tripleOps) Create(ctx context.Context, entityID, attributeID string, v value.Value, space, author string) error {
	_, span := startSpan(ctx, "postgres.Triples.Create")
	defer span.End()
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO triples (id, entity_id, attribute_id, value_id, value_tag, value, space, author, deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE)
		ON CONFLICT (entity_id, attribute_id, value_id) DO UPDATE SET deleted = FALSE
	`, uuid.NewString(), entityID, attributeID, v.ID(), string(v.Tag()), v.ValueAsString(), space, author)
	return err
}

func (t tripleOps) Delete(ctx context.Context, entityID, attributeID string, v value.Value, space, author string) error {
	_, span := startSpan(ctx, "postgres.Triples.Delete")
	defer span.End()
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO triples (id, entity_id, attribute_id, value_id, value_tag, value, space, author, deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
		ON CONFLICT (entity_id, attribute_id, value_id) DO UPDATE SET deleted = TRUE, author = EXCLUDED.author
	`, uuid.NewString(), entityID, attributeID, v.ID(), string(v.Tag()), v.ValueAsString(), space, author)
	return err
}

func (t tripleOps) Exists(ctx context.Context, entityID, attributeID, valueID string) (bool, error) {
	var exists bool
	err := t.tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM triples
			WHERE entity_id = $1 AND attribute_id = $2 AND value_id = $3 AND NOT deleted
		)
	`, entityID, attributeID, valueID).Scan(&exists)
	return exists, err
}
