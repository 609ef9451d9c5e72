package bootstrap_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/entities-sink/ksink/internal/bootstrap"
	"github.com/entities-sink/ksink/internal/planner"
	"github.com/entities-sink/ksink/internal/schema"
	"github.com/entities-sink/ksink/internal/store/memstore"
)

func TestRunSeedsBuiltinEntitiesAndAttributes(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)

	require.NoError(t, bootstrap.Run(ctx, planner.New(), tx, schema.Builtin))
	require.NoError(t, tx.Commit(ctx))

	tx2, err := s.BeginTx(ctx)
	require.NoError(t, err)

	for _, e := range schema.Builtin.Entities {
		ok, err := tx2.Entities().Exists(ctx, e.ID)
		require.NoError(t, err)
		require.Truef(t, ok, "entity %s should exist", e.ID)

		hasType, err := tx2.Entities().HasType(ctx, e.ID, schema.SchemaType)
		require.NoError(t, err)
		require.Truef(t, hasType, "entity %s should be typed SchemaType", e.ID)

		for _, attrID := range e.Attributes {
			linked, err := tx2.Entities().IsAttributeOf(ctx, attrID, e.ID)
			require.NoError(t, err)
			require.Truef(t, linked, "%s should be an attribute of %s", attrID, e.ID)
		}
	}

	for _, a := range schema.Builtin.Attributes {
		ok, err := tx2.Entities().Exists(ctx, a.ID)
		require.NoError(t, err)
		require.Truef(t, ok, "attribute %s should exist", a.ID)

		isAttr, err := tx2.Entities().HasType(ctx, a.ID, schema.Attribute)
		require.NoError(t, err)
		require.Truef(t, isAttr, "attribute %s should be typed Attribute", a.ID)

		if a.ValueType != "" {
			matches, err := tx2.Entities().ValueTypeMatches(ctx, a.ID, a.ValueType)
			require.NoError(t, err)
			require.Truef(t, matches, "attribute %s should carry value type %s", a.ID, a.ValueType)
		}
	}
}

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()

	for i := 0; i < 2; i++ {
		tx, err := s.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, bootstrap.Run(ctx, planner.New(), tx, schema.Builtin))
		require.NoError(t, tx.Commit(ctx))
	}

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	ok, err := tx.Entities().Exists(ctx, schema.SchemaType)
	require.NoError(t, err)
	require.True(t, ok)
}
