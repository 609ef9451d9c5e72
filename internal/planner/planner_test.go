package planner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/entities-sink/ksink/internal/planner"
	"github.com/entities-sink/ksink/internal/schema"
	"github.com/entities-sink/ksink/internal/sinkaction"
	"github.com/entities-sink/ksink/internal/sinkerr"
	"github.com/entities-sink/ksink/internal/store/memstore"
)

// TestBootstrapLikeBatchAllDepsPresent runs a self-contained batch: the
// entity is created in phase 1, and the self-typing TypeAdded, which
// depends on its own effect, is settled by the phase-2 fallback.
func TestBootstrapLikeBatchAllDepsPresent(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)

	batch := []sinkaction.SinkAction{
		sinkaction.GeneralEntityCreated{EntityID: schema.SchemaType},
		sinkaction.TableTypeAdded{EntityID: schema.SchemaType, TypeID: schema.SchemaType},
	}
	require.NoError(t, planner.New().Execute(ctx, tx, batch, true))
	require.NoError(t, tx.Commit(ctx))

	tx2, _ := s.BeginTx(ctx)
	ok, err := tx2.Entities().HasType(ctx, schema.SchemaType, schema.SchemaType)
	require.NoError(t, err)
	require.True(t, ok)
}

// TestOutOfOrderAttributeBeforeType mirrors the out-of-order attribute
// scenario: an AttributeAdded-equivalent batch where neither the entity
// nor the attribute exist yet. The fallback pass must synthesize both.
func TestOutOfOrderAttributeBeforeType(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)

	batch := []sinkaction.SinkAction{
		sinkaction.TableAttributeAdded{EntityID: "E", AttributeID: "A"},
	}
	require.NoError(t, planner.New().Execute(ctx, tx, batch, true))
	require.NoError(t, tx.Commit(ctx))

	tx2, _ := s.BeginTx(ctx)
	eOK, _ := tx2.Entities().Exists(ctx, "E")
	aOK, _ := tx2.Entities().Exists(ctx, "A")
	isAttr, _ := tx2.Entities().HasType(ctx, "A", schema.Attribute)
	linked, _ := tx2.Entities().IsAttributeOf(ctx, "A", "E")
	require.True(t, eOK)
	require.True(t, aOK)
	require.True(t, isAttr)
	require.True(t, linked)
}

// TestTypeAddedPointingAtUnknownType mirrors scenario (c): TypeAdded{X, T}
// where T != SchemaType and neither exists.
func TestTypeAddedPointingAtUnknownType(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)

	batch := []sinkaction.SinkAction{
		sinkaction.TableTypeAdded{EntityID: "X", TypeID: "T"},
	}
	require.NoError(t, planner.New().Execute(ctx, tx, batch, true))
	require.NoError(t, tx.Commit(ctx))

	tx2, _ := s.BeginTx(ctx)
	xHasT, _ := tx2.Entities().HasType(ctx, "X", "T")
	tHasSchema, _ := tx2.Entities().HasType(ctx, "T", schema.SchemaType)
	require.True(t, xHasT)
	require.True(t, tHasSchema)
}

// TestDuplicateTripleAcrossBatchesIsIdempotent checks that replaying the
// same triple-creating batch twice doesn't error or duplicate state.
func TestDuplicateTripleAcrossBatchesIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()

	batch := []sinkaction.SinkAction{
		sinkaction.GeneralEntityCreated{EntityID: "E1"},
		sinkaction.GeneralEntityCreated{EntityID: "A1"},
		sinkaction.GeneralTripleAdded{EntityID: "E1", AttributeID: "A1", ValueID: "V1", ValueTag: "string", ValuePayload: "hi"},
	}

	for i := 0; i < 2; i++ {
		tx, err := s.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, planner.New().Execute(ctx, tx, batch, true))
		require.NoError(t, tx.Commit(ctx))
	}

	tx, _ := s.BeginTx(ctx)
	ok, err := tx.Triples().Exists(ctx, "E1", "A1", "V1")
	require.NoError(t, err)
	require.True(t, ok)
}

// TestSubspaceCannotBeSynthesizedByFallback checks that a subspace edge
// between two nonexistent spaces fails closed with UnresolvedDependencies,
// since Space::Subspace{Added,Removed} reports HasFallback() == false.
func TestSubspaceCannotBeSynthesizedByFallback(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)

	batch := []sinkaction.SinkAction{
		sinkaction.SpaceSubspaceAdded{ParentSpace: "P", ChildSpace: "C"},
	}
	err = planner.New().Execute(ctx, tx, batch, true)
	require.Error(t, err)
	require.True(t, errors.Is(err, sinkerr.ErrUnresolvedDependencies))
}

// TestSubspaceResolvesWhenSpacesAlreadyExist is the positive counterpart.
func TestSubspaceResolvesWhenSpacesAlreadyExist(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Spaces().Create(ctx, "P", "0xaddr", "P", false))
	require.NoError(t, tx.Spaces().Create(ctx, "C", "0xaddr2", "P", false))
	require.NoError(t, tx.Commit(ctx))

	tx2, err := s.BeginTx(ctx)
	require.NoError(t, err)
	batch := []sinkaction.SinkAction{
		sinkaction.SpaceSubspaceAdded{ParentSpace: "P", ChildSpace: "C"},
	}
	require.NoError(t, planner.New().Execute(ctx, tx2, batch, true))
}
