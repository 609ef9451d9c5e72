package sinkaction_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/entities-sink/ksink/internal/sinkaction"
	"github.com/entities-sink/ksink/internal/value"
)

func TestAsDepBlanksProvenance(t *testing.T) {
	a := sinkaction.GeneralEntityCreated{
		Provenance: sinkaction.Provenance{Space: "S1", Author: "0xauthor"},
		EntityID:   "E1",
	}
	require.Equal(t, sinkaction.GeneralEntityCreated{EntityID: "E1"}, a.AsDep())
}

func TestTableSpaceCreatedCanonicalFormDropsEntity(t *testing.T) {
	a := sinkaction.TableSpaceCreated{EntityID: "E1", SpaceID: "SP1"}
	b := sinkaction.TableSpaceCreated{EntityID: "E2", SpaceID: "SP1"}
	require.Equal(t, a.AsDep(), b.AsDep())
}

func TestTableTypeAddedDependenciesIncludeSelfType(t *testing.T) {
	a := sinkaction.TableTypeAdded{EntityID: "X", TypeID: "T"}
	deps := a.Dependencies()
	require.Contains(t, deps, sinkaction.GeneralEntityCreated{EntityID: "X"})
	require.Contains(t, deps, sinkaction.GeneralEntityCreated{EntityID: "T"})
	require.Contains(t, deps, sinkaction.TableTypeAdded{EntityID: "T", TypeID: sinkaction.SchemaTypeID})
}

func TestTableTypeAddedFallbackIsMinimal(t *testing.T) {
	a := sinkaction.TableTypeAdded{EntityID: "X", TypeID: "T"}
	fb := a.Fallback()
	require.Len(t, fb, 3)
	require.Equal(t, sinkaction.TableTypeAdded{EntityID: "T", TypeID: sinkaction.SchemaTypeID}, fb[2])
}

func TestTableAttributeAddedDependsOnIsAttribute(t *testing.T) {
	a := sinkaction.TableAttributeAdded{EntityID: "E", AttributeID: "A"}
	deps := a.Dependencies()
	require.Contains(t, deps, sinkaction.TableTypeAdded{EntityID: "A", TypeID: sinkaction.AttributeTypeID})
}

func TestGeneralTripleAddedRequiresEntityValueOnlyWhenEntityTagged(t *testing.T) {
	stringValued := sinkaction.GeneralTripleAdded{EntityID: "E", AttributeID: "A", ValueID: "V", ValueTag: value.TagString}
	require.Len(t, stringValued.Dependencies(), 2)

	entityValued := sinkaction.GeneralTripleAdded{EntityID: "E", AttributeID: "A", ValueID: "V", ValueTag: value.TagEntity}
	require.Len(t, entityValued.Dependencies(), 3)
}

func TestSpaceSubspaceAddedHasNoFallback(t *testing.T) {
	a := sinkaction.SpaceSubspaceAdded{ParentSpace: "P", ChildSpace: "C"}
	require.False(t, a.HasFallback())
	require.Empty(t, a.Fallback())
}

func TestPriorityOrdersCategoriesGeneralFirst(t *testing.T) {
	g := sinkaction.GeneralEntityCreated{EntityID: "E"}
	e := sinkaction.EntityNameAdded{EntityID: "E", Name: "n"}
	sp := sinkaction.SpaceSubspaceAdded{ParentSpace: "P", ChildSpace: "C"}
	tbl := sinkaction.TableTypeAdded{EntityID: "E", TypeID: "T"}

	require.Less(t, g.Priority(), e.Priority())
	require.Less(t, e.Priority(), sp.Priority())
	require.Less(t, sp.Priority(), tbl.Priority())
}

func TestTablePriorityOrdersSpaceTypeValueTypeAttribute(t *testing.T) {
	sc := sinkaction.TableSpaceCreated{EntityID: "E", SpaceID: "S"}
	ta := sinkaction.TableTypeAdded{EntityID: "E", TypeID: "T"}
	vt := sinkaction.TableValueTypeAdded{AttributeID: "A", ValueTypeID: "V"}
	aa := sinkaction.TableAttributeAdded{EntityID: "E", AttributeID: "A"}

	require.Less(t, sc.Priority(), ta.Priority())
	require.Less(t, ta.Priority(), vt.Priority())
	require.Less(t, vt.Priority(), aa.Priority())
}
