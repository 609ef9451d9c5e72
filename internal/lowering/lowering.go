// Package lowering implements action lowering (C4): the pure function
// that maps a decoded action triple onto the schema-level SinkAction(s)
// the planner consumes. Lowering never touches the store; it is driven
// entirely by the shape of the incoming action and the closed attribute
// vocabulary declared by the meta-schema registry.
package lowering

import (
	"github.com/entities-sink/ksink/internal/action"
	"github.com/entities-sink/ksink/internal/schema"
	"github.com/entities-sink/ksink/internal/sinkaction"
	"github.com/entities-sink/ksink/internal/value"
)

// Lower maps a single decoded action to the SinkAction(s) it produces.
// The default (General) action is always first; guard-matched variants,
// if any, follow. Lower is pure: the same input always yields the same
// output, and the result always contains exactly one General action.
func Lower(a action.Action) []sinkaction.SinkAction {
	prov := sinkaction.Provenance{Space: a.Space, Author: a.Author}

	out := make([]sinkaction.SinkAction, 0, 2)
	out = append(out, defaultAction(a, prov))

	if guarded := guardedAction(a, prov); guarded != nil {
		out = append(out, guarded)
	}
	return out
}

func defaultAction(a action.Action, prov sinkaction.Provenance) sinkaction.SinkAction {
	switch a.Kind {
	case action.KindCreateEntity:
		return sinkaction.GeneralEntityCreated{Provenance: prov, EntityID: a.EntityID}
	case action.KindCreateTriple:
		return sinkaction.GeneralTripleAdded{
			Provenance:   prov,
			EntityID:     a.EntityID,
			AttributeID:  a.AttributeID,
			ValueID:      a.Value.ID(),
			ValueTag:     a.Value.Tag(),
			ValuePayload: a.Value.ValueAsString(),
		}
	case action.KindDeleteTriple:
		return sinkaction.GeneralTripleDeleted{
			Provenance:   prov,
			EntityID:     a.EntityID,
			AttributeID:  a.AttributeID,
			ValueID:      a.Value.ID(),
			ValueTag:     a.Value.Tag(),
			ValuePayload: a.Value.ValueAsString(),
		}
	default:
		// action.Document's decoder rejects unknown kinds before this is
		// ever reached; Lower has nothing sensible to return here.
		return nil
	}
}

// guardedAction evaluates the ordered guard list in spec order, returning
// the first (and only) match, or nil if none applies. Only CreateTriple
// and DeleteTriple actions carry an attribute/value pair to guard on.
func guardedAction(a action.Action, prov sinkaction.Provenance) sinkaction.SinkAction {
	if a.Kind != action.KindCreateTriple && a.Kind != action.KindDeleteTriple {
		return nil
	}
	v := a.Value

	switch a.AttributeID {
	case schema.TypeAttr:
		if v.IsEntity() {
			return sinkaction.TableTypeAdded{Provenance: prov, EntityID: a.EntityID, TypeID: v.ID()}
		}
	case schema.SpaceAttr:
		if v.Tag() == value.TagString {
			return sinkaction.TableSpaceCreated{Provenance: prov, EntityID: a.EntityID, SpaceID: v.ValueAsString()}
		}
	case schema.AttributeAttr:
		if v.IsEntity() {
			return sinkaction.TableAttributeAdded{Provenance: prov, EntityID: a.EntityID, AttributeID: v.ID()}
		}
	case schema.NameAttr:
		if v.Tag() == value.TagString {
			return sinkaction.EntityNameAdded{Provenance: prov, EntityID: a.EntityID, Name: v.ValueAsString()}
		}
	case schema.DescAttr:
		if v.Tag() == value.TagString {
			return sinkaction.EntityDescriptionAdded{Provenance: prov, EntityID: a.EntityID, Description: v.ValueAsString()}
		}
	case schema.ValueTypeAttr:
		if v.IsEntity() {
			return sinkaction.TableValueTypeAdded{Provenance: prov, AttributeID: a.EntityID, ValueTypeID: v.ID()}
		}
	case schema.SubspaceAttr:
		if v.IsEntity() {
			if a.Kind == action.KindDeleteTriple {
				return sinkaction.SpaceSubspaceRemoved{Provenance: prov, ParentSpace: a.EntityID, ChildSpace: v.ID()}
			}
			return sinkaction.SpaceSubspaceAdded{Provenance: prov, ParentSpace: a.EntityID, ChildSpace: v.ID()}
		}
	}
	return nil
}
