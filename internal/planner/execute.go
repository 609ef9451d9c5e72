package planner

import (
	"context"
	"fmt"

	"github.com/entities-sink/ksink/internal/sinkaction"
	"github.com/entities-sink/ksink/internal/store"
	"github.com/entities-sink/ksink/internal/value"
)

// dispatch applies a single SinkAction's effect to the store. It is the
// planner's job alone — spec.md §4.5 keeps the adapter itself free of any
// cross-row logic, so every branch here is a direct, single-purpose call.
func dispatch(ctx context.Context, tx store.Tx, a sinkaction.SinkAction, spaceQueries bool) error {
	switch v := a.(type) {
	case sinkaction.GeneralEntityCreated:
		return tx.Entities().Create(ctx, v.EntityID, v.Space)

	case sinkaction.GeneralTripleAdded:
		val, err := rebuildValue(v.ValueTag, v.ValueID, v.ValuePayload)
		if err != nil {
			return err
		}
		return tx.Triples().Create(ctx, v.EntityID, v.AttributeID, val, v.Space, v.Author)

	case sinkaction.GeneralTripleDeleted:
		val, err := rebuildValue(v.ValueTag, v.ValueID, v.ValuePayload)
		if err != nil {
			return err
		}
		return tx.Triples().Delete(ctx, v.EntityID, v.AttributeID, val, v.Space, v.Author)

	case sinkaction.EntityNameAdded:
		return tx.Entities().UpsertName(ctx, v.EntityID, v.Name, v.Space)

	case sinkaction.EntityDescriptionAdded:
		return tx.Entities().UpsertDescription(ctx, v.EntityID, v.Description, v.Space)

	case sinkaction.SpaceSubspaceAdded:
		return tx.Spaces().AddSubspace(ctx, v.ParentSpace, v.ChildSpace)

	case sinkaction.SpaceSubspaceRemoved:
		return tx.Spaces().RemoveSubspace(ctx, v.ParentSpace, v.ChildSpace)

	case sinkaction.TableSpaceCreated:
		// A space discovered via a Space-attribute triple is never the
		// root space (spec.md §3): the root flag is only ever set by the
		// deploy/deploy-global entry point's own pre-seeding, before any
		// block-sourced action runs.
		if err := tx.Spaces().Create(ctx, v.SpaceID, "", v.Space, false); err != nil {
			return err
		}
		if !spaceQueries {
			return nil
		}
		return tx.Spaces().CreateSchema(ctx, v.SpaceID)

	case sinkaction.TableTypeAdded:
		return tx.Entities().AddType(ctx, v.EntityID, v.TypeID, v.Space, spaceQueries)

	case sinkaction.TableValueTypeAdded:
		return tx.Entities().UpsertValueType(ctx, v.AttributeID, v.ValueTypeID, v.Space)

	case sinkaction.TableAttributeAdded:
		if err := tx.Entities().AddAttribute(ctx, v.AttributeID, v.EntityID); err != nil {
			return err
		}
		if !spaceQueries {
			return nil
		}
		return tx.Entities().AddRelation(ctx, v.EntityID, v.AttributeID, v.Space)

	default:
		return fmt.Errorf("planner: unrecognized sink action %T", a)
	}
}

func rebuildValue(tag value.Tag, id, payload string) (value.Value, error) {
	if tag == value.TagEntity {
		return value.Entity(id), nil
	}
	return value.New(tag, id, payload)
}
