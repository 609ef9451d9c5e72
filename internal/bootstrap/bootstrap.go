// Package bootstrap seeds a fresh store with the meta-schema registry
// (C7): it walks schema.Builtin, synthesizes the action batch spec.md
// §4.7 describes, and runs it through the same lowering/planning path
// as any other block.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/entities-sink/ksink/internal/action"
	"github.com/entities-sink/ksink/internal/lowering"
	"github.com/entities-sink/ksink/internal/planner"
	"github.com/entities-sink/ksink/internal/schema"
	"github.com/entities-sink/ksink/internal/sinkaction"
	"github.com/entities-sink/ksink/internal/store"
	"github.com/entities-sink/ksink/internal/value"
)

// RootSpace is the space every built-in entity/attribute is declared
// in; it is its own root, per spec.md §3's root-space flag.
const RootSpace = "root"

const bootstrapAuthor = "bootstrap"

// Run seeds tx's store with reg's entities and attributes, then
// executes the resulting batch through p with space_queries=true
// (spec.md §4.7). Run is idempotent: replaying it against an
// already-bootstrapped store is a no-op, since every downstream store
// operation is do-nothing-on-conflict.
func Run(ctx context.Context, p *planner.Planner, tx store.Tx, reg *schema.Registry) error {
	actions := synthesize(reg)

	batch := make([]sinkaction.SinkAction, 0, len(actions)*2)
	for _, a := range actions {
		batch = append(batch, lowering.Lower(a)...)
	}

	if err := p.Execute(ctx, tx, batch, true); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	return nil
}

func synthesize(reg *schema.Registry) []action.Action {
	var out []action.Action

	for _, e := range reg.Entities {
		out = append(out, createEntity(e.ID))
		out = append(out, createTriple(e.ID, schema.TypeAttr, value.Entity(schema.SchemaType)))
		out = append(out, createTriple(e.ID, schema.NameAttr, textValue(e.ID+"#name", e.Name)))
		for _, attrID := range e.Attributes {
			out = append(out, createTriple(e.ID, schema.AttributeAttr, value.Entity(attrID)))
		}
	}

	for _, a := range reg.Attributes {
		out = append(out, createEntity(a.ID))
		out = append(out, createTriple(a.ID, schema.NameAttr, textValue(a.ID+"#name", a.Name)))
		out = append(out, createTriple(a.ID, schema.TypeAttr, value.Entity(schema.Attribute)))
		if a.ValueType != "" {
			out = append(out, createTriple(a.ID, schema.ValueTypeAttr, value.Entity(a.ValueType)))
		}
	}

	return out
}

func createEntity(id string) action.Action {
	return action.Action{Kind: action.KindCreateEntity, EntityID: id, Space: RootSpace, Author: bootstrapAuthor}
}

func createTriple(entityID, attributeID string, v value.Value) action.Action {
	return action.Action{
		Kind:        action.KindCreateTriple,
		EntityID:    entityID,
		AttributeID: attributeID,
		Value:       v,
		Space:       RootSpace,
		Author:      bootstrapAuthor,
	}
}

// textValue builds a deterministic string-tagged value. The id only
// needs to be unique per (entity, attribute) pair within the
// bootstrap batch; triple identity is keyed on (entity, attribute,
// value id), never on the value id alone.
func textValue(id, text string) value.Value {
	v, err := value.New(value.TagString, id, text)
	if err != nil {
		// Every call site passes a non-empty id; New only rejects an
		// empty one or an unknown tag, neither of which applies here.
		panic(fmt.Sprintf("bootstrap: invalid text value %q: %v", id, err))
	}
	return v
}
