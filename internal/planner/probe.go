package planner

import (
	"context"
	"fmt"

	"github.com/entities-sink/ksink/internal/sinkaction"
	"github.com/entities-sink/ksink/internal/store"
)

// probeDB checks a canonical dependency form against already-committed
// store state (spec.md §4.6's check_if_exists). It recognizes the five
// canonical forms the dependency vocabulary reduces to: Exists, IsType,
// IsAttribute, IsSpace and ValueTypeMatches.
func probeDB(ctx context.Context, tx store.Tx, dep sinkaction.SinkAction) (bool, error) {
	switch d := dep.(type) {
	case sinkaction.GeneralEntityCreated:
		return tx.Entities().Exists(ctx, d.EntityID)
	case sinkaction.TableTypeAdded:
		return tx.Entities().HasType(ctx, d.EntityID, d.TypeID)
	case sinkaction.TableSpaceCreated:
		return tx.Spaces().Exists(ctx, d.SpaceID)
	case sinkaction.TableValueTypeAdded:
		return tx.Entities().ValueTypeMatches(ctx, d.AttributeID, d.ValueTypeID)
	default:
		return false, fmt.Errorf("planner: unrecognized dependency canonical form %T", dep)
	}
}
