// Package store declares the adapter interface (C5): thin transactional
// operations over entities, triples, spaces and the schema projection.
// Concrete backends live in internal/store/postgres (production) and
// internal/store/memstore (tests). The adapter never does cross-row
// consistency checks — spec.md §4.5 reserves that for the planner.
package store

import (
	"context"

	"github.com/entities-sink/ksink/internal/cursor"
	"github.com/entities-sink/ksink/internal/value"
)

// Store is the top-level handle a process opens once at startup.
type Store interface {
	// BeginTx opens a transaction scoped to one block (or, during
	// bootstrap, one synthesized batch).
	BeginTx(ctx context.Context) (Tx, error)
	// Cursor returns the checkpoint store, backed by the same connection
	// but never enlisted in a block's transaction (spec.md §4.9).
	Cursor() cursor.Store
	Close() error
}

// Tx groups the entity/triple/space operations available within one
// transaction, plus the probes the planner uses to check dependencies
// against already-committed state.
type Tx interface {
	Entities() EntityOps
	Triples() TripleOps
	Spaces() SpaceOps
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// EntityOps covers entities.* and the entity_types / entity_attributes
// schema-projection operations (spec.md §4.5).
type EntityOps interface {
	Create(ctx context.Context, id, space string) error
	Exists(ctx context.Context, id string) (bool, error)
	UpsertName(ctx context.Context, id, name, space string) error
	UpsertDescription(ctx context.Context, id, description, space string) error
	UpsertValueType(ctx context.Context, id, valueTypeID, space string) error
	// ValueTypeMatches reports whether id's recorded value type equals
	// valueTypeID — the probe behind the ValueTypeMatches dependency.
	ValueTypeMatches(ctx context.Context, id, valueTypeID string) (bool, error)
	// AddType inserts the entity_types(entity_id, type_id) link. When
	// projectToSpaceSchema is set, it also adds a row to the type's
	// per-space projection table (spec.md §4.5, §6).
	AddType(ctx context.Context, entityID, typeID, space string, projectToSpaceSchema bool) error
	// HasType is the probe behind the IsType/IsAttribute dependencies.
	HasType(ctx context.Context, entityID, typeID string) (bool, error)
	// AddRelation extends the parent type's per-space projection table
	// with a column for attributeID.
	AddRelation(ctx context.Context, parentEntityID, attributeID, space string) error
	// AddAttribute records that attributeID is usable as an attribute of
	// the type typeEntityID (entity_attributes).
	AddAttribute(ctx context.Context, attributeID, typeEntityID string) error
	// IsAttributeOf reads back an entity_attributes link. The planner's
	// own IsAttribute dependency resolves through HasType against
	// Attribute instead (probeDB), so this is a read accessor for
	// callers outside lowering — tooling and tests confirming
	// AddAttribute's effect landed, not a planner probe.
	IsAttributeOf(ctx context.Context, attributeID, typeEntityID string) (bool, error)
}

// TripleOps covers triples.* (spec.md §4.5). Create and Delete are
// idempotent on (entity_id, attribute_id, value_id).
type TripleOps interface {
	Create(ctx context.Context, entityID, attributeID string, v value.Value, space, author string) error
	Delete(ctx context.Context, entityID, attributeID string, v value.Value, space, author string) error
	Exists(ctx context.Context, entityID, attributeID, valueID string) (bool, error)
}

// SpaceOps covers spaces.* (spec.md §4.5).
type SpaceOps interface {
	// Create registers a space. isRootSpace records spec.md §3's
	// root-space flag — set for a deploy/deploy-global entry point's
	// own space, false for every space discovered as a regular
	// Space-attribute triple thereafter.
	Create(ctx context.Context, id, address, createdIn string, isRootSpace bool) error
	Exists(ctx context.Context, id string) (bool, error)
	// IsRootSpace reports the root-space flag Create recorded for id.
	IsRootSpace(ctx context.Context, id string) (bool, error)
	AddSubspace(ctx context.Context, parent, child string) error
	RemoveSubspace(ctx context.Context, parent, child string) error
	// CreateSchema creates the per-space schema namespace a space-queries
	// deployment projects type tables under. The planner calls it as
	// soon as a space is declared (TableSpaceCreated), ahead of any type
	// actually projecting into it, so the namespace is always there by
	// the time AddType's first projection write runs.
	CreateSchema(ctx context.Context, name string) error
	// UpsertCover is an extension point mirroring the source's partial
	// AvatarAdded handling (spec.md §9 Open Questions): reachable from
	// operator tooling, never from lowering.
	UpsertCover(ctx context.Context, space, url string) error
}
