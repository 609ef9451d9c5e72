// Package sinkaction defines the schema-level action union the planner
// (C6) operates on, and the four pure per-action contracts spec.md §4.6
// requires: Dependencies, HasFallback, Fallback and AsDep. Execution
// against the store is deliberately NOT a method here — it lives in the
// planner, which type-switches on the concrete variant. That keeps this
// package free of any store/database dependency, matching the design
// note that SinkAction is "a single tagged sum ... kept data-driven".
package sinkaction

import (
	"fmt"

	"github.com/entities-sink/ksink/internal/value"
)

// Category is the coarse kind used by the (informational, unused by the
// planner's ordering) priority function: General < Entity < Space < Table.
type Category int

const (
	CategoryGeneral Category = iota
	CategoryEntity
	CategorySpace
	CategoryTable
)

// Provenance is the space/author pair every action is stamped with by the
// ingestion loop after decoding. It is excluded from canonical-form
// equality (spec.md §9 "canonical-form equality") since it carries no
// bearing on what dependency an action satisfies or requires.
type Provenance struct {
	Space  string
	Author string
}

// SinkAction is the schema-level unit of planner work.
type SinkAction interface {
	// Category reports the coarse action kind for the priority function.
	Category() Category
	// Dependencies returns the canonical forms of the other actions whose
	// effect must already be observable before this action may run.
	Dependencies() []SinkAction
	// HasFallback reports whether synthesized dependencies are permitted.
	HasFallback() bool
	// Fallback returns synthesized actions that, if executed, establish
	// Dependencies(). Fallback members must be directly executable with
	// no dependency check of their own (spec.md §4.6).
	Fallback() []SinkAction
	// AsDep returns the canonicalized form of this action used as a
	// satisfied-set / edge-relation membership key.
	AsDep() SinkAction
	// Priority is the informational ordering spec.md §4.6 declares but
	// the planner does not use to reorder its queues.
	Priority() int
	// Describe renders a short human-readable form for logs.
	Describe() string
}

// --- General: the default actions, always part of the batch ---

// GeneralEntityCreated mirrors a raw CreateEntity action one-to-one.
type GeneralEntityCreated struct {
	Provenance
	EntityID string
}

func (a GeneralEntityCreated) Category() Category       { return CategoryGeneral }
func (a GeneralEntityCreated) Dependencies() []SinkAction { return nil }
func (a GeneralEntityCreated) HasFallback() bool        { return false }
func (a GeneralEntityCreated) Fallback() []SinkAction   { return nil }
func (a GeneralEntityCreated) AsDep() SinkAction {
	return GeneralEntityCreated{EntityID: a.EntityID}
}
func (a GeneralEntityCreated) Priority() int { return priority(CategoryGeneral, 0) }
func (a GeneralEntityCreated) Describe() string {
	return fmt.Sprintf("General::EntityCreated{%s}", a.EntityID)
}

// GeneralTripleAdded mirrors a raw CreateTriple action one-to-one.
type GeneralTripleAdded struct {
	Provenance
	EntityID     string
	AttributeID  string
	ValueID      string
	ValueTag     value.Tag
	ValuePayload string // raw payload text for non-entity tags; excluded from AsDep
}

func (a GeneralTripleAdded) Category() Category { return CategoryGeneral }
func (a GeneralTripleAdded) Dependencies() []SinkAction {
	deps := []SinkAction{exists(a.EntityID), exists(a.AttributeID)}
	if a.ValueTag == value.TagEntity {
		deps = append(deps, exists(a.ValueID))
	}
	return deps
}
func (a GeneralTripleAdded) HasFallback() bool { return true }
func (a GeneralTripleAdded) Fallback() []SinkAction {
	fb := []SinkAction{
		GeneralEntityCreated{EntityID: a.EntityID},
		GeneralEntityCreated{EntityID: a.AttributeID},
	}
	if a.ValueTag == value.TagEntity {
		fb = append(fb, GeneralEntityCreated{EntityID: a.ValueID})
	}
	return fb
}
func (a GeneralTripleAdded) AsDep() SinkAction {
	return GeneralTripleAdded{EntityID: a.EntityID, AttributeID: a.AttributeID, ValueID: a.ValueID, ValueTag: a.ValueTag}
}
func (a GeneralTripleAdded) Priority() int { return priority(CategoryGeneral, 1) }
func (a GeneralTripleAdded) Describe() string {
	return fmt.Sprintf("General::TripleAdded{%s,%s,%s}", a.EntityID, a.AttributeID, a.ValueID)
}

// GeneralTripleDeleted mirrors a raw DeleteTriple action one-to-one. It has
// no dependencies: soft-deleting a triple that never existed is a no-op,
// matching the store's idempotent delete path.
type GeneralTripleDeleted struct {
	Provenance
	EntityID     string
	AttributeID  string
	ValueID      string
	ValueTag     value.Tag
	ValuePayload string
}

func (a GeneralTripleDeleted) Category() Category         { return CategoryGeneral }
func (a GeneralTripleDeleted) Dependencies() []SinkAction { return nil }
func (a GeneralTripleDeleted) HasFallback() bool          { return false }
func (a GeneralTripleDeleted) Fallback() []SinkAction     { return nil }
func (a GeneralTripleDeleted) AsDep() SinkAction {
	return GeneralTripleDeleted{EntityID: a.EntityID, AttributeID: a.AttributeID, ValueID: a.ValueID, ValueTag: a.ValueTag}
}
func (a GeneralTripleDeleted) Priority() int { return priority(CategoryGeneral, 2) }
func (a GeneralTripleDeleted) Describe() string {
	return fmt.Sprintf("General::TripleDeleted{%s,%s,%s}", a.EntityID, a.AttributeID, a.ValueID)
}

// --- Entity: name/description annotations ---

// EntityNameAdded sets an entity's human name.
type EntityNameAdded struct {
	Provenance
	EntityID string
	Name     string
}

func (a EntityNameAdded) Category() Category         { return CategoryEntity }
func (a EntityNameAdded) Dependencies() []SinkAction  { return []SinkAction{exists(a.EntityID)} }
func (a EntityNameAdded) HasFallback() bool           { return true }
func (a EntityNameAdded) Fallback() []SinkAction {
	return []SinkAction{GeneralEntityCreated{EntityID: a.EntityID}}
}
func (a EntityNameAdded) AsDep() SinkAction { return EntityNameAdded{EntityID: a.EntityID, Name: a.Name} }
func (a EntityNameAdded) Priority() int     { return priority(CategoryEntity, 0) }
func (a EntityNameAdded) Describe() string {
	return fmt.Sprintf("Entity::NameAdded{%s,%q}", a.EntityID, a.Name)
}

// EntityDescriptionAdded sets an entity's human description.
type EntityDescriptionAdded struct {
	Provenance
	EntityID    string
	Description string
}

func (a EntityDescriptionAdded) Category() Category        { return CategoryEntity }
func (a EntityDescriptionAdded) Dependencies() []SinkAction { return []SinkAction{exists(a.EntityID)} }
func (a EntityDescriptionAdded) HasFallback() bool          { return true }
func (a EntityDescriptionAdded) Fallback() []SinkAction {
	return []SinkAction{GeneralEntityCreated{EntityID: a.EntityID}}
}
func (a EntityDescriptionAdded) AsDep() SinkAction {
	return EntityDescriptionAdded{EntityID: a.EntityID, Description: a.Description}
}
func (a EntityDescriptionAdded) Priority() int { return priority(CategoryEntity, 1) }
func (a EntityDescriptionAdded) Describe() string {
	return fmt.Sprintf("Entity::DescriptionAdded{%s,%q}", a.EntityID, a.Description)
}

// --- Space: subspace linking ---

// SpaceSubspaceAdded links a child space under a parent space.
type SpaceSubspaceAdded struct {
	Provenance
	ParentSpace string
	ChildSpace  string
}

func (a SpaceSubspaceAdded) Category() Category { return CategorySpace }
func (a SpaceSubspaceAdded) Dependencies() []SinkAction {
	return []SinkAction{isSpace(a.ParentSpace), isSpace(a.ChildSpace)}
}

// HasFallback is false: spaces cannot be minimally synthesized (creating a
// space needs an on-chain address this action does not carry), unlike
// entities/types which spec.md §4.6 names as the minimal fallback set.
func (a SpaceSubspaceAdded) HasFallback() bool      { return false }
func (a SpaceSubspaceAdded) Fallback() []SinkAction { return nil }
func (a SpaceSubspaceAdded) AsDep() SinkAction {
	return SpaceSubspaceAdded{ParentSpace: a.ParentSpace, ChildSpace: a.ChildSpace}
}
func (a SpaceSubspaceAdded) Priority() int { return priority(CategorySpace, 0) }
func (a SpaceSubspaceAdded) Describe() string {
	return fmt.Sprintf("Space::SubspaceAdded{%s->%s}", a.ParentSpace, a.ChildSpace)
}

// SpaceSubspaceRemoved removes a previously-linked subspace edge.
type SpaceSubspaceRemoved struct {
	Provenance
	ParentSpace string
	ChildSpace  string
}

func (a SpaceSubspaceRemoved) Category() Category { return CategorySpace }
func (a SpaceSubspaceRemoved) Dependencies() []SinkAction {
	return []SinkAction{isSpace(a.ParentSpace), isSpace(a.ChildSpace)}
}
func (a SpaceSubspaceRemoved) HasFallback() bool      { return false }
func (a SpaceSubspaceRemoved) Fallback() []SinkAction { return nil }
func (a SpaceSubspaceRemoved) AsDep() SinkAction {
	return SpaceSubspaceRemoved{ParentSpace: a.ParentSpace, ChildSpace: a.ChildSpace}
}
func (a SpaceSubspaceRemoved) Priority() int { return priority(CategorySpace, 1) }
func (a SpaceSubspaceRemoved) Describe() string {
	return fmt.Sprintf("Space::SubspaceRemoved{%s->%s}", a.ParentSpace, a.ChildSpace)
}

// --- Table: type/attribute/value-type/space schema projection actions ---

// TableSpaceCreated declares a space's existence from an entity's Space
// attribute triple. Its canonical form drops EntityID: the entity that
// happened to carry the declaring triple has no bearing on whether the
// space exists, which is the only fact other actions depend on.
type TableSpaceCreated struct {
	Provenance
	EntityID string
	SpaceID  string
}

func (a TableSpaceCreated) Category() Category         { return CategoryTable }
func (a TableSpaceCreated) Dependencies() []SinkAction { return []SinkAction{exists(a.EntityID)} }
func (a TableSpaceCreated) HasFallback() bool          { return true }
func (a TableSpaceCreated) Fallback() []SinkAction {
	return []SinkAction{GeneralEntityCreated{EntityID: a.EntityID}}
}
func (a TableSpaceCreated) AsDep() SinkAction { return TableSpaceCreated{SpaceID: a.SpaceID} }
func (a TableSpaceCreated) Priority() int     { return priority(CategoryTable, 0) }
func (a TableSpaceCreated) Describe() string {
	return fmt.Sprintf("Table::SpaceCreated{%s}", a.SpaceID)
}

// TableTypeAdded links an entity to a type entity (entity_types).
type TableTypeAdded struct {
	Provenance
	EntityID string
	TypeID   string
}

func (a TableTypeAdded) Category() Category { return CategoryTable }
func (a TableTypeAdded) Dependencies() []SinkAction {
	return []SinkAction{exists(a.EntityID), exists(a.TypeID), isType(a.TypeID)}
}
func (a TableTypeAdded) HasFallback() bool { return true }
func (a TableTypeAdded) Fallback() []SinkAction {
	return []SinkAction{
		GeneralEntityCreated{EntityID: a.EntityID},
		GeneralEntityCreated{EntityID: a.TypeID},
		TableTypeAdded{EntityID: a.TypeID, TypeID: SchemaTypeID},
	}
}
func (a TableTypeAdded) AsDep() SinkAction { return TableTypeAdded{EntityID: a.EntityID, TypeID: a.TypeID} }
func (a TableTypeAdded) Priority() int     { return priority(CategoryTable, 1) }
func (a TableTypeAdded) Describe() string {
	return fmt.Sprintf("Table::TypeAdded{%s,%s}", a.EntityID, a.TypeID)
}

// TableValueTypeAdded records an attribute entity's value-type contract.
type TableValueTypeAdded struct {
	Provenance
	AttributeID string
	ValueTypeID string
}

func (a TableValueTypeAdded) Category() Category { return CategoryTable }
func (a TableValueTypeAdded) Dependencies() []SinkAction {
	return []SinkAction{exists(a.AttributeID), exists(a.ValueTypeID)}
}
func (a TableValueTypeAdded) HasFallback() bool { return true }
func (a TableValueTypeAdded) Fallback() []SinkAction {
	return []SinkAction{
		GeneralEntityCreated{EntityID: a.AttributeID},
		GeneralEntityCreated{EntityID: a.ValueTypeID},
	}
}
func (a TableValueTypeAdded) AsDep() SinkAction {
	return TableValueTypeAdded{AttributeID: a.AttributeID, ValueTypeID: a.ValueTypeID}
}
func (a TableValueTypeAdded) Priority() int { return priority(CategoryTable, 2) }
func (a TableValueTypeAdded) Describe() string {
	return fmt.Sprintf("Table::ValueTypeAdded{%s,%s}", a.AttributeID, a.ValueTypeID)
}

// TableAttributeAdded records that AttributeID is usable as an attribute
// of the type EntityID (entity_attributes).
type TableAttributeAdded struct {
	Provenance
	EntityID    string
	AttributeID string
}

func (a TableAttributeAdded) Category() Category { return CategoryTable }
func (a TableAttributeAdded) Dependencies() []SinkAction {
	return []SinkAction{exists(a.EntityID), exists(a.AttributeID), isAttribute(a.AttributeID)}
}
func (a TableAttributeAdded) HasFallback() bool { return true }
func (a TableAttributeAdded) Fallback() []SinkAction {
	return []SinkAction{
		GeneralEntityCreated{EntityID: a.EntityID},
		GeneralEntityCreated{EntityID: a.AttributeID},
		TableTypeAdded{EntityID: a.AttributeID, TypeID: AttributeTypeID},
	}
}
func (a TableAttributeAdded) AsDep() SinkAction {
	return TableAttributeAdded{EntityID: a.EntityID, AttributeID: a.AttributeID}
}
func (a TableAttributeAdded) Priority() int { return priority(CategoryTable, 3) }
func (a TableAttributeAdded) Describe() string {
	return fmt.Sprintf("Table::AttributeAdded{%s,%s}", a.EntityID, a.AttributeID)
}

// Well-known ids used by fallback synthesis. Mirrors schema.SchemaType /
// schema.Attribute without importing the schema package, which would
// create an import cycle (schema has no need to know about sinkaction).
const (
	SchemaTypeID     = "SchemaType"
	AttributeTypeID  = "Attribute"
)

func exists(id string) SinkAction      { return GeneralEntityCreated{EntityID: id} }
func isType(id string) SinkAction      { return TableTypeAdded{EntityID: id, TypeID: SchemaTypeID} }
func isAttribute(id string) SinkAction { return TableTypeAdded{EntityID: id, TypeID: AttributeTypeID} }
func isSpace(id string) SinkAction     { return TableSpaceCreated{SpaceID: id} }

func priority(c Category, sub int) int { return int(c)*10 + sub }
