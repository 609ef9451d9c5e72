// Package value implements the tagged value model (C1): the sum of
// payload shapes a triple's value slot can carry, plus the identity and
// type tags every variant exposes regardless of payload.
package value

import "fmt"

// Tag is the short name used in persistence and wire JSON for a value variant.
type Tag string

const (
	TagNumber Tag = "number"
	TagString Tag = "string"
	TagImage  Tag = "image"
	TagEntity Tag = "entity"
	TagDate   Tag = "date"
	TagURL    Tag = "url"
)

// SQLType is the column type a relational projection uses for a value's tag.
type SQLType string

const (
	SQLText    SQLType = "text"
	SQLInteger SQLType = "integer"
	// SQLEntityRef is text plus a foreign-key reference to entities(id);
	// callers that need the FK clause append it themselves.
	// internal/store/postgres/projection.go does not use SQLType: its
	// sqlColumnType writes column types and the FK clause directly.
	SQLEntityRef SQLType = "text-fk"
)

// Value is a tagged value instance: exactly one of the typed accessors
// below is meaningful, selected by Tag().
type Value struct {
	id    string
	tag   Tag
	value string // empty and unused for TagEntity
}

// New constructs a Value. For TagEntity, payload is ignored — the entity's
// identity *is* its id. For all other tags, payload holds the value text.
func New(tag Tag, id, payload string) (Value, error) {
	switch tag {
	case TagNumber, TagString, TagImage, TagEntity, TagDate, TagURL:
	default:
		return Value{}, fmt.Errorf("value: unknown tag %q", tag)
	}
	if id == "" {
		return Value{}, fmt.Errorf("value: id is required")
	}
	return Value{id: id, tag: tag, value: payload}, nil
}

// Entity constructs an entity-tagged value; its payload is always its id.
func Entity(id string) Value {
	return Value{id: id, tag: TagEntity}
}

// ID returns the identity of this value instance. For entity values this
// is the referenced entity's id; for other variants it is the id assigned
// to the value instance itself (used as the triple's value_id).
func (v Value) ID() string { return v.id }

// Tag returns the short variant name used in persistence and JSON coding.
func (v Value) Tag() Tag { return v.tag }

// ValueAsString returns the payload text for non-entity variants, and the
// entity id for entity variants — the uniform "what does this carry"
// accessor used by lowering rules that don't care about the distinction.
func (v Value) ValueAsString() string {
	if v.tag == TagEntity {
		return v.id
	}
	return v.value
}

// IsEntity reports whether this value is an entity reference.
func (v Value) IsEntity() bool { return v.tag == TagEntity }

// SQLType returns the column type a relational projection would use to
// store this value's tag.
func (v Value) SQLType() SQLType {
	switch v.tag {
	case TagNumber:
		return SQLInteger
	case TagEntity:
		return SQLEntityRef
	default:
		return SQLText
	}
}
