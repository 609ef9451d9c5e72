// Package schema implements the meta-schema registry (C3): the closed
// set of built-in entity ids and attribute ids, enumerable so bootstrap
// (C7) can walk it to seed a fresh store.
package schema

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed builtin.yaml
var builtinYAML []byte

// EntityDef describes a built-in entity: its canonical id, display name,
// and the attribute ids it declares for itself as a type.
type EntityDef struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	Attributes []string `yaml:"attributes"`
}

// AttributeDef describes a built-in attribute: its canonical id, display
// name, and the value-type entity id its triples must carry (empty if
// the registry declares no contract for it).
type AttributeDef struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	ValueType string `yaml:"valueType"`
}

// Registry is the fully enumerable, closed meta-schema.
type Registry struct {
	Entities       []EntityDef
	Attributes     []AttributeDef
	entitiesByID   map[string]EntityDef
	attributesByID map[string]AttributeDef
}

type document struct {
	Entities   []EntityDef    `yaml:"entities"`
	Attributes []AttributeDef `yaml:"attributes"`
}

// Builtin is the registry parsed from the embedded builtin.yaml document.
var Builtin = mustLoad()

func mustLoad() *Registry {
	r, err := Parse(builtinYAML)
	if err != nil {
		panic(fmt.Sprintf("schema: invalid embedded builtin.yaml: %v", err))
	}
	return r
}

// Parse builds a Registry from a YAML document shaped like builtin.yaml.
// Exported so tests (and an operator override file, if ever needed) can
// construct a Registry without relying on the embedded default.
func Parse(data []byte) (*Registry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schema: parse registry: %w", err)
	}
	r := &Registry{
		Entities:       doc.Entities,
		Attributes:     doc.Attributes,
		entitiesByID:   make(map[string]EntityDef, len(doc.Entities)),
		attributesByID: make(map[string]AttributeDef, len(doc.Attributes)),
	}
	for _, e := range doc.Entities {
		r.entitiesByID[e.ID] = e
	}
	for _, a := range doc.Attributes {
		r.attributesByID[a.ID] = a
	}
	return r, nil
}

// Entity looks up a built-in entity definition by id.
func (r *Registry) Entity(id string) (EntityDef, bool) {
	e, ok := r.entitiesByID[id]
	return e, ok
}

// Attribute looks up a built-in attribute definition by id.
func (r *Registry) Attribute(id string) (AttributeDef, bool) {
	a, ok := r.attributesByID[id]
	return a, ok
}

// IsBuiltinEntity reports whether id names a built-in entity.
func (r *Registry) IsBuiltinEntity(id string) bool {
	_, ok := r.entitiesByID[id]
	return ok
}

// IsBuiltinAttribute reports whether id names a built-in attribute.
func (r *Registry) IsBuiltinAttribute(id string) bool {
	_, ok := r.attributesByID[id]
	return ok
}

// Well-known ids referenced directly by the planner's fallback synthesis
// and by the lowering rules (spec.md §4.4, §4.6).
const (
	SchemaType  = "SchemaType"
	Attribute   = "Attribute"
	Relation    = "Relation"
	Text        = "Text"
	Number      = "Number"
	Image       = "Image"
	Date        = "Date"
	URL         = "Url"
	TypeAttr    = "Type"
	NameAttr    = "Name"
	DescAttr    = "Description"
	SpaceAttr   = "Space"
	SubspaceAttr = "Subspace"
	ValueTypeAttr = "ValueType"
	AttributeAttr = "Attribute"
)
