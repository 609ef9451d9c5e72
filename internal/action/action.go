// Package action implements the raw action-triple model (C2): the
// wire-level verbs decoded from an Action document, plus the JSON coding
// between that document and the three Go variants.
package action

import (
	"encoding/json"
	"fmt"

	"github.com/entities-sink/ksink/internal/sinkerr"
	"github.com/entities-sink/ksink/internal/value"
)

// Kind discriminates the three raw action-triple variants.
type Kind string

const (
	KindCreateEntity Kind = "createEntity"
	KindCreateTriple Kind = "createTriple"
	KindDeleteTriple Kind = "deleteTriple"
)

// Action is a single raw action-triple, stamped with the space and author
// it was carried in. Space/Author are not part of the JSON wire form —
// the ingestion loop stamps them in after decoding from the entry that
// carried the document (spec.md §4.2).
type Action struct {
	Kind       Kind
	EntityID   string
	AttributeID string // empty for CreateEntity
	Value      value.Value // zero value for CreateEntity
	Space      string
	Author     string
}

// wireValue mirrors the JSON shape of a value: {type, id, value?}.
type wireValue struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Value string `json:"value,omitempty"`
}

// wireAction mirrors the JSON shape of one action in a document's
// "actions" array: {type, entityId, attributeId?, value?}.
type wireAction struct {
	Type        string     `json:"type"`
	EntityID    string     `json:"entityId"`
	AttributeID string     `json:"attributeId,omitempty"`
	Value       *wireValue `json:"value,omitempty"`
}

// Document is the JSON envelope carrying a batch of action triples for one
// entry (spec.md §6 "Document format").
type Document struct {
	Type    string   `json:"type"`
	Version string   `json:"version"`
	Actions []Action `json:"actions"`
}

// UnmarshalJSON decodes a Document, failing with sinkerr.ErrMalformedAction
// on an unknown discriminator or a missing required field for a variant.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type    string           `json:"type"`
		Version string           `json:"version"`
		Actions []wireAction     `json:"actions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", sinkerr.ErrMalformedAction, err)
	}
	d.Type = raw.Type
	d.Version = raw.Version
	d.Actions = make([]Action, 0, len(raw.Actions))
	for i, wa := range raw.Actions {
		a, err := decodeAction(wa)
		if err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
		d.Actions = append(d.Actions, a)
	}
	return nil
}

// MarshalJSON re-encodes a Document, the inverse of UnmarshalJSON — used by
// the round-trip property in spec.md §8.
func (d Document) MarshalJSON() ([]byte, error) {
	raw := struct {
		Type    string       `json:"type"`
		Version string       `json:"version"`
		Actions []wireAction `json:"actions"`
	}{Type: d.Type, Version: d.Version}
	for _, a := range d.Actions {
		raw.Actions = append(raw.Actions, encodeAction(a))
	}
	return json.Marshal(raw)
}

func decodeAction(wa wireAction) (Action, error) {
	if wa.EntityID == "" {
		return Action{}, fmt.Errorf("%w: missing entityId", sinkerr.ErrMalformedAction)
	}
	switch Kind(wa.Type) {
	case KindCreateEntity:
		return Action{Kind: KindCreateEntity, EntityID: wa.EntityID}, nil
	case KindCreateTriple, KindDeleteTriple:
		if wa.AttributeID == "" {
			return Action{}, fmt.Errorf("%w: missing attributeId", sinkerr.ErrMalformedAction)
		}
		if wa.Value == nil {
			return Action{}, fmt.Errorf("%w: missing value", sinkerr.ErrMalformedAction)
		}
		v, err := decodeValue(*wa.Value)
		if err != nil {
			return Action{}, err
		}
		return Action{
			Kind:        Kind(wa.Type),
			EntityID:    wa.EntityID,
			AttributeID: wa.AttributeID,
			Value:       v,
		}, nil
	default:
		return Action{}, fmt.Errorf("%w: unknown action type %q", sinkerr.ErrMalformedAction, wa.Type)
	}
}

func decodeValue(wv wireValue) (value.Value, error) {
	if wv.ID == "" {
		return value.Value{}, fmt.Errorf("%w: value missing id", sinkerr.ErrMalformedAction)
	}
	if value.Tag(wv.Type) == value.TagEntity {
		return value.Entity(wv.ID), nil
	}
	v, err := value.New(value.Tag(wv.Type), wv.ID, wv.Value)
	if err != nil {
		return value.Value{}, fmt.Errorf("%w: %v", sinkerr.ErrMalformedAction, err)
	}
	return v, nil
}

func encodeAction(a Action) wireAction {
	wa := wireAction{Type: string(a.Kind), EntityID: a.EntityID}
	if a.Kind == KindCreateEntity {
		return wa
	}
	wa.AttributeID = a.AttributeID
	wv := wireValue{Type: string(a.Value.Tag()), ID: a.Value.ID()}
	if !a.Value.IsEntity() {
		wv.Value = a.Value.ValueAsString()
	}
	wa.Value = &wv
	return wa
}
