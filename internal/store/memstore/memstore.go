// Package memstore is an in-memory store.Store implementation used by
// unit tests for the planner, bootstrap and ingestion loop. It mirrors
// the postgres backend's semantics (idempotent creates, last-writer-wins
// updates, copy-on-write transactions) without a real database, the same
// role the teacher's internal/storage/memory backend plays for its own
// test suite.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/entities-sink/ksink/internal/cursor"
	"github.com/entities-sink/ksink/internal/store"
	"github.com/entities-sink/ksink/internal/value"
)

type entityRow struct {
	ID          string
	Space       string
	Name        string
	HasName     bool
	Description string
	HasDesc     bool
	ValueType   string
	HasValueType bool
}

type tripleKey struct {
	EntityID    string
	AttributeID string
	ValueID     string
}

type tripleRow struct {
	tripleKey
	ValueTag value.Tag
	Value    string
	Space    string
	Author   string
	Deleted  bool
}

type spaceRow struct {
	ID          string
	Address     string
	CreatedIn   string
	IsRootSpace bool
	Cover       string
}

type state struct {
	entities         map[string]entityRow
	entityTypes      map[[2]string]bool // (entityID, typeID)
	entityAttributes map[[2]string]bool // (attributeID, typeEntityID)
	triples          map[tripleKey]tripleRow
	spaces           map[string]spaceRow
	subspaces        map[[2]string]bool // (parent, child)
	schemas          map[string]bool
}

func newState() *state {
	return &state{
		entities:         make(map[string]entityRow),
		entityTypes:      make(map[[2]string]bool),
		entityAttributes: make(map[[2]string]bool),
		triples:          make(map[tripleKey]tripleRow),
		spaces:           make(map[string]spaceRow),
		subspaces:        make(map[[2]string]bool),
		schemas:          make(map[string]bool),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.entities {
		c.entities[k] = v
	}
	for k, v := range s.entityTypes {
		c.entityTypes[k] = v
	}
	for k, v := range s.entityAttributes {
		c.entityAttributes[k] = v
	}
	for k, v := range s.triples {
		c.triples[k] = v
	}
	for k, v := range s.spaces {
		c.spaces[k] = v
	}
	for k, v := range s.subspaces {
		c.subspaces[k] = v
	}
	for k, v := range s.schemas {
		c.schemas[k] = v
	}
	return c
}

// Store is an in-memory store.Store.
type Store struct {
	mu    sync.Mutex
	st    *state
	curOK bool
	cur   cursor.Checkpoint
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{st: newState()}
}

var _ store.Store = (*Store)(nil)

func (s *Store) BeginTx(ctx context.Context) (store.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &tx{parent: s, work: s.st.clone()}, nil
}

func (s *Store) Cursor() cursor.Store { return (*cursorStore)(s) }

func (s *Store) Close() error { return nil }

type cursorStore Store

func (c *cursorStore) Get(ctx context.Context) (cursor.Checkpoint, bool, error) {
	s := (*Store)(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur, s.curOK, nil
}

func (c *cursorStore) Save(ctx context.Context, checkpoint cursor.Checkpoint) error {
	s := (*Store)(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = checkpoint
	s.curOK = true
	return nil
}

// tx is a copy-on-write transaction: all operations mutate `work`, which
// is only swapped into the parent store's state on Commit.
type tx struct {
	parent    *Store
	work      *state
	committed bool
	rolledBk  bool
	// mu guards work: the planner's fire-and-forget General prefix
	// (spec.md §5) dispatches statically-independent actions from
	// concurrent goroutines within the same transaction.
	mu sync.Mutex
}

var _ store.Tx = (*tx)(nil)

func (t *tx) Entities() store.EntityOps { return (*entityOps)(t) }
func (t *tx) Triples() store.TripleOps { return (*tripleOps)(t) }
func (t *tx) Spaces() store.SpaceOps   { return (*spaceOps)(t) }

func (t *tx) Commit(ctx context.Context) error {
	if t.committed || t.rolledBk {
		return fmt.Errorf("memstore: transaction already closed")
	}
	t.parent.mu.Lock()
	defer t.parent.mu.Unlock()
	t.parent.st = t.work
	t.committed = true
	return nil
}

func (t *tx) Rollback(ctx context.Context) error {
	if t.committed {
		return nil
	}
	t.rolledBk = true
	return nil
}

type entityOps tx

func (e *entityOps) Create(ctx context.Context, id, space string) error {
	t := (*tx)(e)
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.work.entities[id]; ok {
		return nil // idempotent: create-do-nothing-on-conflict
	}
	t.work.entities[id] = entityRow{ID: id, Space: space}
	return nil
}

func (e *entityOps) Exists(ctx context.Context, id string) (bool, error) {
	t := (*tx)(e)
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.work.entities[id]
	return ok, nil
}

func (e *entityOps) UpsertName(ctx context.Context, id, name, space string) error {
	t := (*tx)(e)
	t.mu.Lock()
	defer t.mu.Unlock()
	row := t.work.entities[id]
	row.ID, row.Name, row.HasName = id, name, true
	t.work.entities[id] = row
	return nil
}

func (e *entityOps) UpsertDescription(ctx context.Context, id, description, space string) error {
	t := (*tx)(e)
	t.mu.Lock()
	defer t.mu.Unlock()
	row := t.work.entities[id]
	row.ID, row.Description, row.HasDesc = id, description, true
	t.work.entities[id] = row
	return nil
}

func (e *entityOps) UpsertValueType(ctx context.Context, id, valueTypeID, space string) error {
	t := (*tx)(e)
	t.mu.Lock()
	defer t.mu.Unlock()
	row := t.work.entities[id]
	row.ID, row.ValueType, row.HasValueType = id, valueTypeID, true
	t.work.entities[id] = row
	return nil
}

func (e *entityOps) ValueTypeMatches(ctx context.Context, id, valueTypeID string) (bool, error) {
	t := (*tx)(e)
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.work.entities[id]
	return ok && row.HasValueType && row.ValueType == valueTypeID, nil
}

func (e *entityOps) AddType(ctx context.Context, entityID, typeID, space string, projectToSpaceSchema bool) error {
	t := (*tx)(e)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.work.entityTypes[[2]string{entityID, typeID}] = true
	return nil
}

func (e *entityOps) HasType(ctx context.Context, entityID, typeID string) (bool, error) {
	t := (*tx)(e)
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.work.entityTypes[[2]string{entityID, typeID}], nil
}

func (e *entityOps) AddRelation(ctx context.Context, parentEntityID, attributeID, space string) error {
	return nil // schema projection has no observable effect in the in-memory backend
}

func (e *entityOps) AddAttribute(ctx context.Context, attributeID, typeEntityID string) error {
	t := (*tx)(e)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.work.entityAttributes[[2]string{attributeID, typeEntityID}] = true
	return nil
}

func (e *entityOps) IsAttributeOf(ctx context.Context, attributeID, typeEntityID string) (bool, error) {
	t := (*tx)(e)
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.work.entityAttributes[[2]string{attributeID, typeEntityID}], nil
}

type tripleOps tx

func (p *tripleOps) key(entityID, attributeID string, v value.Value) tripleKey {
	return tripleKey{EntityID: entityID, AttributeID: attributeID, ValueID: v.ID()}
}

func (p *tripleOps) Create(ctx context.Context, entityID, attributeID string, v value.Value, space, author string) error {
	t := (*tx)(p)
	t.mu.Lock()
	defer t.mu.Unlock()
	k := p.key(entityID, attributeID, v)
	if existing, ok := t.work.triples[k]; ok && !existing.Deleted {
		return nil // idempotent on (entity_id, attribute_id, value_id)
	}
	t.work.triples[k] = tripleRow{tripleKey: k, ValueTag: v.Tag(), Value: v.ValueAsString(), Space: space, Author: author}
	return nil
}

func (p *tripleOps) Delete(ctx context.Context, entityID, attributeID string, v value.Value, space, author string) error {
	t := (*tx)(p)
	t.mu.Lock()
	defer t.mu.Unlock()
	k := p.key(entityID, attributeID, v)
	row, ok := t.work.triples[k]
	if !ok {
		row = tripleRow{tripleKey: k, ValueTag: v.Tag(), Value: v.ValueAsString()}
	}
	row.Deleted = true
	row.Space, row.Author = space, author
	t.work.triples[k] = row
	return nil
}

func (p *tripleOps) Exists(ctx context.Context, entityID, attributeID, valueID string) (bool, error) {
	t := (*tx)(p)
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.work.triples[tripleKey{EntityID: entityID, AttributeID: attributeID, ValueID: valueID}]
	return ok && !row.Deleted, nil
}

type spaceOps tx

func (sp *spaceOps) Create(ctx context.Context, id, address, createdIn string, isRootSpace bool) error {
	t := (*tx)(sp)
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.work.spaces[id]; ok {
		return nil
	}
	t.work.spaces[id] = spaceRow{ID: id, Address: address, CreatedIn: createdIn, IsRootSpace: isRootSpace}
	return nil
}

func (sp *spaceOps) Exists(ctx context.Context, id string) (bool, error) {
	t := (*tx)(sp)
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.work.spaces[id]
	return ok, nil
}

func (sp *spaceOps) IsRootSpace(ctx context.Context, id string) (bool, error) {
	t := (*tx)(sp)
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.work.spaces[id].IsRootSpace, nil
}

func (sp *spaceOps) AddSubspace(ctx context.Context, parent, child string) error {
	t := (*tx)(sp)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.work.subspaces[[2]string{parent, child}] = true
	return nil
}

func (sp *spaceOps) RemoveSubspace(ctx context.Context, parent, child string) error {
	t := (*tx)(sp)
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.work.subspaces, [2]string{parent, child})
	return nil
}

func (sp *spaceOps) CreateSchema(ctx context.Context, name string) error {
	t := (*tx)(sp)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.work.schemas[name] = true
	return nil
}

func (sp *spaceOps) UpsertCover(ctx context.Context, space, url string) error {
	t := (*tx)(sp)
	t.mu.Lock()
	defer t.mu.Unlock()
	row := t.work.spaces[space]
	row.ID, row.Cover = space, url
	t.work.spaces[space] = row
	return nil
}
