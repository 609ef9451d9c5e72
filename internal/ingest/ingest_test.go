package ingest_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/entities-sink/ksink/internal/action"
	"github.com/entities-sink/ksink/internal/fetch"
	"github.com/entities-sink/ksink/internal/ingest"
	"github.com/entities-sink/ksink/internal/planner"
	"github.com/entities-sink/ksink/internal/schema"
	"github.com/entities-sink/ksink/internal/sinkerr"
	"github.com/entities-sink/ksink/internal/store/memstore"
	"github.com/entities-sink/ksink/internal/substream"
	"github.com/entities-sink/ksink/internal/value"
)

func dataURI(t *testing.T, doc action.Document) string {
	t.Helper()
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	return "data:application/json;base64," + base64.URLEncoding.EncodeToString(raw)
}

func entryEvent(t *testing.T, blockNumber uint64, cursorToken string, entries []substream.EntryAdded) substream.Event {
	t.Helper()
	raw, err := json.Marshal(substream.EntriesAdded{Entries: entries})
	require.NoError(t, err)
	return substream.Event{Data: &substream.BlockScopedData{
		Clock:  substream.Clock{Number: blockNumber, ID: "block"},
		Output: substream.Output{TypeURL: "type.googleapis.com/EntriesAdded", Value: raw},
		Cursor: cursorToken,
	}}
}

func createEntityDoc(id string) action.Document {
	return action.Document{Type: "document", Version: "1", Actions: []action.Action{
		{Kind: action.KindCreateEntity, EntityID: id},
	}}
}

func createTripleDoc(t *testing.T, entityID, attributeID, valueID, text string) action.Document {
	t.Helper()
	v, err := value.New(value.TagString, valueID, text)
	require.NoError(t, err)
	return action.Document{Type: "document", Version: "1", Actions: []action.Action{
		{Kind: action.KindCreateTriple, EntityID: entityID, AttributeID: attributeID, Value: v},
	}}
}

func newLoop(events []substream.Event, st *memstore.Store, resolver *fetch.Resolver) *ingest.Loop {
	return ingest.New(substream.NewSliceStream(events), st, resolver, planner.New(), false, nil)
}

// (d) a duplicate triple replayed across two separate blocks is
// idempotent: both blocks commit and the cursor ends on the later one.
func TestDuplicateTripleAcrossBlocksIsIdempotent(t *testing.T) {
	st := memstore.New()
	doc := createTripleDoc(t, "e1", "a1", "v1", "hello")
	entry := substream.EntryAdded{ID: "entry-1", URI: dataURI(t, doc), Author: "author-1", Space: "space-1"}

	events := []substream.Event{
		entryEvent(t, 1, "cursor-1", []substream.EntryAdded{entry}),
		entryEvent(t, 2, "cursor-2", []substream.EntryAdded{entry}),
	}

	loop := newLoop(events, st, fetch.NewResolver(nil, ""))
	err := loop.Run(context.Background())
	require.True(t, errors.Is(err, io.EOF))

	ckpt, ok, getErr := st.Cursor().Get(context.Background())
	require.NoError(t, getErr)
	require.True(t, ok)
	require.Equal(t, uint64(2), ckpt.BlockNumber)

	tx, err := st.BeginTx(context.Background())
	require.NoError(t, err)
	defer tx.Rollback(context.Background())
	exists, err := tx.Triples().Exists(context.Background(), "e1", "a1", "v1")
	require.NoError(t, err)
	require.True(t, exists)
}

// (e) an ipfs-sourced entry whose fetcher always fails aborts the block
// without advancing the cursor; the block can be retried wholesale on
// the next run.
type alwaysFailFetcher struct{ calls int }

func (f *alwaysFailFetcher) Fetch(ctx context.Context, cid string) ([]byte, error) {
	f.calls++
	return nil, errors.New("gateway down")
}

func TestIPFSFetchFailureAbortsBlockAndKeepsCursor(t *testing.T) {
	st := memstore.New()
	f := &alwaysFailFetcher{}
	resolver := fetch.NewResolver(f, "")

	entry := substream.EntryAdded{ID: "entry-1", URI: "ipfs://bad-cid", Author: "author-1", Space: "space-1"}
	events := []substream.Event{entryEvent(t, 1, "cursor-1", []substream.EntryAdded{entry})}

	loop := newLoop(events, st, resolver)
	err := loop.Run(context.Background())
	require.True(t, errors.Is(err, sinkerr.ErrIPFSUnavailable))
	require.Equal(t, 3, f.calls)

	_, ok, getErr := st.Cursor().Get(context.Background())
	require.NoError(t, getErr)
	require.False(t, ok)
}

// (f) a subspace added in one block and removed in a later block: each
// block commits and advances the cursor.
// Space::Subspace{Added,Removed} has no fallback (spaces can't be
// minimally synthesized), so both parent and child spaces must already
// exist before the blocks run.
func TestSubspaceAddThenRemoveAcrossBlocks(t *testing.T) {
	st := memstore.New()

	seedTx, err := st.BeginTx(context.Background())
	require.NoError(t, err)
	require.NoError(t, seedTx.Spaces().Create(context.Background(), "parent-space", "0xparent", "root", false))
	require.NoError(t, seedTx.Spaces().Create(context.Background(), "child-space", "0xchild", "root", false))
	require.NoError(t, seedTx.Commit(context.Background()))

	addSubspace := action.Document{Type: "document", Version: "1", Actions: []action.Action{
		{Kind: action.KindCreateTriple, EntityID: "parent-space", AttributeID: schema.SubspaceAttr, Value: value.Entity("child-space")},
	}}
	removeSubspace := action.Document{Type: "document", Version: "1", Actions: []action.Action{
		{Kind: action.KindDeleteTriple, EntityID: "parent-space", AttributeID: schema.SubspaceAttr, Value: value.Entity("child-space")},
	}}

	entrySpace := "root"
	events := []substream.Event{
		entryEvent(t, 1, "cursor-1", []substream.EntryAdded{{ID: "e1", URI: dataURI(t, addSubspace), Author: "author-1", Space: entrySpace}}),
		entryEvent(t, 2, "cursor-2", []substream.EntryAdded{{ID: "e2", URI: dataURI(t, removeSubspace), Author: "author-1", Space: entrySpace}}),
	}

	loop := newLoop(events, st, fetch.NewResolver(nil, ""))
	err = loop.Run(context.Background())
	require.True(t, errors.Is(err, io.EOF))

	ckpt, ok, getErr := st.Cursor().Get(context.Background())
	require.NoError(t, getErr)
	require.True(t, ok)
	require.Equal(t, uint64(2), ckpt.BlockNumber)
}

// an entry with an unsupported URI scheme is skipped, and the rest of
// the block still commits and advances the cursor.
func TestUnsupportedURISkipsEntryNotBlock(t *testing.T) {
	st := memstore.New()
	good := createEntityDoc("e1")
	bad := substream.EntryAdded{ID: "bad", URI: "https://example.com/doc.json", Author: "author-1", Space: "space-1"}
	okEntry := substream.EntryAdded{ID: "ok", URI: dataURI(t, good), Author: "author-1", Space: "space-1"}

	events := []substream.Event{entryEvent(t, 1, "cursor-1", []substream.EntryAdded{bad, okEntry})}
	loop := newLoop(events, st, fetch.NewResolver(nil, ""))
	err := loop.Run(context.Background())
	require.True(t, errors.Is(err, io.EOF))

	ckpt, ok, getErr := st.Cursor().Get(context.Background())
	require.NoError(t, getErr)
	require.True(t, ok)
	require.Equal(t, uint64(1), ckpt.BlockNumber)

	tx, err := st.BeginTx(context.Background())
	require.NoError(t, err)
	defer tx.Rollback(context.Background())
	exists, err := tx.Entities().Exists(context.Background(), "e1")
	require.NoError(t, err)
	require.True(t, exists)
}

// a block undo signal is fatal: Run returns ErrUndoUnsupported.
func TestBlockUndoSignalIsFatal(t *testing.T) {
	st := memstore.New()
	events := []substream.Event{{Undo: &substream.BlockUndoSignal{LastValidCursor: "cursor-0"}}}
	loop := newLoop(events, st, fetch.NewResolver(nil, ""))
	err := loop.Run(context.Background())
	require.True(t, errors.Is(err, sinkerr.ErrUndoUnsupported))
}
