// Package substream declares the external stream collaborator spec.md
// §6 names: the Substreams block-scoped envelope types and the
// transport interface the ingestion loop consumes. No gRPC/protobuf
// client is implemented here — spec.md scopes that connection itself
// out, treating the stream as an external dependency the ingestion
// loop is handed, not one it dials.
package substream

import "context"

// Clock identifies a single block.
type Clock struct {
	Number uint64
	ID     string
}

// Output carries the substream module's mapped output for one block,
// still encoded as the module declared (a protobuf Any in the real
// wire protocol; here, just the type URL plus opaque bytes, since the
// ingestion loop only ever needs to recognize and decode EntriesAdded).
type Output struct {
	TypeURL string
	Value   []byte
}

// BlockScopedData is one block's worth of substream output, paired
// with the opaque cursor the stream uses to resume after this block.
type BlockScopedData struct {
	Clock  Clock
	Output Output
	Cursor string
}

// BlockUndoSignal announces a chain reorg: the caller must roll back
// to LastValidCursor. spec.md §4.8/§7 treats receiving one as fatal
// (UndoUnsupported) rather than attempting to rewind.
type BlockUndoSignal struct {
	LastValidCursor string
}

// EntryAdded is one action-document reference carried by a block.
type EntryAdded struct {
	ID     string
	Index  uint32
	URI    string
	Author string
	Space  string
}

// EntriesAdded is the decoded shape of a BlockScopedData's
// Output.Value for this module (spec.md §6).
type EntriesAdded struct {
	Entries []EntryAdded
}

// Event is the sum of messages a Stream can yield: exactly one of Data
// or Undo is set.
type Event struct {
	Data *BlockScopedData
	Undo *BlockUndoSignal
}

// Stream is the transport the ingestion loop pulls block-scoped
// batches from. A concrete implementation (a Substreams gRPC client)
// is intentionally out of scope; tests and cmd/ksink's wiring supply
// their own.
type Stream interface {
	// Recv blocks until the next Event, or returns an error (including
	// ctx.Err()) if the stream ends or fails.
	Recv(ctx context.Context) (Event, error)
	Close() error
}
