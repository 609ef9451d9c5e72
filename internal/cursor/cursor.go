// Package cursor implements the ingestion checkpoint (C9): a single-row
// record of the last cursor token and block number the sink has durably
// committed, written on the outer connection immediately after each
// block's transaction commits (spec.md §4.9).
package cursor

import "context"

// Checkpoint is the persisted ingestion position.
type Checkpoint struct {
	Token       string
	BlockNumber uint64
}

// Store persists and retrieves the single checkpoint row (id=0).
type Store interface {
	// Get returns the last saved checkpoint. ok is false on a fresh store
	// that has never saved one.
	Get(ctx context.Context) (checkpoint Checkpoint, ok bool, err error)
	// Save upserts the checkpoint row. Called on the outer connection,
	// never inside the block's own transaction — a block that commits but
	// crashes before Save simply gets replayed, which the store's
	// idempotent writes tolerate.
	Save(ctx context.Context, checkpoint Checkpoint) error
}
