// Package ingest implements the ingestion loop (C8): for each incoming
// block-scoped batch from the external stream, resolve each entry's
// action document, lower and plan/execute its actions, commit, and
// persist the resume cursor. Grounded on the teacher's
// runEventDrivenLoop shape (an injected *slog.Logger, explicit
// cancellation, retry/failure bookkeeping) adapted from an
// event-driven daemon loop to a single-stream consume loop.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/entities-sink/ksink/internal/action"
	"github.com/entities-sink/ksink/internal/cursor"
	"github.com/entities-sink/ksink/internal/fetch"
	"github.com/entities-sink/ksink/internal/lowering"
	"github.com/entities-sink/ksink/internal/planner"
	"github.com/entities-sink/ksink/internal/sinkerr"
	"github.com/entities-sink/ksink/internal/store"
	"github.com/entities-sink/ksink/internal/substream"
)

// EventKind classifies a Loop progress notification sent on Events.
type EventKind int

const (
	BlockCommitted EventKind = iota
	EntrySkipped
	Fatal
)

// Event is an optional progress notification a Loop emits as it works,
// for a caller (cmd/ksink's --ui mode) to relay onto a display.
type Event struct {
	Kind        EventKind
	BlockNumber uint64
	Message     string
}

// Loop drives one BlockScopedData/BlockUndoSignal stream to
// completion against a store, until the stream ends or a fatal error
// occurs.
type Loop struct {
	Stream       substream.Stream
	Store        store.Store
	Resolver     *fetch.Resolver
	Planner      *planner.Planner
	SpaceQueries bool
	Log          *slog.Logger

	// Events, if non-nil, receives a notification per committed block,
	// skipped entry and fatal error. Sends are non-blocking: a slow or
	// absent reader drops notifications rather than stalling ingestion.
	Events chan<- Event
}

func (l *Loop) emit(e Event) {
	if l.Events == nil {
		return
	}
	select {
	case l.Events <- e:
	default:
	}
}

// New builds a Loop, falling back to slog.Default() if log is nil.
func New(stream substream.Stream, st store.Store, resolver *fetch.Resolver, p *planner.Planner, spaceQueries bool, log *slog.Logger) *Loop {
	if log == nil {
		log = slog.Default()
	}
	return &Loop{Stream: stream, Store: st, Resolver: resolver, Planner: p, SpaceQueries: spaceQueries, Log: log}
}

// Run consumes events until ctx is canceled, the stream is exhausted
// (returns a non-undo, non-nil error that the caller should treat as
// end-of-stream), or a block fails (spec.md §7's per-block-abort vs
// process-fatal distinction, reflected in the returned error).
func (l *Loop) Run(ctx context.Context) error {
	for {
		event, err := l.Stream.Recv(ctx)
		if err != nil {
			return err
		}

		switch {
		case event.Undo != nil:
			l.Log.Error("received block undo signal, refusing to continue", "last_valid_cursor", event.Undo.LastValidCursor)
			l.emit(Event{Kind: Fatal, Message: sinkerr.ErrUndoUnsupported.Error()})
			return sinkerr.ErrUndoUnsupported
		case event.Data != nil:
			if err := l.processBlock(ctx, *event.Data); err != nil {
				l.emit(Event{Kind: Fatal, BlockNumber: event.Data.Clock.Number, Message: err.Error()})
				return fmt.Errorf("ingest: block %d: %w", event.Data.Clock.Number, err)
			}
		}
	}
}

func (l *Loop) processBlock(ctx context.Context, block substream.BlockScopedData) error {
	log := l.Log.With("block", block.Clock.Number)

	entries, err := decodeEntries(block.Output)
	if err != nil {
		return fmt.Errorf("%w: %v", sinkerr.ErrMalformedAction, err)
	}

	tx, err := l.Store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", sinkerr.ErrStoreError, err)
	}

	actionCount := 0
	for _, entry := range entries.Entries {
		doc, err := l.resolveEntry(ctx, entry)
		if err != nil {
			if errors.Is(err, sinkerr.ErrUnsupportedURI) {
				log.Error("skipping entry with unsupported uri", "entry", entry.ID, "uri", entry.URI, "error", err)
				l.emit(Event{Kind: EntrySkipped, BlockNumber: block.Clock.Number, Message: entry.URI})
				continue
			}
			_ = tx.Rollback(ctx)
			return err
		}

		for _, a := range doc.Actions {
			a.Space = entry.Space
			a.Author = entry.Author

			batch := lowering.Lower(a)
			if err := l.Planner.Execute(ctx, tx, batch, l.SpaceQueries); err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
			actionCount++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", sinkerr.ErrStoreError, err)
	}

	if err := l.Store.Cursor().Save(ctx, cursor.Checkpoint{Token: block.Cursor, BlockNumber: block.Clock.Number}); err != nil {
		return fmt.Errorf("%w: save cursor: %v", sinkerr.ErrStoreError, err)
	}

	log.Info("committed block", "action_count", actionCount, "cursor", block.Cursor)
	l.emit(Event{Kind: BlockCommitted, BlockNumber: block.Clock.Number})
	return nil
}

func (l *Loop) resolveEntry(ctx context.Context, entry substream.EntryAdded) (action.Document, error) {
	raw, err := l.Resolver.Resolve(ctx, entry.URI)
	if err != nil {
		return action.Document{}, err
	}
	var doc action.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return action.Document{}, fmt.Errorf("%w: %v", sinkerr.ErrMalformedAction, err)
	}
	return doc, nil
}

func decodeEntries(output substream.Output) (substream.EntriesAdded, error) {
	var entries substream.EntriesAdded
	if err := json.NewDecoder(bytes.NewReader(output.Value)).Decode(&entries); err != nil {
		return substream.EntriesAdded{}, err
	}
	return entries, nil
}
