// Package sinkerr defines the sentinel error taxonomy shared across the
// sink: decoding, resolution, planning and store failures all wrap one
// of these so callers can decide per-entry-skip vs per-block-abort vs
// process-fatal with errors.Is.
package sinkerr

import "errors"

var (
	// ErrMalformedAction is returned when an action document fails to decode,
	// or a decoded variant is missing a field its type requires.
	ErrMalformedAction = errors.New("malformed action")

	// ErrUnsupportedURI is returned for entry URIs with an unrecognized scheme.
	ErrUnsupportedURI = errors.New("unsupported entry uri scheme")

	// ErrIPFSUnavailable is returned when a document could not be fetched
	// from IPFS after exhausting the retry budget.
	ErrIPFSUnavailable = errors.New("ipfs document unavailable")

	// ErrUnresolvedDependencies is returned when the planner exhausts its
	// iteration cap with outstanding dependency edges.
	ErrUnresolvedDependencies = errors.New("unresolved dependencies")

	// ErrStoreError wraps a database-layer failure that survived retry.
	ErrStoreError = errors.New("store error")

	// ErrUndoUnsupported is returned on receipt of a BlockUndoSignal; it is
	// always fatal to the ingestion process.
	ErrUndoUnsupported = errors.New("block undo signals are not supported")
)
