package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/entities-sink/ksink/internal/bootstrap"
	"github.com/entities-sink/ksink/internal/config"
	"github.com/entities-sink/ksink/internal/fetch"
	"github.com/entities-sink/ksink/internal/ingest"
	"github.com/entities-sink/ksink/internal/planner"
	"github.com/entities-sink/ksink/internal/schema"
	"github.com/entities-sink/ksink/internal/store"
	"github.com/entities-sink/ksink/internal/store/postgres"
	"github.com/entities-sink/ksink/internal/substream"
	"github.com/entities-sink/ksink/internal/ui"
)

// runSink resolves the shared settings, opens the store, bootstraps the
// meta-schema if needed, and drives the ingestion loop to completion.
// deploy.go and deploy_global.go both call this, differing only in
// spaceQueries (whether per-space schema projection is written)
// and which spaces (if any) are pre-seeded before the stream starts.
func runSink(ctx context.Context, spaceQueries bool, spaceAddresses []string) error {
	settings, err := config.Resolve(v)
	if err != nil {
		return err
	}
	if needsSetup(settings) {
		if settings, err = runInteractiveSetup(settings); err != nil {
			return err
		}
	}

	st, err := postgres.Open(ctx, settings.StoreConfig())
	if err != nil {
		return fmt.Errorf("ksink: open store: %w", err)
	}
	defer st.Close()

	p := planner.New()

	if err := bootstrapSchema(ctx, p, st); err != nil {
		return err
	}

	if len(spaceAddresses) > 0 {
		if err := preseedSpaces(ctx, st, spaceAddresses); err != nil {
			return err
		}
	}

	if settings.ReplaySince != "" {
		logReplaySince(settings.ReplaySince)
	}

	stream, closeStream, err := openStream(settings)
	if err != nil {
		return err
	}
	defer closeStream()

	resolver := fetch.NewResolver(fetch.NewGatewayFetcher(ipfsGatewayURL(), nil), cacheDir())

	loop := ingest.New(stream, st, resolver, p, spaceQueries, log)

	if settings.UI {
		return runWithUI(ctx, loop)
	}
	return loop.Run(ctx)
}

// bootstrapSchema seeds the meta-schema registry on a fresh store. It is
// safe to call on every run: bootstrap.Run's batch is idempotent.
func bootstrapSchema(ctx context.Context, p *planner.Planner, st store.Store) error {
	tx, err := st.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("ksink: bootstrap: begin tx: %w", err)
	}
	if err := bootstrap.Run(ctx, p, tx, schema.Builtin); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// preseedSpaces creates each listed address as a root space if it
// doesn't already exist, so deploy --spaces has something to scope
// space_queries against before the first block mentioning it arrives.
// Create is idempotent (ON CONFLICT DO NOTHING), so replaying this on
// every deploy run is safe.
func preseedSpaces(ctx context.Context, st store.Store, addresses []string) error {
	tx, err := st.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("ksink: preseed spaces: begin tx: %w", err)
	}
	for _, addr := range addresses {
		if err := tx.Spaces().Create(ctx, addr, addr, addr, true); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("ksink: preseed space %s: %w", addr, err)
		}
	}
	return tx.Commit(ctx)
}

// openStream builds the block-scoped event Stream the loop consumes.
// A live Substreams gRPC client is out of scope (spec.md §1); the only
// concrete Stream shipped is the newline-JSON replay file, wired up via
// --replay-file. Without it, run fails with a clear error rather than
// silently doing nothing.
func openStream(settings config.Settings) (substream.Stream, func(), error) {
	if flagReplayFile != "" {
		s, err := substream.NewFileStream(flagReplayFile)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}
	return nil, nil, fmt.Errorf(
		"ksink: no event source configured: pass --replay-file to replay a captured event log, " +
			"or supply a live substream.Stream implementation (a Substreams gRPC client is not bundled)")
}

// needsSetup reports whether any field ui.RunSetup knows how to prompt
// for is still empty after flag/env/config-file resolution.
func needsSetup(s config.Settings) bool {
	return s.SubstreamsEndpoint == "" || s.Package == "" || s.Module == "" || s.DatabaseURL == ""
}

// runInteractiveSetup prompts for any Settings fields missing after
// flag/env/config-file resolution, then persists the result so the
// next run doesn't ask again.
func runInteractiveSetup(partial config.Settings) (config.Settings, error) {
	filled, err := ui.RunSetup(partial)
	if err != nil {
		return config.Settings{}, fmt.Errorf("ksink: interactive setup: %w", err)
	}
	if err := config.Save(filled); err != nil {
		log.Warn("could not persist setup answers", "error", err)
	}
	return filled, nil
}

// runWithUI starts the terminal progress display and forwards the
// ingestion loop's outcome once the stream ends or the UI is quit.
func runWithUI(ctx context.Context, loop *ingest.Loop) error {
	ingestEvents := make(chan ingest.Event, 16)
	loop.Events = ingestEvents

	uiEvents := make(chan ui.Event, 16)
	go relayEvents(ingestEvents, uiEvents)

	errCh := make(chan error, 1)
	go func() {
		defer close(ingestEvents)
		errCh <- loop.Run(ctx)
	}()

	uiErr := ui.Run(uiEvents)
	runErr := <-errCh
	if runErr != nil {
		return runErr
	}
	return uiErr
}

// relayEvents translates ingest.Event onto ui.Event until ingestEvents
// closes (at which point the TUI sees its channel close and quits).
func relayEvents(ingestEvents <-chan ingest.Event, uiEvents chan<- ui.Event) {
	defer close(uiEvents)
	for e := range ingestEvents {
		uiEvents <- ui.Event{Kind: ui.EventKind(e.Kind), BlockNumber: e.BlockNumber, Message: e.Message}
	}
}

// logReplaySince parses since as a natural-language time expression and
// logs the resolved instant. It is an operator convenience only: mapping
// a wall-clock time back to a chain cursor/block number depends on
// chain-specific indexing this sink does not have, so the rewind itself
// is not performed here.
func logReplaySince(since string) {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	result, err := w.Parse(since, time.Now())
	if err != nil || result == nil {
		log.Warn("could not parse --replay-since, ignoring", "value", since)
		return
	}
	log.Info("replay-since resolved", "value", since, "time", result.Time)
}

func ipfsGatewayURL() string {
	if url := os.Getenv("KSINK_IPFS_GATEWAY"); url != "" {
		return url
	}
	return "https://ipfs.io/ipfs/"
}

func cacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".ksink-cache"
	}
	return filepath.Join(dir, "ksink", "ipfs")
}
