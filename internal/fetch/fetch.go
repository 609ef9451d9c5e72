// Package fetch resolves an entry URI to its action-document bytes
// (spec.md §4.8): `data:application/json;base64,...` is decoded
// inline, `ipfs://<cid>` is fetched through an external Fetcher with
// up to 3 attempts and cached on local disk at a deterministic path.
// Any other scheme fails with sinkerr.ErrUnsupportedURI.
package fetch

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cenkalti/backoff/v4"

	"github.com/entities-sink/ksink/internal/sinkerr"
)

const ipfsMaxAttempts = 3

// Fetcher retrieves the raw bytes behind an IPFS CID. GatewayFetcher
// (gateway.go) is the concrete default; tests supply their own.
type Fetcher interface {
	Fetch(ctx context.Context, cid string) ([]byte, error)
}

// Resolver turns an entry URI into document bytes, caching IPFS
// fetches on local disk so a replayed block doesn't re-fetch.
type Resolver struct {
	Fetcher  Fetcher
	CacheDir string
}

// NewResolver builds a Resolver backed by fetcher, caching under
// cacheDir (created lazily on first IPFS fetch).
func NewResolver(fetcher Fetcher, cacheDir string) *Resolver {
	return &Resolver{Fetcher: fetcher, CacheDir: cacheDir}
}

// Resolve dispatches on uri's scheme.
func (r *Resolver) Resolve(ctx context.Context, uri string) ([]byte, error) {
	switch {
	case strings.HasPrefix(uri, "data:application/json;base64,"):
		return decodeDataURI(uri)
	case strings.HasPrefix(uri, "ipfs://"):
		cid := strings.TrimPrefix(uri, "ipfs://")
		return r.resolveIPFS(ctx, cid)
	default:
		return nil, fmt.Errorf("%w: %s", sinkerr.ErrUnsupportedURI, uri)
	}
}

func decodeDataURI(uri string) ([]byte, error) {
	payload := strings.TrimPrefix(uri, "data:application/json;base64,")
	// URL-safe alphabet, matching original_source/src/triples.rs's
	// decode_from_entry (base64::engine::general_purpose::URL_SAFE).
	decoded, err := base64.URLEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("fetch: decode data uri: %w", err)
	}
	return decoded, nil
}

func (r *Resolver) resolveIPFS(ctx context.Context, cid string) ([]byte, error) {
	cachePath := r.cachePath(cid)
	if cachePath != "" {
		if cached, err := os.ReadFile(cachePath); err == nil {
			return cached, nil
		}
	}

	var data []byte
	var lastErr error
	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), ipfsMaxAttempts-1)
	err := backoff.Retry(func() error {
		var fetchErr error
		data, fetchErr = r.Fetcher.Fetch(ctx, cid)
		lastErr = fetchErr
		return fetchErr
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: cid %s after %d attempts: %v", sinkerr.ErrIPFSUnavailable, cid, ipfsMaxAttempts, lastErr)
	}
	r.writeCache(cachePath, data)
	return data, nil
}

func (r *Resolver) cachePath(cid string) string {
	if r.CacheDir == "" {
		return ""
	}
	return filepath.Join(r.CacheDir, cid+".json")
}

func (r *Resolver) writeCache(path string, data []byte) {
	if path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	_ = os.WriteFile(path, data, 0o644)
}
