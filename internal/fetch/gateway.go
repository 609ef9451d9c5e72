package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// GatewayFetcher is the concrete Fetcher cmd/ksink wires up by default:
// an HTTP client against a public or operator-supplied IPFS gateway
// (spec.md §6's "out of scope... IPFS/HTTP document fetcher" names
// this as a thin concrete collaborator, not just an interface).
type GatewayFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewGatewayFetcher builds a GatewayFetcher against baseURL (e.g.
// "https://ipfs.network.thegraph.com/api/v0/cat?arg="). A zero-value
// http.Client with a conservative per-request timeout is used if client
// is nil.
func NewGatewayFetcher(baseURL string, client *http.Client) *GatewayFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &GatewayFetcher{BaseURL: baseURL, Client: client}
}

// Fetch issues one GET against BaseURL+cid. It does not itself retry —
// Resolver's backoff loop is responsible for that — so a single
// non-2xx response or transport error simply returns an error.
func (g *GatewayFetcher) Fetch(ctx context.Context, cid string) ([]byte, error) {
	url := g.BaseURL + cid
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: gateway returned %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch: read gateway response: %w", err)
	}
	return data, nil
}
