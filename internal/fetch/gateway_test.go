package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/entities-sink/ksink/internal/fetch"
)

func TestGatewayFetcherFetchesByCID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/cid-a", r.URL.Path)
		w.Write([]byte(`{"type":"document"}`))
	}))
	defer srv.Close()

	g := fetch.NewGatewayFetcher(srv.URL+"/", nil)
	data, err := g.Fetch(context.Background(), "cid-a")
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"document"}`, string(data))
}

func TestGatewayFetcherFailsOnNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	g := fetch.NewGatewayFetcher(srv.URL+"/", nil)
	_, err := g.Fetch(context.Background(), "missing-cid")
	require.Error(t, err)
}
