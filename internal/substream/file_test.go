package substream_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/entities-sink/ksink/internal/substream"
)

func writeReplayFile(t *testing.T, events []substream.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "replay.jsonl")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, e := range events {
		require.NoError(t, enc.Encode(e))
	}
	return path
}

func TestFileStreamReplaysEventsThenEOF(t *testing.T) {
	events := []substream.Event{
		{Data: &substream.BlockScopedData{Clock: substream.Clock{Number: 1}, Cursor: "c1"}},
		{Data: &substream.BlockScopedData{Clock: substream.Clock{Number: 2}, Cursor: "c2"}},
	}
	path := writeReplayFile(t, events)

	s, err := substream.NewFileStream(path)
	require.NoError(t, err)
	defer s.Close()

	e1, err := s.Recv(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(1), e1.Data.Clock.Number)

	e2, err := s.Recv(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(2), e2.Data.Clock.Number)

	_, err = s.Recv(context.Background())
	require.True(t, errors.Is(err, io.EOF))
}

func TestNewFileStreamFailsOnMissingFile(t *testing.T) {
	_, err := substream.NewFileStream(filepath.Join(t.TempDir(), "missing.jsonl"))
	require.Error(t, err)
}
