package substream

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// fileStream replays a newline-delimited JSON file of Events, one per
// line, then returns io.EOF. It is the concrete Stream cmd/ksink's
// --replay-file flag wires up for local development and debugging a
// captured block sequence without a live Substreams endpoint — the
// gRPC client itself stays out of scope (spec.md §1).
type fileStream struct {
	file    *os.File
	scanner *bufio.Scanner
}

// NewFileStream opens path and returns a Stream over its newline-JSON
// Event records.
func NewFileStream(path string) (Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("substream: open replay file: %w", err)
	}
	return &fileStream{file: f, scanner: bufio.NewScanner(f)}, nil
}

func (s *fileStream) Recv(ctx context.Context) (Event, error) {
	if err := ctx.Err(); err != nil {
		return Event{}, err
	}
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return Event{}, fmt.Errorf("substream: read replay file: %w", err)
		}
		return Event{}, io.EOF
	}

	var e Event
	if err := json.Unmarshal(s.scanner.Bytes(), &e); err != nil {
		return Event{}, fmt.Errorf("substream: decode replay event: %w", err)
	}
	return e, nil
}

func (s *fileStream) Close() error {
	return s.file.Close()
}
