package substream

import (
	"context"
	"io"
)

// sliceStream replays a fixed sequence of events, then reports
// io.EOF. It is the test double used throughout internal/ingest's
// test suite in place of a real Substreams connection.
type sliceStream struct {
	events []Event
	pos    int
}

// NewSliceStream returns a Stream that replays events in order, then
// returns io.EOF.
func NewSliceStream(events []Event) Stream {
	return &sliceStream{events: events}
}

func (s *sliceStream) Recv(ctx context.Context) (Event, error) {
	if err := ctx.Err(); err != nil {
		return Event{}, err
	}
	if s.pos >= len(s.events) {
		return Event{}, io.EOF
	}
	e := s.events[s.pos]
	s.pos++
	return e, nil
}

func (s *sliceStream) Close() error { return nil }
