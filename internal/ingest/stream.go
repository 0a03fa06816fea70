package ingest

import (
	"context"
	"io"
	"time"

	"github.com/hyperjump/simstream/internal/models"
)

// StreamOptions bounds and paces an EventStream.
type StreamOptions struct {
	// MaxEvents caps the number of events yielded. Zero or less yields none.
	MaxEvents int
	// Delay is the pause between successive events.
	Delay time.Duration
}

// EventStream yields events from a table one at a time. It is finite and cannot be rewound.
type EventStream struct {
	table   *Table
	cols    []int
	opts    StreamOptions
	emitted int
	done    bool
}

// OpenEventStream opens path and checks for the event_id and text columns
// before any event is read.
func OpenEventStream(path string, opts StreamOptions) (*EventStream, error) {
	t, err := openTable(path, "stream file")
	if err != nil {
		return nil, err
	}
	cols, err := t.Columns("event_id", "text")
	if err != nil {
		t.Close()
		return nil, err
	}
	return &EventStream{table: t, cols: cols, opts: opts}, nil
}

// Next returns the next event, or io.EOF once MaxEvents events have been
// returned or the input is exhausted. From the second event on it first waits
// for Delay, returning ctx.Err() if the context ends during the wait.
func (s *EventStream) Next(ctx context.Context) (models.Event, error) {
	if s.done || s.emitted >= s.opts.MaxEvents {
		s.done = true
		return models.Event{}, io.EOF
	}
	rec, err := s.table.Next()
	if err == io.EOF {
		s.done = true
		return models.Event{}, io.EOF
	}
	if err != nil {
		return models.Event{}, err
	}

	if s.emitted > 0 && s.opts.Delay > 0 {
		timer := time.NewTimer(s.opts.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return models.Event{}, ctx.Err()
		case <-timer.C:
		}
	}

	s.emitted++
	return models.Event{
		EventID: field(rec, s.cols[0]),
		Text:    field(rec, s.cols[1]),
	}, nil
}

// Emitted reports how many events have been returned so far.
func (s *EventStream) Emitted() int {
	return s.emitted
}

// Close releases the underlying file.
func (s *EventStream) Close() error {
	return s.table.Close()
}
