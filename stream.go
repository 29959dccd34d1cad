/*
Copyright 2025 eatmoreapple

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package augsql

import (
	"context"
	"database/sql"

	"github.com/augsql/augsql/augerr"
	"github.com/augsql/augsql/value"
)

// DefaultBatchSize is the bounded channel capacity a Stream uses when the
// caller doesn't request a different one (§4.J).
const DefaultBatchSize = 100

// streamItem is one slot sent through a Stream's channel: either a
// decoded row or a terminal error.
type streamItem struct {
	row *value.OrderedMap
	err error
}

// Stream is an iterator over driver rows, implemented as a bounded
// channel a producer goroutine feeds from a live *sql.Rows cursor (§4.J):
// a push-based bounded channel, rather than a pull-everything
// range-over-func iterator keyed to a single destination type, so a
// caller can apply backpressure and the producer can be abandoned
// mid-stream by simply no longer pulling.
type Stream struct {
	rows      *sql.Rows
	ch        chan streamItem
	started   bool
	exhausted bool
	lastErr   error
	cancel    context.CancelFunc
}

// newStream starts the producer goroutine and returns the Stream. rows
// must not be used by any other caller once handed to newStream.
func newStream(ctx context.Context, rows *sql.Rows, batchSize int) *Stream {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &Stream{rows: rows, ch: make(chan streamItem, batchSize), cancel: cancel}

	go func() {
		defer close(s.ch)
		defer rows.Close()
		for rows.Next() {
			row, err := value.DecodeRow(rows)
			select {
			case s.ch <- streamItem{row: row, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
		if err := rows.Err(); err != nil {
			select {
			case s.ch <- streamItem{err: augerr.Wrap(augerr.KindQuery, "augsql: stream cursor failed", err)}:
			case <-ctx.Done():
			}
		}
	}()

	return s
}

// Next pulls the next row. ok is false once the stream is exhausted; a
// non-nil error (also retrievable afterwards via GetLastError) means the
// producer hit a cursor error and the stream has terminated.
func (s *Stream) Next() (row *value.OrderedMap, ok bool, err error) {
	s.started = true
	if s.exhausted {
		return nil, false, nil
	}
	item, open := <-s.ch
	if !open {
		s.exhausted = true
		return nil, false, nil
	}
	if item.err != nil {
		s.exhausted = true
		s.lastErr = item.err
		return nil, false, item.err
	}
	return item.row, true, nil
}

// GetLastError returns the diagnostic error recorded by the most recent
// terminal Next call, or nil if the stream hasn't failed.
func (s *Stream) GetLastError() error {
	return s.lastErr
}

// Rewind is only permitted before the first pull (§4.J); a stream that
// has already yielded at least one item cannot be rewound since its
// producer has already advanced the underlying cursor.
func (s *Stream) Rewind() error {
	if s.started {
		return augerr.New(augerr.KindNotPermitted, "augsql: stream cannot be rewound after the first pull")
	}
	return nil
}

// Close abandons the stream, signalling the producer to stop and
// releasing the underlying cursor even if it hasn't been exhausted.
func (s *Stream) Close() {
	s.cancel()
	for range s.ch {
		// drain until the producer observes cancellation and closes ch.
	}
}
