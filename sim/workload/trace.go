// Package workload provides TraceSource implementations: in-memory slices,
// deterministic synthetic Zipf streams, and CSV trace replay.
package workload

import (
	"io"

	"github.com/mrc-sim/mrc-sim/sim"
)

// SliceTrace replays a materialized request sequence. Reset is free, which
// makes it the natural source for tests and for hand-built traces.
type SliceTrace struct {
	name string
	reqs []sim.Request
	pos  int
}

// NewSliceTrace wraps a request slice. Requests with a zero Time get their
// trace position as logical time.
func NewSliceTrace(name string, reqs []sim.Request) *SliceTrace {
	for i := range reqs {
		if reqs[i].Time == 0 {
			reqs[i].Time = int64(i + 1)
		}
		if reqs[i].Op == "" {
			reqs[i].Op = sim.OpRead
		}
		reqs[i].Valid = true
	}
	return &SliceTrace{name: name, reqs: reqs}
}

// NewUniformTrace builds a slice trace from object ids with one fixed
// object size, the common shape of hand-constructed test traces.
func NewUniformTrace(name string, ids []uint64, size uint64) *SliceTrace {
	reqs := make([]sim.Request, len(ids))
	for i, id := range ids {
		reqs[i] = sim.Request{ID: id, Size: size}
	}
	return NewSliceTrace(name, reqs)
}

func (t *SliceTrace) ReadOne() (*sim.Request, error) {
	if t.pos >= len(t.reqs) {
		return nil, io.EOF
	}
	r := &t.reqs[t.pos]
	t.pos++
	return r, nil
}

func (t *SliceTrace) Reset() error {
	t.pos = 0
	return nil
}

func (t *SliceTrace) Name() string { return t.name }

// Len returns the number of requests in the trace.
func (t *SliceTrace) Len() int { return len(t.reqs) }
