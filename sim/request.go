// Defines the Request struct that models a single object access in a trace,
// and the TraceSource contract the profilers consume.

package sim

import (
	"fmt"
)

// Op is the operation kind carried by a trace access.
type Op string

const (
	OpRead   Op = "read"
	OpWrite  Op = "write"
	OpDelete Op = "delete"
)

// Request models one access in a trace. Requests are created by a
// TraceSource and treated as read-only by everything downstream; the
// profilers never retain a Request beyond the step that processes it.
type Request struct {
	ID    uint64 // object identity
	Size  uint64 // object size in bytes
	Time  int64  // logical time of the access (position in the trace)
	Op    Op
	Valid bool
}

// This method returns a human-readable string representation of a Request.
func (r Request) String() string {
	return fmt.Sprintf("Request: (ID: %d, Size: %d, Time: %d, Op: %s)", r.ID, r.Size, r.Time, r.Op)
}

// TraceSource produces a sequence of Requests. Implementations live in
// sim/workload; the profiler core never parses raw trace bytes itself.
//
// ReadOne returns io.EOF once the trace is exhausted. Reset rewinds to the
// start; a TraceSource MUST replay the exact same request sequence after
// Reset, since the two-pass profiler depends on bit-identical ordering
// between passes.
type TraceSource interface {
	ReadOne() (*Request, error)
	Reset() error
	Name() string
}
