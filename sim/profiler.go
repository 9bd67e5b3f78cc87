// Profiler is the shared shape of the MRC profiling strategies: a
// Created → Running → Completed state machine over one trace, producing a
// CumulativeCurve. SHARDS and MINISIM embed profilerBase and supply the
// strategy-specific pass in their Run methods.

package sim

import (
	"fmt"
	"io"
)

type profilerState int

const (
	stateCreated profilerState = iota
	stateRunning
	stateCompleted
)

// Profiler estimates a miss-ratio curve over a trace for a set of candidate
// cache sizes.
type Profiler interface {
	// Run executes the profiling pass(es). Idempotent once completed:
	// repeat calls are no-ops and return nil.
	Run() error
	// Curve returns the finalized cumulative curve; it errors before Run
	// has completed rather than exposing partial data.
	Curve() (*CumulativeCurve, error)
	// Report writes the curve to path (stdout when empty).
	Report(path string) error
}

// NewProfiler constructs the strategy selected by params over the trace.
func NewProfiler(params ProfilerParams, trace TraceSource) (Profiler, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	switch params.Kind {
	case ProfilerSHARDS:
		return NewShardsProfiler(params, trace), nil
	case ProfilerMiniSim:
		return NewMiniSimProfiler(params, trace), nil
	default:
		return nil, fmt.Errorf("unknown profiler type %q", params.Kind)
	}
}

// profilerBase carries the state machine, the parameter snapshot and the
// result curve shared by both strategies.
type profilerBase struct {
	state  profilerState
	params ProfilerParams
	trace  TraceSource
	curve  *CumulativeCurve
	label  string // profiler description for the report header
}

func (p *profilerBase) ensureCompleted() error {
	if p.state != stateCompleted {
		return fmt.Errorf("profiler %s has not completed its run", p.label)
	}
	return nil
}

// Curve implements the completed-only result accessor.
func (p *profilerBase) Curve() (*CumulativeCurve, error) {
	if err := p.ensureCompleted(); err != nil {
		return nil, err
	}
	return p.curve, nil
}

// Report writes the finalized curve; valid only once the run completed.
func (p *profilerBase) Report(path string) error {
	if err := p.ensureCompleted(); err != nil {
		return err
	}
	return p.curve.WriteReportFile(path, p.label, p.trace.Name(), p.params.Policy)
}

// resolveSizes fixes the candidate size axis. When the run is configured by
// WSS ratios this costs one extra scan of the trace (plus a reset) to
// measure the working set size.
func (p *profilerBase) resolveSizes() (CandidateSizeSet, error) {
	if len(p.params.Sizes) > 0 {
		return p.params.Sizes, nil
	}
	wss, err := workingSetSize(p.trace)
	if err != nil {
		return nil, err
	}
	if err := p.trace.Reset(); err != nil {
		return nil, fmt.Errorf("resetting trace after WSS scan: %w", err)
	}
	sizes, err := SizesFromWSSRatios(p.params.WSSRatios, wss)
	if err != nil {
		return nil, err
	}
	return sizes, nil
}

// workingSetSize scans the trace and sums the sizes of distinct objects.
func workingSetSize(trace TraceSource) (uint64, error) {
	seen := make(map[uint64]struct{})
	var wss uint64
	for {
		r, err := trace.ReadOne()
		if err == io.EOF {
			return wss, nil
		}
		if err != nil {
			return 0, err
		}
		if _, ok := seen[r.ID]; !ok {
			seen[r.ID] = struct{}{}
			wss += r.Size
		}
	}
}
