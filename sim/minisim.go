// MINISIM: two-pass miss-ratio-curve estimation by running the actual
// target eviction policy at every candidate size over one spatially sampled
// sub-trace. Pass 1 counts and calibrates the sampler; pass 2 replays the
// sampled stream through one scaled-down cache per candidate size, fanned
// out across a worker pool.

package sim

import (
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// Sampling above this rate stops being worth the accuracy loss; such runs
// simulate the full trace instead.
const miniSimMaxSampleRate = 0.5

// MiniSimProfiler runs the MINISIM strategy over one resettable trace.
type MiniSimProfiler struct {
	profilerBase
	minisim MiniSimParams
}

// NewMiniSimProfiler builds a MINISIM profiler from a validated parameter
// snapshot.
func NewMiniSimProfiler(params ProfilerParams, trace TraceSource) *MiniSimProfiler {
	return &MiniSimProfiler{
		profilerBase: profilerBase{
			params: params,
			trace:  trace,
			label:  fmt.Sprintf("MINISIM(FIX_RATE,%g,threads=%d)", params.MiniSim.Rate, params.MiniSim.Threads),
		},
		minisim: params.MiniSim,
	}
}

// cacheRun is the thread-confined simulation state for one candidate size.
type cacheRun struct {
	cache     Cache
	miss      uint64
	missBytes uint64
}

// Run executes both passes. No-op once completed.
func (p *MiniSimProfiler) Run() error {
	if p.state == stateCompleted {
		return nil
	}
	if NewCacheFunc == nil {
		return fmt.Errorf("no eviction policies registered; import sim/cache")
	}
	p.state = stateRunning

	sizes, err := p.resolveSizes()
	if err != nil {
		return err
	}

	rate := p.minisim.Rate
	if rate > miniSimMaxSampleRate && rate < 1 {
		logrus.Debugf("%s: sample rate %g above %g, simulating the full trace", p.label, rate, miniSimMaxSampleRate)
		rate = 1
	}
	var sampler *SpatialSampler
	if rate < 1 {
		sampler, err = NewSpatialSampler(rate, 0)
		if err != nil {
			return err
		}
	}

	// Pass 1: trace-wide totals and sampler calibration.
	var nReq, sampledCnt uint64
	var reqBytes, sampledBytes uint64
	for {
		r, rerr := p.trace.ReadOne()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return fmt.Errorf("reading trace %s: %w", p.trace.Name(), rerr)
		}
		nReq++
		reqBytes += r.Size
		if sampler == nil || sampler.Sample(r.ID) {
			sampledCnt++
			sampledBytes += r.Size
		}
	}

	if err := p.trace.Reset(); err != nil {
		return fmt.Errorf("resetting trace %s for replay: %w", p.trace.Name(), err)
	}

	// Pass 2: materialize the sampled stream once; it is broadcast
	// read-only to every cache instance, so no locking on the stream.
	reqs := make([]Request, 0, sampledCnt)
	for {
		r, rerr := p.trace.ReadOne()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return fmt.Errorf("replaying trace %s: %w", p.trace.Name(), rerr)
		}
		if sampler == nil || sampler.Sample(r.ID) {
			reqs = append(reqs, *r)
		}
	}
	if uint64(len(reqs)) != sampledCnt {
		return fmt.Errorf("trace %s replay diverged: pass 1 sampled %d requests, pass 2 sampled %d",
			p.trace.Name(), sampledCnt, len(reqs))
	}

	// One cache per candidate size, scaled down to the sampled sub-trace.
	runs := make([]cacheRun, len(sizes))
	for i, size := range sizes {
		capacity := uint64(float64(size) * rate)
		if capacity == 0 {
			capacity = 1
		}
		c, cerr := NewCacheFunc(p.params.Policy, capacity)
		if cerr != nil {
			return cerr
		}
		runs[i] = cacheRun{cache: c}
	}

	// The cache-instance dimension is embarrassingly parallel: each
	// instance's mutable state is confined to exactly one worker.
	threads := p.minisim.Threads
	if threads < 1 {
		threads = 1
	}
	if threads > len(runs) {
		threads = len(runs)
	}
	var wg sync.WaitGroup
	for w := 0; w < threads; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < len(runs); i += threads {
				run := &runs[i]
				for k := range reqs {
					r := &reqs[k]
					if !run.cache.Get(r) {
						run.miss++
						run.missBytes += r.Size
					}
				}
			}
		}(w)
	}
	wg.Wait()

	// Rescale sampled-trace misses back into full-trace hit estimates.
	curve := NewCumulativeCurve(sizes)
	curve.WSSRatios = p.params.WSSRatios
	curve.NumReq = nReq
	curve.ReqBytes = reqBytes
	for i := range runs {
		hits := float64(nReq) - float64(runs[i].miss)/rate
		if hits < 0 {
			hits = 0
		}
		hitBytes := float64(reqBytes) - float64(runs[i].missBytes)/rate
		if hitBytes < 0 {
			hitBytes = 0
		}
		curve.HitCount[i] = hits
		curve.HitBytes[i] = hitBytes
		runs[i].cache = nil // instance state is dead once stats are extracted
	}
	p.curve = curve
	p.state = stateCompleted

	logrus.Debugf("%s: %d requests, %d sampled, %d cache instances on %d workers",
		p.label, nReq, sampledCnt, len(sizes), threads)
	return nil
}
