// Package sim provides the cache-replacement simulation and
// miss-ratio-curve (MRC) profiling engine.
//
// # Reading Guide
//
// Start with these three files to understand the profiling kernel:
//   - request.go: the Request access record and the TraceSource contract
//   - shards.go: single-pass sampled stack-distance profiling
//   - minisim.go: two-pass sampled multi-cache simulation
//
// # Architecture
//
// The sim package defines interfaces and the profiling strategies;
// implementations of the external collaborators live in sub-packages:
//   - sim/cache/: eviction policies (LRU, FIFO, LFU, ARC, Clock, Sieve, S3FIFO)
//   - sim/workload/: trace sources (synthetic Zipf, CSV replay, in-memory)
//
// sim/cache registers its policy factory via an init() function that sets
// the package-level NewCacheFunc variable.
//
// # Key Pieces
//
//   - TraceSource: pull-based request iterator with deterministic Reset
//   - Cache: the pluggable eviction-policy contract driven by MINISIM
//   - ReuseIndex: splay tree computing byte-weighted stack distances
//   - MinValueMap: bounded top-K sampler behind fixed-sample-size SHARDS
//   - SpatialSampler: salted-hash admission into a sampled sub-trace
//   - Profiler: the Created → Running → Completed run state machine
//   - CumulativeCurve: per-size cumulative hit statistics and reporting
package sim
