// SHARDS: single-pass miss-ratio-curve estimation via spatially hashed
// reuse-distance sampling. Stack distances are computed exactly on the
// sampled sub-trace with the splay-tree reuse index and rescaled by the
// (possibly adaptive) sampling rate.

package sim

import (
	"fmt"
	"io"
	"math"

	"github.com/sirupsen/logrus"
)

// ShardsProfiler runs the SHARDS strategy over one trace. Single-threaded:
// stack-distance computation requires strict temporal ordering of reuse
// index mutations.
type ShardsProfiler struct {
	profilerBase
	shards ShardsParams
}

// NewShardsProfiler builds a SHARDS profiler from a validated parameter
// snapshot.
func NewShardsProfiler(params ProfilerParams, trace TraceSource) *ShardsProfiler {
	mode := fmt.Sprintf("FIX_RATE,%g", params.Shards.Rate)
	if params.Shards.FixSize {
		mode = fmt.Sprintf("FIX_SIZE,%d", params.Shards.SampleSize)
	}
	return &ShardsProfiler{
		profilerBase: profilerBase{
			params: params,
			trace:  trace,
			label:  fmt.Sprintf("SHARDS(%s)", mode),
		},
		shards: params.Shards,
	}
}

// Run executes the single profiling pass. No-op once completed.
func (p *ShardsProfiler) Run() error {
	if p.state == stateCompleted {
		return nil
	}
	p.state = stateRunning

	sizes, err := p.resolveSizes()
	if err != nil {
		return err
	}

	// Per-bucket (non-cumulative) hit contributions; folded into the
	// cumulative curve after the pass.
	hits := make([]float64, len(sizes))
	hitBytes := make([]float64, len(sizes))

	// Run-scoped structures, torn down at completion.
	index := NewReuseIndex()
	lastAccess := make(map[uint64]int64)
	var topK *MinValueMap
	var threshold uint64 = math.MaxUint64
	if p.shards.FixSize {
		topK = NewMinValueMap(p.shards.SampleSize)
	} else if p.shards.Rate < 1 {
		threshold = uint64(p.shards.Rate * maxHashF)
	}

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
		now := int64(nReq)

		score := SaltedHash(r.ID, p.shards.Salt)
		var rate float64
		if p.shards.FixSize {
			evictedKey, evicted, admitted := topK.Insert(r.ID, score)
			if evicted {
				// The displaced object leaves the sample entirely: its reuse
				// index entry and last access are forgotten.
				if tPrev, ok := lastAccess[evictedKey]; ok {
					index.Erase(tPrev)
					delete(lastAccess, evictedKey)
				}
			}
			if !admitted {
				continue
			}
			// Effective rate shrinks as the top-K threshold tightens; read
			// it fresh for every rescale.
			rate = float64(topK.MaxValue()) / maxHashF
		} else {
			if score > threshold {
				continue
			}
			rate = p.shards.Rate
		}

		sampledCnt++
		sampledBytes += r.Size
		if tPrev, ok := lastAccess[r.ID]; ok {
			dist, found := index.DistanceSince(tPrev)
			if !found {
				return fmt.Errorf("reuse index lost entry for object %d at time %d", r.ID, tPrev)
			}
			index.Erase(tPrev)
			if i, ok := sizes.BucketFor(float64(dist) / rate); ok {
				hits[i] += 1 / rate
				hitBytes[i] += float64(r.Size) / rate
			}
		}
		index.Insert(now, r.Size)
		lastAccess[r.ID] = now
	}

	// Unsampled requests count as hits at the smallest candidate size.
	hits[0] += float64(nReq - sampledCnt)
	hitBytes[0] += float64(reqBytes - sampledBytes)

	curve := NewCumulativeCurve(sizes)
	curve.WSSRatios = p.params.WSSRatios
	curve.NumReq = nReq
	curve.ReqBytes = reqBytes
	var cumHits, cumBytes float64
	for i := range sizes {
		cumHits += hits[i]
		cumBytes += hitBytes[i]
		curve.HitCount[i] = cumHits
		curve.HitBytes[i] = cumBytes
	}
	p.curve = curve
	p.state = stateCompleted

	logrus.Debugf("%s: %d requests, %d sampled, %d objects left in reuse index",
		p.label, nReq, sampledCnt, index.Len())
	return nil
}
