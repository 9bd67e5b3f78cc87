package sim_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrc-sim/mrc-sim/sim"
	"github.com/mrc-sim/mrc-sim/sim/workload"
)

func shardsParams(spec string, sizes []uint64) sim.ProfilerParams {
	p, err := sim.ParseShardsParams(spec)
	if err != nil {
		panic(err)
	}
	set, err := sim.NewCandidateSizeSet(sizes)
	if err != nil {
		panic(err)
	}
	return sim.ProfilerParams{Kind: sim.ProfilerSHARDS, Shards: p, Sizes: set}
}

func runShards(t *testing.T, spec string, sizes []uint64, trace sim.TraceSource) *sim.CumulativeCurve {
	t.Helper()
	prof := sim.NewShardsProfiler(shardsParams(spec, sizes), trace)
	require.NoError(t, prof.Run())
	curve, err := prof.Curve()
	require.NoError(t, err)
	return curve
}

// bruteForceCurve computes, without sampling, the cumulative hits per
// candidate size from exact reuse distances (bytes of distinct objects
// accessed since the previous access).
func bruteForceCurve(reqs []sim.Request, sizes sim.CandidateSizeSet) ([]float64, []float64) {
	hits := make([]float64, len(sizes))
	hitBytes := make([]float64, len(sizes))
	last := make(map[uint64]int)
	for i := range reqs {
		if prev, ok := last[reqs[i].ID]; ok {
			seen := make(map[uint64]bool)
			var dist uint64
			for j := prev + 1; j < i; j++ {
				if !seen[reqs[j].ID] {
					seen[reqs[j].ID] = true
					dist += reqs[j].Size
				}
			}
			if bucket, ok := sizes.BucketFor(float64(dist)); ok {
				hits[bucket]++
				hitBytes[bucket] += float64(reqs[i].Size)
			}
		}
		last[reqs[i].ID] = i
	}
	for i := 1; i < len(sizes); i++ {
		hits[i] += hits[i-1]
		hitBytes[i] += hitBytes[i-1]
	}
	return hits, hitBytes
}

func TestShards_ExactMode_HandTrace(t *testing.T) {
	// A,B,C,A,B,A with uniform size 1: reuse distances 2, 2, 1.
	trace := workload.NewUniformTrace("hand", []uint64{1, 2, 3, 1, 2, 1}, 1)
	curve := runShards(t, "FIX_RATE,1", []uint64{1, 2, 3}, trace)

	assert.Equal(t, []float64{1, 3, 3}, curve.HitCount)
	assert.InDelta(t, 5.0/6.0, curve.MissRatio(0), 1e-12)
	assert.InDelta(t, 0.5, curve.MissRatio(1), 1e-12)
	assert.InDelta(t, 0.5, curve.MissRatio(2), 1e-12)
}

func TestShards_ExactMode_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	reqs := make([]sim.Request, 3000)
	for i := range reqs {
		id := uint64(rng.Intn(200) + 1)
		reqs[i] = sim.Request{ID: id, Size: id%7 + 1}
	}
	sizes := []uint64{4, 16, 64, 256, 1024}
	trace := workload.NewSliceTrace("random", append([]sim.Request(nil), reqs...))

	curve := runShards(t, "FIX_RATE,1", sizes, trace)
	wantHits, wantBytes := bruteForceCurve(reqs, curve.Sizes)

	for i := range curve.Sizes {
		assert.InDelta(t, wantHits[i], curve.HitCount[i], 1e-6, "hit count at size %d", curve.Sizes[i])
		assert.InDelta(t, wantBytes[i], curve.HitBytes[i], 1e-6, "hit bytes at size %d", curve.Sizes[i])
	}
}

func TestShards_ColdStart_AllMisses(t *testing.T) {
	ids := make([]uint64, 500)
	for i := range ids {
		ids[i] = uint64(i + 1)
	}
	trace := workload.NewUniformTrace("cold", ids, 1)
	curve := runShards(t, "FIX_RATE,1", []uint64{1, 10, 100, 1000}, trace)

	for i := range curve.Sizes {
		assert.Equal(t, 1.0, curve.MissRatio(i), "no reuse means a miss at every size")
		assert.Equal(t, 1.0, curve.ByteMissRatio(i))
	}
}

func TestShards_CacheHoldsWorkingSet_OnlyCompulsoryMisses(t *testing.T) {
	// 4 distinct objects of size 1, re-accessed many times; WSS = 4.
	ids := []uint64{1, 2, 3, 4}
	var seq []uint64
	for round := 0; round < 25; round++ {
		seq = append(seq, ids...)
	}
	trace := workload.NewUniformTrace("wss", seq, 1)
	curve := runShards(t, "FIX_RATE,1", []uint64{1, 2, 4}, trace)

	nReq := float64(len(seq))
	assert.InDelta(t, 4.0/nReq, curve.MissRatio(2), 1e-12,
		"a cache covering the working set leaves only compulsory misses")
}

func TestShards_RunIsIdempotent(t *testing.T) {
	trace := workload.NewUniformTrace("hand", []uint64{1, 2, 3, 1, 2, 1}, 1)
	prof := sim.NewShardsProfiler(shardsParams("FIX_RATE,1", []uint64{1, 2, 3}), trace)

	require.NoError(t, prof.Run())
	first, err := prof.Curve()
	require.NoError(t, err)
	snapshot := append([]float64(nil), first.HitCount...)

	require.NoError(t, prof.Run(), "second run must be a no-op")
	second, err := prof.Curve()
	require.NoError(t, err)
	assert.Equal(t, snapshot, second.HitCount)
}

func TestShards_ResultsBeforeRunAreErrors(t *testing.T) {
	trace := workload.NewUniformTrace("hand", []uint64{1, 2}, 1)
	prof := sim.NewShardsProfiler(shardsParams("FIX_RATE,1", []uint64{1}), trace)

	_, err := prof.Curve()
	assert.Error(t, err)
	assert.Error(t, prof.Report(""))
}

func TestShards_UnsampledAdjustment(t *testing.T) {
	// All-unique trace: every sampled access is a cold miss, so the entire
	// curve equals the smallest-bucket adjustment n_req - sampled_cnt.
	const n = 1000
	const salt = 42
	ids := make([]uint64, n)
	for i := range ids {
		ids[i] = uint64(i + 1)
	}
	trace := workload.NewUniformTrace("unique", ids, 1)
	curve := runShards(t, "FIX_RATE,0.5,42", []uint64{10, 100}, trace)

	sampler, err := sim.NewSpatialSampler(0.5, salt)
	require.NoError(t, err)
	var sampled float64
	for _, id := range ids {
		if sampler.Sample(id) {
			sampled++
		}
	}
	assert.Equal(t, float64(n)-sampled, curve.HitCount[0])
	assert.Equal(t, float64(n)-sampled, curve.HitCount[1])
}

func TestShards_FixedSize_StaysBoundedAndSane(t *testing.T) {
	zipf, err := workload.NewZipfTrace(workload.ZipfConfig{
		Seed: 1, NumRequests: 20000, NumObjects: 5000, Skew: 1.2, BaseSize: 1,
	})
	require.NoError(t, err)
	curve := runShards(t, "FIX_SIZE,256,7", []uint64{16, 64, 256, 1024, 4096}, zipf)

	for i := range curve.Sizes {
		mr := curve.MissRatio(i)
		assert.GreaterOrEqual(t, mr, 0.0)
		assert.LessOrEqual(t, mr, 1.0)
		bmr := curve.ByteMissRatio(i)
		assert.GreaterOrEqual(t, bmr, 0.0)
		assert.LessOrEqual(t, bmr, 1.0)
		if i > 0 {
			assert.GreaterOrEqual(t, curve.HitCount[i], curve.HitCount[i-1], "cumulative hits must be monotone")
			assert.GreaterOrEqual(t, curve.HitBytes[i], curve.HitBytes[i-1])
		}
	}
	assert.False(t, math.IsNaN(curve.MissRatio(0)))
}

func TestShards_FixedRate_MonotoneAndBounded(t *testing.T) {
	zipf, err := workload.NewZipfTrace(workload.ZipfConfig{
		Seed: 5, NumRequests: 30000, NumObjects: 3000, Skew: 1.15, BaseSize: 1, SizeSpread: 8,
	})
	require.NoError(t, err)
	curve := runShards(t, "FIX_RATE,0.1,42", []uint64{64, 256, 1024, 4096, 16384}, zipf)

	for i := range curve.Sizes {
		assert.GreaterOrEqual(t, curve.MissRatio(i), 0.0)
		assert.LessOrEqual(t, curve.MissRatio(i), 1.0)
		if i > 0 {
			assert.GreaterOrEqual(t, curve.HitCount[i], curve.HitCount[i-1])
			assert.GreaterOrEqual(t, curve.HitBytes[i], curve.HitBytes[i-1])
		}
	}
}
