package sim_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrc-sim/mrc-sim/sim"
	"github.com/mrc-sim/mrc-sim/sim/workload"
)

func TestNewProfiler_SelectsStrategy(t *testing.T) {
	trace := workload.NewUniformTrace("hand", []uint64{1, 2}, 1)

	p, err := sim.NewProfiler(shardsParams("FIX_RATE,1", []uint64{1}), trace)
	require.NoError(t, err)
	_, ok := p.(*sim.ShardsProfiler)
	assert.True(t, ok)

	p, err = sim.NewProfiler(miniSimParams("FIX_RATE,1", "lru", []uint64{1}), trace)
	require.NoError(t, err)
	_, ok = p.(*sim.MiniSimProfiler)
	assert.True(t, ok)

	bad := shardsParams("FIX_RATE,1", []uint64{1})
	bad.Kind = "BOGUS"
	_, err = sim.NewProfiler(bad, trace)
	assert.Error(t, err)
}

func TestProfiler_WSSRatiosResolveAgainstTrace(t *testing.T) {
	// 4 distinct objects of 10 bytes each: WSS = 40.
	trace := workload.NewUniformTrace("wss", []uint64{1, 2, 3, 4, 1, 2, 3, 4}, 10)
	params := shardsParams("FIX_RATE,1", []uint64{1})
	params.Sizes = nil
	params.WSSRatios = []float64{0.25, 0.5, 1.0}

	prof := sim.NewShardsProfiler(params, trace)
	require.NoError(t, prof.Run())
	curve, err := prof.Curve()
	require.NoError(t, err)

	assert.Equal(t, sim.CandidateSizeSet{10, 20, 40}, curve.Sizes)
	assert.Equal(t, []float64{0.25, 0.5, 1.0}, curve.WSSRatios)
	// At the full working set only the 4 compulsory misses remain.
	assert.InDelta(t, 0.5, curve.MissRatio(2), 1e-12)
}

func TestProfiler_ReportIncludesHeaderAndRatioColumn(t *testing.T) {
	trace := workload.NewUniformTrace("wss", []uint64{1, 2, 1, 2}, 1)
	params := shardsParams("FIX_RATE,1", []uint64{1})
	params.Sizes = nil
	params.WSSRatios = []float64{0.5, 1.0}

	prof := sim.NewShardsProfiler(params, trace)
	require.NoError(t, prof.Run())

	path := filepath.Join(t.TempDir(), "curve.tsv")
	require.NoError(t, prof.Report(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "# profiler: SHARDS(FIX_RATE,1)")
	assert.Contains(t, out, "# trace: wss")
	assert.Contains(t, out, "wss_ratio")
	assert.Equal(t, 4+1+2, len(strings.Split(strings.TrimRight(out, "\n"), "\n")),
		"header block, column line and one row per candidate size")
}
