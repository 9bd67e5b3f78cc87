package sim

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCandidateSizeSet_Validation(t *testing.T) {
	_, err := NewCandidateSizeSet(nil)
	assert.Error(t, err)

	_, err = NewCandidateSizeSet([]uint64{0, 1})
	assert.Error(t, err)

	_, err = NewCandidateSizeSet([]uint64{1, 2, 2})
	assert.Error(t, err, "duplicates must be rejected")

	_, err = NewCandidateSizeSet([]uint64{4, 2})
	assert.Error(t, err, "descending sizes must be rejected")

	s, err := NewCandidateSizeSet([]uint64{1, 2, 4})
	require.NoError(t, err)
	assert.Len(t, s, 3)
}

func TestCandidateSizeSet_BucketFor(t *testing.T) {
	s, err := NewCandidateSizeSet([]uint64{10, 100, 1000})
	require.NoError(t, err)

	tests := []struct {
		distance float64
		want     int
		ok       bool
	}{
		{0, 0, true},
		{10, 0, true},
		{10.5, 1, true},
		{100, 1, true},
		{1000, 2, true},
		{1000.1, 0, false}, // beyond the largest size: a miss everywhere
	}
	for _, tc := range tests {
		got, ok := s.BucketFor(tc.distance)
		assert.Equal(t, tc.ok, ok, "distance %v", tc.distance)
		if tc.ok {
			assert.Equal(t, tc.want, got, "distance %v", tc.distance)
		}
	}
}

func TestSizesFromWSSRatios(t *testing.T) {
	sizes, err := SizesFromWSSRatios([]float64{0.1, 0.5, 1.0}, 1000)
	require.NoError(t, err)
	assert.Equal(t, CandidateSizeSet{100, 500, 1000}, sizes)

	_, err = SizesFromWSSRatios([]float64{0.1}, 0)
	assert.Error(t, err)

	_, err = SizesFromWSSRatios([]float64{-0.1}, 1000)
	assert.Error(t, err)
}

func TestCumulativeCurve_MissRatioClamped(t *testing.T) {
	sizes, _ := NewCandidateSizeSet([]uint64{1, 2})
	c := NewCumulativeCurve(sizes)
	c.NumReq = 10
	c.ReqBytes = 10
	// Rescaled estimators can overshoot the request count; ratios clamp.
	c.HitCount = []float64{-3, 15}
	c.HitBytes = []float64{-3, 15}

	assert.Equal(t, 1.0, c.MissRatio(0))
	assert.Equal(t, 0.0, c.MissRatio(1))
	assert.Equal(t, 1.0, c.ByteMissRatio(0))
	assert.Equal(t, 0.0, c.ByteMissRatio(1))
}

func TestCumulativeCurve_WriteReport(t *testing.T) {
	sizes, _ := NewCandidateSizeSet([]uint64{1, 2})
	c := NewCumulativeCurve(sizes)
	c.NumReq = 4
	c.ReqBytes = 4
	c.HitCount = []float64{1, 2}
	c.HitBytes = []float64{1, 2}

	var buf bytes.Buffer
	require.NoError(t, c.WriteReport(&buf, "SHARDS(FIX_RATE,1)", "test-trace", "lru"))
	out := buf.String()

	assert.Contains(t, out, "# profiler: SHARDS(FIX_RATE,1)")
	assert.Contains(t, out, "# trace: test-trace")
	assert.Contains(t, out, "1\t0.7500\t0.7500")
	assert.Contains(t, out, "2\t0.5000\t0.5000")
}

func TestCumulativeCurve_WriteReportFile(t *testing.T) {
	sizes, _ := NewCandidateSizeSet([]uint64{1})
	c := NewCumulativeCurve(sizes)
	c.NumReq = 2
	c.ReqBytes = 2
	c.HitCount = []float64{1}
	c.HitBytes = []float64{1}

	path := filepath.Join(t.TempDir(), "report.tsv")
	require.NoError(t, c.WriteReportFile(path, "p", "t", ""))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# profiler: p"))

	// An unopenable path falls back to stdout instead of failing the run.
	bad := filepath.Join(t.TempDir(), "no", "such", "dir", "report.tsv")
	assert.NoError(t, c.WriteReportFile(bad, "p", "t", ""))
}
