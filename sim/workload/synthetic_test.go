package workload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewZipfTrace_Validation(t *testing.T) {
	_, err := NewZipfTrace(ZipfConfig{NumRequests: 0, NumObjects: 10, Skew: 1.2})
	assert.Error(t, err)
	_, err = NewZipfTrace(ZipfConfig{NumRequests: 10, NumObjects: 0, Skew: 1.2})
	assert.Error(t, err)
	_, err = NewZipfTrace(ZipfConfig{NumRequests: 10, NumObjects: 10, Skew: 1.0})
	assert.Error(t, err, "zipf skew must be > 1")
}

func TestZipfTrace_ResetReplaysIdentically(t *testing.T) {
	trace, err := NewZipfTrace(ZipfConfig{
		Seed: 9, NumRequests: 2000, NumObjects: 100, Skew: 1.3, BaseSize: 2, SizeSpread: 16,
	})
	require.NoError(t, err)

	first := readAll(t, trace)
	require.Len(t, first, 2000)

	require.NoError(t, trace.Reset())
	second := readAll(t, trace)
	assert.Equal(t, first, second, "two passes over a seeded trace must be bit-identical")
}

func TestZipfTrace_SizesAreStablePerObject(t *testing.T) {
	trace, err := NewZipfTrace(ZipfConfig{
		Seed: 4, NumRequests: 5000, NumObjects: 50, Skew: 1.5, BaseSize: 1, SizeSpread: 8,
	})
	require.NoError(t, err)

	sizes := make(map[uint64]uint64)
	for _, r := range readAll(t, trace) {
		if prev, ok := sizes[r.ID]; ok {
			require.Equal(t, prev, r.Size, "object %d changed size mid-trace", r.ID)
		}
		sizes[r.ID] = r.Size
		assert.GreaterOrEqual(t, r.Size, uint64(1))
		assert.Less(t, r.Size, uint64(1+8))
	}
}

func TestZipfTrace_SkewConcentratesAccesses(t *testing.T) {
	trace, err := NewZipfTrace(ZipfConfig{
		Seed: 12, NumRequests: 10000, NumObjects: 1000, Skew: 1.5, BaseSize: 1,
	})
	require.NoError(t, err)

	counts := make(map[uint64]int)
	for _, r := range readAll(t, trace) {
		counts[r.ID]++
	}
	assert.Greater(t, counts[1], 1000, "the hottest object of a skewed trace dominates")
	assert.Less(t, len(counts), 1000, "the cold tail is mostly untouched")
}
