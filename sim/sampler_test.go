package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaltedHash_Deterministic(t *testing.T) {
	assert.Equal(t, SaltedHash(12345, 42), SaltedHash(12345, 42))
	assert.NotEqual(t, SaltedHash(12345, 42), SaltedHash(12345, 43), "salt must change the score")
	assert.NotEqual(t, SaltedHash(12345, 42), SaltedHash(12346, 42))
}

func TestNewSpatialSampler_RejectsBadRates(t *testing.T) {
	for _, rate := range []float64{0, -0.5, 1.0001, 2} {
		_, err := NewSpatialSampler(rate, 0)
		assert.Error(t, err, "rate %v must be rejected", rate)
	}
}

func TestSpatialSampler_RateOneAdmitsEverything(t *testing.T) {
	s, err := NewSpatialSampler(1, 7)
	require.NoError(t, err)
	for id := uint64(0); id < 1000; id++ {
		assert.True(t, s.Sample(id))
	}
}

func TestSpatialSampler_AdmissionFractionNearRate(t *testing.T) {
	const n = 100000
	s, err := NewSpatialSampler(0.1, 42)
	require.NoError(t, err)

	admitted := 0
	for id := uint64(0); id < n; id++ {
		if s.Sample(id) {
			admitted++
		}
	}
	frac := float64(admitted) / n
	assert.InDelta(t, 0.1, frac, 0.02, "admission fraction %v too far from rate", frac)
}

func TestSpatialSampler_ConsistentPerObject(t *testing.T) {
	s, err := NewSpatialSampler(0.5, 11)
	require.NoError(t, err)
	for id := uint64(0); id < 100; id++ {
		first := s.Sample(id)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, s.Sample(id), "object %d must get one consistent decision", id)
		}
	}
}
