// Spatial sampling: deterministic, salted-hash admission of objects into a
// sampled sub-trace. All accesses to a given object share one admission
// decision, which is what preserves reuse structure under sampling.

package sim

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/zeebo/xxh3"
)

// maxHashF is the hash range used when converting scores to sample rates.
const maxHashF = float64(math.MaxUint64)

// SaltedHash hashes an object id with an explicit salt. Pure function: the
// same (id, salt) pair always yields the same score, keeping sampling
// decisions deterministic and reproducible across passes and processes.
func SaltedHash(id, salt uint64) uint64 {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[:8], id)
	binary.LittleEndian.PutUint64(b[8:], salt)
	return xxh3.Hash(b[:])
}

// SpatialSampler admits objects at a fixed rate by comparing their salted
// hash against a precomputed threshold.
type SpatialSampler struct {
	rate      float64
	salt      uint64
	threshold uint64
}

// NewSpatialSampler builds a fixed-rate sampler. rate must be in (0, 1];
// rate 1 admits everything.
func NewSpatialSampler(rate float64, salt uint64) (*SpatialSampler, error) {
	if rate <= 0 || rate > 1 {
		return nil, fmt.Errorf("sample rate %v outside (0, 1]", rate)
	}
	threshold := uint64(math.MaxUint64)
	if rate < 1 {
		threshold = uint64(rate * maxHashF)
	}
	return &SpatialSampler{rate: rate, salt: salt, threshold: threshold}, nil
}

// Sample reports whether the object is part of the sampled sub-trace.
func (s *SpatialSampler) Sample(id uint64) bool {
	return SaltedHash(id, s.salt) <= s.threshold
}

// Rate returns the configured sampling rate.
func (s *SpatialSampler) Rate() float64 { return s.rate }

// Salt returns the hash salt the sampler was built with.
func (s *SpatialSampler) Salt() uint64 { return s.salt }
