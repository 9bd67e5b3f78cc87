package workload

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/mrc-sim/mrc-sim/sim"
)

// ZipfTrace generates a Zipf-skewed object access stream on the fly.
// Generation is fully determined by the seed: Reset re-seeds the generator,
// so every pass replays the identical request sequence.
type ZipfTrace struct {
	name        string
	seed        int64
	numRequests int
	numObjects  uint64
	skew        float64
	baseSize    uint64
	sizeSpread  uint64

	zipf *rand.Zipf
	pos  int
}

// ZipfConfig groups the synthetic trace parameters.
type ZipfConfig struct {
	Seed        int64
	NumRequests int
	NumObjects  uint64
	Skew        float64 // Zipf s parameter, must be > 1
	BaseSize    uint64  // minimum object size in bytes
	SizeSpread  uint64  // per-object deterministic size range above BaseSize
}

// NewZipfTrace builds a deterministic synthetic trace. Object sizes are a
// pure function of the object id, so all accesses to an object agree on
// its size.
func NewZipfTrace(cfg ZipfConfig) (*ZipfTrace, error) {
	if cfg.NumRequests <= 0 {
		return nil, fmt.Errorf("zipf trace needs a positive request count, got %d", cfg.NumRequests)
	}
	if cfg.NumObjects == 0 {
		return nil, fmt.Errorf("zipf trace needs a positive object count")
	}
	if cfg.Skew <= 1 {
		return nil, fmt.Errorf("zipf skew must be > 1, got %v", cfg.Skew)
	}
	if cfg.BaseSize == 0 {
		cfg.BaseSize = 1
	}
	t := &ZipfTrace{
		name:        fmt.Sprintf("zipf(s=%g,objects=%d,requests=%d,seed=%d)", cfg.Skew, cfg.NumObjects, cfg.NumRequests, cfg.Seed),
		seed:        cfg.Seed,
		numRequests: cfg.NumRequests,
		numObjects:  cfg.NumObjects,
		skew:        cfg.Skew,
		baseSize:    cfg.BaseSize,
		sizeSpread:  cfg.SizeSpread,
	}
	t.rewind()
	return t, nil
}

func (t *ZipfTrace) rewind() {
	rng := rand.New(rand.NewSource(t.seed))
	t.zipf = rand.NewZipf(rng, t.skew, 1, t.numObjects-1)
	t.pos = 0
}

func (t *ZipfTrace) objectSize(id uint64) uint64 {
	if t.sizeSpread == 0 {
		return t.baseSize
	}
	return t.baseSize + sim.SaltedHash(id, 0)%t.sizeSpread
}

func (t *ZipfTrace) ReadOne() (*sim.Request, error) {
	if t.pos >= t.numRequests {
		return nil, io.EOF
	}
	t.pos++
	id := t.zipf.Uint64() + 1 // ids start at 1, 0 is reserved for "unset"
	return &sim.Request{
		ID:    id,
		Size:  t.objectSize(id),
		Time:  int64(t.pos),
		Op:    sim.OpRead,
		Valid: true,
	}, nil
}

func (t *ZipfTrace) Reset() error {
	t.rewind()
	return nil
}

func (t *ZipfTrace) Name() string { return t.name }
