// CandidateSizeSet and CumulativeCurve: the size axis and the cumulative
// hit statistics that together form a miss-ratio curve, plus the
// tab-separated report writer.

package sim

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
)

// CandidateSizeSet is the ascending, deduplicated list of cache sizes
// (bytes) a profiling run models. Fixed for the lifetime of one run.
type CandidateSizeSet []uint64

// NewCandidateSizeSet validates that sizes are strictly increasing and
// non-empty.
func NewCandidateSizeSet(sizes []uint64) (CandidateSizeSet, error) {
	if len(sizes) == 0 {
		return nil, fmt.Errorf("no candidate cache sizes given")
	}
	for i, s := range sizes {
		if s == 0 {
			return nil, fmt.Errorf("candidate cache size at index %d is zero", i)
		}
		if i > 0 && s <= sizes[i-1] {
			return nil, fmt.Errorf("candidate cache sizes must be strictly increasing: sizes[%d]=%d <= sizes[%d]=%d",
				i, s, i-1, sizes[i-1])
		}
	}
	return CandidateSizeSet(sizes), nil
}

// SizesFromWSSRatios resolves working-set-size ratios into byte sizes.
// Ratios must be positive and strictly increasing.
func SizesFromWSSRatios(ratios []float64, wss uint64) (CandidateSizeSet, error) {
	if wss == 0 {
		return nil, fmt.Errorf("working set size is zero, cannot resolve WSS ratios")
	}
	sizes := make([]uint64, 0, len(ratios))
	for i, r := range ratios {
		if r <= 0 {
			return nil, fmt.Errorf("WSS ratio at index %d is not positive: %v", i, r)
		}
		s := uint64(r * float64(wss))
		if s == 0 {
			s = 1
		}
		// Ratios close together can collapse onto the same byte size once
		// scaled; keep the set strictly increasing.
		if len(sizes) > 0 && s <= sizes[len(sizes)-1] {
			s = sizes[len(sizes)-1] + 1
		}
		sizes = append(sizes, s)
	}
	return NewCandidateSizeSet(sizes)
}

// BucketFor returns the first index whose size is >= distance, and whether
// such an index exists (a distance beyond the largest size is a miss at
// every modeled size).
func (s CandidateSizeSet) BucketFor(distance float64) (int, bool) {
	i := sort.Search(len(s), func(i int) bool { return float64(s[i]) >= distance })
	if i == len(s) {
		return 0, false
	}
	return i, true
}

// CumulativeCurve holds, per candidate size, the estimated cumulative hit
// counts and hit bytes over the full (unsampled) trace. Hit counts are
// float64 because sampled estimators rescale fractional contributions.
// Arrays are parallel to Sizes; WSSRatios is non-nil only when the run was
// configured by ratio.
type CumulativeCurve struct {
	Sizes     CandidateSizeSet
	WSSRatios []float64
	HitCount  []float64
	HitBytes  []float64
	NumReq    uint64
	ReqBytes  uint64
}

// NewCumulativeCurve allocates a zeroed curve over the given size axis.
func NewCumulativeCurve(sizes CandidateSizeSet) *CumulativeCurve {
	return &CumulativeCurve{
		Sizes:    sizes,
		HitCount: make([]float64, len(sizes)),
		HitBytes: make([]float64, len(sizes)),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// MissRatio returns the miss ratio at size index i, clamped to [0, 1]:
// rescaling by small sample rates can push the raw estimator slightly
// outside that range.
func (c *CumulativeCurve) MissRatio(i int) float64 {
	if c.NumReq == 0 {
		return 0
	}
	return clamp01(1 - c.HitCount[i]/float64(c.NumReq))
}

// ByteMissRatio returns the clamped byte miss ratio at size index i.
func (c *CumulativeCurve) ByteMissRatio(i int) float64 {
	if c.ReqBytes == 0 {
		return 0
	}
	return clamp01(1 - c.HitBytes[i]/float64(c.ReqBytes))
}

// WriteReport renders the curve as a tab-separated table with a header
// block naming the profiler, trace, and target eviction policy.
func (c *CumulativeCurve) WriteReport(w io.Writer, profiler, trace, policy string) error {
	if _, err := fmt.Fprintf(w, "# profiler: %s\n# trace: %s\n# policy: %s\n# requests: %d, request bytes: %d\n",
		profiler, trace, policy, c.NumReq, c.ReqBytes); err != nil {
		return err
	}
	if c.WSSRatios != nil {
		if _, err := fmt.Fprintln(w, "# cache_size\twss_ratio\tmiss_ratio\tbyte_miss_ratio"); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintln(w, "# cache_size\tmiss_ratio\tbyte_miss_ratio"); err != nil {
			return err
		}
	}
	for i, size := range c.Sizes {
		var err error
		if c.WSSRatios != nil {
			_, err = fmt.Fprintf(w, "%d\t%.4f\t%.4f\t%.4f\n", size, c.WSSRatios[i], c.MissRatio(i), c.ByteMissRatio(i))
		} else {
			_, err = fmt.Fprintf(w, "%d\t%.4f\t%.4f\n", size, c.MissRatio(i), c.ByteMissRatio(i))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteReportFile writes the report to path, or to stdout when path is
// empty. An unopenable path is recovered locally: the report falls back to
// stdout with a warning rather than aborting a completed run.
func (c *CumulativeCurve) WriteReportFile(path, profiler, trace, policy string) error {
	if path == "" {
		return c.WriteReport(os.Stdout, profiler, trace, policy)
	}
	f, err := os.Create(path)
	if err != nil {
		logrus.Warnf("cannot open output file %s (%v), writing report to stdout", path, err)
		return c.WriteReport(os.Stdout, profiler, trace, policy)
	}
	defer f.Close()
	return c.WriteReport(f, profiler, trace, policy)
}
