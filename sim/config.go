package sim

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProfilerKind selects the MRC profiling strategy.
type ProfilerKind string

const (
	ProfilerSHARDS  ProfilerKind = "SHARDS"
	ProfilerMiniSim ProfilerKind = "MINISIM"
)

// ShardsParams groups the SHARDS sampling sub-parameters. Exactly one of
// the two sub-modes is active: fixed sample rate, or fixed sample size via
// the bounded top-K sampler.
type ShardsParams struct {
	FixSize    bool    // false = FIX_RATE, true = FIX_SIZE
	Rate       float64 // FIX_RATE: sampling probability in (0, 1]
	SampleSize int     // FIX_SIZE: number of retained sampled objects
	Salt       uint64  // hash salt for sampling decisions
}

// MiniSimParams groups the MINISIM sub-parameters.
type MiniSimParams struct {
	Rate    float64 // spatial sampling rate in (0, 1]; rates > 0.5 disable sampling
	Threads int     // worker count for the parallel multi-cache pass
}

// ProfilerParams is the immutable configuration snapshot for one profiling
// run. Either Sizes or WSSRatios must be set; ratios are resolved against
// the trace's working set size before the main pass.
type ProfilerParams struct {
	Kind      ProfilerKind
	Shards    ShardsParams
	MiniSim   MiniSimParams
	Sizes     CandidateSizeSet
	WSSRatios []float64
	Policy    string // target eviction policy for MINISIM, e.g. "lru"
}

// ParseShardsParams parses a SHARDS parameter string of the form
// "FIX_RATE,<rate>,<salt>" or "FIX_SIZE,<count>,<salt>". The salt is
// optional and defaults to 0.
func ParseShardsParams(s string) (ShardsParams, error) {
	fields := strings.Split(s, ",")
	if len(fields) < 2 || len(fields) > 3 {
		return ShardsParams{}, fmt.Errorf("malformed SHARDS params %q, want FIX_RATE,<rate>[,<salt>] or FIX_SIZE,<count>[,<salt>]", s)
	}
	var p ShardsParams
	switch fields[0] {
	case "FIX_RATE":
		rate, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return ShardsParams{}, fmt.Errorf("malformed SHARDS sample rate %q: %w", fields[1], err)
		}
		if rate <= 0 || rate > 1 {
			return ShardsParams{}, fmt.Errorf("SHARDS sample rate %v outside (0, 1]", rate)
		}
		p.Rate = rate
	case "FIX_SIZE":
		size, err := strconv.Atoi(fields[1])
		if err != nil {
			return ShardsParams{}, fmt.Errorf("malformed SHARDS sample size %q: %w", fields[1], err)
		}
		if size <= 0 {
			return ShardsParams{}, fmt.Errorf("SHARDS sample size %d must be positive", size)
		}
		p.FixSize = true
		p.SampleSize = size
	default:
		return ShardsParams{}, fmt.Errorf("unknown SHARDS mode %q, want FIX_RATE or FIX_SIZE", fields[0])
	}
	if len(fields) == 3 {
		salt, err := strconv.ParseUint(fields[2], 10, 64)
		if err != nil {
			return ShardsParams{}, fmt.Errorf("malformed SHARDS salt %q: %w", fields[2], err)
		}
		p.Salt = salt
	}
	return p, nil
}

// ParseMiniSimParams parses a MINISIM parameter string of the form
// "FIX_RATE,<rate>,<threads>". The thread count is optional and defaults
// to 1.
func ParseMiniSimParams(s string) (MiniSimParams, error) {
	fields := strings.Split(s, ",")
	if len(fields) < 2 || len(fields) > 3 {
		return MiniSimParams{}, fmt.Errorf("malformed MINISIM params %q, want FIX_RATE,<rate>[,<threads>]", s)
	}
	if fields[0] != "FIX_RATE" {
		return MiniSimParams{}, fmt.Errorf("unknown MINISIM mode %q, want FIX_RATE", fields[0])
	}
	rate, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return MiniSimParams{}, fmt.Errorf("malformed MINISIM sample rate %q: %w", fields[1], err)
	}
	if rate <= 0 || rate > 1 {
		return MiniSimParams{}, fmt.Errorf("MINISIM sample rate %v outside (0, 1]", rate)
	}
	p := MiniSimParams{Rate: rate, Threads: 1}
	if len(fields) == 3 {
		threads, err := strconv.Atoi(fields[2])
		if err != nil {
			return MiniSimParams{}, fmt.Errorf("malformed MINISIM thread count %q: %w", fields[2], err)
		}
		if threads < 1 {
			return MiniSimParams{}, fmt.Errorf("MINISIM thread count %d must be >= 1", threads)
		}
		p.Threads = threads
	}
	return p, nil
}

// Validate checks the cross-field invariants of a parameter snapshot.
func (p *ProfilerParams) Validate() error {
	switch p.Kind {
	case ProfilerSHARDS, ProfilerMiniSim:
	default:
		return fmt.Errorf("unknown profiler type %q", p.Kind)
	}
	if len(p.Sizes) == 0 && len(p.WSSRatios) == 0 {
		return fmt.Errorf("no candidate cache sizes or WSS ratios configured")
	}
	if len(p.Sizes) > 0 && len(p.WSSRatios) > 0 {
		return fmt.Errorf("candidate cache sizes and WSS ratios are mutually exclusive")
	}
	if p.Kind == ProfilerMiniSim && p.Policy == "" {
		return fmt.Errorf("MINISIM requires a target eviction policy")
	}
	return nil
}

// ProfileSpec is the YAML form of a profiling run configuration.
// Loaded via LoadProfileSpec(path).
type ProfileSpec struct {
	Profiler  string    `yaml:"profiler"`             // "SHARDS" or "MINISIM"
	Params    string    `yaml:"params"`               // mode parameter string, e.g. "FIX_RATE,0.01,42"
	Sizes     []uint64  `yaml:"sizes,omitempty"`      // candidate cache sizes in bytes
	WSSRatios []float64 `yaml:"wss_ratios,omitempty"` // alternative to sizes
	Policy    string    `yaml:"policy,omitempty"`     // MINISIM eviction policy
	Trace     string    `yaml:"trace,omitempty"`      // CSV trace path
	Output    string    `yaml:"output,omitempty"`     // report path; empty = stdout
}

// LoadProfileSpec reads and parses a ProfileSpec YAML file.
func LoadProfileSpec(path string) (*ProfileSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile spec %s: %w", path, err)
	}
	var spec ProfileSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing profile spec %s: %w", path, err)
	}
	return &spec, nil
}

// ToParams converts the YAML spec into a validated ProfilerParams.
func (spec *ProfileSpec) ToParams() (ProfilerParams, error) {
	params := ProfilerParams{
		Kind:      ProfilerKind(spec.Profiler),
		WSSRatios: spec.WSSRatios,
		Policy:    spec.Policy,
	}
	if len(spec.Sizes) > 0 {
		sizes, err := NewCandidateSizeSet(spec.Sizes)
		if err != nil {
			return ProfilerParams{}, err
		}
		params.Sizes = sizes
	}
	var err error
	switch params.Kind {
	case ProfilerSHARDS:
		params.Shards, err = ParseShardsParams(spec.Params)
	case ProfilerMiniSim:
		params.MiniSim, err = ParseMiniSimParams(spec.Params)
	default:
		err = fmt.Errorf("unknown profiler type %q", spec.Profiler)
	}
	if err != nil {
		return ProfilerParams{}, err
	}
	if err := params.Validate(); err != nil {
		return ProfilerParams{}, err
	}
	return params, nil
}
