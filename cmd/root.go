package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mrc-sim/mrc-sim/sim"
	"github.com/mrc-sim/mrc-sim/sim/cache"
	"github.com/mrc-sim/mrc-sim/sim/workload"
)

var (
	// CLI flags for the profiling run
	logLevel     string    // Log verbosity level
	configPath   string    // Optional YAML profile spec; overrides the flags below
	profilerType string    // Profiler strategy (SHARDS, MINISIM)
	paramString  string    // Mode parameter string, e.g. FIX_RATE,0.01,42
	sizes        []int64   // Candidate cache sizes in bytes
	wssRatios    []float64 // Candidate sizes as working-set-size ratios
	policy       string    // Target eviction policy for MINISIM
	outputPath   string    // Report destination; empty writes to stdout

	// CLI flags for the trace source
	tracePath   string  // CSV trace file; empty generates a synthetic trace
	seed        int64   // Seed for synthetic trace generation
	numRequests int     // Synthetic trace request count
	numObjects  uint64  // Synthetic trace distinct object count
	zipfSkew    float64 // Synthetic trace Zipf skew (> 1)
	objectSize  uint64  // Synthetic trace minimum object size in bytes
	sizeSpread  uint64  // Synthetic trace per-object size range above the minimum
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "mrc-sim",
	Short: "Cache-replacement simulator and miss-ratio-curve profiler",
}

// buildTrace constructs the trace source selected by the flags.
func buildTrace(path string) (sim.TraceSource, error) {
	if path != "" {
		return workload.OpenCSVTrace(path)
	}
	return workload.NewZipfTrace(workload.ZipfConfig{
		Seed:        seed,
		NumRequests: numRequests,
		NumObjects:  numObjects,
		Skew:        zipfSkew,
		BaseSize:    objectSize,
		SizeSpread:  sizeSpread,
	})
}

// profileCmd runs one MRC profiling pass using parameters from CLI flags
// or a YAML profile spec.
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Profile a miss-ratio curve over a trace",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		spec := &sim.ProfileSpec{
			Profiler:  profilerType,
			Params:    paramString,
			WSSRatios: wssRatios,
			Policy:    policy,
			Trace:     tracePath,
			Output:    outputPath,
		}
		for _, s := range sizes {
			if s <= 0 {
				logrus.Fatalf("Candidate cache size must be positive, got %d", s)
			}
			spec.Sizes = append(spec.Sizes, uint64(s))
		}
		if configPath != "" {
			spec, err = sim.LoadProfileSpec(configPath)
			if err != nil {
				logrus.Fatalf("Cannot load profile spec: %v", err)
			}
		}

		params, err := spec.ToParams()
		if err != nil {
			logrus.Fatalf("Invalid profiler configuration: %v", err)
		}
		trace, err := buildTrace(spec.Trace)
		if err != nil {
			logrus.Fatalf("Cannot open trace: %v", err)
		}
		if closer, ok := trace.(*workload.CSVTrace); ok {
			defer closer.Close()
		}

		logrus.Infof("Starting %s profiling over %s (policies available: %v)",
			params.Kind, trace.Name(), cache.Policies())
		startTime := time.Now()

		profiler, err := sim.NewProfiler(params, trace)
		if err != nil {
			logrus.Fatalf("Cannot construct profiler: %v", err)
		}
		if err := profiler.Run(); err != nil {
			logrus.Fatalf("Profiling run failed: %v", err)
		}
		if err := profiler.Report(spec.Output); err != nil {
			logrus.Fatalf("Cannot write report: %v", err)
		}

		logrus.Infof("Profiling complete in %v.", time.Since(startTime))
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	profileCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	profileCmd.Flags().StringVar(&configPath, "config", "", "YAML profile spec (overrides the profiler/trace flags)")

	// Profiler configs
	profileCmd.Flags().StringVar(&profilerType, "profiler", "SHARDS", "Profiler strategy (SHARDS, MINISIM)")
	profileCmd.Flags().StringVar(&paramString, "params", "FIX_RATE,0.01,42", "Profiler mode parameters (FIX_RATE,<rate>,<salt> | FIX_SIZE,<count>,<salt> | FIX_RATE,<rate>,<threads>)")
	profileCmd.Flags().Int64SliceVar(&sizes, "sizes", nil, "Comma-separated candidate cache sizes in bytes")
	profileCmd.Flags().Float64SliceVar(&wssRatios, "wss-ratios", nil, "Comma-separated candidate sizes as fractions of the working set size")
	profileCmd.Flags().StringVar(&policy, "policy", "lru", "Target eviction policy for MINISIM")
	profileCmd.Flags().StringVar(&outputPath, "output", "", "Report file path (default stdout)")

	// Trace source configs
	profileCmd.Flags().StringVar(&tracePath, "trace", "", "CSV trace path (object_id,size[,op]); empty generates a synthetic trace")
	profileCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for synthetic trace generation")
	profileCmd.Flags().IntVar(&numRequests, "requests", 100000, "Synthetic trace request count")
	profileCmd.Flags().Uint64Var(&numObjects, "objects", 10000, "Synthetic trace distinct object count")
	profileCmd.Flags().Float64Var(&zipfSkew, "zipf-skew", 1.07, "Synthetic trace Zipf skew (> 1)")
	profileCmd.Flags().Uint64Var(&objectSize, "object-size", 1, "Synthetic trace minimum object size in bytes")
	profileCmd.Flags().Uint64Var(&sizeSpread, "size-spread", 0, "Synthetic trace per-object size range above the minimum")

	// Attach `profile` as a subcommand to `root`
	rootCmd.AddCommand(profileCmd)
}
