// Package config provides the configuration of the matcalc harness: flag
// definitions, environment and config-file layering, and validation.
//
// Precedence, highest first: command-line flag, MATCALC_* environment
// variable, YAML config file, built-in default.
package config

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agbru/matcalc/internal/engine"
	apperrors "github.com/agbru/matcalc/internal/errors"
	"github.com/agbru/matcalc/internal/logging"
	"github.com/agbru/matcalc/internal/matrix"
)

// EnvPrefix is the prefix of every environment variable read by matcalc.
const EnvPrefix = "MATCALC_"

// Default configuration values.
const (
	// DefaultN is the side length of the benchmark matrices.
	DefaultN = 512
	// DefaultTimeout bounds the whole run.
	DefaultTimeout = 5 * time.Minute
	// DefaultAlgo runs every registered algorithm.
	DefaultAlgo = "all"
	// DefaultThreshold is the Strassen cut-off.
	DefaultThreshold = matrix.DefaultThreshold
	// DefaultMaxValue is the largest random element. Entries 0..9 keep every
	// product exact in float32 at the default size.
	DefaultMaxValue = 9
	// DefaultTolerance is the per-element acceptance tolerance.
	DefaultTolerance = matrix.DefaultTolerance
	// DefaultJobs runs algorithms one at a time so timings do not interfere.
	DefaultJobs = 1
)

// AppConfig holds every setting of a run.
type AppConfig struct {
	// N is the side length of the square input matrices.
	N int
	// Algo is "all" or a registered algorithm name.
	Algo string
	// Threshold is the Strassen cut-off side length.
	Threshold int
	// ParallelDepth is the number of concurrent Strassen levels for
	// "strassen-par" (0 selects the engine default).
	ParallelDepth int
	// Seed seeds the input generator. Zero picks a time-based seed.
	Seed uint64
	// MaxValue is the largest random element.
	MaxValue int
	// Tolerance is the per-element tolerance against the oracle.
	Tolerance float64
	// Timeout bounds the whole run.
	Timeout time.Duration
	// Jobs is the number of algorithms run concurrently.
	Jobs int
	// ScratchLimit is the memory budget in bytes. It bounds the inputs and
	// products of a run as well as Strassen scratch. Zero budgets the
	// inputs and products against physical memory and leaves scratch
	// uncapped.
	ScratchLimit int64

	// JSONOutput prints a machine-readable report instead of the tables.
	JSONOutput bool
	// OutputFile, if set, receives the JSON report.
	OutputFile string
	// Quiet suppresses progress and banners.
	Quiet bool
	// Verbose prints the full product when it is small enough.
	Verbose bool
	// Details prints the per-algorithm breakdown (GFLOP/s, scratch).
	Details bool
	// NoColor disables colors (NO_COLOR is honored too).
	NoColor bool

	// Calibrate runs the threshold calibration instead of a benchmark.
	Calibrate bool
	// AutoCalibrate runs a quick calibration before the benchmark.
	AutoCalibrate bool
	// CalibrationProfile is the profile path (default
	// ~/.matcalc_calibration.json).
	CalibrationProfile string

	// MetricsAddr, if set, serves /metrics and /health during the run.
	MetricsAddr string
	// LogLevel is the zerolog level name.
	LogLevel string
	// ConfigFile is the YAML file read for defaults.
	ConfigFile string
}

// ToEngineOptions converts the configuration to engine options.
func (c AppConfig) ToEngineOptions() engine.Options {
	return engine.Options{
		Threshold:     c.Threshold,
		ParallelDepth: c.ParallelDepth,
		ScratchLimit:  c.ScratchLimit,
	}
}

// Validate checks ranges and the algorithm name.
func (c AppConfig) Validate(availableAlgos []string) error {
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout value must be strictly positive")
	}
	if c.N < 1 {
		return apperrors.NewConfigError("matrix size must be at least 1: %d", c.N)
	}
	if c.Threshold < 1 {
		return apperrors.NewConfigError("threshold must be at least 1: %d", c.Threshold)
	}
	if c.ParallelDepth < 0 {
		return apperrors.NewConfigError("parallel depth cannot be negative: %d", c.ParallelDepth)
	}
	if c.MaxValue < 0 {
		return apperrors.NewConfigError("max value cannot be negative: %d", c.MaxValue)
	}
	if c.Tolerance < 0 {
		return apperrors.NewConfigError("tolerance cannot be negative: %g", c.Tolerance)
	}
	if c.Jobs < 1 {
		return apperrors.NewConfigError("jobs must be at least 1: %d", c.Jobs)
	}
	if c.ScratchLimit < 0 {
		return apperrors.NewConfigError("scratch limit cannot be negative: %d", c.ScratchLimit)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return apperrors.NewConfigError("%v", err)
	}
	isAlgoAvailable := false
	for _, a := range availableAlgos {
		if a == c.Algo {
			isAlgoAvailable = true
			break
		}
	}
	if c.Algo != DefaultAlgo && !isAlgoAvailable {
		return apperrors.NewConfigError("unrecognized algorithm: '%s'. Valid algorithms are: 'all' or [%s]", c.Algo, strings.Join(availableAlgos, ", "))
	}
	return nil
}

// ParseConfig parses args, layers the config file and environment under the
// explicitly set flags, and validates the result. Usage and errors are
// written to errorWriter.
func ParseConfig(programName string, args []string, errorWriter io.Writer, availableAlgos []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	algoHelp := fmt.Sprintf("Algorithm to run: 'all' (default) or one of [%s].", strings.Join(availableAlgos, ", "))

	config := AppConfig{}
	fs.IntVar(&config.N, "n", DefaultN, "Side length of the square input matrices.")
	fs.StringVar(&config.Algo, "algo", DefaultAlgo, algoHelp)
	fs.IntVar(&config.Threshold, "threshold", DefaultThreshold, "Side length at or below which Strassen uses the classical kernel.")
	fs.IntVar(&config.ParallelDepth, "parallel-depth", 0, "Recursion levels run concurrently by strassen-par (0 = default).")
	fs.Uint64Var(&config.Seed, "seed", 0, "Seed of the input generator (0 = time based).")
	fs.IntVar(&config.MaxValue, "max-value", DefaultMaxValue, "Largest random matrix element.")
	fs.Float64Var(&config.Tolerance, "tolerance", DefaultTolerance, "Per-element absolute tolerance against the naive oracle.")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum execution time for the whole run.")
	fs.IntVar(&config.Jobs, "jobs", DefaultJobs, "Number of algorithms run concurrently.")
	fs.Int64Var(&config.ScratchLimit, "scratch-limit", 0, "Memory budget in bytes for matrices and Strassen scratch (0 = physical memory).")
	fs.BoolVar(&config.JSONOutput, "json", false, "Output the report in JSON format.")
	fs.StringVar(&config.OutputFile, "output", "", "Write the JSON report to this file.")
	fs.StringVar(&config.OutputFile, "o", "", "Output file path (shorthand).")
	fs.BoolVar(&config.Quiet, "quiet", false, "Quiet mode - minimal output for scripts.")
	fs.BoolVar(&config.Quiet, "q", false, "Quiet mode (shorthand).")
	fs.BoolVar(&config.Verbose, "v", false, "Print the full product for small matrices.")
	fs.BoolVar(&config.Details, "d", false, "Display performance details.")
	fs.BoolVar(&config.Details, "details", false, "Alias for -d.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output (also respects NO_COLOR env var).")
	fs.BoolVar(&config.Calibrate, "calibrate", false, "Measure the fastest Strassen threshold on this machine.")
	fs.BoolVar(&config.AutoCalibrate, "auto-calibrate", false, "Run a quick calibration before the benchmark.")
	fs.StringVar(&config.CalibrationProfile, "calibration-profile", "", "Path to the calibration profile (default: ~/.matcalc_calibration.json).")
	fs.StringVar(&config.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address during the run (e.g. :9090).")
	fs.StringVar(&config.LogLevel, "log-level", logging.DefaultLevel, "Log level: trace, debug, info, warn, error, disabled.")
	fs.StringVar(&config.ConfigFile, "config", "", "YAML configuration file (default: $XDG_CONFIG_HOME/matcalc/config.yaml).")

	setCustomUsage(fs)

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(errorWriter, "Unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %v", fs.Args())
	}

	if err := applyFileConfig(&config, fs); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		return AppConfig{}, err
	}
	applyEnvOverrides(&config, fs)

	config.Algo = strings.ToLower(config.Algo)
	config.LogLevel = strings.ToLower(config.LogLevel)
	if err := config.Validate(availableAlgos); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		fs.Usage()
		return AppConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}
