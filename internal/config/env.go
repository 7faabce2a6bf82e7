package config

import (
	"flag"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// envBinding ties one MATCALC_<key> variable to the flags that override it.
// set parses raw into the config and reports whether it was valid; invalid
// values leave the setting untouched.
type envBinding struct {
	key   string
	flags []string
	set   func(c *AppConfig, raw string) bool
}

func parsed[T any](parse func(string) (T, error), field func(*AppConfig) *T) func(*AppConfig, string) bool {
	return func(c *AppConfig, raw string) bool {
		v, err := parse(raw)
		if err != nil {
			return false
		}
		*field(c) = v
		return true
	}
}

func parseInt64(s string) (int64, error)   { return strconv.ParseInt(s, 10, 64) }
func parseUint64(s string) (uint64, error) { return strconv.ParseUint(s, 10, 64) }
func parseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
func parseString(s string) (string, error) { return s, nil }

// parseBool accepts true/1/yes and false/0/no in any case.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, strconv.ErrSyntax
}

var envBindings = []envBinding{
	{"N", []string{"n"}, parsed(strconv.Atoi, func(c *AppConfig) *int { return &c.N })},
	{"ALGO", []string{"algo"}, parsed(parseString, func(c *AppConfig) *string { return &c.Algo })},
	{"THRESHOLD", []string{"threshold"}, parsed(strconv.Atoi, func(c *AppConfig) *int { return &c.Threshold })},
	{"PARALLEL_DEPTH", []string{"parallel-depth"}, parsed(strconv.Atoi, func(c *AppConfig) *int { return &c.ParallelDepth })},
	{"SEED", []string{"seed"}, parsed(parseUint64, func(c *AppConfig) *uint64 { return &c.Seed })},
	{"MAX_VALUE", []string{"max-value"}, parsed(strconv.Atoi, func(c *AppConfig) *int { return &c.MaxValue })},
	{"TOLERANCE", []string{"tolerance"}, parsed(parseFloat, func(c *AppConfig) *float64 { return &c.Tolerance })},
	{"TIMEOUT", []string{"timeout"}, parsed(time.ParseDuration, func(c *AppConfig) *time.Duration { return &c.Timeout })},
	{"JOBS", []string{"jobs"}, parsed(strconv.Atoi, func(c *AppConfig) *int { return &c.Jobs })},
	{"SCRATCH_LIMIT", []string{"scratch-limit"}, parsed(parseInt64, func(c *AppConfig) *int64 { return &c.ScratchLimit })},
	{"JSON", []string{"json"}, parsed(parseBool, func(c *AppConfig) *bool { return &c.JSONOutput })},
	{"OUTPUT", []string{"output", "o"}, parsed(parseString, func(c *AppConfig) *string { return &c.OutputFile })},
	{"QUIET", []string{"quiet", "q"}, parsed(parseBool, func(c *AppConfig) *bool { return &c.Quiet })},
	{"VERBOSE", []string{"v"}, parsed(parseBool, func(c *AppConfig) *bool { return &c.Verbose })},
	{"DETAILS", []string{"d", "details"}, parsed(parseBool, func(c *AppConfig) *bool { return &c.Details })},
	{"NO_COLOR", []string{"no-color"}, parsed(parseBool, func(c *AppConfig) *bool { return &c.NoColor })},
	{"CALIBRATE", []string{"calibrate"}, parsed(parseBool, func(c *AppConfig) *bool { return &c.Calibrate })},
	{"AUTO_CALIBRATE", []string{"auto-calibrate"}, parsed(parseBool, func(c *AppConfig) *bool { return &c.AutoCalibrate })},
	{"CALIBRATION_PROFILE", []string{"calibration-profile"}, parsed(parseString, func(c *AppConfig) *string { return &c.CalibrationProfile })},
	{"METRICS_ADDR", []string{"metrics-addr"}, parsed(parseString, func(c *AppConfig) *string { return &c.MetricsAddr })},
	{"LOG_LEVEL", []string{"log-level"}, parsed(parseString, func(c *AppConfig) *string { return &c.LogLevel })},
}

// lookupEnv returns the non-empty value of EnvPrefix+key.
func lookupEnv(key string) (string, bool) {
	v := os.Getenv(EnvPrefix + key)
	return v, v != ""
}

// isFlagSet reports whether any of names was given on the command line.
func isFlagSet(fs *flag.FlagSet, names ...string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		found = found || slices.Contains(names, f.Name)
	})
	return found
}

// applyEnvOverrides applies every set MATCALC_* variable whose flag was not
// given explicitly.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	for _, b := range envBindings {
		if isFlagSet(fs, b.flags...) {
			continue
		}
		if raw, ok := lookupEnv(b.key); ok {
			b.set(config, raw)
		}
	}
}
