package config

import (
	"errors"
	"flag"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/matcalc/internal/errors"
)

// FileConfig is the YAML configuration file. Pointer fields distinguish
// "not set" from zero values.
type FileConfig struct {
	N                  *int     `yaml:"n"`
	Algo               string   `yaml:"algo"`
	Threshold          *int     `yaml:"threshold"`
	ParallelDepth      *int     `yaml:"parallel_depth"`
	Seed               *uint64  `yaml:"seed"`
	MaxValue           *int     `yaml:"max_value"`
	Tolerance          *float64 `yaml:"tolerance"`
	Timeout            string   `yaml:"timeout"`
	Jobs               *int     `yaml:"jobs"`
	ScratchLimit       *int64   `yaml:"scratch_limit"`
	JSON               *bool    `yaml:"json"`
	NoColor            *bool    `yaml:"no_color"`
	CalibrationProfile string   `yaml:"calibration_profile"`
	MetricsAddr        string   `yaml:"metrics_addr"`
	LogLevel           string   `yaml:"log_level"`
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/matcalc/config.yaml (or the
// platform equivalent), or "" when no config directory is known.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "matcalc", "config.yaml")
}

// LoadFileConfig reads and decodes path. A missing file yields a zero
// FileConfig and no error when optional is true.
func LoadFileConfig(path string, optional bool) (FileConfig, error) {
	var cfg FileConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, apperrors.NewConfigError("reading config file %s: %v", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, apperrors.NewConfigError("parsing config file %s: %v", path, err)
	}
	return cfg, nil
}

// applyFileConfig loads the config file selected by -config, MATCALC_CONFIG
// or the default path, and applies it to settings whose flag was not set.
// Only an explicitly named file must exist.
func applyFileConfig(config *AppConfig, fset *flag.FlagSet) error {
	path, optional := config.ConfigFile, false
	if !isFlagSet(fset, "config") {
		var ok bool
		if path, ok = lookupEnv("CONFIG"); !ok {
			path, optional = DefaultConfigPath(), true
		}
	}
	config.ConfigFile = path

	fc, err := LoadFileConfig(path, optional)
	if err != nil {
		return err
	}
	return fc.apply(config, fset)
}

func (fc FileConfig) apply(config *AppConfig, fset *flag.FlagSet) error {
	if fc.N != nil && !isFlagSet(fset, "n") {
		config.N = *fc.N
	}
	if fc.Algo != "" && !isFlagSet(fset, "algo") {
		config.Algo = fc.Algo
	}
	if fc.Threshold != nil && !isFlagSet(fset, "threshold") {
		config.Threshold = *fc.Threshold
	}
	if fc.ParallelDepth != nil && !isFlagSet(fset, "parallel-depth") {
		config.ParallelDepth = *fc.ParallelDepth
	}
	if fc.Seed != nil && !isFlagSet(fset, "seed") {
		config.Seed = *fc.Seed
	}
	if fc.MaxValue != nil && !isFlagSet(fset, "max-value") {
		config.MaxValue = *fc.MaxValue
	}
	if fc.Tolerance != nil && !isFlagSet(fset, "tolerance") {
		config.Tolerance = *fc.Tolerance
	}
	if fc.Timeout != "" && !isFlagSet(fset, "timeout") {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return apperrors.NewConfigError("config file timeout %q: %v", fc.Timeout, err)
		}
		config.Timeout = d
	}
	if fc.Jobs != nil && !isFlagSet(fset, "jobs") {
		config.Jobs = *fc.Jobs
	}
	if fc.ScratchLimit != nil && !isFlagSet(fset, "scratch-limit") {
		config.ScratchLimit = *fc.ScratchLimit
	}
	if fc.JSON != nil && !isFlagSet(fset, "json") {
		config.JSONOutput = *fc.JSON
	}
	if fc.NoColor != nil && !isFlagSet(fset, "no-color") {
		config.NoColor = *fc.NoColor
	}
	if fc.CalibrationProfile != "" && !isFlagSet(fset, "calibration-profile") {
		config.CalibrationProfile = fc.CalibrationProfile
	}
	if fc.MetricsAddr != "" && !isFlagSet(fset, "metrics-addr") {
		config.MetricsAddr = fc.MetricsAddr
	}
	if fc.LogLevel != "" && !isFlagSet(fset, "log-level") {
		config.LogLevel = fc.LogLevel
	}
	return nil
}
