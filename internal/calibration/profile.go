// Package calibration measures the fastest Strassen cut-off and parallel
// depth on the current machine and caches the answer in a JSON profile.
package calibration

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const (
	// CurrentProfileVersion is bumped whenever the profile layout changes;
	// profiles of another version are ignored.
	CurrentProfileVersion = 1

	// DefaultProfileFileName lives in the user's home directory.
	DefaultProfileFileName = ".matcalc_calibration.json"
)

// Machine identifies the hardware a calibration is valid for.
type Machine struct {
	CPUModel    string   `json:"cpu_model"`
	NumCPU      int      `json:"num_cpu"`
	GOARCH      string   `json:"goarch"`
	GOOS        string   `json:"goos"`
	GoVersion   string   `json:"go_version"`
	WordSize    int      `json:"word_size"`
	CPUFeatures []string `json:"cpu_features"`
}

// ThisMachine describes the running host.
func ThisMachine() Machine {
	return Machine{
		CPUModel:    fmt.Sprintf("%s-%d-cores", runtime.GOARCH, runtime.NumCPU()),
		NumCPU:      runtime.NumCPU(),
		GOARCH:      runtime.GOARCH,
		GOOS:        runtime.GOOS,
		GoVersion:   runtime.Version(),
		WordSize:    32 << (^uint(0) >> 63),
		CPUFeatures: cpuFeatures(),
	}
}

// sameHardware ignores the Go version and OS: neither moves the optimal
// cut-off.
func (m Machine) sameHardware(o Machine) bool {
	return m.NumCPU == o.NumCPU &&
		m.GOARCH == o.GOARCH &&
		m.WordSize == o.WordSize &&
		slices.Equal(m.CPUFeatures, o.CPUFeatures)
}

// CalibrationProfile is a cached calibration result and the machine it was
// measured on.
type CalibrationProfile struct {
	ProfileVersion int `json:"profile_version"`
	Machine        `json:"machine"`

	OptimalThreshold     int `json:"optimal_threshold"`
	OptimalParallelDepth int `json:"optimal_parallel_depth"`

	CalibratedAt    time.Time `json:"calibrated_at"`
	CalibrationN    int       `json:"calibration_n"`
	CalibrationTime string    `json:"calibration_time,omitempty"`
}

// NewProfile returns a profile for this machine with no result yet.
func NewProfile() *CalibrationProfile {
	return &CalibrationProfile{
		ProfileVersion: CurrentProfileVersion,
		Machine:        ThisMachine(),
		CalibratedAt:   time.Now(),
	}
}

// GetDefaultProfilePath is ~/.matcalc_calibration.json, or the bare file name
// in the working directory when there is no home directory.
func GetDefaultProfilePath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, DefaultProfileFileName)
	}
	return DefaultProfileFileName
}

func profilePath(path string) string {
	if path != "" {
		return path
	}
	return GetDefaultProfilePath()
}

// LoadProfile decodes the profile at path ("" selects the default path).
func LoadProfile(path string) (*CalibrationProfile, error) {
	path = profilePath(path)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("calibration profile: %w", err)
	}
	p := new(CalibrationProfile)
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("calibration profile %s: %w", path, err)
	}
	return p, nil
}

// SaveProfile writes p to path ("" selects the default path). The file is
// replaced atomically so a concurrent reader never sees half a profile.
func (p *CalibrationProfile) SaveProfile(path string) error {
	path = profilePath(path)
	raw, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding calibration profile: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".matcalc-profile-*")
	if err != nil {
		return fmt.Errorf("saving calibration profile: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("saving calibration profile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("saving calibration profile: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("saving calibration profile: %w", err)
	}
	return nil
}

// IsValid reports whether p is a current-version profile with a usable
// threshold, measured on hardware like this machine's.
func (p *CalibrationProfile) IsValid() bool {
	return p != nil &&
		p.ProfileVersion == CurrentProfileVersion &&
		p.Machine.sameHardware(ThisMachine()) &&
		p.OptimalThreshold >= MinThreshold && p.OptimalThreshold <= MaxThreshold
}

// IsStale reports whether p was calibrated more than maxAge ago.
func (p *CalibrationProfile) IsStale(maxAge time.Duration) bool {
	return p == nil || time.Since(p.CalibratedAt) > maxAge
}

func (p *CalibrationProfile) String() string {
	if p == nil {
		return "<nil profile>"
	}
	features := strings.Join(p.CPUFeatures, ",")
	if features == "" {
		features = "none"
	}
	return fmt.Sprintf("CalibrationProfile{CPU: %s [%s], Threshold: %d, ParallelDepth: %d, Calibrated: %s}",
		p.CPUModel, features, p.OptimalThreshold, p.OptimalParallelDepth, p.CalibratedAt.Format(time.RFC3339))
}

// LoadOrCreateProfile returns the profile at path and true when it is valid
// for this machine, or a fresh profile and false.
func LoadOrCreateProfile(path string) (*CalibrationProfile, bool) {
	if p, err := LoadProfile(path); err == nil && p.IsValid() {
		return p, true
	}
	return NewProfile(), false
}

// ProfileExists reports whether a profile file exists at path.
func ProfileExists(path string) bool {
	_, err := os.Stat(profilePath(path))
	return err == nil
}
