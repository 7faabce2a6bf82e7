// Package app wires configuration, calibration, orchestration and the
// metrics server into the matcalc command.
package app

import (
	"cmp"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"slices"
)

// Set with -ldflags "-X github.com/agbru/matcalc/internal/app.Version=v1.0.0"
// (likewise Commit and BuildDate). When left empty they are read from the
// VCS stamp the Go toolchain embeds in the binary.
var (
	Version   = ""
	Commit    = ""
	BuildDate = ""
)

var versionFlags = []string{"-version", "--version", "-V"}

// HasVersionFlag reports whether args ask for the version banner. The flag
// may appear anywhere, before or after other flags.
func HasVersionFlag(args []string) bool {
	return slices.ContainsFunc(args, func(a string) bool {
		return slices.Contains(versionFlags, a)
	})
}

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// ReadBuildInfo merges the linker variables with the embedded build
// metadata. Unknown fields read "dev" or "unknown".
func ReadBuildInfo() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && info.Commit == "":
				info.Commit = s.Value
			case s.Key == "vcs.time" && info.BuildDate == "":
				info.BuildDate = s.Value
			}
		}
	}
	info.Version = cmp.Or(info.Version, "dev")
	info.Commit = cmp.Or(info.Commit, "unknown")
	info.BuildDate = cmp.Or(info.BuildDate, "unknown")
	return info
}

// PrintVersion writes the version banner to out.
func PrintVersion(out io.Writer) {
	info := ReadBuildInfo()
	fmt.Fprintf(out, "matcalc %s\n", info.Version)
	for _, row := range [][2]string{
		{"commit", info.Commit},
		{"built", info.BuildDate},
		{"go", info.GoVersion},
		{"platform", info.Platform},
	} {
		fmt.Fprintf(out, "  %-9s %s\n", row[0]+":", row[1])
	}
}
