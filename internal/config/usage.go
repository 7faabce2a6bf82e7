package config

import (
	"flag"
	"fmt"
	"sort"
	"strings"
)

// flagGroups orders the usage output. Flags not listed fall into "Other".
var flagGroups = []struct {
	title string
	names []string
}{
	{"Run", []string{"n", "algo", "threshold", "parallel-depth", "seed", "max-value", "tolerance", "timeout", "jobs", "scratch-limit"}},
	{"Output", []string{"json", "output", "o", "quiet", "q", "v", "d", "details", "no-color"}},
	{"Calibration", []string{"calibrate", "auto-calibrate", "calibration-profile"}},
	{"Observability", []string{"metrics-addr", "log-level", "config"}},
}

// setCustomUsage installs a grouped usage message on fs.
func setCustomUsage(fs *flag.FlagSet) {
	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage: %s [flags]\n\n", fs.Name())
		fmt.Fprintf(out, "Multiplies two random n×n matrices with every selected algorithm and\n")
		fmt.Fprintf(out, "checks each product against the naive triple loop.\n")

		listed := make(map[string]bool)
		for _, g := range flagGroups {
			fmt.Fprintf(out, "\n%s:\n", g.title)
			for _, name := range g.names {
				if f := fs.Lookup(name); f != nil {
					printFlag(out, f)
					listed[name] = true
				}
			}
		}

		var rest []*flag.Flag
		fs.VisitAll(func(f *flag.Flag) {
			if !listed[f.Name] {
				rest = append(rest, f)
			}
		})
		if len(rest) > 0 {
			sort.Slice(rest, func(i, j int) bool { return rest[i].Name < rest[j].Name })
			fmt.Fprintf(out, "\nOther:\n")
			for _, f := range rest {
				printFlag(out, f)
			}
		}
		fmt.Fprintf(out, "\nEvery flag can also be set with %s<NAME> (e.g. %sTHRESHOLD=32).\n", EnvPrefix, EnvPrefix)
	}
}

func printFlag(out interface{ Write([]byte) (int, error) }, f *flag.Flag) {
	name, usage := flag.UnquoteUsage(f)
	line := "  -" + f.Name
	if name != "" {
		line += " " + name
	}
	if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" {
		usage += fmt.Sprintf(" (default %s)", f.DefValue)
	}
	fmt.Fprintf(out, "%-28s %s\n", line, strings.TrimSpace(usage))
}
