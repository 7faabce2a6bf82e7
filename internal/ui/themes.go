// Package ui holds the color themes shared by the terminal presentation
// layers. Packages that print colored text read the active theme from here
// instead of hard-coding escape codes.
package ui

import (
	"os"
	"strings"
	"sync"
)

// ThemeEnv selects a theme by name ("dark", "light" or "none").
const ThemeEnv = "MATCALC_THEME"

// Theme maps output roles to ANSI escape codes.
type Theme struct {
	Name string
	// Primary highlights algorithm names and headers.
	Primary string
	// Secondary is used for sizes, counts and other figures.
	Secondary string
	Success   string
	Warning   string
	Error     string
	// Info highlights matrix previews.
	Info  string
	Bold  string
	Reset string
}

var (
	// DarkTheme suits dark terminal backgrounds.
	DarkTheme = Theme{
		Name:      "dark",
		Primary:   "\033[38;5;39m",
		Secondary: "\033[38;5;245m",
		Success:   "\033[38;5;82m",
		Warning:   "\033[38;5;220m",
		Error:     "\033[38;5;196m",
		Info:      "\033[38;5;141m",
		Bold:      "\033[1m",
		Reset:     "\033[0m",
	}

	// LightTheme suits light terminal backgrounds.
	LightTheme = Theme{
		Name:      "light",
		Primary:   "\033[38;5;27m",
		Secondary: "\033[38;5;240m",
		Success:   "\033[38;5;28m",
		Warning:   "\033[38;5;130m",
		Error:     "\033[38;5;124m",
		Info:      "\033[38;5;54m",
		Bold:      "\033[1m",
		Reset:     "\033[0m",
	}

	// NoColorTheme emits no escape codes at all.
	NoColorTheme = Theme{Name: "none"}

	themes = map[string]Theme{
		DarkTheme.Name:    DarkTheme,
		LightTheme.Name:   LightTheme,
		NoColorTheme.Name: NoColorTheme,
	}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme replaces the active theme. Tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// SetTheme activates a theme by name and reports whether the name was known.
// Unknown names leave the dark theme active.
func SetTheme(name string) bool {
	t, ok := themes[strings.ToLower(name)]
	if !ok {
		t = DarkTheme
	}
	SetCurrentTheme(t)
	return ok
}

// InitTheme picks the theme for this process. Colors are disabled by
// noColor, by a NO_COLOR variable of any value (https://no-color.org/), or
// when the output is not a terminal. Otherwise MATCALC_THEME chooses between
// the dark and light themes.
func InitTheme(noColor, isTerminal bool) {
	if _, set := os.LookupEnv("NO_COLOR"); noColor || set || !isTerminal {
		SetCurrentTheme(NoColorTheme)
		return
	}
	SetTheme(os.Getenv(ThemeEnv))
}
