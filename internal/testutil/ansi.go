// Package testutil holds helpers shared by the package tests.
package testutil

import "regexp"

// csiPattern matches ANSI CSI sequences such as the color codes of the ui
// themes.
var csiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripAnsiCodes returns s without color and cursor escape sequences, so
// tests can match terminal output written with any theme.
func StripAnsiCodes(s string) string {
	return csiPattern.ReplaceAllString(s, "")
}
