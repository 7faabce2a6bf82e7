package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// WriteJSON encodes v as indented JSON followed by a newline. Nothing is
// written to out when encoding fails.
func WriteJSON(out io.Writer, v any) error {
	data, err := encodeJSON(v)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

// WriteJSONFile writes v as indented JSON to path, creating parent
// directories as needed. The file is left untouched when v cannot be
// encoded.
func WriteJSONFile(path string, v any) error {
	data, err := encodeJSON(v)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding JSON report: %w", err)
	}
	return buf.Bytes(), nil
}

// DisplayQuietResult prints one tab-separated line per algorithm for
// scripts: name, status, duration in nanoseconds.
func DisplayQuietResult(out io.Writer, name, status string, durationNs int64) {
	fmt.Fprintf(out, "%s\t%s\t%d\n", name, status, durationNs)
}
