// Package pkglist normalizes archiso package lists.
package pkglist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
)

// Returned when the package list file does not exist.
var ErrNotFound = errors.New("package list not found")

// Rewrites the package list in place: one package per line, alphabetically
// sorted, deduplicated, with blank lines dropped.
//
// Returns the number of packages kept. Running Format on already formatted
// input is a no-op.
func Format(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return 0, err
	}

	packages := Normalize(strings.Split(string(data), "\n"))

	var out string
	if len(packages) > 0 {
		out = strings.Join(packages, "\n") + "\n"
	}

	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return 0, err
	}

	return len(packages), nil
}

// Trims whitespace, drops blank lines, removes duplicates, and sorts.
//
// First occurrence order does not matter since the result is sorted; the
// input slice is not modified.
func Normalize(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}

	sort.Strings(out)
	return out
}
