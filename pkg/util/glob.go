package util

import (
	"fmt"
	"path/filepath"
)

// ExpandGlobs expands shell patterns in argument order. Matches of one
// pattern come out sorted; a pattern matching nothing is kept as a literal
// path so that opening it reports the real error. Duplicates are dropped.
func ExpandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			matches = []string{pattern}
		}
		for _, match := range matches {
			if !seen[match] {
				seen[match] = true
				result = append(result, match)
			}
		}
	}
	return result, nil
}
