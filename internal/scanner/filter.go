// SPDX-License-Identifier: AGPL-3.0-or-later
package scanner

import (
	"slices"
	"sort"
	"strings"
)

// FilterOptions defines criteria for including or excluding files.
type FilterOptions struct {
	// ExcludeDirs is a list of directory names to exclude.
	// Matching is segment-aware: "history" excludes "history/all.json" and
	// "a/history/b", but not "history_old/x".
	ExcludeDirs []string

	// IncludeExtensions is a list of extensions to include (e.g. ".svg").
	// If empty, all extensions are included.
	IncludeExtensions []string

	// SkipHidden drops any path with a segment starting with ".", which also
	// covers leftover atomic-write temp files.
	SkipHidden bool
}

// FilterFiles applies opts to slash-separated paths and returns a new,
// sorted slice.
func FilterFiles(paths []string, opts FilterOptions) []string {
	if len(paths) == 0 {
		return nil
	}

	var filtered []string
	for _, p := range paths {
		segments := strings.Split(p, "/")
		if excluded(segments[:len(segments)-1], opts.ExcludeDirs) {
			continue
		}
		if opts.SkipHidden && hidden(segments) {
			continue
		}
		if !hasExtension(p, opts.IncludeExtensions) {
			continue
		}
		filtered = append(filtered, p)
	}

	sort.Strings(filtered)
	return filtered
}

func excluded(dirs, excludes []string) bool {
	for _, d := range dirs {
		if slices.Contains(excludes, d) {
			return true
		}
	}
	return false
}

func hidden(segments []string) bool {
	for _, s := range segments {
		if strings.HasPrefix(s, ".") {
			return true
		}
	}
	return false
}

func hasExtension(p string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	for _, ext := range extensions {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}
