// SPDX-License-Identifier: AGPL-3.0-or-later

// Package projection writes generated artifacts (JSON, HTML, SVG, Markdown)
// deterministically and atomically.
package projection

import (
	"cmp"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// tempPattern names in-flight files. scanner.FilterOptions.SkipHidden relies
// on the leading dot.
const tempPattern = ".qualitydash-tmp-*"

// AtomicWrite replaces path with content so readers see either the old file
// or the new one, never a partial write. Missing parent directories are created.
func AtomicWrite(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	f, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return fmt.Errorf("staging %s: %w", filepath.Base(path), err)
	}
	staged := f.Name()
	defer os.Remove(staged)

	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return fmt.Errorf("staging %s: %w", filepath.Base(path), err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flushing %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("staging %s: %w", filepath.Base(path), err)
	}
	// Output is served and uploaded as-is.
	if err := os.Chmod(staged, 0o644); err != nil {
		return fmt.Errorf("setting mode on %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(staged, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// WriteJSON atomically writes v as 2-space indented JSON with a trailing newline.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	return AtomicWrite(path, append(data, '\n'))
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// RenderTable renders a GFM table. Rows are emitted in the order given and
// "|" inside a cell is escaped.
func RenderTable(headers []string, rows [][]string) string {
	var b strings.Builder
	writeRow(&b, headers)
	b.WriteString("|" + strings.Repeat(" --- |", len(headers)) + "\n")
	for _, row := range rows {
		writeRow(&b, row)
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" " + strings.ReplaceAll(c, "|", `\|`) + " |")
	}
	b.WriteString("\n")
}

// RenderHeader renders an ATX heading followed by a blank line. level is
// clamped to 1..6.
func RenderHeader(level int, text string) string {
	level = min(max(level, 1), 6)
	return strings.Repeat("#", level) + " " + text + "\n\n"
}
