// SPDX-License-Identifier: AGPL-3.0-or-later

// Package scanner lists the files of a generated output directory.
package scanner

import (
	"fmt"
	"io/fs"
	"path/filepath"
)

// Scanner walks one directory tree.
type Scanner struct {
	root string
}

// New creates a Scanner rooted at root.
func New(root string) *Scanner {
	return &Scanner{root: root}
}

// Root returns the scanned directory.
func (s *Scanner) Root() string { return s.root }

// Files returns every regular file below the root as a slash-separated
// relative path, sorted.
func (s *Scanner) Files() ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.root, func(full string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(s.root, full)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", s.root, err)
	}
	return FilterFiles(files, FilterOptions{}), nil
}

// FilesFiltered returns the files matching opts.
func (s *Scanner) FilesFiltered(opts FilterOptions) ([]string, error) {
	all, err := s.Files()
	if err != nil {
		return nil, err
	}
	return FilterFiles(all, opts), nil
}
