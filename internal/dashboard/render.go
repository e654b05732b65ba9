// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard renders the HTML metrics dashboard from a plain-text
// template with {{ name }} placeholders.
package dashboard

import (
	"fmt"
	"os"
	"regexp"

	"github.com/bartekus/qualitydash/internal/projection"
)

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// Render replaces every placeholder whose name is in values. Unknown
// placeholders are left untouched.
func Render(tmpl string, values map[string]string) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := placeholder.FindStringSubmatch(match)[1]
		if v, ok := values[name]; ok {
			return v
		}
		return match
	})
}

// Generate reads templatePath, renders it for in and writes outputPath.
func Generate(templatePath, outputPath string, in Input) error {
	tmpl, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("reading template: %w", err)
	}
	values, err := Values(in)
	if err != nil {
		return err
	}
	if err := projection.AtomicWrite(outputPath, []byte(Render(string(tmpl), values))); err != nil {
		return fmt.Errorf("writing dashboard: %w", err)
	}
	return nil
}
