// SPDX-License-Identifier: AGPL-3.0-or-later
package dashboard

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/bartekus/qualitydash/internal/projection"
	"github.com/bartekus/qualitydash/internal/report"
)

var (
	mdRenderer    = goldmark.New(goldmark.WithExtensions(extension.GFM))
	htmlSanitizer = bluemonday.UGCPolicy()
)

// SummaryMarkdown renders one row per tool, suitable for a CI job summary.
func SummaryMarkdown(m report.Metrics) string {
	rows := make([][]string, 0, len(report.Tools))
	for _, ti := range report.Tools {
		value := NA
		if v, ok := m.Primary(ti.Tool); ok {
			value = displayValue(ti.Tool, v)
		}
		rows = append(rows, []string{ti.Name, value, gradeOrNA(m.Grade(ti.Tool))})
	}

	var b strings.Builder
	b.WriteString(projection.RenderHeader(2, "Code quality"))
	b.WriteString(projection.RenderTable([]string{"Tool", "Value", "Rating"}, rows))
	return b.String()
}

// SummaryHTML is SummaryMarkdown converted to sanitized HTML.
func SummaryHTML(m report.Metrics) (string, error) {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(SummaryMarkdown(m)), &buf); err != nil {
		return "", fmt.Errorf("rendering summary: %w", err)
	}
	return htmlSanitizer.Sanitize(buf.String()), nil
}

func displayValue(t report.Tool, v float64) string {
	switch t {
	case report.ToolCoverage, report.ToolJSCPD:
		return report.FormatFloat(v) + "%"
	case report.ToolPHPLOC:
		return "avg " + report.FormatFloat(v)
	}
	return fmt.Sprintf("%d", int(v))
}
