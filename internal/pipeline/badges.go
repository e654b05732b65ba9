// SPDX-License-Identifier: AGPL-3.0-or-later
package pipeline

import (
	"path/filepath"
	"strconv"

	"github.com/bartekus/qualitydash/internal/badge"
	"github.com/bartekus/qualitydash/internal/projection"
	"github.com/bartekus/qualitydash/internal/rating"
	"github.com/bartekus/qualitydash/internal/report"
)

// badgeDef describes one local SVG badge. PHPMD shares PHPCS thresholds.
type badgeDef struct {
	name   string
	tool   report.Tool
	kind   rating.Kind
	prefix string
	suffix string
	float  bool
}

var badgeDefs = []badgeDef{
	{name: "coverage", tool: report.ToolCoverage, kind: rating.KindCoverage, suffix: "%", float: true},
	{name: "phpstan", tool: report.ToolPHPStan, kind: rating.KindPHPStan, suffix: " errors"},
	{name: "phpcs", tool: report.ToolPHPCS, kind: rating.KindPHPCS, suffix: " issues"},
	{name: "security", tool: report.ToolSecurity, kind: rating.KindSecurity, suffix: " issues"},
	{name: "phpmd", tool: report.ToolPHPMD, kind: rating.KindPHPCS, suffix: " issues"},
	{name: "duplication", tool: report.ToolJSCPD, kind: rating.KindDuplication, suffix: "%", float: true},
	{name: "complexity", tool: report.ToolPHPLOC, kind: rating.KindComplexity, prefix: "avg ", float: true},
}

func (b badgeDef) display(v float64) string {
	s := strconv.Itoa(int(v))
	if b.float {
		s = report.FormatFloat(v)
	}
	return b.prefix + s + b.suffix
}

// writeBadges writes badges/<name>.svg for every tool with a value and
// returns the names written.
func writeBadges(dir string, m report.Metrics, table rating.Table) ([]string, error) {
	var written []string
	for _, def := range badgeDefs {
		v, ok := m.Primary(def.tool)
		if !ok {
			continue
		}
		svg := badge.SVG(def.name, def.display(v), table.Rate(def.kind, v))
		if err := projection.AtomicWrite(filepath.Join(dir, def.name+".svg"), []byte(svg)); err != nil {
			return written, err
		}
		written = append(written, def.name)
	}
	return written, nil
}
