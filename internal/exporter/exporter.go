// SPDX-License-Identifier: AGPL-3.0-or-later

// Package exporter writes the current snapshot in the Prometheus text
// exposition format, for node_exporter's textfile collector.
package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bartekus/qualitydash/internal/report"
)

const namespace = "qualitydash"

// Gauge holds one exported sample.
type Gauge struct {
	Tool   report.Tool
	Metric string
	Value  float64
}

// Samples flattens every non-null numeric field of m.
func Samples(m report.Metrics) []Gauge {
	var out []Gauge
	add := func(t report.Tool, metric string, v float64) {
		out = append(out, Gauge{Tool: t, Metric: metric, Value: v})
	}
	addF := func(t report.Tool, metric string, p *float64) {
		if p != nil {
			add(t, metric, *p)
		}
	}
	addI := func(t report.Tool, metric string, p *int) {
		if p != nil {
			add(t, metric, float64(*p))
		}
	}

	if m.Coverage.LineCoverage != nil {
		addF(report.ToolCoverage, "line_coverage", m.Coverage.LineCoverage)
		add(report.ToolCoverage, "lines_covered", float64(m.Coverage.LinesCovered))
		add(report.ToolCoverage, "lines_total", float64(m.Coverage.LinesTotal))
	}
	if m.PHPStan.Errors != nil {
		addI(report.ToolPHPStan, "errors", m.PHPStan.Errors)
		add(report.ToolPHPStan, "files_with_errors", float64(m.PHPStan.FilesWithErrors))
	}
	if m.PHPCS.Violations != nil {
		addI(report.ToolPHPCS, "violations", m.PHPCS.Violations)
		add(report.ToolPHPCS, "errors", float64(m.PHPCS.Errors))
		add(report.ToolPHPCS, "warnings", float64(m.PHPCS.Warnings))
	}
	if m.Security.Issues != nil {
		addI(report.ToolSecurity, "issues", m.Security.Issues)
		add(report.ToolSecurity, "high", float64(m.Security.High))
		add(report.ToolSecurity, "medium", float64(m.Security.Medium))
	}
	addI(report.ToolPHPLOC, "loc", m.PHPLOC.LOC)
	addI(report.ToolPHPLOC, "lloc", m.PHPLOC.LLOC)
	addF(report.ToolPHPLOC, "avg_complexity", m.PHPLOC.AvgComplexity)
	addI(report.ToolPHPLOC, "max_complexity", m.PHPLOC.MaxComplexity)
	if m.PHPMD.Violations != nil {
		addI(report.ToolPHPMD, "violations", m.PHPMD.Violations)
		add(report.ToolPHPMD, "files_affected", float64(m.PHPMD.FilesAffected))
	}
	if m.JSCPD.Percentage != nil {
		addF(report.ToolJSCPD, "percentage", m.JSCPD.Percentage)
		add(report.ToolJSCPD, "clones", float64(m.JSCPD.Clones))
		add(report.ToolJSCPD, "duplicated_lines", float64(m.JSCPD.DuplicatedLines))
	}
	return out
}

// Registry builds a private registry holding m's gauges.
func Registry(m report.Metrics) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()

	values := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "metric_value",
		Help:      "Latest value reported by a code quality tool.",
	}, []string{"tool", "metric"})
	ratings := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rating_score",
		Help:      "Latest rating per tool, A=1 through D=4.",
	}, []string{"tool"})

	for _, c := range []prometheus.Collector{values, ratings} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering collector: %w", err)
		}
	}

	for _, g := range Samples(m) {
		values.WithLabelValues(string(g.Tool), g.Metric).Set(g.Value)
	}
	for _, ti := range report.Tools {
		if g := m.Grade(ti.Tool); g != nil {
			ratings.WithLabelValues(string(ti.Tool)).Set(float64(g.Score()))
		}
	}
	return reg, nil
}

// WriteTextfile writes m to path in the text exposition format.
func WriteTextfile(path string, m report.Metrics) error {
	reg, err := Registry(m)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("writing prometheus textfile: %w", err)
	}
	return nil
}
