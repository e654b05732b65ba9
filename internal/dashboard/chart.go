// SPDX-License-Identifier: AGPL-3.0-or-later
package dashboard

import "github.com/bartekus/qualitydash/internal/history"

// DefaultChartWindow is how many history entries the trend charts show.
const DefaultChartWindow = 30

// Chart is the trend data embedded into the dashboard for client-side charts.
// Every series is parallel to Labels; missing values are null.
type Chart struct {
	Labels      []string   `json:"labels"`
	Coverage    []*float64 `json:"coverage"`
	PHPStan     []*int     `json:"phpstan"`
	PHPCS       []*int     `json:"phpcs"`
	Security    []*int     `json:"security"`
	PHPMD       []*int     `json:"phpmd"`
	Duplication []*float64 `json:"duplication"`
	Complexity  []*float64 `json:"complexity"`
}

// BuildChart takes the last window entries of entries, oldest first.
func BuildChart(entries []history.Entry, window int) Chart {
	if window <= 0 {
		window = DefaultChartWindow
	}
	if len(entries) > window {
		entries = entries[len(entries)-window:]
	}

	n := len(entries)
	c := Chart{
		Labels:      make([]string, 0, n),
		Coverage:    make([]*float64, 0, n),
		PHPStan:     make([]*int, 0, n),
		PHPCS:       make([]*int, 0, n),
		Security:    make([]*int, 0, n),
		PHPMD:       make([]*int, 0, n),
		Duplication: make([]*float64, 0, n),
		Complexity:  make([]*float64, 0, n),
	}
	for _, e := range entries {
		date := e.Date
		if len(date) > 10 {
			date = date[:10]
		}
		c.Labels = append(c.Labels, date)
		c.Coverage = append(c.Coverage, e.Coverage.LineCoverage)
		c.PHPStan = append(c.PHPStan, e.PHPStan.Errors)
		c.PHPCS = append(c.PHPCS, e.PHPCS.Violations)
		c.Security = append(c.Security, e.Security.Issues)
		c.PHPMD = append(c.PHPMD, e.PHPMD.Violations)
		c.Duplication = append(c.Duplication, e.JSCPD.Percentage)
		c.Complexity = append(c.Complexity, e.PHPLOC.AvgComplexity)
	}
	return c
}
