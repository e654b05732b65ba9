// SPDX-License-Identifier: AGPL-3.0-or-later
package dashboard

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/bartekus/qualitydash/internal/history"
	"github.com/bartekus/qualitydash/internal/projection"
	"github.com/bartekus/qualitydash/internal/rating"
	"github.com/bartekus/qualitydash/internal/report"
)

// NA is shown wherever a value is unavailable.
const NA = "N/A"

const generatedAtLayout = "2006-01-02 15:04:05"

// fragmentPolicy keeps breakdown lists to plain text plus <strong>, since
// ruleset and language names come straight from tool output.
var fragmentPolicy = bluemonday.NewPolicy().AllowElements("strong")

// Input is everything the dashboard is computed from.
type Input struct {
	Metrics     report.Metrics
	History     []history.Entry
	CommitSHA   string
	Now         time.Time
	ChartWindow int
}

// Values computes the string for every supported placeholder.
func Values(in Input) (map[string]string, error) {
	m := in.Metrics

	chart, err := json.Marshal(BuildChart(in.History, in.ChartWindow))
	if err != nil {
		return nil, fmt.Errorf("encoding chart data: %w", err)
	}
	summary, err := SummaryHTML(m)
	if err != nil {
		return nil, err
	}

	commitFull := in.CommitSHA
	if commitFull == "" {
		commitFull = "unknown"
	}

	return map[string]string{
		"coverage_value":  floatOrNA(m.Coverage.LineCoverage),
		"coverage_rating": gradeOrNA(m.Coverage.Rating),
		"coverage_lines":  fmt.Sprintf("%d/%d", m.Coverage.LinesCovered, m.Coverage.LinesTotal),

		"phpstan_errors": intOrNA(m.PHPStan.Errors),
		"phpstan_rating": gradeOrNA(m.PHPStan.Rating),
		"phpstan_files":  strconv.Itoa(m.PHPStan.FilesWithErrors),

		"phpcs_violations": intOrNA(m.PHPCS.Violations),
		"phpcs_rating":     gradeOrNA(m.PHPCS.Rating),
		"phpcs_errors":     strconv.Itoa(m.PHPCS.Errors),
		"phpcs_warnings":   strconv.Itoa(m.PHPCS.Warnings),

		"security_issues": intOrNA(m.Security.Issues),
		"security_rating": gradeOrNA(m.Security.Rating),
		"security_high":   strconv.Itoa(m.Security.High),
		"security_medium": strconv.Itoa(m.Security.Medium),

		"phpmd_violations": intOrNA(m.PHPMD.Violations),
		"phpmd_rating":     gradeOrNA(m.PHPMD.Rating),
		"phpmd_files":      strconv.Itoa(m.PHPMD.FilesAffected),
		"phpmd_rulesets":   RulesetBreakdown(m.PHPMD.ByRuleset),

		"duplication_percentage":  floatOrNA(m.JSCPD.Percentage),
		"duplication_rating":      gradeOrNA(m.JSCPD.Rating),
		"duplication_clones":      strconv.Itoa(m.JSCPD.Clones),
		"duplication_lines":       strconv.Itoa(m.JSCPD.DuplicatedLines),
		"duplication_by_language": LanguageBreakdown(m.JSCPD.ByLanguage),

		"complexity_avg":    floatOrNA(m.PHPLOC.AvgComplexity),
		"complexity_max":    intOrNA(m.PHPLOC.MaxComplexity),
		"complexity_rating": gradeOrNA(m.PHPLOC.Rating),

		"chart_data_json": string(chart),
		"summary_table":   summary,
		"generated_at":    in.Now.UTC().Format(generatedAtLayout) + " UTC",
		"commit_sha":      history.ShortSHA(in.CommitSHA),
		"commit_sha_full": commitFull,
	}, nil
}

// RulesetBreakdown formats PHPMD counts per ruleset as an inline HTML list.
func RulesetBreakdown(byRuleset map[string]int) string {
	if len(byRuleset) == 0 {
		return ""
	}
	parts := make([]string, 0, len(byRuleset))
	for _, name := range projection.SortedKeys(byRuleset) {
		short := strings.ReplaceAll(name, " Rules", "")
		short = strings.ReplaceAll(short, "Code ", "")
		parts = append(parts, fmt.Sprintf("<strong>%s</strong>: %d", short, byRuleset[name]))
	}
	return fragmentPolicy.Sanitize(strings.Join(parts, " | "))
}

// LanguageBreakdown formats jscpd stats per language as an inline HTML list.
func LanguageBreakdown(byLanguage map[string]report.LanguageStats) string {
	if len(byLanguage) == 0 {
		return ""
	}
	parts := make([]string, 0, len(byLanguage))
	for _, lang := range projection.SortedKeys(byLanguage) {
		s := byLanguage[lang]
		parts = append(parts, fmt.Sprintf("<strong>%s</strong>: %s%% (%d clones)",
			strings.ToUpper(lang), report.FormatFloat(s.Percentage), s.Clones))
	}
	return fragmentPolicy.Sanitize(strings.Join(parts, " | "))
}

func floatOrNA(p *float64) string {
	if p == nil {
		return NA
	}
	return report.FormatFloat(*p)
}

func intOrNA(p *int) string {
	if p == nil {
		return NA
	}
	return strconv.Itoa(*p)
}

func gradeOrNA(g *rating.Grade) string {
	if g == nil {
		return NA
	}
	return string(*g)
}
