// SPDX-License-Identifier: AGPL-3.0-or-later

// Package report parses static-analysis tool output into normalized metric records.
//
// Every parser honours the same contract: a missing file, a malformed file or a
// decoder panic yields the tool's empty record (primary value nil, no rating)
// and a log line. Errors never reach the caller.
package report

import (
	"encoding/json"
	"fmt"

	"github.com/bartekus/qualitydash/internal/badge"
	"github.com/bartekus/qualitydash/internal/rating"
)

// Tool identifies a tool report format. The value doubles as the JSON key in
// metric snapshots and history entries.
type Tool string

const (
	ToolCoverage Tool = "coverage"
	ToolPHPStan  Tool = "phpstan"
	ToolPHPCS    Tool = "phpcs"
	ToolSecurity Tool = "security"
	ToolPHPLOC   Tool = "phploc"
	ToolPHPMD    Tool = "phpmd"
	ToolJSCPD    Tool = "jscpd"
)

// ToolInfo describes how a tool's primary value is rated and labelled.
type ToolInfo struct {
	Tool  Tool
	Name  string
	Kind  rating.Kind
	Label string
}

// Tools lists every supported format in display order.
var Tools = []ToolInfo{
	{Tool: ToolCoverage, Name: "Coverage", Kind: rating.KindCoverage, Label: "coverage"},
	{Tool: ToolPHPStan, Name: "PHPStan", Kind: rating.KindPHPStan, Label: "PHPStan"},
	{Tool: ToolPHPCS, Name: "PHPCS", Kind: rating.KindPHPCS, Label: "code style"},
	{Tool: ToolSecurity, Name: "Security", Kind: rating.KindSecurity, Label: "security"},
	{Tool: ToolPHPLOC, Name: "PHPLOC", Kind: rating.KindComplexity, Label: "complexity"},
	{Tool: ToolPHPMD, Name: "PHPMD", Kind: rating.KindPHPCS, Label: "PHPMD"},
	{Tool: ToolJSCPD, Name: "jscpd", Kind: rating.KindDuplication, Label: "duplication"},
}

// Info returns the ToolInfo for t.
func Info(t Tool) (ToolInfo, bool) {
	for _, ti := range Tools {
		if ti.Tool == t {
			return ti, true
		}
	}
	return ToolInfo{}, false
}

// ParseTool validates a tool name.
func ParseTool(s string) (Tool, error) {
	if _, ok := Info(Tool(s)); !ok {
		return "", fmt.Errorf("unknown tool %q", s)
	}
	return Tool(s), nil
}

// Grading is the derived part shared by every record.
type Grading struct {
	Rating   *rating.Grade `json:"rating"`
	BadgeURL *string       `json:"badge_url"`
}

func (g *Grading) grade(table rating.Table, kind rating.Kind, value float64, label, display string) {
	r := table.Rate(kind, value)
	url := badge.URL(label, display, r)
	g.Rating = &r
	g.BadgeURL = &url
}

// Coverage is a Clover coverage summary.
type Coverage struct {
	LineCoverage   *float64 `json:"line_coverage"`
	BranchCoverage *float64 `json:"branch_coverage"`
	LinesCovered   int      `json:"lines_covered"`
	LinesTotal     int      `json:"lines_total"`
	Grading
}

// FileCount is a (file, count) pair encoded as a two-element JSON array.
type FileCount struct {
	File  string
	Count int
}

func (fc FileCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{fc.File, fc.Count})
}

func (fc *FileCount) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("file count: want 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &fc.File); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &fc.Count)
}

// TypeCheck is a PHPStan summary.
type TypeCheck struct {
	Errors          *int        `json:"errors"`
	FilesWithErrors int         `json:"files_with_errors"`
	FileBreakdown   []FileCount `json:"file_breakdown"`
	Grading
}

// Style is a PHP_CodeSniffer summary.
type Style struct {
	Violations    *int `json:"violations"`
	Errors        int  `json:"errors"`
	Warnings      int  `json:"warnings"`
	FilesAffected int  `json:"files_affected"`
	Grading
}

// Security is a phpcs-security-audit summary.
type Security struct {
	Issues *int `json:"issues"`
	High   int  `json:"high"`
	Medium int  `json:"medium"`
	Low    int  `json:"low"`
	Grading
}

// Size is a PHPLOC size and complexity summary.
type Size struct {
	LOC           *int     `json:"loc"`
	LLOC          *int     `json:"lloc"`
	Classes       *int     `json:"classes"`
	Methods       *int     `json:"methods"`
	AvgComplexity *float64 `json:"avg_complexity"`
	MaxComplexity *int     `json:"max_complexity"`
	Grading
}

// Mess is a PHPMD summary.
type Mess struct {
	Violations    *int           `json:"violations"`
	ByRuleset     map[string]int `json:"by_ruleset"`
	FilesAffected int            `json:"files_affected"`
	Grading
}

// LanguageStats is jscpd's per-format breakdown.
type LanguageStats struct {
	Clones          int     `json:"clones"`
	DuplicatedLines int     `json:"duplicated_lines"`
	Lines           int     `json:"lines"`
	Percentage      float64 `json:"percentage"`
}

// Duplication is a jscpd summary.
type Duplication struct {
	Duplicates      *int                     `json:"duplicates"`
	Percentage      *float64                 `json:"percentage"`
	Clones          int                      `json:"clones"`
	DuplicatedLines int                      `json:"duplicated_lines"`
	TotalLines      int                      `json:"total_lines"`
	ByLanguage      map[string]LanguageStats `json:"by_language"`
	Grading
}

// Metrics is one run's snapshot, one record per tool.
type Metrics struct {
	Coverage Coverage    `json:"coverage"`
	PHPStan  TypeCheck   `json:"phpstan"`
	PHPCS    Style       `json:"phpcs"`
	Security Security    `json:"security"`
	PHPLOC   Size        `json:"phploc"`
	PHPMD    Mess        `json:"phpmd"`
	JSCPD    Duplication `json:"jscpd"`
}

// Primary returns tool's primary numeric value, if present.
func (m *Metrics) Primary(t Tool) (float64, bool) {
	switch t {
	case ToolCoverage:
		return floatOf(m.Coverage.LineCoverage)
	case ToolPHPStan:
		return intOf(m.PHPStan.Errors)
	case ToolPHPCS:
		return intOf(m.PHPCS.Violations)
	case ToolSecurity:
		return intOf(m.Security.Issues)
	case ToolPHPLOC:
		return floatOf(m.PHPLOC.AvgComplexity)
	case ToolPHPMD:
		return intOf(m.PHPMD.Violations)
	case ToolJSCPD:
		return floatOf(m.JSCPD.Percentage)
	}
	return 0, false
}

// Grade returns tool's derived rating, if present.
func (m *Metrics) Grade(t Tool) *rating.Grade {
	switch t {
	case ToolCoverage:
		return m.Coverage.Rating
	case ToolPHPStan:
		return m.PHPStan.Rating
	case ToolPHPCS:
		return m.PHPCS.Rating
	case ToolSecurity:
		return m.Security.Rating
	case ToolPHPLOC:
		return m.PHPLOC.Rating
	case ToolPHPMD:
		return m.PHPMD.Rating
	case ToolJSCPD:
		return m.JSCPD.Rating
	}
	return nil
}

func floatOf(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

func intOf(p *int) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return float64(*p), true
}
