// SPDX-License-Identifier: AGPL-3.0-or-later
package report

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/qualitydash/internal/rating"
)

func newTestReader(t *testing.T) (*Reader, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewReader(logger, rating.DefaultTable), &buf
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCoverage_MissingFile(t *testing.T) {
	r, logs := newTestReader(t)

	c := r.Coverage(filepath.Join(t.TempDir(), "nope.xml"))

	assert.Nil(t, c.LineCoverage)
	assert.Nil(t, c.Rating)
	assert.Nil(t, c.BadgeURL)
	assert.Contains(t, logs.String(), "report file not found")
}

func TestCoverage_Statements(t *testing.T) {
	r, _ := newTestReader(t)
	path := writeFixture(t, "coverage.xml", `<?xml version="1.0"?>
<coverage generated="1">
  <project timestamp="1">
    <metrics statements="200" coveredstatements="150" elements="300"/>
  </project>
</coverage>`)

	c := r.Coverage(path)

	require.NotNil(t, c.LineCoverage)
	assert.Equal(t, 75.0, *c.LineCoverage)
	assert.Equal(t, 150, c.LinesCovered)
	assert.Equal(t, 200, c.LinesTotal)
	require.NotNil(t, c.Rating)
	assert.Equal(t, rating.GradeB, *c.Rating)
	require.NotNil(t, c.BadgeURL)
	assert.Equal(t, "https://img.shields.io/badge/coverage-75.0%25-green", *c.BadgeURL)
}

func TestCoverage_FallsBackToProjectMetrics(t *testing.T) {
	r, _ := newTestReader(t)
	path := writeFixture(t, "coverage.xml", `<coverage>
  <project>
    <file name="a.php"><metrics statements="0" coveredstatements="0"/></file>
    <metrics statements="10" coveredstatements="9"/>
  </project>
</coverage>`)

	c := r.Coverage(path)

	require.NotNil(t, c.LineCoverage)
	assert.Equal(t, 90.0, *c.LineCoverage)
	assert.Equal(t, rating.GradeA, *c.Rating)
}

func TestCoverage_ZeroStatements(t *testing.T) {
	r, _ := newTestReader(t)
	path := writeFixture(t, "coverage.xml", `<coverage><project><metrics statements="0" coveredstatements="0"/></project></coverage>`)

	c := r.Coverage(path)

	assert.Nil(t, c.LineCoverage)
	assert.Nil(t, c.Rating)
}

func TestCoverage_Malformed(t *testing.T) {
	r, logs := newTestReader(t)
	path := writeFixture(t, "coverage.xml", `<coverage><project><metrics statements="10"`)

	c := r.Coverage(path)

	assert.Nil(t, c.LineCoverage)
	assert.Nil(t, c.Rating)
	assert.Contains(t, logs.String(), "parsing report failed")
}

func TestCoverage_BadAttribute(t *testing.T) {
	r, _ := newTestReader(t)
	path := writeFixture(t, "coverage.xml", `<coverage><metrics statements="many" coveredstatements="1"/></coverage>`)

	c := r.Coverage(path)

	assert.Nil(t, c.LineCoverage)
}

func TestPHPStan(t *testing.T) {
	r, _ := newTestReader(t)
	path := writeFixture(t, "phpstan.json", `{
  "totals": {"errors": 11, "file_errors": 14},
  "files": {
    "src/A.php": {"errors": 2},
    "src/B.php": {"errors": 5},
    "src/C.php": {"errors": 2},
    "src/D.php": {"errors": 0}
  }
}`)

	tc := r.PHPStan(path)

	require.NotNil(t, tc.Errors)
	assert.Equal(t, 11, *tc.Errors)
	assert.Equal(t, 3, tc.FilesWithErrors)
	assert.Equal(t, []FileCount{
		{File: "src/B.php", Count: 5},
		{File: "src/A.php", Count: 2},
		{File: "src/C.php", Count: 2},
		{File: "src/D.php", Count: 0},
	}, tc.FileBreakdown)
	assert.Equal(t, rating.GradeC, *tc.Rating)
	assert.Equal(t, "https://img.shields.io/badge/PHPStan-11%20errors-yellow", *tc.BadgeURL)
}

func TestPHPStan_TopTenAndEmptyFilesArray(t *testing.T) {
	r, _ := newTestReader(t)

	var files bytes.Buffer
	files.WriteString("{")
	for i := 0; i < 12; i++ {
		if i > 0 {
			files.WriteString(",")
		}
		files.WriteString(`"f` + string(rune('a'+i)) + `.php":{"errors":1}`)
	}
	files.WriteString("}")
	tc := r.PHPStan(writeFixture(t, "a.json", `{"totals":{"errors":1},"files":`+files.String()+`}`))
	require.Len(t, tc.FileBreakdown, 10)
	assert.Equal(t, "fa.php", tc.FileBreakdown[0].File)
	assert.Equal(t, 12, tc.FilesWithErrors)
	assert.Equal(t, "https://img.shields.io/badge/PHPStan-1%20error-green", *tc.BadgeURL)

	tc = r.PHPStan(writeFixture(t, "b.json", `{"totals":{"errors":0,"file_errors":0},"files":[]}`))
	require.NotNil(t, tc.Errors)
	assert.Equal(t, 0, *tc.Errors)
	assert.Empty(t, tc.FileBreakdown)
	assert.Equal(t, rating.GradeA, *tc.Rating)
}

func TestPHPStan_Malformed(t *testing.T) {
	r, _ := newTestReader(t)

	tc := r.PHPStan(writeFixture(t, "phpstan.json", `{"totals": `))

	assert.Nil(t, tc.Errors)
	assert.Nil(t, tc.Rating)
}

func TestPHPCS(t *testing.T) {
	r, _ := newTestReader(t)
	path := writeFixture(t, "phpcs.json", `{
  "totals": {"errors": 5, "warnings": 10, "fixable": 3},
  "files": {
    "a.php": {"errors": 5, "warnings": 0, "messages": []},
    "b.php": {"errors": 0, "warnings": 10, "messages": []},
    "c.php": {"errors": 0, "warnings": 0, "messages": []}
  }
}`)

	s := r.PHPCS(path)

	require.NotNil(t, s.Violations)
	assert.Equal(t, 15, *s.Violations)
	assert.Equal(t, 5, s.Errors)
	assert.Equal(t, 10, s.Warnings)
	assert.Equal(t, 2, s.FilesAffected)
	assert.Equal(t, rating.GradeB, *s.Rating)
	assert.Equal(t, "https://img.shields.io/badge/code%20style-15%20issues-green", *s.BadgeURL)
}

func TestSecurity(t *testing.T) {
	r, _ := newTestReader(t)
	path := writeFixture(t, "security.json", `{"totals": {"errors": 1, "warnings": 2}, "files": {}}`)

	s := r.Security(path)

	require.NotNil(t, s.Issues)
	assert.Equal(t, 3, *s.Issues)
	assert.Equal(t, 1, s.High)
	assert.Equal(t, 2, s.Medium)
	assert.Equal(t, 0, s.Low)
	assert.Equal(t, rating.GradeC, *s.Rating)
}

func TestPHPLOC(t *testing.T) {
	r, _ := newTestReader(t)

	s := r.PHPLOC(writeFixture(t, "phploc.json", `{"loc": 1200, "lloc": 400, "classes": 12, "methods": 40, "ccnByLloc": 0.27, "ccnMax": 14}`))
	require.NotNil(t, s.AvgComplexity)
	assert.Equal(t, 0.27, *s.AvgComplexity)
	assert.Equal(t, 14, *s.MaxComplexity)
	assert.Equal(t, 1200, *s.LOC)
	assert.Equal(t, rating.GradeA, *s.Rating)

	s = r.PHPLOC(writeFixture(t, "phploc2.json", `{"loc": 10, "methods": 3, "ccn": 20, "ccnByLloc": 0}`))
	require.NotNil(t, s.AvgComplexity)
	assert.Equal(t, 6.67, *s.AvgComplexity)
	assert.Equal(t, rating.GradeB, *s.Rating)
	assert.Equal(t, "https://img.shields.io/badge/complexity-avg%206.67-green", *s.BadgeURL)
}

func TestPHPMD(t *testing.T) {
	r, _ := newTestReader(t)
	path := writeFixture(t, "phpmd.json", `{
  "version": "2.15.0",
  "files": [
    {"file": "a.php", "violations": [{"ruleSet": "Code Size Rules"}, {"ruleSet": "Unused Code Rules"}]},
    {"file": "b.php", "violations": [{"ruleSet": "Code Size Rules"}, {"rule": "X"}]},
    {"file": "a.php", "violations": []}
  ]
}`)

	m := r.PHPMD(path)

	require.NotNil(t, m.Violations)
	assert.Equal(t, 4, *m.Violations)
	assert.Equal(t, 2, m.FilesAffected)
	assert.Equal(t, map[string]int{"Code Size Rules": 2, "Unused Code Rules": 1, "unknown": 1}, m.ByRuleset)
	assert.Equal(t, rating.GradeB, *m.Rating)
}

func TestPHPMD_NonObjectLeavesRecordEmpty(t *testing.T) {
	r, _ := newTestReader(t)

	m := r.PHPMD(writeFixture(t, "phpmd.json", `[]`))

	assert.Nil(t, m.Violations)
	assert.Nil(t, m.Rating)
}

func TestJSCPD_NestedTotalWithoutPercentage(t *testing.T) {
	r, _ := newTestReader(t)
	path := writeFixture(t, "jscpd.json", `{"statistics": {"total": {"duplicatedLines": 10, "lines": 200}}}`)

	d := r.JSCPD(path)

	require.NotNil(t, d.Percentage)
	assert.Equal(t, 5.0, *d.Percentage)
	assert.Equal(t, rating.GradeB, *d.Rating)
}

func TestJSCPD_FormatsFromSources(t *testing.T) {
	r, _ := newTestReader(t)
	path := writeFixture(t, "jscpd.json", `{"statistics": {
  "total": {"clones": 4, "duplicatedLines": 30, "lines": 300, "percentage": 10.004},
  "formats": {
    "php": {"sources": {
      "a.php": {"clones": 1, "duplicatedLines": 10, "lines": 100},
      "b.php": {"clones": 2, "duplicatedLines": 10, "lines": 50}
    }, "total": {"clones": 3}},
    "javascript": {"clones": 1, "duplicatedLines": 10, "lines": 150, "percentage": 6.6666},
    "broken": 3
  }
}}`)

	d := r.JSCPD(path)

	require.NotNil(t, d.Percentage)
	assert.Equal(t, 10.0, *d.Percentage)
	assert.Equal(t, 4, d.Clones)
	assert.Equal(t, 4, *d.Duplicates)
	assert.Equal(t, 30, d.DuplicatedLines)
	assert.Equal(t, 300, d.TotalLines)
	assert.Equal(t, map[string]LanguageStats{
		"php":        {Clones: 3, DuplicatedLines: 20, Lines: 150, Percentage: 13.33},
		"javascript": {Clones: 1, DuplicatedLines: 10, Lines: 150, Percentage: 6.67},
	}, d.ByLanguage)
	assert.Equal(t, rating.GradeC, *d.Rating)
}

func TestJSCPD_FlatTotalsZeroLines(t *testing.T) {
	r, _ := newTestReader(t)

	d := r.JSCPD(writeFixture(t, "jscpd.json", `{"statistics": {"clones": 0}}`))

	require.NotNil(t, d.Percentage)
	assert.Equal(t, 0.0, *d.Percentage)
	assert.Equal(t, rating.GradeA, *d.Rating)
}

func TestParseFile_RecoversFromPanic(t *testing.T) {
	r, logs := newTestReader(t)
	path := writeFixture(t, "x.json", `{}`)

	got := parseFile(r, ToolPHPCS, path, func([]byte) (Style, error) {
		panic("boom")
	})

	assert.Nil(t, got.Violations)
	assert.Contains(t, logs.String(), "boom")
}

func TestReadAll_SkipsUnrequestedTools(t *testing.T) {
	r, logs := newTestReader(t)
	path := writeFixture(t, "security.json", `{"totals": {"errors": 0, "warnings": 0}}`)

	m := r.ReadAll(Inputs{ToolSecurity: path, ToolPHPCS: ""})

	require.NotNil(t, m.Security.Issues)
	assert.Nil(t, m.PHPCS.Violations)
	assert.Nil(t, m.Coverage.LineCoverage)
	assert.NotContains(t, logs.String(), "not found")
}

func TestMetrics_RatingPresentIffPrimary(t *testing.T) {
	m := Mock()
	for _, ti := range Tools {
		_, ok := m.Primary(ti.Tool)
		assert.Equal(t, ok, m.Grade(ti.Tool) != nil, "tool %s", ti.Tool)
	}
}

func TestFileCount_JSON(t *testing.T) {
	data, err := json.Marshal([]FileCount{{File: "a.php", Count: 3}})
	require.NoError(t, err)
	assert.JSONEq(t, `[["a.php", 3]]`, string(data))

	var back []FileCount
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []FileCount{{File: "a.php", Count: 3}}, back)
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "75.0", FormatFloat(75))
	assert.Equal(t, "75.5", FormatFloat(75.5))
	assert.Equal(t, "0.0", FormatFloat(0))
	assert.Equal(t, "6.67", FormatFloat(6.67))
}
