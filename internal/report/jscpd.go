// SPDX-License-Identifier: AGPL-3.0-or-later
package report

import (
	"encoding/json"
)

type jscpdCounts struct {
	Clones          int      `json:"clones"`
	DuplicatedLines int      `json:"duplicatedLines"`
	Lines           int      `json:"lines"`
	Percentage      *float64 `json:"percentage"`
}

type jscpdStatistics struct {
	jscpdCounts
	Total   *jscpdCounts               `json:"total"`
	Formats map[string]json.RawMessage `json:"formats"`
}

type jscpdFormat struct {
	jscpdCounts
	Sources json.RawMessage `json:"sources"`
}

// JSCPD parses a jscpd JSON report. Totals live either directly under
// "statistics" or under "statistics.total"; per-format stats are either
// aggregated from a "sources" map or read from the format itself.
func (r *Reader) JSCPD(path string) Duplication {
	return parseFile(r, ToolJSCPD, path, r.decodeJSCPD)
}

func (r *Reader) decodeJSCPD(data []byte) (Duplication, error) {
	var rep struct {
		Statistics jscpdStatistics `json:"statistics"`
	}
	if err := json.Unmarshal(data, &rep); err != nil {
		return Duplication{}, err
	}

	stats := rep.Statistics
	totals := stats.jscpdCounts
	if stats.Total != nil {
		totals = *stats.Total
	}

	d := Duplication{
		Clones:          totals.Clones,
		DuplicatedLines: totals.DuplicatedLines,
		TotalLines:      totals.Lines,
		ByLanguage:      map[string]LanguageStats{},
		Duplicates:      intPtr(totals.Clones),
	}

	for lang, raw := range stats.Formats {
		ls, ok, err := languageStats(raw)
		if err != nil {
			return Duplication{}, err
		}
		if ok {
			d.ByLanguage[lang] = ls
		}
	}

	switch {
	case totals.Percentage != nil:
		d.Percentage = floatPtr(round2(*totals.Percentage))
	case totals.Lines > 0:
		d.Percentage = floatPtr(percent(totals.DuplicatedLines, totals.Lines))
	default:
		d.Percentage = floatPtr(0)
	}

	info, _ := Info(ToolJSCPD)
	d.grade(r.table(), info.Kind, *d.Percentage, info.Label, FormatFloat(*d.Percentage)+"%")
	return d, nil
}

// languageStats reads one "formats" entry. Non-object entries are skipped.
func languageStats(raw json.RawMessage) (LanguageStats, bool, error) {
	if !isObject(raw) {
		return LanguageStats{}, false, nil
	}
	var f jscpdFormat
	if err := json.Unmarshal(raw, &f); err != nil {
		return LanguageStats{}, false, err
	}

	if isObject(f.Sources) {
		var sources map[string]jscpdCounts
		if err := json.Unmarshal(f.Sources, &sources); err != nil {
			return LanguageStats{}, false, err
		}
		var ls LanguageStats
		for _, s := range sources {
			ls.Clones += s.Clones
			ls.DuplicatedLines += s.DuplicatedLines
			ls.Lines += s.Lines
		}
		if ls.Lines > 0 {
			ls.Percentage = percent(ls.DuplicatedLines, ls.Lines)
		}
		return ls, true, nil
	}

	ls := LanguageStats{
		Clones:          f.Clones,
		DuplicatedLines: f.DuplicatedLines,
		Lines:           f.Lines,
	}
	if f.Percentage != nil {
		ls.Percentage = round2(*f.Percentage)
	}
	return ls, true, nil
}
