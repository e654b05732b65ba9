// SPDX-License-Identifier: AGPL-3.0-or-later
package report

import (
	"encoding/json"
	"strconv"
)

type phpcsReport struct {
	Totals struct {
		Errors   int `json:"errors"`
		Warnings int `json:"warnings"`
	} `json:"totals"`
	Files json.RawMessage `json:"files"`
}

// PHPCS parses a PHP_CodeSniffer JSON report.
func (r *Reader) PHPCS(path string) Style {
	return parseFile(r, ToolPHPCS, path, r.decodePHPCS)
}

func (r *Reader) decodePHPCS(data []byte) (Style, error) {
	var rep phpcsReport
	if err := json.Unmarshal(data, &rep); err != nil {
		return Style{}, err
	}

	members, err := orderedMembers(rep.Files)
	if err != nil {
		return Style{}, err
	}

	s := Style{
		Errors:     rep.Totals.Errors,
		Warnings:   rep.Totals.Warnings,
		Violations: intPtr(rep.Totals.Errors + rep.Totals.Warnings),
	}
	for _, m := range members {
		var ft fileTotals
		if err := json.Unmarshal(m.Value, &ft); err != nil {
			return Style{}, err
		}
		if ft.Errors > 0 || ft.Warnings > 0 {
			s.FilesAffected++
		}
	}

	info, _ := Info(ToolPHPCS)
	s.grade(r.table(), info.Kind, float64(*s.Violations), info.Label, strconv.Itoa(*s.Violations)+" issues")
	return s, nil
}

// Security parses a phpcs-security-audit JSON report. Errors count as high
// severity, warnings as medium.
func (r *Reader) Security(path string) Security {
	return parseFile(r, ToolSecurity, path, r.decodeSecurity)
}

func (r *Reader) decodeSecurity(data []byte) (Security, error) {
	var rep phpcsReport
	if err := json.Unmarshal(data, &rep); err != nil {
		return Security{}, err
	}

	s := Security{
		High:   rep.Totals.Errors,
		Medium: rep.Totals.Warnings,
		Issues: intPtr(rep.Totals.Errors + rep.Totals.Warnings),
	}

	info, _ := Info(ToolSecurity)
	s.grade(r.table(), info.Kind, float64(*s.Issues), info.Label, strconv.Itoa(*s.Issues)+" issues")
	return s, nil
}
