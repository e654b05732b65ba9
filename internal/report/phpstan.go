// SPDX-License-Identifier: AGPL-3.0-or-later
package report

import (
	"encoding/json"
	"sort"
)

const topFiles = 10

type phpstanReport struct {
	Totals struct {
		Errors int `json:"errors"`
	} `json:"totals"`
	Files json.RawMessage `json:"files"`
}

type fileTotals struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
}

// PHPStan parses a PHPStan JSON (--error-format=json) report.
func (r *Reader) PHPStan(path string) TypeCheck {
	return parseFile(r, ToolPHPStan, path, r.decodePHPStan)
}

func (r *Reader) decodePHPStan(data []byte) (TypeCheck, error) {
	var rep phpstanReport
	if err := json.Unmarshal(data, &rep); err != nil {
		return TypeCheck{}, err
	}

	files, err := fileTotalsInOrder(rep.Files)
	if err != nil {
		return TypeCheck{}, err
	}

	tc := TypeCheck{Errors: intPtr(rep.Totals.Errors)}
	breakdown := make([]FileCount, 0, len(files))
	for _, f := range files {
		if f.Count > 0 {
			tc.FilesWithErrors++
		}
		breakdown = append(breakdown, f)
	}
	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].Count > breakdown[j].Count
	})
	if len(breakdown) > topFiles {
		breakdown = breakdown[:topFiles]
	}
	tc.FileBreakdown = breakdown

	info, _ := Info(ToolPHPStan)
	tc.grade(r.table(), info.Kind, float64(*tc.Errors), info.Label, plural(*tc.Errors, "error", "errors"))
	return tc, nil
}

// fileTotalsInOrder decodes a {"path": {"errors": n}} map preserving file order.
func fileTotalsInOrder(raw json.RawMessage) ([]FileCount, error) {
	members, err := orderedMembers(raw)
	if err != nil {
		return nil, err
	}
	out := make([]FileCount, 0, len(members))
	for _, m := range members {
		var ft fileTotals
		if err := json.Unmarshal(m.Value, &ft); err != nil {
			return nil, err
		}
		out = append(out, FileCount{File: m.Key, Count: ft.Errors})
	}
	return out, nil
}
