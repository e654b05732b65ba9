// SPDX-License-Identifier: AGPL-3.0-or-later
package report

import (
	"encoding/json"
	"strconv"
)

const unknownRuleset = "unknown"

type phpmdReport struct {
	Files []struct {
		File       string `json:"file"`
		Violations []struct {
			RuleSet *string `json:"ruleSet"`
		} `json:"violations"`
	} `json:"files"`
}

// PHPMD parses a PHPMD JSON report.
func (r *Reader) PHPMD(path string) Mess {
	return parseFile(r, ToolPHPMD, path, r.decodePHPMD)
}

func (r *Reader) decodePHPMD(data []byte) (Mess, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Mess{}, err
	}
	// Only the object form carries a file list.
	if !isObject(raw) {
		return Mess{}, nil
	}

	var rep phpmdReport
	if err := json.Unmarshal(raw, &rep); err != nil {
		return Mess{}, err
	}

	total := 0
	rulesets := map[string]int{}
	affected := map[string]struct{}{}
	for _, f := range rep.Files {
		total += len(f.Violations)
		affected[f.File] = struct{}{}
		for _, v := range f.Violations {
			name := unknownRuleset
			if v.RuleSet != nil {
				name = *v.RuleSet
			}
			rulesets[name]++
		}
	}

	m := Mess{
		Violations:    intPtr(total),
		ByRuleset:     rulesets,
		FilesAffected: len(affected),
	}

	info, _ := Info(ToolPHPMD)
	m.grade(r.table(), info.Kind, float64(total), info.Label, strconv.Itoa(total)+" issues")
	return m, nil
}
