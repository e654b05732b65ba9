// SPDX-License-Identifier: AGPL-3.0-or-later
package report

import "encoding/json"

type phplocReport struct {
	LOC       float64  `json:"loc"`
	LLOC      float64  `json:"lloc"`
	Classes   float64  `json:"classes"`
	Methods   *float64 `json:"methods"`
	CCNByLLOC float64  `json:"ccnByLloc"`
	CCN       float64  `json:"ccn"`
	CCNMax    float64  `json:"ccnMax"`
}

// PHPLOC parses a PHPLOC JSON (--log-json) report.
func (r *Reader) PHPLOC(path string) Size {
	return parseFile(r, ToolPHPLOC, path, r.decodePHPLOC)
}

func (r *Reader) decodePHPLOC(data []byte) (Size, error) {
	var rep phplocReport
	if err := json.Unmarshal(data, &rep); err != nil {
		return Size{}, err
	}

	methods := 0
	if rep.Methods != nil {
		methods = int(*rep.Methods)
	}
	s := Size{
		LOC:           intPtr(int(rep.LOC)),
		LLOC:          intPtr(int(rep.LLOC)),
		Classes:       intPtr(int(rep.Classes)),
		Methods:       intPtr(methods),
		MaxComplexity: intPtr(int(rep.CCNMax)),
	}

	avg := rep.CCNByLLOC
	if avg == 0 {
		// An absent method count divides by one.
		divisor := 1.0
		if rep.Methods != nil {
			divisor = *rep.Methods
		}
		if divisor > 0 {
			avg = round2(rep.CCN / divisor)
		}
	}
	s.AvgComplexity = floatPtr(avg)

	info, _ := Info(ToolPHPLOC)
	s.grade(r.table(), info.Kind, avg, info.Label, "avg "+FormatFloat(avg))
	return s, nil
}
