// SPDX-License-Identifier: AGPL-3.0-or-later
package report

import "github.com/bartekus/qualitydash/internal/rating"

// Mock returns a fixed, plausible snapshot for exercising the dashboard
// without real tool output.
func Mock() Metrics {
	grade := func(g rating.Grade) Grading { return Grading{Rating: g.Ptr()} }

	return Metrics{
		Coverage: Coverage{
			LineCoverage: floatPtr(75.5),
			LinesCovered: 1500,
			LinesTotal:   2000,
			Grading:      grade(rating.GradeB),
		},
		PHPStan: TypeCheck{
			Errors:          intPtr(5),
			FilesWithErrors: 3,
			Grading:         grade(rating.GradeB),
		},
		PHPCS: Style{
			Violations: intPtr(15),
			Errors:     5,
			Warnings:   10,
			Grading:    grade(rating.GradeB),
		},
		Security: Security{
			Issues:  intPtr(1),
			High:    0,
			Medium:  1,
			Grading: grade(rating.GradeB),
		},
		PHPMD: Mess{
			Violations:    intPtr(10),
			FilesAffected: 5,
			ByRuleset:     map[string]int{"Code Size Rules": 8, "Unused Code Rules": 2},
			Grading:       grade(rating.GradeB),
		},
		JSCPD: Duplication{
			Percentage:      floatPtr(2.5),
			Clones:          5,
			DuplicatedLines: 100,
			Grading:         grade(rating.GradeA),
		},
	}
}
