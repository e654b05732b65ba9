// SPDX-License-Identifier: AGPL-3.0-or-later

// Package rating maps numeric quality metrics to A-D letter grades.
package rating

import (
	"fmt"
	"strings"
)

// Grade is a letter grade summarizing a metric's health.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
)

// Kind identifies which threshold set applies to a value.
type Kind string

const (
	KindCoverage    Kind = "coverage"
	KindPHPStan     Kind = "phpstan"
	KindPHPCS       Kind = "phpcs"
	KindSecurity    Kind = "security"
	KindComplexity  Kind = "complexity"
	KindDuplication Kind = "duplication"
)

// Thresholds are the inclusive upper (or lower, for coverage) bounds for A, B and C.
type Thresholds struct {
	A float64 `yaml:"a" toml:"a"`
	B float64 `yaml:"b" toml:"b"`
	C float64 `yaml:"c" toml:"c"`
}

// Table is an immutable set of per-kind thresholds.
type Table struct {
	byKind map[Kind]Thresholds
}

// fallback applies to kinds missing from a table.
var fallback = Thresholds{A: 0, B: 10, C: 50}

// DefaultTable holds the stock thresholds.
var DefaultTable = Table{byKind: map[Kind]Thresholds{
	KindCoverage:    {A: 80, B: 60, C: 40},
	KindPHPStan:     {A: 0, B: 10, C: 50},
	KindPHPCS:       {A: 0, B: 20, C: 100},
	KindSecurity:    {A: 0, B: 2, C: 10},
	KindComplexity:  {A: 5, B: 10, C: 20},
	KindDuplication: {A: 3, B: 5, C: 10},
}}

// Rate grades value using DefaultTable.
func Rate(kind Kind, value float64) Grade {
	return DefaultTable.Rate(kind, value)
}

// Rate grades value for kind. Coverage is higher-is-better, every other kind lower-is-better.
func (t Table) Rate(kind Kind, value float64) Grade {
	th := t.Thresholds(kind)
	if kind == KindCoverage {
		switch {
		case value >= th.A:
			return GradeA
		case value >= th.B:
			return GradeB
		case value >= th.C:
			return GradeC
		}
		return GradeD
	}
	switch {
	case value <= th.A:
		return GradeA
	case value <= th.B:
		return GradeB
	case value <= th.C:
		return GradeC
	}
	return GradeD
}

// Thresholds returns the thresholds for kind, or the fallback set for unknown
// kinds. The zero Table behaves like DefaultTable.
func (t Table) Thresholds(kind Kind) Thresholds {
	byKind := t.byKind
	if byKind == nil {
		byKind = DefaultTable.byKind
	}
	if th, ok := byKind[kind]; ok {
		return th
	}
	return fallback
}

// With returns a copy of t with kind's thresholds replaced.
func (t Table) With(kind Kind, th Thresholds) Table {
	base := t.byKind
	if base == nil {
		base = DefaultTable.byKind
	}
	next := make(map[Kind]Thresholds, len(base)+1)
	for k, v := range base {
		next[k] = v
	}
	next[kind] = th
	return Table{byKind: next}
}

// Validate reports whether th is ordered consistently for kind.
func (th Thresholds) Validate(kind Kind) error {
	if kind == KindCoverage {
		if th.A < th.B || th.B < th.C {
			return fmt.Errorf("thresholds for %s must satisfy a >= b >= c, got %v/%v/%v", kind, th.A, th.B, th.C)
		}
		return nil
	}
	if th.A > th.B || th.B > th.C {
		return fmt.Errorf("thresholds for %s must satisfy a <= b <= c, got %v/%v/%v", kind, th.A, th.B, th.C)
	}
	return nil
}

// ParseKind normalizes a user-supplied kind name. Unknown names are kept as-is
// so they fall back to the default thresholds.
func ParseKind(s string) Kind {
	return Kind(strings.ToLower(strings.TrimSpace(s)))
}

var colors = map[Grade]string{
	GradeA: "brightgreen",
	GradeB: "green",
	GradeC: "yellow",
	GradeD: "red",
}

// Color returns the shields.io color name for g.
func (g Grade) Color() string {
	if c, ok := colors[g]; ok {
		return c
	}
	return "lightgrey"
}

// Score maps A..D to 1..4; unknown grades score 0.
func (g Grade) Score() int {
	switch g {
	case GradeA:
		return 1
	case GradeB:
		return 2
	case GradeC:
		return 3
	case GradeD:
		return 4
	}
	return 0
}

// Ptr returns a pointer to g.
func (g Grade) Ptr() *Grade { return &g }
