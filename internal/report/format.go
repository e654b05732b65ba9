// SPDX-License-Identifier: AGPL-3.0-or-later
package report

import (
	"math"
	"strconv"
	"strings"
)

// FormatFloat prints v the way the dashboard has always shown numbers:
// shortest representation, with a trailing ".0" for whole values.
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !math.IsInf(v, 0) && !math.IsNaN(v) {
		s += ".0"
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func percent(part, whole int) float64 {
	return round2(float64(part) / float64(whole) * 100)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return strconv.Itoa(n) + " " + many
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
