// SPDX-License-Identifier: AGPL-3.0-or-later

// Package badge renders flat two-segment status badges, both as local SVG
// and as a shields.io URL.
package badge

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bartekus/qualitydash/internal/rating"
)

const (
	charWidth   = 7
	padding     = 10
	labelFill   = "#555"
	unknownFill = "#9f9f9f"

	shieldsBase = "https://img.shields.io/badge/"
)

var hexColors = map[string]string{
	"brightgreen": "#4c1",
	"green":       "#97ca00",
	"yellow":      "#dfb317",
	"red":         "#e05d44",
	"lightgrey":   unknownFill,
}

// Width returns the rendered width of one badge segment holding text,
// counting characters rather than bytes.
func Width(text string) int {
	return charWidth*utf8.RuneCountInString(text) + padding
}

// Fill returns the hex fill for g's value segment.
func Fill(g rating.Grade) string {
	if c, ok := hexColors[g.Color()]; ok {
		return c
	}
	return unknownFill
}

// SVG renders the badge as a standalone SVG document.
func SVG(label, value string, g rating.Grade) string {
	labelWidth := Width(label)
	valueWidth := Width(value)
	total := labelWidth + valueWidth

	l := html.EscapeString(label)
	v := html.EscapeString(value)
	lx := half(float64(labelWidth))
	vx := half(float64(labelWidth)*2 + float64(valueWidth))

	var b strings.Builder
	fmt.Fprintf(&b, "<svg xmlns=\"http://www.w3.org/2000/svg\" width=\"%d\" height=\"20\">\n", total)
	b.WriteString("  <linearGradient id=\"b\" x2=\"0\" y2=\"100%\">\n")
	b.WriteString("    <stop offset=\"0\" stop-color=\"#bbb\" stop-opacity=\".1\"/>\n")
	b.WriteString("    <stop offset=\"1\" stop-opacity=\".1\"/>\n")
	b.WriteString("  </linearGradient>\n")
	b.WriteString("  <mask id=\"a\">\n")
	fmt.Fprintf(&b, "    <rect width=\"%d\" height=\"20\" rx=\"3\" fill=\"#fff\"/>\n", total)
	b.WriteString("  </mask>\n")
	b.WriteString("  <g mask=\"url(#a)\">\n")
	fmt.Fprintf(&b, "    <rect width=\"%d\" height=\"20\" fill=\"%s\"/>\n", labelWidth, labelFill)
	fmt.Fprintf(&b, "    <rect x=\"%d\" width=\"%d\" height=\"20\" fill=\"%s\"/>\n", labelWidth, valueWidth, Fill(g))
	fmt.Fprintf(&b, "    <rect width=\"%d\" height=\"20\" fill=\"url(#b)\"/>\n", total)
	b.WriteString("  </g>\n")
	b.WriteString("  <g fill=\"#fff\" text-anchor=\"middle\" font-family=\"DejaVu Sans,Verdana,Geneva,sans-serif\" font-size=\"11\">\n")
	fmt.Fprintf(&b, "    <text x=\"%s\" y=\"15\" fill=\"#010101\" fill-opacity=\".3\">%s</text>\n", lx, l)
	fmt.Fprintf(&b, "    <text x=\"%s\" y=\"14\">%s</text>\n", lx, l)
	fmt.Fprintf(&b, "    <text x=\"%s\" y=\"15\" fill=\"#010101\" fill-opacity=\".3\">%s</text>\n", vx, v)
	fmt.Fprintf(&b, "    <text x=\"%s\" y=\"14\">%s</text>\n", vx, v)
	b.WriteString("  </g>\n")
	b.WriteString("</svg>")
	return b.String()
}

func half(w float64) string {
	return strconv.FormatFloat(w/2, 'f', 1, 64)
}

// URL returns the shields.io static badge URL for the same badge.
func URL(label, value string, g rating.Grade) string {
	return shieldsBase + escape(label) + "-" + escape(value) + "-" + g.Color()
}

// escape applies shields.io path escaping. '%' goes first so the
// sequences introduced for spaces are not escaped twice.
func escape(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, " ", "%20")
	s = strings.ReplaceAll(s, "-", "--")
	s = strings.ReplaceAll(s, "_", "__")
	return s
}
