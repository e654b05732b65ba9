// SPDX-License-Identifier: AGPL-3.0-or-later
package report

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// cloverMetrics is the statements/coveredstatements pair of a <metrics> element.
type cloverMetrics struct {
	statements int
	covered    int
}

// Coverage parses a Clover coverage XML report.
func (r *Reader) Coverage(path string) Coverage {
	return parseFile(r, ToolCoverage, path, r.decodeCoverage)
}

func (r *Reader) decodeCoverage(data []byte) (Coverage, error) {
	primary, project, err := scanClover(data)
	if err != nil {
		return Coverage{}, err
	}

	var c Coverage
	for _, m := range []*cloverMetrics{primary, project} {
		if m == nil || m.statements <= 0 {
			continue
		}
		c.LineCoverage = floatPtr(percent(m.covered, m.statements))
		c.LinesCovered = m.covered
		c.LinesTotal = m.statements
		break
	}

	if c.LineCoverage != nil {
		info, _ := Info(ToolCoverage)
		c.grade(r.table(), info.Kind, *c.LineCoverage, info.Label, FormatFloat(*c.LineCoverage)+"%")
	}
	return c, nil
}

// scanClover walks the whole document, returning the first <metrics> element
// anywhere and the first <metrics> that is a direct child of <project>.
func scanClover(data []byte) (primary, project *cloverMetrics, err error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var stack []string
	sawRoot := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("parsing coverage XML: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			sawRoot = true
			if el.Name.Local == "metrics" {
				parentIsProject := len(stack) > 0 && stack[len(stack)-1] == "project"
				if primary == nil || (parentIsProject && project == nil) {
					m, err := readCloverMetrics(el)
					if err != nil {
						return nil, nil, err
					}
					if primary == nil {
						primary = m
					}
					if parentIsProject && project == nil {
						project = m
					}
				}
			}
			stack = append(stack, el.Name.Local)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if !sawRoot {
		return nil, nil, errors.New("parsing coverage XML: no root element")
	}
	return primary, project, nil
}

func readCloverMetrics(el xml.StartElement) (*cloverMetrics, error) {
	m := &cloverMetrics{}
	for _, a := range el.Attr {
		var dst *int
		switch a.Name.Local {
		case "statements":
			dst = &m.statements
		case "coveredstatements":
			dst = &m.covered
		default:
			continue
		}
		n, err := strconv.Atoi(a.Value)
		if err != nil {
			return nil, fmt.Errorf("metrics attribute %s: %w", a.Name.Local, err)
		}
		*dst = n
	}
	return m, nil
}
