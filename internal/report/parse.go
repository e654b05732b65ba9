// SPDX-License-Identifier: AGPL-3.0-or-later
package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/bartekus/qualitydash/internal/rating"
)

// Inputs maps a tool to the report file to read. Tools without an entry keep
// their empty record.
type Inputs map[Tool]string

// Reader parses tool reports. The zero value logs to slog.Default and rates
// with rating.DefaultTable.
type Reader struct {
	Logger *slog.Logger
	Table  *rating.Table
}

// NewReader creates a Reader using logger and table.
func NewReader(logger *slog.Logger, table rating.Table) *Reader {
	return &Reader{Logger: logger, Table: &table}
}

func (r *Reader) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Reader) table() rating.Table {
	if r.Table == nil {
		return rating.DefaultTable
	}
	return *r.Table
}

// ReadAll parses every requested input.
func (r *Reader) ReadAll(in Inputs) Metrics {
	var m Metrics
	for _, ti := range Tools {
		path, ok := in[ti.Tool]
		if !ok || path == "" {
			continue
		}
		switch ti.Tool {
		case ToolCoverage:
			m.Coverage = r.Coverage(path)
		case ToolPHPStan:
			m.PHPStan = r.PHPStan(path)
		case ToolPHPCS:
			m.PHPCS = r.PHPCS(path)
		case ToolSecurity:
			m.Security = r.Security(path)
		case ToolPHPLOC:
			m.PHPLOC = r.PHPLOC(path)
		case ToolPHPMD:
			m.PHPMD = r.PHPMD(path)
		case ToolJSCPD:
			m.JSCPD = r.JSCPD(path)
		}
	}
	return m
}

// parseFile is the shared parser boundary. decode only sees the file's bytes
// and may fail or panic; either way the zero T is returned.
func parseFile[T any](r *Reader, tool Tool, path string, decode func([]byte) (T, error)) (out T) {
	var empty T
	log := r.logger().With("tool", string(tool), "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("report file not found")
		} else {
			log.Error("reading report failed", "error", err)
		}
		return empty
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("unexpected error parsing report", "error", fmt.Sprint(rec))
			out = empty
		}
	}()

	res, err := decode(data)
	if err != nil {
		log.Error("parsing report failed", "error", err)
		return empty
	}
	log.Debug("report parsed")
	return res
}

// member is one key of a JSON object, in document order.
type member struct {
	Key   string
	Value json.RawMessage
}

// orderedMembers decodes a JSON object keeping key order. Anything other than
// an object (PHP encodes empty maps as []) yields no members.
func orderedMembers(raw json.RawMessage) ([]member, error) {
	if !isObject(raw) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	var out []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, member{Key: key, Value: v})
	}
	return out, nil
}

func isObject(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '{'
}
