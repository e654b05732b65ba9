// SPDX-License-Identifier: AGPL-3.0-or-later
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/qualitydash/internal/history"
	"github.com/bartekus/qualitydash/internal/rating"
	"github.com/bartekus/qualitydash/internal/report"
)

var fixedNow = time.Date(2026, 3, 4, 12, 30, 0, 0, time.UTC)

func newTestRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewRunner(logger).WithClock(func() time.Time { return fixedNow }), &buf
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

type recordingPublisher struct {
	dirs []string
	err  error
}

func (p *recordingPublisher) PublishDir(_ context.Context, dir string) (int, error) {
	p.dirs = append(p.dirs, dir)
	if p.err != nil {
		return 0, p.err
	}
	return 3, nil
}

func TestRun_MockWritesAllArtifacts(t *testing.T) {
	r, _ := newTestRunner(t)
	dir := t.TempDir()
	tmpl := filepath.Join(t.TempDir(), "template.html")
	writeFile(t, tmpl, "<p>{{coverage_value}}% {{ coverage_rating }} {{commit_sha}} {{unknown}}</p>")

	res, err := r.Run(context.Background(), Options{
		Mock:       true,
		OutputDir:  dir,
		Template:   tmpl,
		CommitSHA:  "abcdef1234567890",
		Table:      rating.DefaultTable,
		Prometheus: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.HistoryLength)
	assert.Equal(t, []string{"coverage", "phpstan", "phpcs", "security", "phpmd", "duplication"}, res.Badges)
	for _, name := range res.Badges {
		assert.FileExists(t, filepath.Join(dir, "badges", name+".svg"))
	}
	assert.NoFileExists(t, filepath.Join(dir, "badges", "complexity.svg"))

	html, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>75.5% B abcdef12 {{unknown}}</p>", string(html))
	assert.Equal(t, filepath.Join(dir, "index.html"), res.DashboardPath)

	assert.FileExists(t, filepath.Join(dir, "summary.md"))
	assert.FileExists(t, filepath.Join(dir, "metrics.prom"))
	assert.Equal(t, filepath.Join(dir, "metrics.prom"), res.TextfilePath)
}

func TestRun_SnapshotDocument(t *testing.T) {
	r, _ := newTestRunner(t)
	dir := t.TempDir()

	_, err := r.Run(context.Background(), Options{Mock: true, OutputDir: dir, CommitSHA: "abc", Table: rating.DefaultTable})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "api", "metrics.json"))
	require.NoError(t, err)

	var doc struct {
		GeneratedAt string         `json:"generated_at"`
		Commit      string         `json:"commit"`
		Metrics     report.Metrics `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "2026-03-04T12:30:00Z", doc.GeneratedAt)
	assert.Equal(t, "abc", doc.Commit)
	require.NotNil(t, doc.Metrics.Coverage.LineCoverage)
	assert.InDelta(t, 75.5, *doc.Metrics.Coverage.LineCoverage, 1e-9)
}

func TestRun_ParsesInputsAndAppendsHistory(t *testing.T) {
	r, _ := newTestRunner(t)
	dir := t.TempDir()
	in := t.TempDir()
	clover := filepath.Join(in, "clover.xml")
	writeFile(t, clover, `<coverage><project><metrics statements="10" coveredstatements="9"/></project></coverage>`)

	existing := history.NewEntry(fixedNow.Add(-24*time.Hour), "0123456789", report.Metrics{})
	require.NoError(t, history.Save(filepath.Join(dir, "history", "all.json"), []history.Entry{existing}))

	res, err := r.Run(context.Background(), Options{
		Inputs:    report.Inputs{report.ToolCoverage: clover},
		OutputDir: dir,
		Table:     rating.DefaultTable,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.HistoryLength)
	assert.Equal(t, []string{"coverage"}, res.Badges)
	require.NotNil(t, res.Metrics.Coverage.LineCoverage)
	assert.InDelta(t, 90.0, *res.Metrics.Coverage.LineCoverage, 1e-9)

	store := history.NewStore(filepath.Join(dir, "history", "all.json"), history.DefaultMaxAgeDays,
		history.WithClock(func() time.Time { return fixedNow }))
	entries := store.Load()
	require.Len(t, entries, 2)
	assert.Equal(t, existing.ID, entries[0].ID)
}

func TestRun_UnsetTableRatesWithDefaults(t *testing.T) {
	r, _ := newTestRunner(t)
	dir := t.TempDir()
	clover := filepath.Join(t.TempDir(), "clover.xml")
	writeFile(t, clover, `<coverage><project><metrics statements="200" coveredstatements="50"/></project></coverage>`)

	res, err := r.Run(context.Background(), Options{
		Inputs:    report.Inputs{report.ToolCoverage: clover},
		OutputDir: dir,
	})
	require.NoError(t, err)

	require.NotNil(t, res.Metrics.Coverage.Rating)
	assert.Equal(t, rating.GradeD, *res.Metrics.Coverage.Rating)
	require.NotNil(t, res.Metrics.Coverage.BadgeURL)
	assert.Equal(t, "https://img.shields.io/badge/coverage-25.0%25-red", *res.Metrics.Coverage.BadgeURL)

	svg, err := os.ReadFile(filepath.Join(dir, "badges", "coverage.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(svg), "#e05d44")
}

func TestRun_PrunesOldHistory(t *testing.T) {
	r, _ := newTestRunner(t)
	dir := t.TempDir()

	old := history.NewEntry(fixedNow.AddDate(0, 0, -10), "aaa", report.Metrics{})
	require.NoError(t, history.Save(filepath.Join(dir, "history", "all.json"), []history.Entry{old}))

	res, err := r.Run(context.Background(), Options{Mock: true, OutputDir: dir, RetentionDays: 5, Table: rating.DefaultTable})
	require.NoError(t, err)
	assert.Equal(t, 1, res.HistoryLength)
}

func TestRun_MissingTemplateWarns(t *testing.T) {
	r, logs := newTestRunner(t)
	dir := t.TempDir()

	res, err := r.Run(context.Background(), Options{
		Mock:      true,
		OutputDir: dir,
		Template:  filepath.Join(t.TempDir(), "missing.html"),
		Table:     rating.DefaultTable,
	})
	require.NoError(t, err)

	assert.Empty(t, res.DashboardPath)
	assert.NoFileExists(t, filepath.Join(dir, "index.html"))
	assert.Contains(t, logs.String(), "template not found")
}

func TestRun_NoTemplateWarns(t *testing.T) {
	r, logs := newTestRunner(t)

	_, err := r.Run(context.Background(), Options{Mock: true, OutputDir: t.TempDir(), Table: rating.DefaultTable})
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "no template provided")
}

func TestRun_Publishes(t *testing.T) {
	r, _ := newTestRunner(t)
	dir := t.TempDir()
	pub := &recordingPublisher{}

	res, err := r.Run(context.Background(), Options{Mock: true, OutputDir: dir, Table: rating.DefaultTable, Publisher: pub})
	require.NoError(t, err)
	assert.Equal(t, []string{dir}, pub.dirs)
	assert.Equal(t, 3, res.Published)
}

func TestRun_PublishFailureIsFatal(t *testing.T) {
	r, _ := newTestRunner(t)
	pub := &recordingPublisher{err: errors.New("denied")}

	_, err := r.Run(context.Background(), Options{Mock: true, OutputDir: t.TempDir(), Table: rating.DefaultTable, Publisher: pub})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}

func TestRun_RequiresOutputDir(t *testing.T) {
	r, _ := newTestRunner(t)
	_, err := r.Run(context.Background(), Options{Mock: true})
	require.Error(t, err)
}

func TestRun_UnwritableOutputFails(t *testing.T) {
	r, _ := newTestRunner(t)
	blocker := filepath.Join(t.TempDir(), "file")
	writeFile(t, blocker, "x")

	_, err := r.Run(context.Background(), Options{Mock: true, OutputDir: filepath.Join(blocker, "out"), Table: rating.DefaultTable})
	require.Error(t, err)
}

func TestBadgeDisplay(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		want string
	}{
		{"coverage", 75.5, "75.5%"},
		{"coverage", 80, "80.0%"},
		{"phpstan", 5, "5 errors"},
		{"phpmd", 0, "0 issues"},
		{"complexity", 3.25, "avg 3.25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, def := range badgeDefs {
				if def.name == tt.name {
					assert.Equal(t, tt.want, def.display(tt.v))
					return
				}
			}
			t.Fatalf("no badge %q", tt.name)
		})
	}
}
