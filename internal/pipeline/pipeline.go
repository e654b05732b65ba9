// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pipeline runs one metrics processing pass: parse tool reports,
// extend the history, then write the API snapshot, badges, dashboard and
// optional exports into the output directory.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bartekus/qualitydash/internal/dashboard"
	"github.com/bartekus/qualitydash/internal/exporter"
	"github.com/bartekus/qualitydash/internal/history"
	"github.com/bartekus/qualitydash/internal/projection"
	"github.com/bartekus/qualitydash/internal/rating"
	"github.com/bartekus/qualitydash/internal/report"
)

// Publisher uploads the finished output directory.
type Publisher interface {
	PublishDir(ctx context.Context, dir string) (int, error)
}

// Options configures a run.
type Options struct {
	Inputs         report.Inputs
	Mock           bool
	OutputDir      string
	Template       string
	CommitSHA      string
	RetentionDays  int
	ChartWindow    int
	Table          rating.Table
	Prometheus     bool
	PrometheusPath string
	Publisher      Publisher
}

// Snapshot is the api/metrics.json document.
type Snapshot struct {
	GeneratedAt string         `json:"generated_at"`
	Commit      string         `json:"commit"`
	Metrics     report.Metrics `json:"metrics"`
}

// Result summarizes what a run produced.
type Result struct {
	Metrics       report.Metrics
	HistoryLength int
	Badges        []string
	DashboardPath string
	SummaryPath   string
	TextfilePath  string
	Published     int
}

// Runner executes runs.
type Runner struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewRunner creates a Runner. A nil logger uses slog.Default.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger, now: time.Now}
}

// WithClock returns a copy of r using now as its clock.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	cp := *r
	cp.now = now
	return &cp
}

// Run performs the pass. Parsing problems are logged and absorbed; any
// failure to write an output artifact aborts the run.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.OutputDir == "" {
		return nil, errors.New("output directory is required")
	}
	if opts.RetentionDays <= 0 {
		opts.RetentionDays = history.DefaultMaxAgeDays
	}
	now := r.now()

	var metrics report.Metrics
	if opts.Mock {
		r.logger.Info("using mock metrics")
		metrics = report.Mock()
	} else {
		metrics = report.NewReader(r.logger, opts.Table).ReadAll(opts.Inputs)
	}
	res := &Result{Metrics: metrics}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	store := history.NewStore(
		filepath.Join(opts.OutputDir, "history", "all.json"),
		opts.RetentionDays,
		history.WithClock(func() time.Time { return now }),
		history.WithLogger(r.logger),
	)
	entries, err := store.Append(history.NewEntry(now, opts.CommitSHA, metrics))
	if err != nil {
		return nil, fmt.Errorf("saving history: %w", err)
	}
	res.HistoryLength = len(entries)

	snapshot := Snapshot{
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Commit:      opts.CommitSHA,
		Metrics:     metrics,
	}
	if err := projection.WriteJSON(filepath.Join(opts.OutputDir, "api", "metrics.json"), snapshot); err != nil {
		return nil, fmt.Errorf("writing API snapshot: %w", err)
	}

	res.Badges, err = writeBadges(filepath.Join(opts.OutputDir, "badges"), metrics, opts.Table)
	if err != nil {
		return nil, fmt.Errorf("writing badges: %w", err)
	}

	res.SummaryPath = filepath.Join(opts.OutputDir, "summary.md")
	if err := projection.AtomicWrite(res.SummaryPath, []byte(dashboard.SummaryMarkdown(metrics))); err != nil {
		return nil, fmt.Errorf("writing summary: %w", err)
	}

	if err := r.renderDashboard(opts, metrics, entries, now, res); err != nil {
		return nil, err
	}

	if opts.Prometheus {
		path := opts.PrometheusPath
		if path == "" {
			path = filepath.Join(opts.OutputDir, "metrics.prom")
		}
		if err := exporter.WriteTextfile(path, metrics); err != nil {
			return nil, err
		}
		res.TextfilePath = path
	}

	if opts.Publisher != nil {
		n, err := opts.Publisher.PublishDir(ctx, opts.OutputDir)
		if err != nil {
			return nil, err
		}
		res.Published = n
	}

	return res, nil
}

func (r *Runner) renderDashboard(opts Options, m report.Metrics, entries []history.Entry, now time.Time, res *Result) error {
	if opts.Template == "" {
		r.logger.Warn("no template provided, skipping HTML generation")
		return nil
	}
	if _, err := os.Stat(opts.Template); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn("template not found, skipping HTML generation", "path", opts.Template)
			return nil
		}
		return fmt.Errorf("checking template: %w", err)
	}

	out := filepath.Join(opts.OutputDir, "index.html")
	err := dashboard.Generate(opts.Template, out, dashboard.Input{
		Metrics:     m,
		History:     entries,
		CommitSHA:   opts.CommitSHA,
		Now:         now,
		ChartWindow: opts.ChartWindow,
	})
	if err != nil {
		return err
	}
	res.DashboardPath = out
	r.logger.Info("dashboard generated", "path", out)
	return nil
}
