// SPDX-License-Identifier: AGPL-3.0-or-later
package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bartekus/qualitydash/cmd/qualitydash/internal/clierr"
	"github.com/bartekus/qualitydash/internal/config"
	"github.com/bartekus/qualitydash/internal/dashboard"
	"github.com/bartekus/qualitydash/internal/pipeline"
	"github.com/bartekus/qualitydash/internal/publish"
	"github.com/bartekus/qualitydash/internal/report"
)

type processOptions struct {
	configPath    string
	inputs        map[report.Tool]*string
	template      string
	outputDir     string
	commitSHA     string
	mock          bool
	retentionDays int
	prometheus    bool
}

func newProcessCmd() *cobra.Command {
	opts := &processOptions{inputs: map[report.Tool]*string{}}

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Parse tool reports and generate badges, history and dashboard",
		Long: `Parse coverage and static-analysis reports, rate each metric, append the run
to the metrics history and write badges, the API snapshot and the HTML dashboard.
Missing or malformed reports are reported as warnings and shown as N/A.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, opts)
		},
	}

	f := cmd.Flags()
	for _, info := range report.Tools {
		opts.inputs[info.Tool] = f.String(string(info.Tool), "", fmt.Sprintf("path to the %s report", info.Name))
	}
	f.StringVar(&opts.configPath, "config", "", "config file (.yaml, .yml or .toml)")
	f.StringVar(&opts.template, "template", "", "HTML dashboard template")
	f.StringVar(&opts.outputDir, "output-dir", config.DefaultOutputDir, "output directory")
	f.StringVar(&opts.commitSHA, "commit-sha", "", "commit SHA (defaults to $GITHUB_SHA)")
	f.BoolVar(&opts.mock, "mock-data", false, "use built-in sample metrics instead of reading reports")
	f.IntVar(&opts.retentionDays, "retention-days", 0, "days of history to keep (default 90)")
	f.BoolVar(&opts.prometheus, "prometheus", false, "write a Prometheus textfile")

	return cmd
}

func runProcess(cmd *cobra.Command, opts *processOptions) error {
	logger := newLogger(cmd)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return clierr.Wrap(clierr.ExitUsage, "invalid configuration", err)
	}
	applyProcessFlags(cmd, opts, &cfg)
	if err := cfg.Validate(); err != nil {
		return clierr.Wrap(clierr.ExitUsage, "invalid configuration", err)
	}

	commit := opts.commitSHA
	if !cmd.Flags().Changed("commit-sha") {
		commit = os.Getenv("GITHUB_SHA")
	}

	runOpts := pipeline.Options{
		Inputs:         cfg.ReportInputs(),
		Mock:           opts.mock,
		OutputDir:      cfg.OutputDir,
		Template:       cfg.Template,
		CommitSHA:      commit,
		RetentionDays:  cfg.RetentionDays,
		ChartWindow:    cfg.ChartWindow,
		Table:          cfg.RatingTable(),
		Prometheus:     cfg.Prometheus.Enabled,
		PrometheusPath: cfg.PrometheusPath(),
	}
	if cfg.S3.Enabled() {
		pub, err := publish.New(cmd.Context(), cfg.S3, logger)
		if err != nil {
			return clierr.Wrap(clierr.ExitUsage, "configuring S3 publishing", err)
		}
		runOpts.Publisher = pub
	}

	res, err := pipeline.NewRunner(logger).Run(cmd.Context(), runOpts)
	if err != nil {
		return clierr.Wrap(clierr.ExitFailure, "processing metrics failed", err)
	}

	printSummary(cmd.OutOrStdout(), res)
	return nil
}

// applyProcessFlags overlays explicitly set flags onto cfg.
func applyProcessFlags(cmd *cobra.Command, opts *processOptions, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("template") {
		cfg.Template = opts.template
	}
	if f.Changed("output-dir") {
		cfg.OutputDir = opts.outputDir
	}
	if f.Changed("retention-days") {
		cfg.RetentionDays = opts.retentionDays
	}
	if f.Changed("prometheus") {
		cfg.Prometheus.Enabled = opts.prometheus
	}

	paths := map[report.Tool]*string{
		report.ToolCoverage: &cfg.Inputs.Coverage,
		report.ToolPHPStan:  &cfg.Inputs.PHPStan,
		report.ToolPHPCS:    &cfg.Inputs.PHPCS,
		report.ToolSecurity: &cfg.Inputs.Security,
		report.ToolPHPLOC:   &cfg.Inputs.PHPLOC,
		report.ToolPHPMD:    &cfg.Inputs.PHPMD,
		report.ToolJSCPD:    &cfg.Inputs.JSCPD,
	}
	for tool, dst := range paths {
		if f.Changed(string(tool)) {
			*dst = *opts.inputs[tool]
		}
	}
}

func printSummary(w io.Writer, res *pipeline.Result) {
	m := res.Metrics
	_, _ = fmt.Fprintln(w, "Metrics processed successfully!")
	_, _ = fmt.Fprintf(w, "  - Coverage: %s%%\n", floatOrNA(m.Coverage.LineCoverage))
	_, _ = fmt.Fprintf(w, "  - PHPStan errors: %s\n", intOrNA(m.PHPStan.Errors))
	_, _ = fmt.Fprintf(w, "  - PHPCS violations: %s\n", intOrNA(m.PHPCS.Violations))
	_, _ = fmt.Fprintf(w, "  - Security issues: %s\n", intOrNA(m.Security.Issues))
	if m.PHPLOC.AvgComplexity != nil {
		_, _ = fmt.Fprintf(w, "  - Avg complexity: %s\n", floatOrNA(m.PHPLOC.AvgComplexity))
	}
	_, _ = fmt.Fprintf(w, "  - PHPMD violations: %s\n", intOrNA(m.PHPMD.Violations))
	_, _ = fmt.Fprintf(w, "  - Duplication: %s%%\n", floatOrNA(m.JSCPD.Percentage))
	_, _ = fmt.Fprintf(w, "  - History entries: %d\n", res.HistoryLength)
	if res.DashboardPath != "" {
		_, _ = fmt.Fprintf(w, "Dashboard generated: %s\n", res.DashboardPath)
	}
	if res.Published > 0 {
		_, _ = fmt.Fprintf(w, "Published %d files\n", res.Published)
	}
}

func floatOrNA(p *float64) string {
	if p == nil {
		return dashboard.NA
	}
	return report.FormatFloat(*p)
}

func intOrNA(p *int) string {
	if p == nil {
		return dashboard.NA
	}
	return strconv.Itoa(*p)
}
