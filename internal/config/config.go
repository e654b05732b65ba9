// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads qualitydash settings.
//
// Load order, lowest to highest precedence: built-in defaults, the config
// file (YAML or TOML, chosen by extension), then explicitly set CLI flags
// (applied by the command layer).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/bartekus/qualitydash/internal/dashboard"
	"github.com/bartekus/qualitydash/internal/history"
	"github.com/bartekus/qualitydash/internal/publish"
	"github.com/bartekus/qualitydash/internal/rating"
	"github.com/bartekus/qualitydash/internal/report"
)

const DefaultOutputDir = "site/metrics"

// Inputs holds the tool report paths.
type Inputs struct {
	Coverage string `yaml:"coverage" toml:"coverage"`
	PHPStan  string `yaml:"phpstan" toml:"phpstan"`
	PHPCS    string `yaml:"phpcs" toml:"phpcs"`
	Security string `yaml:"security" toml:"security"`
	PHPLOC   string `yaml:"phploc" toml:"phploc"`
	PHPMD    string `yaml:"phpmd" toml:"phpmd"`
	JSCPD    string `yaml:"jscpd" toml:"jscpd"`
}

// Prometheus controls the textfile export.
type Prometheus struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path"`
}

// Config is the full set of run settings.
type Config struct {
	OutputDir     string                       `yaml:"output_dir" toml:"output_dir"`
	Template      string                       `yaml:"template" toml:"template"`
	RetentionDays int                          `yaml:"retention_days" toml:"retention_days"`
	ChartWindow   int                          `yaml:"chart_window" toml:"chart_window"`
	Inputs        Inputs                       `yaml:"inputs" toml:"inputs"`
	Thresholds    map[string]rating.Thresholds `yaml:"thresholds" toml:"thresholds"`
	Prometheus    Prometheus                   `yaml:"prometheus" toml:"prometheus"`
	S3            publish.Config               `yaml:"s3" toml:"s3"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		OutputDir:     DefaultOutputDir,
		RetentionDays: history.DefaultMaxAgeDays,
		ChartWindow:   dashboard.DefaultChartWindow,
	}
}

// Load reads path over the defaults. An empty path returns Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("failed to parse config TOML: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("unknown config keys: %v", undecoded)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format %q (want .yaml, .yml or .toml)", filepath.Ext(path))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and threshold ordering.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output_dir must not be empty")
	}
	if c.RetentionDays <= 0 {
		return fmt.Errorf("retention_days must be positive, got %d", c.RetentionDays)
	}
	if c.ChartWindow <= 0 {
		return fmt.Errorf("chart_window must be positive, got %d", c.ChartWindow)
	}
	for _, name := range sortedThresholdKinds(c.Thresholds) {
		if err := c.Thresholds[name].Validate(rating.ParseKind(name)); err != nil {
			return err
		}
	}
	return nil
}

// RatingTable applies threshold overrides to rating.DefaultTable.
func (c Config) RatingTable() rating.Table {
	table := rating.DefaultTable
	for _, name := range sortedThresholdKinds(c.Thresholds) {
		table = table.With(rating.ParseKind(name), c.Thresholds[name])
	}
	return table
}

// ReportInputs converts the configured paths for the report reader.
func (c Config) ReportInputs() report.Inputs {
	in := report.Inputs{}
	set := func(t report.Tool, p string) {
		if p != "" {
			in[t] = p
		}
	}
	set(report.ToolCoverage, c.Inputs.Coverage)
	set(report.ToolPHPStan, c.Inputs.PHPStan)
	set(report.ToolPHPCS, c.Inputs.PHPCS)
	set(report.ToolSecurity, c.Inputs.Security)
	set(report.ToolPHPLOC, c.Inputs.PHPLOC)
	set(report.ToolPHPMD, c.Inputs.PHPMD)
	set(report.ToolJSCPD, c.Inputs.JSCPD)
	return in
}

// PrometheusPath returns where the textfile is written.
func (c Config) PrometheusPath() string {
	if c.Prometheus.Path != "" {
		return c.Prometheus.Path
	}
	return filepath.Join(c.OutputDir, "metrics.prom")
}

func sortedThresholdKinds(m map[string]rating.Thresholds) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
