// SPDX-License-Identifier: AGPL-3.0-or-later

/*
qualitydash - turns CI static-analysis and coverage reports into rated badges, a pruned
metrics history and a static HTML dashboard.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd constructs the qualitydash root Cobra command.
func NewRootCmd() *cobra.Command {
	version := os.Getenv("QUALITYDASH_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	cmd := &cobra.Command{
		Use:           "qualitydash",
		Short:         "qualitydash - code quality metrics dashboard generator",
		Long:          "qualitydash parses coverage and static-analysis reports, rates them A-D and publishes badges, history and an HTML dashboard.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of qualitydash",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "qualitydash version %s\n", version)
		},
	})

	cmd.AddCommand(newProcessCmd())
	cmd.AddCommand(newPreviewCmd())
	cmd.AddCommand(newBadgeCmd())
	cmd.AddCommand(newRateCmd())

	return cmd
}

// newLogger builds the stderr logger, at DEBUG when --verbose is set.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if f := cmd.Flag("verbose"); f != nil && f.Value.String() == "true" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
