// SPDX-License-Identifier: AGPL-3.0-or-later
package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bartekus/qualitydash/cmd/qualitydash/internal/clierr"
	"github.com/bartekus/qualitydash/internal/config"
	"github.com/bartekus/qualitydash/internal/rating"
)

func newRateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "rate <kind> <value>",
		Short: "Print the grade for a metric value",
		Long: `Print the A-D grade and shields.io color for a value.
Kinds: coverage, phpstan, phpcs, security, complexity, duplication.
Unknown kinds use the generic 0/10/50 thresholds.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return clierr.Usage("invalid value %q: must be a number", args[1])
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return clierr.Wrap(clierr.ExitUsage, "invalid configuration", err)
			}

			g := cfg.RatingTable().Rate(rating.ParseKind(args[0]), v)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", g, g.Color())
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file with threshold overrides")
	return cmd
}
