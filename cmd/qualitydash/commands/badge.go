// SPDX-License-Identifier: AGPL-3.0-or-later
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bartekus/qualitydash/cmd/qualitydash/internal/clierr"
	"github.com/bartekus/qualitydash/internal/badge"
	"github.com/bartekus/qualitydash/internal/rating"
)

func newBadgeCmd() *cobra.Command {
	var asURL bool

	cmd := &cobra.Command{
		Use:   "badge <label> <value> <grade>",
		Short: "Print an SVG badge (or its shields.io URL)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			g := rating.Grade(strings.ToUpper(args[2]))
			if g.Score() == 0 {
				return clierr.Usage("invalid grade %q (want A, B, C or D)", args[2])
			}
			out := badge.SVG(args[0], args[1], g)
			if asURL {
				out = badge.URL(args[0], args[1], g)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asURL, "url", false, "print the shields.io URL instead of SVG")
	return cmd
}
