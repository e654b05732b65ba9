// SPDX-License-Identifier: AGPL-3.0-or-later
package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bartekus/qualitydash/cmd/qualitydash/internal/clierr"
	"github.com/bartekus/qualitydash/internal/config"
	"github.com/bartekus/qualitydash/internal/preview"
)

func newPreviewCmd() *cobra.Command {
	var (
		addr string
		dir  string
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Serve the generated dashboard locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := os.Stat(dir)
			if err != nil || !info.IsDir() {
				return clierr.Usage("output directory %q does not exist; run process first", dir)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := preview.Serve(ctx, addr, dir, newLogger(cmd)); err != nil {
				return clierr.Wrap(clierr.ExitFailure, "preview server failed", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8088", "listen address")
	cmd.Flags().StringVar(&dir, "dir", config.DefaultOutputDir, "generated output directory")
	return cmd
}
