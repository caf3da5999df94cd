package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"landscaper/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var root string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report external tools and directory access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cfg, root, cfg.Montage.Disposition)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderPreflight(results, shouldColorize(out)))
			return preflight.Err(results)
		},
	}
	cmd.Flags().StringVar(&root, "dir", "", "Also check access to this image directory")
	return cmd
}
