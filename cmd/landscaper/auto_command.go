package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newAutoCommand(ctx *commandContext) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "auto DIR",
		Short: "Pair and combine portrait images found under DIR",
		Long: "Walk DIR (recursively unless --no-recursive), pair portrait images\n" +
			"within each directory and combine every eligible pair into a montage.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve directory: %w", err)
			}
			return executeRun(cmd, ctx, runRequest{mode: modeAuto, root: root, flags: flags})
		},
	}
	flags.bind(cmd, true)
	return cmd
}
