package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newPairCommand(ctx *commandContext) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "pair FIRST SECOND",
		Short: "Combine two specific portrait images into a montage",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			first, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve first image: %w", err)
			}
			second, err := filepath.Abs(args[1])
			if err != nil {
				return fmt.Errorf("resolve second image: %w", err)
			}
			return executeRun(cmd, ctx, runRequest{mode: modePair, first: first, second: second, flags: flags})
		},
	}
	flags.bind(cmd, false)
	return cmd
}
