package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWriteTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write-tree [dir]",
		Short: "Store a directory snapshot as tree objects",
		Long:  "Write every file under [dir] (default: the worktree root) as blobs and trees, skipping .git, and print the root tree id.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}

			dir := r.RootDir
			if len(args) > 0 {
				dir = args[0]
			}
			h, err := r.WriteTreeFromDir(cmd.Context(), dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}
