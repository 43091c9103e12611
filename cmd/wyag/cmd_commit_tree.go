package main

import (
	"fmt"
	"time"

	"github.com/odvcencio/wyag/pkg/object"
	"github.com/spf13/cobra"
)

func newCommitTreeCmd() *cobra.Command {
	var parentNames []string
	var message string

	cmd := &cobra.Command{
		Use:   "commit-tree <tree> [-p parent]... -m message",
		Short: "Create a commit object for a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return fmt.Errorf("commit-tree: a message is required (-m)")
			}

			r, err := openRepo()
			if err != nil {
				return err
			}

			tree, err := r.Find(args[0], object.TypeTree, true)
			if err != nil {
				return err
			}
			parents := make([]object.Hash, 0, len(parentNames))
			for _, p := range parentNames {
				h, err := r.Find(p, object.TypeCommit, true)
				if err != nil {
					return err
				}
				parents = append(parents, h)
			}

			h, err := r.CommitTree(tree, parents, settings.GetString("author"), message, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&parentNames, "parent", "p", nil, "parent commit (repeatable, order is kept)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	return cmd
}
