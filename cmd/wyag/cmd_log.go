package main

import (
	"fmt"
	"strings"

	"github.com/odvcencio/wyag/pkg/object"
	"github.com/spf13/cobra"
)

func newLogCmd() *cobra.Command {
	var oneline bool
	var graphviz bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log [commit]",
		Short: "Show commit history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if oneline && graphviz {
				return fmt.Errorf("log: --oneline and --graphviz are mutually exclusive")
			}

			r, err := openRepo()
			if err != nil {
				return err
			}

			start := "HEAD"
			if len(args) > 0 {
				start = args[0]
			}
			h, err := r.Find(start, object.TypeCommit, true)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if graphviz {
				return r.WriteLogGraphviz(out, h)
			}

			entries, err := r.Log(h, limit)
			if err != nil {
				return err
			}
			for _, e := range entries {
				if oneline {
					fmt.Fprintf(out, "%s %s\n", e.Hash.Short(8), e.Summary())
					continue
				}
				fmt.Fprintf(out, "commit %s\n", e.Hash)
				fmt.Fprintf(out, "Author: %s\n", e.Commit.Author())
				fmt.Fprintln(out)
				for _, line := range strings.Split(strings.TrimRight(string(e.Commit.Message), "\n"), "\n") {
					fmt.Fprintf(out, "    %s\n", line)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "show each commit on a single line")
	cmd.Flags().BoolVar(&graphviz, "graphviz", false, "emit the history as a graphviz digraph")
	cmd.Flags().IntVarP(&limit, "max-count", "n", 0, "limit the number of commits shown (0 = all)")
	return cmd
}
