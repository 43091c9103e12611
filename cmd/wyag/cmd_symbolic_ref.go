package main

import (
	"fmt"
	"strings"

	"github.com/odvcencio/wyag/pkg/repo"
	"github.com/spf13/cobra"
)

func newSymbolicRefCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "symbolic-ref <name> [<ref>]",
		Short: "Read or set a symbolic reference such as HEAD",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}

			if len(args) == 2 {
				return r.SetSymbolicRef(args[0], args[1])
			}
			content, err := r.ReadRef(args[0])
			if err != nil {
				return err
			}
			target, ok := strings.CutPrefix(content, repo.SymbolicRefPrefix)
			if !ok {
				return fmt.Errorf("ref %s is not a symbolic ref", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), target)
			return nil
		},
	}
}
