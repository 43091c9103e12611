package main

import (
	"fmt"

	"github.com/odvcencio/wyag/pkg/object"
	"github.com/spf13/cobra"
)

func newRevParseCmd() *cobra.Command {
	var kindName string

	cmd := &cobra.Command{
		Use:   "rev-parse [--wyag-type type] <name>",
		Short: "Resolve a name to a single object id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var kind object.ObjectType
			if kindName != "" {
				k, err := object.ParseObjectType(kindName)
				if err != nil {
					return err
				}
				kind = k
			}

			r, err := openRepo()
			if err != nil {
				return err
			}

			h, err := r.Find(args[0], kind, true)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}

	cmd.Flags().StringVar(&kindName, "wyag-type", "", "follow the name to an object of this type")
	return cmd
}
