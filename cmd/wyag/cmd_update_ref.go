package main

import (
	"fmt"

	"github.com/odvcencio/wyag/pkg/object"
	"github.com/spf13/cobra"
)

func newUpdateRefCmd() *cobra.Command {
	var deleteRef bool

	cmd := &cobra.Command{
		Use:   "update-ref <ref> <new-value> [<old-value>]",
		Short: "Point a reference at an object, optionally compare-and-swap",
		Args:  cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}

			if deleteRef {
				if len(args) != 1 {
					return fmt.Errorf("update-ref --delete takes exactly one ref")
				}
				return r.DeleteRef(args[0])
			}
			if len(args) < 2 {
				return fmt.Errorf("update-ref: missing new value for %s", args[0])
			}

			h, err := r.Find(args[1], "", false)
			if err != nil {
				return err
			}
			if len(args) == 3 {
				var old object.Hash
				if args[2] != "" {
					old, err = r.Find(args[2], "", false)
					if err != nil {
						return err
					}
				}
				return r.UpdateRefCAS(args[0], h, old)
			}
			return r.UpdateRef(args[0], h)
		},
	}

	cmd.Flags().BoolVarP(&deleteRef, "delete", "d", false, "delete the reference")
	return cmd
}
