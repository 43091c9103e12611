package main

import (
	"fmt"
	"os"

	"github.com/odvcencio/wyag/pkg/object"
	"github.com/spf13/cobra"
)

func newHashObjectCmd() *cobra.Command {
	var write bool
	var kindName string

	cmd := &cobra.Command{
		Use:   "hash-object [-w] [-t type] <file>",
		Short: "Compute an object id and optionally store the object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := object.ParseObjectType(kindName)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("hash-object: %w", err)
			}
			obj, err := object.DecodePayload(kind, data)
			if err != nil {
				return fmt.Errorf("hash-object %s: %w", args[0], err)
			}

			var h object.Hash
			if write {
				r, err := openRepo()
				if err != nil {
					return err
				}
				h, err = r.Store.Write(obj)
				if err != nil {
					return err
				}
			} else {
				raw, err := object.Marshal(obj)
				if err != nil {
					return err
				}
				h = object.Sum(raw)
			}

			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the object into the repository")
	cmd.Flags().StringVarP(&kindName, "type", "t", string(object.TypeBlob), "object type: blob, tree, commit or tag")
	return cmd
}
