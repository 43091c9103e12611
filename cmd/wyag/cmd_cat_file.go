package main

import (
	"fmt"

	"github.com/odvcencio/wyag/pkg/object"
	"github.com/spf13/cobra"
)

func newCatFileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat-file <type> <object>",
		Short: "Print the payload of an object",
		Long: "Resolve <object>, following tags and commits to an object of <type>, " +
			"and write its raw payload to stdout.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := object.ParseObjectType(args[0])
			if err != nil {
				return err
			}

			r, err := openRepo()
			if err != nil {
				return err
			}

			h, err := r.Find(args[1], kind, true)
			if err != nil {
				return err
			}
			_, payload, err := r.Store.ReadRaw(h)
			if err != nil {
				return fmt.Errorf("cat-file: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(payload)
			return err
		},
	}
}
