package main

import (
	"fmt"

	"github.com/odvcencio/wyag/pkg/object"
	"github.com/spf13/cobra"
)

func newVerifyCmd() *cobra.Command {
	var reachable bool

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify loose object integrity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}

			report, err := r.Store.Verify(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range report.Corrupt {
				fmt.Fprintf(out, "corrupt: %s: %v\n", c.Hash, c.Err)
			}
			if !report.OK() {
				return fmt.Errorf("verify: %d of %d object(s) corrupt", len(report.Corrupt), report.Objects)
			}
			fmt.Fprintf(out, "ok: verified %d loose object(s)\n", report.Objects)

			if reachable {
				refs, err := r.ListRefs()
				if err != nil {
					return err
				}
				var roots []object.Hash
				for _, ref := range refs.Flatten("refs") {
					roots = append(roots, ref.Hash)
				}
				if head, err := r.ResolveRef("HEAD"); err == nil {
					roots = append(roots, head)
				}
				set, err := r.Store.ReachableSet(roots)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "reachable: %d object(s) from %d ref(s)\n", len(set), len(roots))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&reachable, "reachable", false, "also count objects reachable from refs and HEAD")
	return cmd
}
