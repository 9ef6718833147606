package main

import (
	"github.com/odvcencio/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <commit-or-tree> <target-dir>",
		Short: "Materialize a commit or tree into an empty directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			return r.Checkout(args[0], args[1])
		},
	}
}
