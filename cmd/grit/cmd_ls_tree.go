package main

import (
	"fmt"

	"github.com/odvcencio/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newLsTreeCmd() *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "ls-tree <tree-ish>",
		Short: "List the contents of a tree object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			items, err := r.LsTree(args[0], recursive)
			if err != nil {
				return err
			}

			for _, item := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\t%s\n", item.Mode, item.Type, item.Hash, item.Path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "recurse into subtrees")
	return cmd
}
