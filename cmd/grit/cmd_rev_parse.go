package main

import (
	"fmt"

	"github.com/odvcencio/grit/pkg/object"
	"github.com/odvcencio/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newRevParseCmd() *cobra.Command {
	var objType string

	cmd := &cobra.Command{
		Use:   "rev-parse <name>",
		Short: "Resolve a name to an object hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			sha, err := r.Find(args[0], object.Type(objType), true)
			if err != nil {
				return err
			}
			if sha == "" {
				// No object of the wanted type is reachable from the name.
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), sha)
			return nil
		},
	}

	cmd.Flags().StringVarP(&objType, "type", "t", "", "peel to this object type")
	return cmd
}
