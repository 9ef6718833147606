package main

import (
	"fmt"

	"github.com/odvcencio/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newShowRefCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-ref",
		Short: "List references with their resolved hashes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			refs, err := r.ListRefs()
			if err != nil {
				return err
			}

			for _, ref := range refs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ref.Hash, ref.Name)
			}
			return nil
		},
	}
}
