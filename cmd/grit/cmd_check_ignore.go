package main

import (
	"fmt"

	"github.com/odvcencio/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newCheckIgnoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-ignore <paths>...",
		Short: "Print the given paths that the ignore rules exclude",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			ignore, err := r.ReadIgnore()
			if err != nil {
				return err
			}

			for _, p := range args {
				if ignore.Check(p) {
					fmt.Fprintln(cmd.OutOrStdout(), p)
				}
			}
			return nil
		},
	}
}
