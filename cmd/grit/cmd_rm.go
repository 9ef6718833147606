package main

import (
	"github.com/odvcencio/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newRmCmd() *cobra.Command {
	var cached bool

	cmd := &cobra.Command{
		Use:   "rm <paths>...",
		Short: "Remove files from the index and the working tree",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			return r.Rm(args, !cached)
		},
	}

	cmd.Flags().BoolVar(&cached, "cached", false, "only unstage, keep the working file")
	return cmd
}
